package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"famtree-backend/application/ports"
	"famtree-backend/application/queries"
	"famtree-backend/application/services"
	"famtree-backend/domain/core/entities"
	"famtree-backend/domain/core/valueobjects"
	"famtree-backend/infrastructure/persistence/memory"
	pkgerrors "famtree-backend/pkg/errors"
)

type getTreeFixture struct {
	store   *memory.Store
	handler *GetTreeHandler
	tree    *entities.Tree
}

func newGetTreeFixture(t *testing.T) *getTreeFixture {
	t.Helper()

	store := memory.NewStore()
	store.PutMembership(ports.Membership{
		FamilyID: "fam-1", UserID: "user-admin", Role: ports.RoleAdmin, Approved: true,
	})
	store.PutMembership(ports.Membership{
		FamilyID: "fam-1", UserID: "user-member", Role: ports.RoleMember, Approved: true,
	})
	store.PutMembership(ports.Membership{
		FamilyID: "fam-1", UserID: "user-pending", Role: ports.RoleMember, Approved: false,
	})
	store.PutUser(ports.UserSummary{ID: "user-admin", DisplayName: "Admin"})

	tree, err := entities.NewTree("fam-1", "Our Family", "three generations", "user-admin")
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Trees().Save(ctx, tree))

	nodeID, err := valueobjects.NewNodeIDFromString("n1")
	require.NoError(t, err)
	node, err := entities.NewNode(nodeID, tree.ID(), entities.NodeAttributes{
		FirstName:    "Alice",
		LastName:     "Example",
		DateOfBirth:  time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
		IsAlive:      true,
		Gender:       entities.GenderFemale,
		BirthPlace:   "Springfield",
		CurrentPlace: "Springfield",
	})
	require.NoError(t, err)
	require.NoError(t, store.Nodes().BatchUpsert(ctx, tree.ID(), []*entities.Node{node}))

	logger := zap.NewNop()
	handler := NewGetTreeHandler(
		store.Trees(), store.Nodes(), store.Relations(), store.Users(),
		services.NewAuthorizationGate(store.Memberships(), logger),
		logger,
	)

	return &getTreeFixture{store: store, handler: handler, tree: tree}
}

func (f *getTreeFixture) get(t *testing.T, callerID string) (*queries.TreeView, error) {
	t.Helper()
	result, err := f.handler.Handle(context.Background(), queries.GetTreeQuery{
		TreeID:   f.tree.ID().String(),
		CallerID: callerID,
	})
	if err != nil {
		return nil, err
	}
	view, ok := result.(*queries.TreeView)
	require.True(t, ok, "expected *queries.TreeView, got %T", result)
	return view, nil
}

func TestGetTree_AdminSeesAdminFlag(t *testing.T) {
	f := newGetTreeFixture(t)

	view, err := f.get(t, "user-admin")
	require.NoError(t, err)

	assert.True(t, view.CallerIsAdmin)
	assert.Equal(t, "Our Family", view.Name)
	assert.Len(t, view.Nodes, 1)
	require.NotNil(t, view.Creator)
	assert.Equal(t, "Admin", view.Creator.DisplayName)
}

func TestGetTree_MemberCanReadButNotAdmin(t *testing.T) {
	f := newGetTreeFixture(t)

	view, err := f.get(t, "user-member")
	require.NoError(t, err)

	assert.False(t, view.CallerIsAdmin)
	assert.Len(t, view.Nodes, 1)
}

func TestGetTree_UnapprovedMemberForbidden(t *testing.T) {
	f := newGetTreeFixture(t)

	_, err := f.get(t, "user-pending")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsForbidden(err))
}

func TestGetTree_OutsiderForbidden(t *testing.T) {
	f := newGetTreeFixture(t)

	_, err := f.get(t, "user-outsider")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsForbidden(err))
}

func TestGetTree_UnknownTreeNotFound(t *testing.T) {
	f := newGetTreeFixture(t)

	_, err := f.handler.Handle(context.Background(), queries.GetTreeQuery{
		TreeID:   "missing",
		CallerID: "user-admin",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}
