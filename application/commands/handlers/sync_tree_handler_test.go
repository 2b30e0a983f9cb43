package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"famtree-backend/application/commands"
	"famtree-backend/application/ports"
	"famtree-backend/application/queries"
	"famtree-backend/application/services"
	"famtree-backend/domain/config"
	"famtree-backend/domain/core/entities"
	"famtree-backend/domain/core/validators"
	"famtree-backend/infrastructure/persistence/memory"
	pkgerrors "famtree-backend/pkg/errors"
)

const (
	testFamilyID = "fam-1"
	testAdminID  = "user-admin"
	testMemberID = "user-member"
)

type syncFixture struct {
	store   *memory.Store
	handler *SyncTreeHandler
	tree    *entities.Tree
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	store := memory.NewStore()
	store.PutMembership(ports.Membership{
		FamilyID: testFamilyID, UserID: testAdminID, Role: ports.RoleAdmin, Approved: true,
	})
	store.PutMembership(ports.Membership{
		FamilyID: testFamilyID, UserID: testMemberID, Role: ports.RoleMember, Approved: true,
	})
	store.PutUser(ports.UserSummary{ID: testAdminID, DisplayName: "Admin"})

	tree, err := entities.NewTree(testFamilyID, "Our Family", "", testAdminID)
	require.NoError(t, err)
	require.NoError(t, store.Trees().Save(context.Background(), tree))

	logger := zap.NewNop()
	handler := NewSyncTreeHandler(
		store.Trees(), store.Nodes(), store.Relations(), store.Users(),
		services.NewAuthorizationGate(store.Memberships(), logger),
		validators.NewRelationValidator(),
		memory.NopPublisher{},
		config.DefaultDomainConfig(),
		logger,
	)

	return &syncFixture{store: store, handler: handler, tree: tree}
}

func nodeInput(id, firstName string) commands.NodeInput {
	return commands.NodeInput{
		ID:           id,
		FirstName:    firstName,
		LastName:     "Example",
		DateOfBirth:  "1950-01-01",
		Gender:       "OTHER",
		IsAlive:      true,
		BirthPlace:   "Springfield",
		CurrentPlace: "Springfield",
	}
}

func parentInput(id, from, to string) commands.RelationInput {
	return commands.RelationInput{
		ID: id, FromNodeID: from, ToNodeID: to, RelationType: "PARENT",
	}
}

func (f *syncFixture) sync(t *testing.T, cmd commands.SyncTreeCommand) (*queries.TreeView, error) {
	t.Helper()
	cmd.TreeID = f.tree.ID().String()
	if cmd.CallerID == "" {
		cmd.CallerID = testAdminID
	}
	result, err := f.handler.Handle(context.Background(), cmd)
	if err != nil {
		return nil, err
	}
	view, ok := result.(*queries.TreeView)
	require.True(t, ok, "expected *queries.TreeView, got %T", result)
	return view, nil
}

func TestSyncTree_RoundTrip(t *testing.T) {
	f := newSyncFixture(t)

	view, err := f.sync(t, commands.SyncTreeCommand{
		Nodes: []commands.NodeInput{
			nodeInput("n1", "Alice"),
			nodeInput("n2", "Bob"),
		},
		Relations: []commands.RelationInput{parentInput("r1", "n1", "n2")},
	})
	require.NoError(t, err)

	assert.Len(t, view.Nodes, 2)
	assert.Len(t, view.Relations, 1)
	assert.Equal(t, 2, view.Version)
	assert.True(t, view.CallerIsAdmin)
	require.NotNil(t, view.Creator)
	assert.Equal(t, "Admin", view.Creator.DisplayName)

	stored, err := f.store.Nodes().GetByTreeID(context.Background(), f.tree.ID())
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestSyncTree_SingleNodeNoRelations(t *testing.T) {
	f := newSyncFixture(t)

	view, err := f.sync(t, commands.SyncTreeCommand{
		Nodes: []commands.NodeInput{nodeInput("n1", "Solo")},
	})
	require.NoError(t, err)

	assert.Len(t, view.Nodes, 1)
	assert.Empty(t, view.Relations)
}

func TestSyncTree_IsIdempotentOnContent(t *testing.T) {
	f := newSyncFixture(t)
	cmd := commands.SyncTreeCommand{
		Nodes: []commands.NodeInput{
			nodeInput("n1", "Alice"),
			nodeInput("n2", "Bob"),
		},
		Relations: []commands.RelationInput{parentInput("r1", "n1", "n2")},
	}

	first, err := f.sync(t, cmd)
	require.NoError(t, err)
	second, err := f.sync(t, cmd)
	require.NoError(t, err)

	assert.Len(t, second.Nodes, len(first.Nodes))
	assert.Len(t, second.Relations, len(first.Relations))
	// Each sync still advances the tree version
	assert.Equal(t, first.Version+1, second.Version)
}

func TestSyncTree_DeletesOmittedRecords(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.sync(t, commands.SyncTreeCommand{
		Nodes: []commands.NodeInput{
			nodeInput("n1", "Alice"),
			nodeInput("n2", "Bob"),
			nodeInput("n3", "Carol"),
		},
		Relations: []commands.RelationInput{
			parentInput("r1", "n1", "n2"),
			parentInput("r2", "n2", "n3"),
		},
	})
	require.NoError(t, err)

	// Resubmit without n3 and r2: both must disappear
	view, err := f.sync(t, commands.SyncTreeCommand{
		Nodes: []commands.NodeInput{
			nodeInput("n1", "Alice"),
			nodeInput("n2", "Bob"),
		},
		Relations: []commands.RelationInput{parentInput("r1", "n1", "n2")},
	})
	require.NoError(t, err)

	assert.Len(t, view.Nodes, 2)
	assert.Len(t, view.Relations, 1)
	for _, node := range view.Nodes {
		assert.NotEqual(t, "n3", node.ID)
	}
}

func TestSyncTree_UpdatesExistingNodes(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.sync(t, commands.SyncTreeCommand{
		Nodes: []commands.NodeInput{nodeInput("n1", "Alice")},
	})
	require.NoError(t, err)

	renamed := nodeInput("n1", "Alicia")
	view, err := f.sync(t, commands.SyncTreeCommand{
		Nodes: []commands.NodeInput{renamed},
	})
	require.NoError(t, err)

	require.Len(t, view.Nodes, 1)
	assert.Equal(t, "Alicia", view.Nodes[0].FirstName)
}

func TestSyncTree_RequiresAdmin(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.sync(t, commands.SyncTreeCommand{
		CallerID: testMemberID,
		Nodes:    []commands.NodeInput{nodeInput("n1", "Alice")},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsForbidden(err))

	_, err = f.sync(t, commands.SyncTreeCommand{
		CallerID: "user-outsider",
		Nodes:    []commands.NodeInput{nodeInput("n1", "Alice")},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsForbidden(err))
}

func TestSyncTree_StaleVersionConflicts(t *testing.T) {
	f := newSyncFixture(t)

	first, err := f.sync(t, commands.SyncTreeCommand{
		Nodes: []commands.NodeInput{nodeInput("n1", "Alice")},
	})
	require.NoError(t, err)

	// A second client submits against the pre-sync version
	_, err = f.sync(t, commands.SyncTreeCommand{
		ExpectedVersion: first.Version - 1,
		Nodes:           []commands.NodeInput{nodeInput("n2", "Bob")},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))

	// The current version goes through
	_, err = f.sync(t, commands.SyncTreeCommand{
		ExpectedVersion: first.Version,
		Nodes:           []commands.NodeInput{nodeInput("n2", "Bob")},
	})
	assert.NoError(t, err)
}

func TestSyncTree_RejectsCycleButKeepsNodes(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.sync(t, commands.SyncTreeCommand{
		Nodes: []commands.NodeInput{
			nodeInput("a", "A"),
			nodeInput("b", "B"),
			nodeInput("c", "C"),
		},
		Relations: []commands.RelationInput{
			parentInput("r1", "a", "b"),
			parentInput("r2", "b", "c"),
			parentInput("r3", "c", "a"),
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	// Node batches land before relation validation and are not rolled
	// back by the rejection
	stored, err := f.store.Nodes().GetByTreeID(context.Background(), f.tree.ID())
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	relations, err := f.store.Relations().GetByTreeID(context.Background(), f.tree.ID())
	require.NoError(t, err)
	assert.Empty(t, relations)
}

func TestSyncTree_RejectsUnknownRelationType(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.sync(t, commands.SyncTreeCommand{
		Nodes: []commands.NodeInput{
			nodeInput("n1", "Alice"),
			nodeInput("n2", "Bob"),
		},
		Relations: []commands.RelationInput{{
			ID: "r1", FromNodeID: "n1", ToNodeID: "n2", RelationType: "SIBLING",
		}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSyncTree_RejectsRelationToMissingNode(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.sync(t, commands.SyncTreeCommand{
		Nodes:     []commands.NodeInput{nodeInput("n1", "Alice")},
		Relations: []commands.RelationInput{parentInput("r1", "n1", "ghost")},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	// The rejection names the offending relation
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "r1", appErr.Details["relationId"])
}

func TestSyncTree_BatchDeadlineSurfacesTimeout(t *testing.T) {
	f := newSyncFixture(t)

	cfg := config.DefaultDomainConfig()
	cfg.BatchTimeout = -time.Millisecond

	logger := zap.NewNop()
	handler := NewSyncTreeHandler(
		f.store.Trees(), f.store.Nodes(), f.store.Relations(), f.store.Users(),
		services.NewAuthorizationGate(f.store.Memberships(), logger),
		validators.NewRelationValidator(),
		memory.NopPublisher{},
		cfg,
		logger,
	)

	_, err := handler.Handle(context.Background(), commands.SyncTreeCommand{
		TreeID:   f.tree.ID().String(),
		CallerID: testAdminID,
		Nodes:    []commands.NodeInput{nodeInput("n1", "Alice")},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsTimeout(err))
}

func TestSyncTree_UnknownTreeNotFound(t *testing.T) {
	f := newSyncFixture(t)

	cmd := commands.SyncTreeCommand{
		TreeID:   "missing-tree",
		CallerID: testAdminID,
		Nodes:    []commands.NodeInput{nodeInput("n1", "Alice")},
	}
	_, err := f.handler.Handle(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}
