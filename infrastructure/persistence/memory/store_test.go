package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"famtree-backend/domain/core/entities"
	pkgerrors "famtree-backend/pkg/errors"
)

func TestTreeRepository_GetByIDReturnsDetachedCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	tree, err := entities.NewTree("fam-1", "Our Family", "", "user-1")
	require.NoError(t, err)
	require.NoError(t, store.Trees().Save(ctx, tree))

	loaded, err := store.Trees().GetByID(ctx, tree.ID())
	require.NoError(t, err)

	// Mutating the loaded copy must not touch the stored record, or a
	// versioned save against the original version would always conflict.
	loaded.IncrementVersion()

	err = store.Trees().SaveVersioned(ctx, loaded, tree.Version())
	assert.NoError(t, err)

	stored, err := store.Trees().GetByID(ctx, tree.ID())
	require.NoError(t, err)
	assert.Equal(t, tree.Version()+1, stored.Version())
}

func TestTreeRepository_SaveVersionedConflicts(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	tree, err := entities.NewTree("fam-1", "Our Family", "", "user-1")
	require.NoError(t, err)
	require.NoError(t, store.Trees().Save(ctx, tree))

	err = store.Trees().SaveVersioned(ctx, tree, tree.Version()+5)
	assert.True(t, pkgerrors.IsConflict(err))

	// expectedVersion 0 means create, which an existing tree rejects
	err = store.Trees().SaveVersioned(ctx, tree, 0)
	assert.True(t, pkgerrors.IsConflict(err))
}
