package entities

import (
	"time"

	"famtree-backend/domain/core/valueobjects"
	pkgerrors "famtree-backend/pkg/errors"
)

// Tree is a family's graph of person nodes and relation edges.
// Nodes and relations are stored separately and joined by tree ID; the
// Tree entity carries the metadata and the optimistic version counter.
type Tree struct {
	id          valueobjects.TreeID
	familyID    string
	name        string
	description string
	creatorID   string
	version     int
	createdAt   time.Time
	updatedAt   time.Time
}

// NewTree creates a tree owned by a family
func NewTree(familyID, name, description, creatorID string) (*Tree, error) {
	if familyID == "" {
		return nil, pkgerrors.NewValidationError("familyID cannot be empty")
	}
	if name == "" {
		return nil, pkgerrors.NewValidationError("tree name cannot be empty")
	}
	if creatorID == "" {
		return nil, pkgerrors.NewValidationError("creatorID cannot be empty")
	}

	now := time.Now()
	return &Tree{
		id:          valueobjects.NewTreeID(),
		familyID:    familyID,
		name:        name,
		description: description,
		creatorID:   creatorID,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructTree rebuilds a tree from repository data
func ReconstructTree(
	id valueobjects.TreeID,
	familyID, name, description, creatorID string,
	version int,
	createdAt, updatedAt time.Time,
) (*Tree, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("tree id cannot be empty")
	}
	if familyID == "" {
		return nil, pkgerrors.NewValidationError("familyID cannot be empty")
	}
	if version < 1 {
		version = 1
	}

	return &Tree{
		id:          id,
		familyID:    familyID,
		name:        name,
		description: description,
		creatorID:   creatorID,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

// ID returns the tree's identifier
func (t *Tree) ID() valueobjects.TreeID {
	return t.id
}

// FamilyID returns the owning family's identifier
func (t *Tree) FamilyID() string {
	return t.familyID
}

// Name returns the display name
func (t *Tree) Name() string {
	return t.name
}

// Description returns the optional description
func (t *Tree) Description() string {
	return t.description
}

// CreatorID returns the identifier of the member who created the tree
func (t *Tree) CreatorID() string {
	return t.creatorID
}

// Version returns the monotonically increasing sync version
func (t *Tree) Version() int {
	return t.version
}

// IncrementVersion advances the sync version after a successful
// reconciliation
func (t *Tree) IncrementVersion() {
	t.version++
	t.updatedAt = time.Now()
}

// CreatedAt returns when the tree was created
func (t *Tree) CreatedAt() time.Time {
	return t.createdAt
}

// UpdatedAt returns when the tree was last updated
func (t *Tree) UpdatedAt() time.Time {
	return t.updatedAt
}
