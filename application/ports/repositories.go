package ports

import (
	"context"

	"famtree-backend/domain/core/entities"
	"famtree-backend/domain/core/valueobjects"
	"famtree-backend/domain/events"
)

// TreeRepository persists tree metadata
type TreeRepository interface {
	// Save writes the tree unconditionally
	Save(ctx context.Context, tree *entities.Tree) error

	// SaveVersioned writes the tree only when the stored version still
	// equals expectedVersion; a mismatch fails with a conflict error
	SaveVersioned(ctx context.Context, tree *entities.Tree, expectedVersion int) error

	// GetByID fetches a tree by its identifier
	GetByID(ctx context.Context, id valueobjects.TreeID) (*entities.Tree, error)
}

// NodeRepository persists person nodes, scoped to their owning tree
type NodeRepository interface {
	// GetByTreeID returns all nodes of a tree
	GetByTreeID(ctx context.Context, treeID valueobjects.TreeID) ([]*entities.Node, error)

	// BatchUpsert writes one bounded batch of nodes in a single transaction
	BatchUpsert(ctx context.Context, treeID valueobjects.TreeID, nodes []*entities.Node) error

	// BatchDelete removes one bounded batch of nodes in a single transaction
	BatchDelete(ctx context.Context, treeID valueobjects.TreeID, ids []valueobjects.NodeID) error
}

// RelationRepository persists relation edges, scoped to their owning tree
type RelationRepository interface {
	// GetByTreeID returns all relations of a tree
	GetByTreeID(ctx context.Context, treeID valueobjects.TreeID) ([]*entities.Relation, error)

	// BatchUpsert writes one bounded batch of relations in a single transaction
	BatchUpsert(ctx context.Context, treeID valueobjects.TreeID, relations []*entities.Relation) error

	// BatchDelete removes one bounded batch of relations in a single transaction
	BatchDelete(ctx context.Context, treeID valueobjects.TreeID, ids []valueobjects.RelationID) error
}

// Family membership roles
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// Membership is the externally managed family membership record consulted
// by the authorization gate. This service never writes memberships.
type Membership struct {
	FamilyID string
	UserID   string
	Role     string
	Approved bool
}

// IsApprovedMember reports whether the membership grants read access
func (m *Membership) IsApprovedMember() bool {
	return m != nil && m.Approved
}

// IsAdmin reports whether the membership grants write access
func (m *Membership) IsAdmin() bool {
	return m.IsApprovedMember() && m.Role == RoleAdmin
}

// MembershipRepository looks up family memberships (external capability)
type MembershipRepository interface {
	// GetMembership returns the caller's membership in a family, or a
	// not-found error when the caller does not belong to it
	GetMembership(ctx context.Context, familyID, userID string) (*Membership, error)
}

// UserSummary is the minimal profile attached to tree views
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// UserDirectory resolves user identifiers to profile summaries (external
// capability, read-only here)
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*UserSummary, error)
}

// EventPublisher publishes domain events to the message bus
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, batch []events.DomainEvent) error
}
