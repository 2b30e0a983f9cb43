package entities

import (
	"time"

	"famtree-backend/domain/core/valueobjects"
	pkgerrors "famtree-backend/pkg/errors"
)

// RelationType is the enumerated kind of edge between two nodes
type RelationType string

const (
	// RelationParent is a directed edge: from is the parent, to the child
	RelationParent RelationType = "PARENT"
	// RelationSpouse is a symmetric edge with marriage metadata
	RelationSpouse RelationType = "SPOUSE"
)

// ParseRelationType validates and converts a raw relation type.
// Missing or unknown types are rejected outright; there is no silent
// fallback to a default type.
func ParseRelationType(raw string) (RelationType, error) {
	switch RelationType(raw) {
	case RelationParent, RelationSpouse:
		return RelationType(raw), nil
	default:
		return "", pkgerrors.NewValidationError("relationType must be PARENT or SPOUSE")
	}
}

// Relation is a typed edge between two nodes in the same tree
type Relation struct {
	id           valueobjects.RelationID
	treeID       valueobjects.TreeID
	fromNodeID   valueobjects.NodeID
	toNodeID     valueobjects.NodeID
	relationType RelationType
	marriageDate *time.Time
	divorceDate  *time.Time
	isActive     bool
	createdAt    time.Time
	updatedAt    time.Time
}

// NewRelation creates a relation with structural validation. Graph-level
// checks (endpoint existence, cycles, spousal exclusivity) live in the
// validators package, which needs the surrounding snapshot.
func NewRelation(
	id valueobjects.RelationID,
	treeID valueobjects.TreeID,
	fromNodeID, toNodeID valueobjects.NodeID,
	relationType RelationType,
	marriageDate, divorceDate *time.Time,
	isActive bool,
) (*Relation, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("relation id cannot be empty")
	}
	if treeID.IsZero() {
		return nil, pkgerrors.NewValidationError("relation must belong to a tree")
	}
	if fromNodeID.IsZero() || toNodeID.IsZero() {
		return nil, pkgerrors.NewValidationError("relation endpoints cannot be empty")
	}
	if fromNodeID.Equals(toNodeID) {
		return nil, pkgerrors.NewValidationError("relation cannot connect a node to itself")
	}
	if _, err := ParseRelationType(string(relationType)); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Relation{
		id:           id,
		treeID:       treeID,
		fromNodeID:   fromNodeID,
		toNodeID:     toNodeID,
		relationType: relationType,
		marriageDate: marriageDate,
		divorceDate:  divorceDate,
		isActive:     isActive,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructRelation rebuilds a relation from repository data
func ReconstructRelation(
	id valueobjects.RelationID,
	treeID valueobjects.TreeID,
	fromNodeID, toNodeID valueobjects.NodeID,
	relationType RelationType,
	marriageDate, divorceDate *time.Time,
	isActive bool,
	createdAt, updatedAt time.Time,
) (*Relation, error) {
	rel, err := NewRelation(id, treeID, fromNodeID, toNodeID, relationType, marriageDate, divorceDate, isActive)
	if err != nil {
		return nil, err
	}
	rel.createdAt = createdAt
	rel.updatedAt = updatedAt
	return rel, nil
}

// ID returns the relation's identifier
func (r *Relation) ID() valueobjects.RelationID {
	return r.id
}

// TreeID returns the owning tree's identifier
func (r *Relation) TreeID() valueobjects.TreeID {
	return r.treeID
}

// FromNodeID returns the source endpoint; for PARENT this is the parent
func (r *Relation) FromNodeID() valueobjects.NodeID {
	return r.fromNodeID
}

// ToNodeID returns the target endpoint; for PARENT this is the child
func (r *Relation) ToNodeID() valueobjects.NodeID {
	return r.toNodeID
}

// Type returns the relation type
func (r *Relation) Type() RelationType {
	return r.relationType
}

// MarriageDate returns the marriage date for SPOUSE relations, if recorded
func (r *Relation) MarriageDate() *time.Time {
	return r.marriageDate
}

// DivorceDate returns the divorce date for SPOUSE relations, if recorded
func (r *Relation) DivorceDate() *time.Time {
	return r.divorceDate
}

// IsActive reports whether a SPOUSE relation represents a current marriage
func (r *Relation) IsActive() bool {
	return r.isActive
}

// Touches reports whether the relation has the given node as an endpoint
func (r *Relation) Touches(nodeID valueobjects.NodeID) bool {
	return r.fromNodeID.Equals(nodeID) || r.toNodeID.Equals(nodeID)
}

// CreatedAt returns when the relation was created
func (r *Relation) CreatedAt() time.Time {
	return r.createdAt
}

// UpdatedAt returns when the relation was last updated
func (r *Relation) UpdatedAt() time.Time {
	return r.updatedAt
}
