package validators

import (
	"fmt"

	"famtree-backend/domain/core/entities"
	"famtree-backend/domain/core/valueobjects"
	pkgerrors "famtree-backend/pkg/errors"
)

// GraphSnapshot is the prospective graph state a relation is validated
// against: the post-upsert node set and the complete desired relation set.
// Pending upserts count as present, so same-batch references are legal.
type GraphSnapshot struct {
	nodes     map[string]struct{}
	relations []*entities.Relation

	// child ID -> parent IDs, derived from PARENT relations
	parents map[string][]string
}

// NewGraphSnapshot builds a snapshot from nodes and relations
func NewGraphSnapshot(nodes []*entities.Node, relations []*entities.Relation) *GraphSnapshot {
	s := &GraphSnapshot{
		nodes:     make(map[string]struct{}, len(nodes)),
		relations: relations,
		parents:   make(map[string][]string),
	}
	for _, n := range nodes {
		s.nodes[n.ID().String()] = struct{}{}
	}
	for _, r := range relations {
		if r.Type() == entities.RelationParent {
			child := r.ToNodeID().String()
			s.parents[child] = append(s.parents[child], r.FromNodeID().String())
		}
	}
	return s
}

// HasNode reports whether the snapshot contains the node
func (s *GraphSnapshot) HasNode(id valueobjects.NodeID) bool {
	_, ok := s.nodes[id.String()]
	return ok
}

// Relations returns the snapshot's relation set
func (s *GraphSnapshot) Relations() []*entities.Relation {
	return s.relations
}

// isAncestor reports whether ancestor is a transitive ancestor of node,
// walking upward through PARENT edges. The visited set bounds the walk by
// the node count, so a pre-existing cycle cannot hang it.
func (s *GraphSnapshot) isAncestor(ancestor, node valueobjects.NodeID) bool {
	target := ancestor.String()
	visited := make(map[string]struct{})
	stack := []string{node.String()}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}

		for _, parent := range s.parents[current] {
			if parent == target {
				return true
			}
			stack = append(stack, parent)
		}
	}
	return false
}

// RelationValidator evaluates whether a proposed relation is structurally
// and semantically legal given a graph snapshot. It is a pure function of
// its inputs: no hidden state, no I/O.
type RelationValidator struct{}

// NewRelationValidator creates a relation validator
func NewRelationValidator() *RelationValidator {
	return &RelationValidator{}
}

// Validate runs the ordered relation checks, short-circuiting on the first
// failure. A nil return means the relation is legal in the snapshot.
func (v *RelationValidator) Validate(rel *entities.Relation, snapshot *GraphSnapshot) error {
	if rel == nil {
		return pkgerrors.NewValidationError("relation cannot be nil")
	}

	// Type well-formedness. Entity construction enforces this too, but the
	// validator re-checks so partially constructed input cannot slip by.
	if _, err := entities.ParseRelationType(string(rel.Type())); err != nil {
		return err
	}

	// Endpoint existence
	if !snapshot.HasNode(rel.FromNodeID()) {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("relation %s references unknown node %s", rel.ID(), rel.FromNodeID()))
	}
	if !snapshot.HasNode(rel.ToNodeID()) {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("relation %s references unknown node %s", rel.ID(), rel.ToNodeID()))
	}

	// Self loop
	if rel.FromNodeID().Equals(rel.ToNodeID()) {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("relation %s connects node %s to itself", rel.ID(), rel.FromNodeID()))
	}

	switch rel.Type() {
	case entities.RelationParent:
		return v.validateAcyclic(rel, snapshot)
	case entities.RelationSpouse:
		return v.validateSpouseExclusivity(rel, snapshot)
	}
	return nil
}

// validateAcyclic rejects a PARENT edge whose child is already a transitive
// ancestor of the parent: recording a descendant as a parent of their own
// ancestor would close a cycle.
func (v *RelationValidator) validateAcyclic(rel *entities.Relation, snapshot *GraphSnapshot) error {
	if snapshot.isAncestor(rel.ToNodeID(), rel.FromNodeID()) {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("parent relation %s would create a cycle: %s is an ancestor of %s",
				rel.ID(), rel.ToNodeID(), rel.FromNodeID()))
	}
	return nil
}

// validateSpouseExclusivity enforces at most one active SPOUSE relation per
// node. Because validation runs against the full desired state, an existing
// marriage that the submission deactivates (or omits) does not block a new
// one.
func (v *RelationValidator) validateSpouseExclusivity(rel *entities.Relation, snapshot *GraphSnapshot) error {
	if !rel.IsActive() {
		return nil
	}

	for _, other := range snapshot.Relations() {
		if other.ID().Equals(rel.ID()) || other.Type() != entities.RelationSpouse || !other.IsActive() {
			continue
		}
		for _, endpoint := range []valueobjects.NodeID{rel.FromNodeID(), rel.ToNodeID()} {
			if other.Touches(endpoint) {
				return pkgerrors.NewValidationError(
					fmt.Sprintf("node %s already has an active spouse relation %s", endpoint, other.ID()))
			}
		}
	}
	return nil
}
