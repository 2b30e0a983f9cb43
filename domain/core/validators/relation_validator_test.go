package validators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"famtree-backend/domain/core/entities"
	"famtree-backend/domain/core/valueobjects"
)

func testTreeID(t *testing.T) valueobjects.TreeID {
	t.Helper()
	id, err := valueobjects.NewTreeIDFromString("tree-1")
	require.NoError(t, err)
	return id
}

func testNode(t *testing.T, treeID valueobjects.TreeID, id string) *entities.Node {
	t.Helper()
	nodeID, err := valueobjects.NewNodeIDFromString(id)
	require.NoError(t, err)
	node, err := entities.NewNode(nodeID, treeID, entities.NodeAttributes{
		FirstName:    "Test",
		LastName:     "Person",
		DateOfBirth:  time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC),
		IsAlive:      true,
		Gender:       entities.GenderOther,
		BirthPlace:   "Springfield",
		CurrentPlace: "Springfield",
	})
	require.NoError(t, err)
	return node
}

func testRelation(t *testing.T, treeID valueobjects.TreeID, id, from, to string, relType entities.RelationType, active bool) *entities.Relation {
	t.Helper()
	relID, err := valueobjects.NewRelationIDFromString(id)
	require.NoError(t, err)
	fromID, err := valueobjects.NewNodeIDFromString(from)
	require.NoError(t, err)
	toID, err := valueobjects.NewNodeIDFromString(to)
	require.NoError(t, err)
	rel, err := entities.NewRelation(relID, treeID, fromID, toID, relType, nil, nil, active)
	require.NoError(t, err)
	return rel
}

func TestRelationValidator_RejectsMissingEndpoints(t *testing.T) {
	treeID := testTreeID(t)
	nodes := []*entities.Node{testNode(t, treeID, "a")}
	rel := testRelation(t, treeID, "r1", "a", "ghost", entities.RelationParent, true)

	validator := NewRelationValidator()
	snapshot := NewGraphSnapshot(nodes, []*entities.Relation{rel})

	err := validator.Validate(rel, snapshot)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestRelationValidator_RejectsParentCycle(t *testing.T) {
	treeID := testTreeID(t)
	nodes := []*entities.Node{
		testNode(t, treeID, "a"),
		testNode(t, treeID, "b"),
		testNode(t, treeID, "c"),
	}
	// a is parent of b, b is parent of c
	existing := []*entities.Relation{
		testRelation(t, treeID, "r1", "a", "b", entities.RelationParent, true),
		testRelation(t, treeID, "r2", "b", "c", entities.RelationParent, true),
	}

	// c as parent of a closes the loop
	closing := testRelation(t, treeID, "r3", "c", "a", entities.RelationParent, true)
	all := append(existing, closing)

	validator := NewRelationValidator()
	snapshot := NewGraphSnapshot(nodes, all)

	err := validator.Validate(closing, snapshot)
	assert.Error(t, err)

	// The straight chain stays valid
	for _, rel := range existing {
		assert.NoError(t, validator.Validate(rel, NewGraphSnapshot(nodes, existing)))
	}
}

func TestRelationValidator_AllowsDiamondAncestry(t *testing.T) {
	treeID := testTreeID(t)
	nodes := []*entities.Node{
		testNode(t, treeID, "grandparent"),
		testNode(t, treeID, "mother"),
		testNode(t, treeID, "father"),
		testNode(t, treeID, "child"),
	}
	// Both parents descend from the same grandparent; the child has two
	// paths up but no cycle.
	relations := []*entities.Relation{
		testRelation(t, treeID, "r1", "grandparent", "mother", entities.RelationParent, true),
		testRelation(t, treeID, "r2", "grandparent", "father", entities.RelationParent, true),
		testRelation(t, treeID, "r3", "mother", "child", entities.RelationParent, true),
		testRelation(t, treeID, "r4", "father", "child", entities.RelationParent, true),
	}

	validator := NewRelationValidator()
	snapshot := NewGraphSnapshot(nodes, relations)
	for _, rel := range relations {
		assert.NoError(t, validator.Validate(rel, snapshot))
	}
}

func TestRelationValidator_RejectsSecondActiveSpouse(t *testing.T) {
	treeID := testTreeID(t)
	nodes := []*entities.Node{
		testNode(t, treeID, "a"),
		testNode(t, treeID, "b"),
		testNode(t, treeID, "c"),
	}
	first := testRelation(t, treeID, "r1", "a", "b", entities.RelationSpouse, true)
	second := testRelation(t, treeID, "r2", "a", "c", entities.RelationSpouse, true)

	validator := NewRelationValidator()
	snapshot := NewGraphSnapshot(nodes, []*entities.Relation{first, second})

	assert.Error(t, validator.Validate(second, snapshot))
}

func TestRelationValidator_AllowsRemarriageAfterDeactivation(t *testing.T) {
	treeID := testTreeID(t)
	nodes := []*entities.Node{
		testNode(t, treeID, "a"),
		testNode(t, treeID, "b"),
		testNode(t, treeID, "c"),
	}
	// The earlier marriage is inactive, so the new one is allowed.
	ended := testRelation(t, treeID, "r1", "a", "b", entities.RelationSpouse, false)
	current := testRelation(t, treeID, "r2", "a", "c", entities.RelationSpouse, true)

	validator := NewRelationValidator()
	snapshot := NewGraphSnapshot(nodes, []*entities.Relation{ended, current})

	assert.NoError(t, validator.Validate(current, snapshot))
	assert.NoError(t, validator.Validate(ended, snapshot))
}

func TestRelationValidator_SpouseDoesNotBlockParent(t *testing.T) {
	treeID := testTreeID(t)
	nodes := []*entities.Node{
		testNode(t, treeID, "a"),
		testNode(t, treeID, "b"),
		testNode(t, treeID, "c"),
	}
	relations := []*entities.Relation{
		testRelation(t, treeID, "r1", "a", "b", entities.RelationSpouse, true),
		testRelation(t, treeID, "r2", "a", "c", entities.RelationParent, true),
		testRelation(t, treeID, "r3", "b", "c", entities.RelationParent, true),
	}

	validator := NewRelationValidator()
	snapshot := NewGraphSnapshot(nodes, relations)
	for _, rel := range relations {
		assert.NoError(t, validator.Validate(rel, snapshot))
	}
}
