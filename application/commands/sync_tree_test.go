package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"famtree-backend/domain/core/entities"
	"famtree-backend/domain/core/valueobjects"
	pkgerrors "famtree-backend/pkg/errors"
)

func validSync() SyncTreeCommand {
	return SyncTreeCommand{
		TreeID:   "tree-1",
		CallerID: "user-1",
		Nodes: []NodeInput{
			{
				ID: "n1", FirstName: "Alice", LastName: "Example",
				DateOfBirth: "1950-01-01", Gender: "FEMALE", IsAlive: true,
				BirthPlace: "Springfield", CurrentPlace: "Springfield",
			},
		},
		Relations: []RelationInput{
			{ID: "r1", FromNodeID: "n1", ToNodeID: "n2", RelationType: "PARENT"},
		},
	}
}

func TestSyncTreeCommand_Validate(t *testing.T) {
	assert.NoError(t, validSync().Validate())
}

func TestSyncTreeCommand_RequiresCaller(t *testing.T) {
	cmd := validSync()
	cmd.CallerID = ""
	assert.True(t, pkgerrors.IsUnauthorized(cmd.Validate()))
}

func TestSyncTreeCommand_RejectsDuplicateNodeIDs(t *testing.T) {
	cmd := validSync()
	cmd.Nodes = append(cmd.Nodes, cmd.Nodes[0])
	err := cmd.Validate()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSyncTreeCommand_RejectsDuplicateRelationIDs(t *testing.T) {
	cmd := validSync()
	cmd.Relations = append(cmd.Relations, cmd.Relations[0])
	err := cmd.Validate()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSyncTreeCommand_RejectsUnknownGender(t *testing.T) {
	cmd := validSync()
	cmd.Nodes[0].Gender = "UNKNOWN"
	assert.True(t, pkgerrors.IsValidation(cmd.Validate()))
}

func TestNodeInput_ToNode(t *testing.T) {
	treeID := valueobjects.NewTreeID()
	x, y := 10.0, 20.0
	input := NodeInput{
		ID: "n1", FirstName: "Alice", LastName: "Example",
		DateOfBirth: "1950-01-01", Gender: "FEMALE", IsAlive: true,
		BirthPlace: "Springfield", CurrentPlace: "Springfield",
		PositionX: &x, PositionY: &y,
	}

	node, err := input.ToNode(treeID)
	require.NoError(t, err)
	assert.Equal(t, "n1", node.ID().String())
	assert.Equal(t, entities.GenderFemale, node.Gender())
	assert.Equal(t, 1950, node.DateOfBirth().Year())
	require.NotNil(t, node.Position())
	assert.Equal(t, 10.0, node.Position().X)
}

func TestNodeInput_ToNodeRejectsBadDeathDate(t *testing.T) {
	bad := "not-a-date"
	input := NodeInput{
		ID: "n1", FirstName: "Alice", LastName: "Example",
		DateOfBirth: "1950-01-01", DateOfDeath: &bad, Gender: "FEMALE",
		BirthPlace: "Springfield", CurrentPlace: "Springfield",
	}

	_, err := input.ToNode(valueobjects.NewTreeID())
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestRelationInput_ToRelation(t *testing.T) {
	treeID := valueobjects.NewTreeID()
	input := RelationInput{ID: "r1", FromNodeID: "a", ToNodeID: "b", RelationType: "SPOUSE"}

	relation, err := input.ToRelation(treeID)
	require.NoError(t, err)
	assert.Equal(t, entities.RelationSpouse, relation.Type())
	assert.True(t, relation.IsActive(), "isActive defaults to true when omitted")

	inactive := false
	input.IsActive = &inactive
	relation, err = input.ToRelation(treeID)
	require.NoError(t, err)
	assert.False(t, relation.IsActive())
}
