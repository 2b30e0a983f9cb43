package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"famtree-backend/domain/core/valueobjects"
)

func mustRelationID(t *testing.T, raw string) valueobjects.RelationID {
	t.Helper()
	id, err := valueobjects.NewRelationIDFromString(raw)
	require.NoError(t, err)
	return id
}

func TestParseRelationType_Strict(t *testing.T) {
	for _, raw := range []string{"PARENT", "SPOUSE"} {
		relType, err := ParseRelationType(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, string(relType))
	}

	// Unknown and missing types are rejected, never defaulted
	for _, raw := range []string{"", "parent", "SIBLING", "COUSIN"} {
		_, err := ParseRelationType(raw)
		assert.Error(t, err, "expected rejection for %q", raw)
	}
}

func TestNewRelation_RejectsSelfLoop(t *testing.T) {
	treeID := mustTreeID(t, "tree-1")
	nodeID := mustNodeID(t, "n1")

	_, err := NewRelation(mustRelationID(t, "r1"), treeID, nodeID, nodeID, RelationParent, nil, nil, true)
	assert.Error(t, err)
}

func TestNewRelation_Valid(t *testing.T) {
	treeID := mustTreeID(t, "tree-1")
	marriage := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)

	rel, err := NewRelation(
		mustRelationID(t, "r1"), treeID,
		mustNodeID(t, "n1"), mustNodeID(t, "n2"),
		RelationSpouse, &marriage, nil, true,
	)
	require.NoError(t, err)

	assert.Equal(t, RelationSpouse, rel.Type())
	assert.True(t, rel.IsActive())
	assert.True(t, rel.Touches(mustNodeID(t, "n1")))
	assert.True(t, rel.Touches(mustNodeID(t, "n2")))
	assert.False(t, rel.Touches(mustNodeID(t, "n3")))
}
