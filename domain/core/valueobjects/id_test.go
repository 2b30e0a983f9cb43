package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeID_JSONRoundTrip(t *testing.T) {
	// validateHandle permits quotes and backslashes, so marshalling must
	// escape them rather than emit broken JSON
	id, err := NewNodeIDFromString(`n"1\x`)
	require.NoError(t, err)

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	var decoded NodeID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, id.Equals(decoded))
}

func TestRelationID_JSONRoundTrip(t *testing.T) {
	id, err := NewRelationIDFromString("r1")
	require.NoError(t, err)

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"r1"`, string(data))

	var decoded RelationID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "r1", decoded.String())

	assert.Error(t, json.Unmarshal([]byte(`42`), &decoded))
}

func TestValidateHandle(t *testing.T) {
	_, err := NewNodeIDFromString("")
	assert.Error(t, err)

	_, err = NewNodeIDFromString("has space")
	assert.Error(t, err)

	_, err = NewNodeIDFromString("has#hash")
	assert.Error(t, err)

	_, err = NewNodeIDFromString("ok-handle_1")
	assert.NoError(t, err)
}
