package valueobjects

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const maxIDLength = 64

// NodeID is a value object identifying a person node within a tree.
// Identifiers are client-supplied handles, so any reasonable opaque
// string is accepted; server-generated IDs are UUIDs.
type NodeID struct {
	value string
}

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID{value: uuid.New().String()}
}

// NewNodeIDFromString creates a NodeID from an existing handle
func NewNodeIDFromString(id string) (NodeID, error) {
	if err := validateHandle(id); err != nil {
		return NodeID{}, err
	}
	return NodeID{value: id}, nil
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return id.value
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id NodeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &id.value)
}

// RelationID identifies a relation edge within a tree
type RelationID struct {
	value string
}

// NewRelationID creates a new random RelationID
func NewRelationID() RelationID {
	return RelationID{value: uuid.New().String()}
}

// NewRelationIDFromString creates a RelationID from an existing handle
func NewRelationIDFromString(id string) (RelationID, error) {
	if err := validateHandle(id); err != nil {
		return RelationID{}, err
	}
	return RelationID{value: id}, nil
}

// String returns the string representation of the RelationID
func (id RelationID) String() string {
	return id.value
}

// Equals checks if two RelationIDs are equal
func (id RelationID) Equals(other RelationID) bool {
	return id.value == other.value
}

// IsZero checks if the RelationID is the zero value
func (id RelationID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id RelationID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *RelationID) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &id.value)
}

// TreeID identifies a family tree
type TreeID struct {
	value string
}

// NewTreeID creates a new random TreeID
func NewTreeID() TreeID {
	return TreeID{value: uuid.New().String()}
}

// NewTreeIDFromString creates a TreeID from an existing handle
func NewTreeIDFromString(id string) (TreeID, error) {
	if err := validateHandle(id); err != nil {
		return TreeID{}, err
	}
	return TreeID{value: id}, nil
}

// String returns the string representation of the TreeID
func (id TreeID) String() string {
	return id.value
}

// Equals checks if two TreeIDs are equal
func (id TreeID) Equals(other TreeID) bool {
	return id.value == other.value
}

// IsZero checks if the TreeID is the zero value
func (id TreeID) IsZero() bool {
	return id.value == ""
}

// validateHandle checks that an identifier is a usable key component
func validateHandle(id string) error {
	if id == "" {
		return errors.New("identifier cannot be empty")
	}
	if len(id) > maxIDLength {
		return errors.New("identifier too long")
	}
	if strings.TrimSpace(id) != id || strings.ContainsAny(id, " \t\n#") {
		return errors.New("identifier contains invalid characters")
	}
	return nil
}
