package entities

import (
	"time"

	"famtree-backend/domain/config"
	"famtree-backend/domain/core/valueobjects"
	pkgerrors "famtree-backend/pkg/errors"
)

// Gender is the enumerated gender of a person node
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// ParseGender validates and converts a raw gender value
func ParseGender(raw string) (Gender, error) {
	switch Gender(raw) {
	case GenderMale, GenderFemale, GenderOther:
		return Gender(raw), nil
	default:
		return "", pkgerrors.NewValidationError("gender must be MALE, FEMALE or OTHER")
	}
}

// Position holds presentation-only layout coordinates for the tree editor.
// It never participates in graph invariants.
type Position struct {
	X float64
	Y float64
}

// Node is a person entry within a family tree.
// This is a rich domain model with encapsulated business logic.
type Node struct {
	id             valueobjects.NodeID
	treeID         valueobjects.TreeID
	firstName      string
	lastName       string
	dateOfBirth    time.Time
	dateOfDeath    *time.Time
	isAlive        bool
	gender         Gender
	birthPlace     string
	currentPlace   string
	profileImage   *string
	biography      *string
	customFields   map[string]interface{}
	linkedMemberID *string
	position       *Position
	createdAt      time.Time
	updatedAt      time.Time
}

// NodeAttributes carries the mutable person fields used by both the create
// and update paths of tree reconciliation.
type NodeAttributes struct {
	FirstName      string
	LastName       string
	DateOfBirth    time.Time
	DateOfDeath    *time.Time
	IsAlive        bool
	Gender         Gender
	BirthPlace     string
	CurrentPlace   string
	ProfileImage   *string
	Biography      *string
	CustomFields   map[string]interface{}
	LinkedMemberID *string
	Position       *Position
}

// NewNode creates a new node with full business rule validation
func NewNode(id valueobjects.NodeID, treeID valueobjects.TreeID, attrs NodeAttributes) (*Node, error) {
	return NewNodeWithConfig(id, treeID, attrs, config.DefaultDomainConfig())
}

// NewNodeWithConfig creates a new node with configuration
func NewNodeWithConfig(id valueobjects.NodeID, treeID valueobjects.TreeID, attrs NodeAttributes, cfg *config.DomainConfig) (*Node, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if treeID.IsZero() {
		return nil, pkgerrors.NewValidationError("node must belong to a tree")
	}
	if err := validateAttributes(attrs, cfg); err != nil {
		return nil, err
	}

	now := time.Now()
	node := &Node{
		id:        id,
		treeID:    treeID,
		createdAt: now,
		updatedAt: now,
	}
	node.apply(attrs)

	return node, nil
}

// ReconstructNode reconstructs a node from repository data with preserved timestamps
func ReconstructNode(
	id valueobjects.NodeID,
	treeID valueobjects.TreeID,
	attrs NodeAttributes,
	createdAt, updatedAt time.Time,
) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if treeID.IsZero() {
		return nil, pkgerrors.NewValidationError("node must belong to a tree")
	}

	node := &Node{
		id:        id,
		treeID:    treeID,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
	node.apply(attrs)

	return node, nil
}

// Update replaces the person attributes of the node, validating the result.
// Identifier, owning tree and creation time are preserved.
func (n *Node) Update(attrs NodeAttributes) error {
	if err := validateAttributes(attrs, config.DefaultDomainConfig()); err != nil {
		return err
	}
	n.apply(attrs)
	n.updatedAt = time.Now()
	return nil
}

func (n *Node) apply(attrs NodeAttributes) {
	n.firstName = attrs.FirstName
	n.lastName = attrs.LastName
	n.dateOfBirth = attrs.DateOfBirth
	n.dateOfDeath = attrs.DateOfDeath
	n.isAlive = attrs.IsAlive
	n.gender = attrs.Gender
	n.birthPlace = attrs.BirthPlace
	n.currentPlace = attrs.CurrentPlace
	n.profileImage = attrs.ProfileImage
	n.biography = attrs.Biography
	n.customFields = attrs.CustomFields
	n.linkedMemberID = attrs.LinkedMemberID
	n.position = attrs.Position
}

func validateAttributes(attrs NodeAttributes, cfg *config.DomainConfig) error {
	if attrs.FirstName == "" {
		return pkgerrors.NewValidationError("firstName cannot be empty")
	}
	if attrs.LastName == "" {
		return pkgerrors.NewValidationError("lastName cannot be empty")
	}
	if attrs.BirthPlace == "" {
		return pkgerrors.NewValidationError("birthPlace cannot be empty")
	}
	if attrs.CurrentPlace == "" {
		return pkgerrors.NewValidationError("currentPlace cannot be empty")
	}
	if _, err := ParseGender(string(attrs.Gender)); err != nil {
		return err
	}
	if attrs.DateOfDeath != nil {
		if attrs.IsAlive {
			return pkgerrors.NewValidationError("a living person cannot have a date of death")
		}
		if attrs.DateOfDeath.Before(attrs.DateOfBirth) {
			return pkgerrors.NewValidationError("dateOfDeath cannot precede dateOfBirth")
		}
	}
	if len(attrs.CustomFields) > cfg.MaxCustomFields {
		return pkgerrors.NewValidationError("too many custom fields")
	}
	return nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// TreeID returns the owning tree's identifier
func (n *Node) TreeID() valueobjects.TreeID {
	return n.treeID
}

// FirstName returns the person's first name
func (n *Node) FirstName() string {
	return n.firstName
}

// LastName returns the person's last name
func (n *Node) LastName() string {
	return n.lastName
}

// DateOfBirth returns the person's date of birth
func (n *Node) DateOfBirth() time.Time {
	return n.dateOfBirth
}

// DateOfDeath returns the person's date of death, nil when alive or unknown
func (n *Node) DateOfDeath() *time.Time {
	return n.dateOfDeath
}

// IsAlive reports whether the person is recorded as living
func (n *Node) IsAlive() bool {
	return n.isAlive
}

// Gender returns the person's gender
func (n *Node) Gender() Gender {
	return n.gender
}

// BirthPlace returns the person's place of birth
func (n *Node) BirthPlace() string {
	return n.birthPlace
}

// CurrentPlace returns the person's current place, interpreted as the place
// of death when the person is not alive
func (n *Node) CurrentPlace() string {
	return n.currentPlace
}

// ProfileImage returns an optional profile image reference
func (n *Node) ProfileImage() *string {
	return n.profileImage
}

// Biography returns the optional biography text
func (n *Node) Biography() *string {
	return n.biography
}

// CustomFields returns the schema-less custom field map
func (n *Node) CustomFields() map[string]interface{} {
	return n.customFields
}

// LinkedMemberID returns the application user this node represents, if any
func (n *Node) LinkedMemberID() *string {
	return n.linkedMemberID
}

// Position returns the editor layout coordinates, if any
func (n *Node) Position() *Position {
	return n.position
}

// CreatedAt returns when the node was created
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the node was last updated
func (n *Node) UpdatedAt() time.Time {
	return n.updatedAt
}

// Attributes returns a copy of the mutable person fields
func (n *Node) Attributes() NodeAttributes {
	return NodeAttributes{
		FirstName:      n.firstName,
		LastName:       n.lastName,
		DateOfBirth:    n.dateOfBirth,
		DateOfDeath:    n.dateOfDeath,
		IsAlive:        n.isAlive,
		Gender:         n.gender,
		BirthPlace:     n.birthPlace,
		CurrentPlace:   n.currentPlace,
		ProfileImage:   n.profileImage,
		Biography:      n.biography,
		CustomFields:   n.customFields,
		LinkedMemberID: n.linkedMemberID,
		Position:       n.position,
	}
}
