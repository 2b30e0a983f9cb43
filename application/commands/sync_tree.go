package commands

import (
	"famtree-backend/domain/core/entities"
	"famtree-backend/domain/core/valueobjects"
	pkgerrors "famtree-backend/pkg/errors"
	"famtree-backend/pkg/utils"
)

// NodeInput is the wire shape of one person node in a sync submission.
// Identifiers are client-supplied so creates and updates go through the
// same upsert path.
type NodeInput struct {
	ID             string                 `json:"id" validate:"required,max=64"`
	FirstName      string                 `json:"firstName" validate:"required,max=100"`
	LastName       string                 `json:"lastName" validate:"required,max=100"`
	DateOfBirth    string                 `json:"dateOfBirth"`
	DateOfDeath    *string                `json:"dateOfDeath"`
	Gender         string                 `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	IsAlive        bool                   `json:"isAlive"`
	BirthPlace     string                 `json:"birthPlace" validate:"required,max=200"`
	CurrentPlace   string                 `json:"currentPlace" validate:"required,max=200"`
	ProfileImage   *string                `json:"profileImage"`
	Biography      *string                `json:"biography"`
	CustomFields   map[string]interface{} `json:"customFields"`
	LinkedMemberID *string                `json:"linkedMemberId"`
	PositionX      *float64               `json:"positionX"`
	PositionY      *float64               `json:"positionY"`
}

// RelationInput is the wire shape of one relation edge in a sync submission
type RelationInput struct {
	ID           string  `json:"id" validate:"required,max=64"`
	FromNodeID   string  `json:"fromNodeId" validate:"required"`
	ToNodeID     string  `json:"toNodeId" validate:"required"`
	RelationType string  `json:"relationType" validate:"required,oneof=PARENT SPOUSE"`
	MarriageDate *string `json:"marriageDate"`
	DivorceDate  *string `json:"divorceDate"`
	IsActive     *bool   `json:"isActive"`
}

// SyncTreeCommand carries a client's full desired graph state for a tree.
// The stored state is reconciled against it: survivors are upserted and
// dropped relations deleted.
type SyncTreeCommand struct {
	TreeID   string `json:"treeId" validate:"required"`
	CallerID string `json:"-"`

	// ExpectedVersion enables optimistic concurrency: when > 0 the sync is
	// rejected if the stored tree version differs. Zero keeps the original
	// last-write-wins behavior.
	ExpectedVersion int `json:"version"`

	Nodes     []NodeInput     `json:"nodes" validate:"dive"`
	Relations []RelationInput `json:"relations" validate:"dive"`
}

// Validate checks the submission shape before any persistence is touched
func (c SyncTreeCommand) Validate() error {
	if c.CallerID == "" {
		return pkgerrors.NewUnauthorizedError("missing caller identity")
	}
	if err := utils.ValidateStruct(c); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	seenNodes := make(map[string]struct{}, len(c.Nodes))
	for _, n := range c.Nodes {
		if _, dup := seenNodes[n.ID]; dup {
			return pkgerrors.NewValidationError("duplicate node id " + n.ID)
		}
		seenNodes[n.ID] = struct{}{}
	}

	seenRelations := make(map[string]struct{}, len(c.Relations))
	for _, r := range c.Relations {
		if _, dup := seenRelations[r.ID]; dup {
			return pkgerrors.NewValidationError("duplicate relation id " + r.ID)
		}
		seenRelations[r.ID] = struct{}{}
	}

	return nil
}

// ToNode converts a NodeInput into a domain node for the given tree.
// Missing or unparseable dates of birth default to the current time.
func (n NodeInput) ToNode(treeID valueobjects.TreeID) (*entities.Node, error) {
	id, err := valueobjects.NewNodeIDFromString(n.ID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("node id: " + err.Error())
	}

	gender, err := entities.ParseGender(n.Gender)
	if err != nil {
		return nil, err
	}

	death, err := utils.ParseOptionalDate(n.DateOfDeath)
	if err != nil {
		return nil, pkgerrors.NewValidationError("node " + n.ID + ": invalid dateOfDeath")
	}

	var position *entities.Position
	if n.PositionX != nil && n.PositionY != nil {
		position = &entities.Position{X: *n.PositionX, Y: *n.PositionY}
	}

	return entities.NewNode(id, treeID, entities.NodeAttributes{
		FirstName:      n.FirstName,
		LastName:       n.LastName,
		DateOfBirth:    utils.ParseDateOrNow(n.DateOfBirth),
		DateOfDeath:    death,
		IsAlive:        n.IsAlive,
		Gender:         gender,
		BirthPlace:     n.BirthPlace,
		CurrentPlace:   n.CurrentPlace,
		ProfileImage:   n.ProfileImage,
		Biography:      n.Biography,
		CustomFields:   n.CustomFields,
		LinkedMemberID: n.LinkedMemberID,
		Position:       position,
	})
}

// ToRelation converts a RelationInput into a domain relation for the given
// tree. isActive defaults to true when omitted.
func (r RelationInput) ToRelation(treeID valueobjects.TreeID) (*entities.Relation, error) {
	id, err := valueobjects.NewRelationIDFromString(r.ID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("relation id: " + err.Error())
	}

	from, err := valueobjects.NewNodeIDFromString(r.FromNodeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("relation " + r.ID + ": invalid fromNodeId")
	}
	to, err := valueobjects.NewNodeIDFromString(r.ToNodeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("relation " + r.ID + ": invalid toNodeId")
	}

	relationType, err := entities.ParseRelationType(r.RelationType)
	if err != nil {
		return nil, err
	}

	marriage, err := utils.ParseOptionalDate(r.MarriageDate)
	if err != nil {
		return nil, pkgerrors.NewValidationError("relation " + r.ID + ": invalid marriageDate")
	}
	divorce, err := utils.ParseOptionalDate(r.DivorceDate)
	if err != nil {
		return nil, pkgerrors.NewValidationError("relation " + r.ID + ": invalid divorceDate")
	}

	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}

	return entities.NewRelation(id, treeID, from, to, relationType, marriage, divorce, isActive)
}
