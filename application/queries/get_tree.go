package queries

import (
	"time"

	"famtree-backend/application/ports"
	"famtree-backend/domain/core/entities"
	pkgerrors "famtree-backend/pkg/errors"
	"famtree-backend/pkg/utils"
)

// GetTreeQuery fetches a full tree view for a caller
type GetTreeQuery struct {
	TreeID   string
	CallerID string
}

// Validate checks the query shape
func (q GetTreeQuery) Validate() error {
	if q.TreeID == "" {
		return pkgerrors.NewValidationError("treeId is required")
	}
	if q.CallerID == "" {
		return pkgerrors.NewUnauthorizedError("missing caller identity")
	}
	return nil
}

// NodeView is the wire representation of a person node
type NodeView struct {
	ID             string                 `json:"id"`
	TreeID         string                 `json:"treeId"`
	FirstName      string                 `json:"firstName"`
	LastName       string                 `json:"lastName"`
	DateOfBirth    string                 `json:"dateOfBirth"`
	DateOfDeath    *string                `json:"dateOfDeath"`
	Gender         string                 `json:"gender"`
	IsAlive        bool                   `json:"isAlive"`
	BirthPlace     string                 `json:"birthPlace"`
	CurrentPlace   string                 `json:"currentPlace"`
	ProfileImage   *string                `json:"profileImage"`
	Biography      *string                `json:"biography"`
	CustomFields   map[string]interface{} `json:"customFields,omitempty"`
	LinkedMemberID *string                `json:"linkedMemberId"`
	PositionX      *float64               `json:"positionX"`
	PositionY      *float64               `json:"positionY"`
	CreatedAt      string                 `json:"createdAt"`
	UpdatedAt      string                 `json:"updatedAt"`
}

// RelationView is the wire representation of a relation edge
type RelationView struct {
	ID           string  `json:"id"`
	TreeID       string  `json:"treeId"`
	FromNodeID   string  `json:"fromNodeId"`
	ToNodeID     string  `json:"toNodeId"`
	RelationType string  `json:"relationType"`
	MarriageDate *string `json:"marriageDate"`
	DivorceDate  *string `json:"divorceDate"`
	IsActive     bool    `json:"isActive"`
}

// TreeView is the assembled read model of a tree: metadata, creator
// summary, the caller's admin flag, and the full node and relation sets
type TreeView struct {
	ID            string             `json:"id"`
	FamilyID      string             `json:"familyId"`
	Name          string             `json:"name"`
	Description   string             `json:"description,omitempty"`
	Creator       *ports.UserSummary `json:"creator,omitempty"`
	Version       int                `json:"version"`
	CallerIsAdmin bool               `json:"callerIsAdmin"`
	Nodes         []NodeView         `json:"nodes"`
	Relations     []RelationView     `json:"relations"`
	CreatedAt     string             `json:"createdAt"`
	UpdatedAt     string             `json:"updatedAt"`
}

// NewNodeView converts a node entity into its wire representation
func NewNodeView(n *entities.Node) NodeView {
	view := NodeView{
		ID:             n.ID().String(),
		TreeID:         n.TreeID().String(),
		FirstName:      n.FirstName(),
		LastName:       n.LastName(),
		DateOfBirth:    utils.FormatDate(n.DateOfBirth()),
		DateOfDeath:    utils.FormatOptionalDate(n.DateOfDeath()),
		Gender:         string(n.Gender()),
		IsAlive:        n.IsAlive(),
		BirthPlace:     n.BirthPlace(),
		CurrentPlace:   n.CurrentPlace(),
		ProfileImage:   n.ProfileImage(),
		Biography:      n.Biography(),
		CustomFields:   n.CustomFields(),
		LinkedMemberID: n.LinkedMemberID(),
		CreatedAt:      n.CreatedAt().Format(time.RFC3339),
		UpdatedAt:      n.UpdatedAt().Format(time.RFC3339),
	}
	if pos := n.Position(); pos != nil {
		x, y := pos.X, pos.Y
		view.PositionX = &x
		view.PositionY = &y
	}
	return view
}

// NewRelationView converts a relation entity into its wire representation
func NewRelationView(r *entities.Relation) RelationView {
	return RelationView{
		ID:           r.ID().String(),
		TreeID:       r.TreeID().String(),
		FromNodeID:   r.FromNodeID().String(),
		ToNodeID:     r.ToNodeID().String(),
		RelationType: string(r.Type()),
		MarriageDate: utils.FormatOptionalDate(r.MarriageDate()),
		DivorceDate:  utils.FormatOptionalDate(r.DivorceDate()),
		IsActive:     r.IsActive(),
	}
}

// NewTreeView assembles the full tree read model
func NewTreeView(
	tree *entities.Tree,
	nodes []*entities.Node,
	relations []*entities.Relation,
	creator *ports.UserSummary,
	callerIsAdmin bool,
) *TreeView {
	view := &TreeView{
		ID:            tree.ID().String(),
		FamilyID:      tree.FamilyID(),
		Name:          tree.Name(),
		Description:   tree.Description(),
		Creator:       creator,
		Version:       tree.Version(),
		CallerIsAdmin: callerIsAdmin,
		Nodes:         make([]NodeView, 0, len(nodes)),
		Relations:     make([]RelationView, 0, len(relations)),
		CreatedAt:     tree.CreatedAt().Format(time.RFC3339),
		UpdatedAt:     tree.UpdatedAt().Format(time.RFC3339),
	}

	for _, n := range nodes {
		view.Nodes = append(view.Nodes, NewNodeView(n))
	}
	for _, r := range relations {
		view.Relations = append(view.Relations, NewRelationView(r))
	}
	return view
}
