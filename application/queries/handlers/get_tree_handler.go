package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"famtree-backend/application/ports"
	"famtree-backend/application/queries"
	"famtree-backend/application/queries/bus"
	"famtree-backend/application/services"
	"famtree-backend/domain/core/valueobjects"
	pkgerrors "famtree-backend/pkg/errors"
)

// GetTreeHandler assembles the full tree read model for an authorized caller
type GetTreeHandler struct {
	trees     ports.TreeRepository
	nodes     ports.NodeRepository
	relations ports.RelationRepository
	users     ports.UserDirectory
	gate      *services.AuthorizationGate
	logger    *zap.Logger
}

// NewGetTreeHandler wires the handler
func NewGetTreeHandler(
	trees ports.TreeRepository,
	nodes ports.NodeRepository,
	relations ports.RelationRepository,
	users ports.UserDirectory,
	gate *services.AuthorizationGate,
	logger *zap.Logger,
) *GetTreeHandler {
	return &GetTreeHandler{
		trees:     trees,
		nodes:     nodes,
		relations: relations,
		users:     users,
		gate:      gate,
		logger:    logger,
	}
}

// Handle loads the tree with its nodes, relations and creator summary
func (h *GetTreeHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	getQuery, ok := query.(queries.GetTreeQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError(fmt.Sprintf("unexpected query type %T", query))
	}

	treeID, err := valueobjects.NewTreeIDFromString(getQuery.TreeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("tree id: " + err.Error())
	}

	tree, err := h.trees.GetByID(ctx, treeID)
	if err != nil {
		return nil, err
	}

	access, err := h.gate.Authorize(ctx, getQuery.CallerID, tree.FamilyID())
	if err != nil {
		return nil, err
	}
	if !access.CanRead {
		return nil, pkgerrors.NewForbiddenError("caller is not an approved member of the family")
	}

	nodes, err := h.nodes.GetByTreeID(ctx, treeID)
	if err != nil {
		return nil, err
	}
	relations, err := h.relations.GetByTreeID(ctx, treeID)
	if err != nil {
		return nil, err
	}

	var creator *ports.UserSummary
	if h.users != nil {
		creator, err = h.users.GetUser(ctx, tree.CreatorID())
		if err != nil {
			// The view degrades to no creator summary rather than failing.
			h.logger.Debug("creator lookup failed",
				zap.String("creatorId", tree.CreatorID()), zap.Error(err))
			creator = nil
		}
	}

	return queries.NewTreeView(tree, nodes, relations, creator, access.CanWrite), nil
}
