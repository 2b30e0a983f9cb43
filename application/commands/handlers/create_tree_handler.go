package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"famtree-backend/application/commands"
	"famtree-backend/application/commands/bus"
	"famtree-backend/application/ports"
	"famtree-backend/application/queries"
	"famtree-backend/application/services"
	"famtree-backend/domain/core/entities"
	"famtree-backend/domain/events"
	pkgerrors "famtree-backend/pkg/errors"
)

// CreateTreeHandler creates an empty tree for a family
type CreateTreeHandler struct {
	trees     ports.TreeRepository
	users     ports.UserDirectory
	gate      *services.AuthorizationGate
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewCreateTreeHandler wires the handler
func NewCreateTreeHandler(
	trees ports.TreeRepository,
	users ports.UserDirectory,
	gate *services.AuthorizationGate,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *CreateTreeHandler {
	return &CreateTreeHandler{
		trees:     trees,
		users:     users,
		gate:      gate,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle creates the tree and returns its initial view
func (h *CreateTreeHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	createCmd, ok := cmd.(commands.CreateTreeCommand)
	if !ok {
		return nil, pkgerrors.NewInternalError(fmt.Sprintf("unexpected command type %T", cmd))
	}
	if err := createCmd.Validate(); err != nil {
		return nil, err
	}

	access, err := h.gate.Authorize(ctx, createCmd.CallerID, createCmd.FamilyID)
	if err != nil {
		return nil, err
	}
	if !access.CanRead {
		return nil, pkgerrors.NewForbiddenError("caller is not an approved member of the family")
	}

	tree, err := entities.NewTree(createCmd.FamilyID, createCmd.Name, createCmd.Description, createCmd.CallerID)
	if err != nil {
		return nil, err
	}

	if err := h.trees.Save(ctx, tree); err != nil {
		return nil, err
	}

	if h.publisher != nil {
		event := events.NewTreeCreated(tree.ID().String(), tree.FamilyID(), createCmd.CallerID, tree.Name())
		if err := h.publisher.Publish(ctx, event); err != nil {
			h.logger.Warn("failed to publish tree created event",
				zap.String("treeId", tree.ID().String()), zap.Error(err))
		}
	}

	h.logger.Info("tree created",
		zap.String("treeId", tree.ID().String()),
		zap.String("familyId", tree.FamilyID()),
		zap.String("createdBy", createCmd.CallerID))

	var creator *ports.UserSummary
	if h.users != nil {
		if summary, err := h.users.GetUser(ctx, createCmd.CallerID); err == nil {
			creator = summary
		}
	}

	return queries.NewTreeView(tree, nil, nil, creator, access.CanWrite), nil
}
