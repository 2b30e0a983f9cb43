package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"famtree-backend/application/commands"
	"famtree-backend/application/commands/bus"
	"famtree-backend/application/queries"
	querybus "famtree-backend/application/queries/bus"
	"famtree-backend/pkg/auth"
	"famtree-backend/pkg/common"
	pkgerrors "famtree-backend/pkg/errors"
)

// maxSyncBodyBytes bounds a full-tree sync submission
const maxSyncBodyBytes = 5 << 20

// TreeHandler serves the tree endpoints
type TreeHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewTreeHandler creates the handler
func NewTreeHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *TreeHandler {
	return &TreeHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// CreateTree handles POST /api/v1/trees
func (h *TreeHandler) CreateTree(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, string(pkgerrors.ErrorTypeUnauthorized), "authentication required")
		return
	}

	var cmd commands.CreateTreeCommand
	if err := common.ParseJSONBody(w, r, &cmd, maxSyncBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(pkgerrors.ErrorTypeValidation), "invalid request body: "+err.Error())
		return
	}
	cmd.CallerID = user.UserID

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, result)
}

// GetTree handles GET /api/v1/trees/{treeID}
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, string(pkgerrors.ErrorTypeUnauthorized), "authentication required")
		return
	}

	query := queries.GetTreeQuery{
		TreeID:   chi.URLParam(r, "treeID"),
		CallerID: user.UserID,
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// SyncTree handles PUT /api/v1/trees/{treeID}. The body carries the
// client's full desired graph; the response is the reconciled state as
// stored.
func (h *TreeHandler) SyncTree(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, string(pkgerrors.ErrorTypeUnauthorized), "authentication required")
		return
	}

	var cmd commands.SyncTreeCommand
	if err := common.ParseJSONBody(w, r, &cmd, maxSyncBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(pkgerrors.ErrorTypeValidation), "invalid request body: "+err.Error())
		return
	}
	cmd.TreeID = chi.URLParam(r, "treeID")
	cmd.CallerID = user.UserID

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
