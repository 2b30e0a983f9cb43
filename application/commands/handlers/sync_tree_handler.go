package handlers

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"famtree-backend/application/commands"
	"famtree-backend/application/commands/bus"
	"famtree-backend/application/ports"
	"famtree-backend/application/queries"
	"famtree-backend/application/services"
	"famtree-backend/domain/config"
	"famtree-backend/domain/core/entities"
	"famtree-backend/domain/core/validators"
	"famtree-backend/domain/core/valueobjects"
	"famtree-backend/domain/events"
	pkgerrors "famtree-backend/pkg/errors"
)

// SyncTreeHandler reconciles a tree's stored graph against the client's
// full desired state. The submission is authoritative: nodes and relations
// it carries are upserted, stored records it omits are deleted.
//
// Persistence runs in fixed-size transactional batches. Batches are
// sequential so a failure leaves a clean prefix: everything before the
// failing batch is committed, everything after is untouched. Node writes
// land before relation validation, so a rejected relation never rolls
// back accepted nodes.
type SyncTreeHandler struct {
	trees     ports.TreeRepository
	nodes     ports.NodeRepository
	relations ports.RelationRepository
	users     ports.UserDirectory
	gate      *services.AuthorizationGate
	validator *validators.RelationValidator
	publisher ports.EventPublisher
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewSyncTreeHandler wires the reconciler
func NewSyncTreeHandler(
	trees ports.TreeRepository,
	nodes ports.NodeRepository,
	relations ports.RelationRepository,
	users ports.UserDirectory,
	gate *services.AuthorizationGate,
	validator *validators.RelationValidator,
	publisher ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *SyncTreeHandler {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &SyncTreeHandler{
		trees:     trees,
		nodes:     nodes,
		relations: relations,
		users:     users,
		gate:      gate,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Handle runs the full reconciliation and returns the authoritative
// post-sync tree view
func (h *SyncTreeHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	syncCmd, ok := cmd.(commands.SyncTreeCommand)
	if !ok {
		return nil, pkgerrors.NewInternalError(fmt.Sprintf("unexpected command type %T", cmd))
	}
	if err := syncCmd.Validate(); err != nil {
		return nil, err
	}

	treeID, err := valueobjects.NewTreeIDFromString(syncCmd.TreeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("tree id: " + err.Error())
	}

	// Convert the whole submission up front so a malformed record rejects
	// the sync before any write happens.
	desiredNodes := make([]*entities.Node, 0, len(syncCmd.Nodes))
	for _, input := range syncCmd.Nodes {
		node, err := input.ToNode(treeID)
		if err != nil {
			return nil, err
		}
		desiredNodes = append(desiredNodes, node)
	}
	if len(desiredNodes) > h.cfg.MaxNodesPerTree {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("tree exceeds the %d node limit", h.cfg.MaxNodesPerTree))
	}

	desiredRelations := make([]*entities.Relation, 0, len(syncCmd.Relations))
	for _, input := range syncCmd.Relations {
		rel, err := input.ToRelation(treeID)
		if err != nil {
			return nil, err
		}
		desiredRelations = append(desiredRelations, rel)
	}

	tree, err := h.trees.GetByID(ctx, treeID)
	if err != nil {
		return nil, err
	}

	access, err := h.gate.Authorize(ctx, syncCmd.CallerID, tree.FamilyID())
	if err != nil {
		return nil, err
	}
	if !access.CanWrite {
		return nil, pkgerrors.NewForbiddenError("only family admins can sync the tree")
	}

	if syncCmd.ExpectedVersion > 0 && tree.Version() != syncCmd.ExpectedVersion {
		return nil, pkgerrors.NewConflictError(fmt.Sprintf(
			"tree version is %d, sync expected %d", tree.Version(), syncCmd.ExpectedVersion))
	}

	storedNodes, err := h.nodes.GetByTreeID(ctx, treeID)
	if err != nil {
		return nil, err
	}
	storedRelations, err := h.relations.GetByTreeID(ctx, treeID)
	if err != nil {
		return nil, err
	}

	// Phase 1: node upserts. These commit batch by batch; a later
	// rejection does not undo them.
	if err := h.upsertNodes(ctx, treeID, desiredNodes); err != nil {
		return nil, err
	}

	// Phase 2: validate every desired relation against the desired graph.
	// Endpoints must exist in the submission itself, since omitted nodes
	// are about to be deleted.
	snapshot := validators.NewGraphSnapshot(desiredNodes, desiredRelations)
	for _, rel := range desiredRelations {
		if err := h.validator.Validate(rel, snapshot); err != nil {
			if appErr := pkgerrors.GetAppError(err); appErr != nil {
				appErr.WithDetails(map[string]interface{}{"relationId": rel.ID().String()})
			}
			return nil, err
		}
	}

	// Phase 3: deletes before relation upserts, relations before nodes so
	// no stored edge ever points at a removed node.
	relationDeletes := relationIDsToDelete(storedRelations, desiredRelations)
	if err := h.deleteRelations(ctx, treeID, relationDeletes); err != nil {
		return nil, err
	}

	nodeDeletes := nodeIDsToDelete(storedNodes, desiredNodes)
	if err := h.deleteNodes(ctx, treeID, nodeDeletes); err != nil {
		return nil, err
	}

	// Phase 4: relation upserts.
	if err := h.upsertRelations(ctx, treeID, desiredRelations); err != nil {
		return nil, err
	}

	// Phase 5: bump the tree version. With an expected version this is a
	// conditional write so two concurrent syncs cannot both win.
	previousVersion := tree.Version()
	tree.IncrementVersion()
	if syncCmd.ExpectedVersion > 0 {
		err = h.trees.SaveVersioned(ctx, tree, previousVersion)
	} else {
		err = h.trees.Save(ctx, tree)
	}
	if err != nil {
		return nil, err
	}

	event := events.NewTreeSynced(
		treeID.String(), tree.FamilyID(), syncCmd.CallerID,
		len(desiredNodes), len(relationDeletes), len(desiredRelations), tree.Version())
	if h.publisher != nil {
		if err := h.publisher.Publish(ctx, event); err != nil {
			// The sync itself succeeded; a lost event is log-worthy only.
			h.logger.Warn("failed to publish tree synced event",
				zap.String("treeId", treeID.String()), zap.Error(err))
		}
	}

	h.logger.Info("tree synced",
		zap.String("treeId", treeID.String()),
		zap.String("syncedBy", syncCmd.CallerID),
		zap.Int("nodes", len(desiredNodes)),
		zap.Int("relations", len(desiredRelations)),
		zap.Int("relationsDeleted", len(relationDeletes)),
		zap.Int("nodesDeleted", len(nodeDeletes)),
		zap.Int("version", tree.Version()))

	// Re-read persisted state so the response reflects what the store
	// actually holds, not what we intended to write.
	return h.assembleView(ctx, tree, syncCmd.CallerID, access.CanWrite)
}

func (h *SyncTreeHandler) upsertNodes(ctx context.Context, treeID valueobjects.TreeID, nodes []*entities.Node) error {
	for i, batch := range chunk(nodes, h.cfg.SyncBatchSize) {
		batchCtx, cancel := context.WithTimeout(ctx, h.cfg.BatchTimeout)
		err := h.nodes.BatchUpsert(batchCtx, treeID, batch)
		cancel()
		if err != nil {
			return batchError(err, "node batch", i)
		}
	}
	return nil
}

func (h *SyncTreeHandler) upsertRelations(ctx context.Context, treeID valueobjects.TreeID, relations []*entities.Relation) error {
	for i, batch := range chunk(relations, h.cfg.SyncBatchSize) {
		batchCtx, cancel := context.WithTimeout(ctx, h.cfg.BatchTimeout)
		err := h.relations.BatchUpsert(batchCtx, treeID, batch)
		cancel()
		if err != nil {
			return batchError(err, "relation batch", i)
		}
	}
	return nil
}

func (h *SyncTreeHandler) deleteRelations(ctx context.Context, treeID valueobjects.TreeID, ids []valueobjects.RelationID) error {
	for i, batch := range chunk(ids, h.cfg.SyncBatchSize) {
		batchCtx, cancel := context.WithTimeout(ctx, h.cfg.BatchTimeout)
		err := h.relations.BatchDelete(batchCtx, treeID, batch)
		cancel()
		if err != nil {
			return batchError(err, "relation delete batch", i)
		}
	}
	return nil
}

func (h *SyncTreeHandler) deleteNodes(ctx context.Context, treeID valueobjects.TreeID, ids []valueobjects.NodeID) error {
	for i, batch := range chunk(ids, h.cfg.SyncBatchSize) {
		batchCtx, cancel := context.WithTimeout(ctx, h.cfg.BatchTimeout)
		err := h.nodes.BatchDelete(batchCtx, treeID, batch)
		cancel()
		if err != nil {
			return batchError(err, "node delete batch", i)
		}
	}
	return nil
}

// batchError surfaces an expired batch deadline as a TIMEOUT error so the
// client sees 408 rather than an opaque internal failure
func batchError(err error, what string, i int) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.NewTimeoutError(fmt.Sprintf("%s %d", what, i+1))
	}
	return pkgerrors.Wrapf(err, "%s %d", what, i+1)
}

func (h *SyncTreeHandler) assembleView(ctx context.Context, tree *entities.Tree, callerID string, isAdmin bool) (*queries.TreeView, error) {
	nodes, err := h.nodes.GetByTreeID(ctx, tree.ID())
	if err != nil {
		return nil, err
	}
	relations, err := h.relations.GetByTreeID(ctx, tree.ID())
	if err != nil {
		return nil, err
	}

	var creator *ports.UserSummary
	if h.users != nil {
		creator, err = h.users.GetUser(ctx, tree.CreatorID())
		if err != nil {
			h.logger.Debug("creator lookup failed",
				zap.String("creatorId", tree.CreatorID()), zap.Error(err))
			creator = nil
		}
	}

	return queries.NewTreeView(tree, nodes, relations, creator, isAdmin), nil
}

// relationIDsToDelete returns the stored relation identifiers absent from
// the desired set
func relationIDsToDelete(stored, desired []*entities.Relation) []valueobjects.RelationID {
	keep := make(map[string]struct{}, len(desired))
	for _, rel := range desired {
		keep[rel.ID().String()] = struct{}{}
	}

	var doomed []valueobjects.RelationID
	for _, rel := range stored {
		if _, ok := keep[rel.ID().String()]; !ok {
			doomed = append(doomed, rel.ID())
		}
	}
	return doomed
}

// nodeIDsToDelete returns the stored node identifiers absent from the
// desired set
func nodeIDsToDelete(stored, desired []*entities.Node) []valueobjects.NodeID {
	keep := make(map[string]struct{}, len(desired))
	for _, node := range desired {
		keep[node.ID().String()] = struct{}{}
	}

	var doomed []valueobjects.NodeID
	for _, node := range stored {
		if _, ok := keep[node.ID().String()]; !ok {
			doomed = append(doomed, node.ID())
		}
	}
	return doomed
}

// chunk splits items into consecutive slices of at most size elements
func chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	var batches [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
