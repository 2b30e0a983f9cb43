// Package memory provides in-memory implementations of the persistence
// ports. They back the handler and HTTP tests and are usable as a local
// development store.
package memory

import (
	"context"
	"sync"

	"famtree-backend/application/ports"
	"famtree-backend/domain/core/entities"
	"famtree-backend/domain/core/valueobjects"
	"famtree-backend/domain/events"
	pkgerrors "famtree-backend/pkg/errors"
)

// Store holds all repository state behind one mutex
type Store struct {
	mu          sync.RWMutex
	trees       map[string]*entities.Tree
	nodes       map[string]map[string]*entities.Node
	relations   map[string]map[string]*entities.Relation
	memberships map[string]ports.Membership
	users       map[string]ports.UserSummary
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		trees:       make(map[string]*entities.Tree),
		nodes:       make(map[string]map[string]*entities.Node),
		relations:   make(map[string]map[string]*entities.Relation),
		memberships: make(map[string]ports.Membership),
		users:       make(map[string]ports.UserSummary),
	}
}

func membershipKey(familyID, userID string) string {
	return familyID + "/" + userID
}

// PutMembership seeds a membership record
func (s *Store) PutMembership(m ports.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[membershipKey(m.FamilyID, m.UserID)] = m
}

// PutUser seeds a user profile summary
func (s *Store) PutUser(u ports.UserSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// Trees returns the tree repository view of the store
func (s *Store) Trees() ports.TreeRepository { return (*treeRepository)(s) }

// Nodes returns the node repository view of the store
func (s *Store) Nodes() ports.NodeRepository { return (*nodeRepository)(s) }

// Relations returns the relation repository view of the store
func (s *Store) Relations() ports.RelationRepository { return (*relationRepository)(s) }

// Memberships returns the membership repository view of the store
func (s *Store) Memberships() ports.MembershipRepository { return (*membershipRepository)(s) }

// Users returns the user directory view of the store
func (s *Store) Users() ports.UserDirectory { return (*userDirectory)(s) }

type treeRepository Store

func (r *treeRepository) Save(ctx context.Context, tree *entities.Tree) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trees[tree.ID().String()] = tree
	return nil
}

func (r *treeRepository) SaveVersioned(ctx context.Context, tree *entities.Tree, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.trees[tree.ID().String()]
	if expectedVersion == 0 {
		if exists {
			return pkgerrors.NewConflictError("tree already exists")
		}
	} else if !exists || stored.Version() != expectedVersion {
		return pkgerrors.NewConflictError("tree version mismatch")
	}
	r.trees[tree.ID().String()] = tree
	return nil
}

// GetByID returns a detached copy so caller mutations cannot alias the
// stored record, matching read semantics of the DynamoDB repository.
func (r *treeRepository) GetByID(ctx context.Context, id valueobjects.TreeID) (*entities.Tree, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tree, ok := r.trees[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("tree")
	}
	return entities.ReconstructTree(
		tree.ID(), tree.FamilyID(), tree.Name(), tree.Description(), tree.CreatorID(),
		tree.Version(), tree.CreatedAt(), tree.UpdatedAt(),
	)
}

type nodeRepository Store

func (r *nodeRepository) GetByTreeID(ctx context.Context, treeID valueobjects.TreeID) ([]*entities.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var nodes []*entities.Node
	for _, node := range r.nodes[treeID.String()] {
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (r *nodeRepository) BatchUpsert(ctx context.Context, treeID valueobjects.TreeID, nodes []*entities.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket := r.nodes[treeID.String()]
	if bucket == nil {
		bucket = make(map[string]*entities.Node)
		r.nodes[treeID.String()] = bucket
	}
	for _, node := range nodes {
		bucket[node.ID().String()] = node
	}
	return nil
}

func (r *nodeRepository) BatchDelete(ctx context.Context, treeID valueobjects.TreeID, ids []valueobjects.NodeID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.nodes[treeID.String()], id.String())
	}
	return nil
}

type relationRepository Store

func (r *relationRepository) GetByTreeID(ctx context.Context, treeID valueobjects.TreeID) ([]*entities.Relation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var relations []*entities.Relation
	for _, rel := range r.relations[treeID.String()] {
		relations = append(relations, rel)
	}
	return relations, nil
}

func (r *relationRepository) BatchUpsert(ctx context.Context, treeID valueobjects.TreeID, relations []*entities.Relation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket := r.relations[treeID.String()]
	if bucket == nil {
		bucket = make(map[string]*entities.Relation)
		r.relations[treeID.String()] = bucket
	}
	for _, rel := range relations {
		bucket[rel.ID().String()] = rel
	}
	return nil
}

func (r *relationRepository) BatchDelete(ctx context.Context, treeID valueobjects.TreeID, ids []valueobjects.RelationID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.relations[treeID.String()], id.String())
	}
	return nil
}

type membershipRepository Store

func (r *membershipRepository) GetMembership(ctx context.Context, familyID, userID string) (*ports.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.memberships[membershipKey(familyID, userID)]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("membership")
	}
	return &m, nil
}

type userDirectory Store

func (d *userDirectory) GetUser(ctx context.Context, userID string) (*ports.UserSummary, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[userID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("user")
	}
	return &u, nil
}

// NopPublisher discards events. Tests and local runs use it in place of
// the EventBridge publisher.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event events.DomainEvent) error { return nil }

func (NopPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error { return nil }
