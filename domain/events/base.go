package events

import (
	"time"

	"github.com/google/uuid"
)

// SourceBackend is the event source attached to published events
const SourceBackend = "famtree.backend"

// Event type names
const (
	EventTypeTreeCreated = "tree.created"
	EventTypeTreeSynced  = "tree.synced"
)

// DomainEvent is implemented by every event the service publishes
type DomainEvent interface {
	EventID() string
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by all domain events
type BaseEvent struct {
	ID          string    `json:"event_id"`
	Type        string    `json:"event_type"`
	Aggregate   string    `json:"aggregate_id"`
	OccurredAtT time.Time `json:"occurred_at"`
}

func newBaseEvent(eventType, aggregateID string) BaseEvent {
	return BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Aggregate:   aggregateID,
		OccurredAtT: time.Now(),
	}
}

// EventID returns the unique event identifier
func (e BaseEvent) EventID() string { return e.ID }

// EventType returns the event type name
func (e BaseEvent) EventType() string { return e.Type }

// AggregateID returns the identifier of the aggregate the event concerns
func (e BaseEvent) AggregateID() string { return e.Aggregate }

// OccurredAt returns when the event occurred
func (e BaseEvent) OccurredAt() time.Time { return e.OccurredAtT }

// TreeCreated is published when a family tree is created
type TreeCreated struct {
	BaseEvent
	TreeID    string `json:"tree_id"`
	FamilyID  string `json:"family_id"`
	CreatorID string `json:"creator_id"`
	Name      string `json:"name"`
}

// NewTreeCreated creates a TreeCreated event
func NewTreeCreated(treeID, familyID, creatorID, name string) TreeCreated {
	return TreeCreated{
		BaseEvent: newBaseEvent(EventTypeTreeCreated, treeID),
		TreeID:    treeID,
		FamilyID:  familyID,
		CreatorID: creatorID,
		Name:      name,
	}
}

// TreeSynced is published after a whole-tree reconciliation commits
type TreeSynced struct {
	BaseEvent
	TreeID           string `json:"tree_id"`
	FamilyID         string `json:"family_id"`
	SyncedBy         string `json:"synced_by"`
	NodesUpserted    int    `json:"nodes_upserted"`
	RelationsDeleted int    `json:"relations_deleted"`
	RelationsWritten int    `json:"relations_written"`
	Version          int    `json:"version"`
}

// NewTreeSynced creates a TreeSynced event
func NewTreeSynced(treeID, familyID, syncedBy string, nodes, deleted, written, version int) TreeSynced {
	return TreeSynced{
		BaseEvent:        newBaseEvent(EventTypeTreeSynced, treeID),
		TreeID:           treeID,
		FamilyID:         familyID,
		SyncedBy:         syncedBy,
		NodesUpserted:    nodes,
		RelationsDeleted: deleted,
		RelationsWritten: written,
		Version:          version,
	}
}
