// Package events defines the domain events the core emits for external
// collaborators such as notification dispatch and the audit log.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/editorial-api/internal/models"
)

type Type string

const (
	TypePostStatusChanged Type = "post:status_changed"
	TypeSlotAssigned      Type = "post:slot_assigned"
	TypeQueueInvalidated  Type = "queue:invalidated"
)

type Event interface {
	EventType() Type
}

type PostStatusChanged struct {
	ID          string            `json:"id"`
	PostID      int64             `json:"post_id"`
	ClientID    int64             `json:"client_id"`
	From        models.PostStatus `json:"from"`
	To          models.PostStatus `json:"to"`
	ActorID     int64             `json:"actor_id"`
	ActorRole   models.Role       `json:"actor_role"`
	ScheduledAt *time.Time        `json:"scheduled_at,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

func (PostStatusChanged) EventType() Type { return TypePostStatusChanged }

type SlotAssigned struct {
	ID         string    `json:"id"`
	PostID     int64     `json:"post_id"`
	ClientID   int64     `json:"client_id"`
	Date       time.Time `json:"date"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (SlotAssigned) EventType() Type { return TypeSlotAssigned }

// QueueInvalidated asks for a recompute of a client's queue, e.g. after its
// cadence changed.
type QueueInvalidated struct {
	ID         string    `json:"id"`
	ClientID   int64     `json:"client_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (QueueInvalidated) EventType() Type { return TypeQueueInvalidated }

func NewID() string {
	return uuid.NewString()
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
