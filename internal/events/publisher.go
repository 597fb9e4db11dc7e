// Package events publishes workflow transitions to a message queue so other
// modules (accounts payable, notifications) can react to them.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TransitionEvent describes one applied status change.
type TransitionEvent struct {
	ID         string    `json:"id"`
	Module     string    `json:"module"`
	DocumentID string    `json:"document_id"`
	Action     string    `json:"action"` // transition|approve|reject
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	ActorEmail string    `json:"actor_email,omitempty"`
	Comments   string    `json:"comments,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewTransitionEvent stamps an id and time on the event.
func NewTransitionEvent(module, docID, action, from, to string) TransitionEvent {
	return TransitionEvent{
		ID:         uuid.NewString(),
		Module:     module,
		DocumentID: docID,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher defines a minimal interface to publish workflow events.
// Implementations can be backed by Kafka, Redis Streams, or a no-op for dev.
type Publisher interface {
	PublishTransition(ctx context.Context, evt TransitionEvent) error
	Close() error
}
