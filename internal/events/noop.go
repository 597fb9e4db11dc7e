package events

import (
	"context"
	"sync"
)

type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) PublishTransition(context.Context, TransitionEvent) error { return nil }

func (n *Noop) Close() error { return nil }

// Recorder keeps published events in memory (tests and dev).
type Recorder struct {
	mu     sync.Mutex
	events []TransitionEvent
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) PublishTransition(_ context.Context, evt TransitionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of what was published so far.
func (r *Recorder) Events() []TransitionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TransitionEvent(nil), r.events...)
}
