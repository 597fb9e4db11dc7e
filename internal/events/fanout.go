package events

import (
	"context"
	"errors"
)

// Fanout publishes every event to all of its publishers and joins their
// errors.
type Fanout []Publisher

func (f Fanout) PublishTransition(ctx context.Context, evt TransitionEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishTransition(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}
