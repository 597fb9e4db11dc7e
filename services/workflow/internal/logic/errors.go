package logic

import (
	"context"
	"errors"

	"github.com/shehrozeikram/ERP-sub009/internal/identity"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/svc"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrUnavailable     = errors.New("service unavailable")
)

func callerOf(ctx context.Context) (identity.Caller, error) {
	c, ok := svc.CallerFromContext(ctx)
	if !ok {
		return identity.Caller{}, ErrUnauthenticated
	}
	return c, nil
}
