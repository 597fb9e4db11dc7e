package svc

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shehrozeikram/ERP-sub009/internal/auth/token"
	"github.com/shehrozeikram/ERP-sub009/internal/identity"
)

var errEmptySecret = errors.New("jwt secret empty")

// Authenticator validates requests and returns the caller.
type Authenticator interface {
	Authenticate(r *http.Request) (identity.Caller, bool)
}

type Authorizer interface {
	Can(user string, roles []string, perm string) bool
}

var devCaller = identity.Caller{ID: "dev", Email: "dev@localhost", Role: "super_admin", Name: "Developer"}

type devAuthenticator struct{}

func (devAuthenticator) Authenticate(*http.Request) (identity.Caller, bool) { return devCaller, true }

func newJWTAuthenticator(secret string) (Authenticator, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errEmptySecret
	}
	return &jwtAuthenticator{manager: token.NewManager(secret)}, nil
}

type jwtAuthenticator struct {
	manager *token.Manager
}

func (j *jwtAuthenticator) Authenticate(r *http.Request) (identity.Caller, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return identity.Caller{}, false
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	if tokenStr == "" {
		return identity.Caller{}, false
	}
	claims, err := j.manager.Verify(tokenStr)
	if err != nil {
		return identity.Caller{}, false
	}
	return identity.Caller{
		ID:    claims.UserID(),
		Email: claims.Email,
		Role:  claims.Role,
		Name:  claims.Name,
	}, true
}

type callerKey struct{}

// WithCaller stores the authenticated caller in ctx.
func WithCaller(ctx context.Context, c identity.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFromContext returns the caller stored by WithCaller.
func CallerFromContext(ctx context.Context) (identity.Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(identity.Caller)
	return c, ok
}
