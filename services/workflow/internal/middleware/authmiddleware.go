package middleware

import (
	"net/http"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/svc"
)

// AuthMiddleware enforces authentication and permission checking.
type AuthMiddleware struct {
	ctx *svc.ServiceContext
}

func NewAuthMiddleware(ctx *svc.ServiceContext) *AuthMiddleware {
	return &AuthMiddleware{ctx: ctx}
}

// Handle wraps handlers with auth logic; any one of perms admits the caller.
func (m *AuthMiddleware) Handle(perms ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			caller, ok := m.ctx.Authenticate(r)
			if !ok {
				httpx.WriteJsonCtx(r.Context(), w, http.StatusUnauthorized, map[string]any{
					"success": false,
					"message": "unauthorized",
				})
				return
			}
			admit := func() { next(w, r.WithContext(svc.WithCaller(r.Context(), caller))) }
			if skipPermCheck(caller.Role) || len(perms) == 0 {
				admit()
				return
			}
			for _, perm := range perms {
				if strings.TrimSpace(perm) == "" {
					continue
				}
				if m.ctx.EnforcePermission(caller, perm) {
					admit()
					return
				}
			}
			logx.WithContext(r.Context()).Infof("permission denied: user=%s role=%s perms=%v", caller.ID, caller.Role, perms)
			httpx.WriteJsonCtx(r.Context(), w, http.StatusForbidden, map[string]any{
				"success": false,
				"message": "forbidden",
			})
		}
	}
}

func skipPermCheck(role string) bool {
	return role == "admin" || role == "super_admin"
}
