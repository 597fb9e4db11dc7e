package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"github.com/shehrozeikram/ERP-sub009/internal/auth/rbac"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/middleware"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(Routes(serverCtx))
}

// Routes lists every endpoint with its permission check applied.
func Routes(serverCtx *svc.ServiceContext) []rest.Route {
	auth := middleware.NewAuthMiddleware(serverCtx)
	return []rest.Route{
		{
			Method:  http.MethodGet,
			Path:    "/healthz",
			Handler: HealthzHandler(serverCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/api/admin/dashboard/tasks",
			Handler: auth.Handle(rbac.PermTasksRead)(TasksListHandler(serverCtx)),
		},
		{
			Method:  http.MethodGet,
			Path:    "/api/admin/dashboard/stats",
			Handler: auth.Handle(rbac.PermTasksRead)(StatsHandler(serverCtx)),
		},
		{
			Method:  http.MethodPatch,
			Path:    "/api/admin/documents/:module/:id/workflow-status",
			Handler: auth.Handle(rbac.PermTransition)(WorkflowStatusHandler(serverCtx)),
		},
		{
			Method:  http.MethodPatch,
			Path:    "/api/admin/documents/:module/:id/approve",
			Handler: auth.Handle(rbac.PermApprove)(ApproveHandler(serverCtx)),
		},
		{
			Method:  http.MethodPatch,
			Path:    "/api/admin/documents/:module/:id/reject",
			Handler: auth.Handle(rbac.PermApprove)(RejectHandler(serverCtx)),
		},
	}
}
