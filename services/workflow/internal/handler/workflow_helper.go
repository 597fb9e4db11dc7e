package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/shehrozeikram/ERP-sub009/internal/modules"
	"github.com/shehrozeikram/ERP-sub009/internal/tasks"
	"github.com/shehrozeikram/ERP-sub009/internal/transition"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/logic"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/types"
)

func writeFailure(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	httpx.WriteJsonCtx(ctx, w, status, types.Response{Success: false, Message: msg})
}

func writeWorkflowError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, logic.ErrUnauthenticated):
		writeFailure(ctx, w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, logic.ErrInvalidRequest),
		errors.Is(err, transition.ErrStatusRequired),
		errors.Is(err, transition.ErrInvalidStatus),
		errors.Is(err, transition.ErrInvalidTransition),
		errors.Is(err, transition.ErrNotResolvable),
		errors.Is(err, transition.ErrCommentsRequired):
		writeFailure(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, transition.ErrForbidden):
		writeFailure(ctx, w, http.StatusForbidden, err.Error())
	case errors.Is(err, transition.ErrUnknownModule),
		errors.Is(err, modules.ErrNotFound):
		writeFailure(ctx, w, http.StatusNotFound, err.Error())
	case errors.Is(err, modules.ErrConflict):
		writeFailure(ctx, w, http.StatusConflict, err.Error())
	case errors.Is(err, logic.ErrUnavailable),
		errors.Is(err, modules.ErrNoAccessor):
		writeFailure(ctx, w, http.StatusServiceUnavailable, "service unavailable")
	case errors.Is(err, tasks.ErrNoModules):
		writeFailure(ctx, w, http.StatusInternalServerError, err.Error())
	default:
		httpx.ErrorCtx(ctx, w, err)
	}
}

// parseRequest reports a malformed request in the workflow envelope.
func parseRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httpx.Parse(r, v); err != nil {
		writeFailure(r.Context(), w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
