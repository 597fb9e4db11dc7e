package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/logic"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/svc"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/types"
)

func WorkflowStatusHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.WorkflowStatusRequest
		if !parseRequest(w, r, &req) {
			return
		}
		l := logic.NewWorkflowStatusLogic(r.Context(), svcCtx)
		resp, err := l.WorkflowStatus(&req)
		if err != nil {
			writeWorkflowError(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
