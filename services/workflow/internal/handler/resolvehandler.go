package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/logic"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/svc"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/types"
)

func ApproveHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ResolveRequest
		if !parseRequest(w, r, &req) {
			return
		}
		l := logic.NewResolveLogic(r.Context(), svcCtx)
		resp, err := l.Approve(&req)
		if err != nil {
			writeWorkflowError(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

func RejectHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ResolveRequest
		if !parseRequest(w, r, &req) {
			return
		}
		l := logic.NewResolveLogic(r.Context(), svcCtx)
		resp, err := l.Reject(&req)
		if err != nil {
			writeWorkflowError(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
