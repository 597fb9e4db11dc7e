package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/logic"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/svc"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/types"
)

func TasksListHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.TasksListRequest
		if !parseRequest(w, r, &req) {
			return
		}
		l := logic.NewTasksListLogic(r.Context(), svcCtx)
		resp, err := l.TasksList(&req)
		if err != nil {
			writeWorkflowError(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
