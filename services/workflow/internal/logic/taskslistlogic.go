package logic

import (
	"context"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/shehrozeikram/ERP-sub009/internal/tasks"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/svc"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/types"
)

type TasksListLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewTasksListLogic(ctx context.Context, svcCtx *svc.ServiceContext) *TasksListLogic {
	return &TasksListLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *TasksListLogic) TasksList(req *types.TasksListRequest) (*types.Response, error) {
	c, err := callerOf(l.ctx)
	if err != nil {
		return nil, err
	}
	if req == nil {
		req = &types.TasksListRequest{}
	}
	list, err := l.svcCtx.Aggregator.ListTasks(l.ctx, c, tasks.Options{
		StatusFilter: workflow.Status(strings.TrimSpace(req.WorkflowStatus)),
	})
	if err != nil {
		return nil, err
	}
	if len(list.FailedModules) > 0 {
		l.Infof("tasks for %s: partial result, failed modules %v", c.ID, list.FailedModules)
	}
	return &types.Response{Success: true, Data: list}, nil
}
