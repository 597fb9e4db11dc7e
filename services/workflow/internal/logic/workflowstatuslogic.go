package logic

import (
	"context"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/shehrozeikram/ERP-sub009/internal/transition"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/svc"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/types"
)

type WorkflowStatusLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewWorkflowStatusLogic(ctx context.Context, svcCtx *svc.ServiceContext) *WorkflowStatusLogic {
	return &WorkflowStatusLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *WorkflowStatusLogic) WorkflowStatus(req *types.WorkflowStatusRequest) (*types.Response, error) {
	c, err := callerOf(l.ctx)
	if err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.Id) == "" {
		return nil, ErrInvalidRequest
	}
	doc, err := l.svcCtx.Transitions.UpdateStatus(l.ctx, c, req.Module, req.Id, transition.Request{
		WorkflowStatus:   workflow.Status(req.WorkflowStatus),
		Comments:         req.Comments,
		DigitalSignature: req.DigitalSignature,
		Observations:     toObservations(req.Observations),
	})
	if err != nil {
		return nil, err
	}
	return &types.Response{
		Success: true,
		Message: "Workflow status updated successfully",
		Data:    toDocumentView(req.Module, doc),
	}, nil
}
