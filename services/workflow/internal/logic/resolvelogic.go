package logic

import (
	"context"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/shehrozeikram/ERP-sub009/internal/identity"
	"github.com/shehrozeikram/ERP-sub009/internal/modules"
	"github.com/shehrozeikram/ERP-sub009/internal/transition"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/svc"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/types"
)

// ResolveLogic approves or rejects a document under review.
type ResolveLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewResolveLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ResolveLogic {
	return &ResolveLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ResolveLogic) Approve(req *types.ResolveRequest) (*types.Response, error) {
	return l.resolve(req, l.svcCtx.Transitions.Approve, "Document approved successfully")
}

func (l *ResolveLogic) Reject(req *types.ResolveRequest) (*types.Response, error) {
	return l.resolve(req, l.svcCtx.Transitions.Reject, "Document rejected successfully")
}

type resolveFunc func(context.Context, identity.Caller, string, string, transition.Request) (*modules.Document, error)

func (l *ResolveLogic) resolve(req *types.ResolveRequest, fn resolveFunc, msg string) (*types.Response, error) {
	c, err := callerOf(l.ctx)
	if err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.Id) == "" {
		return nil, ErrInvalidRequest
	}
	doc, err := fn(l.ctx, c, req.Module, req.Id, transition.Request{
		Comments:         req.Comments,
		DigitalSignature: req.DigitalSignature,
		Observations:     toObservations(req.Observations),
	})
	if err != nil {
		return nil, err
	}
	return &types.Response{Success: true, Message: msg, Data: toDocumentView(req.Module, doc)}, nil
}
