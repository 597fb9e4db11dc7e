package logic

import (
	"context"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/shehrozeikram/ERP-sub009/internal/cache"
	"github.com/shehrozeikram/ERP-sub009/internal/tasks"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/svc"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/types"
)

type StatsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewStatsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *StatsLogic {
	return &StatsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Stats serves cached counters when the caller's scope has a fresh entry.
// Partial results are never cached.
func (l *StatsLogic) Stats(req *types.StatsRequest) (*types.Response, error) {
	c, err := callerOf(l.ctx)
	if err != nil {
		return nil, err
	}
	var filter workflow.Status
	if req != nil {
		filter = workflow.Status(strings.TrimSpace(req.WorkflowStatus))
	}
	scope := cache.Scope(c, l.svcCtx.Resolver.Resolve(c), filter)
	sc := l.svcCtx.StatsCache
	gen := cache.NoGeneration
	if sc != nil {
		st, g, ok := sc.Get(l.ctx, scope)
		if ok {
			return &types.Response{Success: true, Data: st}, nil
		}
		gen = g
	}
	st, err := l.svcCtx.Aggregator.Stats(l.ctx, c, tasks.Options{StatusFilter: filter})
	if err != nil {
		return nil, err
	}
	if sc != nil && len(st.FailedModules) == 0 {
		sc.Set(l.ctx, scope, gen, st)
	}
	return &types.Response{Success: true, Data: st}, nil
}
