package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/svc"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/types"
)

type HealthzLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewHealthzLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HealthzLogic {
	return &HealthzLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *HealthzLogic) Healthz() (*types.HealthResponse, error) {
	if l.svcCtx.DB != nil {
		sqlDB, err := l.svcCtx.DB.DB()
		if err != nil {
			return nil, ErrUnavailable
		}
		if err := sqlDB.PingContext(l.ctx); err != nil {
			l.Errorf("healthz: database ping: %v", err)
			return nil, ErrUnavailable
		}
	}
	mods := l.svcCtx.Registry.Modules()
	keys := make([]string, 0, len(mods))
	for _, m := range mods {
		keys = append(keys, m.Key)
	}
	return &types.HealthResponse{Status: "ok", Modules: keys}, nil
}
