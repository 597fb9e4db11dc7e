package tasks

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/codes"

	"github.com/shehrozeikram/ERP-sub009/internal/identity"
	"github.com/shehrozeikram/ERP-sub009/internal/modules"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
)

// Stats are the dashboard counters of a caller.
type Stats struct {
	TotalTasks    int64                     `json:"totalTasks"`
	ByStatus      map[workflow.Status]int64 `json:"byStatus"`
	BySubmodule   map[string]int64          `json:"bySubmodule"`
	PendingTasks  int64                     `json:"pendingTasks"`
	RecentTasks   int64                     `json:"recentTasks"`
	FailedModules []string                  `json:"failedModules,omitempty"`
}

type moduleStats struct {
	total, recent int64
	byStatus      map[workflow.Status]int64
}

// Stats counts the documents visible to the caller in every module.
func (a *Aggregator) Stats(ctx context.Context, c identity.Caller, opts Options) (*Stats, error) {
	ctx, span := a.tracer.Start(ctx, "tasks.stats")
	defer span.End()

	asg := a.resolver.Resolve(c)
	q, visible := Visibility(c, asg, opts.StatusFilter)
	since := a.now().Add(-RecentWindow)

	var (
		mu  sync.Mutex
		per = map[string]moduleStats{}
	)
	failed := a.forEachModule(ctx, "tasks.stats", func(ctx context.Context, m modules.Module) error {
		ms := moduleStats{byStatus: map[workflow.Status]int64{}}
		if visible {
			acc, err := m.AccessorOf()
			if err != nil {
				return err
			}
			if ms.total, err = acc.Count(ctx, q); err != nil {
				return err
			}
			recentQ := q
			recentQ.UpdatedSince = since
			if ms.recent, err = acc.Count(ctx, recentQ); err != nil {
				return err
			}
			if ms.byStatus, err = acc.CountByStatus(ctx, q); err != nil {
				return err
			}
		}
		mu.Lock()
		per[m.Key] = ms
		mu.Unlock()
		return nil
	})
	if len(failed) == a.registry.Len() {
		span.SetStatus(codes.Error, ErrNoModules.Error())
		return nil, ErrNoModules
	}

	st := &Stats{
		ByStatus:      map[workflow.Status]int64{},
		BySubmodule:   map[string]int64{},
		FailedModules: failed,
	}
	for key, ms := range per {
		st.TotalTasks += ms.total
		st.RecentTasks += ms.recent
		st.BySubmodule[key] = ms.total
		for status, n := range ms.byStatus {
			status = workflow.OrDraft(status)
			st.ByStatus[status] += n
			if workflow.IsPending(status) {
				st.PendingTasks += n
			}
		}
	}
	return st, nil
}
