package tasks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/shehrozeikram/ERP-sub009/internal/identity"
	"github.com/shehrozeikram/ERP-sub009/internal/modules"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
)

const (
	// DefaultFetchLimit caps how many of the most recent documents each
	// module contributes to a worklist.
	DefaultFetchLimit = 50
	// RecentWindow is how far back a document counts as recent in stats.
	RecentWindow = 7 * 24 * time.Hour

	instrumentationName = "github.com/shehrozeikram/ERP-sub009/internal/tasks"
)

// ErrNoModules is returned when not a single module could be queried.
var ErrNoModules = errors.New("no workflow module could be queried")

// Options are the per-request knobs of an aggregation.
type Options struct {
	// StatusFilter narrows the result for elevated callers; ignored for
	// everyone else.
	StatusFilter workflow.Status
}

// Aggregator reads every registered module on behalf of a caller.
type Aggregator struct {
	registry    *modules.Registry
	resolver    *identity.Resolver
	limit       int
	concurrency int
	now         func() time.Time
	tracer      trace.Tracer
	failures    metric.Int64Counter
}

// Option customises an Aggregator.
type Option func(*Aggregator)

// WithFetchLimit overrides DefaultFetchLimit.
func WithFetchLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.limit = n
		}
	}
}

// WithConcurrency bounds how many modules are queried at once.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) { a.concurrency = n }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func NewAggregator(reg *modules.Registry, res *identity.Resolver, opts ...Option) *Aggregator {
	a := &Aggregator{
		registry: reg,
		resolver: res,
		limit:    DefaultFetchLimit,
		now:      time.Now,
		tracer:   otel.Tracer(instrumentationName),
	}
	for _, o := range opts {
		o(a)
	}
	failures, err := otel.Meter(instrumentationName).Int64Counter("workflow.module.failures",
		metric.WithDescription("Module queries that failed during aggregation"))
	if err == nil {
		a.failures = failures
	}
	return a
}

// Resolver exposes the identity resolver the aggregator was built with.
func (a *Aggregator) Resolver() *identity.Resolver { return a.resolver }

// forEachModule runs fn for every module concurrently. A module whose fn
// fails is logged and reported in the returned slice; the others are not
// affected.
func (a *Aggregator) forEachModule(ctx context.Context, op string, fn func(ctx context.Context, m modules.Module) error) []string {
	var (
		mu     sync.Mutex
		failed []string
	)
	g, gctx := errgroup.WithContext(ctx)
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for _, m := range a.registry.Modules() {
		g.Go(func() error {
			mctx, span := a.tracer.Start(gctx, op+"."+m.Key, trace.WithAttributes(attribute.String("workflow.module", m.Key)))
			defer span.End()
			if err := fn(mctx, m); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				logx.WithContext(ctx).Errorf("%s: module %s failed: %v", op, m.Key, err)
				if a.failures != nil {
					a.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("workflow.module", m.Key), attribute.String("op", op)))
				}
				mu.Lock()
				failed = append(failed, m.Key)
				mu.Unlock()
			}
			// module failures never cancel the siblings
			return nil
		})
	}
	_ = g.Wait()
	sort.Strings(failed)
	return failed
}

// ListTasks builds the caller's worklist across every module.
func (a *Aggregator) ListTasks(ctx context.Context, c identity.Caller, opts Options) (*TaskList, error) {
	ctx, span := a.tracer.Start(ctx, "tasks.list")
	defer span.End()

	asg := a.resolver.Resolve(c)
	q, visible := Visibility(c, asg, opts.StatusFilter)

	var (
		mu  sync.Mutex
		all []Task
	)
	failed := a.forEachModule(ctx, "tasks.list", func(ctx context.Context, m modules.Module) error {
		if !visible {
			return nil
		}
		acc, err := m.AccessorOf()
		if err != nil {
			return err
		}
		docs, err := acc.Find(ctx, q, a.limit)
		if err != nil {
			return err
		}
		out := make([]Task, 0, len(docs))
		for _, doc := range docs {
			out = append(out, project(m.Descriptor, doc, asg.Status, UserHasProcessed(doc, c, asg)))
		}
		mu.Lock()
		all = append(all, out...)
		mu.Unlock()
		return nil
	})
	if len(failed) == a.registry.Len() {
		span.SetStatus(codes.Error, ErrNoModules.Error())
		return nil, ErrNoModules
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
			if all[i].Submodule != all[j].Submodule {
				return all[i].Submodule < all[j].Submodule
			}
			return all[i].ID < all[j].ID
		}
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})
	list := &TaskList{
		Tasks:         all,
		TotalTasks:    len(all),
		ByStatus:      map[workflow.Status][]Task{},
		BySubmodule:   map[string][]Task{},
		FailedModules: failed,
	}
	if list.Tasks == nil {
		list.Tasks = []Task{}
	}
	for _, t := range all {
		list.ByStatus[t.WorkflowStatus] = append(list.ByStatus[t.WorkflowStatus], t)
		list.BySubmodule[t.Submodule] = append(list.BySubmodule[t.Submodule], t)
	}
	span.SetAttributes(attribute.Int("workflow.tasks", len(all)), attribute.Int("workflow.failed_modules", len(failed)))
	return list, nil
}
