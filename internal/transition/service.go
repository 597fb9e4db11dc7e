// Package transition applies workflow status changes to documents: free
// transitions along the graph, and approve/reject from a review status.
package transition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/shehrozeikram/ERP-sub009/internal/events"
	"github.com/shehrozeikram/ERP-sub009/internal/identity"
	"github.com/shehrozeikram/ERP-sub009/internal/modules"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
)

var (
	ErrUnknownModule     = errors.New("unknown module")
	ErrStatusRequired    = errors.New("workflow status is required")
	ErrInvalidStatus     = errors.New("invalid workflow status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("document is not assigned to you")
	ErrNotResolvable     = errors.New(`document must be in a "Send to" status or "Forwarded to CEO"`)
	ErrCommentsRequired  = errors.New("comments are required when rejecting a document")
)

// SideEffectTimeout bounds the publish and cache flush that follow a
// committed change. They run detached from the request context.
const SideEffectTimeout = 5 * time.Second

const (
	ActionTransition = "transition"
	ActionApprove    = "approve"
	ActionReject     = "reject"
)

// Observation is one reviewer finding attached to a transition.
type Observation struct {
	Observation string `json:"observation"`
	Severity    string `json:"severity,omitempty"`
}

// Request carries the reviewer input of any of the three actions.
type Request struct {
	WorkflowStatus   workflow.Status
	Comments         string
	DigitalSignature string
	Observations     []Observation
}

// Invalidator is flushed after every applied change.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service applies transitions for callers resolved through the identity
// resolver.
type Service struct {
	registry  *modules.Registry
	resolver  *identity.Resolver
	graph     *workflow.Graph
	publisher events.Publisher
	cache     Invalidator
	now       func() time.Time
	applied   metric.Int64Counter
}

type Option func(*Service)

func WithGraph(g *workflow.Graph) Option {
	return func(s *Service) {
		if g != nil {
			s.graph = g
		}
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithInvalidator(c Invalidator) Option {
	return func(s *Service) { s.cache = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(reg *modules.Registry, res *identity.Resolver, opts ...Option) *Service {
	s := &Service{
		registry:  reg,
		resolver:  res,
		graph:     workflow.DefaultGraph,
		publisher: events.NewNoop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	meter := otel.Meter("github.com/shehrozeikram/ERP-sub009/internal/transition")
	s.applied, _ = meter.Int64Counter("workflow.transitions.applied",
		metric.WithDescription("Workflow status changes written to a document store"))
	return s
}

func (s *Service) load(ctx context.Context, module, id string) (modules.Module, modules.Accessor, *modules.Document, error) {
	m, ok := s.registry.Get(module)
	if !ok {
		return modules.Module{}, nil, nil, fmt.Errorf("%w: %s", ErrUnknownModule, module)
	}
	acc, err := m.AccessorOf()
	if err != nil {
		return m, nil, nil, err
	}
	doc, err := acc.Get(ctx, id)
	if err != nil {
		return m, nil, nil, err
	}
	return m, acc, doc, nil
}

// UpdateStatus moves a document to req.WorkflowStatus.
func (s *Service) UpdateStatus(ctx context.Context, c identity.Caller, module, id string, req Request) (*modules.Document, error) {
	target := workflow.Status(strings.TrimSpace(string(req.WorkflowStatus)))
	if target == "" {
		return nil, ErrStatusRequired
	}
	if !s.graph.Known(target) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, target)
	}
	m, acc, doc, err := s.load(ctx, module, id)
	if err != nil {
		return nil, err
	}
	current := workflow.OrDraft(doc.Status)

	if asg := s.resolver.Resolve(c); asg.Assigned && !mayModify(doc, current, c, asg.Status) {
		return nil, ErrForbidden
	}
	if !s.graph.IsValidTransition(workflow.BaseStatus(current), workflow.BaseStatus(target)) {
		return nil, fmt.Errorf("%w from %s to %s", ErrInvalidTransition, current, target)
	}

	entry := workflow.HistoryEntry{
		FromStatus:       current,
		ToStatus:         target,
		ChangedBy:        actorOf(c),
		ChangedAt:        s.now(),
		Comments:         foldComments(req.Comments, req.Observations, req.DigitalSignature),
		DigitalSignature: req.DigitalSignature,
	}
	return s.apply(ctx, m, acc, id, ActionTransition, modules.Change{
		From:      doc.Status,
		To:        target,
		Entry:     entry,
		UpdatedBy: c.ID,
	})
}

// Approve resolves a document under review as approved.
func (s *Service) Approve(ctx context.Context, c identity.Caller, module, id string, req Request) (*modules.Document, error) {
	m, acc, doc, err := s.load(ctx, module, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkResolvable(doc, c); err != nil {
		return nil, err
	}
	comments := req.Comments
	if comments == "" {
		comments = "Document approved"
		if req.DigitalSignature != "" {
			comments = "Document approved with digital signature: " + req.DigitalSignature
		}
	}
	return s.resolve(ctx, m, acc, doc, c, workflow.OutcomeApproved, comments, req.DigitalSignature)
}

// Reject resolves a document under review as rejected. Comments are
// mandatory.
func (s *Service) Reject(ctx context.Context, c identity.Caller, module, id string, req Request) (*modules.Document, error) {
	if strings.TrimSpace(req.Comments) == "" {
		return nil, ErrCommentsRequired
	}
	m, acc, doc, err := s.load(ctx, module, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkResolvable(doc, c); err != nil {
		return nil, err
	}
	comments := foldComments(req.Comments, req.Observations, req.DigitalSignature)
	return s.resolve(ctx, m, acc, doc, c, workflow.OutcomeRejected, comments, req.DigitalSignature)
}

// approve and reject only let assignees act on documents sitting exactly in
// their status
func (s *Service) checkResolvable(doc *modules.Document, c identity.Caller) error {
	if asg := s.resolver.Resolve(c); asg.Assigned && doc.Status != asg.Status {
		return ErrForbidden
	}
	if !workflow.CanResolve(doc.Status) {
		return ErrNotResolvable
	}
	return nil
}

func (s *Service) resolve(ctx context.Context, m modules.Module, acc modules.Accessor, doc *modules.Document,
	c identity.Caller, o workflow.Outcome, comments, signature string) (*modules.Document, error) {
	source := doc.Status
	action := ActionApprove
	if o == workflow.OutcomeRejected {
		action = ActionReject
	}
	entry := workflow.HistoryEntry{
		FromStatus:       source,
		ToStatus:         workflow.Status(o),
		ChangedBy:        actorOf(c),
		ChangedAt:        s.now(),
		Comments:         comments,
		DigitalSignature: signature,
	}
	return s.apply(ctx, m, acc, doc.ID, action, modules.Change{
		From:      source,
		To:        workflow.Resolved(o, source).Status(),
		Entry:     entry,
		UpdatedBy: c.ID,
		Legacy:    string(o),
	})
}

func (s *Service) apply(ctx context.Context, m modules.Module, acc modules.Accessor, id, action string, ch modules.Change) (*modules.Document, error) {
	doc, err := acc.Transition(ctx, id, ch)
	if err != nil {
		return nil, err
	}
	// the change is committed: a cancelled request must not lose its event
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), SideEffectTimeout)
	defer cancel()
	logger := logx.WithContext(ctx)
	logger.Infof("workflow %s %s/%s: %q -> %q by %s", action, m.Key, id, workflow.OrDraft(ch.From), ch.To, ch.UpdatedBy)
	if s.applied != nil {
		s.applied.Add(ctx, 1, metric.WithAttributes(attribute.String("module", m.Key), attribute.String("action", action)))
	}

	evt := events.NewTransitionEvent(m.Key, id, action, string(ch.Entry.FromStatus), string(ch.To))
	if ch.Entry.ChangedBy != nil {
		evt.ActorID = ch.Entry.ChangedBy.ID
		evt.ActorEmail = ch.Entry.ChangedBy.Email
	}
	evt.Comments = ch.Entry.Comments
	if v := doc.Field(m.AmountField); v != nil {
		evt.Amount = fmt.Sprint(v)
	}
	if err := s.publisher.PublishTransition(ctx, evt); err != nil {
		logger.Errorf("publish transition %s/%s: %v", m.Key, id, err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			logger.Errorf("invalidate stats cache: %v", err)
		}
	}
	return doc, nil
}

// mayModify: the document sits in the caller's status, was resolved out of
// it, or the caller resolved it last.
func mayModify(doc *modules.Document, current workflow.Status, c identity.Caller, assigned workflow.Status) bool {
	if workflow.BaseStatus(current) == assigned {
		return true
	}
	if src, ok := workflow.SourceStatus(current); ok && src == assigned {
		return true
	}
	return doc.History.ResolvedBy(c.ID, c.Email, assigned)
}

func actorOf(c identity.Caller) *workflow.Actor {
	return &workflow.Actor{ID: c.ID, Name: c.Name, Email: c.Email}
}

func foldComments(comments string, obs []Observation, signature string) string {
	out := comments
	if len(obs) > 0 {
		parts := make([]string, 0, len(obs))
		for i, o := range obs {
			sev := o.Severity
			if sev == "" {
				sev = "medium"
			}
			parts = append(parts, fmt.Sprintf("Observation %d (%s): %s", i+1, sev, o.Observation))
		}
		joined := strings.Join(parts, "; ")
		if out != "" {
			out += ". Observations: " + joined
		} else {
			out = "Observations: " + joined
		}
	}
	if signature != "" {
		tag := "[Digital Signature: " + signature + "]"
		if out != "" {
			out += " " + tag
		} else {
			out = tag
		}
	}
	return out
}
