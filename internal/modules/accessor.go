package modules

import (
	"context"
	"errors"
	"time"

	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrConflict means the document left the expected status before the
	// update landed.
	ErrConflict = errors.New("document status changed concurrently")
)

// Query is the store-neutral filter the aggregators build.
type Query struct {
	// Statuses matches documents whose status equals any entry. Empty means
	// no status filter.
	Statuses     []workflow.Status
	CreatedBy    string
	UpdatedSince time.Time
}

// Document is the generic view of one record. Fields is keyed by the
// module's own field names as listed in its Descriptor.
type Document struct {
	ID        string
	Status    workflow.Status
	Fields    map[string]any
	History   workflow.History
	CreatedBy *workflow.Actor
	UpdatedBy *workflow.Actor
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Field returns the value stored under name, nil when name is empty.
func (d *Document) Field(name string) any {
	if name == "" || d.Fields == nil {
		return nil
	}
	return d.Fields[name]
}

// Change is one status update applied through Accessor.Transition.
type Change struct {
	From      workflow.Status
	To        workflow.Status
	Entry     workflow.HistoryEntry
	UpdatedBy string
	// Legacy mirrors the outcome into the module's plain status column when
	// it has one.
	Legacy string
}

// Accessor is the record access a module exposes to the workflow engine.
// Find returns documents newest first with actor references resolved.
type Accessor interface {
	Find(ctx context.Context, q Query, limit int) ([]*Document, error)
	Count(ctx context.Context, q Query) (int64, error)
	CountByStatus(ctx context.Context, q Query) (map[workflow.Status]int64, error)
	Get(ctx context.Context, id string) (*Document, error)
	// Transition moves the document from c.From to c.To and appends
	// c.Entry, failing with ErrConflict when the stored status is no
	// longer c.From.
	Transition(ctx context.Context, id string, c Change) (*Document, error)
}
