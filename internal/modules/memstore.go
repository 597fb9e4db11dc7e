package modules

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
)

// MemStore is an in-memory accessor (dev/testing fallback).
type MemStore struct {
	mu   sync.RWMutex
	data map[string]*Document
	now  func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{data: map[string]*Document{}, now: time.Now}
}

func cloneDoc(d *Document) *Document {
	cp := *d
	if d.Fields != nil {
		cp.Fields = make(map[string]any, len(d.Fields))
		for k, v := range d.Fields {
			cp.Fields[k] = v
		}
	}
	cp.History = append(workflow.History(nil), d.History...)
	if d.CreatedBy != nil {
		a := *d.CreatedBy
		cp.CreatedBy = &a
	}
	if d.UpdatedBy != nil {
		a := *d.UpdatedBy
		cp.UpdatedBy = &a
	}
	return &cp
}

// Put stores a copy of d, assigning an id and timestamps when missing.
func (m *MemStore) Put(d *Document) *Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := cloneDoc(d)
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	now := m.now()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = cp.CreatedAt
	}
	m.data[cp.ID] = cp
	return cloneDoc(cp)
}

func (m *MemStore) match(d *Document, q Query) bool {
	if len(q.Statuses) > 0 {
		found := false
		for _, st := range q.Statuses {
			if d.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.CreatedBy != "" && (d.CreatedBy == nil || d.CreatedBy.ID != q.CreatedBy) {
		return false
	}
	if !q.UpdatedSince.IsZero() && d.UpdatedAt.Before(q.UpdatedSince) {
		return false
	}
	return true
}

func (m *MemStore) Find(ctx context.Context, q Query, limit int) ([]*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var arr []*Document
	for _, d := range m.data {
		if m.match(d, q) {
			arr = append(arr, cloneDoc(d))
		}
	}
	sort.Slice(arr, func(i, j int) bool { return arr[i].CreatedAt.After(arr[j].CreatedAt) })
	if limit > 0 && len(arr) > limit {
		arr = arr[:limit]
	}
	return arr, nil
}

func (m *MemStore) Count(ctx context.Context, q Query) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, d := range m.data {
		if m.match(d, q) {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) CountByStatus(ctx context.Context, q Query) (map[workflow.Status]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[workflow.Status]int64{}
	for _, d := range m.data {
		if m.match(d, q) {
			out[d.Status]++
		}
	}
	return out, nil
}

func (m *MemStore) Get(ctx context.Context, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d := m.data[id]
	if d == nil {
		return nil, ErrNotFound
	}
	return cloneDoc(d), nil
}

func (m *MemStore) Transition(ctx context.Context, id string, c Change) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.data[id]
	if d == nil {
		return nil, ErrNotFound
	}
	if workflow.OrDraft(d.Status) != workflow.OrDraft(c.From) {
		return nil, ErrConflict
	}
	d.Status = c.To
	d.History = d.History.Append(c.Entry)
	if c.UpdatedBy != "" {
		d.UpdatedBy = &workflow.Actor{ID: c.UpdatedBy}
		if c.Entry.ChangedBy != nil && c.Entry.ChangedBy.ID == c.UpdatedBy {
			a := *c.Entry.ChangedBy
			d.UpdatedBy = &a
		}
	}
	if c.Legacy != "" {
		if d.Fields == nil {
			d.Fields = map[string]any{}
		}
		d.Fields[LegacyStatusKey] = c.Legacy
	}
	d.UpdatedAt = m.now()
	return cloneDoc(d), nil
}
