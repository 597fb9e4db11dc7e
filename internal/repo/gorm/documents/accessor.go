// Package documentsgorm reads and transitions workflow documents stored in
// SQL tables. One Accessor serves any table whose columns are named by a
// modules.Descriptor.
package documentsgorm

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shehrozeikram/ERP-sub009/internal/modules"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
)

// Column names shared by every workflow table.
const (
	colID        = "id"
	colCreatedBy = "created_by"
	colUpdatedBy = "updated_by"
	colCreatedAt = "created_at"
	colUpdatedAt = "updated_at"
)

// ActorDirectory resolves user ids for display.
type ActorDirectory interface {
	Lookup(ctx context.Context, ids []string) (map[string]workflow.Actor, error)
}

type Accessor struct {
	db    *gorm.DB
	desc  modules.Descriptor
	users ActorDirectory
	now   func() time.Time
}

// New binds a table to the engine. desc must be valid and name a table.
func New(db *gorm.DB, desc modules.Descriptor, users ActorDirectory) (*Accessor, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if desc.Table == "" {
		return nil, fmt.Errorf("%w: %s has no table", modules.ErrInvalidField, desc.Key)
	}
	return &Accessor{db: db, desc: desc, users: users, now: time.Now}, nil
}

type row struct {
	ID           string
	Status       sql.NullString
	History      sql.NullString
	CreatedBy    sql.NullString
	UpdatedBy    sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Title        sql.NullString
	Description  sql.NullString
	Amount       sql.NullString
	DocDate      sql.NullTime
	LegacyStatus sql.NullString
}

func alias(column, as string) string {
	if column == "" {
		return "NULL AS " + as
	}
	return column + " AS " + as
}

func (a *Accessor) columns() []string {
	d := a.desc
	return []string{
		alias(colID, "id"),
		alias(d.StatusField, "status"),
		alias(d.HistoryField, "history"),
		alias(colCreatedBy, "created_by"),
		alias(colUpdatedBy, "updated_by"),
		alias(colCreatedAt, "created_at"),
		alias(colUpdatedAt, "updated_at"),
		alias(d.TitleField, "title"),
		alias(d.DescriptionField, "description"),
		alias(d.AmountField, "amount"),
		alias(d.DateField, "doc_date"),
		alias(d.LegacyStatusField, "legacy_status"),
	}
}

func (a *Accessor) table(ctx context.Context) *gorm.DB {
	return a.db.WithContext(ctx).Table(a.desc.Table)
}

func (a *Accessor) where(tx *gorm.DB, q modules.Query) *gorm.DB {
	if len(q.Statuses) > 0 {
		vals := make([]any, len(q.Statuses))
		for i, s := range q.Statuses {
			vals[i] = string(s)
		}
		tx = tx.Where(clause.IN{Column: clause.Column{Name: a.desc.StatusField}, Values: vals})
	}
	if q.CreatedBy != "" {
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: colCreatedBy}, Value: q.CreatedBy})
	}
	if !q.UpdatedSince.IsZero() {
		tx = tx.Where(clause.Gte{Column: clause.Column{Name: colUpdatedAt}, Value: q.UpdatedSince})
	}
	return tx
}

func (a *Accessor) Find(ctx context.Context, q modules.Query, limit int) ([]*modules.Document, error) {
	tx := a.where(a.table(ctx).Select(a.columns()), q).
		Order(clause.OrderByColumn{Column: clause.Column{Name: colCreatedAt}, Desc: true})
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var rows []row
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, err
	}
	docs := make([]*modules.Document, 0, len(rows))
	for i := range rows {
		d, err := a.toDocument(&rows[i])
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := a.resolveActors(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (a *Accessor) Count(ctx context.Context, q modules.Query) (int64, error) {
	var n int64
	err := a.where(a.table(ctx), q).Count(&n).Error
	return n, err
}

func (a *Accessor) CountByStatus(ctx context.Context, q modules.Query) (map[workflow.Status]int64, error) {
	var groups []struct {
		Status sql.NullString
		N      int64
	}
	sf := a.desc.StatusField
	err := a.where(a.table(ctx).Select(sf+" AS status, COUNT(*) AS n"), q).Group(sf).Scan(&groups).Error
	if err != nil {
		return nil, err
	}
	out := make(map[workflow.Status]int64, len(groups))
	for _, g := range groups {
		out[workflow.Status(g.Status.String)] += g.N
	}
	return out, nil
}

func (a *Accessor) get(tx *gorm.DB, id string) (*row, error) {
	var rows []row
	if err := tx.Table(a.desc.Table).Select(a.columns()).
		Where(clause.Eq{Column: clause.Column{Name: colID}, Value: id}).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, modules.ErrNotFound
	}
	return &rows[0], nil
}

func (a *Accessor) Get(ctx context.Context, id string) (*modules.Document, error) {
	r, err := a.get(a.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	d, err := a.toDocument(r)
	if err != nil {
		return nil, err
	}
	if err := a.resolveActors(ctx, []*modules.Document{d}); err != nil {
		return nil, err
	}
	return d, nil
}

// Transition updates status and history in one statement guarded by the
// status read inside the same transaction.
func (a *Accessor) Transition(ctx context.Context, id string, c modules.Change) (*modules.Document, error) {
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := a.get(tx, id)
		if err != nil {
			return err
		}
		if workflow.OrDraft(workflow.Status(r.Status.String)) != workflow.OrDraft(c.From) {
			return modules.ErrConflict
		}
		hist, err := decodeHistory(r.History)
		if err != nil {
			return err
		}
		b, err := json.Marshal(hist.Append(c.Entry))
		if err != nil {
			return err
		}
		updates := map[string]any{
			a.desc.StatusField:  string(c.To),
			a.desc.HistoryField: datatypes.JSON(b),
			colUpdatedAt:        a.now(),
		}
		if c.UpdatedBy != "" {
			updates[colUpdatedBy] = c.UpdatedBy
		}
		if c.Legacy != "" && a.desc.LegacyStatusField != "" {
			updates[a.desc.LegacyStatusField] = c.Legacy
		}
		var current any
		if r.Status.Valid {
			current = r.Status.String
		}
		res := tx.Table(a.desc.Table).
			Where(clause.Eq{Column: clause.Column{Name: colID}, Value: id}).
			Where(clause.Eq{Column: clause.Column{Name: a.desc.StatusField}, Value: current}).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return modules.ErrConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a.Get(ctx, id)
}

func decodeHistory(s sql.NullString) (workflow.History, error) {
	if !s.Valid || s.String == "" || s.String == "null" {
		return nil, nil
	}
	var h workflow.History
	if err := json.Unmarshal([]byte(s.String), &h); err != nil {
		return nil, fmt.Errorf("decode workflow history: %w", err)
	}
	return h, nil
}

func (a *Accessor) toDocument(r *row) (*modules.Document, error) {
	hist, err := decodeHistory(r.History)
	if err != nil {
		return nil, err
	}
	d := &modules.Document{
		ID:        r.ID,
		Status:    workflow.Status(r.Status.String),
		History:   hist,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Fields:    map[string]any{},
	}
	if r.CreatedBy.Valid && r.CreatedBy.String != "" {
		d.CreatedBy = &workflow.Actor{ID: r.CreatedBy.String}
	}
	if r.UpdatedBy.Valid && r.UpdatedBy.String != "" {
		d.UpdatedBy = &workflow.Actor{ID: r.UpdatedBy.String}
	}
	put := func(field string, v sql.NullString) {
		if field != "" && v.Valid {
			d.Fields[field] = v.String
		}
	}
	put(a.desc.TitleField, r.Title)
	put(a.desc.DescriptionField, r.Description)
	put(a.desc.AmountField, r.Amount)
	if a.desc.DateField != "" && r.DocDate.Valid {
		d.Fields[a.desc.DateField] = r.DocDate.Time
	}
	if r.LegacyStatus.Valid {
		d.Fields[modules.LegacyStatusKey] = r.LegacyStatus.String
	}
	return d, nil
}

// resolveActors swaps bare ids for display identities. A missing directory
// leaves the ids as they are.
func (a *Accessor) resolveActors(ctx context.Context, docs []*modules.Document) error {
	if a.users == nil || len(docs) == 0 {
		return nil
	}
	var ids []string
	for _, d := range docs {
		if d.CreatedBy != nil {
			ids = append(ids, d.CreatedBy.ID)
		}
		if d.UpdatedBy != nil {
			ids = append(ids, d.UpdatedBy.ID)
		}
		ids = append(ids, d.History.ActorIDs()...)
	}
	found, err := a.users.Lookup(ctx, ids)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		// display names are cosmetic
		return nil
	}
	fill := func(act *workflow.Actor) {
		if act == nil {
			return
		}
		if u, ok := found[act.ID]; ok {
			*act = u
		}
	}
	for _, d := range docs {
		fill(d.CreatedBy)
		fill(d.UpdatedBy)
		for i := range d.History {
			fill(d.History[i].ChangedBy)
		}
	}
	return nil
}
