package documentsgorm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/shehrozeikram/ERP-sub009/internal/modules"
	usersgorm "github.com/shehrozeikram/ERP-sub009/internal/repo/gorm/users"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	// every connection would get its own in-memory database
	sqlDB.SetMaxOpenConns(1)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate documents: %v", err)
	}
	if err := usersgorm.AutoMigrate(db); err != nil {
		t.Fatalf("migrate users: %v", err)
	}
	return db
}

func settlementAccessor(t *testing.T, db *gorm.DB) *Accessor {
	t.Helper()
	acc, err := New(db, DefaultDescriptors()[0], usersgorm.New(db))
	if err != nil {
		t.Fatalf("new accessor: %v", err)
	}
	return acc
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	ctx := context.Background()
	users := usersgorm.New(db)
	for _, u := range []*usersgorm.User{
		{ID: "u1", FirstName: "Sana", LastName: "Khan", Email: "sana@tovus.net"},
		{ID: "u2", FirstName: "Rizwan", Email: "rizwan@tovus.net"},
	} {
		if err := users.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	base := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	paid := base.Add(-24 * time.Hour)
	rows := []PaymentSettlement{
		{Base: Base{ID: "ps-1", WorkflowStatus: "Send to AM Admin", CreatedBy: "u1", CreatedAt: base, UpdatedAt: base},
			ReferenceNumber: "PS-001", ForWhat: "Office rent", GrandTotal: "PKR 50,000", Date: &paid},
		{Base: Base{ID: "ps-2", WorkflowStatus: "Returned from Audit", CreatedBy: "u1", CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)},
			ReferenceNumber: "PS-002"},
		{Base: Base{ID: "ps-3", CreatedBy: "u2", CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(2 * time.Hour)}},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed settlements: %v", err)
	}
}

func TestFindProjectsColumns(t *testing.T) {
	db := setupDB(t)
	seed(t, db)
	acc := settlementAccessor(t, db)
	ctx := context.Background()

	docs, err := acc.Find(ctx, modules.Query{}, 0)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(docs) != 3 || docs[0].ID != "ps-3" || docs[2].ID != "ps-1" {
		t.Fatalf("expected newest first, got %d docs", len(docs))
	}
	ps1 := docs[2]
	if ps1.Status != workflow.StatusSendToAMAdmin || ps1.Field("reference_number") != "PS-001" || ps1.Field("grand_total") != "PKR 50,000" {
		t.Fatalf("ps-1 fields: %+v", ps1)
	}
	if _, ok := ps1.Field("date").(time.Time); !ok {
		t.Fatalf("date not projected: %#v", ps1.Field("date"))
	}
	if ps1.CreatedBy == nil || ps1.CreatedBy.Name != "Sana Khan" || ps1.CreatedBy.Email != "sana@tovus.net" {
		t.Fatalf("creator not resolved: %+v", ps1.CreatedBy)
	}

	docs, err = acc.Find(ctx, modules.Query{Statuses: []workflow.Status{workflow.StatusReturnedFromAudit}, CreatedBy: "u1"}, 10)
	if err != nil || len(docs) != 1 || docs[0].ID != "ps-2" {
		t.Fatalf("returned-from-audit filter: %v %v", docs, err)
	}
	docs, err = acc.Find(ctx, modules.Query{}, 2)
	if err != nil || len(docs) != 2 {
		t.Fatalf("limit: %v %v", len(docs), err)
	}
}

func TestCounts(t *testing.T) {
	db := setupDB(t)
	seed(t, db)
	acc := settlementAccessor(t, db)
	ctx := context.Background()

	n, err := acc.Count(ctx, modules.Query{CreatedBy: "u1"})
	if err != nil || n != 2 {
		t.Fatalf("count by creator: %d %v", n, err)
	}
	since := time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)
	n, err = acc.Count(ctx, modules.Query{UpdatedSince: since})
	if err != nil || n != 1 {
		t.Fatalf("count since: %d %v", n, err)
	}
	by, err := acc.CountByStatus(ctx, modules.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if by[workflow.StatusSendToAMAdmin] != 1 || by[workflow.StatusReturnedFromAudit] != 1 || by[""] != 1 {
		t.Fatalf("by status: %v", by)
	}
}

func TestTransitionAppendsHistory(t *testing.T) {
	db := setupDB(t)
	seed(t, db)
	acc := settlementAccessor(t, db)
	ctx := context.Background()

	entry := workflow.HistoryEntry{
		FromStatus: workflow.StatusSendToAMAdmin,
		ToStatus:   workflow.StatusApproved,
		ChangedBy:  &workflow.Actor{ID: "u2"},
		ChangedAt:  time.Now(),
		Comments:   "Document approved",
	}
	doc, err := acc.Transition(ctx, "ps-1", modules.Change{
		From:      workflow.StatusSendToAMAdmin,
		To:        "Approved (from Send to AM Admin)",
		Entry:     entry,
		UpdatedBy: "u2",
		Legacy:    "Approved",
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if doc.Status != "Approved (from Send to AM Admin)" || doc.Field(modules.LegacyStatusKey) != "Approved" {
		t.Fatalf("after transition: %+v", doc)
	}
	if len(doc.History) != 1 || doc.History[0].ChangedBy.Name != "Rizwan" || doc.UpdatedBy.Email != "rizwan@tovus.net" {
		t.Fatalf("history/updater not resolved: %+v %+v", doc.History, doc.UpdatedBy)
	}

	// stale expectation
	_, err = acc.Transition(ctx, "ps-1", modules.Change{From: workflow.StatusSendToAMAdmin, To: workflow.StatusSendToAudit, Entry: entry})
	if !errors.Is(err, modules.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}

	// empty status is Draft
	if _, err := acc.Transition(ctx, "ps-3", modules.Change{From: workflow.StatusDraft, To: workflow.StatusSendToAudit, Entry: entry}); err != nil {
		t.Fatalf("draft transition: %v", err)
	}
	if _, err := acc.Get(ctx, "missing"); !errors.Is(err, modules.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestNewRejectsBadDescriptor(t *testing.T) {
	db := setupDB(t)
	if _, err := New(db, modules.Descriptor{Key: "x"}, nil); !errors.Is(err, modules.ErrInvalidField) {
		t.Fatalf("missing table: %v", err)
	}
	if _, err := New(db, modules.Descriptor{Key: "x", Table: "t; DROP TABLE users"}, nil); !errors.Is(err, modules.ErrInvalidField) {
		t.Fatalf("bad identifier: %v", err)
	}
}
