package usersgorm

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate users: %v", err)
	}
	return New(db)
}

func TestLookup(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u1 := &User{FirstName: "Rizwan", LastName: "Ali", Email: " Rizwan@Tovus.net "}
	u2 := &User{ID: "u2", Email: "ops@tovus.net"}
	for _, u := range []*User{u1, u2} {
		if err := r.CreateUser(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	if u1.ID == "" {
		t.Fatalf("id not assigned")
	}
	got, err := r.Lookup(ctx, []string{u1.ID, "u2", "u2", "", "ghost"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 actors, got %v", got)
	}
	if a := got[u1.ID]; a.Name != "Rizwan Ali" || a.Email != "rizwan@tovus.net" {
		t.Fatalf("u1 actor: %+v", a)
	}
	if a := got["u2"]; a.Name != "ops@tovus.net" {
		t.Fatalf("u2 should fall back to email: %+v", a)
	}
	if u, err := r.GetUserByEmail(ctx, "RIZWAN@tovus.net"); err != nil || u.ID != u1.ID {
		t.Fatalf("by email: %v %v", u, err)
	}
}
