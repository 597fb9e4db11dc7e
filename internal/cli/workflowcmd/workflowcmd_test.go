package workflowcmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shehrozeikram/ERP-sub009/internal/audit/chain"
	"github.com/shehrozeikram/ERP-sub009/internal/db"
	"github.com/shehrozeikram/ERP-sub009/internal/events"
	documentsgorm "github.com/shehrozeikram/ERP-sub009/internal/repo/gorm/documents"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := New()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckTransition(t *testing.T) {
	out, err := run(t, "check-transition", "Draft", "Send to Audit")
	if err != nil || !strings.Contains(out, "allowed: Draft -> Send to Audit") {
		t.Fatalf("draft -> audit: %q %v", out, err)
	}
	out, err = run(t, "check-transition", "", "Send to Audit")
	if err != nil || !strings.HasPrefix(out, "allowed: Draft") {
		t.Fatalf("empty source is Draft: %q %v", out, err)
	}
	out, err = run(t, "check-transition", "Send to Finance", "Send to Audit")
	if !errors.Is(err, errTransitionDenied) || !strings.HasPrefix(out, "denied") {
		t.Fatalf("finance -> audit: %q %v", out, err)
	}
	if _, err := run(t, "check-transition", "Draft", "Paid"); err == nil {
		t.Fatalf("unknown target should fail")
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"--role", "auditor"}, "Send to Audit"},
		{[]string{"--email", "Rizwan@Tovus.net", "--role", "auditor"}, "Send to AM Admin"},
		{[]string{"--role", "admin"}, "unrestricted"},
		{[]string{"--role", "employee"}, "none"},
	}
	for _, tc := range cases {
		out, err := run(t, append([]string{"resolve"}, tc.args...)...)
		if err != nil || strings.TrimSpace(out) != tc.want {
			t.Fatalf("resolve %v: got %q (%v), want %q", tc.args, out, err, tc.want)
		}
	}
}

func TestMigrateAndTasks(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "erp.db")
	if _, err := run(t, "tasks"); !errors.Is(err, errDSNRequired) {
		t.Fatalf("missing dsn: %v", err)
	}
	out, err := run(t, "migrate", "--dsn", dsn)
	if err != nil || !strings.Contains(out, "migrated sqlite") {
		t.Fatalf("migrate: %q %v", out, err)
	}

	gdb, err := db.Open(dsn)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now().UTC()
	row := documentsgorm.PaymentSettlement{
		Base:            documentsgorm.Base{ID: "ps-42", WorkflowStatus: "Send to Audit", CreatedBy: "u1", CreatedAt: now, UpdatedAt: now},
		ReferenceNumber: "PS-042",
		GrandTotal:      "PKR 9,000",
	}
	if err := gdb.Create(&row).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}

	out, err = run(t, "tasks", "--dsn", dsn, "--role", "auditor", "--id", "u-aud", "--stats")
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	for _, want := range []string{"ps-42", "PS-042", "Send to Audit", "PKR 9,000", "pending"} {
		if !strings.Contains(out, want) {
			t.Fatalf("tasks output missing %q:\n%s", want, out)
		}
	}
	out, err = run(t, "tasks", "--dsn", dsn, "--role", "finance_manager", "--id", "u-fin")
	if err != nil || strings.Contains(out, "ps-42") {
		t.Fatalf("finance should not see audit queue: %v\n%s", err, out)
	}
}

func TestValidateRules(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(good, []byte("assignments:\n  emails: {}\n  roles:\n    auditor: Send to Audit\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "validate-rules", good)
	if err != nil || !strings.Contains(out, "ok (3 modules, 0 email and 1 role assignments") {
		t.Fatalf("validate good: %q %v", out, err)
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("assignments:\n  roles:\n    auditor: Send to Payroll\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "validate-rules", bad); err == nil {
		t.Fatalf("unknown status should fail validation")
	}
}

func TestVerifyAudit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	w, err := chain.NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	evt := events.NewTransitionEvent("payment_settlement", "ps-1", "approve", "Send to Audit", "Approved (from Send to Audit)")
	if err := w.PublishTransition(context.Background(), evt); err != nil {
		t.Fatal(err)
	}
	_ = w.Close()
	out, err := run(t, "verify-audit", path)
	if err != nil || !strings.Contains(out, "1 entries, chain intact") {
		t.Fatalf("verify-audit: %q %v", out, err)
	}
}
