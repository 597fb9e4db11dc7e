package workflowconf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shehrozeikram/ERP-sub009/internal/identity"
	"github.com/shehrozeikram/ERP-sub009/internal/modules"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
)

const sample = `
elevated_roles: [super_admin, admin]
assignments:
  emails:
    rizwan@tovus.net: Send to AM Admin
  roles:
    auditor: Send to Audit
    finance_manager: Send to Finance
modules:
  - key: payment_settlement
    name: Payment Settlement
    table: payment_settlements
    title_field: reference_number
    amount_field: grand_total
    legacy_status_field: status
    route_path: /admin/payment-settlement
`

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	res := identity.NewResolver(r.IdentityConfig())
	if st, ok := res.AssignedStatus("Rizwan@tovus.net", "auditor"); !ok || st != workflow.StatusSendToAMAdmin {
		t.Fatalf("email assignment: %q %v", st, ok)
	}
	if res.Elevated("hr_manager") {
		t.Fatalf("hr_manager should not be elevated with this file")
	}
	descs := r.Descriptors(nil)
	if len(descs) != 1 || descs[0].StatusField != "workflow_status" || descs[0].LegacyStatusField != "status" {
		t.Fatalf("descriptors: %+v", descs)
	}
	if r.Graph() != workflow.DefaultGraph {
		t.Fatalf("no transitions section should use the default graph")
	}
}

func TestEmptyFileUsesDefaults(t *testing.T) {
	r, err := Parse(nil)
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	c := r.IdentityConfig()
	if c.Roles["auditor"] != workflow.StatusSendToAudit {
		t.Fatalf("defaults not applied: %+v", c)
	}
	fallback := []modules.Descriptor{{Key: "x"}}
	if got := r.Descriptors(fallback); len(got) != 1 || got[0].Key != "x" {
		t.Fatalf("fallback descriptors: %+v", got)
	}
}

func TestRejectsBadRules(t *testing.T) {
	bad := map[string]string{
		"unknown key":    "colour: blue\n",
		"module w/o key": "modules:\n  - name: x\n",
		"unknown status": "assignments:\n  roles:\n    auditor: Send to Mars\n",
		"bad identifier": "modules:\n  - key: x\n    table: \"x; drop\"\n",
		"duplicate":      "modules:\n  - key: x\n  - key: x\n",
	}
	for name, doc := range bad {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalidRules) {
			t.Fatalf("%s: want ErrInvalidRules, got %v", name, err)
		}
	}
}

func TestCustomTransitions(t *testing.T) {
	r, err := Parse([]byte("transitions:\n  Draft: [Send to Audit]\n  Send to Audit: [Send to Mars]\nassignments:\n  roles:\n    auditor: Send to Mars\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	g := r.Graph()
	if !g.IsValidTransition(workflow.StatusDraft, workflow.StatusSendToAudit) || g.IsValidTransition(workflow.StatusDraft, workflow.StatusSendToFinance) {
		t.Fatalf("custom graph not applied")
	}
}
