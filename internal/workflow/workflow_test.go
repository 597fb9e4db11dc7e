package workflow

import (
	"testing"
	"time"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []Status{
		"Draft",
		"Send to Audit",
		"Approved (from Send to Audit)",
		"Rejected (from Forwarded to CEO)",
	}
	for _, s := range cases {
		if got := Parse(s).Status(); got != s {
			t.Fatalf("round trip %q -> %q", s, got)
		}
	}
}

func TestBaseAndSourceStatus(t *testing.T) {
	if got := BaseStatus("Approved (from Send to Audit)"); got != StatusApproved {
		t.Fatalf("base: %q", got)
	}
	src, ok := SourceStatus("Approved (from Send to Audit)")
	if !ok || src != StatusSendToAudit {
		t.Fatalf("source: %q %v", src, ok)
	}
	if _, ok := SourceStatus("Draft"); ok {
		t.Fatalf("simple status must not have a source")
	}
	if _, ok := SourceStatus("Approved from Send to Audit"); ok {
		t.Fatalf("malformed resolved status must not parse")
	}
	if got := BaseStatus("Returned from Audit"); got != StatusReturnedFromAudit {
		t.Fatalf("simple base: %q", got)
	}
}

func TestIsValidTransitionReflexive(t *testing.T) {
	all := []Status{"Draft", "Active", "Forwarded to CEO", "Returned from Audit", "Approved (from Send to Finance)", "nonsense"}
	for _, s := range all {
		if !IsValidTransition(s, s) {
			t.Fatalf("%q -> itself must be legal", s)
		}
	}
}

func TestIsValidTransitionRules(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusRejected, StatusDraft, true},
		{StatusApproved, StatusDraft, false},
		{"Rejected (from Send to Audit)", StatusDraft, true},
		{"Approved (from Send to Audit)", StatusDraft, false},
		{"Approved (from Send to AM Admin)", StatusSendToHODAdmin, true},
		{"Approved (from Send to AM Admin)", "Send to Regional Office", true},
		{StatusReturnedFromAudit, StatusSendToAudit, true},
		{StatusReturnedFromAudit, StatusDraft, false},
		{StatusReturnedFromAudit, StatusSendToFinance, false},
		{StatusReturnedFromCEOOffice, StatusDraft, true},
		{StatusReturnedFromCEOOffice, StatusSendToFinance, true},
		{StatusReturnedFromCEOOffice, StatusActive, false},
		{StatusDraft, StatusActive, true},
		{StatusDraft, StatusSendToCEOOffice, true},
		{StatusSendToFinance, StatusSendToAMAdmin, false},
		{StatusSendToAudit, StatusReturnedFromAudit, true},
		{StatusForwardedToCEO, StatusDraft, false},
		{"Unknown", StatusDraft, false},
	}
	for _, c := range cases {
		if got := IsValidTransition(c.from, c.to); got != c.want {
			t.Fatalf("%q -> %q: got %v want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestGraphAlternateAdjacency(t *testing.T) {
	g := NewGraph(map[Status][]Status{"A": {"B"}})
	if !g.IsValidTransition("A", "B") {
		t.Fatalf("A -> B")
	}
	if g.IsValidTransition("B", "A") {
		t.Fatalf("B -> A must be illegal")
	}
	if !g.Known("B") || g.Known("C") {
		t.Fatalf("vocabulary mismatch")
	}
}

func TestValidResolved(t *testing.T) {
	if !DefaultGraph.ValidResolved("Approved (from Send to Finance)") {
		t.Fatalf("Send to Finance is reachable from Draft")
	}
	if !DefaultGraph.ValidResolved("Rejected (from Forwarded to CEO)") {
		t.Fatalf("Forwarded to CEO is reachable from Draft")
	}
	if DefaultGraph.ValidResolved("Approved (from Nowhere)") {
		t.Fatalf("unknown source must be invalid")
	}
	if DefaultGraph.ValidResolved("Draft") {
		t.Fatalf("simple status is not resolved")
	}
}

func TestPendingPredicate(t *testing.T) {
	for _, s := range []Status{"Draft", "Active", "Send to Regional Office", "Send to Audit"} {
		if !IsPending(s) {
			t.Fatalf("%q should be pending", s)
		}
	}
	for _, s := range []Status{"Approved (from Send to Audit)", "Returned from Audit", "Forwarded to CEO", ""} {
		if IsPending(s) {
			t.Fatalf("%q should not be pending", s)
		}
	}
}

func TestHistoryProcessedChecks(t *testing.T) {
	u := &Actor{ID: "u1", Email: "Rizwan@tovus.net"}
	other := &Actor{ID: "u2", Email: "other@tovus.net"}
	h := History{
		{FromStatus: StatusDraft, ToStatus: StatusSendToFinance, ChangedBy: other, ChangedAt: time.Now()},
		{FromStatus: StatusSendToFinance, ToStatus: StatusApproved, ChangedBy: u, ChangedAt: time.Now()},
	}
	if !h.ResolvedBy("", "rizwan@tovus.net", StatusSendToFinance) {
		t.Fatalf("email match must be case-insensitive")
	}
	if !h.ResolvedBy("u1", "", StatusSendToFinance) {
		t.Fatalf("id match")
	}
	if h.ResolvedBy("u2", "other@tovus.net", StatusSendToFinance) {
		t.Fatalf("other user did not resolve")
	}
	if !h.ActedFrom("u2", "", StatusDraft) || h.ActedFrom("u1", "", StatusDraft) {
		t.Fatalf("acted-from mismatch")
	}
	if ids := h.ActorIDs(); len(ids) != 2 {
		t.Fatalf("actor ids: %v", ids)
	}
	h2 := h.Append(HistoryEntry{FromStatus: "x", ToStatus: "y"})
	if len(h) != 2 || len(h2) != 3 {
		t.Fatalf("append must not mutate the receiver")
	}
}

func TestCanResolve(t *testing.T) {
	for s, want := range map[Status]bool{
		StatusSendToAudit:                 true,
		"Send to Regional Office":         true,
		StatusForwardedToCEO:              true,
		StatusDraft:                       false,
		StatusReturnedFromAudit:           false,
		"Approved (from Send to Audit)":   false,
		"Rejected (from Send to Finance)": false,
	} {
		if got := CanResolve(s); got != want {
			t.Fatalf("CanResolve(%q) = %v, want %v", s, got, want)
		}
	}
}
