// Package workflow holds the status vocabulary and transition rules shared by every
// workflow-enabled admin submodule.
package workflow

import (
	"regexp"
	"strings"
)

// Status is the persisted text of a document's workflow position.
type Status string

const (
	StatusDraft                 Status = "Draft"
	StatusActive                Status = "Active"
	StatusSendToAMAdmin         Status = "Send to AM Admin"
	StatusSendToHODAdmin        Status = "Send to HOD Admin"
	StatusSendToAudit           Status = "Send to Audit"
	StatusSendToFinance         Status = "Send to Finance"
	StatusSendToCEOOffice       Status = "Send to CEO Office"
	StatusForwardedToCEO        Status = "Forwarded to CEO"
	StatusReturnedFromAudit     Status = "Returned from Audit"
	StatusReturnedFromCEOOffice Status = "Returned from CEO Office"
	StatusApproved              Status = "Approved"
	StatusRejected              Status = "Rejected"
)

const sendToPrefix = "Send to "

// Outcome is the result half of a resolved status.
type Outcome string

const (
	OutcomeApproved Outcome = "Approved"
	OutcomeRejected Outcome = "Rejected"
)

// Kind tells a simple status apart from a resolved one.
type Kind int

const (
	KindSimple Kind = iota
	KindResolved
)

var resolvedPattern = regexp.MustCompile(`^(Approved|Rejected) \(from (.+)\)$`)

// State is the parsed form of a Status. Resolved statuses are stored as
// "<Outcome> (from <Source>)"; Parse and State.Status are the only places
// that know about that text layout.
type State struct {
	Kind    Kind
	Simple  Status
	Outcome Outcome
	Source  Status
}

// Parse splits a stored status into its tagged form. Anything that does not
// match the resolved layout is a simple status.
func Parse(s Status) State {
	if m := resolvedPattern.FindStringSubmatch(string(s)); m != nil {
		return State{Kind: KindResolved, Outcome: Outcome(m[1]), Source: Status(m[2])}
	}
	return State{Kind: KindSimple, Simple: s}
}

// Resolved builds the state produced by approving or rejecting a document
// that sat in source.
func Resolved(o Outcome, source Status) State {
	return State{Kind: KindResolved, Outcome: o, Source: source}
}

func (st State) IsResolved() bool { return st.Kind == KindResolved }

// Base is the outcome for resolved states and the status itself otherwise.
func (st State) Base() Status {
	if st.IsResolved() {
		return Status(st.Outcome)
	}
	return st.Simple
}

// Status renders the state back to its persisted text.
func (st State) Status() Status {
	if st.IsResolved() {
		return Status(string(st.Outcome) + " (from " + string(st.Source) + ")")
	}
	return st.Simple
}

// BaseStatus strips "Approved (from X)" down to "Approved"; simple statuses
// are returned unchanged.
func BaseStatus(s Status) Status { return Parse(s).Base() }

// SourceStatus extracts X from "Approved (from X)". ok is false for simple
// statuses.
func SourceStatus(s Status) (Status, bool) {
	st := Parse(s)
	if !st.IsResolved() {
		return "", false
	}
	return st.Source, true
}

// ResolvedFrom lists the resolved statuses a document leaves behind once
// someone approves or rejects it out of source.
func ResolvedFrom(source Status) []Status {
	return []Status{
		Resolved(OutcomeApproved, source).Status(),
		Resolved(OutcomeRejected, source).Status(),
	}
}

// IsSendTo reports whether s routes the document to an office for review.
func IsSendTo(s Status) bool { return strings.HasPrefix(string(s), sendToPrefix) }

// IsOutcome reports whether s is the bare Approved or Rejected outcome.
func IsOutcome(s Status) bool { return s == StatusApproved || s == StatusRejected }

// IsPending decides whether a document still waits for someone. The
// "Send to" substring match covers every office without listing them.
func IsPending(s Status) bool {
	return s == StatusDraft || s == StatusActive || strings.Contains(string(s), "Send to")
}

// CanResolve reports whether a document in s may be approved or rejected.
// A resolved status never qualifies, even though its source contains
// "Send to".
func CanResolve(s Status) bool {
	if Parse(s).IsResolved() {
		return false
	}
	return strings.Contains(string(s), "Send to") || s == StatusForwardedToCEO
}

// OrDraft maps an empty stored status to Draft.
func OrDraft(s Status) Status {
	if strings.TrimSpace(string(s)) == "" {
		return StatusDraft
	}
	return s
}
