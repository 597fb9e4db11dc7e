package workflow

import (
	"strings"
	"time"
)

// Actor references the user behind a create, update or transition. Name and
// Email are filled in when the reference is resolved for display.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Is reports whether the actor is the user identified by id or email.
func (a *Actor) Is(id, email string) bool {
	if a == nil {
		return false
	}
	if id != "" && a.ID == id {
		return true
	}
	return email != "" && a.Email != "" && strings.EqualFold(a.Email, email)
}

// HistoryEntry records one status change.
type HistoryEntry struct {
	FromStatus       Status    `json:"fromStatus"`
	ToStatus         Status    `json:"toStatus"`
	ChangedBy        *Actor    `json:"changedBy,omitempty"`
	ChangedAt        time.Time `json:"changedAt"`
	Comments         string    `json:"comments,omitempty"`
	DigitalSignature string    `json:"digitalSignature,omitempty"`
}

// History is the append-only transition log of a document.
type History []HistoryEntry

// Last returns the most recent entry.
func (h History) Last() (HistoryEntry, bool) {
	if len(h) == 0 {
		return HistoryEntry{}, false
	}
	return h[len(h)-1], true
}

// ActedFrom reports whether the user ever moved the document out of from.
func (h History) ActedFrom(id, email string, from Status) bool {
	for i := range h {
		if h[i].FromStatus == from && h[i].ChangedBy.Is(id, email) {
			return true
		}
	}
	return false
}

// ResolvedBy reports whether the latest entry is the user approving or
// rejecting the document out of from.
func (h History) ResolvedBy(id, email string, from Status) bool {
	last, ok := h.Last()
	if !ok {
		return false
	}
	return last.FromStatus == from && IsOutcome(last.ToStatus) && last.ChangedBy.Is(id, email)
}

// Append returns a copy of h with e added.
func (h History) Append(e HistoryEntry) History {
	out := make(History, 0, len(h)+1)
	out = append(out, h...)
	return append(out, e)
}

// ActorIDs lists the distinct changedBy ids.
func (h History) ActorIDs() []string {
	seen := map[string]struct{}{}
	var ids []string
	for _, e := range h {
		if e.ChangedBy == nil || e.ChangedBy.ID == "" {
			continue
		}
		if _, ok := seen[e.ChangedBy.ID]; ok {
			continue
		}
		seen[e.ChangedBy.ID] = struct{}{}
		ids = append(ids, e.ChangedBy.ID)
	}
	return ids
}
