package tasks

import (
	"github.com/shehrozeikram/ERP-sub009/internal/identity"
	"github.com/shehrozeikram/ERP-sub009/internal/modules"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
)

// Visibility builds the per-module query for a caller:
//   - assignees see their status plus what they resolved out of it;
//   - elevated roles see everything, optionally narrowed by filter;
//   - everyone else sees only their own documents bounced back by audit.
//
// ok is false when the caller can see nothing at all.
func Visibility(c identity.Caller, a identity.Assignment, filter workflow.Status) (q modules.Query, ok bool) {
	switch {
	case a.Assigned:
		return modules.Query{Statuses: append([]workflow.Status{a.Status}, workflow.ResolvedFrom(a.Status)...)}, true
	case a.Elevated:
		if filter != "" {
			return modules.Query{Statuses: []workflow.Status{filter}}, true
		}
		return modules.Query{}, true
	case c.ID == "":
		return modules.Query{}, false
	default:
		return modules.Query{
			Statuses:  []workflow.Status{workflow.StatusReturnedFromAudit},
			CreatedBy: c.ID,
		}, true
	}
}

// UserHasProcessed tells whether the caller already acted on doc from their
// assigned status.
func UserHasProcessed(doc *modules.Document, c identity.Caller, a identity.Assignment) bool {
	if !a.Assigned {
		return false
	}
	current := workflow.OrDraft(doc.Status)
	if current == a.Status {
		// back in the caller's queue after they moved it once
		return doc.History.ActedFrom(c.ID, c.Email, a.Status)
	}
	if src, ok := workflow.SourceStatus(current); ok && src == a.Status {
		return doc.History.ResolvedBy(c.ID, c.Email, a.Status)
	}
	return false
}
