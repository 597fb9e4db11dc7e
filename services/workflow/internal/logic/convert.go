package logic

import (
	"time"

	"github.com/shehrozeikram/ERP-sub009/internal/modules"
	"github.com/shehrozeikram/ERP-sub009/internal/transition"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/types"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toActor(a *workflow.Actor) *types.Actor {
	if a == nil {
		return nil
	}
	return &types.Actor{Id: a.ID, Name: a.Name, Email: a.Email}
}

func toDocumentView(module string, d *modules.Document) *types.DocumentView {
	if d == nil {
		return nil
	}
	hist := make([]types.HistoryEntry, 0, len(d.History))
	for _, e := range d.History {
		hist = append(hist, types.HistoryEntry{
			FromStatus:       string(e.FromStatus),
			ToStatus:         string(e.ToStatus),
			ChangedBy:        toActor(e.ChangedBy),
			ChangedAt:        formatTime(e.ChangedAt),
			Comments:         e.Comments,
			DigitalSignature: e.DigitalSignature,
		})
	}
	legacy, _ := d.Field(modules.LegacyStatusKey).(string)
	return &types.DocumentView{
		Id:              d.ID,
		Submodule:       module,
		WorkflowStatus:  string(workflow.OrDraft(d.Status)),
		Status:          legacy,
		Fields:          d.Fields,
		WorkflowHistory: hist,
		CreatedBy:       toActor(d.CreatedBy),
		UpdatedBy:       toActor(d.UpdatedBy),
		CreatedAt:       formatTime(d.CreatedAt),
		UpdatedAt:       formatTime(d.UpdatedAt),
	}
}

func toObservations(in []types.Observation) []transition.Observation {
	if len(in) == 0 {
		return nil
	}
	out := make([]transition.Observation, 0, len(in))
	for _, o := range in {
		out = append(out, transition.Observation{Observation: o.Observation, Severity: o.Severity})
	}
	return out
}
