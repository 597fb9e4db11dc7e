// Package tasks merges the workflow documents of every registered module
// into one worklist for the calling user.
package tasks

import (
	"time"

	"github.com/shehrozeikram/ERP-sub009/internal/modules"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
)

// Task is the uniform, read-only projection of one document.
type Task struct {
	ID                 string           `json:"id"`
	Submodule          string           `json:"submodule"`
	SubmoduleName      string           `json:"submoduleName"`
	Title              any              `json:"title"`
	Description        any              `json:"description"`
	Amount             any              `json:"amount"`
	Date               any              `json:"date"`
	WorkflowStatus     workflow.Status  `json:"workflowStatus"`
	Status             string           `json:"status"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
	CreatedBy          *workflow.Actor  `json:"createdBy,omitempty"`
	UpdatedBy          *workflow.Actor  `json:"updatedBy,omitempty"`
	WorkflowHistory    workflow.History `json:"workflowHistory"`
	UserAssignedStatus workflow.Status  `json:"userAssignedStatus,omitempty"`
	UserHasProcessed   bool             `json:"userHasProcessed"`
	RoutePath          string           `json:"routePath,omitempty"`
	ViewPath           string           `json:"viewPath,omitempty"`
	EditPath           string           `json:"editPath,omitempty"`
	Icon               string           `json:"icon,omitempty"`
}

// TaskList is the merged worklist with its two indices.
type TaskList struct {
	Tasks         []Task                     `json:"tasks"`
	TotalTasks    int                        `json:"totalTasks"`
	ByStatus      map[workflow.Status][]Task `json:"byStatus"`
	BySubmodule   map[string][]Task          `json:"bySubmodule"`
	FailedModules []string                   `json:"failedModules,omitempty"`
}

func orDefault(v any, def any) any {
	if v == nil {
		return def
	}
	if s, ok := v.(string); ok && s == "" {
		return def
	}
	return v
}

// project builds the task for doc using only the descriptor's field names.
func project(d modules.Descriptor, doc *modules.Document, assigned workflow.Status, processed bool) Task {
	legacy, _ := doc.Field(modules.LegacyStatusKey).(string)
	if legacy == "" {
		legacy = string(workflow.StatusDraft)
	}
	var date any = doc.Field(d.DateField)
	if date == nil {
		date = doc.CreatedAt
	}
	return Task{
		ID:                 doc.ID,
		Submodule:          d.Key,
		SubmoduleName:      d.Name,
		Title:              orDefault(doc.Field(d.TitleField), "N/A"),
		Description:        orDefault(doc.Field(d.DescriptionField), ""),
		Amount:             doc.Field(d.AmountField),
		Date:               date,
		WorkflowStatus:     workflow.OrDraft(doc.Status),
		Status:             legacy,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
		CreatedBy:          doc.CreatedBy,
		UpdatedBy:          doc.UpdatedBy,
		WorkflowHistory:    doc.History,
		UserAssignedStatus: assigned,
		UserHasProcessed:   processed,
		RoutePath:          d.RoutePath,
		ViewPath:           d.RoutePath,
		EditPath:           d.EditPath(doc.ID),
		Icon:               d.Icon,
	}
}
