package types

type (
	// Response is the envelope of every endpoint.
	Response struct {
		Success bool   `json:"success"`
		Message string `json:"message,omitempty"`
		Data    any    `json:"data,omitempty"`
		Error   string `json:"error,omitempty"`
	}

	TasksListRequest struct {
		WorkflowStatus string `form:"workflowStatus,optional"`
	}

	StatsRequest struct {
		WorkflowStatus string `form:"workflowStatus,optional"`
	}

	Observation struct {
		Observation string `json:"observation"`
		Severity    string `json:"severity,optional"`
	}

	WorkflowStatusRequest struct {
		Module           string        `path:"module"`
		Id               string        `path:"id"`
		WorkflowStatus   string        `json:"workflowStatus,optional"`
		Comments         string        `json:"comments,optional"`
		DigitalSignature string        `json:"digitalSignature,optional"`
		Observations     []Observation `json:"observations,optional"`
	}

	ResolveRequest struct {
		Module           string        `path:"module"`
		Id               string        `path:"id"`
		Comments         string        `json:"comments,optional"`
		DigitalSignature string        `json:"digitalSignature,optional"`
		Observations     []Observation `json:"observations,optional"`
	}

	Actor struct {
		Id    string `json:"id"`
		Name  string `json:"name,omitempty"`
		Email string `json:"email,omitempty"`
	}

	HistoryEntry struct {
		FromStatus       string `json:"fromStatus"`
		ToStatus         string `json:"toStatus"`
		ChangedBy        *Actor `json:"changedBy,omitempty"`
		ChangedAt        string `json:"changedAt"`
		Comments         string `json:"comments,omitempty"`
		DigitalSignature string `json:"digitalSignature,omitempty"`
	}

	DocumentView struct {
		Id              string         `json:"id"`
		Submodule       string         `json:"submodule"`
		WorkflowStatus  string         `json:"workflowStatus"`
		Status          string         `json:"status,omitempty"`
		Fields          map[string]any `json:"fields,omitempty"`
		WorkflowHistory []HistoryEntry `json:"workflowHistory"`
		CreatedBy       *Actor         `json:"createdBy,omitempty"`
		UpdatedBy       *Actor         `json:"updatedBy,omitempty"`
		CreatedAt       string         `json:"createdAt"`
		UpdatedAt       string         `json:"updatedAt"`
	}

	HealthResponse struct {
		Status  string   `json:"status"`
		Modules []string `json:"modules"`
	}
)
