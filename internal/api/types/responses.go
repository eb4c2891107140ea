package types

import "github.com/backlog-studio/engine/internal/services"

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type Meta struct {
	RequestID  string             `json:"request_id,omitempty"`
	Pagination *services.PageInfo `json:"pagination,omitempty"`
}

// DeleteResult confirms a cascade delete with the number of rows it removed.
type DeleteResult struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}

// ApproveResult is the bulk-approval confirmation payload.
type ApproveResult struct {
	CreatedWorkItems CreatedCounts `json:"created_work_items"`
	WorkItemIDs      []string      `json:"work_item_ids"`
}

type CreatedCounts struct {
	Epics   int `json:"epics"`
	Stories int `json:"stories"`
	Tasks   int `json:"tasks"`
	Total   int `json:"total"`
}
