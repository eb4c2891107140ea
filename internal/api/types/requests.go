package types

import "github.com/backlog-studio/engine/internal/services"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProjectCreateRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type ProjectUpdateRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type WorkItemCreateRequest struct {
	Kind           string  `json:"kind" validate:"required"`
	ParentID       *string `json:"parent_id" validate:"omitempty,uuid"`
	Title          string  `json:"title" validate:"required,max=200"`
	Description    string  `json:"description" validate:"max=5000"`
	AssignedUserID *string `json:"assigned_user_id" validate:"omitempty,uuid"`
}

type WorkItemUpdateRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid"`
}

type WorkItemStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type WorkItemAssignRequest struct {
	UserID *string `json:"user_id" validate:"omitempty,uuid"`
}

type ApproveRequest struct {
	ProjectID string               `json:"project_id" validate:"required,uuid"`
	Epics     []services.EpicDraft `json:"epics" validate:"required,min=1"`
}
