package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/backlog-studio/engine/internal/api/types"
	"github.com/backlog-studio/engine/internal/api/validators"
	"github.com/backlog-studio/engine/internal/services"
)

// AssistantHandler receives externally generated draft hierarchies and hands
// them to the approval transaction.
type AssistantHandler struct {
	approvals services.ApprovalService
}

func NewAssistantHandler(approvals services.ApprovalService) *AssistantHandler {
	return &AssistantHandler{approvals: approvals}
}

func (h *AssistantHandler) Approve(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	var req types.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeInvalid(w, err.Error())
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		writeInvalid(w, "invalid project_id")
		return
	}

	result, err := h.approvals.Approve(r.Context(), projectID, caller, req.Epics)
	if err != nil {
		writeAppError(w, err)
		return
	}

	ids := make([]string, len(result.WorkItemIDs))
	for i, id := range result.WorkItemIDs {
		ids[i] = id.String()
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: types.ApproveResult{
		CreatedWorkItems: types.CreatedCounts{
			Epics:   result.Epics,
			Stories: result.Stories,
			Tasks:   result.Tasks,
			Total:   result.Total,
		},
		WorkItemIDs: ids,
	}})
}
