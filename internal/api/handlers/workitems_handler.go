package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/backlog-studio/engine/internal/api/types"
	"github.com/backlog-studio/engine/internal/api/validators"
	"github.com/backlog-studio/engine/internal/models"
	"github.com/backlog-studio/engine/internal/services"
)

type WorkItemsHandler struct {
	items services.WorkItemService
}

func NewWorkItemsHandler(items services.WorkItemService) *WorkItemsHandler {
	return &WorkItemsHandler{items: items}
}

// pathIDs pulls the authenticated caller plus the project (and optionally
// work item) ids out of the request. A false return means the response has
// already been written.
func pathIDs(w http.ResponseWriter, r *http.Request, withItem bool) (caller, projectID, itemID uuid.UUID, ok bool) {
	caller, valid := callerID(r)
	if !valid {
		writeUnauthorized(w)
		return
	}
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		writeInvalid(w, "invalid project id")
		return
	}
	if withItem {
		itemID, err = uuid.Parse(chi.URLParam(r, "workItemID"))
		if err != nil {
			writeInvalid(w, "invalid work item id")
			return
		}
	}
	ok = true
	return
}

func parseOptionalID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (h *WorkItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, projectID, _, ok := pathIDs(w, r, false)
	if !ok {
		return
	}
	page, err := parsePageRequest(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	var parentID *uuid.UUID
	if raw := r.URL.Query().Get("parent_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeInvalid(w, "invalid parent_id")
			return
		}
		parentID = &id
	} else if raw := r.URL.Query().Get("parentId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeInvalid(w, "invalid parentId")
			return
		}
		parentID = &id
	}

	items, info, err := h.items.List(r.Context(), projectID, caller, parentID, page)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items, Meta: &types.Meta{Pagination: &info}})
}

func (h *WorkItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, projectID, itemID, ok := pathIDs(w, r, true)
	if !ok {
		return
	}
	detail, err := h.items.Get(r.Context(), projectID, itemID, caller)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: detail})
}

func (h *WorkItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, projectID, _, ok := pathIDs(w, r, false)
	if !ok {
		return
	}
	var req types.WorkItemCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeInvalid(w, err.Error())
		return
	}

	kind, err := models.ParseKind(req.Kind)
	if err != nil {
		writeInvalid(w, err.Error())
		return
	}
	parentID, err := parseOptionalID(req.ParentID)
	if err != nil {
		writeInvalid(w, "invalid parent_id")
		return
	}
	assigneeID, err := parseOptionalID(req.AssignedUserID)
	if err != nil {
		writeInvalid(w, "invalid assigned_user_id")
		return
	}

	item, err := h.items.Create(r.Context(), projectID, caller, &services.CreateWorkItemInput{
		Kind:           kind,
		ParentID:       parentID,
		Title:          req.Title,
		Description:    req.Description,
		AssignedUserID: assigneeID,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: item})
}

func (h *WorkItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, projectID, itemID, ok := pathIDs(w, r, true)
	if !ok {
		return
	}
	var req types.WorkItemUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeInvalid(w, err.Error())
		return
	}
	parentID, err := parseOptionalID(req.ParentID)
	if err != nil {
		writeInvalid(w, "invalid parent_id")
		return
	}

	item, err := h.items.Update(r.Context(), projectID, itemID, caller, &services.UpdateWorkItemInput{
		Title:       req.Title,
		Description: req.Description,
		ParentID:    parentID,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: item})
}

func (h *WorkItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, projectID, itemID, ok := pathIDs(w, r, true)
	if !ok {
		return
	}
	count, err := h.items.Delete(r.Context(), projectID, itemID, caller)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: types.DeleteResult{
		Message:      "work item deleted",
		DeletedCount: count,
	}})
}

func (h *WorkItemsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	caller, projectID, itemID, ok := pathIDs(w, r, true)
	if !ok {
		return
	}
	var req types.WorkItemStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid json")
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		writeInvalid(w, err.Error())
		return
	}

	item, err := h.items.SetStatus(r.Context(), projectID, itemID, caller, status)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: item})
}

func (h *WorkItemsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	caller, projectID, itemID, ok := pathIDs(w, r, true)
	if !ok {
		return
	}
	var req types.WorkItemAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, "invalid json")
		return
	}
	assigneeID, err := parseOptionalID(req.UserID)
	if err != nil {
		writeInvalid(w, "invalid user_id")
		return
	}

	item, err := h.items.Assign(r.Context(), projectID, itemID, caller, assigneeID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: item})
}
