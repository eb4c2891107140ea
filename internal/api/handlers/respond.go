package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/backlog-studio/engine/internal/api/middleware"
	"github.com/backlog-studio/engine/internal/api/types"
	"github.com/backlog-studio/engine/internal/services"
	appErr "github.com/backlog-studio/engine/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAppError translates a service error into the envelope with the status
// the error taxonomy dictates.
func writeAppError(w http.ResponseWriter, err error) {
	writeJSON(w, types.StatusFromError(err), types.APIResponse{Success: false, Error: types.FromAppError(err)})
}

func writeInvalid(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, types.APIResponse{
		Success: false,
		Error:   &types.APIError{Code: string(appErr.CodeInvalid), Message: msg},
	})
}

// callerID extracts the authenticated user's id placed by the auth middleware.
func callerID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(middleware.GetUserID(r.Context()))
	return id, err == nil
}

func writeUnauthorized(w http.ResponseWriter) {
	writeAppError(w, appErr.New(appErr.CodeUnauthorized, "missing or invalid credentials"))
}

// parsePageRequest reads page/page_size query parameters. Out-of-range values
// are clamped downstream; non-numeric or negative input is rejected here.
func parsePageRequest(r *http.Request) (services.PageRequest, error) {
	var req services.PageRequest

	read := func(keys ...string) (int, error) {
		for _, k := range keys {
			raw := r.URL.Query().Get(k)
			if raw == "" {
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return 0, appErr.New(appErr.CodeInvalid, "invalid pagination parameter "+k).WithMeta("param", k)
			}
			return n, nil
		}
		return 0, nil
	}

	page, err := read("page")
	if err != nil {
		return req, err
	}
	size, err := read("page_size", "pageSize")
	if err != nil {
		return req, err
	}
	req.Page = page
	req.PageSize = size
	return req, nil
}
