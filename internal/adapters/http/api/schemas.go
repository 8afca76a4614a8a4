// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"

	"github.com/jessebenson/numl/internal/domain/types"
)

// SchemasHandler serves registered schemas.
type SchemasHandler struct {
	deps Dependencies
}

// NewSchemasHandler creates a new schemas handler.
func NewSchemasHandler(deps Dependencies) *SchemasHandler {
	return &SchemasHandler{deps: deps}
}

type listResponse struct {
	Items []types.SchemaSummary `json:"items"`
	Count int                   `json:"count"`
}

// HandleListSchemas handles GET /schemas requests.
func (h *SchemasHandler) HandleListSchemas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	items, err := h.deps.Schemas(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Count: len(items)})
}

// HandleGetSchema handles GET /schemas/{name} requests.
func (h *SchemasHandler) HandleGetSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /schemas/
	name := strings.TrimPrefix(r.URL.Path, "/schemas/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	s, err := h.deps.Lookup(r.Context(), name)
	if err != nil {
		// If upstream exposes not-found, translate; otherwise 500
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
