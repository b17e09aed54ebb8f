package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veritext/veritext/internal/ignorelist"
	"github.com/veritext/veritext/internal/models"
)

// IgnoreListHandler holds API route handlers for ignore-word lists.
type IgnoreListHandler struct {
	svc *ignorelist.Service
}

// NewIgnoreListHandler creates a new IgnoreListHandler.
func NewIgnoreListHandler(svc *ignorelist.Service) *IgnoreListHandler {
	return &IgnoreListHandler{svc: svc}
}

// List handles GET /ignore-lists.
func (h *IgnoreListHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("X-Owner-ID header is required"))
		return
	}
	lists, err := h.svc.ListByOwner(owner)
	if err != nil {
		writeError(w, err)
		return
	}
	if lists == nil {
		lists = []models.IgnoreWordList{}
	}
	writeJSON(w, http.StatusOK, IgnoreListResponse{Lists: lists, Total: len(lists)})
}

// Create handles POST /ignore-lists.
func (h *IgnoreListHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("X-Owner-ID header is required"))
		return
	}
	var req IgnoreListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	list, err := h.svc.Create(owner, req.Name, req.Words, req.IsPublic)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

// Get handles GET /ignore-lists/{id}. Foreign lists are readable only when
// public.
func (h *IgnoreListHandler) Get(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Get(ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Update handles PUT /ignore-lists/{id}.
func (h *IgnoreListHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req IgnoreListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	list, err := h.svc.Update(ownerID(r), chi.URLParam(r, "id"), req.Name, req.Words)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// SetVisibility handles PUT /ignore-lists/{id}/visibility.
func (h *IgnoreListHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	var req VisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.SetPublic(ownerID(r), chi.URLParam(r, "id"), req.IsPublic); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /ignore-lists/{id}.
func (h *IgnoreListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(ownerID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
