package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/veritext/veritext/internal/models"
	"github.com/veritext/veritext/internal/pipeline"
)

const maxUploadBytes = 10 << 20 // 10 MB

// Handler holds API route handlers for essays, findings, and history.
type Handler struct {
	svc *pipeline.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *pipeline.Service) *Handler {
	return &Handler{svc: svc}
}

// UploadEssay handles POST /essays (multipart: file, optional title field).
func (h *Handler) UploadEssay(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("X-Owner-ID header is required"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid multipart body"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file field is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	title := r.FormValue("title")
	declaredType := r.FormValue("file_type")

	essay, err := h.svc.Upload(r.Context(), owner, header.Filename, declaredType, title, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, essay)
}

// ListEssays handles GET /essays.
func (h *Handler) ListEssays(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("X-Owner-ID header is required"))
		return
	}
	essays, err := h.svc.ListByOwner(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	if essays == nil {
		essays = []models.Essay{}
	}
	writeJSON(w, http.StatusOK, EssayListResponse{Essays: essays, Total: len(essays)})
}

// GetEssay handles GET /essays/{id}.
func (h *Handler) GetEssay(w http.ResponseWriter, r *http.Request) {
	essay, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, essay)
}

// ProcessEssay handles POST /essays/{id}/process. The pipeline runs
// synchronously; the response carries the essay in its final status.
func (h *Handler) ProcessEssay(w http.ResponseWriter, r *http.Request) {
	ignoreListID := r.URL.Query().Get("ignore_list_id")
	essay, err := h.svc.Process(r.Context(), chi.URLParam(r, "id"), ignoreListID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, essay)
}

// UpdateContent handles PUT /essays/{id}/content.
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	var req UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	essay, err := h.svc.UpdateContent(r.Context(), chi.URLParam(r, "id"), req.Content, req.Description, ifMatch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, essay)
}

// DeleteEssay handles DELETE /essays/{id}.
func (h *Handler) DeleteEssay(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHistory handles GET /essays/{id}/history.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.GetHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.EditHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Entries: entries, Total: len(entries)})
}

// GetGrammarFindings handles GET /essays/{id}/grammar-findings.
func (h *Handler) GetGrammarFindings(w http.ResponseWriter, r *http.Request) {
	findings, err := h.svc.GetGrammarFindings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if findings == nil {
		findings = []models.GrammarFinding{}
	}
	writeJSON(w, http.StatusOK, GrammarFindingsResponse{Findings: findings, Total: len(findings)})
}

// GetPlagiarismFindings handles GET /essays/{id}/plagiarism-findings with an
// optional min_score query filter.
func (h *Handler) GetPlagiarismFindings(w http.ResponseWriter, r *http.Request) {
	var minScore float64
	if raw := r.URL.Query().Get("min_score"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			writeJSON(w, http.StatusBadRequest, errorBody("min_score must be a number in [0,1]"))
			return
		}
		minScore = parsed
	}
	findings, err := h.svc.GetPlagiarismFindings(r.Context(), chi.URLParam(r, "id"), minScore)
	if err != nil {
		writeError(w, err)
		return
	}
	if findings == nil {
		findings = []models.PlagiarismFinding{}
	}
	writeJSON(w, http.StatusOK, PlagiarismFindingsResponse{Findings: findings, Total: len(findings)})
}

// MarkFindingFixed handles POST /findings/{id}/fixed.
func (h *Handler) MarkFindingFixed(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkFixed(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
