package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veritext/veritext/internal/ignorelist"
	"github.com/veritext/veritext/internal/pipeline"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *pipeline.Service, lists *ignorelist.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)
	lh := NewIgnoreListHandler(lists)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Essays.
	r.Post("/essays", h.UploadEssay)
	r.Get("/essays", h.ListEssays)
	r.Get("/essays/{id}", h.GetEssay)
	r.Delete("/essays/{id}", h.DeleteEssay)
	r.Post("/essays/{id}/process", h.ProcessEssay)
	r.Put("/essays/{id}/content", h.UpdateContent)

	// Findings and history.
	r.Get("/essays/{id}/history", h.GetHistory)
	r.Get("/essays/{id}/grammar-findings", h.GetGrammarFindings)
	r.Get("/essays/{id}/plagiarism-findings", h.GetPlagiarismFindings)
	r.Post("/findings/{id}/fixed", h.MarkFindingFixed)

	// Ignore-word lists.
	r.Get("/ignore-lists", lh.List)
	r.Post("/ignore-lists", lh.Create)
	r.Get("/ignore-lists/{id}", lh.Get)
	r.Put("/ignore-lists/{id}", lh.Update)
	r.Put("/ignore-lists/{id}/visibility", lh.SetVisibility)
	r.Delete("/ignore-lists/{id}", lh.Delete)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
