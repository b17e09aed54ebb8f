package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/veritext/veritext/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps the apperr taxonomy onto HTTP statuses. Unclassified errors
// are logged and reported as internal errors without detail.
func writeError(w http.ResponseWriter, err error) {
	var stageErr *apperr.StageError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody("forbidden"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrUnsupportedFileType):
		writeJSON(w, http.StatusUnsupportedMediaType, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrExtractionFailure):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.As(err, &stageErr):
		slog.Error("processing failed",
			slog.String("stage", stageErr.Stage), slog.String("error", stageErr.Err.Error()))
		writeJSON(w, http.StatusInternalServerError, errResponse{
			Error: "processing failed",
			Stage: stageErr.Stage,
		})
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
