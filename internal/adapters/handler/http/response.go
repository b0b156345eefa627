package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vncsmyrnk/enquesta/internal/core/domain"
)

type errorResponse struct {
	Error  string        `json:"error"`
	Reason domain.Reason `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeError maps service errors onto status codes. Anything unrecognised is
// logged and reported as a 500 without leaking its text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error()}
	if reason, ok := domain.RejectionReason(err); ok {
		resp.Reason = reason
	}

	var status int
	switch {
	case errors.Is(err, domain.ErrInvalidPollID),
		errors.Is(err, domain.ErrInvalidPoll),
		errors.Is(err, domain.ErrInvalidPage):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrPollNotFound), errors.Is(err, domain.ErrCodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownOption):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCode):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrPollClosed),
		errors.Is(err, domain.ErrCodeAlreadyUsed),
		errors.Is(err, domain.ErrAlreadyVoted),
		errors.Is(err, domain.ErrConcurrentUpdate):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrEmbedVotingDisabled), errors.Is(err, domain.ErrInvalidAdminKey):
		status = http.StatusForbidden
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		status = http.StatusInternalServerError
		resp = errorResponse{Error: domain.ErrInternal.Error()}
	}

	writeJSON(w, status, resp)
}
