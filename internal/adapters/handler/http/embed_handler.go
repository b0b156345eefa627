package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
	"github.com/vncsmyrnk/enquesta/internal/theme"
)

// EmbedHandler serves the data an iframe widget needs in one call.
type EmbedHandler struct {
	service ports.PollService
	now     func() time.Time
}

func NewEmbedHandler(service ports.PollService) *EmbedHandler {
	return &EmbedHandler{
		service: service,
		now:     time.Now,
	}
}

func (h *EmbedHandler) GetEmbedPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.service.GetPoll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, embedPollResponse{
		Poll:    toPollView(poll, h.now()),
		Results: domain.ComputeTally(*poll),
		Theme:   theme.FromColor(r.URL.Query().Get("color")),
	})
}
