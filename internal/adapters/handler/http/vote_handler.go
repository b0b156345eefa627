package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	OptionID uuid.UUID `json:"option_id"`
	Code     string    `json:"code"`
}

// VoteOnPoll godoc
// @Summary      Casts a vote
// @Description  Code-gated polls need a vote code in the body. Public polls allow one vote per client address.
// @Tags         votes
// @Accept       json
// @Produce      json
// @Success      201
// @Failure      400
// @Failure      403
// @Failure      404
// @Failure      409
// @Router       /api/polls/{id}/votes [post]
func (h *VoteHandler) VoteOnPoll(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, h.service.Vote)
}

func (h *VoteHandler) EmbedVote(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, h.service.EmbedVote)
}

type voteFunc func(ctx context.Context, input ports.VoteInput) (*domain.Poll, error)

func (h *VoteHandler) vote(w http.ResponseWriter, r *http.Request, cast voteFunc) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, domain.ErrInvalidPollID)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	poll, err := cast(r.Context(), ports.VoteInput{
		PollID:   pollID,
		OptionID: req.OptionID,
		Code:     req.Code,
		VoterIP:  clientIP(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toVoteResponse(poll))
}

// clientIP reads the peer address, already rewritten by middleware.RealIP when
// proxy headers are trusted.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
