package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/theme"
)

// pollView is the public shape of a poll. Vote codes and consumed
// credentials never appear in it.
type pollView struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	AccessMode  domain.AccessMode   `json:"access_mode"`
	Options     []domain.PollOption `json:"options"`
	TotalVotes  int64               `json:"total_votes"`
	Active      bool                `json:"active"`
	CreatedAt   time.Time           `json:"created_at"`
	ExpiresAt   time.Time           `json:"expires_at"`
}

func toPollView(poll *domain.Poll, now time.Time) pollView {
	return pollView{
		ID:          poll.ID,
		Title:       poll.Title,
		Description: poll.Description,
		AccessMode:  poll.AccessMode,
		Options:     poll.Options,
		TotalVotes:  poll.TotalVotes(),
		Active:      poll.IsActive(now),
		CreatedAt:   poll.CreatedAt,
		ExpiresAt:   poll.ExpiresAt,
	}
}

type createPollResponse struct {
	pollView
	VoteCodes []string `json:"vote_codes"`
	AdminKey  string   `json:"admin_key"`
}

type resultsResponse struct {
	PollID     uuid.UUID           `json:"poll_id"`
	TotalVotes int64               `json:"total_votes"`
	Results    []domain.TallyEntry `json:"results"`
}

type embedPollResponse struct {
	Poll    pollView            `json:"poll"`
	Results []domain.TallyEntry `json:"results"`
	Theme   theme.Theme         `json:"theme"`
}

type voteResponse struct {
	PollID     uuid.UUID           `json:"poll_id"`
	TotalVotes int64               `json:"total_votes"`
	Results    []domain.TallyEntry `json:"results"`
}

func toVoteResponse(poll *domain.Poll) voteResponse {
	return voteResponse{
		PollID:     poll.ID,
		TotalVotes: poll.TotalVotes(),
		Results:    domain.ComputeTally(*poll),
	}
}

type codeLookupResponse struct {
	PollID  uuid.UUID `json:"poll_id"`
	VoteURL string    `json:"vote_url"`
	Used    bool      `json:"used"`
}
