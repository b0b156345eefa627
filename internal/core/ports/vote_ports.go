package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
)

type VoteInput struct {
	PollID   uuid.UUID
	OptionID uuid.UUID
	Code     string
	VoterIP  string
}

type VoteService interface {
	Vote(ctx context.Context, input VoteInput) (*domain.Poll, error)
	EmbedVote(ctx context.Context, input VoteInput) (*domain.Poll, error)
}

type VoteEventPublisher interface {
	Publish(ctx context.Context, event domain.VoteCast) error
	Close() error
}

type VoteEventConsumer interface {
	ReadEvent(ctx context.Context) (domain.VoteCast, error)
	Close() error
}

type AdmissionMetrics interface {
	VoteAccepted(mode domain.AccessMode)
	VoteRejected(reason domain.Reason)
	WriteConflict()
	ObserveEvaluation(seconds float64)
}
