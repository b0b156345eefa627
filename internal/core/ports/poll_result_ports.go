package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
)

type PollResultRepository interface {
	SummarizeTally(ctx context.Context, pollID uuid.UUID, tally []domain.TallyEntry) error
	GetPollResults(ctx context.Context, pollID uuid.UUID) ([]domain.PollResult, error)
}

type SummaryService interface {
	SummarizeAllPolls(ctx context.Context) error
}
