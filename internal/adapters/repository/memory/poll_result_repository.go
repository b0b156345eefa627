package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
)

type PollResultRepository struct {
	mu      sync.RWMutex
	results map[uuid.UUID][]domain.PollResult
	now     func() time.Time
}

var _ ports.PollResultRepository = (*PollResultRepository)(nil)

func NewPollResultRepository() *PollResultRepository {
	return &PollResultRepository{
		results: make(map[uuid.UUID][]domain.PollResult),
		now:     time.Now,
	}
}

func (r *PollResultRepository) SummarizeTally(_ context.Context, pollID uuid.UUID, tally []domain.TallyEntry) error {
	now := r.now()
	results := make([]domain.PollResult, 0, len(tally))
	for _, entry := range tally {
		results = append(results, domain.PollResult{
			PollID:        pollID,
			OptionID:      entry.OptionID,
			VoteCount:     entry.VoteCount,
			Percentage:    entry.Percentage,
			LastUpdatedAt: now,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[pollID] = results
	return nil
}

func (r *PollResultRepository) GetPollResults(_ context.Context, pollID uuid.UUID) ([]domain.PollResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.results[pollID]), nil
}
