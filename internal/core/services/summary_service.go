package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
)

type summaryService struct {
	pollRepo       ports.PollRepository
	pollResultRepo ports.PollResultRepository
}

func NewSummaryService(pollRepo ports.PollRepository, pollResultRepo ports.PollResultRepository) ports.SummaryService {
	return &summaryService{
		pollRepo:       pollRepo,
		pollResultRepo: pollResultRepo,
	}
}

// SummarizeAllPolls snapshots the tally of every poll into the results table.
// Polls are processed concurrently and the first failure is reported.
func (s *summaryService) SummarizeAllPolls(ctx context.Context) error {
	polls, err := s.pollRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch all polls: %w", err)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(polls))

	for _, poll := range polls {
		wg.Add(1)
		go func(p *domain.Poll) {
			defer wg.Done()
			if err := s.pollResultRepo.SummarizeTally(ctx, p.ID, domain.ComputeTally(*p)); err != nil {
				errChan <- fmt.Errorf("failed to summarize poll %s: %w", p.ID, err)
			}
		}(poll)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	return nil
}
