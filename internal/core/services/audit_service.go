package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
)

// AuditService keeps a running per-option count of the vote events it
// consumes, independent from the poll store, and logs it periodically.
type AuditService struct {
	consumer ports.VoteEventConsumer
	interval time.Duration
	logger   *slog.Logger

	mu       sync.RWMutex
	counts   map[uuid.UUID]map[uuid.UUID]int64
	embedded int64
}

func NewAuditService(consumer ports.VoteEventConsumer, interval time.Duration, opts ...Option) *AuditService {
	o := buildOptions(opts)
	return &AuditService{
		consumer: consumer,
		interval: interval,
		logger:   o.logger,
		counts:   make(map[uuid.UUID]map[uuid.UUID]int64),
	}
}

// Run consumes events until ctx is cancelled or the consumer is exhausted.
func (a *AuditService) Run(ctx context.Context) error {
	events := make(chan domain.VoteCast)
	go a.read(ctx, events)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.report()
			return nil
		case <-ticker.C:
			a.report()
		case event, ok := <-events:
			if !ok {
				a.report()
				return nil
			}
			a.Record(event)
		}
	}
}

func (a *AuditService) read(ctx context.Context, events chan<- domain.VoteCast) {
	defer close(events)
	for {
		event, err := a.consumer.ReadEvent(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			a.logger.Error("failed to read vote event", "error", err)
			continue
		}
		select {
		case events <- event:
		case <-ctx.Done():
			return
		}
	}
}

func (a *AuditService) Record(event domain.VoteCast) {
	a.mu.Lock()
	defer a.mu.Unlock()

	options, ok := a.counts[event.PollID]
	if !ok {
		options = make(map[uuid.UUID]int64)
		a.counts[event.PollID] = options
	}
	options[event.OptionID]++
	if event.Embedded {
		a.embedded++
	}
}

// Counts returns a copy of the option counts seen so far for one poll.
func (a *AuditService) Counts(pollID uuid.UUID) map[uuid.UUID]int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return maps.Clone(a.counts[pollID])
}

func (a *AuditService) report() {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for pollID, options := range a.counts {
		var total int64
		for _, n := range options {
			total += n
		}
		a.logger.Info("vote audit", "poll_id", pollID, "options", len(options), "votes", total)
	}
	a.logger.Info("vote audit totals", "polls", len(a.counts), "embedded_votes", a.embedded)
}
