package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

type sequentialTokens struct {
	mu sync.Mutex
	n  int
}

func (g *sequentialTokens) NewToken() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("CODE%04d", g.n), nil
}

type failingTokens struct{}

func (failingTokens) NewToken() (string, error) {
	return "", errors.New("entropy source unavailable")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.VoteCast
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.VoteCast) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []domain.VoteCast {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.VoteCast(nil), p.events...)
}

// stallingPublisher blocks until the publish context is done.
type stallingPublisher struct{}

func (stallingPublisher) Publish(ctx context.Context, _ domain.VoteCast) error {
	<-ctx.Done()
	return ctx.Err()
}

func (stallingPublisher) Close() error { return nil }

type recordingMetrics struct {
	mu        sync.Mutex
	accepted  map[domain.AccessMode]int
	rejected  map[domain.Reason]int
	conflicts int
	observed  int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		accepted: make(map[domain.AccessMode]int),
		rejected: make(map[domain.Reason]int),
	}
}

func (m *recordingMetrics) VoteAccepted(mode domain.AccessMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accepted[mode]++
}

func (m *recordingMetrics) VoteRejected(reason domain.Reason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[reason]++
}

func (m *recordingMetrics) WriteConflict() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts++
}

func (m *recordingMetrics) ObserveEvaluation(float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observed++
}

// racingRepository lets another writer win the first n updates, the way a
// concurrent request would between our read and our write.
type racingRepository struct {
	ports.PollRepository
	mu     sync.Mutex
	losses int
}

func (r *racingRepository) Update(ctx context.Context, poll *domain.Poll) error {
	r.mu.Lock()
	lose := r.losses > 0
	if lose {
		r.losses--
	}
	r.mu.Unlock()

	if lose {
		rival, err := r.PollRepository.GetByID(ctx, poll.ID)
		if err != nil {
			return err
		}
		if err := r.PollRepository.Update(ctx, rival); err != nil {
			return err
		}
	}
	return r.PollRepository.Update(ctx, poll)
}

type brokenRepository struct {
	ports.PollRepository
}

func (brokenRepository) Update(context.Context, *domain.Poll) error {
	return errors.New("connection reset")
}

type sliceConsumer struct {
	mu     sync.Mutex
	events []domain.VoteCast
}

func (c *sliceConsumer) ReadEvent(ctx context.Context) (domain.VoteCast, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.VoteCast{}, err
	}
	if len(c.events) == 0 {
		return domain.VoteCast{}, io.EOF
	}
	event := c.events[0]
	c.events = c.events[1:]
	return event, nil
}

func (c *sliceConsumer) Close() error { return nil }
