// Package memory keeps polls in process memory. It backs tests and
// STORE=memory local runs, and honours the same version check as the
// durable stores.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
)

type PollRepository struct {
	mu    sync.RWMutex
	polls map[uuid.UUID]domain.Poll
}

var _ ports.PollRepository = (*PollRepository)(nil)

func NewPollRepository() *PollRepository {
	return &PollRepository{
		polls: make(map[uuid.UUID]domain.Poll),
	}
}

func (r *PollRepository) Save(_ context.Context, poll *domain.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.polls[poll.ID]; exists {
		return fmt.Errorf("failed to insert poll: duplicate id %s", poll.ID)
	}
	if poll.Version == 0 {
		poll.Version = 1
	}
	r.polls[poll.ID] = poll.Clone()
	return nil
}

func (r *PollRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	poll, ok := r.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	clone := poll.Clone()
	return &clone, nil
}

func (r *PollRepository) GetAll(_ context.Context) ([]*domain.Poll, error) {
	return r.collect(func(domain.Poll) bool { return true }), nil
}

func (r *PollRepository) List(_ context.Context, limit, offset int) ([]*domain.Poll, error) {
	return page(r.collect(func(domain.Poll) bool { return true }), limit, offset), nil
}

func (r *PollRepository) Search(_ context.Context, limit, offset int, query string) ([]*domain.Poll, error) {
	q := strings.ToLower(query)
	matches := r.collect(func(p domain.Poll) bool {
		return strings.Contains(strings.ToLower(p.Title), q)
	})
	return page(matches, limit, offset), nil
}

func (r *PollRepository) FindByCode(_ context.Context, code string) (*domain.Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *domain.Poll
	for _, p := range r.polls {
		if !slices.Contains(p.VoteCodes, code) {
			continue
		}
		if found == nil || p.CreatedAt.Before(found.CreatedAt) {
			clone := p.Clone()
			found = &clone
		}
	}
	if found == nil {
		return nil, domain.ErrCodeNotFound
	}
	return found, nil
}

func (r *PollRepository) Update(_ context.Context, poll *domain.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.polls[poll.ID]
	if !ok {
		return domain.ErrPollNotFound
	}
	if stored.Version != poll.Version {
		return domain.ErrStaleWrite
	}

	poll.Version++
	r.polls[poll.ID] = poll.Clone()
	return nil
}

// collect returns matching polls ordered by total votes, then newest first.
func (r *PollRepository) collect(match func(domain.Poll) bool) []*domain.Poll {
	r.mu.RLock()
	defer r.mu.RUnlock()

	polls := make([]*domain.Poll, 0, len(r.polls))
	for _, p := range r.polls {
		if !match(p) {
			continue
		}
		clone := p.Clone()
		polls = append(polls, &clone)
	}

	slices.SortFunc(polls, func(a, b *domain.Poll) int {
		if c := cmp.Compare(b.TotalVotes(), a.TotalVotes()); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return polls
}

func page(polls []*domain.Poll, limit, offset int) []*domain.Poll {
	if offset < 0 || offset >= len(polls) {
		return []*domain.Poll{}
	}
	end := offset + min(limit, len(polls)-offset)
	return polls[offset:end]
}
