// Package redis stores each poll as a JSON document and relies on WATCH to
// refuse updates computed from an outdated read.
package redis

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
)

const pollIndexKey = "polls:index"

func pollKey(id uuid.UUID) string {
	return fmt.Sprintf("poll:%s", id)
}

// codeKey points a vote code at the poll that issued it. The first poll to
// claim a code keeps it.
func codeKey(code string) string {
	return fmt.Sprintf("code:%s", code)
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis URL: %w", err)
	}

	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	return c, nil
}

type pollRepository struct {
	client *redis.Client
}

func NewPollRepository(client *redis.Client) ports.PollRepository {
	return &pollRepository{
		client: client,
	}
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	if poll.Version == 0 {
		poll.Version = 1
	}
	payload, err := json.Marshal(poll)
	if err != nil {
		return fmt.Errorf("failed to encode poll: %w", err)
	}

	var created *redis.BoolCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.SetNX(ctx, pollKey(poll.ID), payload, 0)
		pipe.ZAddNX(ctx, pollIndexKey, redis.Z{
			Score:  float64(poll.CreatedAt.UnixMilli()),
			Member: poll.ID.String(),
		})
		for _, code := range poll.VoteCodes {
			pipe.SetNX(ctx, codeKey(code), poll.ID.String(), 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}
	if !created.Val() {
		return fmt.Errorf("failed to insert poll: duplicate id %s", poll.ID)
	}

	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	raw, err := r.client.Get(ctx, pollKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrPollNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	return decodePoll(raw)
}

func (r *pollRepository) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	return r.loadIndexed(ctx)
}

func (r *pollRepository) List(ctx context.Context, limit, offset int) ([]*domain.Poll, error) {
	polls, err := r.loadIndexed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	return page(polls, limit, offset), nil
}

func (r *pollRepository) Search(ctx context.Context, limit, offset int, query string) ([]*domain.Poll, error) {
	polls, err := r.loadIndexed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search polls: %w", err)
	}

	q := strings.ToLower(query)
	polls = slices.DeleteFunc(polls, func(p *domain.Poll) bool {
		return !strings.Contains(strings.ToLower(p.Title), q)
	})
	return page(polls, limit, offset), nil
}

func (r *pollRepository) FindByCode(ctx context.Context, code string) (*domain.Poll, error) {
	raw, err := r.client.Get(ctx, codeKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find poll by code: %w", err)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to find poll by code: %w", err)
	}

	poll, err := r.GetByID(ctx, id)
	if errors.Is(err, domain.ErrPollNotFound) {
		return nil, domain.ErrCodeNotFound
	}
	return poll, err
}

func (r *pollRepository) Update(ctx context.Context, poll *domain.Poll) error {
	key := pollKey(poll.ID)

	next := poll.Clone()
	next.Version++
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode poll: %w", err)
	}

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrPollNotFound
		}
		if err != nil {
			return err
		}

		stored, err := decodePoll(raw)
		if err != nil {
			return err
		}
		if stored.Version != poll.Version {
			return domain.ErrStaleWrite
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}

	err = r.client.Watch(ctx, txf, key)
	switch {
	case err == nil:
		poll.Version = next.Version
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return domain.ErrStaleWrite
	case errors.Is(err, domain.ErrPollNotFound), errors.Is(err, domain.ErrStaleWrite):
		return err
	default:
		return fmt.Errorf("failed to update poll: %w", err)
	}
}

// loadIndexed returns every indexed poll ordered by total votes, then newest
// first, matching the ordering of the SQL store.
func (r *pollRepository) loadIndexed(ctx context.Context) ([]*domain.Poll, error) {
	ids, err := r.client.ZRevRange(ctx, pollIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read poll index: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Poll{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "poll:" + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load polls: %w", err)
	}

	polls := make([]*domain.Poll, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		poll, err := decodePoll([]byte(raw))
		if err != nil {
			return nil, err
		}
		polls = append(polls, poll)
	}

	slices.SortStableFunc(polls, func(a, b *domain.Poll) int {
		return cmp.Compare(b.TotalVotes(), a.TotalVotes())
	})
	return polls, nil
}

func decodePoll(raw []byte) (*domain.Poll, error) {
	var poll domain.Poll
	if err := json.Unmarshal(raw, &poll); err != nil {
		return nil, fmt.Errorf("failed to decode poll: %w", err)
	}
	return &poll, nil
}

func page(polls []*domain.Poll, limit, offset int) []*domain.Poll {
	if offset < 0 || offset >= len(polls) {
		return []*domain.Poll{}
	}
	end := offset + min(limit, len(polls)-offset)
	return polls[offset:end]
}
