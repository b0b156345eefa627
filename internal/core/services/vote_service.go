package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
)

type EmbedPolicy string

const (
	EmbedPolicyDisabled     EmbedPolicy = "disabled"
	EmbedPolicyCredentialed EmbedPolicy = "credentialed"
	EmbedPolicyOpen         EmbedPolicy = "open"
)

func ParseEmbedPolicy(s string) (EmbedPolicy, error) {
	switch p := EmbedPolicy(s); p {
	case EmbedPolicyDisabled, EmbedPolicyCredentialed, EmbedPolicyOpen:
		return p, nil
	case "":
		return EmbedPolicyCredentialed, nil
	default:
		return "", fmt.Errorf("unknown embed vote policy %q", s)
	}
}

const (
	DefaultVoteMaxAttempts    = 3
	DefaultVotePublishTimeout = 2 * time.Second
)

type VoteServiceConfig struct {
	// MaxAttempts bounds the read-evaluate-write cycles spent on one vote
	// when other writers keep winning the race.
	MaxAttempts  int
	IdentitySalt string
	EmbedPolicy  EmbedPolicy

	// PublishTimeout caps how long an accepted vote waits on the event
	// publisher before its response is written.
	PublishTimeout time.Duration
}

type evaluateFunc func(poll domain.Poll, now time.Time) (domain.Poll, error)

type voteService struct {
	pollRepo  ports.PollRepository
	publisher ports.VoteEventPublisher
	metrics   ports.AdmissionMetrics
	cfg       VoteServiceConfig
	opts      options
}

// NewVoteService builds the admission service. publisher and metrics may be
// nil, in which case events are dropped and nothing is measured.
func NewVoteService(pollRepo ports.PollRepository, publisher ports.VoteEventPublisher, metrics ports.AdmissionMetrics, cfg VoteServiceConfig, opts ...Option) ports.VoteService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultVoteMaxAttempts
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = DefaultVotePublishTimeout
	}
	if cfg.EmbedPolicy == "" {
		cfg.EmbedPolicy = EmbedPolicyCredentialed
	}
	return &voteService{
		pollRepo:  pollRepo,
		publisher: publisher,
		metrics:   metrics,
		cfg:       cfg,
		opts:      buildOptions(opts),
	}
}

func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) (*domain.Poll, error) {
	return s.admit(ctx, input, false, s.credentialed(input))
}

func (s *voteService) EmbedVote(ctx context.Context, input ports.VoteInput) (*domain.Poll, error) {
	switch s.cfg.EmbedPolicy {
	case EmbedPolicyDisabled:
		return nil, domain.ErrEmbedVotingDisabled
	case EmbedPolicyOpen:
		return s.admit(ctx, input, true, func(poll domain.Poll, now time.Time) (domain.Poll, error) {
			return domain.EvaluateOpenVote(poll, input.OptionID, now)
		})
	default:
		return s.admit(ctx, input, true, s.credentialed(input))
	}
}

func (s *voteService) credentialed(input ports.VoteInput) evaluateFunc {
	return func(poll domain.Poll, now time.Time) (domain.Poll, error) {
		attempt := domain.VoteAttempt{OptionID: input.OptionID}
		if poll.AccessMode == domain.AccessCodeGated {
			attempt.Credential = domain.Code(input.Code)
		} else {
			attempt.Credential = domain.VoterIdentity(HashIdentity(input.VoterIP, s.cfg.IdentitySalt))
		}
		return domain.EvaluateVote(poll, attempt, now)
	}
}

func (s *voteService) admit(ctx context.Context, input ports.VoteInput, embedded bool, evaluate evaluateFunc) (*domain.Poll, error) {
	for attempt := 1; ; attempt++ {
		poll, err := s.pollRepo.GetByID(ctx, input.PollID)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		next, err := evaluate(*poll, s.opts.now())
		s.metrics.ObserveEvaluation(time.Since(start).Seconds())
		if err != nil {
			if reason, ok := domain.RejectionReason(err); ok {
				s.metrics.VoteRejected(reason)
			}
			return nil, err
		}

		err = s.pollRepo.Update(ctx, &next)
		if err == nil {
			s.metrics.VoteAccepted(next.AccessMode)
			s.publish(ctx, next, input.OptionID, embedded)
			return &next, nil
		}
		if !errors.Is(err, domain.ErrStaleWrite) {
			return nil, fmt.Errorf("failed to persist vote: %w", err)
		}

		s.metrics.WriteConflict()
		s.opts.logger.Warn("stale poll write",
			"poll_id", input.PollID,
			"attempt", attempt,
			"max_attempts", s.cfg.MaxAttempts,
		)
		if attempt >= s.cfg.MaxAttempts {
			return nil, domain.ErrConcurrentUpdate
		}
	}
}

func (s *voteService) publish(ctx context.Context, poll domain.Poll, optionID uuid.UUID, embedded bool) {
	event := domain.VoteCast{
		PollID:     poll.ID,
		OptionID:   optionID,
		AccessMode: poll.AccessMode,
		Embedded:   embedded,
		CastAt:     s.opts.now(),
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PublishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.opts.logger.Warn("failed to publish vote event", "poll_id", poll.ID, "error", err)
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.VoteCast) error { return nil }
func (noopPublisher) Close() error { return nil }

type noopMetrics struct{}

func (noopMetrics) VoteAccepted(domain.AccessMode) {}
func (noopMetrics) VoteRejected(domain.Reason) {}
func (noopMetrics) WriteConflict() {}
func (noopMetrics) ObserveEvaluation(float64) {}
