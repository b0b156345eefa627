package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
)

const (
	pollsPageSize = 10

	// maxPollsPage keeps the page offset within int.
	maxPollsPage = math.MaxInt/pollsPageSize + 1
)

type pollService struct {
	repo         ports.PollRepository
	tokens       ports.TokenGenerator
	adminKeySalt string
	opts         options
}

func NewPollService(repo ports.PollRepository, tokens ports.TokenGenerator, adminKeySalt string, opts ...Option) ports.PollService {
	return &pollService{
		repo:         repo,
		tokens:       tokens,
		adminKeySalt: adminKeySalt,
		opts:         buildOptions(opts),
	}
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*ports.CreatePollOutput, error) {
	spec := domain.PollSpec{
		Title:         input.Title,
		Description:   input.Description,
		Options:       input.Options,
		AccessMode:    input.AccessMode,
		DurationHours: input.DurationHours,
		VoterCount:    input.VoterCount,
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var codes []string
	if spec.AccessMode == domain.AccessCodeGated {
		var err error
		codes, err = domain.IssueVoteCodes(spec.VoterCount, s.tokens.NewToken)
		if err != nil {
			return nil, err
		}
	}

	poll, err := domain.NewPoll(spec, codes, s.opts.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, poll); err != nil {
		return nil, err
	}

	s.opts.logger.Info("poll created",
		"poll_id", poll.ID,
		"access_mode", poll.AccessMode,
		"options", len(poll.Options),
		"vote_codes", len(poll.VoteCodes),
		"expires_at", poll.ExpiresAt,
	)

	return &ports.CreatePollOutput{
		Poll:     poll,
		AdminKey: GenerateAdminKey(poll.ID, s.adminKeySalt),
	}, nil
}

func (s *pollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	pollID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidPollID
	}

	return s.repo.GetByID(ctx, pollID)
}

func (s *pollService) ListPolls(ctx context.Context, input ports.ListPollsInput) ([]*domain.Poll, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	if page > maxPollsPage {
		return nil, fmt.Errorf("%w: %d is past the last addressable page", domain.ErrInvalidPage, page)
	}
	offset := (page - 1) * pollsPageSize

	if input.Query != "" {
		return s.repo.Search(ctx, pollsPageSize, offset, input.Query)
	}
	return s.repo.List(ctx, pollsPageSize, offset)
}

func (s *pollService) Results(ctx context.Context, id string) ([]domain.TallyEntry, error) {
	poll, err := s.GetPoll(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.ComputeTally(*poll), nil
}

func (s *pollService) VoteCodes(ctx context.Context, id string, adminKey string) (*domain.Poll, []string, error) {
	pollID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil, domain.ErrInvalidPollID
	}
	if !ValidAdminKey(pollID, adminKey, s.adminKeySalt) {
		return nil, nil, domain.ErrInvalidAdminKey
	}

	poll, err := s.repo.GetByID(ctx, pollID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load vote codes: %w", err)
	}

	return poll, slices.Clone(poll.VoteCodes), nil
}

// FindByCode resolves a vote code to the poll that issued it. Used codes still
// resolve so the voter lands on the poll and sees why the vote is refused.
func (s *pollService) FindByCode(ctx context.Context, code string) (*domain.Poll, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrCodeNotFound
	}

	poll, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if poll.AccessMode != domain.AccessCodeGated {
		return nil, domain.ErrCodeNotFound
	}
	return poll, nil
}
