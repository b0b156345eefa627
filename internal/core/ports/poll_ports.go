package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
)

type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	GetAll(ctx context.Context) ([]*domain.Poll, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Poll, error)
	Search(ctx context.Context, limit, offset int, query string) ([]*domain.Poll, error)

	// FindByCode returns the poll that issued code, used or not, or
	// domain.ErrCodeNotFound.
	FindByCode(ctx context.Context, code string) (*domain.Poll, error)

	// Update replaces the poll's mutable fields only if the stored version
	// still equals poll.Version, and bumps poll.Version on success. A newer
	// stored version yields domain.ErrStaleWrite.
	Update(ctx context.Context, poll *domain.Poll) error
}

// TokenGenerator produces short, statistically unique vote codes.
type TokenGenerator interface {
	NewToken() (string, error)
}

type CreatePollInput struct {
	Title         string
	Description   string
	Options       []string
	AccessMode    domain.AccessMode
	DurationHours int
	VoterCount    int
}

type CreatePollOutput struct {
	Poll     *domain.Poll
	AdminKey string
}

type ListPollsInput struct {
	Page  int
	Query string
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*CreatePollOutput, error)
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
	ListPolls(ctx context.Context, input ListPollsInput) ([]*domain.Poll, error)
	Results(ctx context.Context, id string) ([]domain.TallyEntry, error)
	VoteCodes(ctx context.Context, id string, adminKey string) (*domain.Poll, []string, error)
	FindByCode(ctx context.Context, code string) (*domain.Poll, error)
}
