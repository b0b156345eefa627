package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinDurationHours = 1
	MaxDurationHours = 168
	MinVoterCount    = 2
	MaxVoterCount    = 1000
)

type AccessMode string

const (
	AccessPublic    AccessMode = "public"
	AccessCodeGated AccessMode = "code_gated"
)

func (m AccessMode) Valid() bool {
	return m == AccessPublic || m == AccessCodeGated
}

type Poll struct {
	ID                  uuid.UUID    `json:"id"`
	Title               string       `json:"title"`
	Description         string       `json:"description,omitempty"`
	Options             []PollOption `json:"options"`
	AccessMode          AccessMode   `json:"access_mode"`
	VoteCodes           []string     `json:"vote_codes"`
	UsedCodes           []string     `json:"used_codes"`
	UsedVoterIdentities []string     `json:"used_voter_identities"`
	CreatedAt           time.Time    `json:"created_at"`
	ExpiresAt           time.Time    `json:"expires_at"`

	// Version is owned by the store and bumped on every successful Update.
	Version int64 `json:"version"`
}

type PollOption struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	VoteCount int64     `json:"vote_count"`
}

// PollSpec is what a creator asks for. VoterCount only matters for code-gated polls.
type PollSpec struct {
	Title         string
	Description   string
	Options       []string
	AccessMode    AccessMode
	DurationHours int
	VoterCount    int
}

func (s PollSpec) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPoll)
	}
	if !s.AccessMode.Valid() {
		return fmt.Errorf("%w: unknown access mode %q", ErrInvalidPoll, s.AccessMode)
	}
	if len(s.optionTexts()) < 2 {
		return fmt.Errorf("%w: at least two valid options are required", ErrInvalidPoll)
	}
	if s.DurationHours < MinDurationHours || s.DurationHours > MaxDurationHours {
		return fmt.Errorf("%w: duration must be between %d and %d hours", ErrInvalidPoll, MinDurationHours, MaxDurationHours)
	}
	if s.AccessMode == AccessCodeGated && (s.VoterCount < MinVoterCount || s.VoterCount > MaxVoterCount) {
		return fmt.Errorf("%w: voter count must be between %d and %d", ErrInvalidPoll, MinVoterCount, MaxVoterCount)
	}
	return nil
}

func (s PollSpec) optionTexts() []string {
	var texts []string
	for _, opt := range s.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		texts = append(texts, opt)
	}
	return texts
}

// NewPoll builds a fresh poll from spec. codes must hold exactly VoterCount
// distinct codes for a code-gated poll and be empty for a public one.
func NewPoll(spec PollSpec, codes []string, now time.Time) (*Poll, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	switch spec.AccessMode {
	case AccessCodeGated:
		if len(codes) != spec.VoterCount {
			return nil, fmt.Errorf("%w: expected %d vote codes, got %d", ErrInvalidPoll, spec.VoterCount, len(codes))
		}
	case AccessPublic:
		if len(codes) != 0 {
			return nil, fmt.Errorf("%w: public polls do not take vote codes", ErrInvalidPoll)
		}
	}

	poll := &Poll{
		ID:                  uuid.New(),
		Title:               strings.TrimSpace(spec.Title),
		Description:         strings.TrimSpace(spec.Description),
		AccessMode:          spec.AccessMode,
		VoteCodes:           slices.Clone(codes),
		UsedCodes:           []string{},
		UsedVoterIdentities: []string{},
		CreatedAt:           now,
		ExpiresAt:           now.Add(time.Duration(spec.DurationHours) * time.Hour),
		Version:             1,
	}
	if poll.VoteCodes == nil {
		poll.VoteCodes = []string{}
	}

	for _, text := range spec.optionTexts() {
		poll.Options = append(poll.Options, PollOption{
			ID:   uuid.New(),
			Text: text,
		})
	}

	return poll, nil
}

// IsActive reports whether the poll still accepts votes at now.
func (p Poll) IsActive(now time.Time) bool {
	return now.Before(p.ExpiresAt)
}

func (p Poll) TotalVotes() int64 {
	var total int64
	for _, opt := range p.Options {
		total += opt.VoteCount
	}
	return total
}

func (p Poll) optionIndex(id uuid.UUID) int {
	return slices.IndexFunc(p.Options, func(opt PollOption) bool {
		return opt.ID == id
	})
}

// Clone returns a copy that shares no backing arrays with p.
func (p Poll) Clone() Poll {
	c := p
	c.Options = slices.Clone(p.Options)
	c.VoteCodes = slices.Clone(p.VoteCodes)
	c.UsedCodes = slices.Clone(p.UsedCodes)
	c.UsedVoterIdentities = slices.Clone(p.UsedVoterIdentities)
	return c
}
