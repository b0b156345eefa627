package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/enquesta/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
)

const testSalt = "test-admin-salt"

func newTestPollService(repo ports.PollRepository) ports.PollService {
	return NewPollService(repo, &sequentialTokens{}, testSalt, WithClock(fixedClock()))
}

func TestPollService_CreateCodeGated(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPollRepository()
	svc := newTestPollService(repo)

	out, err := svc.Create(ctx, ports.CreatePollInput{
		Title:         "  Team offsite  ",
		Options:       []string{"Lisbon", "Porto", " "},
		AccessMode:    domain.AccessCodeGated,
		DurationHours: 48,
		VoterCount:    3,
	})
	require.NoError(t, err)

	poll := out.Poll
	assert.Equal(t, "Team offsite", poll.Title)
	assert.Len(t, poll.Options, 2)
	assert.Equal(t, []string{"CODE0001", "CODE0002", "CODE0003"}, poll.VoteCodes)
	assert.Equal(t, testNow.Add(48*time.Hour), poll.ExpiresAt)
	assert.Equal(t, GenerateAdminKey(poll.ID, testSalt), out.AdminKey)

	stored, err := repo.GetByID(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, poll.VoteCodes, stored.VoteCodes)
}

func TestPollService_CreatePublicIssuesNoCodes(t *testing.T) {
	svc := newTestPollService(memory.NewPollRepository())

	out, err := svc.Create(context.Background(), ports.CreatePollInput{
		Title:         "Tabs or spaces",
		Options:       []string{"Tabs", "Spaces"},
		AccessMode:    domain.AccessPublic,
		DurationHours: 1,
	})
	require.NoError(t, err)
	assert.Empty(t, out.Poll.VoteCodes)
}

func TestPollService_CreateRejectsInvalidInput(t *testing.T) {
	svc := newTestPollService(memory.NewPollRepository())

	tests := []struct {
		name  string
		input ports.CreatePollInput
	}{
		{"missing title", ports.CreatePollInput{Options: []string{"a", "b"}, AccessMode: domain.AccessPublic, DurationHours: 1}},
		{"single option", ports.CreatePollInput{Title: "t", Options: []string{"a"}, AccessMode: domain.AccessPublic, DurationHours: 1}},
		{"duration too long", ports.CreatePollInput{Title: "t", Options: []string{"a", "b"}, AccessMode: domain.AccessPublic, DurationHours: 169}},
		{"too few voters", ports.CreatePollInput{Title: "t", Options: []string{"a", "b"}, AccessMode: domain.AccessCodeGated, DurationHours: 1, VoterCount: 1}},
		{"unknown mode", ports.CreatePollInput{Title: "t", Options: []string{"a", "b"}, AccessMode: "secret", DurationHours: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrInvalidPoll)
		})
	}
}

func TestPollService_CreateFailsWhenTokensFail(t *testing.T) {
	svc := NewPollService(memory.NewPollRepository(), failingTokens{}, testSalt)

	_, err := svc.Create(context.Background(), ports.CreatePollInput{
		Title:         "t",
		Options:       []string{"a", "b"},
		AccessMode:    domain.AccessCodeGated,
		DurationHours: 1,
		VoterCount:    2,
	})
	assert.ErrorContains(t, err, "entropy source unavailable")
}

func TestPollService_GetPoll(t *testing.T) {
	ctx := context.Background()
	svc := newTestPollService(memory.NewPollRepository())

	_, err := svc.GetPoll(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidPollID)

	_, err = svc.GetPoll(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestPollService_ListPollsPaginates(t *testing.T) {
	ctx := context.Background()
	svc := newTestPollService(memory.NewPollRepository())

	for i := range 12 {
		title := "Poll"
		if i%4 == 0 {
			title = "Lunch poll"
		}
		_, err := svc.Create(ctx, ports.CreatePollInput{
			Title:         title,
			Options:       []string{"a", "b"},
			AccessMode:    domain.AccessPublic,
			DurationHours: 1,
		})
		require.NoError(t, err)
	}

	first, err := svc.ListPolls(ctx, ports.ListPollsInput{Page: 0})
	require.NoError(t, err)
	assert.Len(t, first, 10)

	second, err := svc.ListPolls(ctx, ports.ListPollsInput{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second, 2)

	lunch, err := svc.ListPolls(ctx, ports.ListPollsInput{Page: 1, Query: "lunch"})
	require.NoError(t, err)
	assert.Len(t, lunch, 3)
}

func TestPollService_ListPollsRejectsUnaddressablePage(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPollRepository()
	svc := newTestPollService(repo)
	seedPoll(t, repo, domain.AccessPublic)

	assert.NotPanics(t, func() {
		_, err := svc.ListPolls(ctx, ports.ListPollsInput{Page: 922337203685477582})
		assert.ErrorIs(t, err, domain.ErrInvalidPage)
	})

	last, err := svc.ListPolls(ctx, ports.ListPollsInput{Page: maxPollsPage})
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestPollService_FindByCode(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPollRepository()
	svc := newTestPollService(repo)

	out, err := svc.Create(ctx, ports.CreatePollInput{
		Title:         "Board election",
		Options:       []string{"Ana", "Bo"},
		AccessMode:    domain.AccessCodeGated,
		DurationHours: 24,
		VoterCount:    3,
	})
	require.NoError(t, err)
	code := out.Poll.VoteCodes[1]

	found, err := svc.FindByCode(ctx, "  "+code+" ")
	require.NoError(t, err)
	assert.Equal(t, out.Poll.ID, found.ID)

	_, err = svc.FindByCode(ctx, "NOPE0000")
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)

	_, err = svc.FindByCode(ctx, "")
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestPollService_FindByCodeResolvesUsedCode(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPollRepository()
	svc := newTestPollService(repo)
	votes := NewVoteService(repo, nil, nil, VoteServiceConfig{}, WithClock(fixedClock()))
	poll := seedPoll(t, repo, domain.AccessCodeGated, "USED0001", "FREE0002")

	_, err := votes.Vote(ctx, ports.VoteInput{PollID: poll.ID, OptionID: poll.Options[0].ID, Code: "USED0001"})
	require.NoError(t, err)

	found, err := svc.FindByCode(ctx, "USED0001")
	require.NoError(t, err)
	assert.Equal(t, poll.ID, found.ID)
	assert.Contains(t, found.UsedCodes, "USED0001")
}

func TestPollService_Results(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPollRepository()
	svc := newTestPollService(repo)

	out, err := svc.Create(ctx, ports.CreatePollInput{
		Title:         "t",
		Options:       []string{"a", "b"},
		AccessMode:    domain.AccessPublic,
		DurationHours: 1,
	})
	require.NoError(t, err)

	tally, err := svc.Results(ctx, out.Poll.ID.String())
	require.NoError(t, err)
	require.Len(t, tally, 2)
	assert.Zero(t, tally[0].Percentage)
	assert.Zero(t, tally[1].Percentage)
}

func TestPollService_VoteCodesRequiresAdminKey(t *testing.T) {
	ctx := context.Background()
	svc := newTestPollService(memory.NewPollRepository())

	out, err := svc.Create(ctx, ports.CreatePollInput{
		Title:         "t",
		Options:       []string{"a", "b"},
		AccessMode:    domain.AccessCodeGated,
		DurationHours: 1,
		VoterCount:    2,
	})
	require.NoError(t, err)
	id := out.Poll.ID.String()

	_, _, err = svc.VoteCodes(ctx, id, "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidAdminKey)

	_, _, err = svc.VoteCodes(ctx, "nope", out.AdminKey)
	assert.ErrorIs(t, err, domain.ErrInvalidPollID)

	poll, codes, err := svc.VoteCodes(ctx, id, out.AdminKey)
	require.NoError(t, err)
	assert.Equal(t, out.Poll.ID, poll.ID)
	assert.Equal(t, []string{"CODE0001", "CODE0002"}, codes)
}

func TestAdminKeyIsBoundToPollAndSalt(t *testing.T) {
	id := uuid.New()
	key := GenerateAdminKey(id, "salt")

	assert.True(t, ValidAdminKey(id, key, "salt"))
	assert.False(t, ValidAdminKey(id, key, "other-salt"))
	assert.False(t, ValidAdminKey(uuid.New(), key, "salt"))
}

func TestHashIdentity(t *testing.T) {
	assert.Equal(t, "10.0.0.1", HashIdentity("10.0.0.1", ""))

	hashed := HashIdentity("10.0.0.1", "pepper")
	assert.NotEqual(t, "10.0.0.1", hashed)
	assert.Len(t, hashed, 32)
	assert.Equal(t, hashed, HashIdentity("10.0.0.1", "pepper"))
	assert.NotEqual(t, hashed, HashIdentity("10.0.0.2", "pepper"))
}
