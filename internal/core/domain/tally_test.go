package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTally(t *testing.T) {
	poll := newTestPoll(AccessPublic)
	poll.Options = append(poll.Options, PollOption{ID: uuid.New(), Text: "C"})
	poll.Options[0].VoteCount = 1
	poll.Options[1].VoteCount = 0
	poll.Options[2].VoteCount = 2

	tally := ComputeTally(poll)
	require.Len(t, tally, 3)

	for i, entry := range tally {
		assert.Equal(t, poll.Options[i].ID, entry.OptionID, "tally keeps option order")
		assert.Equal(t, poll.Options[i].Text, entry.Text)
	}
	assert.InDelta(t, 33.333, tally[0].Percentage, 0.001)
	assert.Equal(t, 0.0, tally[1].Percentage)
	assert.InDelta(t, 66.667, tally[2].Percentage, 0.001)

	var sum float64
	for _, entry := range tally {
		sum += entry.Percentage
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestComputeTally_NoVotes(t *testing.T) {
	tally := ComputeTally(newTestPoll(AccessCodeGated, "AAAA1111"))
	require.Len(t, tally, 2)
	for _, entry := range tally {
		assert.Zero(t, entry.VoteCount)
		assert.Zero(t, entry.Percentage)
	}
}

func TestComputeTally_Idempotent(t *testing.T) {
	poll := newTestPoll(AccessPublic)
	poll.Options[0].VoteCount = 7
	poll.Options[1].VoteCount = 3

	assert.Equal(t, ComputeTally(poll), ComputeTally(poll))
	assert.Equal(t, int64(7), poll.Options[0].VoteCount)
}
