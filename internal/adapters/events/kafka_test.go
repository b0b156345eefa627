package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
)

func TestVoteMessage_KeyedByPoll(t *testing.T) {
	event := domain.VoteCast{
		PollID:     uuid.New(),
		OptionID:   uuid.New(),
		AccessMode: domain.AccessCodeGated,
		Embedded:   true,
		CastAt:     time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	msg, err := voteMessage(event)
	require.NoError(t, err)
	assert.Equal(t, event.PollID.String(), string(msg.Key))

	var fields map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &fields))
	assert.ElementsMatch(t, []string{"poll_id", "option_id", "access_mode", "embedded", "cast_at"}, keys(fields))

	decoded, err := decodeVoteCast(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)
}

func TestDecodeVoteCast_RejectsGarbage(t *testing.T) {
	_, err := decodeVoteCast([]byte("not json"))
	assert.ErrorContains(t, err, "failed to decode vote event")
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
