package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(tokens ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(tokens) {
			return tokens[len(tokens)-1], nil
		}
		tok := tokens[i]
		i++
		return tok, nil
	}
}

func TestIssueVoteCodes(t *testing.T) {
	n := 0
	codes, err := IssueVoteCodes(5, func() (string, error) {
		n++
		return fmt.Sprintf("CODE%04d", n), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"CODE0001", "CODE0002", "CODE0003", "CODE0004", "CODE0005"}, codes)
}

func TestIssueVoteCodes_SkipsCollisions(t *testing.T) {
	codes, err := IssueVoteCodes(3, sequence("a", "a", "", "b", "a", "c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, codes)
}

func TestIssueVoteCodes_Zero(t *testing.T) {
	codes, err := IssueVoteCodes(0, sequence("a"))
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestIssueVoteCodes_ExhaustedSpace(t *testing.T) {
	_, err := IssueVoteCodes(3, sequence("same"))
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
}

func TestIssueVoteCodes_GeneratorError(t *testing.T) {
	boom := errors.New("entropy source unavailable")
	_, err := IssueVoteCodes(2, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}
