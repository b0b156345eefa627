package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

type CredentialKind int

const (
	CredentialCode CredentialKind = iota + 1
	CredentialVoterIdentity
)

func (k CredentialKind) String() string {
	switch k {
	case CredentialCode:
		return "code"
	case CredentialVoterIdentity:
		return "voter_identity"
	default:
		return fmt.Sprintf("credential_kind(%d)", int(k))
	}
}

type Credential struct {
	Kind  CredentialKind
	Value string
}

func Code(code string) Credential {
	return Credential{Kind: CredentialCode, Value: code}
}

func VoterIdentity(identity string) Credential {
	return Credential{Kind: CredentialVoterIdentity, Value: identity}
}

type VoteAttempt struct {
	OptionID   uuid.UUID
	Credential Credential
}

// EvaluateVote decides whether attempt may be counted against poll at now.
//
// Checks run in a fixed order and the first failure wins: expiry, option,
// then the credential rules of the poll's access mode. On success the returned
// poll has the chosen option's count raised by one and the credential recorded
// as consumed; nothing else changes. poll itself is never modified.
func EvaluateVote(poll Poll, attempt VoteAttempt, now time.Time) (Poll, error) {
	if !poll.IsActive(now) {
		return Poll{}, ErrPollClosed
	}

	idx := poll.optionIndex(attempt.OptionID)
	if idx < 0 {
		return Poll{}, ErrUnknownOption
	}

	cred := attempt.Credential
	switch poll.AccessMode {
	case AccessCodeGated:
		if cred.Kind != CredentialCode {
			return Poll{}, fmt.Errorf("%w: code-gated poll given a %s", ErrMalformedAttempt, cred.Kind)
		}
		if !slices.Contains(poll.VoteCodes, cred.Value) {
			return Poll{}, ErrInvalidCode
		}
		if slices.Contains(poll.UsedCodes, cred.Value) {
			return Poll{}, ErrCodeAlreadyUsed
		}

	case AccessPublic:
		if cred.Kind != CredentialVoterIdentity || cred.Value == "" {
			return Poll{}, fmt.Errorf("%w: public poll needs a voter identity", ErrMalformedAttempt)
		}
		if slices.Contains(poll.UsedVoterIdentities, cred.Value) {
			return Poll{}, ErrAlreadyVoted
		}

	default:
		return Poll{}, fmt.Errorf("%w: unknown access mode %q", ErrMalformedAttempt, poll.AccessMode)
	}

	next := poll.Clone()
	next.Options[idx].VoteCount++
	if poll.AccessMode == AccessCodeGated {
		next.UsedCodes = append(next.UsedCodes, cred.Value)
	} else {
		next.UsedVoterIdentities = append(next.UsedVoterIdentities, cred.Value)
	}

	return next, nil
}

// EvaluateOpenVote counts a vote with no credential at all. Only the expiry
// and option checks apply and nothing is recorded as consumed, so the same
// caller can vote again. It backs the embed widget's explicit "open" policy.
func EvaluateOpenVote(poll Poll, optionID uuid.UUID, now time.Time) (Poll, error) {
	if !poll.IsActive(now) {
		return Poll{}, ErrPollClosed
	}

	idx := poll.optionIndex(optionID)
	if idx < 0 {
		return Poll{}, ErrUnknownOption
	}

	next := poll.Clone()
	next.Options[idx].VoteCount++
	return next, nil
}
