package domain

import "errors"

var (
	ErrPollNotFound  = errors.New("poll not found")
	ErrInvalidPollID = errors.New("invalid poll id")
	ErrInvalidPoll   = errors.New("invalid poll")
	ErrInvalidPage   = errors.New("invalid page")
	ErrCodeNotFound  = errors.New("vote code not found")
	ErrInternal      = errors.New("internal server error")

	// ErrMalformedAttempt means the caller built a credential of the wrong kind
	// for the poll's access mode. It is a programming error, never a user outcome.
	ErrMalformedAttempt = errors.New("malformed vote attempt")

	ErrStaleWrite          = errors.New("poll was modified since it was read")
	ErrConcurrentUpdate    = errors.New("poll is being updated concurrently, try again")
	ErrCodeSpaceExhausted  = errors.New("could not issue enough distinct vote codes")
	ErrInvalidAdminKey     = errors.New("invalid admin key")
	ErrEmbedVotingDisabled = errors.New("voting from embedded widgets is disabled")
)

// Reason identifies why an admissible-looking vote attempt was turned down.
type Reason string

const (
	ReasonPollClosed      Reason = "poll_closed"
	ReasonUnknownOption   Reason = "unknown_option"
	ReasonInvalidCode     Reason = "invalid_code"
	ReasonCodeAlreadyUsed Reason = "code_already_used"
	ReasonAlreadyVoted    Reason = "already_voted"
)

// Rejection is the ordinary outcome of a refused vote. Compare against the
// Err* values with errors.Is, or pull the Reason out with errors.As.
type Rejection struct {
	Reason  Reason
	message string
}

func (r *Rejection) Error() string {
	return r.message
}

var (
	ErrPollClosed      = &Rejection{Reason: ReasonPollClosed, message: "poll is closed"}
	ErrUnknownOption   = &Rejection{Reason: ReasonUnknownOption, message: "invalid option for this poll"}
	ErrInvalidCode     = &Rejection{Reason: ReasonInvalidCode, message: "vote code is not valid"}
	ErrCodeAlreadyUsed = &Rejection{Reason: ReasonCodeAlreadyUsed, message: "vote code has already been used"}
	ErrAlreadyVoted    = &Rejection{Reason: ReasonAlreadyVoted, message: "voter has already voted"}
)

// RejectionReason reports the reason carried by err, if err is a Rejection.
func RejectionReason(err error) (Reason, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}
