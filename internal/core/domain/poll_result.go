package domain

import (
	"time"

	"github.com/google/uuid"
)

// PollResult is one row of the reporting snapshot written by the summary job.
type PollResult struct {
	PollID        uuid.UUID
	OptionID      uuid.UUID
	VoteCount     int64
	Percentage    float64
	LastUpdatedAt time.Time
}
