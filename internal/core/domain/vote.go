package domain

import (
	"time"

	"github.com/google/uuid"
)

// VoteCast is published after an accepted vote has been persisted. It never
// carries the credential that was used.
type VoteCast struct {
	PollID     uuid.UUID  `json:"poll_id"`
	OptionID   uuid.UUID  `json:"option_id"`
	AccessMode AccessMode `json:"access_mode"`
	Embedded   bool       `json:"embedded"`
	CastAt     time.Time  `json:"cast_at"`
}
