package domain

import "github.com/google/uuid"

type TallyEntry struct {
	OptionID   uuid.UUID `json:"option_id"`
	Text       string    `json:"text"`
	VoteCount  int64     `json:"vote_count"`
	Percentage float64   `json:"percentage"`
}

// ComputeTally projects the poll's counts into per-option shares, in option
// order. Every percentage is zero while no votes have been cast.
func ComputeTally(poll Poll) []TallyEntry {
	total := poll.TotalVotes()

	tally := make([]TallyEntry, 0, len(poll.Options))
	for _, opt := range poll.Options {
		percentage := 0.0
		if total > 0 {
			percentage = (float64(opt.VoteCount) / float64(total)) * 100
		}

		tally = append(tally, TallyEntry{
			OptionID:   opt.ID,
			Text:       opt.Text,
			VoteCount:  opt.VoteCount,
			Percentage: percentage,
		})
	}

	return tally
}
