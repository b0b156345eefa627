package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
)

type pollResultRepository struct {
	db *sql.DB
}

func NewPollResultRepository(db *sql.DB) ports.PollResultRepository {
	return &pollResultRepository{
		db: db,
	}
}

func (r *pollResultRepository) GetPollResults(ctx context.Context, pollID uuid.UUID) ([]domain.PollResult, error) {
	query := `
		SELECT poll_id, option_id, vote_count, percentage, last_updated_at
		FROM poll_results
		WHERE poll_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch poll results: %w", err)
	}
	defer rows.Close()

	var results []domain.PollResult
	for rows.Next() {
		var res domain.PollResult
		if err := rows.Scan(&res.PollID, &res.OptionID, &res.VoteCount, &res.Percentage, &res.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan poll result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating poll results: %w", err)
	}

	return results, nil
}

func (r *pollResultRepository) SummarizeTally(ctx context.Context, pollID uuid.UUID, tally []domain.TallyEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO poll_results (poll_id, option_id, vote_count, percentage, last_updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (poll_id, option_id) DO UPDATE
		SET vote_count = EXCLUDED.vote_count,
		    percentage = EXCLUDED.percentage,
		    last_updated_at = NOW()
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare summary statement: %w", err)
	}
	defer stmt.Close()

	for _, entry := range tally {
		if _, err := stmt.ExecContext(ctx, pollID, entry.OptionID, entry.VoteCount, entry.Percentage); err != nil {
			return fmt.Errorf("failed to summarize votes for poll %s: %w", pollID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
