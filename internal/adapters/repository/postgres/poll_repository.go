package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
)

// likeEscaper makes user input match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

const pollColumns = `p.id, p.title, p.description, p.access_mode, p.options, p.vote_codes,
	p.used_codes, p.used_voter_identities, p.created_at, p.expires_at, p.version`

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	options, err := json.Marshal(poll.Options)
	if err != nil {
		return fmt.Errorf("failed to encode poll options: %w", err)
	}
	if poll.Version == 0 {
		poll.Version = 1
	}

	query := `
		INSERT INTO polls (id, title, description, access_mode, options, vote_codes,
			used_codes, used_voter_identities, created_at, expires_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		poll.ID, poll.Title, poll.Description, poll.AccessMode, options,
		pq.Array(nonNil(poll.VoteCodes)), pq.Array(nonNil(poll.UsedCodes)), pq.Array(nonNil(poll.UsedVoterIdentities)),
		poll.CreatedAt, poll.ExpiresAt, poll.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls p WHERE p.id = $1 AND p.deleted_at IS NULL`

	poll, err := scanPoll(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	return poll, nil
}

func (r *pollRepository) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls p WHERE p.deleted_at IS NULL`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all polls: %w", err)
	}
	defer rows.Close()

	return scanPolls(rows)
}

func (r *pollRepository) List(ctx context.Context, limit, offset int) ([]*domain.Poll, error) {
	query := `
		SELECT ` + pollColumns + `
		FROM polls p
		LEFT JOIN poll_results pr ON p.id = pr.poll_id
		WHERE p.deleted_at IS NULL
		GROUP BY p.id
		ORDER BY COALESCE(SUM(pr.vote_count), 0) DESC, p.created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	return scanPolls(rows)
}

func (r *pollRepository) Search(ctx context.Context, limit, offset int, q string) ([]*domain.Poll, error) {
	query := `
		SELECT ` + pollColumns + `
		FROM polls p
		LEFT JOIN poll_results pr ON p.id = pr.poll_id
		WHERE p.deleted_at IS NULL AND p.title ILIKE $1
		GROUP BY p.id
		ORDER BY COALESCE(SUM(pr.vote_count), 0) DESC, p.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, "%"+likeEscaper.Replace(q)+"%", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search polls: %w", err)
	}
	defer rows.Close()

	return scanPolls(rows)
}

func (r *pollRepository) FindByCode(ctx context.Context, code string) (*domain.Poll, error) {
	query := `
		SELECT ` + pollColumns + `
		FROM polls p
		WHERE $1 = ANY(p.vote_codes) AND p.deleted_at IS NULL
		ORDER BY p.created_at
		LIMIT 1
	`
	poll, err := scanPoll(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to find poll by code: %w", err)
	}

	return poll, nil
}

func (r *pollRepository) Update(ctx context.Context, poll *domain.Poll) error {
	options, err := json.Marshal(poll.Options)
	if err != nil {
		return fmt.Errorf("failed to encode poll options: %w", err)
	}

	query := `
		UPDATE polls
		SET options = $2, used_codes = $3, used_voter_identities = $4, version = version + 1
		WHERE id = $1 AND version = $5 AND deleted_at IS NULL
		RETURNING version
	`
	var version int64
	err = r.db.QueryRowContext(ctx, query,
		poll.ID, options, pq.Array(nonNil(poll.UsedCodes)), pq.Array(nonNil(poll.UsedVoterIdentities)), poll.Version,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return r.missOrStale(ctx, poll.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update poll: %w", err)
	}

	poll.Version = version
	return nil
}

// missOrStale explains why a versioned update touched no row.
func (r *pollRepository) missOrStale(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM polls WHERE id = $1 AND deleted_at IS NULL)`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check poll: %w", err)
	}
	if !exists {
		return domain.ErrPollNotFound
	}
	return domain.ErrStaleWrite
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (*domain.Poll, error) {
	var (
		poll    domain.Poll
		options []byte
	)
	err := row.Scan(
		&poll.ID, &poll.Title, &poll.Description, &poll.AccessMode, &options,
		pq.Array(&poll.VoteCodes), pq.Array(&poll.UsedCodes), pq.Array(&poll.UsedVoterIdentities),
		&poll.CreatedAt, &poll.ExpiresAt, &poll.Version,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(options, &poll.Options); err != nil {
		return nil, fmt.Errorf("failed to decode poll options: %w", err)
	}

	return &poll, nil
}

func scanPolls(rows *sql.Rows) ([]*domain.Poll, error) {
	polls := []*domain.Poll{}
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return polls, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
