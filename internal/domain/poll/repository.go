package poll

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines poll data access
type Repository interface {
	Create(ctx context.Context, poll *Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (*Poll, error)
	List(ctx context.Context, status Status, limit, offset int) ([]*Poll, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	// CastVote records a vote; inserted is false when the user already voted.
	CastVote(ctx context.Context, pollID, userID uuid.UUID, optionID string) (inserted bool, err error)
	CountVotes(ctx context.Context, pollID uuid.UUID) (map[string]int, error)
	CountVotesForPolls(ctx context.Context, pollIDs []uuid.UUID) (map[uuid.UUID]map[string]int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates poll repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, poll *Poll) error {
	query := `
		INSERT INTO polls (id, user_id, question, type, category, author_nickname, author_avatar, options, scale, status, created_at)
		VALUES (:id, :user_id, :question, :type, :category, :author_nickname, :author_avatar, :options, :scale, :status, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, poll)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Poll, error) {
	var poll Poll
	err := r.db.GetContext(ctx, &poll, `SELECT * FROM polls WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

func (r *repository) List(ctx context.Context, status Status, limit, offset int) ([]*Poll, error) {
	query := `
		SELECT * FROM polls
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var polls []*Poll
	if err := r.db.SelectContext(ctx, &polls, query, string(status), limit, offset); err != nil {
		return nil, err
	}
	return polls, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	res, err := r.db.ExecContext(ctx, `UPDATE polls SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPollNotFound
	}
	return nil
}

func (r *repository) CastVote(ctx context.Context, pollID, userID uuid.UUID, optionID string) (bool, error) {
	query := `
		INSERT INTO poll_votes (poll_id, user_id, option_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (poll_id, user_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, pollID, userID, optionID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return false, ErrPollNotFound
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) CountVotes(ctx context.Context, pollID uuid.UUID) (map[string]int, error) {
	var rows []struct {
		OptionID string `db:"option_id"`
		Count    int    `db:"count"`
	}
	query := `SELECT option_id, COUNT(*) AS count FROM poll_votes WHERE poll_id = $1 GROUP BY option_id`
	if err := r.db.SelectContext(ctx, &rows, query, pollID); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.OptionID] = row.Count
	}
	return counts, nil
}

func (r *repository) CountVotesForPolls(ctx context.Context, pollIDs []uuid.UUID) (map[uuid.UUID]map[string]int, error) {
	out := make(map[uuid.UUID]map[string]int, len(pollIDs))
	if len(pollIDs) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(pollIDs))
	for _, id := range pollIDs {
		ids = append(ids, id.String())
	}

	var rows []struct {
		PollID   uuid.UUID `db:"poll_id"`
		OptionID string    `db:"option_id"`
		Count    int       `db:"count"`
	}
	query := `
		SELECT poll_id, option_id, COUNT(*) AS count
		FROM poll_votes
		WHERE poll_id = ANY($1::uuid[])
		GROUP BY poll_id, option_id
	`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, err
	}

	for _, row := range rows {
		if out[row.PollID] == nil {
			out[row.PollID] = make(map[string]int)
		}
		out[row.PollID][row.OptionID] = row.Count
	}
	return out, nil
}
