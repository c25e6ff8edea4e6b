package fitcheck

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines fitcheck data access
type Repository interface {
	Create(ctx context.Context, a *Assessment) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Assessment, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates fitcheck repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, a *Assessment) error {
	query := `
		INSERT INTO fitcheck_assessments (id, user_id, mood, stress, energy, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.Mood, a.Stress, a.Energy, a.Notes, a.CreatedAt,
	)
	return err
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Assessment, error) {
	query := `
		SELECT id, user_id, mood, stress, energy, notes, created_at
		FROM fitcheck_assessments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	var items []*Assessment
	if err := r.db.SelectContext(ctx, &items, query, userID, limit); err != nil {
		return nil, err
	}
	return items, nil
}
