package chat

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/zephy/zephy-api/internal/pkg/database"
)

// Repository defines chat persistence
type Repository interface {
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	LatestSession(ctx context.Context, userID uuid.UUID) (*Session, error)

	// AppendTurn stores a user message and its reply atomically, creating the
	// session on its first turn and bumping updated_at otherwise.
	AppendTurn(ctx context.Context, session *Session, user, assistant *Message) error
	// RecentMessages returns the last limit messages, oldest first.
	RecentMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]*Message, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates chat repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	var session Session
	err := r.db.GetContext(ctx, &session, `SELECT id, user_id, created_at, updated_at FROM chat_sessions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *repository) LatestSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	query := `
		SELECT id, user_id, created_at, updated_at FROM chat_sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`
	var session Session
	if err := r.db.GetContext(ctx, &session, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *repository) AppendTurn(ctx context.Context, session *Session, user, assistant *Message) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		upsert := `
			INSERT INTO chat_sessions (id, user_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		`
		if _, err := tx.ExecContext(ctx, upsert, session.ID, session.UserID, session.CreatedAt, session.UpdatedAt); err != nil {
			return err
		}

		insert := `
			INSERT INTO chat_messages (id, session_id, role, content, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		for _, m := range []*Message{user, assistant} {
			if _, err := tx.ExecContext(ctx, insert, m.ID, session.ID, m.Role, m.Content, m.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) RecentMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]*Message, error) {
	query := `
		SELECT id, session_id, role, content, created_at FROM (
			SELECT id, session_id, role, content, created_at
			FROM chat_messages
			WHERE session_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`
	var msgs []*Message
	if err := r.db.SelectContext(ctx, &msgs, query, sessionID, limit); err != nil {
		return nil, err
	}
	return msgs, nil
}
