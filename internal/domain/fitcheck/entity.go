package fitcheck

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	MinScore = 1
	MaxScore = 5

	DefaultHistoryLimit = 30
	MaxHistoryLimit     = 100
)

// Assessment is one mood/stress/energy self check
type Assessment struct {
	ID        uuid.UUID      `db:"id"`
	UserID    uuid.UUID      `db:"user_id"`
	Mood      int            `db:"mood"`
	Stress    int            `db:"stress"`
	Energy    int            `db:"energy"`
	Notes     sql.NullString `db:"notes"`
	CreatedAt time.Time      `db:"created_at"`
}

// HistoryLimit clamps a requested page size
func HistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
