package chat

import (
	"time"

	"github.com/google/uuid"
)

// Role of a stored turn
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	// DefaultHistoryWindow is how many stored turns are replayed to the model
	DefaultHistoryWindow = 10
	// HistoryPageSize bounds GET /api/chat/history
	HistoryPageSize = 50
)

// Session groups one signed-in user's conversation
type Session struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Message is one stored turn
type Message struct {
	ID        uuid.UUID `db:"id"`
	SessionID uuid.UUID `db:"session_id"`
	Role      Role      `db:"role"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}
