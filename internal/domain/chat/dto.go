package chat

import (
	"time"

	"github.com/google/uuid"
)

// SendRequest is the body of POST /api/chat
type SendRequest struct {
	Message   string     `json:"message" validate:"required"`
	Traits    *Traits    `json:"traits"`
	SessionID *uuid.UUID `json:"session_id"`
}

// SendResponse carries the assistant reply. SessionID is nil for anonymous chats.
type SendResponse struct {
	Reply     string     `json:"reply"`
	SessionID *uuid.UUID `json:"session_id"`
}

// MessageResponse for API response
type MessageResponse struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryResponse is the body of GET /api/chat/history
type HistoryResponse struct {
	SessionID *uuid.UUID         `json:"session_id"`
	Messages  []*MessageResponse `json:"messages"`
}

func toMessageResponses(msgs []*Message) []*MessageResponse {
	out := make([]*MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, &MessageResponse{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
	}
	return out
}
