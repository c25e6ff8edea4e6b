package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zephy/zephy-api/internal/pkg/completion"
	"github.com/zephy/zephy-api/internal/pkg/logger"
	"github.com/zephy/zephy-api/internal/pkg/sanitize"
)

// Completer produces the assistant reply for a conversation
type Completer interface {
	Complete(ctx context.Context, messages []completion.Message) (*completion.Result, error)
}

// Service handles chat business logic
type Service struct {
	repo      Repository
	completer Completer
	window    int
	now       func() time.Time
}

// NewService creates chat service. repo may be nil, which disables persistence.
func NewService(repo Repository, completer Completer, window int) *Service {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	return &Service{repo: repo, completer: completer, window: window, now: time.Now}
}

// Send builds the prompt, calls the completion API and, for signed-in users,
// stores the turn. Anonymous chats are stateless.
func (s *Service) Send(ctx context.Context, userID uuid.UUID, req *SendRequest) (*SendResponse, error) {
	text := sanitize.Text(req.Message, sanitize.MaxChatMessage)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	var session *Session
	var history []*Message
	if s.repo != nil && userID != uuid.Nil && req.SessionID != nil && *req.SessionID != uuid.Nil {
		var err error
		session, err = s.ownedSession(ctx, userID, *req.SessionID)
		if err != nil {
			return nil, err
		}
		history, err = s.repo.RecentMessages(ctx, session.ID, s.window)
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
	}

	messages := make([]completion.Message, 0, len(history)+2)
	messages = append(messages, completion.Message{Role: string(RoleSystem), Content: SystemPrompt(req.Traits)})
	for _, m := range history {
		messages = append(messages, completion.Message{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, completion.Message{Role: string(RoleUser), Content: text})

	sentAt := s.now().UTC()
	result, err := s.completer.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	reply := strings.TrimSpace(result.Content)
	if reply == "" {
		return nil, ErrEmptyReply
	}

	resp := &SendResponse{Reply: reply}
	if s.repo == nil || userID == uuid.Nil {
		return resp, nil
	}

	// a new session is only written together with its first turn
	isNew := session == nil
	if isNew {
		session = &Session{ID: uuid.New(), UserID: userID, CreatedAt: sentAt}
	}
	user := &Message{ID: uuid.New(), SessionID: session.ID, Role: RoleUser, Content: text, CreatedAt: sentAt}
	assistant := &Message{ID: uuid.New(), SessionID: session.ID, Role: RoleAssistant, Content: reply, CreatedAt: s.now().UTC()}
	session.UpdatedAt = assistant.CreatedAt
	if err := s.repo.AppendTurn(ctx, session, user, assistant); err != nil {
		// transcript loss does not fail the request
		logger.FromContext(ctx).Warn().
			Err(err).
			Str("session_id", session.ID.String()).
			Msg("failed to store chat turn")
		if isNew {
			return resp, nil
		}
	}
	resp.SessionID = &session.ID
	return resp, nil
}

func (s *Service) ownedSession(ctx context.Context, userID, sessionID uuid.UUID) (*Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil || session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// History returns the stored turns of the requested session, or of the
// user's latest one when sessionID is nil.
func (s *Service) History(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID) (*HistoryResponse, error) {
	empty := &HistoryResponse{Messages: []*MessageResponse{}}
	if s.repo == nil {
		return empty, nil
	}

	var session *Session
	var err error
	if sessionID != nil {
		session, err = s.ownedSession(ctx, userID, *sessionID)
		if err != nil {
			return nil, err
		}
	} else {
		session, err = s.repo.LatestSession(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("latest session: %w", err)
		}
		if session == nil {
			return empty, nil
		}
	}

	msgs, err := s.repo.RecentMessages(ctx, session.ID, HistoryPageSize)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return &HistoryResponse{SessionID: &session.ID, Messages: toMessageResponses(msgs)}, nil
}
