package chat

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/zephy/zephy-api/internal/pkg/completion"
)

type fakeRepo struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*Session
	messages  []*Message
	appendErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[uuid.UUID]*Session)}
}

func (f *fakeRepo) GetSession(_ context.Context, id uuid.UUID) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) LatestSession(_ context.Context, userID uuid.UUID) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *Session
	for _, s := range f.sessions {
		if s.UserID == userID && (latest == nil || s.UpdatedAt.After(latest.UpdatedAt)) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeRepo) AppendTurn(_ context.Context, session *Session, user, assistant *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.messages = append(f.messages, user, assistant)
	if existing, ok := f.sessions[session.ID]; ok {
		existing.UpdatedAt = session.UpdatedAt
		return nil
	}
	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeRepo) RecentMessages(_ context.Context, sessionID uuid.UUID, limit int) ([]*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Message
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// fakeCompleter records prompts and answers with a fixed reply or error
type fakeCompleter struct {
	mu    sync.Mutex
	calls [][]completion.Message
	reply string
	err   error
}

func (f *fakeCompleter) Complete(_ context.Context, messages []completion.Message) (*completion.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return nil, f.err
	}
	return &completion.Result{Content: f.reply, FinishReason: "stop"}, nil
}

func (f *fakeCompleter) last() []completion.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}
