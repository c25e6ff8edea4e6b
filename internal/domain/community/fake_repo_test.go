package community

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/zephy/zephy-api/internal/domain/feed"
)

type reactionKey struct {
	target TargetType
	id     uuid.UUID
	user   uuid.UUID
	kind   string
}

// fakeRepo is an in-memory Repository. RunReactionTx holds a mutex for the
// whole callback and restores reactions when fn fails.
type fakeRepo struct {
	mu        sync.Mutex
	posts     map[uuid.UUID]*Post
	replies   map[uuid.UUID]*Reply
	reactions map[reactionKey]bool

	failWrite error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		posts:     make(map[uuid.UUID]*Post),
		replies:   make(map[uuid.UUID]*Reply),
		reactions: make(map[reactionKey]bool),
	}
}

func (f *fakeRepo) CreatePost(_ context.Context, post *Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *post
	f.posts[post.ID] = &cp
	return nil
}

func (f *fakeRepo) GetPost(_ context.Context, id uuid.UUID) (*Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) ListPosts(_ context.Context, filter ListFilter) ([]*Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Post
	for _, p := range f.posts {
		if filter.Community == "" || p.Community == filter.Community {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeRepo) CreateReply(_ context.Context, reply *Reply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[reply.PostID]
	if !ok {
		return ErrPostNotFound
	}
	cp := *reply
	f.replies[reply.ID] = &cp
	p.ReplyCount++
	return nil
}

func (f *fakeRepo) GetReply(_ context.Context, postID, replyID uuid.UUID) (*Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.replies[replyID]
	if !ok || r.PostID != postID {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) ListReplies(_ context.Context, postID uuid.UUID) ([]*Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Reply
	for _, r := range f.replies {
		if r.PostID == postID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRepo) RunReactionTx(ctx context.Context, fn func(tx ReactionTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := make(map[reactionKey]bool, len(f.reactions))
	for k, v := range f.reactions {
		snapshot[k] = v
	}

	if err := fn(fakeTx{f}); err != nil {
		f.reactions = snapshot
		return err
	}
	return nil
}

type fakeTx struct{ f *fakeRepo }

func (t fakeTx) LockTarget(_ context.Context, target TargetType, id uuid.UUID) (bool, error) {
	switch target {
	case TargetPost:
		_, ok := t.f.posts[id]
		return ok, nil
	case TargetReply:
		_, ok := t.f.replies[id]
		return ok, nil
	}
	return false, ErrInvalidTarget
}

func (t fakeTx) HasReaction(_ context.Context, target TargetType, id, userID uuid.UUID, kind string) (bool, error) {
	return t.f.reactions[reactionKey{target, id, userID, kind}], nil
}

func (t fakeTx) AddReaction(_ context.Context, target TargetType, id, userID uuid.UUID, kind string) error {
	t.f.reactions[reactionKey{target, id, userID, kind}] = true
	return nil
}

func (t fakeTx) RemoveReaction(_ context.Context, target TargetType, id, userID uuid.UUID, kind string) error {
	delete(t.f.reactions, reactionKey{target, id, userID, kind})
	return nil
}

func (t fakeTx) CountReactions(_ context.Context, target TargetType, id uuid.UUID) (Tally, error) {
	counts := NewTally(target)
	for k := range t.f.reactions {
		if k.target == target && k.id == id {
			counts[k.kind]++
		}
	}
	return counts, nil
}

func (t fakeTx) WriteCounts(_ context.Context, target TargetType, id uuid.UUID, counts Tally) error {
	if t.f.failWrite != nil {
		return t.f.failWrite
	}
	switch target {
	case TargetPost:
		p := t.f.posts[id]
		p.SupportCount, p.RelateCount, p.HelpfulCount = counts[KindSupport], counts[KindRelate], counts[KindHelpful]
	case TargetReply:
		t.f.replies[id].SupportCount = counts[KindSupport]
	default:
		return errors.New("unknown target")
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, ev feed.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, string(ev.Type))
}
