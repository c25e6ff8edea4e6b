package community

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zephy/zephy-api/internal/domain/feed"
	"github.com/zephy/zephy-api/internal/pkg/sanitize"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// EventPublisher pushes realtime events to feed subscribers
type EventPublisher interface {
	Publish(ctx context.Context, event feed.Event)
}

// Service handles posts, replies and reactions
type Service struct {
	repo   Repository
	events EventPublisher
	now    func() time.Time
}

// NewService creates community service. events may be nil.
func NewService(repo Repository, events EventPublisher) *Service {
	return &Service{repo: repo, events: events, now: time.Now}
}

func (s *Service) publish(ctx context.Context, ev feed.Event) {
	if s.events != nil {
		s.events.Publish(ctx, ev)
	}
}

// CreatePost sanitizes and stores a post. userID may be uuid.Nil.
func (s *Service) CreatePost(ctx context.Context, userID uuid.UUID, req *CreatePostRequest) (*Post, error) {
	content := sanitize.Text(req.Content, sanitize.MaxPost)
	if content == "" {
		return nil, ErrEmptyContent
	}
	author := req.Author.normalize()

	post := &Post{
		ID:             uuid.New(),
		UserID:         nullUserID(userID),
		Community:      req.Community,
		Content:        content,
		AuthorNickname: author.Nickname,
		AuthorAvatar:   author.Avatar,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	s.publish(ctx, feed.Event{Type: feed.EventPostCreated, Community: post.Community, Data: post.ToResponse()})
	return post, nil
}

// GetPost returns a post with its replies
func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*Post, []*Reply, error) {
	post, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if post == nil {
		return nil, nil, ErrPostNotFound
	}
	replies, err := s.repo.ListReplies(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return post, replies, nil
}

// ListPosts returns newest posts first.
func (s *Service) ListPosts(ctx context.Context, filter ListFilter) ([]*Post, error) {
	return s.repo.ListPosts(ctx, filter.Normalize())
}

// CreateReply adds a reply to an existing post
func (s *Service) CreateReply(ctx context.Context, postID, userID uuid.UUID, req *CreateReplyRequest) (*Reply, error) {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	content := sanitize.Text(req.Content, sanitize.MaxReply)
	if content == "" {
		return nil, ErrEmptyContent
	}
	author := req.Author.normalize()

	reply := &Reply{
		ID:             uuid.New(),
		PostID:         postID,
		UserID:         nullUserID(userID),
		Content:        content,
		AuthorNickname: author.Nickname,
		AuthorAvatar:   author.Avatar,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.CreateReply(ctx, reply); err != nil {
		return nil, err
	}

	s.publish(ctx, feed.Event{Type: feed.EventReplyCreated, Community: post.Community, Data: reply.ToResponse()})
	return reply, nil
}

// ReactToPost toggles kind on a post for userID
func (s *Service) ReactToPost(ctx context.Context, postID, userID uuid.UUID, kind string) (Tally, bool, error) {
	counts, active, err := s.ToggleReaction(ctx, TargetPost, postID, userID, kind)
	if err != nil {
		return nil, false, err
	}

	s.publish(ctx, feed.Event{
		Type: feed.EventPostReactions,
		Data: map[string]interface{}{"post_id": postID.String(), "polls": counts},
	})
	return counts, active, nil
}

// SupportReply toggles support on a reply that belongs to postID
func (s *Service) SupportReply(ctx context.Context, postID, replyID, userID uuid.UUID) (Tally, bool, error) {
	reply, err := s.repo.GetReply(ctx, postID, replyID)
	if err != nil {
		return nil, false, err
	}
	if reply == nil {
		return nil, false, ErrReplyNotFound
	}

	counts, active, err := s.ToggleReaction(ctx, TargetReply, replyID, userID, KindSupport)
	if err != nil {
		return nil, false, err
	}

	s.publish(ctx, feed.Event{
		Type: feed.EventReplySupport,
		Data: map[string]interface{}{"post_id": postID.String(), "reply_id": replyID.String(), "support": counts[KindSupport]},
	})
	return counts, active, nil
}

// ToggleReaction flips the (target, user, kind) reaction, recounts every kind
// from the reaction rows and overwrites the parent's counters. The parent row
// stays locked for the whole sequence so concurrent toggles serialize.
// active reports whether the reaction exists afterwards.
func (s *Service) ToggleReaction(ctx context.Context, target TargetType, targetID, userID uuid.UUID, kind string) (Tally, bool, error) {
	if _, ok := reactionKinds[target]; !ok {
		return nil, false, ErrInvalidTarget
	}
	if !ValidKind(target, kind) {
		return nil, false, ErrInvalidReactionKind
	}

	var (
		counts Tally
		active bool
	)
	err := s.repo.RunReactionTx(ctx, func(tx ReactionTx) error {
		found, err := tx.LockTarget(ctx, target, targetID)
		if err != nil {
			return err
		}
		if !found {
			if target == TargetReply {
				return ErrReplyNotFound
			}
			return ErrPostNotFound
		}

		exists, err := tx.HasReaction(ctx, target, targetID, userID, kind)
		if err != nil {
			return err
		}
		if exists {
			err = tx.RemoveReaction(ctx, target, targetID, userID, kind)
		} else {
			err = tx.AddReaction(ctx, target, targetID, userID, kind)
		}
		if err != nil {
			return err
		}
		active = !exists

		counts, err = tx.CountReactions(ctx, target, targetID)
		if err != nil {
			return err
		}
		return tx.WriteCounts(ctx, target, targetID, counts)
	})
	if err != nil {
		return nil, false, err
	}
	return counts, active, nil
}
