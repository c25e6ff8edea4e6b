package poll

import (
	"context"
	"strconv"
	"strings"
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

// Service handles poll business logic
type Service struct {
	repo   Repository
	events EventPublisher
	now    func() time.Time
}

// NewService creates poll service. events may be nil.
func NewService(repo Repository, events EventPublisher) *Service {
	return &Service{repo: repo, events: events, now: time.Now}
}

func (s *Service) publish(ctx context.Context, ev feed.Event) {
	if s.events != nil {
		s.events.Publish(ctx, ev)
	}
}

// buildOptions applies the per-type option rules.
func buildOptions(req *CreateRequest) (Options, NullScale, error) {
	errs := ValidationErrors{}

	switch Type(req.Type) {
	case TypeYesNo:
		return yesNoOptions, NullScale{}, nil

	case TypeScale:
		if req.Scale == nil {
			errs["scale"] = "Scale polls need a range between 2 and 10"
			return nil, NullScale{}, errs
		}
		return nil, NullScale{Valid: true, Scale: Scale{
			Range:      req.Scale.Range,
			StartLabel: sanitize.Text(req.Scale.StartLabel, sanitize.MaxScaleLabel),
			EndLabel:   sanitize.Text(req.Scale.EndLabel, sanitize.MaxScaleLabel),
		}}, nil

	default:
		if len(req.Options) < MinOptions || len(req.Options) > MaxOptions {
			errs["options"] = "Provide between " + strconv.Itoa(MinOptions) + " and " + strconv.Itoa(MaxOptions) + " options"
			return nil, NullScale{}, errs
		}
		seen := make(map[string]bool, len(req.Options))
		opts := make(Options, 0, len(req.Options))
		for i, in := range req.Options {
			id := strings.TrimSpace(in.ID)
			// ids are matched verbatim on vote, so they must survive sanitizing unchanged
			if id == "" || sanitize.Text(id, MaxOptionIDLength) != id {
				errs["options["+strconv.Itoa(i)+"].id"] = "Option id contains unsupported characters"
				continue
			}
			if seen[id] {
				errs["options["+strconv.Itoa(i)+"].id"] = "Duplicate option id"
				continue
			}
			seen[id] = true

			text := sanitize.Text(in.Text, sanitize.MaxOptionText)
			if text == "" {
				errs["options["+strconv.Itoa(i)+"].text"] = "This field is required"
				continue
			}
			opts = append(opts, Option{
				ID:    id,
				Text:  text,
				Emoji: sanitize.Text(in.Emoji, sanitize.MaxEmoji),
			})
		}
		if len(errs) > 0 {
			return nil, NullScale{}, errs
		}
		return opts, NullScale{}, nil
	}
}

// Create validates type-specific rules and stores an active poll
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *CreateRequest) (*Poll, error) {
	question := sanitize.Text(req.Question, sanitize.MaxPollQuestion)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	options, scale, err := buildOptions(req)
	if err != nil {
		return nil, err
	}
	author := normalizeAuthor(req.Author)

	poll := &Poll{
		ID:             uuid.New(),
		UserID:         uuid.NullUUID{UUID: userID, Valid: userID != uuid.Nil},
		Question:       question,
		Type:           Type(req.Type),
		Category:       req.Category,
		AuthorNickname: author.Nickname,
		AuthorAvatar:   author.Avatar,
		Options:        options,
		Scale:          scale,
		Status:         StatusActive,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, poll); err != nil {
		return nil, err
	}

	s.publish(ctx, feed.Event{Type: feed.EventPollCreated, Data: poll.ToResponse(nil)})
	return poll, nil
}

// Get returns a poll and its live counts
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Poll, map[string]int, error) {
	poll, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if poll == nil {
		return nil, nil, ErrPollNotFound
	}
	counts, err := s.repo.CountVotes(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return poll, counts, nil
}

// List returns newest polls first with live counts. Empty status means all.
func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]*PollResponse, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	polls, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(polls))
	for _, p := range polls {
		ids = append(ids, p.ID)
	}
	counts, err := s.repo.CountVotesForPolls(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*PollResponse, 0, len(polls))
	for _, p := range polls {
		out = append(out, p.ToResponse(counts[p.ID]))
	}
	return out, nil
}

// Vote records one vote per user and returns the recounted tally.
// A repeat vote by the same user is a no-op and still returns the tally.
func (s *Service) Vote(ctx context.Context, pollID, userID uuid.UUID, optionID string) (*VoteResult, error) {
	poll, err := s.repo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if poll == nil {
		return nil, ErrPollNotFound
	}
	if poll.Status == StatusClosed {
		return nil, ErrPollClosed
	}
	if !poll.HasOption(optionID) {
		return nil, ErrInvalidOption
	}

	inserted, err := s.repo.CastVote(ctx, pollID, userID, optionID)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.CountVotes(ctx, pollID)
	if err != nil {
		return nil, err
	}
	votes, total := poll.Tally(counts)
	result := &VoteResult{Votes: votes, TotalVotes: total}

	if inserted {
		s.publish(ctx, feed.Event{
			Type: feed.EventPollVotes,
			Data: map[string]interface{}{"poll_id": pollID.String(), "votes": votes, "totalVotes": total},
		})
	}
	return result, nil
}

// Close marks a poll closed. Only the signed-in author may close it.
func (s *Service) Close(ctx context.Context, pollID, userID uuid.UUID) (*Poll, error) {
	poll, err := s.repo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if poll == nil {
		return nil, ErrPollNotFound
	}
	if !poll.UserID.Valid || poll.UserID.UUID != userID {
		return nil, ErrNotPollOwner
	}
	if poll.Status == StatusClosed {
		return poll, nil
	}
	if err := s.repo.UpdateStatus(ctx, pollID, StatusClosed); err != nil {
		return nil, err
	}
	poll.Status = StatusClosed
	return poll, nil
}
