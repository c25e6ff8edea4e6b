package poll

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type voteKey struct {
	poll uuid.UUID
	user uuid.UUID
}

type fakeRepo struct {
	mu    sync.Mutex
	polls map[uuid.UUID]*Poll
	votes map[voteKey]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{polls: make(map[uuid.UUID]*Poll), votes: make(map[voteKey]string)}
}

func (f *fakeRepo) Create(_ context.Context, poll *Poll) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *poll
	f.polls[poll.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.polls[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) List(_ context.Context, status Status, limit, offset int) ([]*Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Poll
	for _, p := range f.polls {
		if status == "" || p.Status == status {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.polls[id]
	if !ok {
		return ErrPollNotFound
	}
	p.Status = status
	return nil
}

func (f *fakeRepo) CastVote(_ context.Context, pollID, userID uuid.UUID, optionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := voteKey{pollID, userID}
	if _, exists := f.votes[key]; exists {
		return false, nil
	}
	f.votes[key] = optionID
	return true, nil
}

func (f *fakeRepo) CountVotes(_ context.Context, pollID uuid.UUID) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for k, opt := range f.votes {
		if k.poll == pollID {
			counts[opt]++
		}
	}
	return counts, nil
}

func (f *fakeRepo) CountVotesForPolls(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]map[string]int, error) {
	out := make(map[uuid.UUID]map[string]int, len(ids))
	for _, id := range ids {
		counts, _ := f.CountVotes(ctx, id)
		out[id] = counts
	}
	return out, nil
}
