package community

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func seedPost(t *testing.T, repo *fakeRepo) *Post {
	t.Helper()
	p := &Post{ID: uuid.New(), Community: "homesick", Content: "missing home", CreatedAt: time.Now()}
	if err := repo.CreatePost(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestToggleReactionTwiceReturnsToZero(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	post := seedPost(t, repo)
	user := uuid.New()
	ctx := context.Background()

	counts, active, err := svc.ToggleReaction(ctx, TargetPost, post.ID, user, KindSupport)
	if err != nil {
		t.Fatal(err)
	}
	if counts[KindSupport] != 1 || !active {
		t.Fatalf("first toggle: expected support=1 active, got %v %v", counts, active)
	}

	counts, active, err = svc.ToggleReaction(ctx, TargetPost, post.ID, user, KindSupport)
	if err != nil {
		t.Fatal(err)
	}
	if counts[KindSupport] != 0 || active {
		t.Fatalf("second toggle: expected support=0 inactive, got %v %v", counts, active)
	}

	counts, _, err = svc.ToggleReaction(ctx, TargetPost, post.ID, user, KindSupport)
	if err != nil {
		t.Fatal(err)
	}
	if counts[KindSupport] != 1 {
		t.Fatalf("third toggle: expected support=1, got %v", counts)
	}

	stored, _ := repo.GetPost(ctx, post.ID)
	if stored.SupportCount != 1 {
		t.Fatalf("expected denormalized counter 1, got %d", stored.SupportCount)
	}
}

func TestToggleReactionCountsAllKindsAndUsers(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	post := seedPost(t, repo)
	ctx := context.Background()

	a, b := uuid.New(), uuid.New()
	for _, step := range []struct {
		user uuid.UUID
		kind string
	}{{a, KindSupport}, {b, KindSupport}, {a, KindRelate}, {b, KindHelpful}} {
		if _, _, err := svc.ToggleReaction(ctx, TargetPost, post.ID, step.user, step.kind); err != nil {
			t.Fatal(err)
		}
	}

	stored, _ := repo.GetPost(ctx, post.ID)
	want := Tally{KindSupport: 2, KindRelate: 1, KindHelpful: 1}
	for kind, n := range want {
		if stored.Counts()[kind] != n {
			t.Fatalf("expected %s=%d, got %v", kind, n, stored.Counts())
		}
	}
}

func TestToggleReactionRejectsUnknownKind(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	post := seedPost(t, repo)

	_, _, err := svc.ToggleReaction(context.Background(), TargetPost, post.ID, uuid.New(), "love")
	if !errors.Is(err, ErrInvalidReactionKind) {
		t.Fatalf("expected ErrInvalidReactionKind, got %v", err)
	}

	_, _, err = svc.ToggleReaction(context.Background(), TargetReply, uuid.New(), uuid.New(), KindRelate)
	if !errors.Is(err, ErrInvalidReactionKind) {
		t.Fatalf("relate is not allowed on replies, got %v", err)
	}
}

func TestToggleReactionUnknownPost(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	_, _, err := svc.ToggleReaction(context.Background(), TargetPost, uuid.New(), uuid.New(), KindSupport)
	if !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestToggleReactionRollsBackOnWriteFailure(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	post := seedPost(t, repo)
	user := uuid.New()

	repo.failWrite = errors.New("write failed")
	if _, _, err := svc.ToggleReaction(context.Background(), TargetPost, post.ID, user, KindSupport); err == nil {
		t.Fatal("expected error")
	}

	repo.failWrite = nil
	counts, active, err := svc.ToggleReaction(context.Background(), TargetPost, post.ID, user, KindSupport)
	if err != nil {
		t.Fatal(err)
	}
	if counts[KindSupport] != 1 || !active {
		t.Fatalf("failed toggle must not persist, got %v %v", counts, active)
	}
}

func TestToggleReactionConcurrentUsers(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	post := seedPost(t, repo)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := svc.ToggleReaction(context.Background(), TargetPost, post.ID, uuid.New(), KindHelpful); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	stored, _ := repo.GetPost(context.Background(), post.ID)
	if stored.HelpfulCount != 50 {
		t.Fatalf("expected 50 helpful, got %d", stored.HelpfulCount)
	}
}

func TestSupportReplyRequiresMatchingPost(t *testing.T) {
	repo := newFakeRepo()
	pub := &recordingPublisher{}
	svc := NewService(repo, pub)
	post := seedPost(t, repo)
	other := seedPost(t, repo)

	reply, err := svc.CreateReply(context.Background(), post.ID, uuid.Nil, &CreateReplyRequest{Content: "you got this"})
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.SupportReply(context.Background(), other.ID, reply.ID, uuid.New()); !errors.Is(err, ErrReplyNotFound) {
		t.Fatalf("expected ErrReplyNotFound, got %v", err)
	}

	counts, active, err := svc.SupportReply(context.Background(), post.ID, reply.ID, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if counts[KindSupport] != 1 || !active {
		t.Fatalf("expected support=1, got %v", counts)
	}
	if len(pub.events) != 2 {
		t.Fatalf("expected reply_created and reply_support events, got %v", pub.events)
	}
}

func TestCreatePostSanitizesAndDefaultsAuthor(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	post, err := svc.CreatePost(context.Background(), uuid.Nil, &CreatePostRequest{
		Content:   "  <b>hello</b>\n",
		Community: "social",
	})
	if err != nil {
		t.Fatal(err)
	}
	if post.Content != "&lt;b&gt;hello&lt;/b&gt;" {
		t.Fatalf("unexpected content %q", post.Content)
	}
	if post.AuthorNickname != DefaultNickname || post.AuthorAvatar != DefaultAvatar {
		t.Fatalf("expected default author, got %q %q", post.AuthorNickname, post.AuthorAvatar)
	}
	if post.UserID.Valid {
		t.Fatal("anonymous post should have no user id")
	}
}

func TestCreatePostRejectsWhitespaceOnly(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	_, err := svc.CreatePost(context.Background(), uuid.Nil, &CreatePostRequest{Content: " \u200b\n ", Community: "social"})
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}
