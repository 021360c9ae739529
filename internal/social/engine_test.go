package social

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"dauvest/internal/cache"
	"dauvest/internal/core"
	"dauvest/internal/social/memory"
)

// countingStore wraps a RemoteStore to count identity lookups and inject failures.
type countingStore struct {
	RemoteStore
	resolveCalls atomic.Int32
	recordCalls  atomic.Int32
	failComments error
	failInsert   error
	failResolve  error
}

func (s *countingStore) ResolveIdentities(ctx context.Context, ids []string) (map[string]string, error) {
	s.resolveCalls.Add(1)
	if s.failResolve != nil {
		return nil, s.failResolve
	}
	return s.RemoteStore.ResolveIdentities(ctx, ids)
}

func (s *countingStore) RecordIdentity(ctx context.Context, userID, email string) error {
	s.recordCalls.Add(1)
	return s.RemoteStore.RecordIdentity(ctx, userID, email)
}

func (s *countingStore) CommentsForPosts(ctx context.Context, ids []string) (map[string][]core.Comment, error) {
	if s.failComments != nil {
		return nil, s.failComments
	}
	return s.RemoteStore.CommentsForPosts(ctx, ids)
}

func (s *countingStore) InsertComment(ctx context.Context, c core.Comment) (core.Comment, error) {
	if s.failInsert != nil {
		return core.Comment{}, s.failInsert
	}
	return s.RemoteStore.InsertComment(ctx, c)
}

func newEngine(t *testing.T) (*Engine, *memory.Store, *countingStore) {
	t.Helper()
	ctx := context.Background()
	mem := memory.New()
	_ = mem.RecordIdentity(ctx, "ana", "ana@example.com")
	_ = mem.RecordIdentity(ctx, "bia", "bia@example.com")
	cs := &countingStore{RemoteStore: mem}
	return NewEngine(cs, cache.NewLRUCache[string](16, time.Minute)), mem, cs
}

func TestEngine_FetchFeedAnnotatesForViewer(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEngine(t)

	first, err := e.CreatePost(ctx, "ana", "  Economizei 10% este mês  ")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if first.Content != "Economizei 10% este mês" || first.LikesCount != 0 || first.CommentsCount != 0 {
		t.Fatalf("unexpected post %+v", first)
	}
	time.Sleep(time.Millisecond)
	second, _ := e.CreatePost(ctx, "ghost", "Dica: planilha mensal")

	if _, err := e.AddComment(ctx, first.ID, "bia", "Parabéns!"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if _, err := e.ToggleLike(ctx, first.ID, "bia"); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if _, err := e.ToggleLike(ctx, first.ID, "ana"); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}

	feed, err := e.FetchFeed(ctx, "bia")
	if err != nil {
		t.Fatalf("FetchFeed: %v", err)
	}
	if len(feed) != 2 || feed[0].ID != second.ID || feed[1].ID != first.ID {
		t.Fatalf("feed not newest first: %+v", feed)
	}

	p := feed[1]
	if !p.IsLikedByUser || p.LikesCount != 2 || p.CommentsCount != 1 {
		t.Errorf("post annotations wrong: liked=%v likes=%d comments=%d", p.IsLikedByUser, p.LikesCount, p.CommentsCount)
	}
	if p.AuthorName != "ana@example.com" {
		t.Errorf("AuthorName = %q", p.AuthorName)
	}
	if len(p.Comments) != 1 || p.Comments[0].AuthorName != "bia@example.com" || p.Comments[0].Content != "Parabéns!" {
		t.Errorf("comments = %+v", p.Comments)
	}
	if feed[0].AuthorName != core.AnonymousDisplayName || feed[0].IsLikedByUser {
		t.Errorf("unknown author post = %+v", feed[0])
	}

	anon, err := e.FetchFeed(ctx, "")
	if err != nil {
		t.Fatalf("anonymous FetchFeed: %v", err)
	}
	if anon[1].IsLikedByUser {
		t.Error("anonymous viewer cannot have liked a post")
	}
}

func TestEngine_IdentityCache(t *testing.T) {
	ctx := context.Background()
	e, _, cs := newEngine(t)
	_, _ = e.CreatePost(ctx, "ana", "oi")

	for i := 0; i < 3; i++ {
		if _, err := e.FetchFeed(ctx, "ana"); err != nil {
			t.Fatal(err)
		}
	}
	if n := cs.resolveCalls.Load(); n != 1 {
		t.Errorf("ResolveIdentities called %d times, want 1", n)
	}
}

func TestEngine_IdentityFailureDegrades(t *testing.T) {
	ctx := context.Background()
	e, _, cs := newEngine(t)
	_, _ = e.CreatePost(ctx, "ana", "oi")
	cs.failResolve = errors.New("profiles unavailable")

	feed, err := e.FetchFeed(ctx, "ana")
	if err != nil {
		t.Fatalf("identity failure must not fail the feed: %v", err)
	}
	if feed[0].AuthorName != core.AnonymousDisplayName {
		t.Errorf("AuthorName = %q", feed[0].AuthorName)
	}
}

func TestEngine_FetchFeedRemoteFailure(t *testing.T) {
	ctx := context.Background()
	e, _, cs := newEngine(t)
	_, _ = e.CreatePost(ctx, "ana", "oi")
	cs.failComments = errors.New("timeout")

	_, err := e.FetchFeed(ctx, "ana")
	if !core.IsRemote(err) {
		t.Fatalf("expected RemoteOperationError, got %v", err)
	}
}

func TestEngine_ToggleLikeTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	e, mem, _ := newEngine(t)
	p, _ := e.CreatePost(ctx, "ana", "oi")
	like := core.Like{PostID: p.ID, UserID: "bia"}

	liked, err := e.ToggleLike(ctx, p.ID, "bia")
	if err != nil || !liked {
		t.Fatalf("first toggle = %v, %v", liked, err)
	}
	liked, err = e.ToggleLike(ctx, p.ID, "bia")
	if err != nil || liked {
		t.Fatalf("second toggle = %v, %v", liked, err)
	}
	if has, _ := mem.HasLike(ctx, like); has {
		t.Error("like row should be gone after two toggles")
	}
}

func TestEngine_MutationValidation(t *testing.T) {
	ctx := context.Background()
	e, mem, _ := newEngine(t)
	p, _ := e.CreatePost(ctx, "ana", "oi")

	tests := []struct {
		name    string
		run     func() error
		wantErr func(error) bool
	}{
		{
			name:    "blank comment",
			run:     func() error { _, err := e.AddComment(ctx, p.ID, "bia", " \t\n"); return err },
			wantErr: core.IsValidation,
		},
		{
			name:    "comment without user",
			run:     func() error { _, err := e.AddComment(ctx, p.ID, "", "oi"); return err },
			wantErr: func(err error) bool { return errors.Is(err, core.ErrNotAuthenticated) },
		},
		{
			name:    "blank post",
			run:     func() error { _, err := e.CreatePost(ctx, "ana", ""); return err },
			wantErr: core.IsValidation,
		},
		{
			name:    "post without user",
			run:     func() error { _, err := e.CreatePost(ctx, "", "oi"); return err },
			wantErr: func(err error) bool { return errors.Is(err, core.ErrNotAuthenticated) },
		},
		{
			name:    "like without user",
			run:     func() error { _, err := e.ToggleLike(ctx, p.ID, ""); return err },
			wantErr: func(err error) bool { return errors.Is(err, core.ErrNotAuthenticated) },
		},
		{
			name:    "like with malformed post id",
			run:     func() error { _, err := e.ToggleLike(ctx, "not-a-post", "bia"); return err },
			wantErr: core.IsValidation,
		},
		{
			name: "like on missing post",
			run:  func() error { _, err := e.ToggleLike(ctx, uuid.NewString(), "bia"); return err },
			wantErr: func(err error) bool {
				return errors.Is(err, core.ErrNotFound) && !core.IsRemote(err)
			},
		},
		{
			name: "comment on missing post",
			run:  func() error { _, err := e.AddComment(ctx, uuid.NewString(), "bia", "oi"); return err },
			wantErr: func(err error) bool {
				return errors.Is(err, core.ErrNotFound) && !core.IsRemote(err)
			},
		},
		{
			name:    "post over 2000 characters",
			run:     func() error { _, err := e.CreatePost(ctx, "ana", strings.Repeat("é", 2001)); return err },
			wantErr: core.IsValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !tt.wantErr(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}

	comments, _ := mem.CommentsForPosts(ctx, []string{p.ID})
	if len(comments[p.ID]) != 0 {
		t.Errorf("rejected comments must not be inserted: %+v", comments)
	}
	posts, _ := mem.ListPosts(ctx, 0)
	if len(posts) != 1 {
		t.Errorf("rejected posts must not be inserted: %d posts", len(posts))
	}
}

func TestEngine_AccentedContentCountsCharacters(t *testing.T) {
	e, _, _ := newEngine(t)
	if _, err := e.CreatePost(context.Background(), "ana", strings.Repeat("é", 2000)); err != nil {
		t.Fatalf("2000 accented characters should be accepted: %v", err)
	}
}

func TestEngine_FetchFeedReturnsEveryPost(t *testing.T) {
	ctx := context.Background()
	e, mem, _ := newEngine(t)
	const total = 75
	for i := 0; i < total; i++ {
		if _, err := e.CreatePost(ctx, "ana", fmt.Sprintf("post %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	feed, err := e.FetchFeed(ctx, "bia")
	if err != nil {
		t.Fatalf("FetchFeed: %v", err)
	}
	if len(feed) != total {
		t.Fatalf("feed returned %d posts, want %d", len(feed), total)
	}

	limited := NewEngine(mem, nil, WithFeedLimit(10))
	feed, err = limited.FetchFeed(ctx, "bia")
	if err != nil {
		t.Fatalf("FetchFeed: %v", err)
	}
	if len(feed) != 10 {
		t.Errorf("limited feed returned %d posts, want 10", len(feed))
	}
}

func TestEngine_RecordIdentity(t *testing.T) {
	ctx := context.Background()
	e, _, cs := newEngine(t)

	if _, err := e.CreatePost(ctx, "carla", "Primeira meta"); err != nil {
		t.Fatal(err)
	}
	feed, _ := e.FetchFeed(ctx, "carla")
	if feed[0].AuthorName != core.AnonymousDisplayName {
		t.Fatalf("unrecorded author = %q", feed[0].AuthorName)
	}

	for i := 0; i < 3; i++ {
		if err := e.RecordIdentity(ctx, "carla", "carla@example.com"); err != nil {
			t.Fatalf("RecordIdentity: %v", err)
		}
	}
	if n := cs.recordCalls.Load(); n != 1 {
		t.Errorf("store written %d times for an unchanged identity, want 1", n)
	}
	feed, _ = e.FetchFeed(ctx, "carla")
	if feed[0].AuthorName != "carla@example.com" {
		t.Errorf("AuthorName = %q after recording identity", feed[0].AuthorName)
	}

	if err := e.RecordIdentity(ctx, "carla", "carla@novo.com"); err != nil {
		t.Fatal(err)
	}
	feed, _ = e.FetchFeed(ctx, "carla")
	if feed[0].AuthorName != "carla@novo.com" {
		t.Errorf("changed email not reflected: %q", feed[0].AuthorName)
	}

	if err := e.RecordIdentity(ctx, "carla", "  "); err != nil || cs.recordCalls.Load() != 2 {
		t.Errorf("blank email should be skipped: err=%v writes=%d", err, cs.recordCalls.Load())
	}
}

func TestFeed_StateMachine(t *testing.T) {
	ctx := context.Background()
	e, _, cs := newEngine(t)
	f := NewFeed(e)

	if f.State() != Idle {
		t.Fatalf("initial state = %v", f.State())
	}
	if err := f.SetUser(ctx, "ana"); err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	if f.State() != Ready || len(f.Posts()) != 0 {
		t.Fatalf("state = %v posts = %d", f.State(), len(f.Posts()))
	}

	if err := f.CreatePost(ctx, "Meta batida!"); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	posts := f.Posts()
	if len(posts) != 1 {
		t.Fatalf("feed not refreshed after post: %d", len(posts))
	}

	if err := f.ToggleLike(ctx, posts[0].ID); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if p := f.Posts()[0]; !p.IsLikedByUser || p.LikesCount != 1 {
		t.Fatalf("like not reflected after refresh: %+v", p)
	}

	cs.failInsert = errors.New("write rejected")
	err := f.AddComment(ctx, posts[0].ID, "oi")
	if !core.IsRemote(err) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if f.Err() == nil || len(f.Posts()) != 1 || f.State() != Ready {
		t.Fatalf("failed mutation altered shown state")
	}

	cs.failComments = errors.New("offline")
	if err := f.Refresh(ctx); err == nil {
		t.Fatal("expected refresh error")
	}
	if f.State() != Ready || len(f.Posts()) != 1 {
		t.Fatalf("failed refresh must keep shown posts: state=%v posts=%d", f.State(), len(f.Posts()))
	}

	if err := f.SetUser(ctx, ""); err == nil {
		t.Fatal("expected refresh error for new user while offline")
	}
	cs.failComments = nil
	if err := f.CreatePost(ctx, "sem login"); !errors.Is(err, core.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}
