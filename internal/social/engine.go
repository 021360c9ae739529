package social

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dauvest/internal/cache"
	"dauvest/internal/core"
)

// DefaultFeedLimit is the feed size when no limit is configured: every post.
const DefaultFeedLimit = 0

const maxContentLength = 2000

type Engine struct {
	store      RemoteStore
	identities cache.Cache[string]
	// recorded remembers the last email written per user so repeat requests
	// skip the profile upsert.
	recorded *cache.LRUCache[string]
	limit    int
}

type Option func(*Engine)

// WithFeedLimit caps the posts a feed read returns. 0 returns every post.
func WithFeedLimit(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.limit = n
		}
	}
}

// NewEngine builds an engine over store. identities may be nil, in which
// case every feed read resolves authors against the store.
func NewEngine(store RemoteStore, identities cache.Cache[string], opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		identities: identities,
		recorded:   cache.NewLRUCache[string](1024, time.Hour),
		limit:      DefaultFeedLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FetchFeed returns posts newest first, each annotated for userID with its
// like state, its comments oldest first and counters computed from the
// underlying rows. An empty userID reads the feed anonymously.
func (e *Engine) FetchFeed(ctx context.Context, userID string) ([]core.FeedPost, error) {
	posts, err := e.store.ListPosts(ctx, e.limit)
	if err != nil {
		return nil, core.Remote("list posts", err)
	}
	if len(posts) == 0 {
		return []core.FeedPost{}, nil
	}

	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	var (
		liked    map[string]bool
		counts   map[string]int
		comments map[string][]core.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	if userID != "" {
		g.Go(func() error {
			var err error
			liked, err = e.store.LikedPostIDs(gctx, userID, ids)
			return core.Remote("check likes", err)
		})
	}
	g.Go(func() error {
		var err error
		counts, err = e.store.LikeCounts(gctx, ids)
		return core.Remote("count likes", err)
	})
	g.Go(func() error {
		var err error
		comments, err = e.store.CommentsForPosts(gctx, ids)
		return core.Remote("list comments", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := e.displayNames(ctx, authorsOf(posts, comments))

	feed := make([]core.FeedPost, len(posts))
	for i, p := range posts {
		cs := comments[p.ID]
		fcs := make([]core.FeedComment, len(cs))
		for j, c := range cs {
			fcs[j] = core.FeedComment{Comment: c, AuthorName: nameOr(names, c.AuthorID)}
		}
		p.LikesCount = counts[p.ID]
		p.CommentsCount = len(cs)
		feed[i] = core.FeedPost{
			Post:          p,
			AuthorName:    nameOr(names, p.AuthorID),
			IsLikedByUser: liked[p.ID],
			Comments:      fcs,
		}
	}
	return feed, nil
}

// RecordIdentity stores the email a signed-in user presented so their posts
// and comments resolve to it. Unchanged identities are not written again.
func (e *Engine) RecordIdentity(ctx context.Context, userID, email string) error {
	email = strings.TrimSpace(email)
	if userID == "" || email == "" {
		return nil
	}
	if prev, ok := e.recorded.Get(userID); ok && prev == email {
		return nil
	}
	if err := e.store.RecordIdentity(ctx, userID, email); err != nil {
		return core.Remote("record identity", err)
	}
	e.recorded.Set(userID, email)
	if e.identities != nil {
		e.identities.Delete(userID)
	}
	return nil
}

// ToggleLike flips userID's like on postID and returns whether the post is
// now liked. The check and the write are separate remote calls.
func (e *Engine) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	if userID == "" {
		return false, core.ErrNotAuthenticated
	}
	if err := validPostID(postID); err != nil {
		return false, err
	}

	like := core.Like{PostID: postID, UserID: userID}
	exists, err := e.store.HasLike(ctx, like)
	if err != nil {
		return false, core.Remote("check like", err)
	}
	if exists {
		if err := e.store.DeleteLike(ctx, like); err != nil {
			return true, core.Remote("remove like", err)
		}
		return false, nil
	}
	if err := e.store.InsertLike(ctx, like); err != nil {
		return false, core.Remote("add like", err)
	}
	return true, nil
}

func (e *Engine) AddComment(ctx context.Context, postID, userID, content string) (core.Comment, error) {
	if userID == "" {
		return core.Comment{}, core.ErrNotAuthenticated
	}
	text, err := validContent(content)
	if err != nil {
		return core.Comment{}, err
	}
	if err := validPostID(postID); err != nil {
		return core.Comment{}, err
	}

	c, err := e.store.InsertComment(ctx, core.Comment{PostID: postID, AuthorID: userID, Content: text})
	if err != nil {
		return core.Comment{}, core.Remote("add comment", err)
	}
	return c, nil
}

func (e *Engine) CreatePost(ctx context.Context, userID, content string) (core.Post, error) {
	if userID == "" {
		return core.Post{}, core.ErrNotAuthenticated
	}
	text, err := validContent(content)
	if err != nil {
		return core.Post{}, err
	}

	p, err := e.store.InsertPost(ctx, core.Post{AuthorID: userID, Content: text})
	if err != nil {
		return core.Post{}, core.Remote("create post", err)
	}
	p.LikesCount, p.CommentsCount = 0, 0
	return p, nil
}

func validContent(content string) (string, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return "", &core.ValidationError{Field: "content", Message: "is required"}
	}
	if utf8.RuneCountInString(text) > maxContentLength {
		return "", &core.ValidationError{Field: "content", Message: "must be at most 2000 characters"}
	}
	return text, nil
}

func validPostID(postID string) error {
	if strings.TrimSpace(postID) == "" {
		return &core.ValidationError{Field: "postId", Message: "is required"}
	}
	if _, err := uuid.Parse(postID); err != nil {
		return &core.ValidationError{Field: "postId", Message: "is not a valid id"}
	}
	return nil
}

// displayNames resolves ids through the identity cache, asking the store only
// for misses. A failed lookup degrades to the anonymous name.
func (e *Engine) displayNames(ctx context.Context, ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	missing := ids
	if e.identities != nil {
		var hits map[string]string
		hits, missing = e.identities.GetMany(ids)
		for k, v := range hits {
			names[k] = v
		}
	}
	if len(missing) == 0 {
		return names
	}

	resolved, err := e.store.ResolveIdentities(ctx, missing)
	if err != nil {
		slog.WarnContext(ctx, "Failed to resolve author identities", "count", len(missing), "error", err)
		return names
	}
	for id, name := range resolved {
		names[id] = name
		if e.identities != nil {
			e.identities.Set(id, name)
		}
	}
	return names
}

func authorsOf(posts []core.Post, comments map[string][]core.Comment) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, p := range posts {
		add(p.AuthorID)
		for _, c := range comments[p.ID] {
			add(c.AuthorID)
		}
	}
	return ids
}

func nameOr(names map[string]string, id string) string {
	if n := strings.TrimSpace(names[id]); n != "" {
		return n
	}
	return core.AnonymousDisplayName
}
