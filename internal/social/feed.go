package social

import (
	"context"
	"sync"

	"dauvest/internal/core"
)

// State is the lifecycle of a feed view.
type State int

const (
	Idle State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Feed holds the posts shown to one viewer. Every mutation is followed by a
// full refresh instead of patching local state. A failed refresh or mutation
// leaves the posts already shown untouched.
type Feed struct {
	engine *Engine

	mu      sync.Mutex
	userID  string
	state   State
	posts   []core.FeedPost
	lastErr error
	gen     uint64
}

func NewFeed(engine *Engine) *Feed {
	return &Feed{engine: engine}
}

func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Posts returns the posts from the last successful refresh.
func (f *Feed) Posts() []core.FeedPost {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.FeedPost, len(f.posts))
	copy(out, f.posts)
	return out
}

// Err returns the error of the last refresh or mutation, if any.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *Feed) UserID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userID
}

// SetUser switches the viewing identity and reloads the feed.
func (f *Feed) SetUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	f.userID = userID
	f.mu.Unlock()
	return f.Refresh(ctx)
}

// Refresh reloads the feed. When refreshes overlap only the latest one
// publishes its result.
func (f *Feed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	userID := f.userID
	f.state = Loading
	f.mu.Unlock()

	posts, err := f.engine.FetchFeed(ctx, userID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return err
	}
	f.lastErr = err
	if err != nil {
		if f.posts == nil {
			f.state = Idle
		} else {
			f.state = Ready
		}
		return err
	}
	f.posts = posts
	f.state = Ready
	return nil
}

func (f *Feed) ToggleLike(ctx context.Context, postID string) error {
	_, err := f.engine.ToggleLike(ctx, postID, f.UserID())
	return f.afterMutation(ctx, err)
}

func (f *Feed) AddComment(ctx context.Context, postID, content string) error {
	_, err := f.engine.AddComment(ctx, postID, f.UserID(), content)
	return f.afterMutation(ctx, err)
}

func (f *Feed) CreatePost(ctx context.Context, content string) error {
	_, err := f.engine.CreatePost(ctx, f.UserID(), content)
	return f.afterMutation(ctx, err)
}

func (f *Feed) afterMutation(ctx context.Context, err error) error {
	if err != nil {
		f.mu.Lock()
		f.lastErr = err
		f.mu.Unlock()
		return err
	}
	return f.Refresh(ctx)
}
