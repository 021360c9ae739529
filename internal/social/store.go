// Package social implements the community feed: reading posts annotated for a
// viewer, toggling likes, commenting and posting against a remote store.
package social

import (
	"context"

	"dauvest/internal/core"
)

// RemoteStore is the read/write contract the engine needs from the remote
// community backend. Batch methods take the full set of post ids of a feed
// page so a feed is assembled with a fixed number of queries.
type RemoteStore interface {
	// ListPosts returns posts newest first. A limit of 0 returns every post.
	ListPosts(ctx context.Context, limit int) ([]core.Post, error)
	// LikedPostIDs reports which of postIDs userID has liked.
	LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	LikeCounts(ctx context.Context, postIDs []string) (map[string]int, error)
	// CommentsForPosts groups comments by post id, oldest first within a post.
	CommentsForPosts(ctx context.Context, postIDs []string) (map[string][]core.Comment, error)
	// ResolveIdentities maps user ids to display identities. Unknown ids are
	// left out of the result.
	ResolveIdentities(ctx context.Context, userIDs []string) (map[string]string, error)
	// RecordIdentity stores the email userID signs in with.
	RecordIdentity(ctx context.Context, userID, email string) error

	HasLike(ctx context.Context, like core.Like) (bool, error)
	// InsertLike is a no-op when the like already exists. Rows for a post that
	// does not exist fail with core.ErrNotFound.
	InsertLike(ctx context.Context, like core.Like) error
	DeleteLike(ctx context.Context, like core.Like) error
	// InsertComment stores c and returns it with id and creation time set.
	InsertComment(ctx context.Context, c core.Comment) (core.Comment, error)
	// InsertPost stores p and returns it with id and creation time set.
	InsertPost(ctx context.Context, p core.Post) (core.Post, error)
}
