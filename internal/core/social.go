package core

import "time"

// AnonymousDisplayName is shown for authors whose identity cannot be resolved.
const AnonymousDisplayName = "Usuário"

type (
	Post struct {
		ID            string    `json:"id"`
		Content       string    `json:"content"`
		AuthorID      string    `json:"authorId"`
		CreatedAt     time.Time `json:"createdAt"`
		LikesCount    int       `json:"likesCount"`
		CommentsCount int       `json:"commentsCount"`
	}

	Comment struct {
		ID        string    `json:"id"`
		PostID    string    `json:"postId"`
		AuthorID  string    `json:"authorId"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"createdAt"`
	}

	Like struct {
		PostID string `json:"postId"`
		UserID string `json:"userId"`
	}

	// FeedComment is a comment resolved to its author's display identity.
	FeedComment struct {
		Comment
		AuthorName string `json:"authorName"`
	}

	// FeedPost is a post annotated for one viewing user. LikesCount and
	// CommentsCount are counted from the underlying rows when the feed is read.
	FeedPost struct {
		Post
		AuthorName    string        `json:"authorName"`
		IsLikedByUser bool          `json:"isLikedByUser"`
		Comments      []FeedComment `json:"comments"`
	}
)
