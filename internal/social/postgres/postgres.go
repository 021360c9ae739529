// Package postgres is the community store backed by PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dauvest/internal/core"
)

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn, applies migrations and returns a ready store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := RunMigrations(pool); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool), nil
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// RecordIdentity upserts the profile email of userID. A display name set on
// the profile is kept and still wins over the email.
func (s *Store) RecordIdentity(ctx context.Context, userID, email string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (id, email)
		 VALUES ($1::uuid, $2)
		 ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email
		 WHERE profiles.email IS DISTINCT FROM EXCLUDED.email`,
		userID, email,
	)
	return err
}

// ListPosts returns posts newest first. A limit of 0 or less reads every post.
func (s *Store) ListPosts(ctx context.Context, limit int) ([]core.Post, error) {
	// LIMIT NULL means no limit.
	var lim *int
	if limit > 0 {
		lim = &limit
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, content, author_id::text, created_at
		 FROM community_posts
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		lim,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Post
	for rows.Next() {
		var p core.Post
		if err := rows.Scan(&p.ID, &p.Content, &p.AuthorID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT post_id::text
		 FROM likes
		 WHERE user_id = $1::uuid AND post_id = ANY($2::text[]::uuid[])`,
		userID, postIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	liked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		liked[id] = true
	}
	return liked, rows.Err()
}

func (s *Store) LikeCounts(ctx context.Context, postIDs []string) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT post_id::text, count(*)::int
		 FROM likes
		 WHERE post_id = ANY($1::text[]::uuid[])
		 GROUP BY post_id`,
		postIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func (s *Store) CommentsForPosts(ctx context.Context, postIDs []string) (map[string][]core.Comment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, post_id::text, author_id::text, content, created_at
		 FROM comments
		 WHERE post_id = ANY($1::text[]::uuid[])
		 ORDER BY created_at ASC, id ASC`,
		postIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]core.Comment)
	for rows.Next() {
		var c core.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		out[c.PostID] = append(out[c.PostID], c)
	}
	return out, rows.Err()
}

func (s *Store) ResolveIdentities(ctx context.Context, userIDs []string) (map[string]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, COALESCE(NULLIF(display_name, ''), email)
		 FROM profiles
		 WHERE id = ANY($1::text[]::uuid[])`,
		userIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(userIDs))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		if name != "" {
			out[id] = name
		}
	}
	return out, rows.Err()
}

func (s *Store) HasLike(ctx context.Context, like core.Like) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM likes WHERE post_id = $1::uuid AND user_id = $2::uuid)`,
		like.PostID, like.UserID,
	).Scan(&exists)
	return exists, err
}

func (s *Store) InsertLike(ctx context.Context, like core.Like) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO likes (post_id, user_id)
		 VALUES ($1::uuid, $2::uuid)
		 ON CONFLICT (post_id, user_id) DO NOTHING`,
		like.PostID, like.UserID,
	)
	return missingPost(like.PostID, err)
}

func (s *Store) DeleteLike(ctx context.Context, like core.Like) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM likes WHERE post_id = $1::uuid AND user_id = $2::uuid`,
		like.PostID, like.UserID,
	)
	return err
}

func (s *Store) InsertComment(ctx context.Context, c core.Comment) (core.Comment, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO comments (post_id, author_id, content)
		 VALUES ($1::uuid, $2::uuid, $3)
		 RETURNING id::text, created_at`,
		c.PostID, c.AuthorID, c.Content,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return core.Comment{}, missingPost(c.PostID, err)
	}
	return c, nil
}

func (s *Store) InsertPost(ctx context.Context, p core.Post) (core.Post, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO community_posts (content, author_id)
		 VALUES ($1, $2::uuid)
		 RETURNING id::text, created_at`,
		p.Content, p.AuthorID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return core.Post{}, err
	}
	p.LikesCount, p.CommentsCount = 0, 0
	return p, nil
}

// missingPost maps a foreign key violation on post_id to core.ErrNotFound.
func missingPost(postID string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return fmt.Errorf("post %s: %w", postID, core.ErrNotFound)
	}
	return err
}
