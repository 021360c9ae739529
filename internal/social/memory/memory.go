// Package memory is an in-process community store for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"dauvest/internal/core"
)

type Store struct {
	mu         sync.RWMutex
	posts      map[string]core.Post
	comments   map[string]core.Comment
	likes      map[core.Like]struct{}
	identities map[string]string
	now        func() time.Time
}

func New() *Store {
	return &Store{
		posts:      make(map[string]core.Post),
		comments:   make(map[string]core.Comment),
		likes:      make(map[core.Like]struct{}),
		identities: make(map[string]string),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) RecordIdentity(_ context.Context, userID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[userID] = email
	return nil
}

func (s *Store) ListPosts(_ context.Context, limit int) ([]core.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) LikedPostIDs(_ context.Context, userID string, postIDs []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	liked := make(map[string]bool)
	for _, id := range postIDs {
		if _, ok := s.likes[core.Like{PostID: id, UserID: userID}]; ok {
			liked[id] = true
		}
	}
	return liked, nil
}

func (s *Store) LikeCounts(_ context.Context, postIDs []string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := toSet(postIDs)
	counts := make(map[string]int)
	for l := range s.likes {
		if _, ok := wanted[l.PostID]; ok {
			counts[l.PostID]++
		}
	}
	return counts, nil
}

func (s *Store) CommentsForPosts(_ context.Context, postIDs []string) (map[string][]core.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := toSet(postIDs)
	out := make(map[string][]core.Comment)
	for _, c := range s.comments {
		if _, ok := wanted[c.PostID]; ok {
			out[c.PostID] = append(out[c.PostID], c)
		}
	}
	for _, cs := range out {
		sort.Slice(cs, func(i, j int) bool {
			if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
				return cs[i].CreatedAt.Before(cs[j].CreatedAt)
			}
			return cs[i].ID < cs[j].ID
		})
	}
	return out, nil
}

func (s *Store) ResolveIdentities(_ context.Context, userIDs []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if name, ok := s.identities[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func (s *Store) HasLike(_ context.Context, like core.Like) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.likes[like]
	return ok, nil
}

func (s *Store) InsertLike(_ context.Context, like core.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[like.PostID]; !ok {
		return fmt.Errorf("post %s: %w", like.PostID, core.ErrNotFound)
	}
	s.likes[like] = struct{}{}
	return nil
}

func (s *Store) DeleteLike(_ context.Context, like core.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.likes, like)
	return nil
}

func (s *Store) InsertComment(_ context.Context, c core.Comment) (core.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[c.PostID]; !ok {
		return core.Comment{}, fmt.Errorf("post %s: %w", c.PostID, core.ErrNotFound)
	}
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	s.comments[c.ID] = c
	return c, nil
}

func (s *Store) InsertPost(_ context.Context, p core.Post) (core.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = s.now()
	p.LikesCount, p.CommentsCount = 0, 0
	s.posts[p.ID] = p
	return p, nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
