// Package ledger is the client's source of truth for transactions and goals.
// Each sequence lives in memory and is written through to one durable record
// on every mutation.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	json "github.com/goccy/go-json"

	"dauvest/internal/core"
	"dauvest/internal/storage"
)

// Placement decides where Create puts a new item.
type Placement int

const (
	Prepend Placement = iota
	Append
)

// Store is an ordered, id-addressed sequence persisted under one key.
// It assumes a single writing session owns the record.
type Store[T any] struct {
	mu        sync.Mutex
	kv        storage.KV
	key       string
	placement Placement
	idOf      func(T) string
	items     []T
}

// Open loads the sequence stored under key. A missing or undecodable record
// yields an empty sequence; only a failing read of the store is an error.
func Open[T any](ctx context.Context, kv storage.KV, key string, placement Placement, idOf func(T) string) (*Store[T], error) {
	s := &Store[T]{kv: kv, key: key, placement: placement, idOf: idOf}

	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return s, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		derr := &core.DecodeError{Key: key, Err: err}
		slog.WarnContext(ctx, "Discarding unreadable ledger record", "key", key, "error", derr)
		return s, nil
	}
	s.items = items
	return s, nil
}

// List returns a copy of the sequence in stored order.
func (s *Store[T]) List() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.items...)
}

func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Insert places item according to the store's placement and persists.
func (s *Store[T]) Insert(ctx context.Context, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]T, 0, len(s.items)+1)
	if s.placement == Prepend {
		next = append(next, item)
		next = append(next, s.items...)
	} else {
		next = append(next, s.items...)
		next = append(next, item)
	}
	return s.commit(ctx, next)
}

// Replace swaps the item with the given id in place, keeping its position.
func (s *Store[T]) Replace(ctx context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%s %s: %w", s.key, id, core.ErrNotFound)
	}
	next := append([]T(nil), s.items...)
	next[i] = item
	return s.commit(ctx, next)
}

// Remove deletes the item with the given id. Removing an absent id is a no-op.
func (s *Store[T]) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	next := make([]T, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	next = append(next, s.items[i+1:]...)
	return s.commit(ctx, next)
}

// commit persists next and only then makes it visible. s.mu must be held.
func (s *Store[T]) commit(ctx context.Context, next []T) error {
	raw, err := encode(next)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}
	if err := s.kv.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("persist %s: %w", s.key, err)
	}
	s.items = next
	return nil
}

func (s *Store[T]) indexOf(id string) int {
	for i, item := range s.items {
		if s.idOf(item) == id {
			return i
		}
	}
	return -1
}

func encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}
