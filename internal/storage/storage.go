// Package storage keeps the durable records behind the ledger: one value per
// fixed key ("transactions", "goals").
package storage

import (
	"context"
	"sync"
)

// Record keys.
const (
	KeyTransactions = "transactions"
	KeyGoals        = "goals"
)

// KV is the durable record store the ledger persists through.
type KV interface {
	// Get returns the stored value. ok is false when nothing was stored yet.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put replaces the stored value.
	Put(ctx context.Context, key string, value []byte) error
}

// MemoryKV is a process-local KV. Values do not survive a restart; it backs
// tests and the "memory" data backend.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}
