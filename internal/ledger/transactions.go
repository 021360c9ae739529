package ledger

import (
	"context"

	"github.com/google/uuid"

	"dauvest/internal/category"
	"dauvest/internal/core"
	"dauvest/internal/storage"
)

// Transactions is the transaction ledger. New transactions go first.
type Transactions struct {
	store *Store[core.Transaction]
	newID func() string
}

func OpenTransactions(ctx context.Context, kv storage.KV) (*Transactions, error) {
	s, err := Open(ctx, kv, storage.KeyTransactions, Prepend, func(t core.Transaction) string { return t.ID })
	if err != nil {
		return nil, err
	}
	return &Transactions{store: s, newID: uuid.NewString}, nil
}

func (l *Transactions) List() []core.Transaction { return l.store.List() }

func (l *Transactions) Get(id string) (core.Transaction, bool) { return l.store.Get(id) }

// Create validates in, resolves its category and stores it under a fresh id.
func (l *Transactions) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx := category.Apply(l.newID(), in)
	if err := l.store.Insert(ctx, tx); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// Update replaces every field of the transaction except its id and position.
func (l *Transactions) Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx := category.Apply(id, in)
	if err := l.store.Replace(ctx, id, tx); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (l *Transactions) Delete(ctx context.Context, id string) error {
	return l.store.Remove(ctx, id)
}
