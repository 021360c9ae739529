package services

import (
	"context"
	"fmt"
	"log/slog"

	"dauvest/internal/amqp"
	"dauvest/internal/core"
	"dauvest/internal/ledger"
)

// ChangePublisher announces ledger mutations to downstream consumers.
type ChangePublisher interface {
	PublishLedgerChange(ctx context.Context, namespace string, op amqp.Operation, id string) error
}

// LedgerService orchestrates ledger writes and change propagation. The local
// write is authoritative; publishing is best effort.
type LedgerService struct {
	transactions *ledger.Transactions
	goals        *ledger.Goals
	publisher    ChangePublisher
}

func NewLedgerService(txs *ledger.Transactions, goals *ledger.Goals, publisher ChangePublisher) *LedgerService {
	return &LedgerService{
		transactions: txs,
		goals:        goals,
		publisher:    publisher,
	}
}

func (s *LedgerService) Transactions() []core.Transaction { return s.transactions.List() }

func (s *LedgerService) Goals() []core.Goal { return s.goals.List() }

func (s *LedgerService) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	tx, err := s.transactions.Create(ctx, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.publish(ctx, amqp.NamespaceTransactions, amqp.OpCreate, tx.ID)
	return tx, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	tx, err := s.transactions.Update(ctx, id, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	s.publish(ctx, amqp.NamespaceTransactions, amqp.OpUpdate, id)
	return tx, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.transactions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	s.publish(ctx, amqp.NamespaceTransactions, amqp.OpDelete, id)
	return nil
}

func (s *LedgerService) CreateGoal(ctx context.Context, in core.GoalInput) (core.Goal, error) {
	g, err := s.goals.Create(ctx, in)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	s.publish(ctx, amqp.NamespaceGoals, amqp.OpCreate, g.ID)
	return g, nil
}

func (s *LedgerService) UpdateGoal(ctx context.Context, id string, in core.GoalInput) (core.Goal, error) {
	g, err := s.goals.Update(ctx, id, in)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal %s: %w", id, err)
	}
	s.publish(ctx, amqp.NamespaceGoals, amqp.OpUpdate, id)
	return g, nil
}

func (s *LedgerService) DeleteGoal(ctx context.Context, id string) error {
	if err := s.goals.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	s.publish(ctx, amqp.NamespaceGoals, amqp.OpDelete, id)
	return nil
}

func (s *LedgerService) publish(ctx context.Context, namespace string, op amqp.Operation, id string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No change publisher configured, skipping", "namespace", namespace, "id", id)
		return
	}
	if err := s.publisher.PublishLedgerChange(ctx, namespace, op, id); err != nil {
		// The record is already saved locally.
		slog.ErrorContext(ctx, "Failed to publish ledger change",
			"namespace", namespace,
			"operation", op,
			"id", id,
			"error", err)
	}
}
