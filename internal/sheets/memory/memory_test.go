package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"dauvest/internal/core"
)

func TestMirror_ReplacesSnapshot(t *testing.T) {
	ctx := context.Background()
	m := New()

	tx := core.Transaction{ID: "1", Type: core.Expense, Amount: decimal.NewFromInt(5), Description: "Café", Date: core.NewDate(2025, 1, 1)}
	_ = m.WriteTransactions(ctx, []core.Transaction{tx, tx})
	_ = m.WriteTransactions(ctx, []core.Transaction{tx})

	if rows := m.TransactionRows(); len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(rows))
	}
	_ = m.WriteGoals(ctx, nil)
	if rows := m.GoalRows(); len(rows) != 1 {
		t.Fatalf("empty goals should still write the header, got %d rows", len(rows))
	}
	if m.Writes() != 3 {
		t.Errorf("Writes() = %d, want 3", m.Writes())
	}
}
