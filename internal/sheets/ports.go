// Package sheets defines the spreadsheet mirror of the ledger and the row
// layout shared by its implementations.
package sheets

import (
	"context"

	"dauvest/internal/core"
)

// LedgerMirror receives full ledger snapshots. Each write replaces the
// previous content of the target sheet.
type LedgerMirror interface {
	WriteTransactions(ctx context.Context, txs []core.Transaction) error
	WriteGoals(ctx context.Context, goals []core.Goal) error
}

var (
	TransactionHeader = []any{"ID", "Data", "Tipo", "Categoria", "Descrição", "Valor"}
	GoalHeader        = []any{"ID", "Meta", "Atual", "Objetivo", "Progresso (%)", "Cor"}
)

// TypeLabel is the label a transaction type is written with.
func TypeLabel(t core.TransactionType) string {
	if t == core.Income {
		return "Receita"
	}
	return "Despesa"
}

// TransactionRows renders txs in ledger order below the header row.
func TransactionRows(txs []core.Transaction) [][]any {
	rows := make([][]any, 0, len(txs)+1)
	rows = append(rows, TransactionHeader)
	for _, tx := range txs {
		rows = append(rows, []any{
			tx.ID,
			tx.Date.String(),
			TypeLabel(tx.Type),
			tx.Category,
			tx.Description,
			tx.Amount.StringFixed(2),
		})
	}
	return rows
}

// GoalRows renders goals in ledger order below the header row.
func GoalRows(goals []core.Goal) [][]any {
	rows := make([][]any, 0, len(goals)+1)
	rows = append(rows, GoalHeader)
	for _, g := range goals {
		rows = append(rows, []any{
			g.ID,
			g.Title,
			g.CurrentAmount.StringFixed(2),
			g.TargetAmount.StringFixed(2),
			core.Progress(g),
			g.Color,
		})
	}
	return rows
}
