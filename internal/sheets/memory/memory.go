// Package memory keeps the latest mirrored snapshot in process.
package memory

import (
	"context"
	"sync"

	"dauvest/internal/core"
	"dauvest/internal/sheets"
)

var _ sheets.LedgerMirror = (*Mirror)(nil)

type Mirror struct {
	mu           sync.Mutex
	transactions [][]any
	goals        [][]any
	writes       int
}

func New() *Mirror {
	return &Mirror{}
}

func (m *Mirror) WriteTransactions(_ context.Context, txs []core.Transaction) error {
	rows := sheets.TransactionRows(txs)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = rows
	m.writes++
	return nil
}

func (m *Mirror) WriteGoals(_ context.Context, goals []core.Goal) error {
	rows := sheets.GoalRows(goals)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals = rows
	m.writes++
	return nil
}

// TransactionRows returns the last written transaction sheet, header included.
func (m *Mirror) TransactionRows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]any(nil), m.transactions...)
}

// GoalRows returns the last written goal sheet, header included.
func (m *Mirror) GoalRows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]any(nil), m.goals...)
}

// Writes counts snapshot writes of either kind.
func (m *Mirror) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
