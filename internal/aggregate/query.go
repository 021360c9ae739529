package aggregate

import (
	"sort"
	"strings"

	"dauvest/internal/core"
)

// SortBy selects the ordering of a transaction query.
type SortBy string

const (
	SortByDate   SortBy = "date"
	SortByAmount SortBy = "amount"
)

// Query filters and orders a transaction list the way the transactions screen does.
type Query struct {
	// Type restricts to one transaction type; empty means all.
	Type core.TransactionType
	// Search matches description or category label, case-insensitively.
	Search string
	Sort   SortBy
	// Limit caps the result when positive.
	Limit int
}

// Result is a filtered list with the totals of what it contains.
type Result struct {
	Transactions []core.Transaction `json:"transactions"`
	Totals       Summary            `json:"totals"`
}

// Run applies q to txs without modifying txs.
func (q Query) Run(txs []core.Transaction) Result {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if q.Type != "" && tx.Type != q.Type {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(tx.Description), needle) &&
			!strings.Contains(strings.ToLower(tx.Category), needle) {
			continue
		}
		out = append(out, tx)
	}

	switch q.Sort {
	case SortByAmount:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.GreaterThan(out[j].Amount) })
	case SortByDate:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	}

	totals := CalculateSummary(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return Result{Transactions: out, Totals: totals}
}

// Recent returns the first n transactions in ledger order.
func Recent(txs []core.Transaction, n int) []core.Transaction {
	if n < 0 {
		n = 0
	}
	if len(txs) < n {
		n = len(txs)
	}
	return append([]core.Transaction(nil), txs[:n]...)
}
