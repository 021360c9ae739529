package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"dauvest/internal/core"
)

// Summary is the balance card data. No rounding is applied.
type Summary struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// CategoryAmount represents an amount aggregated by category label.
type CategoryAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"value"`
}

func CalculateSummary(txs []core.Transaction) Summary {
	income, expenses := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			income = income.Add(tx.Amount)
		case core.Expense:
			expenses = expenses.Add(tx.Amount)
		}
	}
	return Summary{Income: income, Expenses: expenses, Balance: income.Sub(expenses)}
}

// CategoryBreakdown sums expense amounts per category label.
func CategoryBreakdown(txs []core.Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		out[tx.Category] = out[tx.Category].Add(tx.Amount)
	}
	return out
}

// SortedBreakdown orders a breakdown by amount, largest first, then by name.
func SortedBreakdown(m map[string]decimal.Decimal) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(m))
	for name, amount := range m {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// LargestExpense returns the biggest single expense amount, or zero.
func LargestExpense(txs []core.Transaction) decimal.Decimal {
	max := decimal.Zero
	for _, tx := range txs {
		if tx.Type == core.Expense && tx.Amount.GreaterThan(max) {
			max = tx.Amount
		}
	}
	return max
}
