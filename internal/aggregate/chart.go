// Package aggregate derives chart series, summaries and breakdowns from the
// current transaction sequence. Every function here is pure.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"dauvest/internal/core"
)

// MonthLabels are the bucket labels in calendar order.
var MonthLabels = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// MonthBucket accumulates one calendar month of the chart year.
type MonthBucket struct {
	Month    string          `json:"month"`
	Receitas decimal.Decimal `json:"receitas"`
	Despesas decimal.Decimal `json:"despesas"`
}

// MonthDiff is a bucket with its net result.
type MonthDiff struct {
	MonthBucket
	Diferenca decimal.Decimal `json:"diferenca"`
}

// GenerateChartData buckets the transactions of the current calendar year by
// month. Transactions dated in any other year are left out.
func GenerateChartData(txs []core.Transaction) []MonthBucket {
	return GenerateChartDataFor(time.Now().Year(), txs)
}

// GenerateChartDataFor is GenerateChartData for an explicit year.
func GenerateChartDataFor(year int, txs []core.Transaction) []MonthBucket {
	buckets := make([]MonthBucket, 12)
	for i := range buckets {
		buckets[i] = MonthBucket{Month: MonthLabels[i], Receitas: decimal.Zero, Despesas: decimal.Zero}
	}

	for _, tx := range txs {
		if tx.Date.IsZero() || tx.Date.Year() != year {
			continue
		}
		b := &buckets[int(tx.Date.Month())-1]
		switch tx.Type {
		case core.Income:
			b.Receitas = b.Receitas.Add(tx.Amount)
		case core.Expense:
			b.Despesas = b.Despesas.Add(tx.Amount)
		}
	}
	return buckets
}

// MonthlyComparison adds the month's net result to each bucket.
func MonthlyComparison(buckets []MonthBucket) []MonthDiff {
	out := make([]MonthDiff, len(buckets))
	for i, b := range buckets {
		out[i] = MonthDiff{MonthBucket: b, Diferenca: b.Receitas.Sub(b.Despesas)}
	}
	return out
}
