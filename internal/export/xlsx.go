// Package export renders the ledger as an XLSX workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"dauvest/internal/aggregate"
	"dauvest/internal/core"
	"dauvest/internal/sheets"
)

const (
	SheetTransactions = "Transações"
	SheetSummary      = "Resumo"
	SheetGoals        = "Metas"
)

// Workbook writes transactions, a yearly summary and goals as three sheets.
// Year selects the months shown in the summary.
func Workbook(w io.Writer, txs []core.Transaction, goals []core.Goal, year int) error {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the transactions sheet.
	if err := f.SetSheetName("Sheet1", SheetTransactions); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	if err := writeTransactions(f, txs); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create %s sheet: %w", SheetSummary, err)
	}
	if err := writeSummary(f, txs, year); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetGoals); err != nil {
		return fmt.Errorf("create %s sheet: %w", SheetGoals, err)
	}
	if err := writeGoals(f, goals); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Filename is the suggested download name for an export made at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("dauvest-%s.xlsx", t.Format("2006-01-02"))
}

func writeTransactions(f *excelize.File, txs []core.Transaction) error {
	if err := setRow(f, SheetTransactions, 1, sheets.TransactionHeader[1:]); err != nil {
		return err
	}
	for i, tx := range txs {
		row := []any{tx.Date.String(), sheets.TypeLabel(tx.Type), tx.Category, tx.Description, money(tx.Amount)}
		if err := setRow(f, SheetTransactions, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetTransactions, "A", "A", 12); err != nil {
		return err
	}
	return f.SetColWidth(SheetTransactions, "D", "D", 40)
}

func writeSummary(f *excelize.File, txs []core.Transaction, year int) error {
	s := aggregate.CalculateSummary(txs)
	largest := aggregate.LargestExpense(txs)

	rows := [][]any{
		{"Receitas", money(s.Income)},
		{"Despesas", money(s.Expenses)},
		{"Saldo", money(s.Balance)},
		{"Maior despesa", money(largest)},
		{},
		{fmt.Sprintf("Mês (%d)", year), "Receitas", "Despesas", "Diferença"},
	}
	for _, m := range aggregate.MonthlyComparison(aggregate.GenerateChartDataFor(year, txs)) {
		rows = append(rows, []any{m.Month, money(m.Receitas), money(m.Despesas), money(m.Diferenca)})
	}
	rows = append(rows, []any{}, []any{"Categoria", "Total"})
	for _, c := range aggregate.SortedBreakdown(aggregate.CategoryBreakdown(txs)) {
		rows = append(rows, []any{c.Name, money(c.Amount)})
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if err := setRow(f, SheetSummary, i+1, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 18)
}

func writeGoals(f *excelize.File, goals []core.Goal) error {
	if err := setRow(f, SheetGoals, 1, []any{"Meta", "Atual", "Objetivo", "Faltam", "Progresso (%)"}); err != nil {
		return err
	}
	for i, g := range goals {
		row := []any{g.Title, money(g.CurrentAmount), money(g.TargetAmount), money(core.Remaining(g)), core.Progress(g)}
		if err := setRow(f, SheetGoals, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
