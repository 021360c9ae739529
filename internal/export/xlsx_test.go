package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"dauvest/internal/core"
)

func TestWorkbook(t *testing.T) {
	txs := []core.Transaction{
		{ID: "2", Type: core.Expense, Amount: decimal.NewFromInt(400), Category: "Moradia", Description: "Aluguel", Date: core.NewDate(2025, 3, 10)},
		{ID: "1", Type: core.Income, Amount: decimal.NewFromInt(1000), Category: "Salário", Description: "Salário", Date: core.NewDate(2025, 3, 5)},
	}
	goals := []core.Goal{{ID: "g", Title: "Viagem", CurrentAmount: decimal.NewFromInt(250), TargetAmount: decimal.NewFromInt(1000)}}

	var buf bytes.Buffer
	if err := Workbook(&buf, txs, goals, 2025); err != nil {
		t.Fatalf("Workbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) != 3 || names[0] != SheetTransactions || names[1] != SheetSummary || names[2] != SheetGoals {
		t.Fatalf("sheets = %v", names)
	}

	rows, err := f.GetRows(SheetTransactions)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[1][3] != "Aluguel" || rows[1][1] != "Despesa" || rows[1][4] != "400" {
		t.Fatalf("transaction rows = %v", rows)
	}

	balance, _ := f.GetCellValue(SheetSummary, "B3")
	if balance != "600" {
		t.Errorf("balance cell = %q, want 600", balance)
	}
	march, _ := f.GetRows(SheetSummary)
	// header row for months is row 6, March is row 9
	if got := march[8]; got[0] != "Mar" || got[1] != "1000" || got[2] != "400" || got[3] != "600" {
		t.Errorf("march row = %v", got)
	}

	progress, _ := f.GetCellValue(SheetGoals, "E2")
	remaining, _ := f.GetCellValue(SheetGoals, "D2")
	if progress != "25" || remaining != "750" {
		t.Errorf("goal progress=%q remaining=%q", progress, remaining)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(time.Date(2025, 8, 1, 15, 0, 0, 0, time.UTC)); got != "dauvest-2025-08-01.xlsx" {
		t.Errorf("Filename = %s", got)
	}
}
