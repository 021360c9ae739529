package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"dauvest/internal/aggregate"
	"dauvest/internal/core"
	"dauvest/internal/export"
	"dauvest/internal/log"
)

const recentCount = 5

type overview struct {
	Summary        aggregate.Summary     `json:"summary"`
	LargestExpense decimal.Decimal       `json:"largestExpense"`
	Monthly        []aggregate.MonthDiff `json:"monthly"`
	Recent         []core.Transaction    `json:"recent"`
}

// yearParam reads ?year=, defaulting to the current year.
func (s *Server) yearParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("year")
	if v == "" {
		return s.now().Year(), nil
	}
	y, err := strconv.Atoi(v)
	if err != nil || y < 1 || y > 9999 {
		return 0, &core.ValidationError{Field: "year", Message: "must be a four digit year"}
	}
	return y, nil
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	year, err := s.yearParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, aggregate.GenerateChartDataFor(year, s.ledger.Transactions()))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, aggregate.CalculateSummary(s.ledger.Transactions()))
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	txs := s.ledger.Transactions()
	writeJSON(w, http.StatusOK, aggregate.SortedBreakdown(aggregate.CategoryBreakdown(txs)))
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	year, err := s.yearParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs := s.ledger.Transactions()
	writeJSON(w, http.StatusOK, overview{
		Summary:        aggregate.CalculateSummary(txs),
		LargestExpense: aggregate.LargestExpense(txs),
		Monthly:        aggregate.MonthlyComparison(aggregate.GenerateChartDataFor(year, txs)),
		Recent:         aggregate.Recent(txs, recentCount),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	year, err := s.yearParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Workbook(&buf, s.ledger.Transactions(), s.ledger.Goals(), year); err != nil {
		writeError(w, r, fmt.Errorf("export workbook: %w", err))
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Exported ledger workbook",
		log.FieldOperation, log.OpExport,
		"bytes", buf.Len())

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(s.now())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
