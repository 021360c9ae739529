package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"dauvest/internal/aggregate"
	"dauvest/internal/category"
	"dauvest/internal/core"
)

type transactionRequest struct {
	Type        string      `json:"type"`
	Amount      amountValue `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
}

func (req transactionRequest) input() (core.TransactionInput, error) {
	in := core.TransactionInput{
		Type:        core.TransactionType(strings.TrimSpace(req.Type)),
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
	}
	amount, err := parseAmountField("amount", req.Amount, true)
	if err != nil {
		return in, err
	}
	in.Amount = amount
	if strings.TrimSpace(req.Date) != "" {
		d, err := core.ParseDate(req.Date)
		if err != nil {
			return in, &core.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
		}
		in.Date = d
	}
	return in, nil
}

type goalRequest struct {
	Title         string      `json:"title"`
	CurrentAmount amountValue `json:"currentAmount"`
	TargetAmount  amountValue `json:"targetAmount"`
	Color         string      `json:"color"`
}

func (req goalRequest) input() (core.GoalInput, error) {
	in := core.GoalInput{Title: req.Title, Color: strings.TrimSpace(req.Color)}
	current, err := parseAmountField("currentAmount", req.CurrentAmount, false)
	if err != nil {
		return in, err
	}
	target, err := parseAmountField("targetAmount", req.TargetAmount, true)
	if err != nil {
		return in, err
	}
	in.CurrentAmount, in.TargetAmount = current, target
	return in, nil
}

// parseAmountField parses v. An empty optional amount is zero.
func parseAmountField(field string, v amountValue, required bool) (decimal.Decimal, error) {
	if strings.TrimSpace(string(v)) == "" {
		if required {
			return decimal.Zero, &core.ValidationError{Field: field, Message: "is required"}
		}
		return decimal.Zero, nil
	}
	d, err := core.ParseAmount(string(v))
	if err != nil {
		return decimal.Zero, &core.ValidationError{Field: field, Message: "must be a non-negative number"}
	}
	return d, nil
}

// goalView is a goal annotated with its progress figures.
type goalView struct {
	core.Goal
	Progress  int64           `json:"progress"`
	Remaining decimal.Decimal `json:"remaining"`
}

func viewGoal(g core.Goal) goalView {
	return goalView{Goal: g, Progress: core.Progress(g), Remaining: core.Remaining(g)}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := aggregate.Query{Search: q.Get("q")}

	switch t := q.Get("type"); t {
	case "", "all":
	case string(core.Income), string(core.Expense):
		query.Type = core.TransactionType(t)
	default:
		writeError(w, r, &core.ValidationError{Field: "type", Message: "must be all, income or expense"})
		return
	}

	switch sortBy := aggregate.SortBy(q.Get("sort")); sortBy {
	case "", aggregate.SortByDate, aggregate.SortByAmount:
		query.Sort = sortBy
	default:
		writeError(w, r, &core.ValidationError{Field: "sort", Message: "must be date or amount"})
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	query.Limit = limit

	writeJSON(w, http.StatusOK, query.Run(s.ledger.Transactions()))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.ledger.CreateTransaction(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.ledger.UpdateTransaction(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals := s.ledger.Goals()
	views := make([]goalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, viewGoal(g))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.ledger.CreateGoal(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewGoal(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.ledger.UpdateGoal(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewGoal(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteGoal(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch t := r.URL.Query().Get("type"); t {
	case "":
		writeJSON(w, http.StatusOK, map[string][]category.Entry{
			string(core.Income):  category.Catalog(core.Income),
			string(core.Expense): category.Catalog(core.Expense),
		})
	case string(core.Income), string(core.Expense):
		writeJSON(w, http.StatusOK, category.Catalog(core.TransactionType(t)))
	default:
		writeError(w, r, &core.ValidationError{Field: "type", Message: "must be income or expense"})
	}
}
