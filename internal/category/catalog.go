// Package category resolves the category chosen on a transaction form into the
// label and icon that get persisted with the transaction.
package category

import "dauvest/internal/core"

// Entry is one selectable category.
type Entry struct {
	Key   string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

var (
	incomeCatalog = []Entry{
		{Key: "salary", Label: "Salário", Icon: "fas fa-money-bill-wave"},
		{Key: "freelance", Label: "Freelance", Icon: "fas fa-laptop-code"},
		{Key: "investment", Label: "Investimentos", Icon: "fas fa-chart-line"},
		{Key: "bonus", Label: "Bônus", Icon: "fas fa-gift"},
		{Key: "other", Label: "Outros", Icon: "fas fa-plus-circle"},
	}

	expenseCatalog = []Entry{
		{Key: "food", Label: "Alimentação", Icon: "fas fa-shopping-bag"},
		{Key: "transport", Label: "Transporte", Icon: "fas fa-car"},
		{Key: "housing", Label: "Moradia", Icon: "fas fa-home"},
		{Key: "entertainment", Label: "Lazer", Icon: "fas fa-film"},
		{Key: "health", Label: "Saúde", Icon: "fas fa-heartbeat"},
		{Key: "education", Label: "Educação", Icon: "fas fa-graduation-cap"},
		{Key: "shopping", Label: "Compras", Icon: "fas fa-shopping-cart"},
		{Key: "bills", Label: "Contas", Icon: "fas fa-file-invoice"},
	}

	// Defaults applied when no category was chosen.
	incomeDefault  = Entry{Label: "Outros", Icon: "generic-plus"}
	expenseDefault = Entry{Label: "Diversos", Icon: "generic-dot"}
)

// Catalog returns a copy of the categories offered for the given type.
func Catalog(t core.TransactionType) []Entry {
	var src []Entry
	switch t {
	case core.Income:
		src = incomeCatalog
	case core.Expense:
		src = expenseCatalog
	}
	return append([]Entry(nil), src...)
}
