package category

import (
	"strings"

	"dauvest/internal/core"
)

// Resolved is the label/icon pair stored on a transaction.
type Resolved struct {
	Label string
	Icon  string
}

// Resolve maps a category key chosen for a transaction of type t to its label
// and icon. A key found in the catalog of that type uses the catalog entry; an
// unknown key is kept verbatim as the label with no icon; an empty key falls
// back to the type default.
func Resolve(key string, t core.TransactionType) Resolved {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback(t)
	}
	if e, ok := lookup(key, t); ok {
		return Resolved{Label: e.Label, Icon: e.Icon}
	}
	return Resolved{Label: key}
}

// Apply resolves the input's category and builds the transaction fields that
// are persisted. The same path serves create and edit.
func Apply(id string, in core.TransactionInput) core.Transaction {
	r := Resolve(in.Category, in.Type)
	return core.Transaction{
		ID:          id,
		Type:        in.Type,
		Amount:      in.Amount,
		Category:    r.Label,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
		Icon:        r.Icon,
	}
}

func lookup(key string, t core.TransactionType) (Entry, bool) {
	var src []Entry
	switch t {
	case core.Income:
		src = incomeCatalog
	case core.Expense:
		src = expenseCatalog
	}
	for _, e := range src {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

func fallback(t core.TransactionType) Resolved {
	if t == core.Income {
		return Resolved{Label: incomeDefault.Label, Icon: incomeDefault.Icon}
	}
	return Resolved{Label: expenseDefault.Label, Icon: expenseDefault.Icon}
}
