package core

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DateLayout is the ISO calendar date layout used for persistence and the API.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
		Icon        string          `json:"icon,omitempty"`
	}

	// TransactionInput carries user-submitted fields. Category is the catalog
	// key chosen in the form, possibly empty.
	TransactionInput struct {
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
	}

	Goal struct {
		ID            string          `json:"id"`
		Title         string          `json:"title"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		Color         string          `json:"color"`
	}

	GoalInput struct {
		Title         string          `json:"title"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		Color         string          `json:"color"`
	}
)

// DefaultGoalColor is used when a goal is saved without a color.
const DefaultGoalColor = "#0ea5e9"

// GoalColors is the palette offered by goal forms.
var GoalColors = []string{
	"#0ea5e9", "#3b82f6", "#8b5cf6", "#ef4444", "#10b981", "#f59e0b", "#ec4899", "#06b6d4",
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		// Accept full timestamps written by older clients.
		ts, terr := time.Parse(time.RFC3339, s)
		if terr != nil {
			return err
		}
		parsed = NewDate(ts.Year(), int(ts.Month()), ts.Day())
	}
	*d = parsed
	return nil
}

func (in TransactionInput) Validate() error {
	if !in.Type.Valid() {
		return &ValidationError{Field: "type", Message: "must be income or expense"}
	}
	if in.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Message: "must not be negative"}
	}
	if strings.TrimSpace(in.Description) == "" {
		return &ValidationError{Field: "description", Message: "is required"}
	}
	if utf8.RuneCountInString(in.Description) > 200 {
		return &ValidationError{Field: "description", Message: "too long (max 200 characters)"}
	}
	if in.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "is required"}
	}
	return nil
}

func (in GoalInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	return nil
}

// Normalize fills the defaults a goal form applies on save.
func (in GoalInput) Normalize() GoalInput {
	in.Title = strings.TrimSpace(in.Title)
	if strings.TrimSpace(in.Color) == "" {
		in.Color = DefaultGoalColor
	}
	return in
}

// Progress returns the completion percentage rounded to the nearest integer,
// halves rounding up. A zero target yields 0.
func Progress(g Goal) int64 {
	if g.TargetAmount.IsZero() {
		return 0
	}
	ratio := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100))
	return ratio.Add(decimal.New(5, -1)).Floor().IntPart()
}

// Remaining is the amount still missing to reach the target. It is negative
// when the goal is over-funded.
func Remaining(g Goal) decimal.Decimal {
	return g.TargetAmount.Sub(g.CurrentAmount)
}
