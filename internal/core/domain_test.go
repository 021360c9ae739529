package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, 3, 7)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-03-07"` {
		t.Fatalf("unexpected encoding %s", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}

	var ts Date
	if err := json.Unmarshal([]byte(`"2025-03-07T15:04:05Z"`), &ts); err != nil {
		t.Fatalf("timestamp: %v", err)
	}
	if ts.String() != "2025-03-07" {
		t.Fatalf("timestamp truncated to %s", ts)
	}

	if err := json.Unmarshal([]byte(`"07/03/2025"`), &ts); err == nil {
		t.Fatalf("expected error for non-ISO date")
	}
}

func TestTransactionInputValidate(t *testing.T) {
	good := TransactionInput{
		Type:        Expense,
		Amount:      decimal.NewFromInt(10),
		Description: "Supermercado mensal",
		Date:        NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := good
	zero.Amount = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be accepted, got %v", err)
	}

	accented := good
	accented.Description = strings.Repeat("ç", 200)
	if err := accented.Validate(); err != nil {
		t.Fatalf("200 accented characters should be accepted, got %v", err)
	}
	accented.Description += "ã"
	if err := accented.Validate(); !IsValidation(err) {
		t.Fatalf("201 characters should be rejected, got %v", err)
	}

	bads := map[string]TransactionInput{
		"type":        {Type: "transfer", Amount: decimal.NewFromInt(1), Description: "a", Date: NewDate(2025, 1, 1)},
		"amount":      {Type: Income, Amount: decimal.NewFromInt(-1), Description: "a", Date: NewDate(2025, 1, 1)},
		"description": {Type: Income, Amount: decimal.NewFromInt(1), Description: "   ", Date: NewDate(2025, 1, 1)},
		"date":        {Type: Income, Amount: decimal.NewFromInt(1), Description: "a"},
	}
	for field, in := range bads {
		err := in.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", field, err)
		}
		if ve.Field != field {
			t.Fatalf("expected field %s, got %s", field, ve.Field)
		}
	}
}

func TestGoalInputNormalize(t *testing.T) {
	in := GoalInput{Title: "  Viagem  ", TargetAmount: decimal.NewFromInt(100)}.Normalize()
	if in.Title != "Viagem" {
		t.Fatalf("title not trimmed: %q", in.Title)
	}
	if in.Color != DefaultGoalColor {
		t.Fatalf("expected default color, got %q", in.Color)
	}
	if !in.CurrentAmount.IsZero() {
		t.Fatalf("expected zero current amount")
	}
	if err := (GoalInput{}).Validate(); !IsValidation(err) {
		t.Fatalf("expected validation error for empty title, got %v", err)
	}
}

func TestProgressAndRemaining(t *testing.T) {
	cases := []struct {
		current, target string
		progress        int64
		remaining       string
	}{
		{"250", "1000", 25, "750"},
		{"0", "1000", 0, "1000"},
		{"1000", "1000", 100, "0"},
		{"1500", "1000", 150, "-500"},
		{"1", "3", 33, "2"},
		{"2", "3", 67, "1"},
		{"5", "1000", 1, "995"}, // 0.5 rounds up
		{"-100", "1000", -10, "1100"},
		{"100", "0", 0, "-100"},
	}
	for _, tc := range cases {
		g := Goal{
			CurrentAmount: decimal.RequireFromString(tc.current),
			TargetAmount:  decimal.RequireFromString(tc.target),
		}
		if got := Progress(g); got != tc.progress {
			t.Errorf("Progress(%s/%s) = %d, want %d", tc.current, tc.target, got, tc.progress)
		}
		if got := Remaining(g); !got.Equal(decimal.RequireFromString(tc.remaining)) {
			t.Errorf("Remaining(%s/%s) = %s, want %s", tc.current, tc.target, got, tc.remaining)
		}
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("connection reset")
	err := Remote("insert comment", cause)
	if !IsRemote(err) || !errors.Is(err, cause) {
		t.Fatalf("expected remote error wrapping cause, got %v", err)
	}
	if again := Remote("outer", err); again != err {
		t.Fatalf("expected remote error not to be wrapped twice")
	}
	if Remote("noop", nil) != nil {
		t.Fatalf("expected nil for nil cause")
	}
	missing := fmt.Errorf("post p-1: %w", ErrNotFound)
	if got := Remote("add like", missing); IsRemote(got) || !errors.Is(got, ErrNotFound) {
		t.Fatalf("missing rows must not be reported as remote failures, got %v", got)
	}

	de := &DecodeError{Key: "goals", Err: cause}
	if !errors.Is(de, cause) {
		t.Fatalf("decode error should unwrap")
	}
}
