package extraction

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var reference = time.Date(2026, 5, 20, 15, 30, 0, 0, time.UTC)

func TestParse_Single(t *testing.T) {
	raw := `{"description": "Uber", "amount": 23.5, "date": "2026-05-19", "category_suggestion": "Transport", "is_essential": true, "confidence": 0.92, "expenses": []}`

	res, err := Parse(raw, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	single, ok := res.(SingleExpense)
	if !ok {
		t.Fatalf("expected SingleExpense, got %T", res)
	}
	e := single.Expense
	if e.Description != "Uber" || !e.Amount.Equal(decimal.RequireFromString("23.50")) {
		t.Errorf("unexpected expense %+v", e)
	}
	if e.Date.Format(DateLayout) != "2026-05-19" {
		t.Errorf("unexpected date %s", e.Date.Format(DateLayout))
	}
	if !e.IsEssential || e.Confidence != 0.92 {
		t.Errorf("unexpected flags %+v", e)
	}
}

func TestParse_Multiple(t *testing.T) {
	raw := `{"description": null, "amount": null, "date": null, "expenses": [
		{"description": "Lunch", "amount": 35, "date": "2026-05-20", "category_suggestion": "Food", "is_essential": false, "confidence": 0.8},
		{"description": "Bus", "amount": "4.40", "date": "2026-05-20", "category_suggestion": "Transport", "is_essential": true, "confidence": 0.9}
	]}`

	res, err := Parse(raw, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	multi, ok := res.(MultipleExpenses)
	if !ok {
		t.Fatalf("expected MultipleExpenses, got %T", res)
	}
	if len(multi.Expenses) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(multi.Expenses))
	}
	total := multi.Expenses[0].Amount.Add(multi.Expenses[1].Amount)
	if !total.Equal(decimal.RequireFromString("39.40")) {
		t.Errorf("expected exact decimal total 39.40, got %s", total)
	}
}

func TestParse_SingleElementList(t *testing.T) {
	raw := `{"expenses": [{"description": "Coffee", "amount": 7, "date": "2026-05-20", "category_suggestion": "Food"}]}`

	res, err := Parse(raw, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := res.(SingleExpense); !ok {
		t.Fatalf("expected SingleExpense, got %T", res)
	}
}

func TestParse_NotDetected(t *testing.T) {
	res, err := Parse(`{"error": "NOT_DETECTED"}`, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := res.(NotDetected); !ok {
		t.Fatalf("expected NotDetected, got %T", res)
	}
	if len(Expenses(res)) != 0 {
		t.Error("NotDetected must carry no expenses")
	}
}

func TestParse_FutureDateClamped(t *testing.T) {
	raw := `{"description": "Cinema", "amount": 40, "date": "2026-06-02", "category_suggestion": "Leisure", "is_essential": false, "confidence": 0.7}`

	res, err := Parse(raw, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := res.(SingleExpense).Expense.Date.Format(DateLayout)
	if got != "2026-05-20" {
		t.Errorf("expected date clamped to reference, got %s", got)
	}
}

func TestParse_CodeFence(t *testing.T) {
	raw := "```json\n{\"error\": \"NOT_DETECTED\"}\n```"
	res, err := Parse(raw, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := res.(NotDetected); !ok {
		t.Fatalf("expected NotDetected, got %T", res)
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"not_json":         "I think you spent 20 reais",
		"unknown_error":    `{"error": "RATE_LIMITED"}`,
		"missing_amount":   `{"description": "Uber", "date": "2026-05-20", "category_suggestion": "Transport"}`,
		"negative_amount":  `{"description": "Uber", "amount": -3, "date": "2026-05-20", "category_suggestion": "Transport"}`,
		"bad_date":         `{"description": "Uber", "amount": 3, "date": "20/05/2026", "category_suggestion": "Transport"}`,
		"blank_desc":       `{"description": "  ", "amount": 3, "date": "2026-05-20", "category_suggestion": "Transport"}`,
		"bad_list_element": `{"expenses": [{"description": "A", "amount": 1, "date": "2026-05-20", "category_suggestion": "x"}, {"description": "B"}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(raw, reference)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("gastei 20 reais de uber ontem", reference, "BRL")

	for _, want := range []string{"2026-05-20", "2026-05-19", "BRL", "NOT_DETECTED", "gastei 20 reais de uber ontem"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt should contain %q", want)
		}
	}
}
