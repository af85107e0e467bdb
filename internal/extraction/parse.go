package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const notDetectedCode = "NOT_DETECTED"

// ErrMalformedResponse is returned when the model's answer fits none of the result shapes.
var ErrMalformedResponse = errors.New("extraction: malformed model response")

type wireExpense struct {
	Description        *string          `json:"description"`
	Amount             *decimal.Decimal `json:"amount"`
	Date               *string          `json:"date"`
	CategorySuggestion *string          `json:"category_suggestion"`
	IsEssential        *bool            `json:"is_essential"`
	Confidence         *float64         `json:"confidence"`
}

type wireResponse struct {
	wireExpense
	Expenses []wireExpense `json:"expenses"`
	Error    *string       `json:"error"`
}

// Parse decodes the model's JSON answer. Dates after reference are clamped to it.
func Parse(raw string, reference time.Time) (Result, error) {
	body := stripCodeFence(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	var resp wireResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if resp.Error != nil {
		if *resp.Error == notDetectedCode {
			return NotDetected{}, nil
		}
		return nil, fmt.Errorf("%w: unknown error code %q", ErrMalformedResponse, *resp.Error)
	}

	if len(resp.Expenses) > 0 {
		expenses := make([]Expense, 0, len(resp.Expenses))
		for i, w := range resp.Expenses {
			e, err := w.toExpense(reference)
			if err != nil {
				return nil, fmt.Errorf("expense %d: %w", i, err)
			}
			expenses = append(expenses, e)
		}
		if len(expenses) == 1 {
			return SingleExpense{Expense: expenses[0]}, nil
		}
		return MultipleExpenses{Expenses: expenses}, nil
	}

	e, err := resp.wireExpense.toExpense(reference)
	if err != nil {
		return nil, err
	}
	return SingleExpense{Expense: e}, nil
}

func (w wireExpense) toExpense(reference time.Time) (Expense, error) {
	if w.Description == nil || strings.TrimSpace(*w.Description) == "" {
		return Expense{}, fmt.Errorf("%w: missing description", ErrMalformedResponse)
	}
	if w.Amount == nil {
		return Expense{}, fmt.Errorf("%w: missing amount", ErrMalformedResponse)
	}
	if w.Amount.IsNegative() {
		return Expense{}, fmt.Errorf("%w: negative amount %s", ErrMalformedResponse, w.Amount)
	}
	if w.Date == nil {
		return Expense{}, fmt.Errorf("%w: missing date", ErrMalformedResponse)
	}
	date, err := time.ParseInLocation(DateLayout, strings.TrimSpace(*w.Date), reference.Location())
	if err != nil {
		return Expense{}, fmt.Errorf("%w: bad date %q", ErrMalformedResponse, *w.Date)
	}
	if w.CategorySuggestion == nil {
		return Expense{}, fmt.Errorf("%w: missing category", ErrMalformedResponse)
	}

	e := Expense{
		Description:        strings.TrimSpace(*w.Description),
		Amount:             w.Amount.Round(2),
		Date:               clampDate(date, reference),
		CategorySuggestion: strings.TrimSpace(*w.CategorySuggestion),
	}
	if w.IsEssential != nil {
		e.IsEssential = *w.IsEssential
	}
	if w.Confidence != nil {
		e.Confidence = clampConfidence(*w.Confidence)
	}
	return e, nil
}

// clampDate keeps date on or before the reference day.
func clampDate(date, reference time.Time) time.Time {
	refDay := time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, reference.Location())
	if date.After(refDay) {
		return refDay
	}
	return date
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

// stripCodeFence removes a surrounding ```json fence some models add despite instructions.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
