// Package extraction turns a transcribed voice note into structured expenses.
// It owns the prompt sent to the language model and the parsing of its JSON
// answer into exactly one of three results.
package extraction

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of expense dates.
const DateLayout = "2006-01-02"

// Expense is one spending entry found in the text.
type Expense struct {
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"amount"`
	Date               time.Time       `json:"date"`
	CategorySuggestion string          `json:"category_suggestion"`
	IsEssential        bool            `json:"is_essential"`
	Confidence         float64         `json:"confidence"`
}

// Result is the outcome of an extraction: SingleExpense, MultipleExpenses or NotDetected.
type Result interface {
	isResult()
}

// SingleExpense is a text describing exactly one expense.
type SingleExpense struct {
	Expense Expense
}

// MultipleExpenses is a text describing two or more expenses.
type MultipleExpenses struct {
	Expenses []Expense
}

// NotDetected means the text does not describe any expense.
type NotDetected struct{}

func (SingleExpense) isResult()    {}
func (MultipleExpenses) isResult() {}
func (NotDetected) isResult()      {}

// Expenses flattens a result into its expenses. NotDetected yields none.
func Expenses(r Result) []Expense {
	switch v := r.(type) {
	case SingleExpense:
		return []Expense{v.Expense}
	case MultipleExpenses:
		return v.Expenses
	default:
		return nil
	}
}
