package extraction

import (
	"fmt"
	"strings"
	"time"
)

// BuildPrompt renders the extraction instructions for transcript. Relative
// dates are resolved against reference, and amounts are read in currency.
func BuildPrompt(transcript string, reference time.Time, currency string) string {
	today := reference.Format(DateLayout)
	yesterday := reference.AddDate(0, 0, -1).Format(DateLayout)

	var b strings.Builder
	b.WriteString("You extract personal expenses from short spoken messages. ")
	b.WriteString("Answer with exactly one JSON object and nothing else.\n\n")
	fmt.Fprintf(&b, "USER TEXT: %q\n", transcript)
	fmt.Fprintf(&b, "REFERENCE DATE: %s\n\n", today)

	b.WriteString("Output one of the two shapes:\n\n")
	b.WriteString("1) Expenses found:\n")
	b.WriteString(`{"description": "short description", "amount": 0.00, "date": "YYYY-MM-DD", `)
	b.WriteString(`"category_suggestion": "category", "is_essential": true, "confidence": 0.0, "expenses": []}`)
	b.WriteString("\nFor several expenses fill \"expenses\" with objects of the same shape and leave the top-level fields null.\n\n")
	b.WriteString("2) No expense in the text (greetings, questions, jokes, unrelated audio):\n")
	b.WriteString(`{"error": "NOT_DETECTED"}`)
	b.WriteString("\n\nRules:\n")
	fmt.Fprintf(&b, "- \"yesterday\" (ontem) is %s and \"today\" (hoje) is %s.\n", yesterday, today)
	fmt.Fprintf(&b, "- Amounts are always in %s, as a decimal number.\n", currency)
	b.WriteString("- Future dates are invalid. Use the reference date instead.\n")
	b.WriteString("- If the text does not mention spending, buying, paying or an expense, return the NOT_DETECTED object.\n")
	b.WriteString("- description: 3 to 5 words at most, without the amount (e.g. \"Uber\", \"Groceries\", \"Lunch\").\n")
	b.WriteString("- confidence: 0.0 means unsure, 1.0 means certain.\n")
	b.WriteString("- is_essential: basic groceries, commuting and housing are true. Restaurants, delivery, leisure and subscriptions are false.")
	return b.String()
}
