package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrUnrecognized is returned when a message does not describe a transaction.
var ErrUnrecognized = errors.New("message does not describe a transaction")

// Direction of money in a parsed message.
const (
	Income  = "INCOME"
	Expense = "EXPENSE"
)

// Intent is a transaction described in a chat message. Amount is a positive
// magnitude in cents; Installments is at least 1.
type Intent struct {
	Type         string
	Amount       int64
	Description  string
	Category     string
	Installments int
}

var incomeVerbs = map[string]bool{
	"recebi": true, "ganhei": true, "entrou": true, "caiu": true, "vendi": true,
}

var expenseVerbs = map[string]bool{
	"gastei": true, "paguei": true, "comprei": true, "gasto": true, "torrei": true,
}

var installmentPattern = regexp.MustCompile(`(?:\bem\s+)?\b(\d{1,3})\s*x\b`)

// ParseMessage reads messages like "gastei 50 mercado", "recebi 3000 salário"
// or "comprei tv 1200 em 10x". A message with an amount but no known verb is
// read as an expense.
func ParseMessage(text string) (Intent, error) {
	folded := fold(text)
	if folded == "" {
		return Intent{}, ErrUnrecognized
	}

	intent := Intent{Type: Expense, Installments: 1}
	if m := installmentPattern.FindStringSubmatchIndex(folded); m != nil {
		n, err := strconv.Atoi(folded[m[2]:m[3]])
		if err != nil || n < 1 {
			return Intent{}, ErrUnrecognized
		}
		intent.Installments = n
		folded = folded[:m[0]] + " " + folded[m[1]:]
	}

	loc := amountPattern.FindStringSubmatchIndex(folded)
	if loc == nil {
		return Intent{}, ErrUnrecognized
	}
	amount, ok := parseCents(folded[loc[2]:loc[3]])
	if !ok || amount <= 0 {
		return Intent{}, ErrUnrecognized
	}
	intent.Amount = amount
	rest := folded[:loc[0]] + " " + folded[loc[1]:]

	var desc []string
	for _, w := range words(rest) {
		switch {
		case incomeVerbs[w]:
			intent.Type = Income
		case expenseVerbs[w]:
			intent.Type = Expense
		default:
			desc = append(desc, w)
		}
	}

	fallback := DefaultExpenseCategory
	if intent.Type == Income {
		fallback = DefaultIncomeCategory
	}
	intent.Category = Categorize(desc, fallback)
	intent.Description = capitalize(strings.Join(restore(text, desc), " "))
	if intent.Description == "" {
		intent.Description = intent.Category
	}
	return intent, nil
}

// restore maps folded description tokens back to the user's original spelling.
func restore(original string, folded []string) []string {
	out := make([]string, 0, len(folded))
	j := 0
	for _, field := range strings.Fields(original) {
		if j == len(folded) {
			break
		}
		field = strings.Trim(field, ",;!?.")
		if fold(field) == folded[j] {
			out = append(out, field)
			j++
		}
	}
	if j < len(folded) {
		return folded
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
