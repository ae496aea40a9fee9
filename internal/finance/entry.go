package finance

import (
	"math"
	"strings"
	"time"
)

// Kind mirrors the ledger transaction type.
type Kind string

const (
	KindIncome   Kind = "INCOME"
	KindExpense  Kind = "EXPENSE"
	KindTransfer Kind = "TRANSFER"
)

// Entry is the minimal ledger row the engine needs. Amount is signed:
// income positive, expense negative.
type Entry struct {
	ID        string
	AccountID string
	Kind      Kind
	Amount    int64
	Category  string
	Date      time.Time
}

// Abs returns the magnitude of a cents value.
func Abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Percent returns part/whole*100, or 0 when whole is zero.
func Percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// Round2 rounds a ratio to two decimal places for display.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// sameCategory compares categories case-insensitively, ignoring padding.
func sameCategory(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
