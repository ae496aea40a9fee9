package finance

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// MaxInstallments bounds a single installment plan.
const MaxInstallments = 360

var (
	ErrInvalidInstallmentCount = errors.New("installment count must be between 1 and 360")
	ErrNonPositiveTotal        = errors.New("purchase total must be greater than zero")
)

// Installment is one scheduled slice of a purchase.
type Installment struct {
	Number int
	Count  int
	Amount int64
	Date   time.Time
}

// Info renders the "k/N" label.
func (i Installment) Info() string {
	return fmt.Sprintf("%d/%d", i.Number, i.Count)
}

// SplitInstallments divides total cents into n parts. Parts 1..n-1 get
// total/n rounded half up to the cent; the last part absorbs the difference
// so the sum is exact. When rounding up would leave the last part negative
// (totals of a few cents over many months) the share is truncated instead.
func SplitInstallments(total int64, n int) ([]int64, error) {
	if n < 1 || n > MaxInstallments {
		return nil, ErrInvalidInstallmentCount
	}
	if total <= 0 {
		return nil, ErrNonPositiveTotal
	}
	count := int64(n)
	base := (2*total + count) / (2 * count)
	if base*(count-1) > total {
		base = total / count
	}
	parts := make([]int64, n)
	for i := 0; i < n-1; i++ {
		parts[i] = base
	}
	parts[n-1] = total - base*(count-1)
	return parts, nil
}

// InstallmentDates returns n dates on first's day of month, one per month.
// Days past a shorter month's end are clamped to its last day.
func InstallmentDates(first time.Time, n int) []time.Time {
	dates := make([]time.Time, n)
	for i := 0; i < n; i++ {
		dates[i] = AddMonthsClamped(first, i)
	}
	return dates
}

// Amortize combines SplitInstallments and InstallmentDates.
func Amortize(total int64, n int, first time.Time) ([]Installment, error) {
	parts, err := SplitInstallments(total, n)
	if err != nil {
		return nil, err
	}
	dates := InstallmentDates(first, n)
	out := make([]Installment, n)
	for i := range parts {
		out[i] = Installment{Number: i + 1, Count: n, Amount: parts[i], Date: dates[i]}
	}
	return out, nil
}

// MonthAmount is one bar of the commitment mountain.
type MonthAmount struct {
	Month  string `json:"month"`
	Amount int64  `json:"amount"`
}

// Commitments groups future-dated expense obligations (date on or after the
// start of now's day) by month. The result is ordered and zero-filled for
// horizon months starting at now's month; obligations beyond the horizon are
// appended in month order so nothing contracted is hidden.
func Commitments(entries []Entry, now time.Time, horizon int) []MonthAmount {
	cutoff := StartOfDay(now)
	sums := make(map[string]int64)
	for _, e := range entries {
		if e.Kind != KindExpense || e.Date.Before(cutoff) {
			continue
		}
		sums[MonthKey(e.Date)] += Abs(e.Amount)
	}

	out := make([]MonthAmount, 0, horizon)
	seen := make(map[string]bool, horizon)
	for _, key := range NextMonths(now, horizon) {
		out = append(out, MonthAmount{Month: key, Amount: sums[key]})
		seen[key] = true
	}

	var tail []string
	for key := range sums {
		if !seen[key] {
			tail = append(tail, key)
		}
	}
	sort.Strings(tail)
	for _, key := range tail {
		out = append(out, MonthAmount{Month: key, Amount: sums[key]})
	}
	return out
}
