package finance

import (
	"errors"
	"math"
	"time"
)

var ErrInvalidCycleDay = errors.New("closing and due days must be between 1 and 31")

// Cycle is one credit card billing window. Opens and Closes are inclusive
// calendar days.
type Cycle struct {
	Opens  time.Time `json:"opens"`
	Closes time.Time `json:"closes"`
	Due    time.Time `json:"due"`
}

// Contains reports whether t falls on a day inside the cycle.
func (c Cycle) Contains(t time.Time) bool {
	day := StartOfDay(t)
	return !day.Before(c.Opens) && !day.After(c.Closes)
}

// Days is the cycle length in days.
func (c Cycle) Days() int {
	return daysBetween(c.Opens, c.Closes) + 1
}

func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// ValidCycleDay reports whether d is a usable closing or due day.
func ValidCycleDay(d int) bool {
	return d >= 1 && d <= 31
}

// CycleFor returns the billing cycle a transaction dated t belongs to: the
// cycle closing on the first closing day on or after t. Closing and due days
// past the end of a short month are clamped to its last day.
func CycleFor(t time.Time, closingDay, dueDay int) (Cycle, error) {
	if !ValidCycleDay(closingDay) || !ValidCycleDay(dueDay) {
		return Cycle{}, ErrInvalidCycleDay
	}
	loc := t.Location()
	day := StartOfDay(t)

	closes := ClampedDate(day.Year(), day.Month(), closingDay, loc)
	if day.After(closes) {
		closes = ClampedDate(day.Year(), day.Month()+1, closingDay, loc)
	}
	prevClose := ClampedDate(closes.Year(), closes.Month()-1, closingDay, loc)

	due := ClampedDate(closes.Year(), closes.Month(), dueDay, loc)
	if !due.After(closes) {
		due = ClampedDate(closes.Year(), closes.Month()+1, dueDay, loc)
	}

	return Cycle{
		Opens:  prevClose.AddDate(0, 0, 1),
		Closes: closes,
		Due:    due,
	}, nil
}

// InvoiceTotal is the amount owed on the cycle: charges (negative amounts)
// minus payments and refunds (positive amounts) dated within it.
func InvoiceTotal(entries []Entry, cycle Cycle) int64 {
	var sum int64
	for _, e := range entries {
		if cycle.Contains(e.Date) {
			sum += e.Amount
		}
	}
	return -sum
}

// ProjectInvoice extrapolates the current invoice to the closing day at the
// pace observed so far in the cycle.
func ProjectInvoice(current int64, cycle Cycle, now time.Time) int64 {
	if current <= 0 {
		return current
	}
	total := int64(cycle.Days())
	elapsed := int64(daysBetween(cycle.Opens, StartOfDay(now))) + 1
	if elapsed < 1 {
		elapsed = 1
	}
	if elapsed >= total {
		return current
	}
	return current * total / elapsed
}

// Usage is the credit limit consumption of an account.
type Usage struct {
	Owed           int64   `json:"owed"`
	Percent        float64 `json:"usage_percent"`
	DisplayPercent float64 `json:"display_percent"`
	OverLimit      bool    `json:"over_limit"`
	Available      int64   `json:"available"`
}

// CreditUsage computes how much of limit a credit balance consumes. A credit
// balance at or below zero is money owed. The raw percent may exceed 100; the
// display percent is clamped to [0, 100]. A zero limit yields 0.
func CreditUsage(balance, limit int64) Usage {
	var owed int64
	if balance < 0 {
		owed = -balance
	}
	u := Usage{Owed: owed, Available: limit - owed}
	if limit <= 0 {
		u.Available = 0
		return u
	}
	u.Percent = Round2(Percent(owed, limit))
	u.DisplayPercent = u.Percent
	if u.DisplayPercent > 100 {
		u.DisplayPercent = 100
	}
	u.OverLimit = owed > limit
	return u
}

// InvoiceSummary is the credit cycle view of one account.
type InvoiceSummary struct {
	Cycle          Cycle `json:"cycle"`
	CurrentInvoice int64 `json:"current_invoice"`
	Projected      int64 `json:"projected_invoice"`
	Usage          Usage `json:"usage"`
}

// SummarizeInvoice builds the open-cycle view for a credit account at now.
func SummarizeInvoice(entries []Entry, balance, limit int64, closingDay, dueDay int, now time.Time) (InvoiceSummary, error) {
	cycle, err := CycleFor(now, closingDay, dueDay)
	if err != nil {
		return InvoiceSummary{}, err
	}
	current := InvoiceTotal(entries, cycle)
	return InvoiceSummary{
		Cycle:          cycle,
		CurrentInvoice: current,
		Projected:      ProjectInvoice(current, cycle, now),
		Usage:          CreditUsage(balance, limit),
	}, nil
}
