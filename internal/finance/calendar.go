// Package finance holds the pure derivations behind the dashboard: balances,
// installment schedules, burn rate, credit cycles, forecasts and portfolio
// valuation. Every function works on an explicit snapshot and an explicit
// "now"; nothing here touches the database or the clock.
//
// Money is int64 cents throughout.
package finance

import "time"

// MonthLayout is the YYYY-MM key used for grouping and budgets.
const MonthLayout = "2006-01"

// MonthKey returns the YYYY-MM key for t.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// ParseMonth parses a YYYY-MM key into the first instant of that month (UTC).
func ParseMonth(key string) (time.Time, error) {
	return time.ParseInLocation(MonthLayout, key, time.UTC)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfMonth truncates t to midnight on the first day of its month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfDay truncates t to midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// ClampedDate builds year/month/day, moving day back to the month's last day
// when the month is shorter (day 31 in April becomes the 30th).
func ClampedDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	// normalise month overflow first so callers can pass month+1
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := DaysInMonth(first.Year(), first.Month())
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, loc)
}

// AddMonthsClamped moves t forward n months keeping the day of month of t,
// clamped to the target month's length. Unlike time.AddDate it never spills
// into the following month.
func AddMonthsClamped(t time.Time, n int) time.Time {
	d := ClampedDate(t.Year(), t.Month()+time.Month(n), t.Day(), t.Location())
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// NextMonths returns n consecutive month keys starting at from's month.
func NextMonths(from time.Time, n int) []string {
	keys := make([]string, 0, n)
	start := StartOfMonth(from)
	for i := 0; i < n; i++ {
		keys = append(keys, MonthKey(start.AddDate(0, i, 0)))
	}
	return keys
}
