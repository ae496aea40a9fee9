package finance

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCycleFor(t *testing.T) {
	tests := []struct {
		name       string
		at         time.Time
		closing    int
		due        int
		wantOpens  time.Time
		wantCloses time.Time
		wantDue    time.Time
	}{
		{
			name:       "closing_31_in_april_clamps_to_30",
			at:         date(2026, time.April, 10),
			closing:    31,
			due:        10,
			wantOpens:  date(2026, time.April, 1),
			wantCloses: date(2026, time.April, 30),
			wantDue:    date(2026, time.May, 10),
		},
		{
			name:       "closing_31_in_february",
			at:         date(2026, time.February, 15),
			closing:    31,
			due:        10,
			wantOpens:  date(2026, time.February, 1),
			wantCloses: date(2026, time.February, 28),
			wantDue:    date(2026, time.March, 10),
		},
		{
			name:       "closing_31_in_leap_february",
			at:         date(2028, time.February, 15),
			closing:    31,
			due:        10,
			wantOpens:  date(2028, time.February, 1),
			wantCloses: date(2028, time.February, 29),
			wantDue:    date(2028, time.March, 10),
		},
		{
			name:       "after_closing_day_rolls_to_next_month",
			at:         date(2026, time.April, 25),
			closing:    20,
			due:        5,
			wantOpens:  date(2026, time.April, 21),
			wantCloses: date(2026, time.May, 20),
			wantDue:    date(2026, time.June, 5),
		},
		{
			name:       "on_closing_day_belongs_to_closing_cycle",
			at:         time.Date(2026, time.April, 20, 23, 59, 0, 0, time.UTC),
			closing:    20,
			due:        28,
			wantOpens:  date(2026, time.March, 21),
			wantCloses: date(2026, time.April, 20),
			wantDue:    date(2026, time.April, 28),
		},
		{
			name:       "previous_close_clamped_in_february",
			at:         date(2026, time.March, 1),
			closing:    30,
			due:        7,
			wantOpens:  date(2026, time.March, 1),
			wantCloses: date(2026, time.March, 30),
			wantDue:    date(2026, time.April, 7),
		},
		{
			name:       "year_rollover",
			at:         date(2026, time.December, 25),
			closing:    20,
			due:        1,
			wantOpens:  date(2026, time.December, 21),
			wantCloses: date(2027, time.January, 20),
			wantDue:    date(2027, time.February, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := CycleFor(tt.at, tt.closing, tt.due)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !c.Opens.Equal(tt.wantOpens) {
				t.Errorf("opens = %s, want %s", c.Opens.Format(time.DateOnly), tt.wantOpens.Format(time.DateOnly))
			}
			if !c.Closes.Equal(tt.wantCloses) {
				t.Errorf("closes = %s, want %s", c.Closes.Format(time.DateOnly), tt.wantCloses.Format(time.DateOnly))
			}
			if !c.Due.Equal(tt.wantDue) {
				t.Errorf("due = %s, want %s", c.Due.Format(time.DateOnly), tt.wantDue.Format(time.DateOnly))
			}
			if !c.Due.After(c.Closes) {
				t.Error("due date must fall after the closing date")
			}
			if !c.Contains(tt.at) {
				t.Error("cycle must contain the reference date")
			}
		})
	}
}

func TestCycleFor_InvalidDays(t *testing.T) {
	for _, days := range [][2]int{{0, 10}, {32, 10}, {10, 0}, {10, 40}} {
		if _, err := CycleFor(date(2026, time.April, 1), days[0], days[1]); !errors.Is(err, ErrInvalidCycleDay) {
			t.Errorf("closing=%d due=%d: expected ErrInvalidCycleDay, got %v", days[0], days[1], err)
		}
	}
}

func TestInvoiceTotal(t *testing.T) {
	cycle, _ := CycleFor(date(2026, time.April, 10), 31, 10)
	entries := []Entry{
		{Kind: KindExpense, Amount: -10000, Date: date(2026, time.April, 3)},
		{Kind: KindExpense, Amount: -5000, Date: time.Date(2026, time.April, 30, 23, 0, 0, 0, time.UTC)},
		{Kind: KindIncome, Amount: 3000, Date: date(2026, time.April, 15)},
		{Kind: KindExpense, Amount: -7000, Date: date(2026, time.March, 31)},
		{Kind: KindExpense, Amount: -7000, Date: date(2026, time.May, 1)},
	}

	if got := InvoiceTotal(entries, cycle); got != 12000 {
		t.Errorf("invoice total = %d, want 12000", got)
	}
}

func TestProjectInvoice(t *testing.T) {
	cycle, _ := CycleFor(date(2026, time.April, 10), 31, 10)

	t.Run("extrapolates_to_close", func(t *testing.T) {
		if got := ProjectInvoice(12000, cycle, date(2026, time.April, 10)); got != 36000 {
			t.Errorf("projected = %d, want 36000", got)
		}
	})

	t.Run("closed_cycle_is_not_extrapolated", func(t *testing.T) {
		if got := ProjectInvoice(12000, cycle, date(2026, time.May, 2)); got != 12000 {
			t.Errorf("projected = %d, want 12000", got)
		}
	})

	t.Run("nothing_owed", func(t *testing.T) {
		if got := ProjectInvoice(0, cycle, date(2026, time.April, 10)); got != 0 {
			t.Errorf("projected = %d, want 0", got)
		}
	})
}

func TestCreditUsage(t *testing.T) {
	tests := []struct {
		name        string
		balance     int64
		limit       int64
		wantOwed    int64
		wantPercent float64
		wantDisplay float64
		wantOver    bool
		wantAvail   int64
	}{
		{"partial", -25000, 100000, 25000, 25, 25, false, 75000},
		{"over_limit", -150000, 100000, 150000, 150, 100, true, -50000},
		{"exactly_at_limit", -100000, 100000, 100000, 100, 100, false, 0},
		{"positive_balance_owes_nothing", 5000, 100000, 0, 0, 0, false, 100000},
		{"zero_limit", -5000, 0, 5000, 0, 0, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := CreditUsage(tt.balance, tt.limit)
			if u.Owed != tt.wantOwed {
				t.Errorf("owed = %d, want %d", u.Owed, tt.wantOwed)
			}
			if u.Percent != tt.wantPercent {
				t.Errorf("percent = %v, want %v", u.Percent, tt.wantPercent)
			}
			if u.DisplayPercent != tt.wantDisplay {
				t.Errorf("display = %v, want %v", u.DisplayPercent, tt.wantDisplay)
			}
			if u.OverLimit != tt.wantOver {
				t.Errorf("over_limit = %v, want %v", u.OverLimit, tt.wantOver)
			}
			if u.Available != tt.wantAvail {
				t.Errorf("available = %d, want %d", u.Available, tt.wantAvail)
			}
		})
	}
}

func TestSummarizeInvoice(t *testing.T) {
	entries := []Entry{
		{Kind: KindExpense, Amount: -4000, Date: date(2026, time.April, 2)},
		{Kind: KindExpense, Amount: -6000, Date: date(2026, time.April, 5)},
	}

	sum, err := SummarizeInvoice(entries, -10000, 50000, 31, 10, date(2026, time.April, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.CurrentInvoice != 10000 {
		t.Errorf("current invoice = %d, want 10000", sum.CurrentInvoice)
	}
	if sum.Projected != 30000 {
		t.Errorf("projected = %d, want 30000", sum.Projected)
	}
	if sum.Usage.Percent != 20 {
		t.Errorf("usage = %v, want 20", sum.Usage.Percent)
	}

	if _, err := SummarizeInvoice(entries, 0, 0, 0, 10, date(2026, time.April, 10)); !errors.Is(err, ErrInvalidCycleDay) {
		t.Errorf("expected ErrInvalidCycleDay, got %v", err)
	}
}
