package finance

import (
	"testing"
	"time"
)

func TestDetectAnomalies(t *testing.T) {
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	entries := []Entry{
		// spike on a recurring bill, lowercase category
		{ID: "luz-1", Kind: KindExpense, Category: "luz", Amount: -10000, Date: date(2026, time.August, 1)},
		{ID: "luz-2", Kind: KindExpense, Category: "luz", Amount: -10200, Date: date(2026, time.September, 1)},
		{ID: "luz-3", Kind: KindExpense, Category: "luz", Amount: -30000, Date: date(2026, time.October, 1)},
		// no variance
		{ID: "net-1", Kind: KindExpense, Category: "Internet", Amount: -10000, Date: date(2026, time.August, 10)},
		{ID: "net-2", Kind: KindExpense, Category: "Internet", Amount: -10000, Date: date(2026, time.September, 10)},
		{ID: "net-3", Kind: KindExpense, Category: "Internet", Amount: -10000, Date: date(2026, time.October, 10)},
		// within normal spread
		{ID: "agua-1", Kind: KindExpense, Category: "Água", Amount: -10000, Date: date(2026, time.August, 5)},
		{ID: "agua-2", Kind: KindExpense, Category: "Água", Amount: -12000, Date: date(2026, time.September, 5)},
		{ID: "agua-3", Kind: KindExpense, Category: "Água", Amount: -11500, Date: date(2026, time.October, 5)},
		// too few rows inside the window
		{ID: "alu-0", Kind: KindExpense, Category: "Aluguel", Amount: -100000, Date: date(2026, time.July, 1)},
		{ID: "alu-1", Kind: KindExpense, Category: "Aluguel", Amount: -100000, Date: date(2026, time.September, 1)},
		{ID: "alu-2", Kind: KindExpense, Category: "Aluguel", Amount: -250000, Date: date(2026, time.October, 1)},
		// not a recurring category
		{ID: "m-1", Kind: KindExpense, Category: "Mercado", Amount: -1000, Date: date(2026, time.August, 1)},
		{ID: "m-2", Kind: KindExpense, Category: "Mercado", Amount: -1100, Date: date(2026, time.September, 1)},
		{ID: "m-3", Kind: KindExpense, Category: "Mercado", Amount: -90000, Date: date(2026, time.October, 1)},
	}

	got := DetectAnomalies(entries, now)
	if len(got) != 1 {
		t.Fatalf("expected 1 anomaly, got %d: %+v", len(got), got)
	}

	a := got[0]
	if a.Category != "Luz" || a.TransactionID != "luz-3" {
		t.Errorf("unexpected anomaly %+v", a)
	}
	if a.LatestValue != 30000 {
		t.Errorf("latest = %d, want 30000", a.LatestValue)
	}
	if a.Average != 10100 {
		t.Errorf("average = %d, want 10100", a.Average)
	}
	if a.Threshold != 10383 {
		t.Errorf("threshold = %d, want 10383", a.Threshold)
	}
	if a.IncreasePct != 197 {
		t.Errorf("increase = %v, want 197", a.IncreasePct)
	}
	if a.Message == "" {
		t.Error("expected a message")
	}
}

func TestMeanStdDev(t *testing.T) {
	mean, sd := meanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 {
		t.Errorf("mean = %v, want 5", mean)
	}
	// sample deviation of the classic population-2 example
	if sd < 2.138 || sd > 2.139 {
		t.Errorf("sd = %v, want ~2.138", sd)
	}

	if _, sd := meanStdDev([]float64{42}); sd != 0 {
		t.Errorf("single value sd = %v, want 0", sd)
	}
}
