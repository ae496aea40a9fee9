package finance

import (
	"reflect"
	"testing"
	"time"
)

func TestClampedDate(t *testing.T) {
	if got := ClampedDate(2026, time.February, 31, time.UTC); !got.Equal(date(2026, time.February, 28)) {
		t.Errorf("feb 31 = %s", got)
	}
	if got := ClampedDate(2026, time.Month(13), 15, time.UTC); !got.Equal(date(2027, time.January, 15)) {
		t.Errorf("month overflow = %s", got)
	}
	if got := AddMonthsClamped(date(2028, time.January, 31), 1); !got.Equal(date(2028, time.February, 29)) {
		t.Errorf("leap clamp = %s", got)
	}
}

func TestNextMonths(t *testing.T) {
	got := NextMonths(date(2026, time.November, 30), 3)
	want := []string{"2026-11", "2026-12", "2027-01"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("next months = %v, want %v", got, want)
	}
	if _, err := ParseMonth("2026-13"); err == nil {
		t.Error("expected error for invalid month")
	}
}

func TestBalance(t *testing.T) {
	if got := Balance(1000, []int64{-200, 300}); got != 1100 {
		t.Errorf("balance = %d, want 1100", got)
	}
	if got := Drift(1200, 1000, []int64{-200, 300}); got != 100 {
		t.Errorf("drift = %d, want 100", got)
	}
}

func TestEditDeltas(t *testing.T) {
	tests := []struct {
		name string
		got  []Move
		want []Move
	}{
		{"amount_change", EditDeltas("a", -1000, "a", -1500), []Move{{"a", -500}}},
		{"no_change", EditDeltas("a", -1000, "a", -1000), nil},
		{"account_change", EditDeltas("a", -1000, "b", -1000), []Move{{"a", 1000}, {"b", -1000}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.want) {
				t.Errorf("deltas = %+v, want %+v", tt.got, tt.want)
			}
		})
	}
}

func TestGoalPercentage(t *testing.T) {
	cases := []struct {
		current, target int64
		want            int
	}{
		{5000, 10000, 50},
		{15000, 10000, 100},
		{1, 3, 33},
		{2, 3, 67},
		{100, 0, 0},
	}
	for _, c := range cases {
		if got := GoalPercentage(c.current, c.target); got != c.want {
			t.Errorf("GoalPercentage(%d, %d) = %d, want %d", c.current, c.target, got, c.want)
		}
	}
}

func TestUsageOf(t *testing.T) {
	u := UsageOf(100000, 25000)
	if u.Remaining != 75000 || u.Percentage != 25 {
		t.Errorf("usage = %+v", u)
	}
	over := UsageOf(1000, 1500)
	if over.Remaining != -500 || over.Percentage != 150 {
		t.Errorf("over usage = %+v", over)
	}
}

func TestFormatBRL(t *testing.T) {
	cases := map[int64]string{
		123456:    "R$ 1.234,56",
		5:         "R$ 0,05",
		-5:        "-R$ 0,05",
		99999:     "R$ 999,99",
		100000000: "R$ 1.000.000,00",
	}
	for cents, want := range cases {
		if got := FormatBRL(cents); got != want {
			t.Errorf("FormatBRL(%d) = %q, want %q", cents, got, want)
		}
	}
	if got := FormatDecimal(-150); got != "-1.50" {
		t.Errorf("FormatDecimal(-150) = %q", got)
	}
	if got := FormatDecimal(123456); got != "1234.56" {
		t.Errorf("FormatDecimal(123456) = %q", got)
	}
}
