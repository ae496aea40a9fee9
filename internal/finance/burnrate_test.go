package finance

import (
	"testing"
	"time"
)

func TestComputeHUD(t *testing.T) {
	// April has 30 days; on the 15th the projection doubles month-to-date spend.
	mid := time.Date(2026, time.April, 15, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		in             HUDInput
		wantSafe       int64
		wantValue      float64
		wantStatus     string
		wantDailyAvg   int64
		wantOnboarding bool
	}{
		{
			name:           "good",
			in:             HUDInput{Now: mid, ExpectedIncome: 500000, Committed: 100000, Discretionary: 100000},
			wantSafe:       300000,
			wantValue:      40,
			wantStatus:     StatusGood,
			wantDailyAvg:   6666,
			wantOnboarding: false,
		},
		{
			name:           "warning_at_threshold",
			in:             HUDInput{Now: mid, ExpectedIncome: 500000, Discretionary: 200000},
			wantSafe:       300000,
			wantValue:      80,
			wantStatus:     StatusWarning,
			wantDailyAvg:   13333,
			wantOnboarding: false,
		},
		{
			name:           "critical_at_threshold",
			in:             HUDInput{Now: mid, ExpectedIncome: 500000, Discretionary: 250000},
			wantSafe:       250000,
			wantValue:      100,
			wantStatus:     StatusCritical,
			wantDailyAvg:   16666,
			wantOnboarding: false,
		},
		{
			name:           "safe_to_spend_can_go_negative",
			in:             HUDInput{Now: mid, ExpectedIncome: 100000, Committed: 80000, Discretionary: 60000},
			wantSafe:       -40000,
			wantValue:      120,
			wantStatus:     StatusCritical,
			wantDailyAvg:   4000,
			wantOnboarding: false,
		},
		{
			name:           "zero_expected_income_uses_realized",
			in:             HUDInput{Now: mid, RealizedIncome: 200000, Discretionary: 50000},
			wantSafe:       150000,
			wantValue:      50,
			wantStatus:     StatusGood,
			wantDailyAvg:   3333,
			wantOnboarding: true,
		},
		{
			name:           "no_income_at_all",
			in:             HUDInput{Now: mid, Committed: 1000, Discretionary: 3000},
			wantSafe:       -4000,
			wantValue:      0,
			wantStatus:     StatusNA,
			wantDailyAvg:   200,
			wantOnboarding: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hud := ComputeHUD(tt.in)
			if hud.SafeToSpend != tt.wantSafe {
				t.Errorf("safe_to_spend = %d, want %d", hud.SafeToSpend, tt.wantSafe)
			}
			if hud.BurnRate.Value != tt.wantValue {
				t.Errorf("burn value = %v, want %v", hud.BurnRate.Value, tt.wantValue)
			}
			if hud.BurnRate.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", hud.BurnRate.Status, tt.wantStatus)
			}
			if hud.BurnRate.DailyAvg != tt.wantDailyAvg {
				t.Errorf("daily_avg = %d, want %d", hud.BurnRate.DailyAvg, tt.wantDailyAvg)
			}
			if hud.NeedsOnboarding != tt.wantOnboarding {
				t.Errorf("needs_onboarding = %v, want %v", hud.NeedsOnboarding, tt.wantOnboarding)
			}
		})
	}
}

func TestComputeHUD_InvoiceProjection(t *testing.T) {
	now := time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC)

	t.Run("falls_back_to_projected_spend", func(t *testing.T) {
		hud := ComputeHUD(HUDInput{Now: now, ExpectedIncome: 100000, Discretionary: 10000})
		if hud.InvoiceProjection != 20000 {
			t.Errorf("invoice projection = %d, want 20000", hud.InvoiceProjection)
		}
	})

	t.Run("uses_credit_projection_when_given", func(t *testing.T) {
		invoice := int64(75000)
		hud := ComputeHUD(HUDInput{Now: now, ExpectedIncome: 100000, Discretionary: 10000, InvoiceProjection: &invoice})
		if hud.InvoiceProjection != 75000 {
			t.Errorf("invoice projection = %d, want 75000", hud.InvoiceProjection)
		}
	})

	t.Run("first_day_of_month", func(t *testing.T) {
		first := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
		hud := ComputeHUD(HUDInput{Now: first, ExpectedIncome: 280000, Discretionary: 1000})
		if hud.ProjectedSpend != 28000 {
			t.Errorf("projected = %d, want 28000", hud.ProjectedSpend)
		}
	})
}

func TestBurnThresholds_Custom(t *testing.T) {
	th := BurnThresholds{Warning: 70, Critical: 90}
	cases := map[float64]string{69.99: StatusGood, 70: StatusWarning, 89.9: StatusWarning, 90: StatusCritical}
	for value, want := range cases {
		if got := th.Classify(value); got != want {
			t.Errorf("Classify(%v) = %s, want %s", value, got, want)
		}
	}
}
