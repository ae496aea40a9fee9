package finance

import "time"

// Burn rate statuses.
const (
	StatusGood     = "Good"
	StatusWarning  = "Warning"
	StatusCritical = "Critical"
	StatusNA       = "N/A"
)

// BurnThresholds are the policy cut-offs, in percent of income.
type BurnThresholds struct {
	Warning  float64
	Critical float64
}

// DefaultBurnThresholds: below 80% is Good, 80% up to 100% Warning, 100% and
// above Critical.
var DefaultBurnThresholds = BurnThresholds{Warning: 80, Critical: 100}

// Classify maps a burn value to a status.
func (t BurnThresholds) Classify(value float64) string {
	switch {
	case value >= t.Critical:
		return StatusCritical
	case value >= t.Warning:
		return StatusWarning
	default:
		return StatusGood
	}
}

// HUDInput is the month-to-date snapshot behind the HUD.
type HUDInput struct {
	Now               time.Time
	ExpectedIncome    int64
	RealizedIncome    int64
	Committed         int64 // future-dated obligations still due this month
	Discretionary     int64 // expenses dated up to now this month
	InvoiceProjection *int64
	Thresholds        BurnThresholds
}

// BurnRate is the pace block of the HUD.
type BurnRate struct {
	Value    float64 `json:"value"`
	Status   string  `json:"status"`
	DailyAvg int64   `json:"daily_avg"`
}

// HUD is the derived head-up display snapshot.
type HUD struct {
	SafeToSpend       int64    `json:"safe_to_spend"`
	BurnRate          BurnRate `json:"burn_rate"`
	InvoiceProjection int64    `json:"invoice_projection"`
	Income            int64    `json:"income"`
	ExpectedIncome    int64    `json:"expected_income"`
	RealizedIncome    int64    `json:"realized_income"`
	ProjectedSpend    int64    `json:"projected_spend"`
	NeedsOnboarding   bool     `json:"needs_onboarding"`
}

// ComputeHUD derives safe-to-spend and burn rate. When no expected income is
// configured the realized income is used as the base and NeedsOnboarding is
// set; with no base at all the burn value is 0 and status N/A.
func ComputeHUD(in HUDInput) HUD {
	thresholds := in.Thresholds
	if thresholds.Critical == 0 {
		thresholds = DefaultBurnThresholds
	}

	base := in.ExpectedIncome
	needsOnboarding := in.ExpectedIncome <= 0
	if needsOnboarding {
		base = in.RealizedIncome
	}

	elapsed := int64(in.Now.Day())
	if elapsed < 1 {
		elapsed = 1
	}
	days := int64(DaysInMonth(in.Now.Year(), in.Now.Month()))
	dailyAvg := in.Discretionary / elapsed
	projected := in.Discretionary * days / elapsed

	burn := BurnRate{DailyAvg: dailyAvg, Status: StatusNA}
	if base > 0 {
		burn.Value = Round2(Percent(projected, base))
		burn.Status = thresholds.Classify(burn.Value)
	}

	invoice := projected
	if in.InvoiceProjection != nil {
		invoice = *in.InvoiceProjection
	}

	return HUD{
		SafeToSpend:       base - in.Committed - in.Discretionary,
		BurnRate:          burn,
		InvoiceProjection: invoice,
		Income:            base,
		ExpectedIncome:    in.ExpectedIncome,
		RealizedIncome:    in.RealizedIncome,
		ProjectedSpend:    projected,
		NeedsOnboarding:   needsOnboarding,
	}
}
