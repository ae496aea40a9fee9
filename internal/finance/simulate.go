package finance

import (
	"fmt"
	"time"
)

// Scenario is a hypothetical purchase.
type Scenario struct {
	Description  string
	Total        int64
	Installments int
}

// BalancePoint is one month of a simulated balance path.
type BalancePoint struct {
	Month   string `json:"month"`
	Balance int64  `json:"balance"`
}

// Simulation compares the projected balance with and without a purchase.
type Simulation struct {
	Status             string         `json:"status"`
	Message            string         `json:"message,omitempty"`
	Description        string         `json:"description"`
	TotalAmount        int64          `json:"total_amount"`
	Installments       int            `json:"installments"`
	MonthlyPayment     int64          `json:"monthly_payment"`
	IsSafe             bool           `json:"is_safe"`
	NegativeMonth      *string        `json:"negative_month"`
	Verdict            string         `json:"verdict"`
	BaselineProjection []BalancePoint `json:"baseline_projection"`
	ScenarioProjection []BalancePoint `json:"scenario_projection"`
}

// Simulate projects the scenario over max(installments+3, 6) months using the
// same averages as the forecaster. The purchase is amortized exactly, so the
// scenario path carries the real installment amounts.
func Simulate(history []MonthlyFlow, current int64, sc Scenario, now time.Time) (Simulation, error) {
	parts, err := SplitInstallments(sc.Total, sc.Installments)
	if err != nil {
		return Simulation{}, err
	}

	out := Simulation{
		Description:        sc.Description,
		TotalAmount:        sc.Total,
		Installments:       sc.Installments,
		MonthlyPayment:     parts[0],
		BaselineProjection: []BalancePoint{},
		ScenarioProjection: []BalancePoint{},
	}
	if len(history) < MinHistoryMonths {
		out.Status = ForecastInsufficientData
		out.Message = "not enough history to simulate scenarios"
		return out, nil
	}

	avgIncome, avgExpense := averages(history)
	avgNet := avgIncome - avgExpense

	horizon := sc.Installments + 3
	if horizon < 6 {
		horizon = 6
	}

	start := StartOfMonth(now)
	baseline, scenario := current, current
	for i := 1; i <= horizon; i++ {
		month := MonthKey(start.AddDate(0, i, 0))
		baseline += avgNet
		scenario += avgNet
		if i <= len(parts) {
			scenario -= parts[i-1]
		}
		if scenario < 0 && out.NegativeMonth == nil {
			m := month
			out.NegativeMonth = &m
		}
		out.BaselineProjection = append(out.BaselineProjection, BalancePoint{Month: month, Balance: baseline})
		out.ScenarioProjection = append(out.ScenarioProjection, BalancePoint{Month: month, Balance: scenario})
	}

	out.Status = ForecastOK
	out.IsSafe = out.NegativeMonth == nil
	if out.IsSafe {
		out.Verdict = fmt.Sprintf("Safe: buying %s for %s in %dx of %s keeps the projected balance positive.",
			sc.Description, FormatBRL(sc.Total), sc.Installments, FormatBRL(out.MonthlyPayment))
	} else {
		out.Verdict = fmt.Sprintf("Risky: buying %s for %s in %dx of %s takes the projected balance negative in %s.",
			sc.Description, FormatBRL(sc.Total), sc.Installments, FormatBRL(out.MonthlyPayment), *out.NegativeMonth)
	}
	return out, nil
}
