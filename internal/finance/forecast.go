package finance

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	// MinHistoryMonths is the fewest active months a forecast is computed from.
	MinHistoryMonths = 2
	// DefaultHistoryMonths is the trailing window fed to the forecaster.
	DefaultHistoryMonths = 6
	// DefaultForecastHorizon is the number of projected months.
	DefaultForecastHorizon = 6

	ForecastOK               = "ok"
	ForecastInsufficientData = "insufficient_data"

	RiskHigh = "HIGH"
	RiskLow  = "LOW"
)

// MonthlyFlow is one cashflow row. Expenses is a positive magnitude.
type MonthlyFlow struct {
	Month    string `json:"month"`
	Income   int64  `json:"income"`
	Expenses int64  `json:"expenses"`
	Net      int64  `json:"net"`
}

// MonthlyCashflow aggregates income and expense entries dated from the start
// of the month (months-1) before now up to now. Only months with activity are
// returned, oldest first. Transfers move money between the user's own
// accounts and are excluded.
func MonthlyCashflow(entries []Entry, now time.Time, months int) []MonthlyFlow {
	if months < 1 {
		months = DefaultHistoryMonths
	}
	from := StartOfMonth(now).AddDate(0, -(months - 1), 0)

	rows := make(map[string]*MonthlyFlow)
	for _, e := range entries {
		if e.Date.Before(from) || e.Date.After(now) {
			continue
		}
		if e.Kind != KindIncome && e.Kind != KindExpense {
			continue
		}
		key := MonthKey(e.Date)
		row, ok := rows[key]
		if !ok {
			row = &MonthlyFlow{Month: key}
			rows[key] = row
		}
		if e.Kind == KindIncome {
			row.Income += Abs(e.Amount)
		} else {
			row.Expenses += Abs(e.Amount)
		}
	}

	out := make([]MonthlyFlow, 0, len(rows))
	for _, row := range rows {
		row.Net = row.Income - row.Expenses
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Projection is one projected month.
type Projection struct {
	Month            string `json:"month"`
	ProjectedBalance int64  `json:"projected_balance"`
	IsNegative       bool   `json:"is_negative"`
}

// Forecast is the balance projection result.
type Forecast struct {
	Status         string       `json:"status"`
	Message        string       `json:"message,omitempty"`
	CurrentBalance int64        `json:"current_balance"`
	AvgIncome      int64        `json:"avg_income"`
	AvgExpense     int64        `json:"avg_expense"`
	AvgNet         int64        `json:"avg_net"`
	Projections    []Projection `json:"projections"`
	Risk           string       `json:"risk,omitempty"`
}

// averages returns rounded mean income and expense over history.
func averages(history []MonthlyFlow) (int64, int64) {
	var income, expense int64
	for _, h := range history {
		income += h.Income
		expense += h.Expenses
	}
	n := float64(len(history))
	return int64(math.Round(float64(income) / n)), int64(math.Round(float64(expense) / n))
}

// ProjectBalance projects current + i*avgNet for i in 1..horizon. Risk is HIGH
// when any projected balance reaches zero or below.
func ProjectBalance(history []MonthlyFlow, current int64, horizon int, now time.Time) Forecast {
	if horizon < 1 {
		horizon = DefaultForecastHorizon
	}
	if len(history) < MinHistoryMonths {
		return Forecast{
			Status:         ForecastInsufficientData,
			Message:        fmt.Sprintf("at least %d months of history are needed to forecast", MinHistoryMonths),
			CurrentBalance: current,
			Projections:    []Projection{},
		}
	}

	avgIncome, avgExpense := averages(history)
	avgNet := avgIncome - avgExpense

	risk := RiskLow
	projections := make([]Projection, 0, horizon)
	start := StartOfMonth(now)
	for i := 1; i <= horizon; i++ {
		balance := current + int64(i)*avgNet
		if balance <= 0 {
			risk = RiskHigh
		}
		projections = append(projections, Projection{
			Month:            MonthKey(start.AddDate(0, i, 0)),
			ProjectedBalance: balance,
			IsNegative:       balance < 0,
		})
	}

	return Forecast{
		Status:         ForecastOK,
		CurrentBalance: current,
		AvgIncome:      avgIncome,
		AvgExpense:     avgExpense,
		AvgNet:         avgNet,
		Projections:    projections,
		Risk:           risk,
	}
}
