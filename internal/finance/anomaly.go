package finance

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	// AnomalyLookbackDays is the history window scanned for outliers.
	AnomalyLookbackDays = 90
	// AnomalyMinRows is the fewest rows (latest included) a category needs.
	AnomalyMinRows = 3
	anomalySigmas  = 2.0
)

// RecurringCategories are the bill-like categories watched for spikes.
var RecurringCategories = []string{
	"Luz", "Energia", "Internet", "Telefone", "Aluguel",
	"Água", "Gás", "Academia", "Streaming", "Assinatura",
	"Celular", "Condomínio", "Plano de Saúde",
}

// Anomaly is a recurring expense that came in well above its history.
type Anomaly struct {
	Category      string    `json:"category"`
	TransactionID string    `json:"transaction_id"`
	Date          time.Time `json:"date"`
	LatestValue   int64     `json:"latest_value"`
	Average       int64     `json:"average"`
	Threshold     int64     `json:"threshold"`
	IncreasePct   float64   `json:"increase_pct"`
	Message       string    `json:"message"`
}

// DetectAnomalies flags, per recurring category, the most recent expense in
// the lookback window when it exceeds mean + 2 sample standard deviations of
// the earlier expenses. Categories with fewer than three rows or no variance
// are skipped.
func DetectAnomalies(entries []Entry, now time.Time) []Anomaly {
	from := now.AddDate(0, 0, -AnomalyLookbackDays)

	var out []Anomaly
	for _, category := range RecurringCategories {
		var rows []Entry
		for _, e := range entries {
			if e.Kind != KindExpense || !sameCategory(e.Category, category) {
				continue
			}
			if e.Date.Before(from) || e.Date.After(now) {
				continue
			}
			rows = append(rows, e)
		}
		if len(rows) < AnomalyMinRows {
			continue
		}
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })

		latest := float64(Abs(rows[0].Amount))
		history := make([]float64, 0, len(rows)-1)
		for _, r := range rows[1:] {
			history = append(history, float64(Abs(r.Amount)))
		}
		mean, sd := meanStdDev(history)
		threshold := mean + anomalySigmas*sd
		if sd <= 0 || latest <= threshold {
			continue
		}

		increase := 0.0
		if mean > 0 {
			increase = math.Round((latest-mean)/mean*1000) / 10
		}
		avg := int64(math.Round(mean))
		out = append(out, Anomaly{
			Category:      category,
			TransactionID: rows[0].ID,
			Date:          rows[0].Date,
			LatestValue:   int64(latest),
			Average:       avg,
			Threshold:     int64(math.Round(threshold)),
			IncreasePct:   increase,
			Message: fmt.Sprintf("Your %s bill came in at %s, %.0f%% above the average of %s. Worth checking the invoice.",
				category, FormatBRL(int64(latest)), increase, FormatBRL(avg)),
		})
	}
	return out
}

// meanStdDev returns the mean and the sample standard deviation. A single
// value has zero deviation.
func meanStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if len(values) < 2 {
		return mean, 0
	}
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(len(values)-1))
}
