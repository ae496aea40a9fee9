package finance

import (
	"testing"

	"github.com/shopspring/decimal"
)

func price(v int64) *int64 { return &v }

func TestValue(t *testing.T) {
	tests := []struct {
		name       string
		pos        Position
		wantValue  int64
		wantCost   int64
		wantGain   int64
		wantPct    float64
		wantSource string
	}{
		{
			name:       "zero_cost_basis",
			pos:        Position{Ticker: "BONUS3", Quantity: decimal.NewFromInt(10), AvgPrice: 0, CurrentPrice: price(5000)},
			wantValue:  50000,
			wantCost:   0,
			wantGain:   50000,
			wantPct:    0,
			wantSource: PriceSourceMarket,
		},
		{
			name:       "fractional_quantity",
			pos:        Position{Ticker: "HGLG11", Quantity: decimal.RequireFromString("2.5"), AvgPrice: 10000, CurrentPrice: price(12000)},
			wantValue:  30000,
			wantCost:   25000,
			wantGain:   5000,
			wantPct:    20,
			wantSource: PriceSourceMarket,
		},
		{
			name:       "missing_price_carried_at_cost",
			pos:        Position{Ticker: "CDB", Quantity: decimal.NewFromInt(3), AvgPrice: 1000},
			wantValue:  3000,
			wantCost:   3000,
			wantGain:   0,
			wantPct:    0,
			wantSource: PriceSourceCost,
		},
		{
			name:       "crypto_rounds_to_cents",
			pos:        Position{Ticker: "BTC", Quantity: decimal.RequireFromString("0.00012345"), AvgPrice: 35000000, CurrentPrice: price(35000000)},
			wantValue:  4321,
			wantCost:   4321,
			wantGain:   0,
			wantPct:    0,
			wantSource: PriceSourceMarket,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Value(tt.pos)
			if v.CurrentValue != tt.wantValue {
				t.Errorf("value = %d, want %d", v.CurrentValue, tt.wantValue)
			}
			if v.Cost != tt.wantCost {
				t.Errorf("cost = %d, want %d", v.Cost, tt.wantCost)
			}
			if v.GainLoss != tt.wantGain {
				t.Errorf("gain = %d, want %d", v.GainLoss, tt.wantGain)
			}
			if v.GainPct != tt.wantPct {
				t.Errorf("gain_pct = %v, want %v", v.GainPct, tt.wantPct)
			}
			if v.PriceSource != tt.wantSource {
				t.Errorf("source = %s, want %s", v.PriceSource, tt.wantSource)
			}
		})
	}
}

func TestValuePortfolio(t *testing.T) {
	p := ValuePortfolio([]Position{
		{Ticker: "BONUS3", Quantity: decimal.NewFromInt(10), AvgPrice: 0, CurrentPrice: price(5000)},
		{Ticker: "HGLG11", Quantity: decimal.RequireFromString("2.5"), AvgPrice: 10000, CurrentPrice: price(12000)},
		{Ticker: "CDB", Quantity: decimal.NewFromInt(3), AvgPrice: 1000},
	})

	if len(p.Holdings) != 3 {
		t.Fatalf("expected 3 holdings, got %d", len(p.Holdings))
	}
	if p.TotalValue != 83000 || p.TotalCost != 28000 || p.TotalGain != 55000 {
		t.Errorf("totals = %d/%d/%d, want 83000/28000/55000", p.TotalValue, p.TotalCost, p.TotalGain)
	}
	if p.TotalGainPct != 196.43 {
		t.Errorf("total gain pct = %v, want 196.43", p.TotalGainPct)
	}

	empty := ValuePortfolio(nil)
	if empty.Holdings == nil || empty.TotalGainPct != 0 {
		t.Errorf("unexpected empty portfolio %+v", empty)
	}
}
