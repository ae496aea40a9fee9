package finance

import (
	"github.com/shopspring/decimal"
)

// Price sources for a valuation line.
const (
	PriceSourceMarket = "market"
	PriceSourceCost   = "cost"
)

// Position is one holding fed to the valuator. Prices are cents per unit.
type Position struct {
	ID           string
	Ticker       string
	Name         string
	Type         string
	Quantity     decimal.Decimal
	AvgPrice     int64
	CurrentPrice *int64
	ChangePct    float64
}

// Valuation is a valued holding.
type Valuation struct {
	ID           string          `json:"id"`
	Ticker       string          `json:"ticker"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgPrice     int64           `json:"avg_price"`
	CurrentPrice int64           `json:"current_price"`
	PriceSource  string          `json:"price_source"`
	CurrentValue int64           `json:"current_value"`
	Cost         int64           `json:"cost"`
	GainLoss     int64           `json:"gain_loss"`
	GainPct      float64         `json:"gain_pct"`
	ChangePct    float64         `json:"change_pct"`
}

// Portfolio is the valued set of holdings with totals.
type Portfolio struct {
	Holdings     []Valuation `json:"holdings"`
	TotalValue   int64       `json:"total_value"`
	TotalCost    int64       `json:"total_cost"`
	TotalGain    int64       `json:"total_gain"`
	TotalGainPct float64     `json:"total_gain_pct"`
}

// times multiplies a decimal quantity by a cents price, rounding to cents.
func times(qty decimal.Decimal, cents int64) int64 {
	return qty.Mul(decimal.NewFromInt(cents)).Round(0).IntPart()
}

// Value values one position. Without a market price the position is carried
// at cost. gain_pct is 0 when cost is 0.
func Value(p Position) Valuation {
	price := p.AvgPrice
	source := PriceSourceCost
	if p.CurrentPrice != nil {
		price = *p.CurrentPrice
		source = PriceSourceMarket
	}
	value := times(p.Quantity, price)
	cost := times(p.Quantity, p.AvgPrice)
	gain := value - cost
	return Valuation{
		ID:           p.ID,
		Ticker:       p.Ticker,
		Name:         p.Name,
		Type:         p.Type,
		Quantity:     p.Quantity,
		AvgPrice:     p.AvgPrice,
		CurrentPrice: price,
		PriceSource:  source,
		CurrentValue: value,
		Cost:         cost,
		GainLoss:     gain,
		GainPct:      Round2(Percent(gain, cost)),
		ChangePct:    p.ChangePct,
	}
}

// ValuePortfolio values every position and totals them.
func ValuePortfolio(positions []Position) Portfolio {
	out := Portfolio{Holdings: make([]Valuation, 0, len(positions))}
	for _, p := range positions {
		v := Value(p)
		out.Holdings = append(out.Holdings, v)
		out.TotalValue += v.CurrentValue
		out.TotalCost += v.Cost
	}
	out.TotalGain = out.TotalValue - out.TotalCost
	out.TotalGainPct = Round2(Percent(out.TotalGain, out.TotalCost))
	return out
}
