// Package market fetches current quotes for portfolio holdings from external
// data sources.
package market

import (
	"context"
	"fmt"
	"time"
)

// Asset is a ticker to quote, with the holding type that decides how the
// ticker is spelled at the provider.
type Asset struct {
	Ticker string
	Type   string
}

// Quote is a successfully fetched price.
type Quote struct {
	Ticker     string
	Price      int64 // cents
	ChangePct  float64
	Source     string
	RecordedAt time.Time
}

// FetchError is a failed quote for one ticker.
type FetchError struct {
	Ticker string
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch price for %s: %v", e.Ticker, e.Err)
}

// Provider fetches current prices for a set of assets.
type Provider interface {
	// Name returns the provider's display name.
	Name() string

	// Supports returns true if this provider can quote the given holding type.
	Supports(holdingType string) bool

	// FetchPrices returns as many quotes as possible plus per-ticker errors.
	FetchPrices(ctx context.Context, assets []Asset) ([]Quote, []FetchError)
}
