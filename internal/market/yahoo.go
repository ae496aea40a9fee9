package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

const (
	yahooBaseURL  = "https://query1.finance.yahoo.com/v7/finance/quote"
	yahooBatchMax = 50
	yahooUA       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
	yahooSource   = "yahoo"
)

// yahooQuoteResponse is the top-level Yahoo Finance API response.
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []yahooQuoteResult `json:"result"`
		Error  *json.RawMessage   `json:"error"`
	} `json:"quoteResponse"`
}

// yahooQuoteResult is a single quote result from Yahoo Finance.
type yahooQuoteResult struct {
	Symbol                     string  `json:"symbol"`
	RegularMarketPrice         float64 `json:"regularMarketPrice"`
	RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
}

// YahooProvider quotes B3 stocks and FIIs and BRL crypto pairs.
type YahooProvider struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewYahooProvider creates a Yahoo Finance provider. An empty baseURL uses the
// public quote endpoint.
func NewYahooProvider(httpClient *http.Client, baseURL string) *YahooProvider {
	if baseURL == "" {
		baseURL = yahooBaseURL
	}
	return &YahooProvider{httpClient: httpClient, baseURL: baseURL}
}

// Name returns the provider's display name.
func (p *YahooProvider) Name() string { return "Yahoo Finance" }

// Supports returns true for STOCK, FII and CRYPTO. Fixed income has no quote.
func (p *YahooProvider) Supports(holdingType string) bool {
	switch holdingType {
	case "STOCK", "FII", "CRYPTO":
		return true
	default:
		return false
	}
}

// YahooSymbol converts a holding ticker to the provider's spelling: B3 listings
// get ".SA", crypto is quoted against BRL.
func YahooSymbol(a Asset) string {
	ticker := strings.ToUpper(strings.TrimSpace(a.Ticker))
	switch a.Type {
	case "STOCK", "FII":
		if !strings.HasSuffix(ticker, ".SA") {
			return ticker + ".SA"
		}
	case "CRYPTO":
		if !strings.Contains(ticker, "-") {
			return ticker + "-BRL"
		}
	}
	return ticker
}

// FetchPrices fetches current prices from Yahoo Finance in batches.
func (p *YahooProvider) FetchPrices(ctx context.Context, assets []Asset) ([]Quote, []FetchError) {
	if len(assets) == 0 {
		return nil, nil
	}

	symbolToTicker := make(map[string]string, len(assets))
	symbols := make([]string, 0, len(assets))
	for _, a := range assets {
		sym := YahooSymbol(a)
		if _, dup := symbolToTicker[sym]; dup {
			continue
		}
		symbolToTicker[sym] = strings.ToUpper(strings.TrimSpace(a.Ticker))
		symbols = append(symbols, sym)
	}

	var allQuotes []Quote
	var allErrors []FetchError
	now := time.Now().UTC()

	for i := 0; i < len(symbols); i += yahooBatchMax {
		end := min(i+yahooBatchMax, len(symbols))
		quotes, errs := p.fetchBatch(ctx, symbols[i:end], symbolToTicker, now)
		allQuotes = append(allQuotes, quotes...)
		allErrors = append(allErrors, errs...)
	}

	return allQuotes, allErrors
}

func (p *YahooProvider) fetchBatch(ctx context.Context, symbols []string, symbolToTicker map[string]string, now time.Time) ([]Quote, []FetchError) {
	url := p.baseURL + "?symbols=" + strings.Join(symbols, ",")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, batchErrors(symbols, symbolToTicker, fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("User-Agent", yahooUA)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, batchErrors(symbols, symbolToTicker, fmt.Errorf("http request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, batchErrors(symbols, symbolToTicker, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var quoteResp yahooQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quoteResp); err != nil {
		return nil, batchErrors(symbols, symbolToTicker, fmt.Errorf("decoding response: %w", err))
	}

	bySymbol := make(map[string]yahooQuoteResult, len(quoteResp.QuoteResponse.Result))
	for _, r := range quoteResp.QuoteResponse.Result {
		bySymbol[r.Symbol] = r
	}

	var quotes []Quote
	var fetchErrors []FetchError
	for _, sym := range symbols {
		ticker := symbolToTicker[sym]
		r, found := bySymbol[sym]
		if !found {
			fetchErrors = append(fetchErrors, FetchError{Ticker: ticker, Err: fmt.Errorf("symbol %s not found in response", sym)})
			continue
		}
		if r.RegularMarketPrice <= 0 {
			fetchErrors = append(fetchErrors, FetchError{Ticker: ticker, Err: fmt.Errorf("zero price for %s", sym)})
			continue
		}
		quotes = append(quotes, Quote{
			Ticker:     ticker,
			Price:      int64(math.Round(r.RegularMarketPrice * 100)),
			ChangePct:  math.Round(r.RegularMarketChangePercent*100) / 100,
			Source:     yahooSource,
			RecordedAt: now,
		})
	}

	return quotes, fetchErrors
}

// batchErrors creates FetchErrors for every symbol in a failed batch.
func batchErrors(symbols []string, symbolToTicker map[string]string, err error) []FetchError {
	errs := make([]FetchError, len(symbols))
	for i, sym := range symbols {
		errs[i] = FetchError{Ticker: symbolToTicker[sym], Err: err}
	}
	return errs
}
