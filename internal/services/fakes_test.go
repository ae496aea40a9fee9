package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"cortex/internal/market"
	"cortex/internal/notify"
)

// recordingSender captures outbound messages.
type recordingSender struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (r *recordingSender) Name() string { return "recording" }

func (r *recordingSender) Send(_ context.Context, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func (r *recordingSender) last(t *testing.T) notify.Message {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		t.Fatal("expected a message to be sent")
	}
	return r.msgs[len(r.msgs)-1]
}

var sixDigits = regexp.MustCompile(`\d{6}`)

// codeFrom extracts the OTP from the last message sent.
func (r *recordingSender) codeFrom(t *testing.T) string {
	t.Helper()
	code := sixDigits.FindString(r.last(t).Body)
	if code == "" {
		t.Fatalf("no code in message %q", r.last(t).Body)
	}
	return code
}

// fakeCompleter returns a canned completion.
type fakeCompleter struct {
	reply  string
	err    error
	system string
	user   string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.reply, f.err
}

var errNoQuote = errors.New("no quote")

// fakeProvider serves fixed quotes.
type fakeProvider struct {
	quotes map[string]market.Quote
	calls  int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Supports(holdingType string) bool { return holdingType != "FIXED_INCOME" }

func (f *fakeProvider) FetchPrices(_ context.Context, assets []market.Asset) ([]market.Quote, []market.FetchError) {
	f.calls++
	var quotes []market.Quote
	var errs []market.FetchError
	for _, a := range assets {
		if q, ok := f.quotes[a.Ticker]; ok {
			quotes = append(quotes, q)
			continue
		}
		errs = append(errs, market.FetchError{Ticker: a.Ticker, Err: errNoQuote})
	}
	return quotes, errs
}
