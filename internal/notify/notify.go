// Package notify delivers user-facing messages: OTP codes, chat replies and
// anomaly alerts.
package notify

import (
	"context"
	"errors"

	"cortex/internal/logger"
)

// Message is one outbound notification. Channels use the address they
// understand and skip messages without one.
type Message struct {
	Phone   string
	Email   string
	Subject string
	Body    string
}

// Sender delivers messages over one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// ErrNoAddress is returned when a message has no address for the channel.
var ErrNoAddress = errors.New("message has no address for this channel")

// MultiSender fans a message out to every channel that can address it.
type MultiSender struct {
	senders []Sender
}

// NewMultiSender combines senders. Nil senders are ignored.
func NewMultiSender(senders ...Sender) *MultiSender {
	m := &MultiSender{}
	for _, s := range senders {
		if s != nil {
			m.senders = append(m.senders, s)
		}
	}
	return m
}

// Name returns the channel name.
func (m *MultiSender) Name() string { return "multi" }

// Send delivers to every channel. It succeeds when at least one channel
// accepted the message; otherwise the channel errors are joined.
func (m *MultiSender) Send(ctx context.Context, msg Message) error {
	var errs []error
	delivered := 0
	for _, s := range m.senders {
		err := s.Send(ctx, msg)
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, ErrNoAddress):
		default:
			logger.Get().Warnw("Notification channel failed", "channel", s.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	if delivered > 0 {
		return nil
	}
	if len(errs) == 0 {
		return ErrNoAddress
	}
	return errors.Join(errs...)
}

// LogSender writes messages to the log instead of delivering them. It stands
// in for WhatsApp in development.
type LogSender struct{}

// Name returns the channel name.
func (LogSender) Name() string { return "log" }

// Send logs the message.
func (LogSender) Send(_ context.Context, msg Message) error {
	if msg.Phone == "" {
		return ErrNoAddress
	}
	logger.Get().Infow("Outbound message", "phone", msg.Phone, "body", msg.Body)
	return nil
}
