package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// EmailSender delivers messages over SMTP to users who registered an email.
type EmailSender struct {
	addr string
	auth smtp.Auth
	from string
	send func(e *email.Email, addr string, a smtp.Auth) error
}

// NewEmailSender creates an SMTP sender with PLAIN auth.
func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &EmailSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
		send: func(e *email.Email, addr string, a smtp.Auth) error { return e.Send(addr, a) },
	}
}

// Name returns the channel name.
func (s *EmailSender) Name() string { return "email" }

// Send mails msg to msg.Email.
func (s *EmailSender) Send(_ context.Context, msg Message) error {
	if msg.Email == "" {
		return ErrNoAddress
	}
	e := email.NewEmail()
	e.From = s.from
	e.To = []string{msg.Email}
	e.Subject = msg.Subject
	if e.Subject == "" {
		e.Subject = "Cortex"
	}
	e.Text = []byte(msg.Body)
	if err := s.send(e, s.addr, s.auth); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}
