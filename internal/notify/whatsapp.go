package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// WhatsAppSender sends text messages through the WhatsApp Cloud API.
type WhatsAppSender struct {
	httpClient *http.Client
	baseURL    string
	token      string
	phoneID    string
}

// NewWhatsAppSender creates a Cloud API sender for the given phone number id.
func NewWhatsAppSender(httpClient *http.Client, baseURL, token, phoneID string) *WhatsAppSender {
	return &WhatsAppSender{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		phoneID:    phoneID,
	}
}

type waTextMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// Name returns the channel name.
func (s *WhatsAppSender) Name() string { return "whatsapp" }

// Send posts a text message to msg.Phone.
func (s *WhatsAppSender) Send(ctx context.Context, msg Message) error {
	if msg.Phone == "" {
		return ErrNoAddress
	}

	payload := waTextMessage{MessagingProduct: "whatsapp", To: strings.TrimPrefix(msg.Phone, "+"), Type: "text"}
	payload.Text.Body = msg.Body
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp api status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
