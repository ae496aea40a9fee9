package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cortex/internal/logger"
	"cortex/internal/services"
)

// WebhookHandler receives WhatsApp Cloud API deliveries.
type WebhookHandler struct {
	messageService services.MessageServicer
	verifyToken    string
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(messageService services.MessageServicer, verifyToken string) *WebhookHandler {
	return &WebhookHandler{messageService: messageService, verifyToken: verifyToken}
}

// WebhookPayload is the subset of the Cloud API notification we read.
type WebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Messages []WebhookMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// WebhookMessage is one inbound message.
type WebhookMessage struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

// Verify answers the subscription handshake
// @Summary     Webhook verification
// @Tags        webhook
// @Produce     plain
// @Param       hub.mode         query string true "subscribe"
// @Param       hub.verify_token query string true "Verify token"
// @Param       hub.challenge    query string true "Challenge"
// @Success     200 {string} string "Challenge"
// @Failure     403 {string} string "Forbidden"
// @Router      /webhook [get]
func (h *WebhookHandler) Verify(c *gin.Context) {
	if h.verifyToken == "" || c.Query("hub.mode") != "subscribe" || c.Query("hub.verify_token") != h.verifyToken {
		c.String(http.StatusForbidden, "Forbidden")
		return
	}
	c.String(http.StatusOK, c.Query("hub.challenge"))
}

// Receive handles inbound messages. It always answers 200 so the provider
// does not retry payloads we cannot use.
// @Summary     Webhook delivery
// @Tags        webhook
// @Accept      json
// @Produce     json
// @Param       X-Hub-Signature-256 header string true "HMAC-SHA256 of the body"
// @Success     200 {object} map[string]string "Accepted"
// @Failure     401 {object} ErrorResponse "Invalid signature"
// @Router      /webhook [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.Get().Warnw("unreadable webhook payload", "error", err)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || msg.Text.Body == "" {
					continue
				}
				_, err := h.messageService.HandleInbound(c.Request.Context(), services.InboundMessage{
					ID:    msg.ID,
					Phone: msg.From,
					Text:  msg.Text.Body,
				})
				if err != nil {
					logger.Get().Errorw("failed to handle inbound message", "message_id", msg.ID, "error", err)
				}
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
