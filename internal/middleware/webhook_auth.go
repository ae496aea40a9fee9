package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "cortex/internal/errors"
)

const signatureHeader = "X-Hub-Signature-256"

// maxWebhookBody bounds the payload read for signature checks.
const maxWebhookBody = 1 << 20

// Sign returns the X-Hub-Signature-256 value for body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// WebhookSignatureMiddleware checks the HMAC-SHA256 signature the WhatsApp
// Cloud API puts on webhook deliveries. The body is restored for the handler.
func WebhookSignatureMiddleware(appSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if appSecret == "" {
			abortWithError(c, apperrors.ErrWebhookNotConfigured, "")
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			abortWithError(c, apperrors.ErrInvalidInput, "Unreadable body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		got := strings.TrimSpace(c.GetHeader(signatureHeader))
		if !hmac.Equal([]byte(got), []byte(Sign(appSecret, body))) {
			abortWithError(c, apperrors.ErrBadSignature, "")
			return
		}
		c.Next()
	}
}
