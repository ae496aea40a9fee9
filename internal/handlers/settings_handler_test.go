package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "cortex/internal/errors"
)

func setupSettingsRouter(handler *SettingsHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("/settings", injectUserID(testUserID))
	auth.POST("/delete-request", handler.RequestDeletion)
	auth.POST("/delete-confirm", handler.ConfirmDeletion)
	return r
}

func TestSettingsHandler_RequestDeletion(t *testing.T) {
	var called string
	userSvc := &mockUserService{
		requestDeletionFn: func(_ context.Context, userID string) error {
			called = userID
			return nil
		},
	}
	audit := &mockAuditService{}
	r := setupSettingsRouter(NewSettingsHandler(userSvc, audit))

	rec := doRequest(r, "POST", "/settings/delete-request", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if called != testUserID {
		t.Errorf("expected deletion requested for %s, got %q", testUserID, called)
	}
	if len(audit.events) != 1 || audit.events[0].Action != "REQUEST_DELETION" {
		t.Errorf("expected a REQUEST_DELETION audit event, got %+v", audit.events)
	}
}

func TestSettingsHandler_ConfirmDeletion(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		serviceErr    error
		wantStatus    int
		wantErrorCode string
	}{
		{
			name:       "confirmed",
			body:       `{"code":"123456","confirmation_text":"tenho certeza"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:          "wrong_phrase",
			body:          `{"code":"123456","confirmation_text":"sim"}`,
			serviceErr:    apperrors.ErrConfirmationPhrase,
			wantStatus:    http.StatusBadRequest,
			wantErrorCode: "INVALID_CONFIRMATION",
		},
		{
			name:          "expired_code",
			body:          `{"code":"123456","confirmation_text":"tenho certeza"}`,
			serviceErr:    apperrors.ErrOTPExpired,
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "OTP_EXPIRED",
		},
		{
			name:          "missing_code",
			body:          `{"confirmation_text":"tenho certeza"}`,
			wantStatus:    http.StatusBadRequest,
			wantErrorCode: "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userSvc := &mockUserService{
				confirmDeletionFn: func(_, _, _ string) error { return tt.serviceErr },
			}
			r := setupSettingsRouter(NewSettingsHandler(userSvc, &mockAuditService{}))

			rec := doRequest(r, "POST", "/settings/delete-confirm", tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantErrorCode != "" {
				assertErrorCode(t, parseJSON(t, rec), tt.wantErrorCode)
			}
		})
	}
}
