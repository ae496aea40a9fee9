package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "cortex/internal/errors"
	"cortex/internal/uuid"
)

func serveWith(handler gin.HandlerFunc, header http.Header) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(RequestLogging(), ErrorHandler())
	r.GET("/test", handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	for k, v := range header {
		for _, value := range v {
			req.Header.Add(k, value)
		}
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		handler    gin.HandlerFunc
		wantStatus int
		wantCode   string
	}{
		{
			name:       "app error keeps its code",
			handler:    func(c *gin.Context) { _ = c.Error(apperrors.ErrAccountNotFound) },
			wantStatus: http.StatusNotFound,
			wantCode:   "ACCOUNT_NOT_FOUND",
		},
		{
			name: "wrapped app error",
			handler: func(c *gin.Context) {
				_ = c.Error(apperrors.Wrap(apperrors.ErrInternalServer, errors.New("db gone")))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
		{
			name: "bind error",
			handler: func(c *gin.Context) {
				_ = c.Error(errors.New("amount is required")).SetType(gin.ErrorTypeBind)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "unknown error is hidden",
			handler:    func(c *gin.Context) { _ = c.Error(errors.New("pq: relation missing")) },
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveWith(tt.handler, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			body := parseBody(t, rec)
			errObj := body["error"].(map[string]interface{})
			if errObj["code"] != tt.wantCode {
				t.Errorf("expected code %s, got %v", tt.wantCode, errObj["code"])
			}
			if tt.wantCode == "INTERNAL_ERROR" && errObj["message"] != apperrors.ErrInternalServer.Message {
				t.Errorf("expected generic message, got %v", errObj["message"])
			}
		})
	}

	t.Run("response already written", func(t *testing.T) {
		rec := serveWith(func(c *gin.Context) {
			c.JSON(http.StatusAccepted, gin.H{"ok": true})
			_ = c.Error(errors.New("late"))
		}, nil)
		if rec.Code != http.StatusAccepted {
			t.Errorf("expected the handler's response to stand, got %d", rec.Code)
		}
	})
}

func TestRequestLoggingRequestID(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	rec := serveWith(ok, nil)
	generated := rec.Header().Get(requestIDHeader)
	if !uuid.IsValid(generated) {
		t.Fatalf("expected a generated request id, got %q", generated)
	}

	incoming := uuid.New()
	rec = serveWith(ok, http.Header{requestIDHeader: []string{incoming}})
	if got := rec.Header().Get(requestIDHeader); got != incoming {
		t.Errorf("expected incoming id %s to be kept, got %s", incoming, got)
	}

	rec = serveWith(ok, http.Header{requestIDHeader: []string{"<script>"}})
	if got := rec.Header().Get(requestIDHeader); got == "<script>" || !uuid.IsValid(got) {
		t.Errorf("expected a malformed id to be replaced, got %q", got)
	}
}
