package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"cortex/internal/config"
	apperrors "cortex/internal/errors"
	"cortex/internal/middleware"
	"cortex/internal/models"
	"cortex/internal/services"
	"cortex/internal/validator"
)

const (
	testUserID    = "0192f3a4-0000-7000-8000-000000000001"
	testAccountID = "0192f3a4-0000-7000-8000-0000000000a1"
	testTxID      = "0192f3a4-0000-7000-8000-0000000000b1"
)

// --- mock services ---

type mockAuthService struct {
	requestOTPFn func(ctx context.Context, phone string) error
	verifyOTPFn  func(phone, code string) (*models.User, error)
}

func (m *mockAuthService) RequestOTP(ctx context.Context, phone string) error {
	if m.requestOTPFn != nil {
		return m.requestOTPFn(ctx, phone)
	}
	return nil
}

func (m *mockAuthService) VerifyOTP(phone, code string) (*models.User, error) {
	if m.verifyOTPFn != nil {
		return m.verifyOTPFn(phone, code)
	}
	return &models.User{}, nil
}

type mockUserService struct {
	getUserByIDFn      func(id string) (*models.User, error)
	updateProfileFn    func(userID string, fields services.ProfileUpdate) (*models.User, error)
	requestDeletionFn  func(ctx context.Context, userID string) error
	confirmDeletionFn  func(userID, code, phrase string) error
	getOrCreateByPhone func(phone string) (*models.User, error)
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByPhone(_ string) (*models.User, error) {
	return &models.User{}, nil
}

func (m *mockUserService) GetOrCreateByPhone(phone string) (*models.User, error) {
	if m.getOrCreateByPhone != nil {
		return m.getOrCreateByPhone(phone)
	}
	return &models.User{}, nil
}

func (m *mockUserService) UpdateProfile(userID string, fields services.ProfileUpdate) (*models.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(userID, fields)
	}
	return &models.User{}, nil
}

func (m *mockUserService) RequestDeletion(ctx context.Context, userID string) error {
	if m.requestDeletionFn != nil {
		return m.requestDeletionFn(ctx, userID)
	}
	return nil
}

func (m *mockUserService) ConfirmDeletion(userID, code, phrase string) error {
	if m.confirmDeletionFn != nil {
		return m.confirmDeletionFn(userID, code, phrase)
	}
	return nil
}

type mockAuditService struct {
	events []services.AuditEvent
}

func (m *mockAuditService) Record(event services.AuditEvent) {
	m.events = append(m.events, event)
}

// verify interface compliance
var (
	_ services.AuthServicer  = (*mockAuthService)(nil)
	_ services.UserServicer  = (*mockUserService)(nil)
	_ services.AuditServicer = (*mockAuditService)(nil)
)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
	config.Set(&config.Config{JWTSecret: "handler-test-secret", JWTExpirationDur: time.Hour})
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/request-otp", handler.RequestOTP)
	r.POST("/auth/verify-otp", handler.VerifyOTP)
	r.GET("/api/me", injectUserID(testUserID), handler.GetProfile)
	return r
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestAuthHandler_RequestOTP(t *testing.T) {
	t.Run("returns 200 and forwards the phone", func(t *testing.T) {
		var gotPhone string
		authSvc := &mockAuthService{
			requestOTPFn: func(_ context.Context, phone string) error {
				gotPhone = phone
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(authSvc, &mockUserService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/request-otp", `{"phone_number":"+5511912345678"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPhone != "+5511912345678" {
			t.Errorf("expected phone to be forwarded, got %q", gotPhone)
		}
	})

	t.Run("returns 400 for a malformed phone", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockUserService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/request-otp", `{"phone_number":"abc"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestAuthHandler_VerifyOTP(t *testing.T) {
	t.Run("returns a bearer token", func(t *testing.T) {
		authSvc := &mockAuthService{
			verifyOTPFn: func(phone, code string) (*models.User, error) {
				if code != "123456" {
					t.Errorf("unexpected code %q", code)
				}
				return &models.User{Base: models.Base{ID: testUserID}, Phone: phone}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(authSvc, &mockUserService{}, audit))

		rec := doRequest(r, "POST", "/auth/verify-otp", `{"phone_number":"+5511912345678","code":"123456"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["token_type"] != "bearer" {
			t.Errorf("expected bearer token type, got %v", result["token_type"])
		}
		claims, err := middleware.ParseAccessToken(result["access_token"].(string))
		if err != nil {
			t.Fatalf("token does not parse: %v", err)
		}
		if claims.Subject != testUserID || claims.Phone != "+5511912345678" {
			t.Errorf("unexpected claims %+v", claims)
		}
		if len(audit.events) != 1 || audit.events[0].Action != "LOGIN" {
			t.Errorf("expected a LOGIN audit event, got %+v", audit.events)
		}
	})

	t.Run("returns 401 for a wrong code", func(t *testing.T) {
		authSvc := &mockAuthService{
			verifyOTPFn: func(_, _ string) (*models.User, error) {
				return nil, apperrors.ErrInvalidOTP
			},
		}
		r := setupAuthRouter(NewAuthHandler(authSvc, &mockUserService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/verify-otp", `{"phone_number":"+5511912345678","code":"000000"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_OTP")
	})

	t.Run("returns 400 for a short code", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockUserService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/verify-otp", `{"phone_number":"+5511912345678","code":"12"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	t.Run("returns the current user", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(id string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: id}, Phone: "+5511912345678", MonthlyIncome: 500000}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, userSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/api/me", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["id"] != testUserID || result["monthly_income"] != float64(500000) {
			t.Errorf("unexpected profile %v", result)
		}
	})

	t.Run("returns 404 when the user is gone", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(_ string) (*models.User, error) {
				return nil, apperrors.ErrUserNotFound
			},
		}
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, userSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/api/me", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "USER_NOT_FOUND")
	})
}
