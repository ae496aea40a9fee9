package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cortex/internal/errors"
	"cortex/internal/middleware"
	"cortex/internal/models"
	"cortex/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService  services.AuthServicer
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthServicer, userService services.UserServicer, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService, auditService: auditService}
}

// RequestOTPRequest represents the OTP request payload
type RequestOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,phone"`
}

// VerifyOTPRequest represents the OTP verification payload
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,phone"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
}

// TokenResponse represents the authentication response with token
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

// RequestOTP sends a login code to the phone over WhatsApp
// @Summary     Request a login code
// @Description Send a 6-digit verification code to the phone number over WhatsApp
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RequestOTPRequest true "Phone number"
// @Success     200 {object} map[string]string "Code sent"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/request-otp [post]
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	if err := h.authService.RequestOTP(c.Request.Context(), req.PhoneNumber); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Código enviado"})
}

// VerifyOTP exchanges a valid code for an access token
// @Summary     Verify a login code
// @Description Verify the code, register the user on first login and return a bearer token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body VerifyOTPRequest true "Phone number and code"
// @Success     200 {object} TokenResponse "Authenticated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid or expired code"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.authService.VerifyOTP(req.PhoneNumber, req.Code)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateAccessToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	h.auditService.Record(services.AuditEvent{
		UserID:       user.ID,
		Action:       models.AuditLogin,
		ResourceType: models.ResourceUser,
		ResourceID:   user.ID,
		IPAddress:    c.ClientIP(),
	})

	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer", User: user})
}

// GetProfile returns the authenticated user
// @Summary     Get current user
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.User "Current user"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /api/me [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
