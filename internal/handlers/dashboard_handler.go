package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cortex/internal/services"
)

// DashboardHandler serves the HUD, commitments, summary, insights and onboarding.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
	insightService   services.InsightServicer
	userService      services.UserServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer, insightService services.InsightServicer, userService services.UserServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, insightService: insightService, userService: userService}
}

// ProfileRequest is the onboarding payload.
type ProfileRequest struct {
	MonthlyIncome *int64  `json:"monthly_income" binding:"required,gte=0"`
	Name          *string `json:"name" binding:"omitempty,max=100"`
	Email         *string `json:"email" binding:"omitempty,email,max=255"`
}

// GetHUD returns safe-to-spend and burn rate for the current month
// @Summary     HUD snapshot
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} finance.HUD "HUD"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /api/dashboard/hud [get]
func (h *DashboardHandler) GetHUD(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	hud, err := h.dashboardService.GetHUD(userID, time.Now().UTC())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, hud)
}

// GetCommitments returns future expense totals per month
// @Summary     Commitment mountain
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} finance.MonthAmount "Monthly commitments"
// @Router      /api/dashboard/commitments [get]
func (h *DashboardHandler) GetCommitments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	months, err := h.dashboardService.GetCommitments(userID, time.Now().UTC())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, months)
}

// GetSummary returns the user with the latest transactions
// @Summary     Dashboard summary
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Summary "Summary"
// @Router      /api/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.dashboardService.GetSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetInsights asks the language model for advice on recent spending
// @Summary     Spending insights
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]string "Insights"
// @Router      /api/dashboard/insights [post]
func (h *DashboardHandler) GetInsights(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	insights, err := h.insightService.GenerateInsights(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

// UpdateProfile stores the onboarding answers
// @Summary     Update profile
// @Tags        dashboard
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ProfileRequest true "Monthly income and optional name and email"
// @Success     200 {object} models.User "Updated user"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /api/dashboard/profile [post]
func (h *DashboardHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.UpdateProfile(userID, services.ProfileUpdate{
		MonthlyIncome: req.MonthlyIncome,
		Name:          req.Name,
		Email:         req.Email,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
