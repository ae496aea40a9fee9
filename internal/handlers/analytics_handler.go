package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cortex/internal/finance"
	"cortex/internal/models"
	"cortex/internal/services"
)

// AnalyticsHandler exposes forecasting and the investment portfolio.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
	portfolioService services.PortfolioServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer, portfolioService services.PortfolioServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, portfolioService: portfolioService}
}

// SimulateRequest describes a hypothetical purchase, in cents.
type SimulateRequest struct {
	Description  string `json:"description" binding:"max=200"`
	TotalAmount  int64  `json:"total_amount" binding:"required,gt=0"`
	Installments int    `json:"installments" binding:"omitempty,min=1"`
}

// AddHoldingRequest represents a new position. Quantity is a decimal string.
type AddHoldingRequest struct {
	Ticker   string             `json:"ticker" binding:"required,max=20"`
	Name     string             `json:"name" binding:"max=100"`
	Type     models.HoldingType `json:"type" binding:"required,holding_type"`
	Quantity string             `json:"quantity" binding:"required"`
	AvgPrice int64              `json:"avg_price" binding:"gte=0"`
}

// GetForecast projects the balance from monthly history
// @Summary     Balance forecast
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} finance.Forecast "Forecast or insufficient data status"
// @Router      /api/analytics/forecast [get]
func (h *AnalyticsHandler) GetForecast(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	forecast, err := h.analyticsService.Forecast(userID, time.Now().UTC())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, forecast)
}

// GetCashflow returns income and expense per recent month
// @Summary     Monthly cashflow
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} finance.MonthlyFlow "Monthly flows"
// @Router      /api/analytics/cashflow [get]
func (h *AnalyticsHandler) GetCashflow(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	flows, err := h.analyticsService.Cashflow(userID, time.Now().UTC())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, flows)
}

// GetAnomalies lists expenses far above their category's usual value
// @Summary     Spending anomalies
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} finance.Anomaly "Anomalies"
// @Router      /api/analytics/anomalies [get]
func (h *AnalyticsHandler) GetAnomalies(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	anomalies, err := h.analyticsService.Anomalies(userID, time.Now().UTC())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, anomalies)
}

// Simulate compares the forecast with and without a purchase
// @Summary     What-if simulation
// @Tags        analytics
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SimulateRequest true "Purchase"
// @Success     200 {object} finance.Simulation "Simulation"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /api/analytics/simulate [post]
func (h *AnalyticsHandler) Simulate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	sim, err := h.analyticsService.Simulate(userID, finance.Scenario{
		Description:  req.Description,
		Total:        req.TotalAmount,
		Installments: req.Installments,
	}, time.Now().UTC())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sim)
}

// GetPortfolio values every holding at its latest market price
// @Summary     Investment portfolio
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} finance.Portfolio "Portfolio"
// @Router      /api/analytics/investments [get]
func (h *AnalyticsHandler) GetPortfolio(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	portfolio, err := h.portfolioService.GetPortfolio(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, portfolio)
}

// AddHolding records a position and tries to fetch its price
// @Summary     Add holding
// @Tags        analytics
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddHoldingRequest true "Holding"
// @Success     201 {object} models.Holding "Holding"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /api/analytics/investments/add [post]
func (h *AnalyticsHandler) AddHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	holding, err := h.portfolioService.AddHolding(c.Request.Context(), userID, services.HoldingInput{
		Ticker:   req.Ticker,
		Name:     req.Name,
		Type:     req.Type,
		Quantity: req.Quantity,
		AvgPrice: req.AvgPrice,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, holding)
}

// DeleteHolding removes a position
// @Summary     Delete holding
// @Tags        analytics
// @Security    BearerAuth
// @Param       id path string true "Holding ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Router      /api/analytics/investments/{id} [delete]
func (h *AnalyticsHandler) DeleteHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.portfolioService.DeleteHolding(userID, holdingID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
