package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cortex/internal/models"
	"cortex/internal/services"
)

// SettingsHandler handles account deletion.
type SettingsHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(userService services.UserServicer, auditService services.AuditServicer) *SettingsHandler {
	return &SettingsHandler{userService: userService, auditService: auditService}
}

// DeleteConfirmRequest carries the code and the typed confirmation phrase.
type DeleteConfirmRequest struct {
	Code             string `json:"code" binding:"required,len=6,numeric"`
	ConfirmationText string `json:"confirmation_text" binding:"required"`
}

// RequestDeletion sends a deletion code to the user
// @Summary     Request account deletion
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]string "Code sent"
// @Router      /api/settings/delete-request [post]
func (h *SettingsHandler) RequestDeletion(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.userService.RequestDeletion(c.Request.Context(), userID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(services.AuditEvent{
		UserID:       userID,
		Action:       models.AuditRequestDeletion,
		ResourceType: models.ResourceUser,
		ResourceID:   userID,
		IPAddress:    c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{"message": "Código enviado"})
}

// ConfirmDeletion wipes the user and every row they own
// @Summary     Confirm account deletion
// @Description Requires the code and the phrase "tenho certeza"
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body DeleteConfirmRequest true "Code and phrase"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     400 {object} ErrorResponse "Wrong phrase"
// @Failure     401 {object} ErrorResponse "Invalid or expired code"
// @Router      /api/settings/delete-confirm [post]
func (h *SettingsHandler) ConfirmDeletion(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DeleteConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	if err := h.userService.ConfirmDeletion(userID, req.Code, req.ConfirmationText); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conta excluída"})
}
