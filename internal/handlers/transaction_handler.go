package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "cortex/internal/errors"
	"cortex/internal/models"
	"cortex/internal/pagination"
	"cortex/internal/services"
	"cortex/internal/uuid"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// Amounts are in cents. INCOME and EXPENSE take a positive magnitude.
type CreateTransactionRequest struct {
	AccountID    string                 `json:"account_id" binding:"omitempty,uuid"`
	ToAccountID  string                 `json:"to_account_id" binding:"omitempty,uuid"`
	Type         models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount       int64                  `json:"amount" binding:"required"`
	Category     string                 `json:"category" binding:"max=100"`
	Description  string                 `json:"description" binding:"max=500"`
	Date         *string                `json:"date"`
	Installments int                    `json:"installments" binding:"omitempty,min=1"`
	IsCleared    bool                   `json:"is_cleared"`
}

// UpdateTransactionRequest represents the request payload for editing a transaction.
type UpdateTransactionRequest struct {
	Amount      *int64                  `json:"amount"`
	Type        *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Category    *string                 `json:"category" binding:"omitempty,max=100"`
	Description *string                 `json:"description" binding:"omitempty,max=500"`
	Date        *string                 `json:"date"`
	AccountID   *string                 `json:"account_id" binding:"omitempty,uuid"`
	IsCleared   *bool                   `json:"is_cleared"`
}

// BulkDeleteRequest represents the payload for deleting many transactions.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=500"`
}

// BulkUpdateRequest represents the payload for editing many transactions.
type BulkUpdateRequest struct {
	IDs         []string `json:"ids" binding:"required,min=1,max=500"`
	Category    *string  `json:"category" binding:"omitempty,max=100"`
	Description *string  `json:"description" binding:"omitempty,max=500"`
	IsCleared   *bool    `json:"is_cleared"`
}

// SearchRequest represents a natural language search.
type SearchRequest struct {
	Query string `json:"query" binding:"required,max=300"`
}

// ListTransactions returns a page of transactions
// @Summary     List transactions
// @Description Newest first, filtered by category, type, account, month or cleared flag
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page       query int    false "Page number (default 1)"
// @Param       limit      query int    false "Items per page (default 20, max 100)"
// @Param       category   query string false "Category (case-insensitive)"
// @Param       type       query string false "INCOME, EXPENSE or TRANSFER"
// @Param       account_id query string false "Account ID"
// @Param       month      query string false "Month (YYYY-MM)"
// @Param       is_cleared query bool   false "Cleared flag"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /api/dashboard/transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		switch txType {
		case models.TransactionTypeIncome, models.TransactionTypeExpense, models.TransactionTypeTransfer:
			filter.Type = &txType
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be INCOME, EXPENSE or TRANSFER")
		}
	}

	if v := c.Query("account_id"); v != "" {
		if !uuid.IsValid(v) {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account_id")
		}
		filter.AccountID = &v
	}

	if v := c.Query("month"); v != "" {
		filter.Month = &v
	}

	if v := c.Query("is_cleared"); v != "" {
		cleared, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid is_cleared")
		}
		filter.IsCleared = &cleared
	}

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	return filter, nil
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Records an entry. An expense with installments > 1 becomes one row per month.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} map[string][]models.Transaction "Created rows"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /api/dashboard/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	date := time.Now().UTC()
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		date = parsed
	}

	rows, err := h.transactionService.CreateTransaction(userID, services.TransactionInput{
		AccountID:    req.AccountID,
		ToAccountID:  req.ToAccountID,
		Type:         req.Type,
		Amount:       req.Amount,
		Category:     req.Category,
		Description:  req.Description,
		Date:         date,
		Installments: req.Installments,
		IsCleared:    req.IsCleared,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transactions": rows})
}

// UpdateTransaction edits one transaction
// @Summary     Update a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Part of an installment purchase"
// @Router      /api/dashboard/transactions/{id} [patch]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	fields := services.TransactionUpdateFields{
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		AccountID:   req.AccountID,
		IsCleared:   req.IsCleared,
	}
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		fields.Date = &parsed
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, txID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Tags        transactions
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Part of an installment purchase"
// @Router      /api/dashboard/transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, txID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// BulkDelete removes a set of transactions atomically
// @Summary     Bulk delete transactions
// @Description Every id must exist and belong to the user, otherwise nothing is deleted
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BulkDeleteRequest true "Transaction IDs"
// @Success     200 {object} map[string]int "Deleted count"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Part of an installment purchase"
// @Router      /api/dashboard/transactions/bulk-delete [post]
func (h *TransactionHandler) BulkDelete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	deleted, err := h.transactionService.BulkDelete(userID, req.IDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Record(services.AuditEvent{
		UserID:       userID,
		Action:       models.AuditBulkDeleteTransactions,
		ResourceType: models.ResourceTransaction,
		IPAddress:    c.ClientIP(),
		Changes:      map[string]interface{}{"ids": req.IDs},
	})

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// BulkUpdate edits a set of transactions atomically
// @Summary     Bulk update transactions
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BulkUpdateRequest true "Transaction IDs and fields"
// @Success     200 {object} map[string]int "Updated count"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /api/dashboard/transactions/bulk-update [post]
func (h *TransactionHandler) BulkUpdate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	updated, err := h.transactionService.BulkUpdate(userID, req.IDs, services.BulkUpdateFields{
		Category:    req.Category,
		Description: req.Description,
		IsCleared:   req.IsCleared,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// ExportCSV streams the filtered transactions as CSV
// @Summary     Export transactions
// @Tags        transactions
// @Produce     text/csv
// @Security    BearerAuth
// @Param       category   query string false "Category"
// @Param       type       query string false "INCOME, EXPENSE or TRANSFER"
// @Param       month      query string false "Month (YYYY-MM)"
// @Success     200 {file} file "CSV file"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /api/dashboard/transactions/export [get]
func (h *TransactionHandler) ExportCSV(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.transactionService.ExportCSV(userID, filter, &buf); err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("transacoes-%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Search runs a natural language query over the user's transactions
// @Summary     Search transactions
// @Description Understands phrases like "gastos com transporte acima de 50 em março"
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SearchRequest true "Query"
// @Success     200 {object} map[string][]models.Transaction "Matches"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /api/dashboard/transactions/search [post]
func (h *TransactionHandler) Search(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	rows, err := h.transactionService.Search(userID, req.Query, time.Now().UTC())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": rows})
}
