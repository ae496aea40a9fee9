package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "cortex/internal/errors"
	"cortex/internal/finance"
	"cortex/internal/models"
	"cortex/internal/pagination"
	"cortex/internal/parser"
	"cortex/internal/uuid"
)

const (
	defaultRecentLimit = 5
	searchLimit        = 100
	searchScanLimit    = 2000
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db             *gorm.DB
	accountService AccountServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accountService AccountServicer) TransactionServicer {
	return &transactionService{
		db:             db,
		accountService: accountService,
	}
}

func validateInput(in *TransactionInput) error {
	if !validTransactionType(in.Type) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be one of INCOME, EXPENSE, TRANSFER")
	}
	if in.Amount == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be zero")
	}
	if in.Type != models.TransactionTypeTransfer && in.Amount < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.Installments <= 0 {
		in.Installments = 1
	}
	if in.Installments > 1 && in.Type != models.TransactionTypeExpense {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "only expenses can be split into installments")
	}
	if in.Installments > finance.MaxInstallments {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, finance.ErrInvalidInstallmentCount.Error())
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	in.Date = in.Date.UTC()
	in.Description = strings.TrimSpace(in.Description)
	in.Category = normalizeCategory(in.Category, in.Type)
	return nil
}

// CreateTransaction records a ledger entry and moves the account balance in
// the same database transaction. Installment purchases become one row per
// month sharing a group id; a transfer between two accounts becomes two legs.
func (s *transactionService) CreateTransaction(userID string, in TransactionInput) ([]models.Transaction, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	var created []models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		account, err := s.resolveAccount(tx, userID, in.AccountID)
		if err != nil {
			return err
		}

		switch {
		case in.Type == models.TransactionTypeTransfer && in.ToAccountID != "":
			created, err = s.createTransfer(tx, userID, account, in)
		case in.Installments > 1:
			created, err = s.createInstallments(tx, userID, account, in)
		default:
			created, err = s.createRows(tx, []models.Transaction{newRow(userID, account.ID, in, signedAmount(in.Type, in.Amount))})
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *transactionService) resolveAccount(tx *gorm.DB, userID, accountID string) (*models.Account, error) {
	if accountID == "" {
		return s.accountService.EnsureDefaultWallet(tx, userID)
	}
	return findAccount(tx, userID, accountID)
}

func newRow(userID, accountID string, in TransactionInput, amount int64) models.Transaction {
	return models.Transaction{
		UserID:            userID,
		AccountID:         accountID,
		Type:              in.Type,
		Amount:            amount,
		Category:          in.Category,
		Description:       in.Description,
		Date:              in.Date,
		IsCleared:         in.IsCleared,
		InstallmentNumber: 1,
		InstallmentsCount: 1,
		RawMessage:        in.RawMessage,
	}
}

// createRows inserts rows and applies their summed amount per account.
func (s *transactionService) createRows(tx *gorm.DB, rows []models.Transaction) ([]models.Transaction, error) {
	if err := tx.Create(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	deltas := make(map[string]int64)
	for _, r := range rows {
		deltas[r.AccountID] += r.Amount
	}
	if err := applyDeltas(tx, deltas); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *transactionService) createInstallments(tx *gorm.DB, userID string, account *models.Account, in TransactionInput) ([]models.Transaction, error) {
	plan, err := finance.Amortize(in.Amount, in.Installments, in.Date)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	group := uuid.New()
	rows := make([]models.Transaction, len(plan))
	for i, p := range plan {
		row := newRow(userID, account.ID, in, -p.Amount)
		row.Date = p.Date
		row.Description = strings.TrimSpace(fmt.Sprintf("%s (%s)", in.Description, p.Info()))
		row.InstallmentNumber = p.Number
		row.InstallmentsCount = p.Count
		row.GroupID = &group
		rows[i] = row
	}
	return s.createRows(tx, rows)
}

func (s *transactionService) createTransfer(tx *gorm.DB, userID string, from *models.Account, in TransactionInput) ([]models.Transaction, error) {
	to, err := findAccount(tx, userID, in.ToAccountID)
	if err != nil {
		return nil, err
	}
	if to.ID == from.ID {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "cannot transfer to the same account")
	}

	amount := finance.Abs(in.Amount)
	group := uuid.New()
	out := newRow(userID, from.ID, in, -amount)
	into := newRow(userID, to.ID, in, amount)
	out.GroupID, into.GroupID = &group, &group
	if in.Description == "" {
		out.Description = "Transferência para " + to.Name
		into.Description = "Transferência de " + from.Name
	}
	return s.createRows(tx, []models.Transaction{out, into})
}

// applyDeltas moves balances in account id order so concurrent batches lock
// rows in the same sequence.
func applyDeltas(tx *gorm.DB, deltas map[string]int64) error {
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := applyDelta(tx, id, deltas[id]); err != nil {
			return err
		}
	}
	return nil
}

// ListTransactions retrieves a paginated, filtered list of the user's transactions.
func (s *transactionService) ListTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base, err := applyTransactionFilters(s.db.Model(&models.Transaction{}).Scopes(models.OwnedBy(userID)), filter)
	if err != nil {
		return nil, err
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.Limit, total)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) (*gorm.DB, error) {
	if f.Category != nil && strings.TrimSpace(*f.Category) != "" {
		q = q.Where("LOWER(category) = LOWER(?)", strings.TrimSpace(*f.Category))
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.AccountID != nil && *f.AccountID != "" {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.IsCleared != nil {
		q = q.Where("is_cleared = ?", *f.IsCleared)
	}
	if f.Month != nil && *f.Month != "" {
		start, err := finance.ParseMonth(*f.Month)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be formatted as YYYY-MM")
		}
		q = q.Where("date >= ? AND date < ?", start, start.AddDate(0, 1, 0))
	}
	if f.FromDate != nil {
		q = q.Where("date >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", f.ToDate.UTC())
	}
	return q, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	return findTransaction(s.db, userID, transactionID)
}

func findTransaction(db *gorm.DB, userID, transactionID string) (*models.Transaction, error) {
	var t models.Transaction
	if err := db.Scopes(models.OwnedRecord(transactionID, userID)).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &t, nil
}

// UpdateTransaction edits one row. Amount, type and account changes move the
// affected balances in the same database transaction. Installment rows only
// accept category, description and cleared changes.
func (s *transactionService) UpdateTransaction(userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error) {
	var result *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := findTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}

		newType := t.Type
		if fields.Type != nil {
			if !validTransactionType(*fields.Type) {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be one of INCOME, EXPENSE, TRANSFER")
			}
			newType = *fields.Type
		}

		newAmount := t.Amount
		switch {
		case fields.Amount != nil:
			if *fields.Amount == 0 || (newType != models.TransactionTypeTransfer && *fields.Amount < 0) {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
			}
			newAmount = signedAmount(newType, *fields.Amount)
		case newType != t.Type && newType != models.TransactionTypeTransfer:
			newAmount = signedAmount(newType, t.Amount)
		}

		newAccount := t.AccountID
		if fields.AccountID != nil && *fields.AccountID != t.AccountID {
			account, err := findAccount(tx, userID, *fields.AccountID)
			if err != nil {
				return err
			}
			newAccount = account.ID
		}

		updates := map[string]interface{}{}
		if newType != t.Type {
			updates["type"] = newType
		}
		if newAmount != t.Amount {
			updates["amount"] = newAmount
		}
		if newAccount != t.AccountID {
			updates["account_id"] = newAccount
		}
		if fields.Category != nil {
			category := strings.TrimSpace(*fields.Category)
			if category == "" {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "category cannot be empty")
			}
			updates["category"] = category
		}
		if fields.Description != nil {
			updates["description"] = strings.TrimSpace(*fields.Description)
		}
		if fields.Date != nil {
			updates["date"] = fields.Date.UTC()
		}
		if fields.IsCleared != nil {
			updates["is_cleared"] = *fields.IsCleared
		}
		if t.InstallmentsCount > 1 && touchesLedger(updates) {
			return apperrors.ErrInstallmentGroup
		}

		oldAccount, oldAmount := t.AccountID, t.Amount
		if len(updates) > 0 {
			if err := tx.Model(&models.Transaction{}).Where("id = ?", t.ID).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		for _, move := range finance.EditDeltas(oldAccount, oldAmount, newAccount, newAmount) {
			if err := applyDelta(tx, move.AccountID, move.Delta); err != nil {
				return err
			}
		}

		result, err = findTransaction(tx, userID, transactionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// touchesLedger reports whether an update changes anything an installment
// group keeps in step across its rows.
func touchesLedger(updates map[string]interface{}) bool {
	for _, key := range []string{"type", "amount", "account_id", "date"} {
		if _, ok := updates[key]; ok {
			return true
		}
	}
	return false
}

// DeleteTransaction removes a row and reverses its effect on the balance.
// A single installment cannot be removed on its own; the whole purchase goes
// through BulkDelete.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		t, err := findTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}
		if t.InstallmentsCount > 1 {
			return apperrors.ErrInstallmentGroup
		}
		if err := tx.Delete(t).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return applyDelta(tx, t.AccountID, -t.Amount)
	})
}

// lockBatch loads every id of the batch for the user. A missing or foreign
// id fails the whole batch before anything is written.
func lockBatch(tx *gorm.DB, userID string, ids []string) ([]models.Transaction, []string, error) {
	if len(ids) == 0 {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "ids must not be empty")
	}
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if !uuid.AllValid(unique) {
		return nil, nil, apperrors.ErrTransactionNotFound
	}

	var rows []models.Transaction
	if err := tx.Where("user_id = ? AND id IN ?", userID, unique).Find(&rows).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(rows) != len(unique) {
		return nil, nil, apperrors.ErrTransactionNotFound
	}
	return rows, unique, nil
}

// checkWholeGroups fails when the batch holds some but not all installments
// of a purchase.
func checkWholeGroups(tx *gorm.DB, userID string, rows []models.Transaction) error {
	inBatch := make(map[string]int64)
	for _, r := range rows {
		if r.InstallmentsCount > 1 && r.GroupID != nil {
			inBatch[*r.GroupID]++
		}
	}
	for group, n := range inBatch {
		var total int64
		if err := tx.Model(&models.Transaction{}).
			Scopes(models.OwnedBy(userID)).
			Where("group_id = ?", group).
			Count(&total).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if total != n {
			return apperrors.ErrInstallmentGroup
		}
	}
	return nil
}

// BulkDelete deletes every listed transaction or none of them. Installments
// must be listed together with the rest of their purchase.
func (s *transactionService) BulkDelete(userID string, ids []string) (int, error) {
	var deleted int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		rows, unique, err := lockBatch(tx, userID, ids)
		if err != nil {
			return err
		}
		if err := checkWholeGroups(tx, userID, rows); err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND id IN ?", userID, unique).Delete(&models.Transaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		deltas := make(map[string]int64)
		for _, r := range rows {
			deltas[r.AccountID] -= r.Amount
		}
		if err := applyDeltas(tx, deltas); err != nil {
			return err
		}
		deleted = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// BulkUpdate sets category, description or cleared flag on every listed
// transaction or on none of them. Amounts are not bulk editable, so balances
// do not move.
func (s *transactionService) BulkUpdate(userID string, ids []string, fields BulkUpdateFields) (int, error) {
	updates := map[string]interface{}{}
	if fields.Category != nil {
		category := strings.TrimSpace(*fields.Category)
		if category == "" {
			return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "category cannot be empty")
		}
		updates["category"] = category
	}
	if fields.Description != nil {
		updates["description"] = strings.TrimSpace(*fields.Description)
	}
	if fields.IsCleared != nil {
		updates["is_cleared"] = *fields.IsCleared
	}
	if len(updates) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "nothing to update")
	}

	var updated int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		rows, unique, err := lockBatch(tx, userID, ids)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Transaction{}).
			Where("user_id = ? AND id IN ?", userID, unique).
			Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updated = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

var csvHeader = []string{"id", "date", "type", "amount", "category", "description", "account", "installment", "is_cleared"}

// ExportCSV writes the filtered transactions, oldest first, as CSV.
func (s *transactionService) ExportCSV(userID string, filter TransactionFilter, w io.Writer) error {
	q, err := applyTransactionFilters(s.db.Scopes(models.OwnedBy(userID)), filter)
	if err != nil {
		return err
	}

	var rows []models.Transaction
	if err := q.Preload("Account").Order("date ASC").Order("created_at ASC").Find(&rows).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	out := csv.NewWriter(w)
	if err := out.Write(csvHeader); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, r := range rows {
		account := ""
		if r.Account != nil {
			account = r.Account.Name
		}
		record := []string{
			r.ID,
			r.Date.UTC().Format(time.DateOnly),
			string(r.Type),
			finance.FormatDecimal(r.Amount),
			r.Category,
			r.Description,
			account,
			r.InstallmentInfo,
			strconv.FormatBool(r.IsCleared),
		}
		if err := out.Write(record); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Search answers a natural language query such as "uber acima de 50 em
// março". Type, amount and period narrow the SQL query; free terms are
// matched against category and description without regard to accents.
func (s *transactionService) Search(userID, query string, now time.Time) ([]models.Transaction, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "query is required")
	}
	parsed := parser.ParseQuery(query, now)

	q := s.db.Scopes(models.OwnedBy(userID))
	if parsed.Type != "" {
		q = q.Where("type = ?", parsed.Type)
	}
	if parsed.MinAmount != nil {
		q = q.Where("ABS(amount) >= ?", *parsed.MinAmount)
	}
	if parsed.MaxAmount != nil {
		q = q.Where("ABS(amount) <= ?", *parsed.MaxAmount)
	}
	if parsed.From != nil {
		q = q.Where("date >= ?", parsed.From.UTC())
	}
	if parsed.To != nil {
		q = q.Where("date <= ?", parsed.To.UTC())
	}

	var candidates []models.Transaction
	if err := q.Order("date DESC").Limit(searchScanLimit).Find(&candidates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	results := make([]models.Transaction, 0)
	for _, t := range candidates {
		if parsed.Matches(t.Category, t.Description) {
			results = append(results, t)
			if len(results) == searchLimit {
				break
			}
		}
	}
	return results, nil
}

// RecentTransactions returns the most recently recorded transactions.
func (s *transactionService) RecentTransactions(userID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	var rows []models.Transaction
	if err := s.db.Scopes(models.OwnedBy(userID)).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if rows == nil {
		rows = []models.Transaction{}
	}
	return rows, nil
}
