package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "cortex/internal/errors"
	"cortex/internal/finance"
	"cortex/internal/models"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

func validAccountType(t models.AccountType) bool {
	switch t {
	case models.AccountTypeChecking, models.AccountTypeCredit, models.AccountTypeInvestment, models.AccountTypeCash:
		return true
	}
	return false
}

// nameTaken reports whether the user already has an account with this name,
// ignoring case. exceptID excludes the account being renamed.
func nameTaken(db *gorm.DB, userID, name, exceptID string) (bool, error) {
	var count int64
	q := db.Model(&models.Account{}).Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

func validateCreditFields(limit *int64, closingDay, dueDay *int) error {
	if limit == nil || *limit < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "credit accounts require a non-negative credit_limit")
	}
	if closingDay == nil || !finance.ValidCycleDay(*closingDay) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "closing_day must be between 1 and 31")
	}
	if dueDay == nil || !finance.ValidCycleDay(*dueDay) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "due_day must be between 1 and 31")
	}
	return nil
}

// CreateAccount creates a new account for a user. Names are unique per user.
func (s *accountService) CreateAccount(userID string, in AccountInput) (*models.Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if !validAccountType(in.Type) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be one of CHECKING, CREDIT, INVESTMENT, CASH")
	}
	if in.Type == models.AccountTypeCredit {
		if err := validateCreditFields(in.CreditLimit, in.ClosingDay, in.DueDay); err != nil {
			return nil, err
		}
	}

	account := &models.Account{
		UserID:         userID,
		Name:           name,
		Type:           in.Type,
		InitialBalance: in.InitialBalance,
		CurrentBalance: in.InitialBalance,
		CreditLimit:    in.CreditLimit,
		ClosingDay:     in.ClosingDay,
		DueDay:         in.DueDay,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, userID, name, "")
		if err != nil {
			return err
		}
		if taken {
			return apperrors.ErrDuplicateAccount
		}
		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts returns every account of the user with the summed balance.
func (s *accountService) ListAccounts(userID string) (*AccountList, error) {
	var accounts []models.Account
	if err := s.db.Scopes(models.OwnedBy(userID)).Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	list := &AccountList{Accounts: accounts}
	if list.Accounts == nil {
		list.Accounts = []models.Account{}
	}
	for _, a := range accounts {
		list.TotalBalance += a.CurrentBalance
	}
	return list, nil
}

// GetAccountByID retrieves an account by ID for a specific user
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	return findAccount(s.db, userID, accountID)
}

func findAccount(db *gorm.DB, userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := db.Scopes(models.OwnedRecord(accountID, userID)).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount updates an existing account. Credit fields only apply to
// CREDIT accounts.
func (s *accountService) UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error) {
	var account *models.Account
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		account, err = findAccount(tx, userID, accountID)
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if fields.Name != nil {
			name := strings.TrimSpace(*fields.Name)
			if name == "" {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "account name cannot be empty")
			}
			taken, err := nameTaken(tx, userID, name, account.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperrors.ErrDuplicateAccount
			}
			updates["name"] = name
		}

		if account.IsCredit() {
			if fields.CreditLimit != nil {
				if *fields.CreditLimit < 0 {
					return apperrors.WithMessage(apperrors.ErrInvalidInput, "credit_limit cannot be negative")
				}
				updates["credit_limit"] = *fields.CreditLimit
			}
			if fields.ClosingDay != nil {
				if !finance.ValidCycleDay(*fields.ClosingDay) {
					return apperrors.WithMessage(apperrors.ErrInvalidInput, "closing_day must be between 1 and 31")
				}
				updates["closing_day"] = *fields.ClosingDay
			}
			if fields.DueDay != nil {
				if !finance.ValidCycleDay(*fields.DueDay) {
					return apperrors.WithMessage(apperrors.ErrInvalidInput, "due_day must be between 1 and 31")
				}
				updates["due_day"] = *fields.DueDay
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(account).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// Reload to get fresh data
		if err := tx.Where("id = ?", account.ID).First(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteAccount removes an account that no transaction references.
func (s *accountService) DeleteAccount(userID, accountID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		account, err := findAccount(tx, userID, accountID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Transaction{}).Where("account_id = ?", account.ID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrAccountInUse
		}

		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// EnsureDefaultWallet returns the user's default CASH wallet, creating it on
// first use. An existing CASH account named like the wallet is adopted.
func (s *accountService) EnsureDefaultWallet(tx *gorm.DB, userID string) (*models.Account, error) {
	if tx == nil {
		tx = s.db
	}

	var wallet models.Account
	err := tx.Where("user_id = ? AND is_default = ?", userID, true).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	err = tx.Where("user_id = ? AND type = ? AND LOWER(name) = LOWER(?)", userID, models.AccountTypeCash, models.DefaultWalletName).
		First(&wallet).Error
	switch {
	case err == nil:
		if err := tx.Model(&wallet).Update("is_default", true).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &wallet, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	wallet = models.Account{
		UserID:    userID,
		Name:      models.DefaultWalletName,
		Type:      models.AccountTypeCash,
		IsDefault: true,
	}
	if err := tx.Create(&wallet).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &wallet, nil
}

// ApplyDelta shifts an account's running balance inside the caller's
// transaction. The increment happens in SQL so concurrent writers compose.
func (s *accountService) ApplyDelta(tx *gorm.DB, accountID string, delta int64) error {
	return applyDelta(tx, accountID, delta)
}

func applyDelta(tx *gorm.DB, accountID string, delta int64) error {
	if delta == 0 {
		return nil
	}
	res := tx.Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("current_balance", gorm.Expr("current_balance + ?", delta))
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// Reconcile recomputes an account balance from its transactions and repairs
// any drift in the stored running total.
func (s *accountService) Reconcile(userID, accountID string) (*Reconciliation, error) {
	var result *Reconciliation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		account, err := findAccount(tx, userID, accountID)
		if err != nil {
			return err
		}

		var amounts []int64
		if err := tx.Model(&models.Transaction{}).
			Where("account_id = ?", account.ID).
			Pluck("amount", &amounts).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		derived := finance.Balance(account.InitialBalance, amounts)
		result = &Reconciliation{
			AccountID: account.ID,
			Stored:    account.CurrentBalance,
			Derived:   derived,
			Drift:     finance.Drift(account.CurrentBalance, account.InitialBalance, amounts),
		}
		if result.Drift == 0 {
			return nil
		}
		if err := tx.Model(account).Update("current_balance", derived).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result.Repaired = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetInvoice returns the open billing cycle of a credit account.
func (s *accountService) GetInvoice(userID, accountID string, now time.Time) (*Invoice, error) {
	account, err := findAccount(s.db, userID, accountID)
	if err != nil {
		return nil, err
	}
	summary, err := invoiceFor(s.db, account, now)
	if err != nil {
		return nil, err
	}
	return &Invoice{AccountID: account.ID, AccountName: account.Name, InvoiceSummary: summary}, nil
}
