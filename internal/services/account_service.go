package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finny/internal/errors"
	"finny/internal/models"
	"finny/internal/pagination"
)

// accountService handles account reads and balance mutation.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates an account whose balance starts at its initial balance.
func (s *accountService) CreateAccount(userID string, input AccountInput) (*models.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if err := validateBalance(input.InitialBalance); err != nil {
		return nil, err
	}

	accountType := input.Type
	if accountType == "" {
		accountType = models.AccountTypeCash
	}

	account := &models.Account{
		UserID:         userID,
		Name:           name,
		Type:           accountType,
		Balance:        input.InitialBalance,
		InitialBalance: input.InitialBalance,
		Icon:           input.Icon,
		Color:          input.Color,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetUserAccounts retrieves a paginated list of accounts for a user.
func (s *accountService) GetUserAccounts(userID string, includeArchived bool, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	base := s.db.Model(&models.Account{}).Where("user_id = ?", userID)
	if !includeArchived {
		base = base.Where("is_archived = ?", false)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at ASC").
		Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account by ID for a specific user
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// GetTotalBalance sums the balances of the user's non-archived accounts.
func (s *accountService) GetTotalBalance(userID string) (decimal.Decimal, error) {
	var accounts []models.Account
	if err := s.db.Select("balance").
		Where("user_id = ? AND is_archived = ?", userID, false).
		Find(&accounts).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := decimal.Zero
	for i := range accounts {
		total = total.Add(accounts[i].Balance)
	}
	return total, nil
}

// ReconcileAccount recomputes the balance implied by the account's initial
// balance and live transaction history and compares it with the stored one.
func (s *accountService) ReconcileAccount(userID, accountID string) (*Reconciliation, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if err := s.db.Select("id", "amount", "type", "account_id", "to_account_id").
		Where("user_id = ? AND (account_id = ? OR to_account_id = ?)", userID, accountID, accountID).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	expected := account.InitialBalance
	for i := range transactions {
		deltas, err := effectDeltas(transactions[i].Effect())
		if err != nil {
			// A stored transfer without a destination still moves the source.
			if !errors.Is(err, apperrors.ErrInvalidTransfer) {
				return nil, err
			}
			deltas = []accountDelta{{accountID: transactions[i].AccountID, delta: transactions[i].Amount.Neg()}}
		}
		for _, d := range deltas {
			if d.accountID == accountID {
				expected = expected.Add(d.delta)
			}
		}
	}

	drift := account.Balance.Sub(expected)
	return &Reconciliation{
		AccountID:        account.ID,
		InitialBalance:   account.InitialBalance,
		RecordedBalance:  account.Balance,
		ExpectedBalance:  expected,
		Drift:            drift,
		TransactionCount: int64(len(transactions)),
		Consistent:       drift.IsZero(),
	}, nil
}

// ApplyBalanceEffect applies a transaction's effect to its account(s), or
// undoes it when reverse is true. Accounts are resolved by ID and owner and
// locked for the rest of the caller's transaction.
//
// Expense debits the account, income credits it, and a transfer debits the
// source and credits the destination. Reversal negates every delta, so a
// reverse call with the same effect restores the balances exactly.
func (s *accountService) ApplyBalanceEffect(tx *gorm.DB, userID string, effect models.BalanceEffect, reverse bool) error {
	deltas, err := effectDeltas(effect)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, d := range deltas {
		delta := d.delta
		if reverse {
			delta = delta.Neg()
		}

		var account models.Account
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", d.accountID, userID).
			First(&account).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if d.destination {
					return apperrors.WithMessage(apperrors.ErrAccountNotFound, "Destination account not found")
				}
				return apperrors.ErrAccountNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		account.Balance = account.Balance.Add(delta)
		if err := tx.Model(&account).Updates(map[string]interface{}{
			"balance":    account.Balance,
			"updated_at": now,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// accountDelta is the signed change one effect makes to one account.
type accountDelta struct {
	accountID   string
	delta       decimal.Decimal
	destination bool
}

// effectDeltas turns an effect into per-account deltas, source first. A
// transfer whose source and destination coincide collapses into a single
// zero delta so the account is still touched exactly once.
func effectDeltas(effect models.BalanceEffect) ([]accountDelta, error) {
	switch effect.Type {
	case models.TransactionTypeExpense:
		return []accountDelta{{accountID: effect.AccountID, delta: effect.Amount.Neg()}}, nil
	case models.TransactionTypeIncome:
		return []accountDelta{{accountID: effect.AccountID, delta: effect.Amount}}, nil
	case models.TransactionTypeTransfer:
		if effect.ToAccountID == nil || *effect.ToAccountID == "" {
			return nil, apperrors.ErrInvalidTransfer
		}
		if *effect.ToAccountID == effect.AccountID {
			return []accountDelta{{accountID: effect.AccountID, delta: decimal.Zero}}, nil
		}
		return []accountDelta{
			{accountID: effect.AccountID, delta: effect.Amount.Neg()},
			{accountID: *effect.ToAccountID, delta: effect.Amount, destination: true},
		}, nil
	default:
		return nil, apperrors.ErrInvalidTransactionType
	}
}
