package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finny/internal/models"
	"finny/internal/optional"
	"finny/internal/pagination"
)

// AccountServicer defines the contract for account reads and the balance
// mutator used by the ledger.
type AccountServicer interface {
	CreateAccount(userID string, input AccountInput) (*models.Account, error)
	GetUserAccounts(userID string, includeArchived bool, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	GetTotalBalance(userID string) (decimal.Decimal, error)
	ReconcileAccount(userID, accountID string) (*Reconciliation, error)

	// ApplyBalanceEffect applies (or, with reverse, undoes) a transaction's
	// effect on its account(s) inside the caller's database transaction.
	ApplyBalanceEffect(tx *gorm.DB, userID string, effect models.BalanceEffect, reverse bool) error
}

// AccountInput holds the fields for creating an account.
type AccountInput struct {
	Name           string
	Type           models.AccountType
	InitialBalance decimal.Decimal
	Icon           string
	Color          string
}

// Reconciliation compares an account's stored balance with the balance
// implied by its transaction history.
type Reconciliation struct {
	AccountID        string          `json:"account_id"`
	InitialBalance   decimal.Decimal `json:"initial_balance"`
	RecordedBalance  decimal.Decimal `json:"recorded_balance"`
	ExpectedBalance  decimal.Decimal `json:"expected_balance"`
	Drift            decimal.Decimal `json:"drift"`
	TransactionCount int64           `json:"transaction_count"`
	Consistent       bool            `json:"consistent"`
}

// CategoryServicer defines the contract for category lookups.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
}

// TagServicer defines the contract for tags and the tag usage synchronizer.
type TagServicer interface {
	CreateTag(userID, name, color string) (*models.Tag, error)
	GetUserTags(userID string) ([]models.Tag, error)
	SearchTags(userID, query string) ([]models.Tag, error)
	GetTagByID(userID, tagID string) (*models.Tag, error)

	// RequireOwnedTags fails with ErrTagNotFound unless every id names a
	// live tag owned by userID.
	RequireOwnedTags(tx *gorm.DB, userID string, tagIDs []string) error

	// IncrementUsage and DecrementUsage adjust usage counters for the tags
	// owned by userID. Unknown ids are ignored; decrement never goes below zero.
	IncrementUsage(tx *gorm.DB, userID string, tagIDs []string) error
	DecrementUsage(tx *gorm.DB, userID string, tagIDs []string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	Type       *models.TransactionType
	CategoryID *string
	AccountID  *string
	TagID      *string
	FromDate   *time.Time
	ToDate     *time.Time
	Search     *string
}

// TransactionInput holds the fields for creating a transaction.
type TransactionInput struct {
	Amount      decimal.Decimal
	Type        models.TransactionType
	CategoryID  *string
	AccountID   string
	ToAccountID *string
	Date        time.Time
	Note        *string
	TagIDs      []string
}

// TransactionUpdate holds a sparse update. Only fields that are Set are
// applied; for nullable fields an explicit null clears the value.
type TransactionUpdate struct {
	Amount      optional.Value[decimal.Decimal]
	Type        optional.Value[models.TransactionType]
	CategoryID  optional.Value[*string]
	AccountID   optional.Value[string]
	ToAccountID optional.Value[*string]
	Date        optional.Value[time.Time]
	Note        optional.Value[*string]
	TagIDs      optional.Value[[]string]
}

// TransactionServicer is the ledger transaction coordinator. Create, update
// and delete each run as one database transaction covering the record, the
// account balances and the tag usage counters.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, input TransactionInput) (*models.Transaction, error)
	GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
}
