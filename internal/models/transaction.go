package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// Transaction is the persisted ledger fact. Amount is a magnitude; the
// direction of its effect on balances is derived from Type.
type Transaction struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type        TransactionType `gorm:"not null" json:"type"`
	CategoryID  *string         `gorm:"type:uuid;index" json:"category_id"`
	AccountID   string          `gorm:"type:uuid;not null;index" json:"account_id"`
	ToAccountID *string         `gorm:"type:uuid;index" json:"to_account_id"`
	Date        time.Time       `gorm:"type:date;not null;index" json:"date"`
	Note        *string         `gorm:"size:500" json:"note"`

	// TagIDs is resolved from the transaction_tags association table.
	TagIDs []string `gorm:"-" json:"tag_ids"`
}

// Effect returns the balance effect this transaction has on its account(s).
func (t *Transaction) Effect() BalanceEffect {
	return BalanceEffect{
		Amount:      t.Amount,
		Type:        t.Type,
		AccountID:   t.AccountID,
		ToAccountID: t.ToAccountID,
	}
}

// TransactionTag links a transaction to a tag.
type TransactionTag struct {
	TransactionID string `gorm:"type:uuid;primaryKey"`
	TagID         string `gorm:"type:uuid;primaryKey;index"`
}

// BalanceEffect is everything the balance mutator needs to apply or reverse
// a transaction: the magnitude, the direction and the accounts it touches.
type BalanceEffect struct {
	Amount      decimal.Decimal
	Type        TransactionType
	AccountID   string
	ToAccountID *string
}

// DateOnly truncates t to a calendar date at UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
