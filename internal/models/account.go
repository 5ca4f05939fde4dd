package models

import "github.com/shopspring/decimal"

// AccountType represents the kind of account
type AccountType string

const (
	AccountTypeCash       AccountType = "cash"
	AccountTypeBank       AccountType = "bank"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeOther      AccountType = "other"
)

// Account is a leaf balance owned by a user.
//
// Balance always equals InitialBalance plus the signed effect of every live
// transaction that touches the account, on either leg of a transfer.
type Account struct {
	Base
	UserID         string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string          `gorm:"not null" json:"name"`
	Type           AccountType     `gorm:"not null" json:"type"`
	Balance        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	InitialBalance decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"initial_balance"`
	Icon           string          `json:"icon,omitempty"`
	Color          string          `json:"color,omitempty"`
	IsArchived     bool            `gorm:"default:false" json:"is_archived"`
}
