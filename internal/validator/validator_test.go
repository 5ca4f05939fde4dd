package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Color    string `validate:"omitempty,hex_color"`
	TxType   string `validate:"omitempty,transaction_type"`
	CatType  string `validate:"omitempty,category_type"`
	AcctType string `validate:"omitempty,account_type"`
	ID       string `validate:"omitempty,resource_id"`
}

func TestCustomTags(t *testing.T) {
	v := validator.New()
	RegisterOn(v)

	tests := []struct {
		name  string
		input sample
		ok    bool
	}{
		{"empty", sample{}, true},
		{"short_color", sample{Color: "#abc"}, true},
		{"long_color", sample{Color: "#6B7280"}, true},
		{"bad_color", sample{Color: "6B7280"}, false},
		{"transfer", sample{TxType: "transfer"}, true},
		{"investment_type", sample{TxType: "investment"}, false},
		{"income_category", sample{CatType: "income"}, true},
		{"transfer_category", sample{CatType: "transfer"}, false},
		{"bank", sample{AcctType: "bank"}, true},
		{"debt", sample{AcctType: "debt"}, false},
		{"uuid", sample{ID: "0190c5a0-0000-7000-8000-000000000001"}, true},
		{"numeric_id", sample{ID: "42"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
