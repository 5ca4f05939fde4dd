package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"finny/internal/testutil"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "zero", amount: "0"},
		{name: "whole", amount: "50"},
		{name: "two places", amount: "50.25"},
		{name: "trailing zero beyond precision", amount: "50.250"},
		{name: "three places", amount: "50.255", wantErr: true},
		{name: "negative", amount: "-1.00", wantErr: true},
		{name: "too large", amount: "10000000000000", wantErr: true},
		{name: "largest allowed", amount: "9999999999999.99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAmount(decimal.RequireFromString(tt.amount))
			if tt.wantErr {
				testutil.AssertAppError(t, err, "INVALID_AMOUNT")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateBalance_AllowsNegative(t *testing.T) {
	assert.NoError(t, validateBalance(decimal.RequireFromString("-250.50")))
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, uniqueIDs([]string{"a", "b", "a", "", "c", "b"}))
	assert.Empty(t, uniqueIDs(nil))
	assert.NotNil(t, uniqueIDs(nil))
}
