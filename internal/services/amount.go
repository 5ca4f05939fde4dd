package services

import (
	"github.com/shopspring/decimal"

	apperrors "finny/internal/errors"
)

const amountPlaces = 2

// maxMagnitude is the first value that no longer fits a decimal(15,2) column.
var maxMagnitude = decimal.New(1, 13)

// validateAmount accepts non-negative amounts with at most two fractional
// digits. Finer precision is rejected rather than rounded.
func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount must not be negative")
	}
	return validateBalance(amount)
}

// validateBalance applies the precision and range rules to a signed value.
func validateBalance(value decimal.Decimal) error {
	if !value.Equal(value.Truncate(amountPlaces)) {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount must have at most 2 decimal places")
	}
	if value.Abs().GreaterThanOrEqual(maxMagnitude) {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount is too large")
	}
	return nil
}

// uniqueIDs drops empty and repeated ids, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
