package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/monkesto/tally/internal/apperrors"
)

// minorUnitExponent fixes amounts to two decimal places at the API boundary.
// The ledger itself stores integer minor units.
const minorUnitExponent = 2

// ToMinorUnits converts a decimal amount to integer minor units. Amounts with
// more than two decimal places are rejected rather than silently rounded.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.Equal(amount.Round(minorUnitExponent)) {
		return 0, fmt.Errorf("%w: amount %s has more than %d decimal places", apperrors.ErrValidation, amount, minorUnitExponent)
	}
	return amount.Shift(minorUnitExponent).IntPart(), nil
}

// FromMinorUnits converts integer minor units back to a decimal amount.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-minorUnitExponent)
}
