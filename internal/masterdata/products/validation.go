package products

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atelier-retail/atelier/internal/shared"
)

var oneHundred = decimal.NewFromInt(100)

// validateProduct covers the decimal fields the struct validator cannot
// compare: price strictly positive, discount within 0..100, and a coherent
// discount window.
func (s *Service) validateProduct(price, discount decimal.Decimal, start, end *time.Time) error {
	if !price.IsPositive() {
		return fmt.Errorf("%w: price must be greater than zero", shared.ErrValidation)
	}
	if discount.IsNegative() || discount.GreaterThan(oneHundred) {
		return fmt.Errorf("%w: discount percent must be between 0 and 100", shared.ErrValidation)
	}
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("%w: discount end date before start date", shared.ErrValidation)
	}
	return nil
}

// validateVariantTuples rejects duplicate size/color pairs within one
// create request before the unique constraint would.
func validateVariantTuples(variants []CreateVariantRequest) error {
	seen := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		key := v.Size + "\x00" + v.Color
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: duplicate variant size %q color %q", shared.ErrDuplicate, v.Size, v.Color)
		}
		seen[key] = struct{}{}
	}
	return nil
}
