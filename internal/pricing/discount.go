// Package pricing implements the checkout pricing engine: discount and
// surcharge resolution, installment computation, total composition and
// cash change breakdown. Everything here is pure and deterministic.
package pricing

import (
	"fmt"

	"github.com/comanda/backoffice/internal/domain"
	"github.com/comanda/backoffice/internal/money"
)

// Discount resolves a discount spec against a subtotal.
// Percentage must be in [0,100]; a fixed discount may not exceed the
// subtotal it discounts.
func Discount(subtotal money.Money, spec domain.DiscountSpec) (money.Money, error) {
	if spec.Value < 0 {
		return 0, fmt.Errorf("%w: negative discount value", domain.ErrInvalidSpec)
	}

	switch spec.Type {
	case domain.AmountPercentage:
		if spec.Value > 100 {
			return 0, fmt.Errorf("%w: discount percentage above 100", domain.ErrInvalidSpec)
		}
		return subtotal.Percent(spec.Value), nil

	case domain.AmountFixed:
		amount := money.FromFloat(spec.Value)
		if amount > subtotal {
			return 0, fmt.Errorf("%w: fixed discount exceeds subtotal", domain.ErrInvalidSpec)
		}
		return amount, nil

	default:
		return 0, fmt.Errorf("%w: unknown discount type %q", domain.ErrInvalidSpec, spec.Type)
	}
}

// CappedPercent returns round(subtotal × pct / 100) limited by cap when
// one is supplied. Used for coupon percentage discounts.
func CappedPercent(subtotal money.Money, pct float64, cap *money.Money) money.Money {
	amount := subtotal.Percent(pct)
	if cap != nil {
		amount = money.Min(amount, *cap)
	}
	return amount
}
