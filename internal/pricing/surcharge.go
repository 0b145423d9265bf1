package pricing

import (
	"fmt"

	"github.com/comanda/backoffice/internal/domain"
	"github.com/comanda/backoffice/internal/money"
)

// Policy caps for surcharges. A surcharge can exceed the subtotal it is
// computed against (unlike a discount), but not these limits.
const (
	maxSurchargePercent         = 50.0
	maxFixedSurchargeMultiplier = 0.5
)

// Surcharge resolves a tax or service-charge spec against a subtotal.
// It is the additive mirror of Discount.
func Surcharge(subtotal money.Money, spec domain.SurchargeSpec) (money.Money, error) {
	if spec.Value < 0 {
		return 0, fmt.Errorf("%w: negative surcharge value", domain.ErrInvalidSpec)
	}

	switch spec.Type {
	case domain.AmountPercentage:
		if spec.Value > maxSurchargePercent {
			return 0, fmt.Errorf("%w: surcharge percentage above %.0f", domain.ErrInvalidSpec, maxSurchargePercent)
		}
		return subtotal.Percent(spec.Value), nil

	case domain.AmountFixed:
		amount := money.FromFloat(spec.Value)
		if amount > subtotal.Percent(maxFixedSurchargeMultiplier*100) {
			return 0, fmt.Errorf("%w: fixed surcharge exceeds half the subtotal", domain.ErrInvalidSpec)
		}
		return amount, nil

	default:
		return 0, fmt.Errorf("%w: unknown surcharge type %q", domain.ErrInvalidSpec, spec.Type)
	}
}
