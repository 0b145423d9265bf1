package pricing

import (
	"fmt"

	"github.com/comanda/backoffice/internal/domain"
	"github.com/comanda/backoffice/internal/money"
)

// denominations is the BRL till table in centavos, largest first:
// bills 200, 100, 50, 20, 10, 5, 2 reais, then coins 1 real down to 1
// centavo. The greedy walk below is only exact because this table is
// canonical (every value is representable and greedy is optimal for it);
// swapping in an arbitrary table would break both properties.
var denominations = []money.Money{
	20000, 10000, 5000, 2000, 1000, 500, 200,
	100, 50, 25, 10, 5, 1,
}

// ChangeBreakdown decomposes a cash change amount into till denominations.
// The returned counts always sum exactly to amount; the smallest
// denomination is one minor unit, so nothing is ever left over.
func ChangeBreakdown(amount money.Money) ([]domain.ChangeDenomination, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: negative change amount", domain.ErrInvalidSpec)
	}

	var out []domain.ChangeDenomination
	remaining := amount
	for _, d := range denominations {
		if remaining < d {
			continue
		}
		count := int64(remaining / d)
		remaining -= money.Money(count) * d
		out = append(out, domain.ChangeDenomination{FaceValue: d, Count: int(count)})
	}

	return out, nil
}
