package pricing

import (
	"fmt"

	"github.com/comanda/backoffice/internal/domain"
	"github.com/comanda/backoffice/internal/money"
)

// InstallmentPlan is the fee-adjusted split of a total across installments.
//
// PerInstallment rounds up, so intermediate installments overshoot by at
// most count−1 minor units and the last installment absorbs the deficit.
// This rounding direction is a reconciliation contract: it must not change,
// or historical plans stop adding up.
type InstallmentPlan struct {
	Count           int         `json:"count"`
	TotalWithFee    money.Money `json:"total_with_fee_cents"`
	PerInstallment  money.Money `json:"per_installment_cents"`
	LastInstallment money.Money `json:"last_installment_cents"`
}

// Installments computes the plan for splitting total across count payments
// with the method's processing fee applied.
func Installments(total money.Money, method domain.PaymentMethod, count int) (InstallmentPlan, error) {
	if count < 1 {
		return InstallmentPlan{}, fmt.Errorf("%w: installment count must be at least 1", domain.ErrInvalidSpec)
	}
	if count > 1 && !method.AllowsInstallments {
		return InstallmentPlan{}, fmt.Errorf("%w: method %q does not allow installments", domain.ErrInvalidSpec, method.ID)
	}
	if method.AllowsInstallments && method.MaxInstallments > 0 && count > method.MaxInstallments {
		return InstallmentPlan{}, fmt.Errorf("%w: installment count above method maximum %d", domain.ErrInvalidSpec, method.MaxInstallments)
	}

	totalWithFee := total + total.Percent(method.ProcessingFeePercent)
	per := totalWithFee.CeilDiv(int64(count))
	last := money.Max0(totalWithFee - per*money.Money(int64(count-1)))

	return InstallmentPlan{
		Count:           count,
		TotalWithFee:    totalWithFee,
		PerInstallment:  per,
		LastInstallment: last,
	}, nil
}
