package pricing

import (
	"testing"

	"github.com/comanda/backoffice/internal/domain"
	"github.com/comanda/backoffice/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var creditCard = domain.PaymentMethod{
	ID:                   "credit_card",
	Name:                 "Cartão de Crédito",
	AllowsInstallments:   true,
	MaxInstallments:      12,
	ProcessingFeePercent: 2.99,
}

func TestInstallments(t *testing.T) {
	t.Run("Three installments with fee", func(t *testing.T) {
		plan, err := Installments(10000, creditCard, 3)
		require.NoError(t, err)

		// 10000 + 2.99% = 10299; ceil(10299/3) = 3433; last = 10299 - 2*3433
		assert.Equal(t, money.Money(10299), plan.TotalWithFee)
		assert.Equal(t, money.Money(3433), plan.PerInstallment)
		assert.Equal(t, money.Money(3433), plan.LastInstallment)
		assert.Equal(t, plan.TotalWithFee, plan.PerInstallment*2+plan.LastInstallment)
	})

	t.Run("Last installment absorbs rounding", func(t *testing.T) {
		method := domain.PaymentMethod{ID: "card", AllowsInstallments: true, MaxInstallments: 12}
		plan, err := Installments(10000, method, 3)
		require.NoError(t, err)

		assert.Equal(t, money.Money(3334), plan.PerInstallment)
		assert.Equal(t, money.Money(3332), plan.LastInstallment)
		assert.Equal(t, plan.TotalWithFee, plan.PerInstallment*2+plan.LastInstallment)
	})

	t.Run("Single installment", func(t *testing.T) {
		plan, err := Installments(10000, creditCard, 1)
		require.NoError(t, err)
		assert.Equal(t, money.Money(10299), plan.TotalWithFee)
		assert.Equal(t, money.Money(10299), plan.PerInstallment)
		assert.Equal(t, money.Money(10299), plan.LastInstallment)
	})

	t.Run("Count below one rejected", func(t *testing.T) {
		_, err := Installments(10000, creditCard, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidSpec)
	})

	t.Run("Method without installments rejects count above one", func(t *testing.T) {
		pix := domain.PaymentMethod{ID: "pix", Name: "Pix"}
		_, err := Installments(10000, pix, 2)
		assert.ErrorIs(t, err, domain.ErrInvalidSpec)
	})

	t.Run("Count above method maximum rejected", func(t *testing.T) {
		_, err := Installments(10000, creditCard, 13)
		assert.ErrorIs(t, err, domain.ErrInvalidSpec)
	})

	t.Run("Sum never undershoots total", func(t *testing.T) {
		for count := 1; count <= 12; count++ {
			plan, err := Installments(9999, creditCard, count)
			require.NoError(t, err)

			sum := plan.PerInstallment*money.Money(int64(count-1)) + plan.LastInstallment
			assert.Equal(t, plan.TotalWithFee, sum, "count=%d", count)
			assert.GreaterOrEqual(t, plan.PerInstallment, plan.LastInstallment)
		}
	})
}
