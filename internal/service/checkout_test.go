package service

import (
	"context"
	"testing"

	"github.com/comanda/backoffice/internal/domain"
	"github.com/comanda/backoffice/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMethodRepo struct {
	methods map[string]domain.PaymentMethod
}

func (f *fakeMethodRepo) GetByID(_ context.Context, id string) (*domain.PaymentMethod, error) {
	m, ok := f.methods[id]
	if !ok {
		return nil, domain.ErrPaymentMethodNotFound
	}
	return &m, nil
}

func (f *fakeMethodRepo) List(_ context.Context) ([]*domain.PaymentMethod, error) {
	out := make([]*domain.PaymentMethod, 0, len(f.methods))
	for id := range f.methods {
		m := f.methods[id]
		out = append(out, &m)
	}
	return out, nil
}

type fakeValidator struct {
	result *CouponResult
	err    error
}

func (f *fakeValidator) Validate(_ context.Context, _ string, _, _ money.Money) (*CouponResult, error) {
	return f.result, f.err
}

func testMethods() *fakeMethodRepo {
	return &fakeMethodRepo{methods: map[string]domain.PaymentMethod{
		"cash": {ID: "cash", Name: "Dinheiro", RequiresChange: true},
		"credit_card": {
			ID: "credit_card", Name: "Cartão de Crédito",
			AllowsInstallments: true, MaxInstallments: 12, ProcessingFeePercent: 2.99,
		},
		"pix": {ID: "pix", Name: "Pix"},
	}}
}

func quoteOrder(prices ...money.Money) domain.Order {
	items := make([]domain.LineItem, len(prices))
	for i, p := range prices {
		items[i] = domain.LineItem{ID: "item", Name: "Prato", Quantity: 1, UnitPrice: p}
	}
	return domain.Order{Type: domain.OrderTypeDineIn, Items: items}
}

func TestCheckoutService_Quote(t *testing.T) {
	ctx := context.Background()

	t.Run("Plain quote without method", func(t *testing.T) {
		svc := NewCheckoutService(testMethods(), &fakeValidator{}, zap.NewNop())

		quote, err := svc.Quote(ctx, QuoteInput{Order: quoteOrder(10000)})
		require.NoError(t, err)
		assert.Equal(t, money.Money(10000), quote.Breakdown.Total)
		assert.Nil(t, quote.Method)
		assert.Nil(t, quote.Plan)
		assert.Empty(t, quote.Change)
	})

	t.Run("Empty order rejected", func(t *testing.T) {
		svc := NewCheckoutService(testMethods(), &fakeValidator{}, zap.NewNop())
		_, err := svc.Quote(ctx, QuoteInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidSpec)
	})

	t.Run("Non-positive quantity rejected", func(t *testing.T) {
		svc := NewCheckoutService(testMethods(), &fakeValidator{}, zap.NewNop())
		order := domain.Order{Items: []domain.LineItem{{ID: "x", Quantity: 0, UnitPrice: 100}}}
		_, err := svc.Quote(ctx, QuoteInput{Order: order})
		assert.ErrorIs(t, err, domain.ErrInvalidSpec)
	})

	t.Run("Negative unit price rejected", func(t *testing.T) {
		svc := NewCheckoutService(testMethods(), &fakeValidator{}, zap.NewNop())
		order := domain.Order{Items: []domain.LineItem{{ID: "x", Quantity: 1, UnitPrice: -100}}}
		_, err := svc.Quote(ctx, QuoteInput{Order: order})
		assert.ErrorIs(t, err, domain.ErrInvalidSpec)
	})

	t.Run("Unknown payment method", func(t *testing.T) {
		svc := NewCheckoutService(testMethods(), &fakeValidator{}, zap.NewNop())
		_, err := svc.Quote(ctx, QuoteInput{Order: quoteOrder(10000), PaymentMethodID: "crypto"})
		assert.ErrorIs(t, err, domain.ErrPaymentMethodNotFound)
	})

	t.Run("Cash quote includes change breakdown", func(t *testing.T) {
		svc := NewCheckoutService(testMethods(), &fakeValidator{}, zap.NewNop())

		quote, err := svc.Quote(ctx, QuoteInput{
			Order:           quoteOrder(9000),
			PaymentMethodID: "cash",
			AmountTendered:  10000,
		})
		require.NoError(t, err)
		assert.Equal(t, money.Money(1000), quote.Breakdown.Change)
		require.Len(t, quote.Change, 1)
		assert.Equal(t, money.Money(1000), quote.Change[0].FaceValue)
		assert.Equal(t, 1, quote.Change[0].Count)
	})

	t.Run("Exact cash yields no change breakdown", func(t *testing.T) {
		svc := NewCheckoutService(testMethods(), &fakeValidator{}, zap.NewNop())

		quote, err := svc.Quote(ctx, QuoteInput{
			Order:           quoteOrder(9000),
			PaymentMethodID: "cash",
			AmountTendered:  9000,
		})
		require.NoError(t, err)
		assert.Empty(t, quote.Change)
	})

	t.Run("Installment quote carries the plan", func(t *testing.T) {
		svc := NewCheckoutService(testMethods(), &fakeValidator{}, zap.NewNop())

		quote, err := svc.Quote(ctx, QuoteInput{
			Order:           quoteOrder(10000),
			PaymentMethodID: "credit_card",
			Installments:    3,
		})
		require.NoError(t, err)
		require.NotNil(t, quote.Plan)
		assert.Equal(t, money.Money(10299), quote.Breakdown.Total)
		assert.Equal(t, quote.Breakdown.Total, quote.Plan.TotalWithFee)
		assert.Equal(t, money.Money(3433), quote.Plan.PerInstallment)
	})

	t.Run("Coupon discount flows into the breakdown", func(t *testing.T) {
		coupon := &domain.Coupon{Code: "SAVE10", Kind: domain.CouponPercentage, Value: 10}
		validator := &fakeValidator{result: &CouponResult{Coupon: coupon, DiscountAmount: 1000}}
		svc := NewCheckoutService(testMethods(), validator, zap.NewNop())

		quote, err := svc.Quote(ctx, QuoteInput{Order: quoteOrder(10000), CouponCode: "SAVE10"})
		require.NoError(t, err)
		assert.Equal(t, money.Money(1000), quote.Breakdown.DiscountAmount)
		assert.Equal(t, money.Money(9000), quote.Breakdown.Total)
		assert.Equal(t, "SAVE10", quote.Coupon.Code)
	})

	t.Run("Coupon failure aborts the quote", func(t *testing.T) {
		validator := &fakeValidator{err: domain.ErrCouponExpired}
		svc := NewCheckoutService(testMethods(), validator, zap.NewNop())

		_, err := svc.Quote(ctx, QuoteInput{Order: quoteOrder(10000), CouponCode: "PAST"})
		assert.ErrorIs(t, err, domain.ErrCouponExpired)
	})
}
