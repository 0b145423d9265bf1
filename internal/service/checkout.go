package service

import (
	"context"
	"fmt"

	"github.com/comanda/backoffice/internal/domain"
	"github.com/comanda/backoffice/internal/money"
	"github.com/comanda/backoffice/internal/pricing"
	"go.uber.org/zap"
)

// CouponValidator is the slice of CouponService the checkout flow needs.
type CouponValidator interface {
	Validate(ctx context.Context, code string, subtotal, shippingFee money.Money) (*CouponResult, error)
}

// QuoteInput is one pricing request from the POS layer.
type QuoteInput struct {
	Order           domain.Order
	Discount        *domain.DiscountSpec
	Tax             *domain.SurchargeSpec
	Service         *domain.SurchargeSpec
	PaymentMethodID string
	Installments    int
	AmountTendered  money.Money
	CouponCode      string
	ShippingFee     money.Money
}

// Quote is a computed checkout: the breakdown plus the cash change
// decomposition and installment plan when they apply.
type Quote struct {
	Breakdown      domain.PaymentBreakdown
	Method         *domain.PaymentMethod
	Coupon         *domain.Coupon
	CouponDiscount money.Money
	Change         []domain.ChangeDenomination
	Plan           *pricing.InstallmentPlan
}

// CheckoutService orchestrates the pricing engine: it resolves the payment
// method, validates an optional coupon, computes the breakdown and derives
// change/installments. It holds no state; callers re-invoke it on every
// input change.
type CheckoutService struct {
	methods domain.PaymentMethodRepository
	coupons CouponValidator
	logger  *zap.Logger
}

// NewCheckoutService creates a CheckoutService.
func NewCheckoutService(methods domain.PaymentMethodRepository, coupons CouponValidator, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		methods: methods,
		coupons: coupons,
		logger:  logger,
	}
}

// Quote computes a full pricing quote. It has no side effects: nothing is
// persisted and no coupon use is consumed.
func (s *CheckoutService) Quote(ctx context.Context, in QuoteInput) (*Quote, error) {
	if len(in.Order.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", domain.ErrInvalidSpec)
	}
	for _, item := range in.Order.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %q quantity must be positive", domain.ErrInvalidSpec, item.ID)
		}
		if item.UnitPrice < 0 || item.LineDiscount < 0 {
			return nil, fmt.Errorf("%w: item %q has a negative amount", domain.ErrInvalidSpec, item.ID)
		}
	}

	var method *domain.PaymentMethod
	if in.PaymentMethodID != "" {
		m, err := s.methods.GetByID(ctx, in.PaymentMethodID)
		if err != nil {
			return nil, err
		}
		method = m
	}

	quote := &Quote{Method: method}

	if in.CouponCode != "" {
		result, err := s.coupons.Validate(ctx, in.CouponCode, in.Order.Subtotal(), in.ShippingFee)
		if err != nil {
			return nil, err
		}
		quote.Coupon = result.Coupon
		quote.CouponDiscount = result.DiscountAmount
	}

	breakdown, err := pricing.Compute(pricing.ComputeInput{
		Order:          in.Order,
		Discount:       in.Discount,
		CouponDiscount: quote.CouponDiscount,
		Tax:            in.Tax,
		Service:        in.Service,
		Method:         method,
		Installments:   in.Installments,
		AmountTendered: in.AmountTendered,
	})
	if err != nil {
		return nil, err
	}
	quote.Breakdown = breakdown

	if method != nil && method.RequiresChange && breakdown.Change > 0 {
		change, err := pricing.ChangeBreakdown(breakdown.Change)
		if err != nil {
			return nil, err
		}
		quote.Change = change
	}

	if method != nil && in.Installments > 1 {
		preFee := breakdown.Total - breakdown.ProcessingFee
		plan, err := pricing.Installments(preFee, *method, in.Installments)
		if err != nil {
			return nil, err
		}
		quote.Plan = &plan
	}

	return quote, nil
}
