package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comanda/backoffice/internal/domain"
	"github.com/comanda/backoffice/internal/money"
	"github.com/comanda/backoffice/internal/pricing"
	"go.uber.org/zap"
)

// CouponResult is a successful validation: the matched coupon and the
// discount it grants against the given subtotal.
type CouponResult struct {
	Coupon         *domain.Coupon
	DiscountAmount money.Money
}

// CouponService evaluates coupon codes against orders. It is read-only:
// usage consumption happens at settlement, never here.
type CouponService struct {
	repo          domain.CouponRepository
	lookupTimeout time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewCouponService creates a CouponService.
func NewCouponService(repo domain.CouponRepository, lookupTimeout time.Duration, logger *zap.Logger) *CouponService {
	return &CouponService{
		repo:          repo,
		lookupTimeout: lookupTimeout,
		logger:        logger,
		now:           time.Now,
	}
}

// Validate runs the eligibility cascade for code against an order subtotal.
// Rules short-circuit in a fixed order so the user always sees the first
// failing condition: lookup → validity window → usage cap → minimum order.
// shippingFee is only consulted for free_shipping coupons; the validator
// does not know delivery pricing.
func (s *CouponService) Validate(ctx context.Context, code string, subtotal, shippingFee money.Money) (*CouponResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: empty coupon code", domain.ErrInvalidSpec)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	coupon, err := s.repo.GetByCode(lookupCtx, code)
	if err != nil {
		if errors.Is(err, domain.ErrCouponNotFound) {
			return nil, domain.ErrCouponNotFound
		}
		// Transport or timeout failure is not "invalid code": the UI
		// should offer a retry instead.
		s.logger.Warn("coupon lookup failed",
			zap.String("code", code),
			zap.Error(err),
		)
		return nil, domain.ErrValidationUnavailable
	}

	if !coupon.IsActive {
		return nil, domain.ErrCouponNotFound
	}

	now := s.now()
	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidUntil) {
		return nil, domain.ErrCouponExpired
	}

	if coupon.MaxUses != nil && coupon.CurrentUses >= *coupon.MaxUses {
		return nil, domain.ErrCouponExhausted
	}

	if coupon.MinOrderAmount != nil && subtotal < *coupon.MinOrderAmount {
		return nil, domain.NewBelowMinimumError(*coupon.MinOrderAmount, subtotal)
	}

	amount, err := couponDiscount(coupon, subtotal, shippingFee)
	if err != nil {
		return nil, err
	}

	return &CouponResult{Coupon: coupon, DiscountAmount: amount}, nil
}

// couponDiscount computes the discount amount for an eligible coupon.
func couponDiscount(c *domain.Coupon, subtotal, shippingFee money.Money) (money.Money, error) {
	switch c.Kind {
	case domain.CouponPercentage:
		return pricing.CappedPercent(subtotal, c.Value, c.MaxDiscount), nil
	case domain.CouponFixed:
		return money.Min(money.FromFloat(c.Value), subtotal), nil
	case domain.CouponFreeShipping:
		return shippingFee, nil
	case domain.CouponBuyOneGetOne:
		// Flat half-off approximation of BOGO; kept for parity with the
		// historical catalog semantics.
		return subtotal.Percent(50), nil
	default:
		return 0, fmt.Errorf("%w: unknown coupon kind %q", domain.ErrInvalidSpec, c.Kind)
	}
}
