package domain

import (
	"errors"
	"fmt"

	"github.com/comanda/backoffice/internal/money"
)

// Spec and input errors
var (
	ErrInvalidSpec = errors.New("invalid spec")
)

// Coupon validation outcomes. These are expected business conditions,
// surfaced verbatim to the POS UI.
var (
	ErrCouponNotFound        = errors.New("coupon not found")
	ErrCouponExpired         = errors.New("coupon expired")
	ErrCouponExhausted       = errors.New("coupon exhausted")
	ErrValidationUnavailable = errors.New("coupon lookup unavailable")
)

// Settlement errors
var (
	ErrIncompletePayment    = errors.New("payment incomplete")
	ErrConcurrentRedemption = errors.New("coupon redeemed concurrently")
)

// Catalog and account errors
var (
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrRecordNotFound        = errors.New("payment record not found")
	ErrUserExists            = errors.New("user already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
)

// ErrCouponBelowMinimum is the sentinel matched by errors.Is for
// BelowMinimumError values.
var ErrCouponBelowMinimum = errors.New("order below coupon minimum")

// BelowMinimumError reports that the order subtotal does not reach the
// coupon's minimum. It carries the shortfall for display.
type BelowMinimumError struct {
	Minimum   money.Money
	Subtotal  money.Money
	Shortfall money.Money
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("order below coupon minimum: short by %s", e.Shortfall)
}

// Is makes errors.Is(err, ErrCouponBelowMinimum) match.
func (e *BelowMinimumError) Is(target error) bool {
	return target == ErrCouponBelowMinimum
}

// NewBelowMinimumError builds the error with the shortfall precomputed.
func NewBelowMinimumError(minimum, subtotal money.Money) *BelowMinimumError {
	return &BelowMinimumError{
		Minimum:   minimum,
		Subtotal:  subtotal,
		Shortfall: minimum - subtotal,
	}
}
