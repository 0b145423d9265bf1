package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/comanda/backoffice/internal/domain"
	"github.com/comanda/backoffice/internal/money"
	"github.com/jackc/pgx/v5"
)

// CouponRepository reads the coupon catalog. Catalog writes belong to the
// back-office management surface; checkout only reads and redeems.
type CouponRepository struct {
	db DBTX
}

// NewCouponRepository creates a CouponRepository.
func NewCouponRepository(db DBTX) *CouponRepository {
	return &CouponRepository{db: db}
}

// GetByCode looks up a coupon by case-insensitive code.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	coupon := &domain.Coupon{}
	var minOrder, maxDiscount *int64
	var maxUses *int

	err := r.db.QueryRow(ctx,
		`SELECT code, kind, value, min_order_cents, max_discount_cents,
		        valid_from, valid_until, max_uses, current_uses, is_active
		 FROM coupons
		 WHERE lower(code) = lower($1)`,
		code,
	).Scan(
		&coupon.Code, &coupon.Kind, &coupon.Value, &minOrder, &maxDiscount,
		&coupon.ValidFrom, &coupon.ValidUntil, &maxUses, &coupon.CurrentUses, &coupon.IsActive,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, fmt.Errorf("repository: failed to get coupon %q: %w", code, err)
	}

	if minOrder != nil {
		v := money.Money(*minOrder)
		coupon.MinOrderAmount = &v
	}
	if maxDiscount != nil {
		v := money.Money(*maxDiscount)
		coupon.MaxDiscount = &v
	}
	coupon.MaxUses = maxUses

	return coupon, nil
}

// redeemCouponUse consumes one use inside tx. The guard predicate makes
// the increment a compare-and-increment: zero rows means the cap was hit
// by a concurrent settlement.
func redeemCouponUse(ctx context.Context, tx pgx.Tx, code string) error {
	tag, err := tx.Exec(ctx,
		`UPDATE coupons
		 SET current_uses = current_uses + 1
		 WHERE lower(code) = lower($1)
		   AND is_active
		   AND (max_uses IS NULL OR current_uses < max_uses)`,
		code,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to redeem coupon %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCouponExhausted
	}
	return nil
}
