package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/comanda/backoffice/internal/domain"
	"github.com/jackc/pgx/v5"
)

const insertRecordSQL = `INSERT INTO payment_records
	(id, subtotal_cents, tax_cents, service_charge_cents, discount_cents,
	 processing_fee_cents, total_cents, amount_paid_cents, change_cents,
	 remaining_cents, payment_method_id, installments, coupon_code, notes,
	 status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

// SettlementRepository persists payment records. The table is append-only:
// there is no UPDATE path, corrections are new records.
type SettlementRepository struct {
	db DBTX
}

// NewSettlementRepository creates a SettlementRepository.
func NewSettlementRepository(db DBTX) *SettlementRepository {
	return &SettlementRepository{db: db}
}

// SaveRecord inserts a payment record.
func (r *SettlementRepository) SaveRecord(ctx context.Context, rec *domain.PaymentRecord) error {
	_, err := r.db.Exec(ctx, insertRecordSQL, recordArgs(rec)...)
	if err != nil {
		return fmt.Errorf("repository: failed to save payment record %s: %w", rec.ID, err)
	}
	return nil
}

// SaveRecordRedeemingCoupon inserts the record and consumes one coupon use
// in the same transaction. Either both happen or neither does, so a
// limited-use coupon can never be consumed without its settlement record
// or redeemed past its cap.
func (r *SettlementRepository) SaveRecordRedeemingCoupon(ctx context.Context, rec *domain.PaymentRecord, couponCode string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin settlement transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := redeemCouponUse(ctx, tx, couponCode); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, insertRecordSQL, recordArgs(rec)...); err != nil {
		return fmt.Errorf("repository: failed to save payment record %s: %w", rec.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit settlement: %w", err)
	}

	return nil
}

// GetRecordByID loads one payment record.
func (r *SettlementRepository) GetRecordByID(ctx context.Context, id string) (*domain.PaymentRecord, error) {
	rec := &domain.PaymentRecord{}

	err := r.db.QueryRow(ctx,
		`SELECT id, subtotal_cents, tax_cents, service_charge_cents, discount_cents,
		        processing_fee_cents, total_cents, amount_paid_cents, change_cents,
		        remaining_cents, payment_method_id, installments, coupon_code, notes,
		        status, created_at
		 FROM payment_records
		 WHERE id = $1`,
		id,
	).Scan(
		&rec.ID,
		&rec.Breakdown.Subtotal, &rec.Breakdown.TaxAmount, &rec.Breakdown.ServiceCharge,
		&rec.Breakdown.DiscountAmount, &rec.Breakdown.ProcessingFee, &rec.Breakdown.Total,
		&rec.Breakdown.AmountPaid, &rec.Breakdown.Change, &rec.Breakdown.Remaining,
		&rec.PaymentMethodID, &rec.Installments, &rec.CouponCode, &rec.Notes,
		&rec.Status, &rec.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("repository: failed to get payment record %s: %w", id, err)
	}

	return rec, nil
}

func recordArgs(rec *domain.PaymentRecord) []any {
	b := rec.Breakdown
	return []any{
		rec.ID,
		int64(b.Subtotal), int64(b.TaxAmount), int64(b.ServiceCharge), int64(b.DiscountAmount),
		int64(b.ProcessingFee), int64(b.Total), int64(b.AmountPaid), int64(b.Change),
		int64(b.Remaining),
		rec.PaymentMethodID, rec.Installments, rec.CouponCode, rec.Notes,
		string(rec.Status), rec.CreatedAt,
	}
}
