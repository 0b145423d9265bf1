package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comanda/backoffice/internal/cache"
	"github.com/comanda/backoffice/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Quoter produces pricing quotes; satisfied by CheckoutService.
type Quoter interface {
	Quote(ctx context.Context, in QuoteInput) (*Quote, error)
}

// EventPublisher enqueues analytics events. Publish must not block; a
// false return means the event was dropped.
type EventPublisher interface {
	Publish(ev domain.SettlementEvent) bool
}

// SettleInput finalizes a checkout. The quote fields are recomputed
// server-side; the client never sends a precomputed total.
type SettleInput struct {
	QuoteInput
	Notes          string
	IdempotencyKey string
}

// SettleResult is the created (or replayed) ledger record.
type SettleResult struct {
	Record *domain.PaymentRecord
	// Duplicate is true when the idempotency key matched an earlier
	// settlement and that record was returned instead of creating one.
	Duplicate bool
}

// SettlementService turns a computed breakdown into an immutable payment
// record. It owns the only side effects in the checkout flow: the ledger
// insert, the paired coupon redeem, and the analytics event.
type SettlementService struct {
	quoter  Quoter
	records domain.SettlementRepository
	idem    cache.IdempotencyStore
	events  EventPublisher
	idemTTL time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewSettlementService creates a SettlementService.
func NewSettlementService(
	quoter Quoter,
	records domain.SettlementRepository,
	idem cache.IdempotencyStore,
	events EventPublisher,
	idemTTL time.Duration,
	logger *zap.Logger,
) *SettlementService {
	return &SettlementService{
		quoter:  quoter,
		records: records,
		idem:    idem,
		events:  events,
		idemTTL: idemTTL,
		logger:  logger,
		now:     time.Now,
	}
}

// Settle recomputes the quote, verifies the order is fully paid and writes
// the payment record. When a coupon is applied, the record insert and the
// coupon usage increment happen in one repository transaction; losing that
// race surfaces as ErrConcurrentRedemption.
//
// An in-flight checkout abandoned before Settle leaves no trace: nothing
// is persisted until this call succeeds.
func (s *SettlementService) Settle(ctx context.Context, in SettleInput) (*SettleResult, error) {
	if in.PaymentMethodID == "" {
		return nil, fmt.Errorf("%w: settlement requires a payment method", domain.ErrInvalidSpec)
	}

	if in.IdempotencyKey != "" {
		recordID, found, err := s.idem.Get(ctx, in.IdempotencyKey)
		if err != nil {
			s.logger.Warn("idempotency lookup failed", zap.Error(err))
		} else if found {
			rec, err := s.records.GetRecordByID(ctx, recordID)
			if err != nil {
				return nil, fmt.Errorf("settlement service: failed to load replayed record %s: %w", recordID, err)
			}
			return &SettleResult{Record: rec, Duplicate: true}, nil
		}
	}

	quote, err := s.quoter.Quote(ctx, in.QuoteInput)
	if err != nil {
		return nil, err
	}

	if quote.Breakdown.Remaining > 0 {
		return nil, fmt.Errorf("%w: %s still due", domain.ErrIncompletePayment, quote.Breakdown.Remaining)
	}

	installments := in.Installments
	if installments == 0 {
		installments = 1
	}

	rec := &domain.PaymentRecord{
		ID:              uuid.New().String(),
		Breakdown:       quote.Breakdown,
		PaymentMethodID: in.PaymentMethodID,
		Installments:    installments,
		Notes:           in.Notes,
		Status:          domain.RecordStatusCompleted,
		CreatedAt:       s.now().UTC(),
	}

	if quote.Coupon != nil {
		rec.CouponCode = quote.Coupon.Code
		err = s.records.SaveRecordRedeemingCoupon(ctx, rec, quote.Coupon.Code)
		if errors.Is(err, domain.ErrCouponExhausted) {
			// The usage cap was reached between validation and settlement.
			// Users see "exhausted"; the distinct log line is for diagnosis.
			s.logger.Warn("concurrent coupon redemption lost",
				zap.String("coupon", quote.Coupon.Code),
				zap.String("record_id", rec.ID),
			)
			return nil, domain.ErrConcurrentRedemption
		}
	} else {
		err = s.records.SaveRecord(ctx, rec)
	}
	if err != nil {
		return nil, fmt.Errorf("settlement service: failed to save record: %w", err)
	}

	if in.IdempotencyKey != "" {
		if err := s.idem.Set(ctx, in.IdempotencyKey, rec.ID, s.idemTTL); err != nil {
			// Best effort: a lost marker risks a duplicate charge attempt
			// being re-settled, not a corrupted ledger.
			s.logger.Warn("failed to store idempotency key", zap.Error(err))
		}
	}

	if !s.events.Publish(domain.SettlementEvent{
		RecordID:        rec.ID,
		PaymentMethodID: rec.PaymentMethodID,
		Total:           rec.Breakdown.Total,
		CouponCode:      rec.CouponCode,
		CreatedAt:       rec.CreatedAt,
	}) {
		s.logger.Warn("analytics queue full, event dropped", zap.String("record_id", rec.ID))
	}

	return &SettleResult{Record: rec}, nil
}
