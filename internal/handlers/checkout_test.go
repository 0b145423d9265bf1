package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/comanda/backoffice/internal/domain"
	"github.com/comanda/backoffice/internal/money"
	"github.com/comanda/backoffice/internal/pricing"
	"github.com/comanda/backoffice/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCheckout struct {
	quote *service.Quote
	err   error
}

func (f *fakeCheckout) Quote(_ context.Context, _ service.QuoteInput) (*service.Quote, error) {
	return f.quote, f.err
}

type fakeSettlement struct {
	result *service.SettleResult
	err    error
	lastIn service.SettleInput
}

func (f *fakeSettlement) Settle(_ context.Context, in service.SettleInput) (*service.SettleResult, error) {
	f.lastIn = in
	return f.result, f.err
}

type fakeCoupons struct {
	result *service.CouponResult
	err    error
}

func (f *fakeCoupons) Validate(_ context.Context, _ string, _, _ money.Money) (*service.CouponResult, error) {
	return f.result, f.err
}

type fakeMethods struct {
	methods []*domain.PaymentMethod
}

func (f *fakeMethods) GetByID(_ context.Context, id string) (*domain.PaymentMethod, error) {
	for _, m := range f.methods {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, domain.ErrPaymentMethodNotFound
}

func (f *fakeMethods) List(_ context.Context) ([]*domain.PaymentMethod, error) {
	return f.methods, nil
}

type fakeRecords struct {
	record *domain.PaymentRecord
	err    error
}

func (f *fakeRecords) GetRecordByID(_ context.Context, _ string) (*domain.PaymentRecord, error) {
	return f.record, f.err
}

type handlerDeps struct {
	checkout   *fakeCheckout
	settlement *fakeSettlement
	coupons    *fakeCoupons
	methods    *fakeMethods
	records    *fakeRecords
}

func newTestHandler(deps handlerDeps) *CheckoutHandler {
	if deps.checkout == nil {
		deps.checkout = &fakeCheckout{}
	}
	if deps.settlement == nil {
		deps.settlement = &fakeSettlement{}
	}
	if deps.coupons == nil {
		deps.coupons = &fakeCoupons{}
	}
	if deps.methods == nil {
		deps.methods = &fakeMethods{}
	}
	if deps.records == nil {
		deps.records = &fakeRecords{}
	}
	return NewCheckoutHandler(deps.checkout, deps.settlement, deps.coupons, deps.methods, deps.records, zap.NewNop())
}

const quoteBody = `{
	"order_type": "dine-in",
	"items": [{"id": "i1", "name": "Prato", "quantity": 2, "unit_price_cents": 4500}],
	"payment_method_id": "cash",
	"amount_tendered_cents": 10000
}`

func TestCheckoutHandler_Quote(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		quote := &service.Quote{
			Breakdown: domain.PaymentBreakdown{
				Subtotal:   9000,
				Total:      9000,
				AmountPaid: 10000,
				Change:     1000,
			},
			Change: []domain.ChangeDenomination{{FaceValue: 1000, Count: 1}},
		}
		handler := newTestHandler(handlerDeps{checkout: &fakeCheckout{quote: quote}})

		req := httptest.NewRequest(http.MethodPost, "/api/checkout/quote", bytes.NewBufferString(quoteBody))
		w := httptest.NewRecorder()
		handler.Quote(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp quoteResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, money.Money(9000), resp.Breakdown.Total)
		require.Len(t, resp.Change, 1)
		assert.Equal(t, int64(1000), resp.Change[0].FaceValueCents)
	})

	t.Run("Installment plan included", func(t *testing.T) {
		quote := &service.Quote{
			Breakdown: domain.PaymentBreakdown{Subtotal: 10000, ProcessingFee: 299, Total: 10299},
			Plan: &pricing.InstallmentPlan{
				Count: 3, TotalWithFee: 10299, PerInstallment: 3433, LastInstallment: 3433,
			},
		}
		handler := newTestHandler(handlerDeps{checkout: &fakeCheckout{quote: quote}})

		req := httptest.NewRequest(http.MethodPost, "/api/checkout/quote", bytes.NewBufferString(quoteBody))
		w := httptest.NewRecorder()
		handler.Quote(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp quoteResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.InstallmentPlan)
		assert.Equal(t, int64(3433), resp.InstallmentPlan.PerInstallmentCents)
	})

	t.Run("Malformed body", func(t *testing.T) {
		handler := newTestHandler(handlerDeps{})

		req := httptest.NewRequest(http.MethodPost, "/api/checkout/quote", bytes.NewBufferString(`{broken`))
		w := httptest.NewRecorder()
		handler.Quote(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid input maps to 422", func(t *testing.T) {
		handler := newTestHandler(handlerDeps{checkout: &fakeCheckout{err: domain.ErrInvalidSpec}})

		req := httptest.NewRequest(http.MethodPost, "/api/checkout/quote", bytes.NewBufferString(quoteBody))
		w := httptest.NewRecorder()
		handler.Quote(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Unexpected error maps to 500", func(t *testing.T) {
		handler := newTestHandler(handlerDeps{checkout: &fakeCheckout{err: errors.New("boom")}})

		req := httptest.NewRequest(http.MethodPost, "/api/checkout/quote", bytes.NewBufferString(quoteBody))
		w := httptest.NewRecorder()
		handler.Quote(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestCheckoutHandler_Settle(t *testing.T) {
	record := &domain.PaymentRecord{
		ID:              "rec-1",
		PaymentMethodID: "cash",
		Status:          domain.RecordStatusCompleted,
		CreatedAt:       time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
	}

	t.Run("New settlement returns 201", func(t *testing.T) {
		settlement := &fakeSettlement{result: &service.SettleResult{Record: record}}
		handler := newTestHandler(handlerDeps{settlement: settlement})

		body := `{
			"order_type": "dine-in",
			"items": [{"id": "i1", "name": "Prato", "quantity": 2, "unit_price_cents": 4500}],
			"payment_method_id": "cash",
			"amount_tendered_cents": 10000,
			"notes": "table 4",
			"idempotency_key": "order-42"
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/checkout/settle", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		handler.Settle(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "table 4", settlement.lastIn.Notes)
		assert.Equal(t, "order-42", settlement.lastIn.IdempotencyKey)
		assert.Equal(t, "cash", settlement.lastIn.PaymentMethodID)

		var resp settleResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "rec-1", resp.Record.ID)
		assert.False(t, resp.Duplicate)
	})

	t.Run("Replayed settlement returns 200", func(t *testing.T) {
		settlement := &fakeSettlement{result: &service.SettleResult{Record: record, Duplicate: true}}
		handler := newTestHandler(handlerDeps{settlement: settlement})

		req := httptest.NewRequest(http.MethodPost, "/api/checkout/settle", bytes.NewBufferString(quoteBody))
		w := httptest.NewRecorder()
		handler.Settle(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp settleResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Duplicate)
	})

	t.Run("Incomplete payment maps to 402", func(t *testing.T) {
		settlement := &fakeSettlement{err: domain.ErrIncompletePayment}
		handler := newTestHandler(handlerDeps{settlement: settlement})

		req := httptest.NewRequest(http.MethodPost, "/api/checkout/settle", bytes.NewBufferString(quoteBody))
		w := httptest.NewRecorder()
		handler.Settle(w, req)

		assert.Equal(t, http.StatusPaymentRequired, w.Code)
	})

	t.Run("Concurrent redemption maps to 409", func(t *testing.T) {
		settlement := &fakeSettlement{err: domain.ErrConcurrentRedemption}
		handler := newTestHandler(handlerDeps{settlement: settlement})

		req := httptest.NewRequest(http.MethodPost, "/api/checkout/settle", bytes.NewBufferString(quoteBody))
		w := httptest.NewRecorder()
		handler.Settle(w, req)

		require.Equal(t, http.StatusConflict, w.Code)

		var resp errorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "coupon_exhausted", resp.Code)
	})
}

func TestCheckoutHandler_ValidateCoupon(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		coupon := &domain.Coupon{Code: "SAVE10", Kind: domain.CouponPercentage, Value: 10}
		coupons := &fakeCoupons{result: &service.CouponResult{Coupon: coupon, DiscountAmount: 1000}}
		handler := newTestHandler(handlerDeps{coupons: coupons})

		body := `{"code": "SAVE10", "subtotal_cents": 10000}`
		req := httptest.NewRequest(http.MethodPost, "/api/coupons/validate", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		handler.ValidateCoupon(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp validateCouponResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "SAVE10", resp.Coupon.Code)
		assert.Equal(t, int64(1000), resp.DiscountCents)
	})

	t.Run("Below minimum carries the shortfall", func(t *testing.T) {
		coupons := &fakeCoupons{err: domain.NewBelowMinimumError(3000, 2000)}
		handler := newTestHandler(handlerDeps{coupons: coupons})

		body := `{"code": "MIN30", "subtotal_cents": 2000}`
		req := httptest.NewRequest(http.MethodPost, "/api/coupons/validate", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		handler.ValidateCoupon(w, req)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp errorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "coupon_below_minimum", resp.Code)
		assert.Equal(t, int64(1000), resp.ShortfallCents)
	})

	t.Run("Lookup unavailable maps to 503", func(t *testing.T) {
		coupons := &fakeCoupons{err: domain.ErrValidationUnavailable}
		handler := newTestHandler(handlerDeps{coupons: coupons})

		body := `{"code": "SAVE10", "subtotal_cents": 10000}`
		req := httptest.NewRequest(http.MethodPost, "/api/coupons/validate", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		handler.ValidateCoupon(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("Expired coupon maps to 422", func(t *testing.T) {
		coupons := &fakeCoupons{err: domain.ErrCouponExpired}
		handler := newTestHandler(handlerDeps{coupons: coupons})

		body := `{"code": "PAST", "subtotal_cents": 10000}`
		req := httptest.NewRequest(http.MethodPost, "/api/coupons/validate", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		handler.ValidateCoupon(w, req)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp errorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "coupon_expired", resp.Code)
	})
}

func TestCheckoutHandler_ListPaymentMethods(t *testing.T) {
	methods := &fakeMethods{methods: []*domain.PaymentMethod{
		{ID: "cash", Name: "Dinheiro", RequiresChange: true},
		{ID: "pix", Name: "Pix"},
	}}
	handler := newTestHandler(handlerDeps{methods: methods})

	req := httptest.NewRequest(http.MethodGet, "/api/payment-methods", nil)
	w := httptest.NewRecorder()
	handler.ListPaymentMethods(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp []domain.PaymentMethod
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "cash", resp[0].ID)
}

func TestCheckoutHandler_GetRecord(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		record := &domain.PaymentRecord{ID: "rec-1", Status: domain.RecordStatusCompleted}
		handler := newTestHandler(handlerDeps{records: &fakeRecords{record: record}})

		r := chi.NewRouter()
		r.Get("/api/checkout/records/{id}", handler.GetRecord)

		req := httptest.NewRequest(http.MethodGet, "/api/checkout/records/rec-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp domain.PaymentRecord
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "rec-1", resp.ID)
	})

	t.Run("Not found", func(t *testing.T) {
		handler := newTestHandler(handlerDeps{records: &fakeRecords{err: domain.ErrRecordNotFound}})

		r := chi.NewRouter()
		r.Get("/api/checkout/records/{id}", handler.GetRecord)

		req := httptest.NewRequest(http.MethodGet, "/api/checkout/records/missing", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
