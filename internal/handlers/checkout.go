package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/comanda/backoffice/internal/domain"
	"github.com/comanda/backoffice/internal/money"
	"github.com/comanda/backoffice/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutService produces pricing quotes.
type CheckoutService interface {
	Quote(ctx context.Context, in service.QuoteInput) (*service.Quote, error)
}

// SettlementService finalizes checkouts into ledger records.
type SettlementService interface {
	Settle(ctx context.Context, in service.SettleInput) (*service.SettleResult, error)
}

// CouponService validates coupon codes on their own, for the POS coupon field.
type CouponService interface {
	Validate(ctx context.Context, code string, subtotal, shippingFee money.Money) (*service.CouponResult, error)
}

// RecordReader loads settled records for display.
type RecordReader interface {
	GetRecordByID(ctx context.Context, id string) (*domain.PaymentRecord, error)
}

// CheckoutHandler serves the checkout API surface.
type CheckoutHandler struct {
	checkout   CheckoutService
	settlement SettlementService
	coupons    CouponService
	methods    domain.PaymentMethodRepository
	records    RecordReader
	logger     *zap.Logger
}

// NewCheckoutHandler creates a CheckoutHandler.
func NewCheckoutHandler(
	checkout CheckoutService,
	settlement SettlementService,
	coupons CouponService,
	methods domain.PaymentMethodRepository,
	records RecordReader,
	logger *zap.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkout:   checkout,
		settlement: settlement,
		coupons:    coupons,
		methods:    methods,
		records:    records,
		logger:     logger,
	}
}

type lineItemRequest struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Quantity          int    `json:"quantity"`
	UnitPriceCents    int64  `json:"unit_price_cents"`
	LineDiscountCents int64  `json:"line_discount_cents"`
}

type specRequest struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

type quoteRequest struct {
	OrderType           string            `json:"order_type"`
	Items               []lineItemRequest `json:"items"`
	Discount            *specRequest      `json:"discount,omitempty"`
	Tax                 *specRequest      `json:"tax,omitempty"`
	ServiceCharge       *specRequest      `json:"service_charge,omitempty"`
	PaymentMethodID     string            `json:"payment_method_id,omitempty"`
	Installments        int               `json:"installments,omitempty"`
	AmountTenderedCents int64             `json:"amount_tendered_cents,omitempty"`
	CouponCode          string            `json:"coupon_code,omitempty"`
	ShippingFeeCents    int64             `json:"shipping_fee_cents,omitempty"`
}

type denominationResponse struct {
	FaceValueCents int64 `json:"face_value_cents"`
	Count          int   `json:"count"`
}

type installmentPlanResponse struct {
	Count                int   `json:"count"`
	TotalWithFeeCents    int64 `json:"total_with_fee_cents"`
	PerInstallmentCents  int64 `json:"per_installment_cents"`
	LastInstallmentCents int64 `json:"last_installment_cents"`
}

type quoteResponse struct {
	Breakdown           domain.PaymentBreakdown  `json:"breakdown"`
	CouponCode          string                   `json:"coupon_code,omitempty"`
	CouponDiscountCents int64                    `json:"coupon_discount_cents,omitempty"`
	Change              []denominationResponse   `json:"change,omitempty"`
	InstallmentPlan     *installmentPlanResponse `json:"installment_plan,omitempty"`
}

type settleRequest struct {
	quoteRequest
	Notes          string `json:"notes,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type settleResponse struct {
	Record    *domain.PaymentRecord `json:"record"`
	Duplicate bool                  `json:"duplicate"`
}

type validateCouponRequest struct {
	Code             string `json:"code"`
	SubtotalCents    int64  `json:"subtotal_cents"`
	ShippingFeeCents int64  `json:"shipping_fee_cents,omitempty"`
}

type validateCouponResponse struct {
	Coupon        *domain.Coupon `json:"coupon"`
	DiscountCents int64          `json:"discount_cents"`
}

type errorResponse struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	ShortfallCents int64  `json:"shortfall_cents,omitempty"`
}

func (req quoteRequest) toInput() service.QuoteInput {
	items := make([]domain.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.LineItem{
			ID:           it.ID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			UnitPrice:    money.Money(it.UnitPriceCents),
			LineDiscount: money.Money(it.LineDiscountCents),
		})
	}

	in := service.QuoteInput{
		Order: domain.Order{
			Items: items,
			Type:  domain.OrderType(req.OrderType),
		},
		PaymentMethodID: req.PaymentMethodID,
		Installments:    req.Installments,
		AmountTendered:  money.Money(req.AmountTenderedCents),
		CouponCode:      req.CouponCode,
		ShippingFee:     money.Money(req.ShippingFeeCents),
	}
	if req.Discount != nil {
		in.Discount = &domain.DiscountSpec{Type: domain.AmountType(req.Discount.Type), Value: req.Discount.Value}
	}
	if req.Tax != nil {
		in.Tax = &domain.SurchargeSpec{Type: domain.AmountType(req.Tax.Type), Value: req.Tax.Value}
	}
	if req.ServiceCharge != nil {
		in.Service = &domain.SurchargeSpec{Type: domain.AmountType(req.ServiceCharge.Type), Value: req.ServiceCharge.Value}
	}
	return in
}

// Quote handles POST /api/checkout/quote.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	quote, err := h.checkout.Quote(r.Context(), req.toInput())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toQuoteResponse(quote))
}

// Settle handles POST /api/checkout/settle.
func (h *CheckoutHandler) Settle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := h.settlement.Settle(r.Context(), service.SettleInput{
		QuoteInput:     req.toInput(),
		Notes:          req.Notes,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	h.writeJSON(w, status, settleResponse{Record: result.Record, Duplicate: result.Duplicate})
}

// ValidateCoupon handles POST /api/coupons/validate.
func (h *CheckoutHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := h.coupons.Validate(r.Context(), req.Code,
		money.Money(req.SubtotalCents), money.Money(req.ShippingFeeCents))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, validateCouponResponse{
		Coupon:        result.Coupon,
		DiscountCents: int64(result.DiscountAmount),
	})
}

// ListPaymentMethods handles GET /api/payment-methods.
func (h *CheckoutHandler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.methods.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, methods)
}

// GetRecord handles GET /api/checkout/records/{id}.
func (h *CheckoutHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.records.GetRecordByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func toQuoteResponse(q *service.Quote) quoteResponse {
	resp := quoteResponse{
		Breakdown:           q.Breakdown,
		CouponDiscountCents: int64(q.CouponDiscount),
	}
	if q.Coupon != nil {
		resp.CouponCode = q.Coupon.Code
	}
	for _, d := range q.Change {
		resp.Change = append(resp.Change, denominationResponse{
			FaceValueCents: int64(d.FaceValue),
			Count:          d.Count,
		})
	}
	if q.Plan != nil {
		resp.InstallmentPlan = &installmentPlanResponse{
			Count:                q.Plan.Count,
			TotalWithFeeCents:    int64(q.Plan.TotalWithFee),
			PerInstallmentCents:  int64(q.Plan.PerInstallment),
			LastInstallmentCents: int64(q.Plan.LastInstallment),
		}
	}
	return resp
}

// writeError maps engine errors to HTTP responses. Coupon validation
// outcomes carry machine-readable codes so the POS can show the exact
// failing rule; ValidationUnavailable is the only retryable one.
func (h *CheckoutHandler) writeError(w http.ResponseWriter, err error) {
	var belowMin *domain.BelowMinimumError
	switch {
	case errors.As(err, &belowMin):
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:           "coupon_below_minimum",
			Message:        belowMin.Error(),
			ShortfallCents: int64(belowMin.Shortfall),
		})
	case errors.Is(err, domain.ErrCouponNotFound):
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code: "coupon_not_found", Message: "coupon not found",
		})
	case errors.Is(err, domain.ErrCouponExpired):
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code: "coupon_expired", Message: "coupon expired",
		})
	case errors.Is(err, domain.ErrConcurrentRedemption):
		// Users see the same outcome as an exhausted coupon; the distinct
		// cause is already logged by the settlement service.
		h.writeJSON(w, http.StatusConflict, errorResponse{
			Code: "coupon_exhausted", Message: "coupon exhausted",
		})
	case errors.Is(err, domain.ErrCouponExhausted):
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code: "coupon_exhausted", Message: "coupon exhausted",
		})
	case errors.Is(err, domain.ErrValidationUnavailable):
		h.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Code: "validation_unavailable", Message: "coupon lookup unavailable, try again",
		})
	case errors.Is(err, domain.ErrIncompletePayment):
		h.writeJSON(w, http.StatusPaymentRequired, errorResponse{
			Code: "incomplete_payment", Message: err.Error(),
		})
	case errors.Is(err, domain.ErrPaymentMethodNotFound):
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code: "payment_method_not_found", Message: "payment method not found",
		})
	case errors.Is(err, domain.ErrRecordNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{
			Code: "record_not_found", Message: "payment record not found",
		})
	case errors.Is(err, domain.ErrInvalidSpec):
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code: "invalid_spec", Message: err.Error(),
		})
	default:
		h.logger.Error("checkout request failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *CheckoutHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
