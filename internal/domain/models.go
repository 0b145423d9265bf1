package domain

import (
	"time"

	"github.com/comanda/backoffice/internal/money"
)

// OrderType distinguishes how an order is fulfilled.
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine-in"
	OrderTypeDelivery OrderType = "delivery"
	OrderTypeTakeaway OrderType = "takeaway"
)

// AmountType selects how a discount or surcharge value is interpreted.
type AmountType string

const (
	AmountPercentage AmountType = "percentage"
	AmountFixed      AmountType = "fixed"
)

// CouponKind enumerates supported coupon discount strategies.
type CouponKind string

const (
	CouponPercentage   CouponKind = "percentage"
	CouponFixed        CouponKind = "fixed"
	CouponFreeShipping CouponKind = "free_shipping"
	CouponBuyOneGetOne CouponKind = "buy_one_get_one"
)

// RecordStatus is the lifecycle state of a payment record.
// Records are append-only: corrections are new records, never updates.
type RecordStatus string

const (
	RecordStatusCompleted RecordStatus = "completed"
	RecordStatusPending   RecordStatus = "pending"
	RecordStatusCancelled RecordStatus = "cancelled"
	RecordStatusRefunded  RecordStatus = "refunded"
)

// LineItem is one cart line.
type LineItem struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Quantity     int         `json:"quantity"`
	UnitPrice    money.Money `json:"unit_price_cents"`
	LineDiscount money.Money `json:"line_discount_cents"`
}

// Total returns quantity × unitPrice − lineDiscount, clamped at zero.
func (li LineItem) Total() money.Money {
	return money.Max0(money.Money(int64(li.Quantity))*li.UnitPrice - li.LineDiscount)
}

// Order is the cart handed in by the POS layer.
type Order struct {
	Items []LineItem `json:"items"`
	Type  OrderType  `json:"order_type"`
}

// Subtotal sums line-item totals. Item order is irrelevant.
func (o Order) Subtotal() money.Money {
	var sum money.Money
	for _, li := range o.Items {
		sum += li.Total()
	}
	return sum
}

// DiscountSpec describes a single manual discount.
// Value is a ratio in [0,100] for percentage, minor units for fixed.
type DiscountSpec struct {
	Type  AmountType `json:"type"`
	Value float64    `json:"value"`
}

// SurchargeSpec mirrors DiscountSpec for additive charges (tax, service).
type SurchargeSpec struct {
	Type  AmountType `json:"type"`
	Value float64    `json:"value"`
}

// Coupon is a catalog entry. The validator only reads it; settlement
// increments CurrentUses via the repository's atomic redeem.
type Coupon struct {
	Code           string       `json:"code"`
	Kind           CouponKind   `json:"kind"`
	Value          float64      `json:"value"`
	MinOrderAmount *money.Money `json:"min_order_cents,omitempty"`
	MaxDiscount    *money.Money `json:"max_discount_cents,omitempty"`
	ValidFrom      time.Time    `json:"valid_from"`
	ValidUntil     time.Time    `json:"valid_until"`
	MaxUses        *int         `json:"max_uses,omitempty"`
	CurrentUses    int          `json:"current_uses"`
	IsActive       bool         `json:"is_active"`
}

// PaymentMethod is static catalog configuration, not computed state.
type PaymentMethod struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	RequiresChange       bool    `json:"requires_change"`
	AllowsInstallments   bool    `json:"allows_installments"`
	MaxInstallments      int     `json:"max_installments,omitempty"`
	ProcessingFeePercent float64 `json:"processing_fee_percent,omitempty"`
}

// PaymentBreakdown is the immutable result of a total computation.
// Invariant: Total = Subtotal + TaxAmount + ServiceCharge + ProcessingFee − DiscountAmount,
// clamped at zero; at most one of Change/Remaining is nonzero.
type PaymentBreakdown struct {
	Subtotal       money.Money `json:"subtotal_cents"`
	TaxAmount      money.Money `json:"tax_cents"`
	ServiceCharge  money.Money `json:"service_charge_cents"`
	DiscountAmount money.Money `json:"discount_cents"`
	ProcessingFee  money.Money `json:"processing_fee_cents"`
	Total          money.Money `json:"total_cents"`
	AmountPaid     money.Money `json:"amount_paid_cents"`
	Change         money.Money `json:"change_cents"`
	Remaining      money.Money `json:"remaining_cents"`
}

// PaymentRecord is the settled, append-only ledger entry.
type PaymentRecord struct {
	ID              string           `json:"id"`
	Breakdown       PaymentBreakdown `json:"breakdown"`
	PaymentMethodID string           `json:"payment_method_id"`
	Installments    int              `json:"installments"`
	CouponCode      string           `json:"coupon_code,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Status          RecordStatus     `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
}

// ChangeDenomination is one till denomination of a change breakdown.
type ChangeDenomination struct {
	FaceValue money.Money `json:"face_value_cents"`
	Count     int         `json:"count"`
}

// SettlementEvent is the fire-and-forget analytics payload emitted after
// a successful settlement. Delivery failures never affect the settlement.
type SettlementEvent struct {
	RecordID        string      `json:"record_id"`
	PaymentMethodID string      `json:"payment_method_id"`
	Total           money.Money `json:"total_cents"`
	CouponCode      string      `json:"coupon_code,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// User is a back-office staff account.
type User struct {
	ID           int64     `json:"id"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
