package domain

import "context"

// CouponRepository looks up catalog entries. Lookups may be remote and
// must honor context cancellation.
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*Coupon, error)
}

// PaymentMethodRepository exposes the static payment method catalog.
type PaymentMethodRepository interface {
	GetByID(ctx context.Context, id string) (*PaymentMethod, error)
	List(ctx context.Context) ([]*PaymentMethod, error)
}

// SettlementRepository persists payment records. Records are append-only.
type SettlementRepository interface {
	SaveRecord(ctx context.Context, rec *PaymentRecord) error
	// SaveRecordRedeemingCoupon writes the record and consumes one coupon
	// use in a single transaction, so a limited-use coupon cannot be
	// redeemed past its cap by concurrent checkouts.
	SaveRecordRedeemingCoupon(ctx context.Context, rec *PaymentRecord, couponCode string) error
	GetRecordByID(ctx context.Context, id string) (*PaymentRecord, error)
}

// UserRepository stores staff accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, login, passwordHash string) (*User, error)
	GetUserByLogin(ctx context.Context, login string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
}

// AnalyticsClient delivers settlement events to the analytics collaborator.
type AnalyticsClient interface {
	SendEvent(ctx context.Context, ev SettlementEvent) error
}
