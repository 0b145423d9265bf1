package pricing

import (
	"fmt"

	"github.com/comanda/backoffice/internal/domain"
	"github.com/comanda/backoffice/internal/money"
)

// ComputeInput carries everything a total computation needs. All fields
// except Order are optional; zero values mean "not applied".
type ComputeInput struct {
	Order          domain.Order
	Discount       *domain.DiscountSpec
	CouponDiscount money.Money
	Tax            *domain.SurchargeSpec
	Service        *domain.SurchargeSpec
	Method         *domain.PaymentMethod
	Installments   int
	AmountTendered money.Money
}

// Compute produces a PaymentBreakdown from an order and its pricing inputs.
//
// The composition order is a compatibility contract with historical
// records and must not be rearranged:
//
//	subtotal → +tax → +service → −discount → +processingFee → total
//
// Tax and service charge are computed against the original subtotal, not
// the discounted amount.
func Compute(in ComputeInput) (domain.PaymentBreakdown, error) {
	subtotal := in.Order.Subtotal()

	var tax money.Money
	if in.Tax != nil {
		v, err := Surcharge(subtotal, *in.Tax)
		if err != nil {
			return domain.PaymentBreakdown{}, fmt.Errorf("tax: %w", err)
		}
		tax = v
	}

	var service money.Money
	if in.Service != nil {
		v, err := Surcharge(subtotal, *in.Service)
		if err != nil {
			return domain.PaymentBreakdown{}, fmt.Errorf("service charge: %w", err)
		}
		service = v
	}

	discount := in.CouponDiscount
	if in.Discount != nil {
		v, err := Discount(subtotal, *in.Discount)
		if err != nil {
			return domain.PaymentBreakdown{}, err
		}
		discount += v
	}

	preFee := money.Max0(subtotal + tax + service - discount)

	installments := in.Installments
	if installments == 0 {
		installments = 1
	}

	var fee money.Money
	if in.Method != nil {
		// Installments reuses the fee formula, so the plan's TotalWithFee
		// always equals the breakdown's Total for the same inputs.
		plan, err := Installments(preFee, *in.Method, installments)
		if err != nil {
			return domain.PaymentBreakdown{}, err
		}
		fee = plan.TotalWithFee - preFee
	} else if installments > 1 {
		return domain.PaymentBreakdown{}, fmt.Errorf("%w: installments require a payment method", domain.ErrInvalidSpec)
	}

	total := preFee + fee

	b := domain.PaymentBreakdown{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		ServiceCharge:  service,
		DiscountAmount: discount,
		ProcessingFee:  fee,
		Total:          total,
	}

	if in.Method != nil && in.Method.RequiresChange {
		b.AmountPaid = in.AmountTendered
		b.Change = money.Max0(in.AmountTendered - total)
		b.Remaining = money.Max0(total - in.AmountTendered)
	} else {
		// Non-cash methods settle exactly; tendered amount is ignored.
		b.AmountPaid = total
	}

	return b, nil
}
