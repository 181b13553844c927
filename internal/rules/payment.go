package rules

import (
	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// SumPayments re-sums the non-voided payment rows of a box. The cached
// Box.PaidAmount is only ever written from this sum, so a duplicate or
// out-of-order write self-corrects on the next recompute instead of diverging.
func SumPayments(payments []model.Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		if p.Voided {
			continue
		}
		sum = sum.Add(p.Amount)
	}
	return sum
}

// DerivePaymentStatus partitions (paid, total) into exactly one status.
// Equality is exact decimal equality, with no tolerance.
func DerivePaymentStatus(paid, total decimal.Decimal) string {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return model.PaymentStatusUnpaid
	case paid.LessThan(total):
		return model.PaymentStatusPartial
	case paid.Equal(total):
		return model.PaymentStatusPaid
	default:
		return model.PaymentStatusOverpaid
	}
}

// OverpaidAmount returns how much the box is overpaid, or zero.
func OverpaidAmount(paid, total decimal.Decimal) decimal.Decimal {
	if paid.GreaterThan(total) {
		return paid.Sub(total)
	}
	return decimal.Zero
}

// ResolvePaymentAmount determines the amount for a new payment event:
// the explicit amount when given; else the declared installment amount for an
// auto-created payment on a multi-installment box; else the current shortfall.
// A non-positive resolution means the payment should be skipped as a no-op.
func ResolvePaymentAmount(explicit *decimal.Decimal, installment *decimal.Decimal, total, alreadyPaid decimal.Decimal) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	if installment != nil && installment.GreaterThan(decimal.Zero) {
		return *installment
	}
	return total.Sub(alreadyPaid)
}
