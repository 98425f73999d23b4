package incentive

import (
	"fmt"

	"github.com/vantage/sales-tracker/record"
)

// currencyPlaces is the rounding precision for incentive amounts.
const currencyPlaces = 2

// Compute derives the incentive for a payment.
//
// The payment must have a strictly positive amount (the Payment invariant;
// callers validate before the engine sees it, and the engine re-checks
// rather than trusting them). The service must have a positive base
// percent in the rate table and the table's global percent must be
// positive.
//
// decimal.Round rounds half away from zero, which for the positive
// amounts enforced here is exactly half-up.
func Compute(p record.Payment, rates RateTable) (record.Incentive, error) {
	if !p.AmountPaid.IsPositive() {
		return record.Incentive{}, &record.InvalidPaymentError{PaymentID: p.ID, Amount: p.AmountPaid}
	}
	base, err := rates.Lookup(p.Service)
	if err != nil {
		return record.Incentive{}, err
	}
	if !rates.Global.IsPositive() {
		return record.Incentive{}, &record.InvalidRateError{Service: p.Service, Reason: "global percent must be positive"}
	}

	amount := p.AmountPaid.Mul(base).Mul(rates.Global).Round(currencyPlaces)

	return record.Incentive{
		PaymentID:     p.ID,
		EmployeeUID:   p.EmployeeUID,
		Date:          p.Date,
		Service:       p.Service,
		AmountPaid:    p.AmountPaid,
		BasePercent:   base,
		GlobalPercent: rates.Global,
		Amount:        amount,
	}, nil
}

// Recompute produces the replacement incentive after a payment edit. The
// prior incentive must belong to the updated payment; the caller is
// responsible for atomically swapping the returned value into the store
// (see tracker.Service, which serializes per payment key).
func Recompute(prior record.Incentive, updated record.Payment, rates RateTable) (record.Incentive, error) {
	if prior.PaymentID != updated.ID {
		return record.Incentive{}, fmt.Errorf(
			"recompute: incentive belongs to payment %s, not %s: %w",
			prior.PaymentID, updated.ID, record.ErrInvalidPayment)
	}
	return Compute(updated, rates)
}
