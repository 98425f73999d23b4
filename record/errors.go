/*
errors.go - Centralized error types for the tracker domain

PURPOSE:
  All validation and lookup error kinds in one place. The engines surface
  these synchronously; there is nothing to retry because the computations
  are deterministic. The HTTP layer maps them to user-facing responses.

ERROR CATEGORIES:
  1. Validation errors - malformed records (non-positive amounts, bad rates)
  2. Mismatch errors - records that don't belong together
  3. Not-found errors - missing records in the store

USAGE:
  Sentinels work with errors.Is, structured errors with errors.As:

    if errors.Is(err, record.ErrInvalidRate) { ... }

    var mismatch *record.CustomerMismatchError
    if errors.As(err, &mismatch) { ... }
*/
package record

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPayment is returned for malformed payments, most
	// importantly a non-positive amount. The incentive engine must never
	// see such a payment.
	ErrInvalidPayment = errors.New("invalid payment")

	// ErrInvalidRate is returned when the rate table has no entry, or a
	// non-positive entry, for a payment's service. A missing rate is a
	// configuration error, never a silent zero incentive.
	ErrInvalidRate = errors.New("invalid incentive rate")

	// ErrCustomerMismatch is returned when a recurring payment's mobile
	// does not match the customer it is being recorded against.
	ErrCustomerMismatch = errors.New("customer mismatch")

	// ErrInvalidCustomer is returned for malformed WhatsApp customers
	// (missing mobile, fixed due day outside 1-31).
	ErrInvalidCustomer = errors.New("invalid whatsapp customer")

	// ErrInvalidCallEntry is returned for malformed call entries.
	ErrInvalidCallEntry = errors.New("invalid call entry")

	// ErrPaymentNotFound is returned by the store for a missing payment.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrIncentiveNotFound is returned by the store for a missing incentive.
	ErrIncentiveNotFound = errors.New("incentive not found")

	// ErrCustomerNotFound is returned by the store for a missing customer.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrUserNotFound is returned by the store for a missing user.
	ErrUserNotFound = errors.New("user not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidPaymentError reports a payment whose amount is not strictly
// positive.
type InvalidPaymentError struct {
	PaymentID PaymentID
	Amount    decimal.Decimal
}

func (e *InvalidPaymentError) Error() string {
	return fmt.Sprintf("payment %s: amount must be positive, got %s", e.PaymentID, e.Amount)
}

func (e *InvalidPaymentError) Unwrap() error {
	return ErrInvalidPayment
}

// InvalidRateError reports a service with a missing or non-positive rate.
type InvalidRateError struct {
	Service string
	Reason  string
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("rate table: service %q: %s", e.Service, e.Reason)
}

func (e *InvalidRateError) Unwrap() error {
	return ErrInvalidRate
}

// CustomerMismatchError reports a mobile mismatch between a recurring
// payment and the customer it targets.
type CustomerMismatchError struct {
	CustomerMobile Mobile
	PaymentMobile  Mobile
}

func (e *CustomerMismatchError) Error() string {
	return fmt.Sprintf("payment mobile %s does not match customer mobile %s",
		e.PaymentMobile, e.CustomerMobile)
}

func (e *CustomerMismatchError) Unwrap() error {
	return ErrCustomerMismatch
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid input rather
// than a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPayment) ||
		errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrCustomerMismatch) ||
		errors.Is(err, ErrInvalidCustomer) ||
		errors.Is(err, ErrInvalidCallEntry)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrIncentiveNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
