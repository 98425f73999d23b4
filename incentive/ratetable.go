/*
Package incentive computes the incentive derived from a payment.

PURPOSE:
  An incentive is a pure derivation of its parent payment:

    incentive_amount = amount_paid * base_percent * global_percent

  rounded half-up to 2 decimal places. The engine is stateless; the
  caller owns persistence and must keep the stored incentive in lockstep
  with payment edits and deletes.

KEY CONCEPTS:
  - RateTable: service -> base percent, plus one global percent. Rates
    are business configuration loaded at startup, never hard-coded.
  - Compute: payment + rate table -> incentive
  - Recompute: replacement incentive after a privileged payment edit

ROUNDING POLICY:
  Currency precision is 2 decimal places, rounded HALF-UP (0.005 rounds
  to 0.01). The choice is pinned by tests; changing it is a policy
  decision, not a bug fix.

SEE ALSO:
  - record/: Payment and Incentive value types
  - tracker/: orchestration that persists and swaps incentives
*/
package incentive

import (
	"github.com/shopspring/decimal"

	"github.com/vantage/sales-tracker/record"
)

// =============================================================================
// RATE TABLE - business configuration, supplied by the caller
// =============================================================================

// RateTable maps a service name to its base incentive percent and holds
// the organization-wide global percent. Percents are fractions
// (0.05 == 5%), kept as decimals to avoid float drift.
type RateTable struct {
	Base   map[string]decimal.Decimal
	Global decimal.Decimal
}

// Lookup returns the base percent for a service. A service absent from
// the table, or with a non-positive rate, is a configuration error and
// never a silent zero.
func (rt RateTable) Lookup(service string) (decimal.Decimal, error) {
	base, ok := rt.Base[service]
	if !ok {
		return decimal.Zero, &record.InvalidRateError{Service: service, Reason: "no base percent configured"}
	}
	if !base.IsPositive() {
		return decimal.Zero, &record.InvalidRateError{Service: service, Reason: "base percent must be positive"}
	}
	return base, nil
}

// Validate checks the whole table, including the global percent. Run at
// configuration load so misconfiguration fails at startup, not on the
// first payment.
func (rt RateTable) Validate() error {
	if !rt.Global.IsPositive() {
		return &record.InvalidRateError{Service: "*", Reason: "global percent must be positive"}
	}
	for service := range rt.Base {
		if _, err := rt.Lookup(service); err != nil {
			return err
		}
	}
	return nil
}
