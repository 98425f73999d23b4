/*
Package record defines the domain records for the sales performance tracker.

PURPOSE:
  This package contains the value types exchanged between the computation
  engines (incentive, billing), the store collaborator, and the HTTP layer.
  Records here are plain values: they carry no store handles and no
  behavior beyond validation and date arithmetic.

KEY CONCEPTS IN THIS FILE (types.go):
  - Payment: A sale recorded by an employee, the source of all incentives
  - Incentive: A derived reward, strictly 1:1 with its parent Payment
  - WhatsAppCustomer: A recurring-billing customer with a fixed due day
  - WhatsAppMonthlyPayment: A single recurring payment event
  - CallEntry: A daily call activity log (one per employee per day)

DESIGN PRINCIPLES:
  1. Precision: Money uses decimal.Decimal, never float64
  2. Derivation: Incentive has no independent existence; it is created,
     recomputed, and deleted in lockstep with its Payment
  3. Natural keys: customers are keyed by mobile number, call entries
     by employee UID + date

SEE ALSO:
  - date.go: Civil date type and month arithmetic
  - errors.go: Validation error types
  - incentive/: Computes Incentive from Payment
  - billing/: Due-date rollover for WhatsApp customers
*/
package record

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PaymentID string
type EmployeeID string

// Mobile is the customer's mobile number, used as the natural key for
// both one-off and recurring customers.
type Mobile string

// =============================================================================
// CUSTOMER TYPE - closed enumeration
// =============================================================================

type CustomerType string

const (
	CustomerNew    CustomerType = "new"
	CustomerRepeat CustomerType = "repeat"
)

// ParseCustomerType rejects anything outside the closed set. Unknown
// strings are a client error, not a silent default.
func ParseCustomerType(s string) (CustomerType, error) {
	switch CustomerType(s) {
	case CustomerNew, CustomerRepeat:
		return CustomerType(s), nil
	}
	return "", fmt.Errorf("unknown customer type %q: %w", s, ErrInvalidPayment)
}

// =============================================================================
// PAYMENT - a sale recorded by an employee
// =============================================================================

// Payment is immutable for non-privileged actors once created. Managers
// and admins may edit or delete it; every such mutation must be followed
// by an incentive recomputation (or deletion) by the orchestration layer.
type Payment struct {
	ID               PaymentID
	Date             Date
	CustomerName     string
	Mobile           Mobile
	OrganizationName string
	CustomerType     CustomerType
	Service          string
	ProductType      string
	AmountPaid       decimal.Decimal
	CardLink         string
	Notes            string

	// EmployeeUID identifies who recorded the sale (and who earns the
	// incentive derived from it).
	EmployeeUID EmployeeID

	CreatedAt Date
	UpdatedAt Date
}

// Validate enforces the Payment invariant: the incentive engine must
// never see a non-positive amount, so the check lives with the record.
func (p Payment) Validate() error {
	if !p.AmountPaid.IsPositive() {
		return &InvalidPaymentError{PaymentID: p.ID, Amount: p.AmountPaid}
	}
	if p.Mobile == "" {
		return fmt.Errorf("payment %s: missing mobile: %w", p.ID, ErrInvalidPayment)
	}
	if p.Service == "" {
		return fmt.Errorf("payment %s: missing service: %w", p.ID, ErrInvalidPayment)
	}
	if _, err := ParseCustomerType(string(p.CustomerType)); err != nil {
		return err
	}
	if p.Date.IsZero() {
		return fmt.Errorf("payment %s: missing date: %w", p.ID, ErrInvalidPayment)
	}
	return nil
}

// =============================================================================
// INCENTIVE - derived 1:1 from a Payment
// =============================================================================

// Incentive is a pure derivation: date, service, and amount are copied
// from the parent payment; the incentive amount is
// amount_paid * base_percent * global_percent rounded to currency
// precision. It is keyed by PaymentID and never outlives its payment.
type Incentive struct {
	PaymentID     PaymentID
	EmployeeUID   EmployeeID
	Date          Date
	Service       string
	AmountPaid    decimal.Decimal
	BasePercent   decimal.Decimal
	GlobalPercent decimal.Decimal
	Amount        decimal.Decimal
}

// =============================================================================
// WHATSAPP RECURRING BILLING
// =============================================================================

// WhatsAppCustomer is a recurring-billing customer. FixedDueDay is the
// day-of-month (1-31) the monthly payment is expected; NextDue is the
// materialized next due date, advanced by the billing engine on every
// recorded payment and seeded at creation time.
type WhatsAppCustomer struct {
	Mobile           Mobile
	OrganizationName string
	CustomerName     string
	FixedDueDay      int
	NextDue          Date
}

func (c WhatsAppCustomer) Validate() error {
	if c.Mobile == "" {
		return fmt.Errorf("whatsapp customer: missing mobile: %w", ErrInvalidCustomer)
	}
	if c.FixedDueDay < 1 || c.FixedDueDay > 31 {
		return fmt.Errorf("whatsapp customer %s: fixed due day %d out of range 1-31: %w",
			c.Mobile, c.FixedDueDay, ErrInvalidCustomer)
	}
	return nil
}

// WhatsAppMonthlyPayment is a single recurring payment event for a
// WhatsAppCustomer, keyed by the customer's mobile.
type WhatsAppMonthlyPayment struct {
	Mobile   Mobile
	DatePaid Date
	Amount   decimal.Decimal
	CardLink string
	Notes    string
}

func (p WhatsAppMonthlyPayment) Validate() error {
	if p.Mobile == "" {
		return fmt.Errorf("monthly payment: missing mobile: %w", ErrInvalidPayment)
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("monthly payment for %s: non-positive amount %s: %w",
			p.Mobile, p.Amount, ErrInvalidPayment)
	}
	if p.DatePaid.IsZero() {
		return fmt.Errorf("monthly payment for %s: missing date: %w", p.Mobile, ErrInvalidPayment)
	}
	return nil
}

// =============================================================================
// CALL ACTIVITY
// =============================================================================

// Demo is a single product demo conducted during a day.
type Demo struct {
	DurationMinutes int
	CardLink        string
	Notes           string
}

// CallEntry is the daily call log for an employee. At most one entry
// exists per employee per date; the store key is "uid_date".
type CallEntry struct {
	EmployeeUID          EmployeeID
	Date                 Date
	AnsweredCalls        int
	UnansweredCalls      int
	TotalCallTimeMinutes int
	Demos                []Demo
}

// Key returns the deterministic store key for the entry.
func (e CallEntry) Key() string {
	return fmt.Sprintf("%s_%s", e.EmployeeUID, e.Date)
}

func (e CallEntry) Validate() error {
	if e.EmployeeUID == "" {
		return fmt.Errorf("call entry: missing employee uid: %w", ErrInvalidCallEntry)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("call entry for %s: missing date: %w", e.EmployeeUID, ErrInvalidCallEntry)
	}
	if e.AnsweredCalls < 0 || e.UnansweredCalls < 0 || e.TotalCallTimeMinutes < 0 {
		return fmt.Errorf("call entry for %s: negative counters: %w", e.EmployeeUID, ErrInvalidCallEntry)
	}
	for _, d := range e.Demos {
		if d.DurationMinutes < 1 {
			return fmt.Errorf("call entry for %s: demo duration must be >= 1 minute: %w",
				e.EmployeeUID, ErrInvalidCallEntry)
		}
	}
	return nil
}

// =============================================================================
// USER
// =============================================================================

// User is a tracked team member. Role is kept as the raw claim string
// here; the auth package parses it into its closed enumeration.
type User struct {
	UID   EmployeeID
	Email string
	Name  string
	Role  string
}

// =============================================================================
// REMINDER RUNS
// =============================================================================

// ReminderRun is the audit record of one due-reminder sweep: when it ran
// and how many customers it found due. Appended by the sweep, listed for
// operators.
type ReminderRun struct {
	RanAt       time.Time
	DueToday    int
	DueThisWeek int
}
