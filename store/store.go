/*
Package store defines the persistence collaborator for the tracker.

PURPOSE:
  The incentive and billing engines are pure functions; this package owns
  the record state they compute over. The RecordStore interface is
  injected into the orchestration layer (tracker.Service) - there is no
  memoized process-wide client.

PER-KEY ATOMICITY:
  Incentive recomputation and due-date rollover are read-modify-write
  operations. Implementations must make individual Put/Delete calls
  atomic per key; the tracker.Service additionally serializes whole
  read-modify-write sequences with a per-key lock so values are never
  computed from stale inputs.

IMPLEMENTATIONS:
  - store/memory:   in-memory, for tests and local development
  - store/sqlite:   embedded SQLite, WAL mode
  - store/postgres: pgx connection pool, for shared deployments

SEE ALSO:
  - tracker/: the persistence-owning caller
*/
package store

import (
	"context"

	"github.com/vantage/sales-tracker/record"
)

// =============================================================================
// FILTERS
// =============================================================================

// PaymentFilter narrows payment listings. Nil date bounds are open;
// empty strings match everything. EmployeeUID is enforced by the API
// layer for non-privileged callers.
type PaymentFilter struct {
	From         *record.Date
	To           *record.Date
	Service      string
	CustomerType record.CustomerType
	EmployeeUID  record.EmployeeID
}

// Matches reports whether a payment passes the filter. Shared by the
// memory implementation and by SQL implementations' tests.
func (f PaymentFilter) Matches(p record.Payment) bool {
	if f.From != nil && p.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && p.Date.After(*f.To) {
		return false
	}
	if f.Service != "" && p.Service != f.Service {
		return false
	}
	if f.CustomerType != "" && p.CustomerType != f.CustomerType {
		return false
	}
	if f.EmployeeUID != "" && p.EmployeeUID != f.EmployeeUID {
		return false
	}
	return true
}

// IncentiveFilter narrows incentive listings.
type IncentiveFilter struct {
	From        *record.Date
	To          *record.Date
	EmployeeUID record.EmployeeID
}

func (f IncentiveFilter) Matches(i record.Incentive) bool {
	if f.From != nil && i.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && i.Date.After(*f.To) {
		return false
	}
	if f.EmployeeUID != "" && i.EmployeeUID != f.EmployeeUID {
		return false
	}
	return true
}

// CallFilter narrows call-entry listings.
type CallFilter struct {
	From        *record.Date
	To          *record.Date
	EmployeeUID record.EmployeeID
}

func (f CallFilter) Matches(e record.CallEntry) bool {
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	if f.EmployeeUID != "" && e.EmployeeUID != f.EmployeeUID {
		return false
	}
	return true
}

// =============================================================================
// RECORD STORE
// =============================================================================

// RecordStore is the full persistence surface the tracker needs. Every
// method takes a context; timeouts and retries live here, never in the
// pure engines.
type RecordStore interface {
	// Payments
	GetPayment(ctx context.Context, id record.PaymentID) (record.Payment, error)
	PutPayment(ctx context.Context, p record.Payment) error
	DeletePayment(ctx context.Context, id record.PaymentID) error
	ListPayments(ctx context.Context, f PaymentFilter) ([]record.Payment, error)

	// Incentives (keyed 1:1 by payment id)
	GetIncentive(ctx context.Context, paymentID record.PaymentID) (record.Incentive, error)
	PutIncentive(ctx context.Context, i record.Incentive) error
	DeleteIncentive(ctx context.Context, paymentID record.PaymentID) error
	ListIncentives(ctx context.Context, f IncentiveFilter) ([]record.Incentive, error)

	// WhatsApp recurring billing
	GetCustomer(ctx context.Context, mobile record.Mobile) (record.WhatsAppCustomer, error)
	PutCustomer(ctx context.Context, c record.WhatsAppCustomer) error
	ListCustomers(ctx context.Context) ([]record.WhatsAppCustomer, error)
	AppendMonthlyPayment(ctx context.Context, p record.WhatsAppMonthlyPayment) error
	ListMonthlyPayments(ctx context.Context, mobile record.Mobile) ([]record.WhatsAppMonthlyPayment, error)

	// Call activity
	UpsertCallEntry(ctx context.Context, e record.CallEntry) error
	ListCallEntries(ctx context.Context, f CallFilter) ([]record.CallEntry, error)

	// Users
	GetUser(ctx context.Context, uid record.EmployeeID) (record.User, error)
	PutUser(ctx context.Context, u record.User) error
	ListUsers(ctx context.Context) ([]record.User, error)

	// Reminder sweep audit trail
	AppendReminderRun(ctx context.Context, r record.ReminderRun) error
	ListReminderRuns(ctx context.Context, limit int) ([]record.ReminderRun, error)
}
