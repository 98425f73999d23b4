/*
Package tracker orchestrates the pure engines against the record store.

PURPOSE:
  The incentive and billing packages are side-effect-free; this package
  owns the read-modify-write sequences around them and keeps derived
  state consistent:
  - payment created  -> incentive computed and stored
  - payment updated  -> incentive recomputed and swapped
  - payment deleted  -> incentive deleted (explicit step, not a cascade
    hidden in the store)
  - monthly payment  -> customer's next-due date advanced

WRITE SERIALIZATION:
  Incentive recomputation and due-date rollover read externally stored
  state, compute, and write back. Concurrent writers on the same key
  could otherwise compute from stale inputs and clobber each other, so
  the service holds a per-key lock (payment id, customer mobile) for the
  duration of each sequence. Different keys proceed in parallel.

SEE ALSO:
  - incentive/: derivation formula and rate table
  - billing/: due-date arithmetic
  - store/: the injected persistence collaborator
*/
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/vantage/sales-tracker/billing"
	"github.com/vantage/sales-tracker/incentive"
	"github.com/vantage/sales-tracker/record"
	"github.com/vantage/sales-tracker/store"
)

// Service bundles the store collaborator, the rate configuration, and the
// per-key locks. Construct it explicitly and pass it where needed; there
// is no package-level instance.
type Service struct {
	store store.RecordStore
	rates incentive.RateTable
	locks *keyedLocks

	// now is swappable for tests.
	now func() record.Date
}

func NewService(st store.RecordStore, rates incentive.RateTable) (*Service, error) {
	if err := rates.Validate(); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return &Service{
		store: st,
		rates: rates,
		locks: newKeyedLocks(),
		now:   record.Today,
	}, nil
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() record.Date) *Service {
	s.now = now
	return s
}

// =============================================================================
// PAYMENTS + INCENTIVE LIFECYCLE
// =============================================================================

// CreatePayment validates and persists a payment, then computes and
// persists its incentive. A missing id is generated from the timestamp.
func (s *Service) CreatePayment(ctx context.Context, p record.Payment) (record.Payment, record.Incentive, error) {
	if p.ID == "" {
		p.ID = record.PaymentID(fmt.Sprintf("pay-%d", time.Now().UnixNano()))
	}
	if err := p.Validate(); err != nil {
		return record.Payment{}, record.Incentive{}, err
	}

	// Compute before any write so a rate misconfiguration leaves no
	// orphaned payment behind.
	inc, err := incentive.Compute(p, s.rates)
	if err != nil {
		return record.Payment{}, record.Incentive{}, err
	}

	unlock := s.locks.lock(string(p.ID))
	defer unlock()

	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	if err := s.store.PutPayment(ctx, p); err != nil {
		return record.Payment{}, record.Incentive{}, fmt.Errorf("put payment: %w", err)
	}
	if err := s.store.PutIncentive(ctx, inc); err != nil {
		return record.Payment{}, record.Incentive{}, fmt.Errorf("put incentive: %w", err)
	}
	return p, inc, nil
}

// UpdatePayment replaces a payment and swaps in the recomputed incentive.
// Role gating (manager/admin only) happens at the API layer; here the
// concern is keeping the derived value in sync under the per-key lock.
func (s *Service) UpdatePayment(ctx context.Context, id record.PaymentID, updated record.Payment) (record.Payment, record.Incentive, error) {
	updated.ID = id
	if err := updated.Validate(); err != nil {
		return record.Payment{}, record.Incentive{}, err
	}

	unlock := s.locks.lock(string(id))
	defer unlock()

	existing, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return record.Payment{}, record.Incentive{}, err
	}
	// Edits never reassign the earning employee. Pinned here, under the
	// lock, so the owner read and the write are one atomic step.
	updated.EmployeeUID = existing.EmployeeUID

	prior, err := s.store.GetIncentive(ctx, id)
	if err != nil {
		return record.Payment{}, record.Incentive{}, err
	}

	inc, err := incentive.Recompute(prior, updated, s.rates)
	if err != nil {
		return record.Payment{}, record.Incentive{}, err
	}

	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()
	if err := s.store.PutPayment(ctx, updated); err != nil {
		return record.Payment{}, record.Incentive{}, fmt.Errorf("put payment: %w", err)
	}
	if err := s.store.PutIncentive(ctx, inc); err != nil {
		return record.Payment{}, record.Incentive{}, fmt.Errorf("swap incentive: %w", err)
	}
	return updated, inc, nil
}

// DeletePayment removes a payment and its incentive. The incentive
// delete is an explicit caller step: after this returns nil the
// incentive is absent from the store. The incentive goes first - it is
// the derived record, so a failure between the two writes leaves a
// payment without an incentive (retryable) rather than an incentive
// without its payment.
func (s *Service) DeletePayment(ctx context.Context, id record.PaymentID) error {
	unlock := s.locks.lock(string(id))
	defer unlock()

	if err := s.store.DeleteIncentive(ctx, id); err != nil && !record.IsNotFound(err) {
		return fmt.Errorf("delete incentive for %s: %w", id, err)
	}
	return s.store.DeletePayment(ctx, id)
}

func (s *Service) GetPayment(ctx context.Context, id record.PaymentID) (record.Payment, error) {
	return s.store.GetPayment(ctx, id)
}

func (s *Service) ListPayments(ctx context.Context, f store.PaymentFilter) ([]record.Payment, error) {
	return s.store.ListPayments(ctx, f)
}

func (s *Service) ListIncentives(ctx context.Context, f store.IncentiveFilter) ([]record.Incentive, error) {
	return s.store.ListIncentives(ctx, f)
}

// =============================================================================
// WHATSAPP RECURRING BILLING
// =============================================================================

// UpsertWhatsAppCustomer creates or updates a recurring customer. A new
// customer gets its first due date seeded from today; an existing one
// keeps its current next-due unless the caller supplies one.
func (s *Service) UpsertWhatsAppCustomer(ctx context.Context, c record.WhatsAppCustomer) (record.WhatsAppCustomer, error) {
	if err := c.Validate(); err != nil {
		return record.WhatsAppCustomer{}, err
	}

	unlock := s.locks.lock(string(c.Mobile))
	defer unlock()

	if c.NextDue.IsZero() {
		existing, err := s.store.GetCustomer(ctx, c.Mobile)
		switch {
		case err == nil && !existing.NextDue.IsZero():
			c.NextDue = existing.NextDue
		case err == nil || record.IsNotFound(err):
			c.NextDue = billing.FirstDueDate(c.FixedDueDay, s.now())
		default:
			return record.WhatsAppCustomer{}, err
		}
	}
	if err := s.store.PutCustomer(ctx, c); err != nil {
		return record.WhatsAppCustomer{}, fmt.Errorf("put customer: %w", err)
	}
	return c, nil
}

// RecordMonthlyPayment validates the payment against its customer,
// appends it, and advances the customer's next-due date. Mobile mismatch
// fails before any write.
func (s *Service) RecordMonthlyPayment(ctx context.Context, p record.WhatsAppMonthlyPayment) (record.WhatsAppCustomer, error) {
	unlock := s.locks.lock(string(p.Mobile))
	defer unlock()

	customer, err := s.store.GetCustomer(ctx, p.Mobile)
	if err != nil {
		return record.WhatsAppCustomer{}, err
	}

	nextDue, stored, err := billing.RecordPayment(customer, p)
	if err != nil {
		return record.WhatsAppCustomer{}, err
	}

	if err := s.store.AppendMonthlyPayment(ctx, stored); err != nil {
		return record.WhatsAppCustomer{}, fmt.Errorf("append monthly payment: %w", err)
	}
	customer.NextDue = nextDue
	if err := s.store.PutCustomer(ctx, customer); err != nil {
		return record.WhatsAppCustomer{}, fmt.Errorf("advance next due: %w", err)
	}
	return customer, nil
}

// DueCustomers returns the customers due within the window, today being
// the service clock's today.
func (s *Service) DueCustomers(ctx context.Context, w billing.Window) ([]record.WhatsAppCustomer, error) {
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	var due []record.WhatsAppCustomer
	for c := range billing.DueWithin(customers, w, s.now()) {
		due = append(due, c)
	}
	return due, nil
}

func (s *Service) ListMonthlyPayments(ctx context.Context, mobile record.Mobile) ([]record.WhatsAppMonthlyPayment, error) {
	return s.store.ListMonthlyPayments(ctx, mobile)
}

// RecordReminderRun appends a sweep audit record.
func (s *Service) RecordReminderRun(ctx context.Context, r record.ReminderRun) error {
	return s.store.AppendReminderRun(ctx, r)
}

func (s *Service) ListReminderRuns(ctx context.Context, limit int) ([]record.ReminderRun, error) {
	return s.store.ListReminderRuns(ctx, limit)
}

// =============================================================================
// CALL ACTIVITY
// =============================================================================

func (s *Service) UpsertCallEntry(ctx context.Context, e record.CallEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return s.store.UpsertCallEntry(ctx, e)
}

func (s *Service) ListCallEntries(ctx context.Context, f store.CallFilter) ([]record.CallEntry, error) {
	return s.store.ListCallEntries(ctx, f)
}

// =============================================================================
// USERS
// =============================================================================

func (s *Service) GetUser(ctx context.Context, uid record.EmployeeID) (record.User, error) {
	return s.store.GetUser(ctx, uid)
}

func (s *Service) PutUser(ctx context.Context, u record.User) error {
	return s.store.PutUser(ctx, u)
}
