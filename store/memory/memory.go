// Package memory provides an in-memory RecordStore for tests and local
// development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vantage/sales-tracker/record"
	"github.com/vantage/sales-tracker/store"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu              sync.RWMutex
	payments        map[record.PaymentID]record.Payment
	incentives      map[record.PaymentID]record.Incentive
	customers       map[record.Mobile]record.WhatsAppCustomer
	monthlyPayments map[record.Mobile][]record.WhatsAppMonthlyPayment
	callEntries     map[string]record.CallEntry
	users           map[record.EmployeeID]record.User
	reminderRuns    []record.ReminderRun
}

var _ store.RecordStore = (*Store)(nil)

func New() *Store {
	return &Store{
		payments:        make(map[record.PaymentID]record.Payment),
		incentives:      make(map[record.PaymentID]record.Incentive),
		customers:       make(map[record.Mobile]record.WhatsAppCustomer),
		monthlyPayments: make(map[record.Mobile][]record.WhatsAppMonthlyPayment),
		callEntries:     make(map[string]record.CallEntry),
		users:           make(map[record.EmployeeID]record.User),
	}
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) GetPayment(_ context.Context, id record.PaymentID) (record.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return record.Payment{}, record.ErrPaymentNotFound
	}
	return p, nil
}

func (s *Store) PutPayment(_ context.Context, p record.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = p
	return nil
}

func (s *Store) DeletePayment(_ context.Context, id record.PaymentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[id]; !ok {
		return record.ErrPaymentNotFound
	}
	delete(s.payments, id)
	return nil
}

func (s *Store) ListPayments(_ context.Context, f store.PaymentFilter) ([]record.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []record.Payment
	for _, p := range s.payments {
		if f.Matches(p) {
			result = append(result, p)
		}
	}
	sortByDate(result, func(p record.Payment) record.Date { return p.Date })
	return result, nil
}

// =============================================================================
// INCENTIVES
// =============================================================================

func (s *Store) GetIncentive(_ context.Context, paymentID record.PaymentID) (record.Incentive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.incentives[paymentID]
	if !ok {
		return record.Incentive{}, record.ErrIncentiveNotFound
	}
	return i, nil
}

func (s *Store) PutIncentive(_ context.Context, i record.Incentive) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incentives[i.PaymentID] = i
	return nil
}

func (s *Store) DeleteIncentive(_ context.Context, paymentID record.PaymentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.incentives, paymentID)
	return nil
}

func (s *Store) ListIncentives(_ context.Context, f store.IncentiveFilter) ([]record.Incentive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []record.Incentive
	for _, i := range s.incentives {
		if f.Matches(i) {
			result = append(result, i)
		}
	}
	sortByDate(result, func(i record.Incentive) record.Date { return i.Date })
	return result, nil
}

// =============================================================================
// WHATSAPP RECURRING BILLING
// =============================================================================

func (s *Store) GetCustomer(_ context.Context, mobile record.Mobile) (record.WhatsAppCustomer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[mobile]
	if !ok {
		return record.WhatsAppCustomer{}, record.ErrCustomerNotFound
	}
	return c, nil
}

func (s *Store) PutCustomer(_ context.Context, c record.WhatsAppCustomer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.Mobile] = c
	return nil
}

func (s *Store) ListCustomers(_ context.Context) ([]record.WhatsAppCustomer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]record.WhatsAppCustomer, 0, len(s.customers))
	for _, c := range s.customers {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Mobile < result[j].Mobile })
	return result, nil
}

func (s *Store) AppendMonthlyPayment(_ context.Context, p record.WhatsAppMonthlyPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monthlyPayments[p.Mobile] = append(s.monthlyPayments[p.Mobile], p)
	return nil
}

func (s *Store) ListMonthlyPayments(_ context.Context, mobile record.Mobile) ([]record.WhatsAppMonthlyPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]record.WhatsAppMonthlyPayment, len(s.monthlyPayments[mobile]))
	copy(result, s.monthlyPayments[mobile])
	return result, nil
}

// =============================================================================
// CALL ACTIVITY
// =============================================================================

func (s *Store) UpsertCallEntry(_ context.Context, e record.CallEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callEntries[e.Key()] = e
	return nil
}

func (s *Store) ListCallEntries(_ context.Context, f store.CallFilter) ([]record.CallEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []record.CallEntry
	for _, e := range s.callEntries {
		if f.Matches(e) {
			result = append(result, e)
		}
	}
	sortByDate(result, func(e record.CallEntry) record.Date { return e.Date })
	return result, nil
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) GetUser(_ context.Context, uid record.EmployeeID) (record.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[uid]
	if !ok {
		return record.User{}, record.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) PutUser(_ context.Context, u record.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UID] = u
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]record.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]record.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UID < result[j].UID })
	return result, nil
}

// =============================================================================
// REMINDER RUNS
// =============================================================================

func (s *Store) AppendReminderRun(_ context.Context, r record.ReminderRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminderRuns = append(s.reminderRuns, r)
	return nil
}

// ListReminderRuns returns the most recent runs first.
func (s *Store) ListReminderRuns(_ context.Context, limit int) ([]record.ReminderRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]record.ReminderRun, len(s.reminderRuns))
	copy(result, s.reminderRuns)
	sort.SliceStable(result, func(i, j int) bool { return result[i].RanAt.After(result[j].RanAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// sortByDate keeps listings deterministic regardless of map iteration.
func sortByDate[T any](items []T, date func(T) record.Date) {
	sort.SliceStable(items, func(i, j int) bool {
		return date(items[i]).Before(date(items[j]))
	})
}
