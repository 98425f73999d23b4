package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage/sales-tracker/billing"
	"github.com/vantage/sales-tracker/incentive"
	"github.com/vantage/sales-tracker/record"
	"github.com/vantage/sales-tracker/store"
	"github.com/vantage/sales-tracker/store/memory"
	"github.com/vantage/sales-tracker/tracker"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestService(t *testing.T) *tracker.Service {
	t.Helper()
	rates := incentive.RateTable{
		Base: map[string]decimal.Decimal{
			"whatsapp_marketing": decimal.NewFromFloat(0.05),
			"crm":                decimal.NewFromFloat(0.04),
		},
		Global: decimal.NewFromFloat(0.02),
	}
	svc, err := tracker.NewService(memory.New(), rates)
	require.NoError(t, err)
	return svc.WithClock(func() record.Date {
		return record.NewDate(2024, time.March, 5)
	})
}

func newPayment(amount string) record.Payment {
	return record.Payment{
		Date:         record.NewDate(2024, time.March, 4),
		CustomerName: "Acme Corp",
		Mobile:       "919876543210",
		CustomerType: record.CustomerNew,
		Service:      "whatsapp_marketing",
		AmountPaid:   decimal.RequireFromString(amount),
		EmployeeUID:  "emp-1",
	}
}

// =============================================================================
// PAYMENT + INCENTIVE LIFECYCLE
// =============================================================================

func TestCreatePayment_ComputesAndStoresIncentive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, inc, err := svc.CreatePayment(ctx, newPayment("1000"))
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	assert.True(t, inc.Amount.Equal(decimal.RequireFromString("1.00")),
		"incentive = %s, want 1.00", inc.Amount)
	assert.Equal(t, p.ID, inc.PaymentID)

	stored, err := svc.ListIncentives(ctx, store.IncentiveFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestCreatePayment_RateFailureLeavesNoOrphanPayment(t *testing.T) {
	// GIVEN: A payment for a service with no configured rate
	// WHEN: Creating it
	// THEN: The create fails and the store holds neither record

	svc := newTestService(t)
	ctx := context.Background()

	p := newPayment("1000")
	p.Service = "unknown_service"

	_, _, err := svc.CreatePayment(ctx, p)
	require.ErrorIs(t, err, record.ErrInvalidRate)

	payments, err := svc.ListPayments(ctx, store.PaymentFilter{})
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestUpdatePayment_SwapsIncentive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, _, err := svc.CreatePayment(ctx, newPayment("1000"))
	require.NoError(t, err)

	updated := newPayment("2000")
	_, inc, err := svc.UpdatePayment(ctx, p.ID, updated)
	require.NoError(t, err)
	assert.True(t, inc.Amount.Equal(decimal.RequireFromString("2.00")),
		"recomputed = %s, want 2.00", inc.Amount)

	// Exactly one incentive remains, linked to the same payment.
	all, err := svc.ListIncentives(ctx, store.IncentiveFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, p.ID, all[0].PaymentID)
}

func TestUpdatePayment_PreservesCreatedAt(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, _, err := svc.CreatePayment(ctx, newPayment("1000"))
	require.NoError(t, err)

	updated, _, err := svc.UpdatePayment(ctx, p.ID, newPayment("1500"))
	require.NoError(t, err)
	assert.True(t, updated.CreatedAt.Equal(p.CreatedAt))
}

func TestDeletePayment_RemovesIncentiveToo(t *testing.T) {
	// GIVEN: A stored payment with its incentive
	// WHEN: Deleting the payment
	// THEN: Both records are gone

	svc := newTestService(t)
	ctx := context.Background()

	p, _, err := svc.CreatePayment(ctx, newPayment("1000"))
	require.NoError(t, err)

	require.NoError(t, svc.DeletePayment(ctx, p.ID))

	_, err = svc.GetPayment(ctx, p.ID)
	assert.ErrorIs(t, err, record.ErrPaymentNotFound)

	incentives, err := svc.ListIncentives(ctx, store.IncentiveFilter{})
	require.NoError(t, err)
	assert.Empty(t, incentives)
}

func TestDeletePayment_Missing(t *testing.T) {
	svc := newTestService(t)
	err := svc.DeletePayment(context.Background(), "pay-missing")
	assert.ErrorIs(t, err, record.ErrPaymentNotFound)
}

// flakyDeleteStore fails the payment delete on its first attempt so the
// ordering of the two deletes is observable.
type flakyDeleteStore struct {
	store.RecordStore
	failedOnce bool
}

func (f *flakyDeleteStore) DeletePayment(ctx context.Context, id record.PaymentID) error {
	if !f.failedOnce {
		f.failedOnce = true
		return errors.New("store offline")
	}
	return f.RecordStore.DeletePayment(ctx, id)
}

func TestDeletePayment_PartialFailureNeverOrphansIncentive(t *testing.T) {
	// GIVEN: A store whose payment delete fails on the first attempt
	// WHEN: Deleting a payment
	// THEN: The derived incentive is already gone, the payment survives
	//       the failed attempt, and a retry finishes the delete

	st := &flakyDeleteStore{RecordStore: memory.New()}
	rates := incentive.RateTable{
		Base:   map[string]decimal.Decimal{"whatsapp_marketing": decimal.NewFromFloat(0.05)},
		Global: decimal.NewFromFloat(0.02),
	}
	svc, err := tracker.NewService(st, rates)
	require.NoError(t, err)
	ctx := context.Background()

	p, _, err := svc.CreatePayment(ctx, newPayment("1000"))
	require.NoError(t, err)

	require.Error(t, svc.DeletePayment(ctx, p.ID))

	incentives, err := svc.ListIncentives(ctx, store.IncentiveFilter{})
	require.NoError(t, err)
	assert.Empty(t, incentives, "incentive must go before its payment")
	_, err = svc.GetPayment(ctx, p.ID)
	require.NoError(t, err, "payment survives the failed attempt")

	// Retry completes: the already-gone incentive is tolerated.
	require.NoError(t, svc.DeletePayment(ctx, p.ID))
	_, err = svc.GetPayment(ctx, p.ID)
	assert.ErrorIs(t, err, record.ErrPaymentNotFound)
}

func TestUpdatePayment_KeepsOriginalEarner(t *testing.T) {
	// GIVEN: A payment recorded by emp-1
	// WHEN: An edit arrives carrying a different employee UID
	// THEN: The stored payment and its incentive still credit emp-1

	svc := newTestService(t)
	ctx := context.Background()

	p, _, err := svc.CreatePayment(ctx, newPayment("1000"))
	require.NoError(t, err)

	edit := newPayment("2000")
	edit.EmployeeUID = "emp-2"
	updated, inc, err := svc.UpdatePayment(ctx, p.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, record.EmployeeID("emp-1"), updated.EmployeeUID)
	assert.Equal(t, record.EmployeeID("emp-1"), inc.EmployeeUID)
}

// =============================================================================
// RECURRING BILLING
// =============================================================================

func TestUpsertWhatsAppCustomer_SeedsFirstDueDate(t *testing.T) {
	// Clock is pinned to 2024-03-05; fixed due day 20 seeds 2024-03-20.
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.UpsertWhatsAppCustomer(ctx, record.WhatsAppCustomer{
		Mobile:       "919876543210",
		CustomerName: "Acme Corp",
		FixedDueDay:  20,
	})
	require.NoError(t, err)
	assert.True(t, c.NextDue.Equal(record.NewDate(2024, time.March, 20)),
		"seeded due = %v", c.NextDue)
}

func TestUpsertWhatsAppCustomer_UpdateKeepsExistingDueDate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.UpsertWhatsAppCustomer(ctx, record.WhatsAppCustomer{
		Mobile:       "919876543210",
		CustomerName: "Acme Corp",
		FixedDueDay:  20,
	})
	require.NoError(t, err)

	// Rename without supplying a due date; the schedule must not reset.
	second, err := svc.UpsertWhatsAppCustomer(ctx, record.WhatsAppCustomer{
		Mobile:       "919876543210",
		CustomerName: "Acme Corporation",
		FixedDueDay:  20,
	})
	require.NoError(t, err)
	assert.True(t, second.NextDue.Equal(first.NextDue))
	assert.Equal(t, "Acme Corporation", second.CustomerName)
}

func TestRecordMonthlyPayment_AdvancesNextDue(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpsertWhatsAppCustomer(ctx, record.WhatsAppCustomer{
		Mobile:       "919876543210",
		CustomerName: "Acme Corp",
		FixedDueDay:  31,
		NextDue:      record.NewDate(2024, time.January, 31),
	})
	require.NoError(t, err)

	c, err := svc.RecordMonthlyPayment(ctx, record.WhatsAppMonthlyPayment{
		Mobile:   "919876543210",
		DatePaid: record.NewDate(2024, time.January, 31),
		Amount:   decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	assert.True(t, c.NextDue.Equal(record.NewDate(2024, time.February, 29)),
		"next due = %v, want 2024-02-29", c.NextDue)

	history, err := svc.ListMonthlyPayments(ctx, "919876543210")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRecordMonthlyPayment_MismatchLeavesStateUntouched(t *testing.T) {
	// A mismatched mobile can only happen if the customer lookup and the
	// payment disagree; the service looks up by the payment's mobile, so
	// the visible failure for an unknown mobile is not-found with no
	// writes.
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordMonthlyPayment(ctx, record.WhatsAppMonthlyPayment{
		Mobile:   "910000000000",
		DatePaid: record.NewDate(2024, time.March, 5),
		Amount:   decimal.NewFromInt(500),
	})
	assert.ErrorIs(t, err, record.ErrCustomerNotFound)
}

func TestDueCustomers_UsesServiceClock(t *testing.T) {
	svc := newTestService(t) // today = 2024-03-05
	ctx := context.Background()

	seed := []record.WhatsAppCustomer{
		{Mobile: "1", CustomerName: "Today", FixedDueDay: 5, NextDue: record.NewDate(2024, time.March, 5)},
		{Mobile: "2", CustomerName: "In week", FixedDueDay: 11, NextDue: record.NewDate(2024, time.March, 11)},
		{Mobile: "3", CustomerName: "Past week", FixedDueDay: 12, NextDue: record.NewDate(2024, time.March, 12)},
	}
	for _, c := range seed {
		_, err := svc.UpsertWhatsAppCustomer(ctx, c)
		require.NoError(t, err)
	}

	today, err := svc.DueCustomers(ctx, billing.WindowToday)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, record.Mobile("1"), today[0].Mobile)

	week, err := svc.DueCustomers(ctx, billing.WindowWeek)
	require.NoError(t, err)
	assert.Len(t, week, 2)
}

// =============================================================================
// CALL ACTIVITY
// =============================================================================

func TestUpsertCallEntry_ReplacesSameDay(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	entry := record.CallEntry{
		EmployeeUID:          "emp-1",
		Date:                 record.NewDate(2024, time.March, 5),
		AnsweredCalls:        10,
		UnansweredCalls:      2,
		TotalCallTimeMinutes: 90,
	}
	require.NoError(t, svc.UpsertCallEntry(ctx, entry))

	entry.AnsweredCalls = 15
	require.NoError(t, svc.UpsertCallEntry(ctx, entry))

	entries, err := svc.ListCallEntries(ctx, store.CallFilter{EmployeeUID: "emp-1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 15, entries[0].AnsweredCalls)
}
