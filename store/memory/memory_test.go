package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage/sales-tracker/record"
	"github.com/vantage/sales-tracker/store"
	"github.com/vantage/sales-tracker/store/memory"
)

func seedPayment(id record.PaymentID, day int, service string, employee record.EmployeeID) record.Payment {
	return record.Payment{
		ID:           id,
		Date:         record.NewDate(2024, time.March, day),
		CustomerName: "Acme Corp",
		Mobile:       "919876543210",
		CustomerType: record.CustomerNew,
		Service:      service,
		AmountPaid:   decimal.NewFromInt(100),
		EmployeeUID:  employee,
	}
}

func TestMemory_PaymentLifecycle(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	p := seedPayment("pay-1", 5, "crm", "emp-1")
	require.NoError(t, st.PutPayment(ctx, p))

	got, err := st.GetPayment(ctx, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, got.AmountPaid.Equal(p.AmountPaid))

	require.NoError(t, st.DeletePayment(ctx, "pay-1"))
	_, err = st.GetPayment(ctx, "pay-1")
	assert.ErrorIs(t, err, record.ErrPaymentNotFound)
	assert.ErrorIs(t, st.DeletePayment(ctx, "pay-1"), record.ErrPaymentNotFound)
}

func TestMemory_ListPaymentsFiltersAndSorts(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	require.NoError(t, st.PutPayment(ctx, seedPayment("pay-3", 20, "crm", "emp-2")))
	require.NoError(t, st.PutPayment(ctx, seedPayment("pay-1", 5, "crm", "emp-1")))
	require.NoError(t, st.PutPayment(ctx, seedPayment("pay-2", 10, "whatsapp_marketing", "emp-1")))

	all, err := st.ListPayments(ctx, store.PaymentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Listings are date-ordered for deterministic API output.
	assert.Equal(t, record.PaymentID("pay-1"), all[0].ID)
	assert.Equal(t, record.PaymentID("pay-3"), all[2].ID)

	from := record.NewDate(2024, time.March, 6)
	to := record.NewDate(2024, time.March, 15)
	ranged, err := st.ListPayments(ctx, store.PaymentFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, record.PaymentID("pay-2"), ranged[0].ID)

	byEmployee, err := st.ListPayments(ctx, store.PaymentFilter{EmployeeUID: "emp-1", Service: "crm"})
	require.NoError(t, err)
	require.Len(t, byEmployee, 1)
	assert.Equal(t, record.PaymentID("pay-1"), byEmployee[0].ID)
}

func TestMemory_IncentiveKeyedByPayment(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	inc := record.Incentive{
		PaymentID:   "pay-1",
		EmployeeUID: "emp-1",
		Date:        record.NewDate(2024, time.March, 5),
		Service:     "crm",
		Amount:      decimal.RequireFromString("1.00"),
	}
	require.NoError(t, st.PutIncentive(ctx, inc))

	// Put for the same payment replaces, never duplicates.
	inc.Amount = decimal.RequireFromString("2.00")
	require.NoError(t, st.PutIncentive(ctx, inc))

	all, err := st.ListIncentives(ctx, store.IncentiveFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Amount.Equal(decimal.RequireFromString("2.00")))

	require.NoError(t, st.DeleteIncentive(ctx, "pay-1"))
	_, err = st.GetIncentive(ctx, "pay-1")
	assert.ErrorIs(t, err, record.ErrIncentiveNotFound)
}

func TestMemory_CustomerAndMonthlyPayments(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	c := record.WhatsAppCustomer{
		Mobile:       "919876543210",
		CustomerName: "Acme Corp",
		FixedDueDay:  15,
		NextDue:      record.NewDate(2024, time.March, 15),
	}
	require.NoError(t, st.PutCustomer(ctx, c))

	got, err := st.GetCustomer(ctx, c.Mobile)
	require.NoError(t, err)
	assert.True(t, got.NextDue.Equal(c.NextDue))

	_, err = st.GetCustomer(ctx, "unknown")
	assert.ErrorIs(t, err, record.ErrCustomerNotFound)

	for day := range 3 {
		require.NoError(t, st.AppendMonthlyPayment(ctx, record.WhatsAppMonthlyPayment{
			Mobile:   c.Mobile,
			DatePaid: record.NewDate(2024, time.March, day+1),
			Amount:   decimal.NewFromInt(500),
		}))
	}
	history, err := st.ListMonthlyPayments(ctx, c.Mobile)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestMemory_CallEntryUpsertIsIdempotentPerDay(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	e := record.CallEntry{
		EmployeeUID:   "emp-1",
		Date:          record.NewDate(2024, time.March, 5),
		AnsweredCalls: 5,
	}
	require.NoError(t, st.UpsertCallEntry(ctx, e))
	e.AnsweredCalls = 9
	require.NoError(t, st.UpsertCallEntry(ctx, e))

	entries, err := st.ListCallEntries(ctx, store.CallFilter{EmployeeUID: "emp-1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 9, entries[0].AnsweredCalls)
}

func TestMemory_ReminderRunsNewestFirst(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	base := time.Date(2024, time.March, 5, 8, 0, 0, 0, time.UTC)
	for i := range 3 {
		require.NoError(t, st.AppendReminderRun(ctx, record.ReminderRun{
			RanAt:    base.AddDate(0, 0, i),
			DueToday: i,
		}))
	}

	runs, err := st.ListReminderRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 2, runs[0].DueToday)
	assert.Equal(t, 1, runs[1].DueToday)
}

func TestMemory_Users(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	require.NoError(t, st.PutUser(ctx, record.User{UID: "emp-1", Email: "one@example.com", Role: "EMPLOYEE"}))

	u, err := st.GetUser(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "one@example.com", u.Email)

	_, err = st.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, record.ErrUserNotFound)
}
