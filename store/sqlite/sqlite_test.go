package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage/sales-tracker/record"
	"github.com/vantage/sales-tracker/store"
	"github.com/vantage/sales-tracker/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLite_PaymentRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	p := record.Payment{
		ID:           "pay-1",
		Date:         record.NewDate(2024, time.March, 5),
		CustomerName: "Acme Corp",
		Mobile:       "919876543210",
		CustomerType: record.CustomerNew,
		Service:      "crm",
		AmountPaid:   decimal.RequireFromString("1234.56"),
		EmployeeUID:  "emp-1",
		CreatedAt:    record.NewDate(2024, time.March, 5),
		UpdatedAt:    record.NewDate(2024, time.March, 5),
	}
	require.NoError(t, st.PutPayment(ctx, p))

	got, err := st.GetPayment(ctx, "pay-1")
	require.NoError(t, err)
	assert.True(t, got.Date.Equal(p.Date))
	// Decimal text storage must not introduce float artifacts.
	assert.True(t, got.AmountPaid.Equal(p.AmountPaid),
		"amount = %s, want %s", got.AmountPaid, p.AmountPaid)

	// Put replaces the existing row.
	p.Notes = "edited"
	require.NoError(t, st.PutPayment(ctx, p))
	got, err = st.GetPayment(ctx, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Notes)

	require.NoError(t, st.DeletePayment(ctx, "pay-1"))
	_, err = st.GetPayment(ctx, "pay-1")
	assert.ErrorIs(t, err, record.ErrPaymentNotFound)
}

func TestSQLite_FilteredListings(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i, day := range []int{5, 10, 20} {
		require.NoError(t, st.PutPayment(ctx, record.Payment{
			ID:           record.PaymentID([]string{"pay-1", "pay-2", "pay-3"}[i]),
			Date:         record.NewDate(2024, time.March, day),
			CustomerName: "Acme Corp",
			Mobile:       "919876543210",
			CustomerType: record.CustomerNew,
			Service:      "crm",
			AmountPaid:   decimal.NewFromInt(100),
			EmployeeUID:  "emp-1",
		}))
	}

	from := record.NewDate(2024, time.March, 6)
	ranged, err := st.ListPayments(ctx, store.PaymentFilter{From: &from})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	none, err := st.ListPayments(ctx, store.PaymentFilter{EmployeeUID: "emp-9"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLite_CallEntryDemosSurviveJSON(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	e := record.CallEntry{
		EmployeeUID:          "emp-1",
		Date:                 record.NewDate(2024, time.March, 5),
		AnsweredCalls:        4,
		TotalCallTimeMinutes: 45,
		Demos: []record.Demo{
			{DurationMinutes: 20, CardLink: "https://cards.example.com/1", Notes: "pilot"},
		},
	}
	require.NoError(t, st.UpsertCallEntry(ctx, e))

	entries, err := st.ListCallEntries(ctx, store.CallFilter{EmployeeUID: "emp-1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Demos, 1)
	assert.Equal(t, 20, entries[0].Demos[0].DurationMinutes)
	assert.Equal(t, "pilot", entries[0].Demos[0].Notes)
}

func TestSQLite_CustomerDueDateRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	c := record.WhatsAppCustomer{
		Mobile:       "919876543210",
		CustomerName: "Acme Corp",
		FixedDueDay:  31,
		NextDue:      record.NewDate(2024, time.February, 29),
	}
	require.NoError(t, st.PutCustomer(ctx, c))

	got, err := st.GetCustomer(ctx, c.Mobile)
	require.NoError(t, err)
	assert.Equal(t, 31, got.FixedDueDay)
	assert.True(t, got.NextDue.Equal(c.NextDue))
}
