/*
Package billing implements the recurring due-date scheduler for WhatsApp
monthly customers.

PURPOSE:
  Each recurring customer pays on a fixed day of the month (1-31). A
  successful payment advances the next due date by exactly one calendar
  month from the fixed due day, clamped to the target month's length:
  a customer due on the 31st who pays in January is next due on the last
  day of February, never March 2nd or 3rd.

KEY CONCEPTS:
  - NextDueDate: one-month advance with end-of-month clamping
  - FirstDueDate: explicit seed at customer creation (no payment history
    yet means no inferred due date)
  - RecordPayment: pure validation + rollover; the caller persists
  - DueWithin: lazy, restartable filter over a customer list

PURITY:
  Every function here is a pure computation over supplied values. No
  store access, no clock access, no mutation of inputs. Concurrency is
  the caller's concern (tracker.Service serializes per customer mobile).

SEE ALSO:
  - record/: WhatsAppCustomer and WhatsAppMonthlyPayment
  - tracker/: persistence-owning orchestration
  - api/reminder.go: the daily due-window sweep
*/
package billing

import (
	"fmt"
	"iter"
	"time"

	"github.com/vantage/sales-tracker/record"
)

// =============================================================================
// DUE-DATE ARITHMETIC
// =============================================================================

// NextDueDate advances the reference date by one calendar month and sets
// the day-of-month to min(fixedDueDay, days in the target month). This is
// the standard end-of-month clamping rule:
//
//	fixedDueDay=31, reference 2024-01-15 -> 2024-02-29 (leap year)
//	fixedDueDay=31, reference 2023-01-15 -> 2023-02-28
//
// The target month is computed from year/month arithmetic directly, NOT
// via time.AddDate, which normalizes Jan 31 + 1 month into March.
func NextDueDate(fixedDueDay int, reference record.Date) record.Date {
	year, month := reference.Year(), reference.Month()
	month++
	if month > time.December {
		month = time.January
		year++
	}
	return record.NewDate(year, month, clampDay(fixedDueDay, year, month))
}

// FirstDueDate seeds the next-due date for a customer with no payment
// history: the fixed due day in the current month if it has not yet
// passed (today itself counts as due), otherwise in the next month.
// Callers supply it at customer-creation time; a missing seed is never
// inferred from absent history.
func FirstDueDate(fixedDueDay int, today record.Date) record.Date {
	year, month := today.Year(), today.Month()
	candidate := record.NewDate(year, month, clampDay(fixedDueDay, year, month))
	if candidate.AfterOrEqual(today) {
		return candidate
	}
	return NextDueDate(fixedDueDay, today)
}

func clampDay(day int, year int, month time.Month) int {
	if max := record.DaysInMonth(year, month); day > max {
		return max
	}
	return day
}

// =============================================================================
// PAYMENT ROLLOVER
// =============================================================================

// RecordPayment validates a monthly payment against its customer and
// returns the advanced next-due date plus the payment to store. The
// customer is not mutated; the caller persists the returned due date
// under its per-key write serialization.
func RecordPayment(c record.WhatsAppCustomer, p record.WhatsAppMonthlyPayment) (record.Date, record.WhatsAppMonthlyPayment, error) {
	if p.Mobile != c.Mobile {
		return record.Date{}, record.WhatsAppMonthlyPayment{}, &record.CustomerMismatchError{
			CustomerMobile: c.Mobile,
			PaymentMobile:  p.Mobile,
		}
	}
	if err := c.Validate(); err != nil {
		return record.Date{}, record.WhatsAppMonthlyPayment{}, err
	}
	if err := p.Validate(); err != nil {
		return record.Date{}, record.WhatsAppMonthlyPayment{}, err
	}
	return NextDueDate(c.FixedDueDay, p.DatePaid), p, nil
}

// =============================================================================
// DUE-WINDOW QUERY
// =============================================================================

// Window selects how far ahead the due query looks.
type Window string

const (
	// WindowToday selects customers whose next-due date equals today.
	WindowToday Window = "today"

	// WindowWeek selects customers due in [today, today+6], inclusive.
	WindowWeek Window = "week"
)

func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case WindowToday, WindowWeek:
		return Window(s), nil
	}
	return "", fmt.Errorf("unknown due window %q (want today or week)", s)
}

// DueWithin returns a lazy, restartable sequence of the customers whose
// next-due date falls inside the window. Customers without a seeded due
// date are skipped. The sequence has no side effects and may be iterated
// any number of times.
func DueWithin(customers []record.WhatsAppCustomer, w Window, today record.Date) iter.Seq[record.WhatsAppCustomer] {
	return func(yield func(record.WhatsAppCustomer) bool) {
		end := today
		if w == WindowWeek {
			end = today.AddDays(6)
		}
		for _, c := range customers {
			if c.NextDue.IsZero() {
				continue
			}
			if c.NextDue.AfterOrEqual(today) && c.NextDue.BeforeOrEqual(end) {
				if !yield(c) {
					return
				}
			}
		}
	}
}
