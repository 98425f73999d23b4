/*
reminder.go - Scheduled due-payment reminder sweep

PURPOSE:
  Periodically sweeps the recurring-billing customer book and logs which
  customers are due today and which fall due within the coming week, so
  operators see the reminder list without opening the dashboard.

DESIGN:
  - Driven by robfig/cron with a configurable cron expression
    (default "0 8 * * *": every morning at 08:00 server time)
  - Each sweep is also exposed via RunNow for manual triggering
  - Each completed sweep appends a ReminderRun audit record
  - Sweeps never mutate customer state; due-date rollover happens when
    a payment is recorded, not from the scheduler

USAGE:
  sweep := NewReminderSweep(svc, logger, "0 8 * * *")
  sweep.Start()
  // ... later
  sweep.Stop()

SEE ALSO:
  - billing/duedate.go: due-window selection
  - handlers.go: ListDueCustomers (on-demand equivalent)
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vantage/sales-tracker/billing"
	"github.com/vantage/sales-tracker/record"
	"github.com/vantage/sales-tracker/tracker"
)

// ReminderSweep runs the scheduled due-payment sweep.
type ReminderSweep struct {
	Service *tracker.Service
	Log     *slog.Logger
	Spec    string

	cron *cron.Cron

	mu      sync.Mutex
	lastRun time.Time
}

// NewReminderSweep creates a sweep on the given cron spec.
func NewReminderSweep(svc *tracker.Service, log *slog.Logger, spec string) *ReminderSweep {
	return &ReminderSweep{
		Service: svc,
		Log:     log,
		Spec:    spec,
	}
}

// Start registers the cron entry and begins scheduling.
func (rs *ReminderSweep) Start() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(rs.Spec, rs.RunNow); err != nil {
		return err
	}
	c.Start()
	rs.cron = c

	rs.Log.Info("reminder sweep started", "cron", rs.Spec)
	return nil
}

// Stop halts scheduling and waits for an in-flight sweep to finish.
func (rs *ReminderSweep) Stop() {
	rs.mu.Lock()
	c := rs.cron
	rs.cron = nil
	rs.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
		rs.Log.Info("reminder sweep stopped")
	}
}

// LastRun reports when the sweep last completed.
func (rs *ReminderSweep) LastRun() time.Time {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.lastRun
}

// RunNow executes a single sweep immediately.
func (rs *ReminderSweep) RunNow() {
	ctx := context.Background()

	dueToday, err := rs.Service.DueCustomers(ctx, billing.WindowToday)
	if err != nil {
		rs.Log.Error("reminder sweep failed", "window", billing.WindowToday, "error", err)
		return
	}
	dueWeek, err := rs.Service.DueCustomers(ctx, billing.WindowWeek)
	if err != nil {
		rs.Log.Error("reminder sweep failed", "window", billing.WindowWeek, "error", err)
		return
	}

	for _, c := range dueToday {
		rs.Log.Info("payment due today",
			"mobile", c.Mobile,
			"customer", c.CustomerName,
			"organization", c.OrganizationName,
			"due", c.NextDue)
	}
	rs.Log.Info("reminder sweep completed",
		"due_today", len(dueToday),
		"due_this_week", len(dueWeek))

	ranAt := time.Now()
	run := record.ReminderRun{
		RanAt:       ranAt,
		DueToday:    len(dueToday),
		DueThisWeek: len(dueWeek),
	}
	if err := rs.Service.RecordReminderRun(ctx, run); err != nil {
		rs.Log.Error("record reminder run", "error", err)
	}

	dueRemindersRun.Inc()

	rs.mu.Lock()
	rs.lastRun = ranAt
	rs.mu.Unlock()
}
