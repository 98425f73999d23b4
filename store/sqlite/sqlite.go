/*
Package sqlite provides a SQLite-backed RecordStore.

PURPOSE:
  Embedded persistence for single-node deployments. The same SQL shape
  is mirrored in store/postgres for shared deployments; only placeholder
  syntax and upsert dialect differ.

STORAGE CONVENTIONS:
  - Dates as TEXT in YYYY-MM-DD (sorts correctly, matches the wire format)
  - Money and percents as TEXT decimal strings (never REAL; float storage
    would undo the decimal arithmetic upstream)
  - Demos on a call entry as a JSON column (always read as a whole)

WAL MODE:
  Opened with WAL so readers don't block the single writer, plus a
  sync.RWMutex because the tracker shares one connection.

USAGE:
  st, err := sqlite.New("./data/tracker.db")   // or ":memory:"
  defer st.Close()

SEE ALSO:
  - store/store.go: interface and filters
  - store/postgres: pgx implementation of the same schema
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/vantage/sales-tracker/record"
	"github.com/vantage/sales-tracker/store"
)

type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.RecordStore = (*Store)(nil)

// New opens (or creates) the database and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		customer_name TEXT NOT NULL,
		mobile TEXT NOT NULL,
		organization_name TEXT,
		customer_type TEXT NOT NULL,
		service TEXT NOT NULL,
		product_type TEXT,
		amount_paid TEXT NOT NULL,
		card_link TEXT,
		notes TEXT,
		employee_uid TEXT NOT NULL,
		created_at TEXT,
		updated_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_payments_date ON payments(date);
	CREATE INDEX IF NOT EXISTS idx_payments_employee ON payments(employee_uid, date);
	CREATE INDEX IF NOT EXISTS idx_payments_mobile ON payments(mobile);

	-- Incentives are keyed 1:1 by payment id; deleting a payment's
	-- incentive is a primary-key delete.
	CREATE TABLE IF NOT EXISTS incentives (
		payment_id TEXT PRIMARY KEY,
		employee_uid TEXT NOT NULL,
		date TEXT NOT NULL,
		service TEXT NOT NULL,
		amount_paid TEXT NOT NULL,
		base_percent TEXT NOT NULL,
		global_percent TEXT NOT NULL,
		amount TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_incentives_employee ON incentives(employee_uid, date);

	CREATE TABLE IF NOT EXISTS whatsapp_customers (
		mobile TEXT PRIMARY KEY,
		organization_name TEXT,
		customer_name TEXT,
		fixed_due_day INTEGER NOT NULL,
		next_due TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_whatsapp_customers_next_due ON whatsapp_customers(next_due);

	CREATE TABLE IF NOT EXISTS whatsapp_monthly_payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mobile TEXT NOT NULL,
		date_paid TEXT NOT NULL,
		amount TEXT NOT NULL,
		card_link TEXT,
		notes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_monthly_payments_mobile ON whatsapp_monthly_payments(mobile, date_paid);

	CREATE TABLE IF NOT EXISTS call_entries (
		entry_key TEXT PRIMARY KEY,
		employee_uid TEXT NOT NULL,
		date TEXT NOT NULL,
		answered_calls INTEGER NOT NULL,
		unanswered_calls INTEGER NOT NULL,
		total_call_time_minutes INTEGER NOT NULL,
		demos_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_call_entries_employee ON call_entries(employee_uid, date);

	CREATE TABLE IF NOT EXISTS users (
		uid TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT,
		role TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reminder_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ran_at TEXT NOT NULL,
		due_today INTEGER NOT NULL,
		due_this_week INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) GetPayment(ctx context.Context, id record.PaymentID) (record.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, date, customer_name, mobile, organization_name, customer_type,
		       service, product_type, amount_paid, card_link, notes, employee_uid,
		       created_at, updated_at
		FROM payments WHERE id = ?`, string(id))
	return scanPayment(row)
}

func (s *Store) PutPayment(ctx context.Context, p record.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, date, customer_name, mobile, organization_name,
			customer_type, service, product_type, amount_paid, card_link, notes,
			employee_uid, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			customer_name = excluded.customer_name,
			mobile = excluded.mobile,
			organization_name = excluded.organization_name,
			customer_type = excluded.customer_type,
			service = excluded.service,
			product_type = excluded.product_type,
			amount_paid = excluded.amount_paid,
			card_link = excluded.card_link,
			notes = excluded.notes,
			employee_uid = excluded.employee_uid,
			updated_at = excluded.updated_at`,
		string(p.ID), dateStr(p.Date), p.CustomerName, string(p.Mobile), p.OrganizationName,
		string(p.CustomerType), p.Service, p.ProductType, p.AmountPaid.String(), p.CardLink,
		p.Notes, string(p.EmployeeUID), dateStr(p.CreatedAt), dateStr(p.UpdatedAt))
	return err
}

func (s *Store) DeletePayment(ctx context.Context, id record.PaymentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return record.ErrPaymentNotFound
	}
	return nil
}

func (s *Store) ListPayments(ctx context.Context, f store.PaymentFilter) ([]record.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, date, customer_name, mobile, organization_name, customer_type,
		       service, product_type, amount_paid, card_link, notes, employee_uid,
		       created_at, updated_at
		FROM payments WHERE 1=1`
	var args []any
	if f.From != nil {
		query += ` AND date >= ?`
		args = append(args, f.From.String())
	}
	if f.To != nil {
		query += ` AND date <= ?`
		args = append(args, f.To.String())
	}
	if f.Service != "" {
		query += ` AND service = ?`
		args = append(args, f.Service)
	}
	if f.CustomerType != "" {
		query += ` AND customer_type = ?`
		args = append(args, string(f.CustomerType))
	}
	if f.EmployeeUID != "" {
		query += ` AND employee_uid = ?`
		args = append(args, string(f.EmployeeUID))
	}
	query += ` ORDER BY date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []record.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (record.Payment, error) {
	var p record.Payment
	var date, createdAt, updatedAt, amount, orgName, productType, cardLink, notes sql.NullString
	var id, customerName, mobile, customerType, service, employeeUID string

	err := row.Scan(&id, &date, &customerName, &mobile, &orgName, &customerType,
		&service, &productType, &amount, &cardLink, &notes, &employeeUID,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Payment{}, record.ErrPaymentNotFound
	}
	if err != nil {
		return record.Payment{}, err
	}

	p.ID = record.PaymentID(id)
	p.CustomerName = customerName
	p.Mobile = record.Mobile(mobile)
	p.OrganizationName = orgName.String
	p.CustomerType = record.CustomerType(customerType)
	p.Service = service
	p.ProductType = productType.String
	p.CardLink = cardLink.String
	p.Notes = notes.String
	p.EmployeeUID = record.EmployeeID(employeeUID)

	if p.Date, err = parseDate(date); err != nil {
		return record.Payment{}, err
	}
	if p.CreatedAt, err = parseDate(createdAt); err != nil {
		return record.Payment{}, err
	}
	if p.UpdatedAt, err = parseDate(updatedAt); err != nil {
		return record.Payment{}, err
	}
	if p.AmountPaid, err = parseDecimal(amount); err != nil {
		return record.Payment{}, err
	}
	return p, nil
}

// =============================================================================
// INCENTIVES
// =============================================================================

func (s *Store) GetIncentive(ctx context.Context, paymentID record.PaymentID) (record.Incentive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT payment_id, employee_uid, date, service, amount_paid,
		       base_percent, global_percent, amount
		FROM incentives WHERE payment_id = ?`, string(paymentID))
	return scanIncentive(row)
}

func (s *Store) PutIncentive(ctx context.Context, i record.Incentive) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO incentives (payment_id, employee_uid, date, service,
			amount_paid, base_percent, global_percent, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(payment_id) DO UPDATE SET
			employee_uid = excluded.employee_uid,
			date = excluded.date,
			service = excluded.service,
			amount_paid = excluded.amount_paid,
			base_percent = excluded.base_percent,
			global_percent = excluded.global_percent,
			amount = excluded.amount`,
		string(i.PaymentID), string(i.EmployeeUID), dateStr(i.Date), i.Service,
		i.AmountPaid.String(), i.BasePercent.String(), i.GlobalPercent.String(),
		i.Amount.String())
	return err
}

func (s *Store) DeleteIncentive(ctx context.Context, paymentID record.PaymentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM incentives WHERE payment_id = ?`, string(paymentID))
	return err
}

func (s *Store) ListIncentives(ctx context.Context, f store.IncentiveFilter) ([]record.Incentive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT payment_id, employee_uid, date, service, amount_paid,
		       base_percent, global_percent, amount
		FROM incentives WHERE 1=1`
	var args []any
	if f.From != nil {
		query += ` AND date >= ?`
		args = append(args, f.From.String())
	}
	if f.To != nil {
		query += ` AND date <= ?`
		args = append(args, f.To.String())
	}
	if f.EmployeeUID != "" {
		query += ` AND employee_uid = ?`
		args = append(args, string(f.EmployeeUID))
	}
	query += ` ORDER BY date, payment_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []record.Incentive
	for rows.Next() {
		i, err := scanIncentive(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, i)
	}
	return result, rows.Err()
}

func scanIncentive(row rowScanner) (record.Incentive, error) {
	var i record.Incentive
	var paymentID, employeeUID, service string
	var date, amountPaid, basePercent, globalPercent, amount sql.NullString

	err := row.Scan(&paymentID, &employeeUID, &date, &service,
		&amountPaid, &basePercent, &globalPercent, &amount)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Incentive{}, record.ErrIncentiveNotFound
	}
	if err != nil {
		return record.Incentive{}, err
	}

	i.PaymentID = record.PaymentID(paymentID)
	i.EmployeeUID = record.EmployeeID(employeeUID)
	i.Service = service

	if i.Date, err = parseDate(date); err != nil {
		return record.Incentive{}, err
	}
	if i.AmountPaid, err = parseDecimal(amountPaid); err != nil {
		return record.Incentive{}, err
	}
	if i.BasePercent, err = parseDecimal(basePercent); err != nil {
		return record.Incentive{}, err
	}
	if i.GlobalPercent, err = parseDecimal(globalPercent); err != nil {
		return record.Incentive{}, err
	}
	if i.Amount, err = parseDecimal(amount); err != nil {
		return record.Incentive{}, err
	}
	return i, nil
}

// =============================================================================
// WHATSAPP RECURRING BILLING
// =============================================================================

func (s *Store) GetCustomer(ctx context.Context, mobile record.Mobile) (record.WhatsAppCustomer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT mobile, organization_name, customer_name, fixed_due_day, next_due
		FROM whatsapp_customers WHERE mobile = ?`, string(mobile))
	return scanCustomer(row)
}

func (s *Store) PutCustomer(ctx context.Context, c record.WhatsAppCustomer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO whatsapp_customers (mobile, organization_name, customer_name, fixed_due_day, next_due)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(mobile) DO UPDATE SET
			organization_name = excluded.organization_name,
			customer_name = excluded.customer_name,
			fixed_due_day = excluded.fixed_due_day,
			next_due = excluded.next_due`,
		string(c.Mobile), c.OrganizationName, c.CustomerName, c.FixedDueDay, dateStr(c.NextDue))
	return err
}

func (s *Store) ListCustomers(ctx context.Context) ([]record.WhatsAppCustomer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT mobile, organization_name, customer_name, fixed_due_day, next_due
		FROM whatsapp_customers ORDER BY mobile`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []record.WhatsAppCustomer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func scanCustomer(row rowScanner) (record.WhatsAppCustomer, error) {
	var c record.WhatsAppCustomer
	var mobile string
	var orgName, customerName, nextDue sql.NullString

	err := row.Scan(&mobile, &orgName, &customerName, &c.FixedDueDay, &nextDue)
	if errors.Is(err, sql.ErrNoRows) {
		return record.WhatsAppCustomer{}, record.ErrCustomerNotFound
	}
	if err != nil {
		return record.WhatsAppCustomer{}, err
	}

	c.Mobile = record.Mobile(mobile)
	c.OrganizationName = orgName.String
	c.CustomerName = customerName.String
	if c.NextDue, err = parseDate(nextDue); err != nil {
		return record.WhatsAppCustomer{}, err
	}
	return c, nil
}

func (s *Store) AppendMonthlyPayment(ctx context.Context, p record.WhatsAppMonthlyPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO whatsapp_monthly_payments (mobile, date_paid, amount, card_link, notes)
		VALUES (?, ?, ?, ?, ?)`,
		string(p.Mobile), dateStr(p.DatePaid), p.Amount.String(), p.CardLink, p.Notes)
	return err
}

func (s *Store) ListMonthlyPayments(ctx context.Context, mobile record.Mobile) ([]record.WhatsAppMonthlyPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT mobile, date_paid, amount, card_link, notes
		FROM whatsapp_monthly_payments WHERE mobile = ? ORDER BY date_paid, id`, string(mobile))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []record.WhatsAppMonthlyPayment
	for rows.Next() {
		var p record.WhatsAppMonthlyPayment
		var m string
		var datePaid, amount, cardLink, notes sql.NullString
		if err := rows.Scan(&m, &datePaid, &amount, &cardLink, &notes); err != nil {
			return nil, err
		}
		p.Mobile = record.Mobile(m)
		p.CardLink = cardLink.String
		p.Notes = notes.String
		if p.DatePaid, err = parseDate(datePaid); err != nil {
			return nil, err
		}
		if p.Amount, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// =============================================================================
// CALL ACTIVITY
// =============================================================================

func (s *Store) UpsertCallEntry(ctx context.Context, e record.CallEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	demosJSON, err := json.Marshal(e.Demos)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO call_entries (entry_key, employee_uid, date, answered_calls,
			unanswered_calls, total_call_time_minutes, demos_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entry_key) DO UPDATE SET
			answered_calls = excluded.answered_calls,
			unanswered_calls = excluded.unanswered_calls,
			total_call_time_minutes = excluded.total_call_time_minutes,
			demos_json = excluded.demos_json`,
		e.Key(), string(e.EmployeeUID), dateStr(e.Date), e.AnsweredCalls,
		e.UnansweredCalls, e.TotalCallTimeMinutes, string(demosJSON))
	return err
}

func (s *Store) ListCallEntries(ctx context.Context, f store.CallFilter) ([]record.CallEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT employee_uid, date, answered_calls, unanswered_calls,
		       total_call_time_minutes, demos_json
		FROM call_entries WHERE 1=1`
	var args []any
	if f.From != nil {
		query += ` AND date >= ?`
		args = append(args, f.From.String())
	}
	if f.To != nil {
		query += ` AND date <= ?`
		args = append(args, f.To.String())
	}
	if f.EmployeeUID != "" {
		query += ` AND employee_uid = ?`
		args = append(args, string(f.EmployeeUID))
	}
	query += ` ORDER BY date, employee_uid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []record.CallEntry
	for rows.Next() {
		var e record.CallEntry
		var uid string
		var date, demosJSON sql.NullString
		if err := rows.Scan(&uid, &date, &e.AnsweredCalls, &e.UnansweredCalls,
			&e.TotalCallTimeMinutes, &demosJSON); err != nil {
			return nil, err
		}
		e.EmployeeUID = record.EmployeeID(uid)
		if e.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		if demosJSON.String != "" {
			if err := json.Unmarshal([]byte(demosJSON.String), &e.Demos); err != nil {
				return nil, err
			}
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) GetUser(ctx context.Context, uid record.EmployeeID) (record.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u record.User
	var id, email, role string
	var name sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT uid, email, name, role FROM users WHERE uid = ?`, string(uid)).
		Scan(&id, &email, &name, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return record.User{}, record.ErrUserNotFound
	}
	if err != nil {
		return record.User{}, err
	}
	u.UID = record.EmployeeID(id)
	u.Email = email
	u.Name = name.String
	u.Role = role
	return u, nil
}

func (s *Store) PutUser(ctx context.Context, u record.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (uid, email, name, role) VALUES (?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			role = excluded.role`,
		string(u.UID), u.Email, u.Name, u.Role)
	return err
}

func (s *Store) ListUsers(ctx context.Context) ([]record.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT uid, email, name, role FROM users ORDER BY uid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []record.User
	for rows.Next() {
		var u record.User
		var id, email, role string
		var name sql.NullString
		if err := rows.Scan(&id, &email, &name, &role); err != nil {
			return nil, err
		}
		u.UID = record.EmployeeID(id)
		u.Email = email
		u.Name = name.String
		u.Role = role
		result = append(result, u)
	}
	return result, rows.Err()
}

// =============================================================================
// REMINDER RUNS
// =============================================================================

func (s *Store) AppendReminderRun(ctx context.Context, r record.ReminderRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminder_runs (ran_at, due_today, due_this_week) VALUES (?, ?, ?)`,
		r.RanAt.UTC().Format(time.RFC3339), r.DueToday, r.DueThisWeek)
	return err
}

func (s *Store) ListReminderRuns(ctx context.Context, limit int) ([]record.ReminderRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ran_at, due_today, due_this_week FROM reminder_runs ORDER BY ran_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []record.ReminderRun
	for rows.Next() {
		var r record.ReminderRun
		var ranAt string
		if err := rows.Scan(&ranAt, &r.DueToday, &r.DueThisWeek); err != nil {
			return nil, err
		}
		if r.RanAt, err = time.Parse(time.RFC3339, ranAt); err != nil {
			return nil, fmt.Errorf("reminder run ran_at %q: %w", ranAt, err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// =============================================================================
// COLUMN HELPERS
// =============================================================================

func dateStr(d record.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func parseDate(s sql.NullString) (record.Date, error) {
	if !s.Valid || s.String == "" {
		return record.Date{}, nil
	}
	return record.ParseDate(s.String)
}

func parseDecimal(s sql.NullString) (decimal.Decimal, error) {
	if !s.Valid || s.String == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s.String)
}
