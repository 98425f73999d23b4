/*
Package postgres provides a pgx-backed RecordStore for shared deployments.

The schema and column conventions mirror store/sqlite (dates and decimals
as text); only placeholder syntax and the pool-based concurrency model
differ. Per-key write atomicity comes from PostgreSQL's row-level
guarantees on single-statement upserts and deletes.
*/
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vantage/sales-tracker/record"
	"github.com/vantage/sales-tracker/store"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ store.RecordStore = (*Store)(nil)

// New connects a pool and migrates the schema.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) migrate(ctx context.Context) error {
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

	CREATE TABLE IF NOT EXISTS whatsapp_monthly_payments (
		id BIGSERIAL PRIMARY KEY,
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
		id BIGSERIAL PRIMARY KEY,
		ran_at TIMESTAMPTZ NOT NULL,
		due_today INTEGER NOT NULL,
		due_this_week INTEGER NOT NULL
	);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// =============================================================================
// PAYMENTS
// =============================================================================

const paymentColumns = `id, date, customer_name, mobile, organization_name, customer_type,
	service, product_type, amount_paid, card_link, notes, employee_uid, created_at, updated_at`

func (s *Store) GetPayment(ctx context.Context, id record.PaymentID) (record.Payment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, string(id))
	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return record.Payment{}, record.ErrPaymentNotFound
	}
	return p, err
}

func (s *Store) PutPayment(ctx context.Context, p record.Payment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			customer_name = EXCLUDED.customer_name,
			mobile = EXCLUDED.mobile,
			organization_name = EXCLUDED.organization_name,
			customer_type = EXCLUDED.customer_type,
			service = EXCLUDED.service,
			product_type = EXCLUDED.product_type,
			amount_paid = EXCLUDED.amount_paid,
			card_link = EXCLUDED.card_link,
			notes = EXCLUDED.notes,
			employee_uid = EXCLUDED.employee_uid,
			updated_at = EXCLUDED.updated_at`,
		string(p.ID), dateStr(p.Date), p.CustomerName, string(p.Mobile), p.OrganizationName,
		string(p.CustomerType), p.Service, p.ProductType, p.AmountPaid.String(), p.CardLink,
		p.Notes, string(p.EmployeeUID), dateStr(p.CreatedAt), dateStr(p.UpdatedAt))
	return err
}

func (s *Store) DeletePayment(ctx context.Context, id record.PaymentID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return record.ErrPaymentNotFound
	}
	return nil
}

func (s *Store) ListPayments(ctx context.Context, f store.PaymentFilter) ([]record.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.From != nil {
		query += ` AND date >= ` + arg(f.From.String())
	}
	if f.To != nil {
		query += ` AND date <= ` + arg(f.To.String())
	}
	if f.Service != "" {
		query += ` AND service = ` + arg(f.Service)
	}
	if f.CustomerType != "" {
		query += ` AND customer_type = ` + arg(string(f.CustomerType))
	}
	if f.EmployeeUID != "" {
		query += ` AND employee_uid = ` + arg(string(f.EmployeeUID))
	}
	query += ` ORDER BY date, id`

	rows, err := s.pool.Query(ctx, query, args...)
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
	var id, customerName, mobile, customerType, service, employeeUID string
	var date, createdAt, updatedAt, amount, orgName, productType, cardLink, notes *string

	err := row.Scan(&id, &date, &customerName, &mobile, &orgName, &customerType,
		&service, &productType, &amount, &cardLink, &notes, &employeeUID,
		&createdAt, &updatedAt)
	if err != nil {
		return record.Payment{}, err
	}

	p.ID = record.PaymentID(id)
	p.CustomerName = customerName
	p.Mobile = record.Mobile(mobile)
	p.OrganizationName = deref(orgName)
	p.CustomerType = record.CustomerType(customerType)
	p.Service = service
	p.ProductType = deref(productType)
	p.CardLink = deref(cardLink)
	p.Notes = deref(notes)
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
	row := s.pool.QueryRow(ctx, `
		SELECT payment_id, employee_uid, date, service, amount_paid,
		       base_percent, global_percent, amount
		FROM incentives WHERE payment_id = $1`, string(paymentID))
	i, err := scanIncentive(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return record.Incentive{}, record.ErrIncentiveNotFound
	}
	return i, err
}

func (s *Store) PutIncentive(ctx context.Context, i record.Incentive) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO incentives (payment_id, employee_uid, date, service,
			amount_paid, base_percent, global_percent, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (payment_id) DO UPDATE SET
			employee_uid = EXCLUDED.employee_uid,
			date = EXCLUDED.date,
			service = EXCLUDED.service,
			amount_paid = EXCLUDED.amount_paid,
			base_percent = EXCLUDED.base_percent,
			global_percent = EXCLUDED.global_percent,
			amount = EXCLUDED.amount`,
		string(i.PaymentID), string(i.EmployeeUID), dateStr(i.Date), i.Service,
		i.AmountPaid.String(), i.BasePercent.String(), i.GlobalPercent.String(),
		i.Amount.String())
	return err
}

func (s *Store) DeleteIncentive(ctx context.Context, paymentID record.PaymentID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM incentives WHERE payment_id = $1`, string(paymentID))
	return err
}

func (s *Store) ListIncentives(ctx context.Context, f store.IncentiveFilter) ([]record.Incentive, error) {
	query := `
		SELECT payment_id, employee_uid, date, service, amount_paid,
		       base_percent, global_percent, amount
		FROM incentives WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.From != nil {
		query += ` AND date >= ` + arg(f.From.String())
	}
	if f.To != nil {
		query += ` AND date <= ` + arg(f.To.String())
	}
	if f.EmployeeUID != "" {
		query += ` AND employee_uid = ` + arg(string(f.EmployeeUID))
	}
	query += ` ORDER BY date, payment_id`

	rows, err := s.pool.Query(ctx, query, args...)
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
	var date, amountPaid, basePercent, globalPercent, amount *string

	err := row.Scan(&paymentID, &employeeUID, &date, &service,
		&amountPaid, &basePercent, &globalPercent, &amount)
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
	var c record.WhatsAppCustomer
	var m string
	var orgName, customerName, nextDue *string
	err := s.pool.QueryRow(ctx, `
		SELECT mobile, organization_name, customer_name, fixed_due_day, next_due
		FROM whatsapp_customers WHERE mobile = $1`, string(mobile)).
		Scan(&m, &orgName, &customerName, &c.FixedDueDay, &nextDue)
	if errors.Is(err, pgx.ErrNoRows) {
		return record.WhatsAppCustomer{}, record.ErrCustomerNotFound
	}
	if err != nil {
		return record.WhatsAppCustomer{}, err
	}
	c.Mobile = record.Mobile(m)
	c.OrganizationName = deref(orgName)
	c.CustomerName = deref(customerName)
	if c.NextDue, err = parseDate(nextDue); err != nil {
		return record.WhatsAppCustomer{}, err
	}
	return c, nil
}

func (s *Store) PutCustomer(ctx context.Context, c record.WhatsAppCustomer) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO whatsapp_customers (mobile, organization_name, customer_name, fixed_due_day, next_due)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (mobile) DO UPDATE SET
			organization_name = EXCLUDED.organization_name,
			customer_name = EXCLUDED.customer_name,
			fixed_due_day = EXCLUDED.fixed_due_day,
			next_due = EXCLUDED.next_due`,
		string(c.Mobile), c.OrganizationName, c.CustomerName, c.FixedDueDay, dateStr(c.NextDue))
	return err
}

func (s *Store) ListCustomers(ctx context.Context) ([]record.WhatsAppCustomer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT mobile, organization_name, customer_name, fixed_due_day, next_due
		FROM whatsapp_customers ORDER BY mobile`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []record.WhatsAppCustomer
	for rows.Next() {
		var c record.WhatsAppCustomer
		var m string
		var orgName, customerName, nextDue *string
		if err := rows.Scan(&m, &orgName, &customerName, &c.FixedDueDay, &nextDue); err != nil {
			return nil, err
		}
		c.Mobile = record.Mobile(m)
		c.OrganizationName = deref(orgName)
		c.CustomerName = deref(customerName)
		if c.NextDue, err = parseDate(nextDue); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *Store) AppendMonthlyPayment(ctx context.Context, p record.WhatsAppMonthlyPayment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO whatsapp_monthly_payments (mobile, date_paid, amount, card_link, notes)
		VALUES ($1, $2, $3, $4, $5)`,
		string(p.Mobile), dateStr(p.DatePaid), p.Amount.String(), p.CardLink, p.Notes)
	return err
}

func (s *Store) ListMonthlyPayments(ctx context.Context, mobile record.Mobile) ([]record.WhatsAppMonthlyPayment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT mobile, date_paid, amount, card_link, notes
		FROM whatsapp_monthly_payments WHERE mobile = $1 ORDER BY date_paid, id`, string(mobile))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []record.WhatsAppMonthlyPayment
	for rows.Next() {
		var p record.WhatsAppMonthlyPayment
		var m string
		var datePaid, amount, cardLink, notes *string
		if err := rows.Scan(&m, &datePaid, &amount, &cardLink, &notes); err != nil {
			return nil, err
		}
		p.Mobile = record.Mobile(m)
		p.CardLink = deref(cardLink)
		p.Notes = deref(notes)
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
	demosJSON, err := json.Marshal(e.Demos)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO call_entries (entry_key, employee_uid, date, answered_calls,
			unanswered_calls, total_call_time_minutes, demos_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (entry_key) DO UPDATE SET
			answered_calls = EXCLUDED.answered_calls,
			unanswered_calls = EXCLUDED.unanswered_calls,
			total_call_time_minutes = EXCLUDED.total_call_time_minutes,
			demos_json = EXCLUDED.demos_json`,
		e.Key(), string(e.EmployeeUID), dateStr(e.Date), e.AnsweredCalls,
		e.UnansweredCalls, e.TotalCallTimeMinutes, string(demosJSON))
	return err
}

func (s *Store) ListCallEntries(ctx context.Context, f store.CallFilter) ([]record.CallEntry, error) {
	query := `
		SELECT employee_uid, date, answered_calls, unanswered_calls,
		       total_call_time_minutes, demos_json
		FROM call_entries WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.From != nil {
		query += ` AND date >= ` + arg(f.From.String())
	}
	if f.To != nil {
		query += ` AND date <= ` + arg(f.To.String())
	}
	if f.EmployeeUID != "" {
		query += ` AND employee_uid = ` + arg(string(f.EmployeeUID))
	}
	query += ` ORDER BY date, employee_uid`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []record.CallEntry
	for rows.Next() {
		var e record.CallEntry
		var uid string
		var date, demosJSON *string
		if err := rows.Scan(&uid, &date, &e.AnsweredCalls, &e.UnansweredCalls,
			&e.TotalCallTimeMinutes, &demosJSON); err != nil {
			return nil, err
		}
		e.EmployeeUID = record.EmployeeID(uid)
		if e.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		if demosJSON != nil && *demosJSON != "" {
			if err := json.Unmarshal([]byte(*demosJSON), &e.Demos); err != nil {
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
	var u record.User
	var id, email, role string
	var name *string
	err := s.pool.QueryRow(ctx,
		`SELECT uid, email, name, role FROM users WHERE uid = $1`, string(uid)).
		Scan(&id, &email, &name, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return record.User{}, record.ErrUserNotFound
	}
	if err != nil {
		return record.User{}, err
	}
	u.UID = record.EmployeeID(id)
	u.Email = email
	u.Name = deref(name)
	u.Role = role
	return u, nil
}

func (s *Store) PutUser(ctx context.Context, u record.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (uid, email, name, role) VALUES ($1, $2, $3, $4)
		ON CONFLICT (uid) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			role = EXCLUDED.role`,
		string(u.UID), u.Email, u.Name, u.Role)
	return err
}

func (s *Store) ListUsers(ctx context.Context) ([]record.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT uid, email, name, role FROM users ORDER BY uid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []record.User
	for rows.Next() {
		var u record.User
		var id, email, role string
		var name *string
		if err := rows.Scan(&id, &email, &name, &role); err != nil {
			return nil, err
		}
		u.UID = record.EmployeeID(id)
		u.Email = email
		u.Name = deref(name)
		u.Role = role
		result = append(result, u)
	}
	return result, rows.Err()
}

// =============================================================================
// REMINDER RUNS
// =============================================================================

func (s *Store) AppendReminderRun(ctx context.Context, r record.ReminderRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reminder_runs (ran_at, due_today, due_this_week) VALUES ($1, $2, $3)`,
		r.RanAt.UTC(), r.DueToday, r.DueThisWeek)
	return err
}

func (s *Store) ListReminderRuns(ctx context.Context, limit int) ([]record.ReminderRun, error) {
	query := `SELECT ran_at, due_today, due_this_week FROM reminder_runs ORDER BY ran_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []record.ReminderRun
	for rows.Next() {
		var r record.ReminderRun
		if err := rows.Scan(&r.RanAt, &r.DueToday, &r.DueThisWeek); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// =============================================================================
// COLUMN HELPERS
// =============================================================================

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateStr(d record.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func parseDate(s *string) (record.Date, error) {
	if s == nil || *s == "" {
		return record.Date{}, nil
	}
	return record.ParseDate(*s)
}

func parseDecimal(s *string) (decimal.Decimal, error) {
	if s == nil || *s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*s)
}
