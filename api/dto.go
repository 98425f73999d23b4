/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain records
  from the wire contract. Dates travel as "YYYY-MM-DD" strings; money
  travels as decimal strings so clients never see float artifacts.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

VALIDATION:
  Handlers convert DTOs to records and let record/engine validation
  decide; DTOs are pure data carriers.
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vantage/sales-tracker/record"
	"github.com/vantage/sales-tracker/tracker"
)

// =============================================================================
// PAYMENTS & INCENTIVES
// =============================================================================

type PaymentRequest struct {
	Date             record.Date     `json:"date"`
	CustomerName     string          `json:"customer_name"`
	Mobile           string          `json:"mobile"`
	OrganizationName string          `json:"organization_name,omitempty"`
	CustomerType     string          `json:"customer_type"`
	Service          string          `json:"service"`
	ProductType      string          `json:"product_type,omitempty"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	CardLink         string          `json:"customer_card_link,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

func (r PaymentRequest) toRecord(employee record.EmployeeID) record.Payment {
	return record.Payment{
		Date:             r.Date,
		CustomerName:     r.CustomerName,
		Mobile:           record.Mobile(r.Mobile),
		OrganizationName: r.OrganizationName,
		CustomerType:     record.CustomerType(r.CustomerType),
		Service:          r.Service,
		ProductType:      r.ProductType,
		AmountPaid:       r.AmountPaid,
		CardLink:         r.CardLink,
		Notes:            r.Notes,
		EmployeeUID:      employee,
	}
}

type PaymentDTO struct {
	ID               string          `json:"id"`
	Date             record.Date     `json:"date"`
	CustomerName     string          `json:"customer_name"`
	Mobile           string          `json:"mobile"`
	OrganizationName string          `json:"organization_name,omitempty"`
	CustomerType     string          `json:"customer_type"`
	Service          string          `json:"service"`
	ProductType      string          `json:"product_type,omitempty"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	CardLink         string          `json:"customer_card_link,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	EmployeeUID      string          `json:"employee_uid"`
}

func paymentDTO(p record.Payment) PaymentDTO {
	return PaymentDTO{
		ID:               string(p.ID),
		Date:             p.Date,
		CustomerName:     p.CustomerName,
		Mobile:           string(p.Mobile),
		OrganizationName: p.OrganizationName,
		CustomerType:     string(p.CustomerType),
		Service:          p.Service,
		ProductType:      p.ProductType,
		AmountPaid:       p.AmountPaid,
		CardLink:         p.CardLink,
		Notes:            p.Notes,
		EmployeeUID:      string(p.EmployeeUID),
	}
}

type IncentiveDTO struct {
	PaymentID     string          `json:"payment_id"`
	EmployeeUID   string          `json:"employee_uid"`
	Date          record.Date     `json:"date"`
	Service       string          `json:"service"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	BasePercent   decimal.Decimal `json:"base_percent"`
	GlobalPercent decimal.Decimal `json:"global_percent"`
	Amount        decimal.Decimal `json:"incentive_amount"`
}

func incentiveDTO(i record.Incentive) IncentiveDTO {
	return IncentiveDTO{
		PaymentID:     string(i.PaymentID),
		EmployeeUID:   string(i.EmployeeUID),
		Date:          i.Date,
		Service:       i.Service,
		AmountPaid:    i.AmountPaid,
		BasePercent:   i.BasePercent,
		GlobalPercent: i.GlobalPercent,
		Amount:        i.Amount,
	}
}

// =============================================================================
// WHATSAPP RECURRING BILLING
// =============================================================================

type WhatsAppCustomerRequest struct {
	Mobile           string `json:"mobile"`
	OrganizationName string `json:"organization_name,omitempty"`
	CustomerName     string `json:"customer_name"`
	FixedDueDay      int    `json:"fixed_due_day"`
	// FirstDueDate optionally overrides the seeded first due date.
	FirstDueDate record.Date `json:"first_due_date,omitempty"`
}

type WhatsAppCustomerDTO struct {
	Mobile           string      `json:"mobile"`
	OrganizationName string      `json:"organization_name,omitempty"`
	CustomerName     string      `json:"customer_name"`
	FixedDueDay      int         `json:"fixed_due_day"`
	NextDue          record.Date `json:"next_due_date"`
}

func customerDTO(c record.WhatsAppCustomer) WhatsAppCustomerDTO {
	return WhatsAppCustomerDTO{
		Mobile:           string(c.Mobile),
		OrganizationName: c.OrganizationName,
		CustomerName:     c.CustomerName,
		FixedDueDay:      c.FixedDueDay,
		NextDue:          c.NextDue,
	}
}

type MonthlyPaymentRequest struct {
	Mobile   string          `json:"mobile"`
	DatePaid record.Date     `json:"date_paid"`
	Amount   decimal.Decimal `json:"amount"`
	CardLink string          `json:"card_link,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

type MonthlyPaymentDTO struct {
	Mobile   string          `json:"mobile"`
	DatePaid record.Date     `json:"date_paid"`
	Amount   decimal.Decimal `json:"amount"`
	CardLink string          `json:"card_link,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

type ReminderRunDTO struct {
	RanAt       time.Time `json:"ran_at"`
	DueToday    int       `json:"due_today"`
	DueThisWeek int       `json:"due_this_week"`
}

func reminderRunDTO(r record.ReminderRun) ReminderRunDTO {
	return ReminderRunDTO{RanAt: r.RanAt, DueToday: r.DueToday, DueThisWeek: r.DueThisWeek}
}

func monthlyPaymentDTO(p record.WhatsAppMonthlyPayment) MonthlyPaymentDTO {
	return MonthlyPaymentDTO{
		Mobile:   string(p.Mobile),
		DatePaid: p.DatePaid,
		Amount:   p.Amount,
		CardLink: p.CardLink,
		Notes:    p.Notes,
	}
}

// =============================================================================
// CALL ACTIVITY
// =============================================================================

type DemoDTO struct {
	DurationMinutes int    `json:"demo_time_minutes"`
	CardLink        string `json:"demo_card_link"`
	Notes           string `json:"notes,omitempty"`
}

type CallEntryRequest struct {
	Date                 record.Date `json:"date"`
	AnsweredCalls        int         `json:"answered_calls"`
	UnansweredCalls      int         `json:"unanswered_calls"`
	TotalCallTimeMinutes int         `json:"total_call_time_minutes"`
	Demos                []DemoDTO   `json:"demos,omitempty"`
	// EmployeeUID lets managers upsert on behalf of a team member.
	EmployeeUID string `json:"employee_uid,omitempty"`
}

type CallEntryDTO struct {
	EmployeeUID          string      `json:"employee_uid"`
	Date                 record.Date `json:"date"`
	AnsweredCalls        int         `json:"answered_calls"`
	UnansweredCalls      int         `json:"unanswered_calls"`
	TotalCallTimeMinutes int         `json:"total_call_time_minutes"`
	Demos                []DemoDTO   `json:"demos,omitempty"`
}

func callEntryDTO(e record.CallEntry) CallEntryDTO {
	dto := CallEntryDTO{
		EmployeeUID:          string(e.EmployeeUID),
		Date:                 e.Date,
		AnsweredCalls:        e.AnsweredCalls,
		UnansweredCalls:      e.UnansweredCalls,
		TotalCallTimeMinutes: e.TotalCallTimeMinutes,
	}
	for _, d := range e.Demos {
		dto.Demos = append(dto.Demos, DemoDTO{
			DurationMinutes: d.DurationMinutes,
			CardLink:        d.CardLink,
			Notes:           d.Notes,
		})
	}
	return dto
}

func (r CallEntryRequest) toRecord(employee record.EmployeeID) record.CallEntry {
	e := record.CallEntry{
		EmployeeUID:          employee,
		Date:                 r.Date,
		AnsweredCalls:        r.AnsweredCalls,
		UnansweredCalls:      r.UnansweredCalls,
		TotalCallTimeMinutes: r.TotalCallTimeMinutes,
	}
	for _, d := range r.Demos {
		e.Demos = append(e.Demos, record.Demo{
			DurationMinutes: d.DurationMinutes,
			CardLink:        d.CardLink,
			Notes:           d.Notes,
		})
	}
	return e
}

// =============================================================================
// USERS & ANALYTICS
// =============================================================================

type UserDTO struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

type CreateUserRequest struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

type OverviewDTO struct {
	TotalCalls       int                        `json:"total_calls"`
	TotalAnswered    int                        `json:"total_answered"`
	TotalUnanswered  int                        `json:"total_unanswered"`
	TotalPayments    decimal.Decimal            `json:"total_payments"`
	TotalIncentives  decimal.Decimal            `json:"total_incentives"`
	ServiceBreakdown map[string]decimal.Decimal `json:"service_breakdown"`
}

func overviewDTO(o tracker.Overview) OverviewDTO {
	return OverviewDTO{
		TotalCalls:       o.TotalCalls,
		TotalAnswered:    o.TotalAnswered,
		TotalUnanswered:  o.TotalUnanswered,
		TotalPayments:    o.TotalPayments,
		TotalIncentives:  o.TotalIncentives,
		ServiceBreakdown: o.ServiceBreakdown,
	}
}

type TopCustomerDTO struct {
	Mobile           string          `json:"mobile"`
	CustomerName     string          `json:"customer_name,omitempty"`
	OrganizationName string          `json:"organization_name,omitempty"`
	Revenue          decimal.Decimal `json:"revenue"`
	PaymentCount     int             `json:"payment_count"`
}
