package tracker

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vantage/sales-tracker/record"
	"github.com/vantage/sales-tracker/store"
)

// =============================================================================
// ANALYTICS - aggregations over store listings
// =============================================================================

// Overview is the dashboard summary. For an employee the API layer pins
// EmployeeUID to the caller; managers and admins see the whole team.
type Overview struct {
	TotalCalls       int
	TotalAnswered    int
	TotalUnanswered  int
	TotalPayments    decimal.Decimal
	TotalIncentives  decimal.Decimal
	ServiceBreakdown map[string]decimal.Decimal
}

// Overview aggregates calls, payments, and incentives in [from, to] for
// an optional employee.
func (s *Service) Overview(ctx context.Context, from, to *record.Date, employee record.EmployeeID) (Overview, error) {
	o := Overview{
		TotalPayments:    decimal.Zero,
		TotalIncentives:  decimal.Zero,
		ServiceBreakdown: make(map[string]decimal.Decimal),
	}

	entries, err := s.store.ListCallEntries(ctx, store.CallFilter{From: from, To: to, EmployeeUID: employee})
	if err != nil {
		return Overview{}, err
	}
	for _, e := range entries {
		o.TotalCalls += e.AnsweredCalls + e.UnansweredCalls
		o.TotalAnswered += e.AnsweredCalls
		o.TotalUnanswered += e.UnansweredCalls
	}

	payments, err := s.store.ListPayments(ctx, store.PaymentFilter{From: from, To: to, EmployeeUID: employee})
	if err != nil {
		return Overview{}, err
	}
	for _, p := range payments {
		o.TotalPayments = o.TotalPayments.Add(p.AmountPaid)
		existing, ok := o.ServiceBreakdown[p.Service]
		if !ok {
			existing = decimal.Zero
		}
		o.ServiceBreakdown[p.Service] = existing.Add(p.AmountPaid)
	}

	incentives, err := s.store.ListIncentives(ctx, store.IncentiveFilter{From: from, To: to, EmployeeUID: employee})
	if err != nil {
		return Overview{}, err
	}
	for _, i := range incentives {
		o.TotalIncentives = o.TotalIncentives.Add(i.Amount)
	}

	return o, nil
}

// CustomerRevenue ranks a customer (by mobile) with total revenue.
type CustomerRevenue struct {
	Mobile           record.Mobile
	CustomerName     string
	OrganizationName string
	Revenue          decimal.Decimal
	PaymentCount     int
}

// TopCustomers returns the top customers by revenue in [from, to],
// grouped by mobile number. Ties break by mobile for determinism.
func (s *Service) TopCustomers(ctx context.Context, from, to *record.Date, limit int) ([]CustomerRevenue, error) {
	payments, err := s.store.ListPayments(ctx, store.PaymentFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	byMobile := make(map[record.Mobile]*CustomerRevenue)
	for _, p := range payments {
		cr, ok := byMobile[p.Mobile]
		if !ok {
			cr = &CustomerRevenue{
				Mobile:           p.Mobile,
				CustomerName:     p.CustomerName,
				OrganizationName: p.OrganizationName,
				Revenue:          decimal.Zero,
			}
			byMobile[p.Mobile] = cr
		}
		cr.Revenue = cr.Revenue.Add(p.AmountPaid)
		cr.PaymentCount++
	}

	ranked := make([]CustomerRevenue, 0, len(byMobile))
	for _, cr := range byMobile {
		ranked = append(ranked, *cr)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Revenue.Equal(ranked[j].Revenue) {
			return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
		}
		return ranked[i].Mobile < ranked[j].Mobile
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
