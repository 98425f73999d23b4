package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage/sales-tracker/api"
	"github.com/vantage/sales-tracker/auth"
	"github.com/vantage/sales-tracker/incentive"
	"github.com/vantage/sales-tracker/record"
	"github.com/vantage/sales-tracker/store/memory"
	"github.com/vantage/sales-tracker/tracker"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

type harness struct {
	router http.Handler
	tokens *auth.TokenManager
	svc    *tracker.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	rates := incentive.RateTable{
		Base: map[string]decimal.Decimal{
			"whatsapp_marketing": decimal.NewFromFloat(0.05),
		},
		Global: decimal.NewFromFloat(0.02),
	}
	svc, err := tracker.NewService(memory.New(), rates)
	require.NoError(t, err)
	svc = svc.WithClock(func() record.Date {
		return record.NewDate(2024, time.March, 5)
	})

	tm := auth.NewTokenManager("test-secret", "tracker-test", time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := api.NewHandler(svc, log)
	return &harness{
		router: api.NewRouter(h, tm, []string{"http://localhost:3000"}),
		tokens: tm,
		svc:    svc,
	}
}

func (h *harness) token(t *testing.T, uid string, role auth.Role) string {
	t.Helper()
	token, err := h.tokens.Issue(uid, uid+"@example.com", "", role)
	require.NoError(t, err)
	return token
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(into))
}

func paymentBody(amount string) map[string]any {
	return map[string]any{
		"date":          "2024-03-04",
		"customer_name": "Acme Corp",
		"mobile":        "919876543210",
		"customer_type": "new",
		"service":       "whatsapp_marketing",
		"amount_paid":   amount,
	}
}

// =============================================================================
// AUTHENTICATION & AUTHORIZATION
// =============================================================================

func TestAPI_RejectsMissingToken(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/api/payments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_HealthzIsPublic(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_EmployeeCannotEditOrDeletePayments(t *testing.T) {
	h := newHarness(t)
	emp := h.token(t, "emp-1", auth.RoleEmployee)

	rec := h.do(t, http.MethodPut, "/api/payments/pay-1", emp, paymentBody("1000"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/payments/pay-1", emp, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPI_OnlyAdminCreatesUsers(t *testing.T) {
	h := newHarness(t)

	body := map[string]any{
		"uid":   "emp-9",
		"email": "nine@example.com",
		"role":  "EMPLOYEE",
	}
	rec := h.do(t, http.MethodPost, "/api/users", h.token(t, "mgr-1", auth.RoleManager), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/users", h.token(t, "adm-1", auth.RoleAdmin), body)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

// =============================================================================
// PAYMENT LIFECYCLE OVER HTTP
// =============================================================================

func TestAPI_CreatePaymentReturnsIncentive(t *testing.T) {
	h := newHarness(t)
	emp := h.token(t, "emp-1", auth.RoleEmployee)

	rec := h.do(t, http.MethodPost, "/api/payments", emp, paymentBody("1000"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Payment struct {
			ID          string `json:"id"`
			EmployeeUID string `json:"employee_uid"`
		} `json:"payment"`
		Incentive struct {
			Amount string `json:"incentive_amount"`
		} `json:"incentive"`
	}
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.Payment.ID)
	// The earning employee is the authenticated caller, never the body.
	assert.Equal(t, "emp-1", resp.Payment.EmployeeUID)
	// Rounded to currency precision, so the scale is preserved on the wire.
	assert.Equal(t, "1.00", resp.Incentive.Amount)
}

func TestAPI_CreatePaymentRejectsNonPositiveAmount(t *testing.T) {
	h := newHarness(t)
	emp := h.token(t, "emp-1", auth.RoleEmployee)

	rec := h.do(t, http.MethodPost, "/api/payments", emp, paymentBody("0"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_EmployeeListsOnlyOwnPayments(t *testing.T) {
	h := newHarness(t)
	emp1 := h.token(t, "emp-1", auth.RoleEmployee)
	emp2 := h.token(t, "emp-2", auth.RoleEmployee)

	rec := h.do(t, http.MethodPost, "/api/payments", emp1, paymentBody("1000"))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = h.do(t, http.MethodPost, "/api/payments", emp2, paymentBody("500"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Payments []struct {
			EmployeeUID string `json:"employee_uid"`
		} `json:"payments"`
	}

	rec = h.do(t, http.MethodGet, "/api/payments", emp1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	require.Len(t, resp.Payments, 1)
	assert.Equal(t, "emp-1", resp.Payments[0].EmployeeUID)

	// A manager sees the whole team.
	rec = h.do(t, http.MethodGet, "/api/payments", h.token(t, "mgr-1", auth.RoleManager), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	assert.Len(t, resp.Payments, 2)
}

func TestAPI_ManagerUpdatesAndDeletesPayment(t *testing.T) {
	h := newHarness(t)
	emp := h.token(t, "emp-1", auth.RoleEmployee)
	mgr := h.token(t, "mgr-1", auth.RoleManager)

	rec := h.do(t, http.MethodPost, "/api/payments", emp, paymentBody("1000"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Payment struct {
			ID string `json:"id"`
		} `json:"payment"`
	}
	decode(t, rec, &created)
	id := created.Payment.ID

	rec = h.do(t, http.MethodPut, "/api/payments/"+id, mgr, paymentBody("2000"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated struct {
		Payment struct {
			EmployeeUID string `json:"employee_uid"`
		} `json:"payment"`
		Incentive struct {
			Amount string `json:"incentive_amount"`
		} `json:"incentive"`
	}
	decode(t, rec, &updated)
	assert.Equal(t, "2.00", updated.Incentive.Amount)
	// The earner stays the original employee even though a manager edited.
	assert.Equal(t, "emp-1", updated.Payment.EmployeeUID)

	rec = h.do(t, http.MethodDelete, "/api/payments/"+id, mgr, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/payments/"+id, mgr, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// RECURRING BILLING OVER HTTP
// =============================================================================

func TestAPI_WhatsAppCustomerAndDueList(t *testing.T) {
	h := newHarness(t)
	mgr := h.token(t, "mgr-1", auth.RoleManager)

	rec := h.do(t, http.MethodPost, "/api/whatsapp/customers", mgr, map[string]any{
		"mobile":        "919876543210",
		"customer_name": "Acme Corp",
		"fixed_due_day": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created struct {
		Customer struct {
			NextDue string `json:"next_due_date"`
		} `json:"customer"`
	}
	decode(t, rec, &created)
	// Clock pinned to 2024-03-05; due day 5 is today.
	assert.Equal(t, "2024-03-05", created.Customer.NextDue)

	rec = h.do(t, http.MethodGet, "/api/whatsapp/due?window=today", mgr, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var due struct {
		Due []struct {
			Mobile string `json:"mobile"`
		} `json:"due"`
	}
	decode(t, rec, &due)
	require.Len(t, due.Due, 1)
	assert.Equal(t, "919876543210", due.Due[0].Mobile)

	rec = h.do(t, http.MethodGet, "/api/whatsapp/due?window=fortnight", mgr, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_RecordMonthlyPaymentAdvancesDueDate(t *testing.T) {
	h := newHarness(t)
	mgr := h.token(t, "mgr-1", auth.RoleManager)

	rec := h.do(t, http.MethodPost, "/api/whatsapp/customers", mgr, map[string]any{
		"mobile":         "919876543210",
		"customer_name":  "Acme Corp",
		"fixed_due_day":  31,
		"first_due_date": "2024-01-31",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/api/whatsapp/monthly-payments", mgr, map[string]any{
		"mobile":    "919876543210",
		"date_paid": "2024-01-31",
		"amount":    "500",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Customer struct {
			NextDue string `json:"next_due_date"`
		} `json:"customer"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "2024-02-29", resp.Customer.NextDue)

	// Employees cannot manage the recurring book.
	rec = h.do(t, http.MethodPost, "/api/whatsapp/monthly-payments", h.token(t, "emp-1", auth.RoleEmployee), map[string]any{
		"mobile":    "919876543210",
		"date_paid": "2024-02-29",
		"amount":    "500",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// =============================================================================
// CALLS & ANALYTICS OVER HTTP
// =============================================================================

func TestAPI_CallEntryUpsert(t *testing.T) {
	h := newHarness(t)
	emp := h.token(t, "emp-1", auth.RoleEmployee)

	body := map[string]any{
		"date":                    "2024-03-05",
		"answered_calls":          10,
		"unanswered_calls":        2,
		"total_call_time_minutes": 90,
	}
	rec := h.do(t, http.MethodPost, "/api/calls", emp, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		DocID string `json:"doc_id"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "emp-1_2024-03-05", resp.DocID)

	// Writing for someone else requires team visibility.
	body["employee_uid"] = "emp-2"
	rec = h.do(t, http.MethodPost, "/api/calls", emp, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/calls", h.token(t, "mgr-1", auth.RoleManager), body)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_OverviewAndTopCustomers(t *testing.T) {
	h := newHarness(t)
	emp := h.token(t, "emp-1", auth.RoleEmployee)

	rec := h.do(t, http.MethodPost, "/api/payments", emp, paymentBody("1000"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/analytics/overview?from=2024-03-01&to=2024-03-07", emp, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var overview struct {
		Data struct {
			TotalPayments   string `json:"total_payments"`
			TotalIncentives string `json:"total_incentives"`
		} `json:"data"`
	}
	decode(t, rec, &overview)
	assert.Equal(t, "1000", overview.Data.TotalPayments)
	assert.Equal(t, "1.00", overview.Data.TotalIncentives)

	rec = h.do(t, http.MethodGet, "/api/analytics/top-customers?limit=5", emp, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var top struct {
		Customers []struct {
			Mobile  string `json:"mobile"`
			Revenue string `json:"revenue"`
		} `json:"customers"`
	}
	decode(t, rec, &top)
	require.Len(t, top.Customers, 1)
	assert.Equal(t, "1000", top.Customers[0].Revenue)

	rec = h.do(t, http.MethodGet, "/api/analytics/overview?from=not-a-date", emp, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// USERS
// =============================================================================

func TestAPI_UsersMe(t *testing.T) {
	h := newHarness(t)
	adm := h.token(t, "adm-1", auth.RoleAdmin)

	rec := h.do(t, http.MethodPost, "/api/users", adm, map[string]any{
		"uid":   "emp-1",
		"email": "one@example.com",
		"name":  "One",
		"role":  "EMPLOYEE",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/users/me", h.token(t, "emp-1", auth.RoleEmployee), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		UID  string `json:"uid"`
		Role string `json:"role"`
	}
	decode(t, rec, &me)
	assert.Equal(t, "emp-1", me.UID)
	assert.Equal(t, "EMPLOYEE", me.Role)

	rec = h.do(t, http.MethodPost, "/api/users", adm, map[string]any{
		"uid":   "emp-2",
		"email": "two@example.com",
		"role":  "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
