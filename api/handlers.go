/*
handlers.go - HTTP handlers for the tracker API

PURPOSE:
  Thin translation layer: decode DTO, resolve the caller's identity and
  role from context, call tracker.Service, encode the result. Role
  gating for mutations happens in the router via RequireCapability; the
  per-record ownership rule (non-privileged callers only see their own
  records) is enforced here by pinning filters to the caller's uid.

ERROR MAPPING:
  record.IsClientError -> 400
  record.IsNotFound    -> 404
  anything else        -> 500 (logged; detail not leaked to the client)
*/
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vantage/sales-tracker/auth"
	"github.com/vantage/sales-tracker/billing"
	"github.com/vantage/sales-tracker/record"
	"github.com/vantage/sales-tracker/store"
	"github.com/vantage/sales-tracker/tracker"
)

type Handler struct {
	Service *tracker.Service
	Log     *slog.Logger
}

func NewHandler(svc *tracker.Service, log *slog.Logger) *Handler {
	return &Handler{Service: svc, Log: log}
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, inc, err := h.Service.CreatePayment(r.Context(), req.toRecord(callerUID(r)))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	incentivesComputed.Inc()

	writeJSON(w, http.StatusCreated, map[string]any{
		"payment":   paymentDTO(p),
		"incentive": incentiveDTO(inc),
	})
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	f, ok := h.paymentFilter(w, r)
	if !ok {
		return
	}
	payments, err := h.Service.ListPayments(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	dtos := make([]PaymentDTO, 0, len(payments))
	for _, p := range payments {
		dtos = append(dtos, paymentDTO(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": dtos})
}

func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id := record.PaymentID(chi.URLParam(r, "id"))
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The earning employee stays whoever recorded the payment; the
	// service pins it from the stored record under its lock.
	p, inc, err := h.Service.UpdatePayment(r.Context(), id, req.toRecord(""))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	incentivesComputed.Inc()

	writeJSON(w, http.StatusOK, map[string]any{
		"payment":   paymentDTO(p),
		"incentive": incentiveDTO(inc),
	})
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id := record.PaymentID(chi.URLParam(r, "id"))
	if err := h.Service.DeletePayment(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payment_id": string(id), "deleted": true})
}

// paymentFilter builds the listing filter from query params, pinning the
// employee to the caller unless the role can view team records.
func (h *Handler) paymentFilter(w http.ResponseWriter, r *http.Request) (store.PaymentFilter, bool) {
	var f store.PaymentFilter
	var ok bool
	if f.From, ok = dateParam(w, r, "from"); !ok {
		return f, false
	}
	if f.To, ok = dateParam(w, r, "to"); !ok {
		return f, false
	}
	f.Service = r.URL.Query().Get("service")
	f.CustomerType = record.CustomerType(r.URL.Query().Get("customer_type"))

	if callerRole(r).Can(auth.CapViewTeamRecords) {
		f.EmployeeUID = record.EmployeeID(r.URL.Query().Get("employee_uid"))
	} else {
		f.EmployeeUID = callerUID(r)
	}
	return f, true
}

// =============================================================================
// INCENTIVES
// =============================================================================

func (h *Handler) ListIncentives(w http.ResponseWriter, r *http.Request) {
	var f store.IncentiveFilter
	var ok bool
	if f.From, ok = dateParam(w, r, "from"); !ok {
		return
	}
	if f.To, ok = dateParam(w, r, "to"); !ok {
		return
	}
	if callerRole(r).Can(auth.CapViewTeamRecords) {
		f.EmployeeUID = record.EmployeeID(r.URL.Query().Get("employee_uid"))
	} else {
		f.EmployeeUID = callerUID(r)
	}

	incentives, err := h.Service.ListIncentives(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	dtos := make([]IncentiveDTO, 0, len(incentives))
	for _, i := range incentives {
		dtos = append(dtos, incentiveDTO(i))
	}
	writeJSON(w, http.StatusOK, map[string]any{"incentives": dtos})
}

// =============================================================================
// WHATSAPP RECURRING BILLING
// =============================================================================

func (h *Handler) UpsertWhatsAppCustomer(w http.ResponseWriter, r *http.Request) {
	var req WhatsAppCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.UpsertWhatsAppCustomer(r.Context(), record.WhatsAppCustomer{
		Mobile:           record.Mobile(req.Mobile),
		OrganizationName: req.OrganizationName,
		CustomerName:     req.CustomerName,
		FixedDueDay:      req.FixedDueDay,
		NextDue:          req.FirstDueDate,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customerDTO(c)})
}

func (h *Handler) RecordMonthlyPayment(w http.ResponseWriter, r *http.Request) {
	var req MonthlyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.RecordMonthlyPayment(r.Context(), record.WhatsAppMonthlyPayment{
		Mobile:   record.Mobile(req.Mobile),
		DatePaid: req.DatePaid,
		Amount:   req.Amount,
		CardLink: req.CardLink,
		Notes:    req.Notes,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customerDTO(c)})
}

func (h *Handler) ListMonthlyPayments(w http.ResponseWriter, r *http.Request) {
	mobile := record.Mobile(chi.URLParam(r, "mobile"))
	payments, err := h.Service.ListMonthlyPayments(r.Context(), mobile)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	dtos := make([]MonthlyPaymentDTO, 0, len(payments))
	for _, p := range payments {
		dtos = append(dtos, monthlyPaymentDTO(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"mobile": string(mobile), "payments": dtos})
}

func (h *Handler) ListDueCustomers(w http.ResponseWriter, r *http.Request) {
	windowParam := r.URL.Query().Get("window")
	if windowParam == "" {
		windowParam = string(billing.WindowToday)
	}
	window, err := billing.ParseWindow(windowParam)
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	due, err := h.Service.DueCustomers(r.Context(), window)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	dtos := make([]WhatsAppCustomerDTO, 0, len(due))
	for _, c := range due {
		dtos = append(dtos, customerDTO(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"window": string(window), "due": dtos})
}

func (h *Handler) ListReminderRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeErrorStatus(w, http.StatusBadRequest, "limit must be 1-100")
			return
		}
		limit = n
	}
	runs, err := h.Service.ListReminderRuns(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	dtos := make([]ReminderRunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, reminderRunDTO(run))
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": dtos})
}

// =============================================================================
// CALL ACTIVITY
// =============================================================================

func (h *Handler) UpsertCallEntry(w http.ResponseWriter, r *http.Request) {
	var req CallEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	employee := callerUID(r)
	if req.EmployeeUID != "" && record.EmployeeID(req.EmployeeUID) != employee {
		if !callerRole(r).Can(auth.CapViewTeamRecords) {
			writeErrorStatus(w, http.StatusForbidden, "cannot write entries for another employee")
			return
		}
		employee = record.EmployeeID(req.EmployeeUID)
	}

	entry := req.toRecord(employee)
	if err := h.Service.UpsertCallEntry(r.Context(), entry); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": entry.Key(), "entry": callEntryDTO(entry)})
}

func (h *Handler) ListCallEntries(w http.ResponseWriter, r *http.Request) {
	var f store.CallFilter
	var ok bool
	if f.From, ok = dateParam(w, r, "from"); !ok {
		return
	}
	if f.To, ok = dateParam(w, r, "to"); !ok {
		return
	}
	if callerRole(r).Can(auth.CapViewTeamRecords) {
		f.EmployeeUID = record.EmployeeID(r.URL.Query().Get("employee_uid"))
	} else {
		f.EmployeeUID = callerUID(r)
	}

	entries, err := h.Service.ListCallEntries(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	dtos := make([]CallEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, callEntryDTO(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": dtos})
}

// =============================================================================
// ANALYTICS
// =============================================================================

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	from, ok := dateParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := dateParam(w, r, "to")
	if !ok {
		return
	}

	var employee record.EmployeeID
	if callerRole(r).Can(auth.CapViewTeamRecords) {
		employee = record.EmployeeID(r.URL.Query().Get("employee_uid"))
	} else {
		employee = callerUID(r)
	}

	o, err := h.Service.Overview(r.Context(), from, to, employee)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": overviewDTO(o)})
}

func (h *Handler) TopCustomers(w http.ResponseWriter, r *http.Request) {
	from, ok := dateParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := dateParam(w, r, "to")
	if !ok {
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeErrorStatus(w, http.StatusBadRequest, "limit must be 1-100")
			return
		}
		limit = n
	}

	ranked, err := h.Service.TopCustomers(r.Context(), from, to, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	dtos := make([]TopCustomerDTO, 0, len(ranked))
	for _, cr := range ranked {
		dtos = append(dtos, TopCustomerDTO{
			Mobile:           string(cr.Mobile),
			CustomerName:     cr.CustomerName,
			OrganizationName: cr.OrganizationName,
			Revenue:          cr.Revenue,
			PaymentCount:     cr.PaymentCount,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": dtos})
}

// =============================================================================
// USERS
// =============================================================================

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.Service.GetUser(r.Context(), callerUID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UserDTO{
		UID:   string(u.UID),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UID == "" || req.Email == "" {
		writeErrorStatus(w, http.StatusBadRequest, "uid and email are required")
		return
	}

	u := record.User{
		UID:   record.EmployeeID(req.UID),
		Email: req.Email,
		Name:  req.Name,
		Role:  string(role),
	}
	if err := h.Service.PutUser(r.Context(), u); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, UserDTO{
		UID:   string(u.UID),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErrorStatus(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case record.IsClientError(err):
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
	case record.IsNotFound(err):
		writeErrorStatus(w, http.StatusNotFound, err.Error())
	default:
		h.Log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErrorStatus(w, http.StatusInternalServerError, "internal error")
	}
}

// dateParam parses an optional YYYY-MM-DD query parameter. The second
// return is false if the response has already been written.
func dateParam(w http.ResponseWriter, r *http.Request, name string) (*record.Date, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	d, err := record.ParseDate(raw)
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &d, true
}
