package incentive_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vantage/sales-tracker/incentive"
	"github.com/vantage/sales-tracker/record"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func testRates() incentive.RateTable {
	return incentive.RateTable{
		Base: map[string]decimal.Decimal{
			"whatsapp_marketing": decimal.NewFromFloat(0.05),
			"crm":                decimal.NewFromFloat(0.04),
		},
		Global: decimal.NewFromFloat(0.02),
	}
}

func testPayment(amount string) record.Payment {
	return record.Payment{
		ID:           "pay-1",
		Date:         record.NewDate(2024, time.March, 15),
		CustomerName: "Acme Corp",
		Mobile:       "919876543210",
		CustomerType: record.CustomerNew,
		Service:      "whatsapp_marketing",
		AmountPaid:   decimal.RequireFromString(amount),
		EmployeeUID:  "emp-1",
	}
}

// =============================================================================
// COMPUTE TESTS
// =============================================================================

func TestCompute_BasicFormula(t *testing.T) {
	// GIVEN: A 1000 payment, base 5%, global 2%
	// WHEN: Computing the incentive
	// THEN: 1000 * 0.05 * 0.02 = 1.00

	inc, err := incentive.Compute(testPayment("1000"), testRates())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !inc.Amount.Equal(decimal.RequireFromString("1.00")) {
		t.Errorf("incentive = %s, want 1.00", inc.Amount)
	}
	if inc.PaymentID != "pay-1" || inc.EmployeeUID != "emp-1" {
		t.Errorf("incentive keys not carried: %+v", inc)
	}
	if !inc.BasePercent.Equal(decimal.NewFromFloat(0.05)) {
		t.Errorf("base percent = %s, want 0.05", inc.BasePercent)
	}
}

func TestCompute_RoundsHalfUpToTwoPlaces(t *testing.T) {
	// 1234.56 * 0.05 * 0.02 = 1.234560 -> 1.23
	// 1235.00 * 0.05 * 0.02 = 1.235    -> 1.24 (half rounds up)
	cases := []struct {
		amount string
		want   string
	}{
		{"1234.56", "1.23"},
		{"1235", "1.24"},
		{"5", "0.01"},   // 0.005 rounds up
		{"4.99", "0"},   // 0.00499 rounds down
		{"12345", "12.35"},
	}
	for _, tc := range cases {
		inc, err := incentive.Compute(testPayment(tc.amount), testRates())
		if err != nil {
			t.Fatalf("Compute(%s) failed: %v", tc.amount, err)
		}
		if !inc.Amount.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("Compute(%s) = %s, want %s", tc.amount, inc.Amount, tc.want)
		}
	}
}

func TestCompute_RejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []string{"0", "-100"} {
		_, err := incentive.Compute(testPayment(amount), testRates())
		if !errors.Is(err, record.ErrInvalidPayment) {
			t.Errorf("Compute(%s): err = %v, want ErrInvalidPayment", amount, err)
		}
		var ipe *record.InvalidPaymentError
		if !errors.As(err, &ipe) {
			t.Errorf("Compute(%s): err does not unwrap to InvalidPaymentError", amount)
		}
	}
}

func TestCompute_UnknownServiceFailsRateLookup(t *testing.T) {
	p := testPayment("1000")
	p.Service = "unknown_service"

	_, err := incentive.Compute(p, testRates())
	if !errors.Is(err, record.ErrInvalidRate) {
		t.Fatalf("err = %v, want ErrInvalidRate", err)
	}
	var ire *record.InvalidRateError
	if !errors.As(err, &ire) || ire.Service != "unknown_service" {
		t.Errorf("error does not carry the offending service: %v", err)
	}
}

// =============================================================================
// RECOMPUTE TESTS
// =============================================================================

func TestRecompute_ReplacesAmountForUpdatedPayment(t *testing.T) {
	// GIVEN: An incentive computed from a 1000 payment
	// WHEN: The payment amount is corrected to 2000
	// THEN: Recompute yields 2.00 and keeps the payment link

	rates := testRates()
	prior, err := incentive.Compute(testPayment("1000"), rates)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	updated := testPayment("2000")
	next, err := incentive.Recompute(prior, updated, rates)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if !next.Amount.Equal(decimal.RequireFromString("2.00")) {
		t.Errorf("recomputed = %s, want 2.00", next.Amount)
	}
	if next.PaymentID != prior.PaymentID {
		t.Errorf("payment link changed: %s -> %s", prior.PaymentID, next.PaymentID)
	}
}

func TestRecompute_RejectsMismatchedPayment(t *testing.T) {
	rates := testRates()
	prior, err := incentive.Compute(testPayment("1000"), rates)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	other := testPayment("1000")
	other.ID = "pay-2"

	if _, err := incentive.Recompute(prior, other, rates); err == nil {
		t.Fatal("Recompute accepted an incentive from a different payment")
	}
}

// =============================================================================
// RATE TABLE TESTS
// =============================================================================

func TestRateTable_LookupMissingService(t *testing.T) {
	rates := testRates()
	if _, err := rates.Lookup("nope"); !errors.Is(err, record.ErrInvalidRate) {
		t.Errorf("err = %v, want ErrInvalidRate", err)
	}
}

func TestRateTable_ValidateRejectsNonPositiveRates(t *testing.T) {
	rates := incentive.RateTable{
		Base:   map[string]decimal.Decimal{"crm": decimal.Zero},
		Global: decimal.NewFromFloat(0.02),
	}
	if err := rates.Validate(); err == nil {
		t.Error("Validate accepted a zero base rate")
	}

	rates = testRates()
	rates.Global = decimal.NewFromFloat(-0.02)
	if err := rates.Validate(); err == nil {
		t.Error("Validate accepted a negative global rate")
	}
}
