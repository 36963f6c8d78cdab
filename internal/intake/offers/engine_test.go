// internal/intake/offers/engine_test.go
package offers

import (
	"testing"

	"finance-intake/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func profileWith(income, creditScore int) *models.ApplicantProfile {
	return &models.ApplicantProfile{
		CustomerType: models.CustomerBusiness,
		Income:       income,
		CreditScore:  creditScore,
	}
}

// ==========================
// Tier Selection Tests
// ==========================

func TestSelectTier(t *testing.T) {
	tests := []struct {
		name           string
		income         int
		creditScore    int
		expectedTier   string
		expectedAPR    float64
		expectedLender string
	}{
		{
			name:   "high income wins premium regardless of credit",
			income: 250_001, creditScore: 500,
			expectedTier: "Premium", expectedAPR: 0, expectedLender: "Summit Capital Premium",
		},
		{
			name:   "boundary income stays below premium",
			income: 250_000, creditScore: 760,
			expectedTier: "Preferred", expectedAPR: 7.99, expectedLender: "Meridian Equipment Finance",
		},
		{
			name:   "strong credit alone reaches preferred",
			income: 40_000, creditScore: 750,
			expectedTier: "Preferred", expectedAPR: 7.99, expectedLender: "Meridian Equipment Finance",
		},
		{
			name:   "moderate income alone reaches preferred",
			income: 120_000, creditScore: 0,
			expectedTier: "Preferred", expectedAPR: 7.99, expectedLender: "Meridian Equipment Finance",
		},
		{
			name:   "middling profile lands standard",
			income: 80_000, creditScore: 680,
			expectedTier: "Standard", expectedAPR: 10.99, expectedLender: "Crestline Commercial Credit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier := selectTier(profileWith(tt.income, tt.creditScore))
			assert.Equal(t, tt.expectedTier, tier.tier)
			assert.Equal(t, tt.expectedAPR, tier.apr)
			assert.Equal(t, tt.expectedLender, tier.lender)
		})
	}
}

func TestSelectTier_SubprimeRequiresLowIncome(t *testing.T) {
	// credit < 650 only reaches the subprime row when the income rows above
	// it did not already match.
	tier := selectTier(profileWith(60_000, 600))
	assert.Equal(t, "Subprime", tier.tier)
	assert.Equal(t, 15.99, tier.apr)

	tier = selectTier(profileWith(150_000, 600))
	assert.Equal(t, "Preferred", tier.tier)
}

// ==========================
// Pricing Tests
// ==========================

func TestAmortize(t *testing.T) {
	tests := []struct {
		name      string
		principal int
		apr       float64
		term      int
		expected  float64
	}{
		{name: "zero rate divides evenly", principal: 10_000, apr: 0, term: 10, expected: 1_000},
		{name: "zero rate rounds up", principal: 10_001, apr: 0, term: 10, expected: 1_001},
		// 9500 at 7.99% over 36 months: the closed-form annuity payment is
		// 297.6517..., carried to the cent.
		{name: "annuity payment to the cent", principal: 9_500, apr: 7.99, term: 36, expected: 297.65},
		{name: "non positive term returns principal", principal: 9_500, apr: 7.99, term: 0, expected: 9_500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, amortize(tt.principal, tt.apr, tt.term), 0.001)
		})
	}
}

func TestEngine_Price_Financing(t *testing.T) {
	e := NewEngine()

	// Premium profile: 0% APR. Down payment caps at 500 once 10% exceeds it.
	offer := e.Price(profileWith(500_000, 0), 10_000, models.OfferFinancing, 10, 0)

	assert.Equal(t, "Summit Capital Premium", offer.Lender)
	assert.Equal(t, "Premium", offer.Tier)
	assert.Equal(t, 0.0, offer.APR)
	assert.Equal(t, 500, offer.DownPayment)
	assert.Equal(t, 950.0, offer.MonthlyPayment)
	assert.Equal(t, 10_000.0, offer.TotalAmount)
}

func TestEngine_Price_CentPrecision(t *testing.T) {
	e := NewEngine()

	// Preferred tier at 7.99%: 10,000 less the 500 down leaves a 9,500
	// principal, whose 36-month payment is 297.65 to the cent.
	offer := e.Price(profileWith(150_000, 0), 10_000, models.OfferFinancing, 36, 0)

	assert.Equal(t, "Preferred", offer.Tier)
	assert.Equal(t, 500, offer.DownPayment)
	assert.InDelta(t, 297.65, offer.MonthlyPayment, 0.001)
	assert.InDelta(t, 500+297.65*36, offer.TotalAmount, 0.001)
}

func TestEngine_Price_RequestedDownPayment(t *testing.T) {
	e := NewEngine()

	// A checkout down payment above the standard 10%/500 overrides it.
	offer := e.Price(profileWith(500_000, 0), 10_000, models.OfferFinancing, 10, 2_000)
	assert.Equal(t, 2_000, offer.DownPayment)
	assert.Equal(t, 800.0, offer.MonthlyPayment)

	// A smaller request keeps the standard amount.
	offer = e.Price(profileWith(500_000, 0), 10_000, models.OfferFinancing, 10, 100)
	assert.Equal(t, 500, offer.DownPayment)

	// Never more down than the cart itself.
	offer = e.Price(profileWith(500_000, 0), 1_000, models.OfferFinancing, 10, 5_000)
	assert.Equal(t, 1_000, offer.DownPayment)
	assert.Equal(t, 0.0, offer.MonthlyPayment)
}

func TestEngine_Price_DownPaymentBelowCap(t *testing.T) {
	e := NewEngine()

	// 10% of 4000 is 400, below the 500 cap.
	offer := e.Price(profileWith(500_000, 0), 4_000, models.OfferFinancing, 12, 0)
	assert.Equal(t, 400, offer.DownPayment)
	assert.Equal(t, 300.0, offer.MonthlyPayment)
}

func TestEngine_Price_Lease(t *testing.T) {
	e := NewEngine()

	// 2400 * 1.15 / 24 = 115.
	offer := e.Price(profileWith(80_000, 700), 2_400, models.OfferLease, 24, 0)

	assert.Equal(t, "Evergreen Lease Partners", offer.Lender)
	assert.Equal(t, 0.0, offer.APR)
	assert.Equal(t, 0, offer.DownPayment)
	assert.Equal(t, 115.0, offer.MonthlyPayment)
	assert.Equal(t, 115.0*24, offer.TotalAmount)
}

func TestEngine_Price_DefaultsTerm(t *testing.T) {
	e := NewEngine()
	offer := e.Price(profileWith(500_000, 0), 10_000, models.OfferFinancing, 0, 0)
	assert.Equal(t, 36, offer.TermMonths)
}

func TestEngine_Compare(t *testing.T) {
	e := NewEngine()

	// Standard tier at 10.99% against the flat 15% lease premium.
	cmp := e.Compare(profileWith(80_000, 700), 20_000, 36, 0)

	require.NotZero(t, cmp.Financing.TotalAmount)
	require.NotZero(t, cmp.Lease.TotalAmount)
	assert.InDelta(t, cmp.Financing.TotalAmount-cmp.Lease.TotalAmount, cmp.Difference, 0.001)
	if cmp.Difference > 0 {
		assert.Contains(t, cmp.Savings, "Leasing saves")
	} else if cmp.Difference < 0 {
		assert.Contains(t, cmp.Savings, "Financing saves")
	}
	assert.Contains(t, cmp.Savings, "36 months")
}

// ==========================
// Residual Simulation Tests
// ==========================

func TestEngine_SimulateResiduals(t *testing.T) {
	e := NewEngine()

	items := []models.OrderItem{
		{Name: "MacBook Air 2018", Price: 1_000, Quantity: 1},
		{Name: "E-Bike Pro", Price: 2_000, Quantity: 1},
		{Name: "Standing Desk", Price: 600, Quantity: 1},
	}

	report := e.SimulateResiduals(items, 36)

	require.Len(t, report.Residuals, 3)
	assert.Equal(t, 0.20, report.Residuals[0].ResidualPct)
	assert.Equal(t, 200, report.Residuals[0].ResidualValue)
	assert.Equal(t, 0.15, report.Residuals[1].ResidualPct)
	assert.Equal(t, 300, report.Residuals[1].ResidualValue)
	assert.Equal(t, 0.10, report.Residuals[2].ResidualPct)
	assert.Equal(t, 60, report.Residuals[2].ResidualValue)
	assert.Equal(t, 560, report.CombinedResidual)

	// Summary names only the first two items.
	assert.Contains(t, report.SummaryText, "after 36 months")
	assert.Contains(t, report.SummaryText, "laptop 20% ($200)")
	assert.Contains(t, report.SummaryText, "e-bike 15% ($300)")
	assert.NotContains(t, report.SummaryText, "$60")
}

func TestResidualFor_KeywordPriority(t *testing.T) {
	tests := []struct {
		name  string
		item  string
		pct   float64
		label string
	}{
		{name: "bike keyword", item: "Cargo Bike XL", pct: 0.15, label: "e-bike"},
		{name: "macbook keyword", item: "MacBook Pro", pct: 0.20, label: "laptop"},
		{name: "robot keyword", item: "Warehouse Robot v2", pct: 0.12, label: "robotics"},
		{name: "fallback", item: "Espresso Machine", pct: 0.10, label: "equipment"},
		{name: "case insensitive", item: "E-BIKE", pct: 0.15, label: "e-bike"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, label := residualFor(tt.item)
			assert.Equal(t, tt.pct, pct)
			assert.Equal(t, tt.label, label)
		})
	}
}

func TestEngine_SimulateResiduals_Deterministic(t *testing.T) {
	e := NewEngine()
	items := []models.OrderItem{{Name: "E-Bike Pro", Price: 2_000, Quantity: 1}}

	first := e.SimulateResiduals(items, 24)
	second := e.SimulateResiduals(items, 24)
	assert.Equal(t, first, second)
}
