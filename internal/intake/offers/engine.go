// internal/intake/offers/engine.go
package offers

import (
	"fmt"
	"math"

	"finance-intake/internal/models"
)

// Lender names by tier. The lease program has a single fixed provider.
const (
	lenderPremium   = "Summit Capital Premium"
	lenderPreferred = "Meridian Equipment Finance"
	lenderStandard  = "Crestline Commercial Credit"
	lenderSubprime  = "Harbor Bridge Funding"
	lenderLease     = "Evergreen Lease Partners"
)

// rateTier is one row of the pricing ladder; first matching row wins.
type rateTier struct {
	matches func(income, creditScore int) bool
	apr     float64
	tier    string
	lender  string
}

var rateLadder = []rateTier{
	{
		matches: func(income, _ int) bool { return income > 250_000 },
		apr:     0, tier: "Premium", lender: lenderPremium,
	},
	{
		matches: func(income, credit int) bool { return credit >= 750 || income >= 120_000 },
		apr:     7.99, tier: "Preferred", lender: lenderPreferred,
	},
	{
		matches: func(_, credit int) bool { return credit < 650 },
		apr:     15.99, tier: "Subprime", lender: lenderSubprime,
	},
	{
		matches: func(_, _ int) bool { return true },
		apr:     10.99, tier: "Standard", lender: lenderStandard,
	},
}

// Engine prices offers for a collected profile. All methods are pure.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// selectTier walks the ladder top to bottom.
func selectTier(p *models.ApplicantProfile) rateTier {
	for _, t := range rateLadder {
		if t.matches(p.Income, p.CreditScore) {
			return t
		}
	}
	return rateLadder[len(rateLadder)-1] // unreachable: last row always matches
}

// Price turns a profile and cart total into a priced offer. requestedDown is
// a down payment the customer asked for at checkout; zero means none.
func (e *Engine) Price(p *models.ApplicantProfile, cartTotal int, offerType models.OfferType, termMonths, requestedDown int) models.Offer {
	if termMonths <= 0 {
		termMonths = 36
	}

	switch offerType {
	case models.OfferLease:
		return priceLease(cartTotal, termMonths)
	default:
		return priceFinancing(p, cartTotal, termMonths, requestedDown)
	}
}

func priceFinancing(p *models.ApplicantProfile, cartTotal, termMonths, requestedDown int) models.Offer {
	t := selectTier(p)

	// The standard program asks for 10% down capped at $500; a larger
	// down payment requested at checkout overrides it, up to the cart total.
	downPayment := int(math.Min(float64(cartTotal)*0.10, 500))
	if requestedDown > downPayment {
		downPayment = requestedDown
	}
	if downPayment > cartTotal {
		downPayment = cartTotal
	}

	principal := cartTotal - downPayment
	monthly := amortize(principal, t.apr, termMonths)

	return models.Offer{
		Lender:         t.lender,
		Tier:           t.tier,
		APR:            t.apr,
		TermMonths:     termMonths,
		DownPayment:    downPayment,
		MonthlyPayment: monthly,
		TotalAmount:    roundCents(float64(downPayment) + monthly*float64(termMonths)),
	}
}

func priceLease(cartTotal, termMonths int) models.Offer {
	monthly := math.Round(float64(cartTotal) * 1.15 / float64(termMonths))
	return models.Offer{
		Lender:         lenderLease,
		Tier:           "Lease",
		APR:            0,
		TermMonths:     termMonths,
		DownPayment:    0,
		MonthlyPayment: monthly,
		TotalAmount:    monthly * float64(termMonths),
	}
}

// amortize computes the standard annuity payment, rounded to the nearest
// cent. A non-positive apr degenerates to ceil(principal/n) so zero-rate
// promotions never divide by zero.
func amortize(principal int, apr float64, termMonths int) float64 {
	if termMonths <= 0 {
		return float64(principal)
	}
	if apr <= 0 {
		return math.Ceil(float64(principal) / float64(termMonths))
	}
	r := apr / 100 / 12
	pow := math.Pow(1+r, float64(termMonths))
	payment := float64(principal) * r * pow / (pow - 1)
	return roundCents(payment)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Compare prices both products for the same term and reports which one
// costs less in total.
func (e *Engine) Compare(p *models.ApplicantProfile, cartTotal, termMonths, requestedDown int) models.OfferComparison {
	if termMonths <= 0 {
		termMonths = 36
	}
	fin := e.Price(p, cartTotal, models.OfferFinancing, termMonths, requestedDown)
	lease := e.Price(p, cartTotal, models.OfferLease, termMonths, requestedDown)

	diff := roundCents(fin.TotalAmount - lease.TotalAmount)
	var savings string
	switch {
	case diff > 0:
		savings = fmt.Sprintf("Leasing saves $%.2f over %d months", diff, termMonths)
	case diff < 0:
		savings = fmt.Sprintf("Financing saves $%.2f over %d months", -diff, termMonths)
	default:
		savings = fmt.Sprintf("Both options cost the same over %d months", termMonths)
	}

	return models.OfferComparison{
		Financing:  fin,
		Lease:      lease,
		Difference: diff,
		Savings:    savings,
	}
}
