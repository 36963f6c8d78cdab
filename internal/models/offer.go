// internal/models/offer.go
package models

// Offer is a fully priced financing or lease proposal. Offers are immutable
// once created; a new user selection produces a new Offer.
type Offer struct {
	Lender         string             `json:"lender"`
	Tier           string             `json:"tier"`
	APR            float64            `json:"apr"` // percent; 0 means promotional/lease
	TermMonths     int                `json:"termMonths"`
	DownPayment    int                `json:"downPayment"`
	MonthlyPayment float64            `json:"monthlyPayment"` // dollars, cent precision
	TotalAmount    float64            `json:"totalAmount"`
	Residuals      []ResidualEstimate `json:"residuals,omitempty"`
}

// ResidualEstimate is the simulated end-of-term value of a single item.
// Derived, never persisted independently of an Offer.
type ResidualEstimate struct {
	ItemName      string  `json:"itemName"`
	Price         int     `json:"price"`
	ResidualPct   float64 `json:"residualPct"`
	ResidualValue int     `json:"residualValue"`
}

// ResidualReport aggregates per-item residuals for one term.
type ResidualReport struct {
	Residuals        []ResidualEstimate `json:"residuals"`
	CombinedResidual int                `json:"combinedResidual"`
	SummaryText      string             `json:"summaryText"`
}

// OfferComparison holds a financing and a lease offer priced side by side
// for the same term, with the signed total-cost difference.
type OfferComparison struct {
	Financing  Offer   `json:"financing"`
	Lease      Offer   `json:"lease"`
	Difference float64 `json:"difference"` // financing total minus lease total
	Savings    string  `json:"savings"`    // "X saves $Y over N months"
}

// Contract is the summary payload rendered before signature.
type Contract struct {
	Lender         string  `json:"lender"`
	CustomerName   string  `json:"customerName"`
	CustomerEmail  string  `json:"customerEmail,omitempty"`
	FinancedAmount int     `json:"financedAmount"`
	DownPayment    int     `json:"downPayment"`
	APR            float64 `json:"apr"`
	TermMonths     int     `json:"termMonths"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	SigningLink    string  `json:"signingLink"`
}

// Completion is the terminal payload emitted once the contract is signed.
type Completion struct {
	OfferType      OfferType `json:"offerType"`
	TermMonths     int       `json:"termMonths"`
	MonthlyPayment float64   `json:"monthlyPayment"`
}
