// internal/models/order.go
package models

// OrderItem is one line of the equipment cart the collaborator layer built.
type OrderItem struct {
	Name     string `json:"name"`
	Price    int    `json:"price"` // unit price, whole dollars
	Quantity int    `json:"quantity"`
}

// OrderContext is the initial order snapshot supplied by the UI layer when a
// session is opened. The core only uses it to seed the cart total and to
// name items in residual estimates.
type OrderContext struct {
	Items            []OrderItem `json:"items"`
	MaintenanceAddOn bool        `json:"maintenanceAddOn"`
	InsuranceAddOn   bool        `json:"insuranceAddOn"`
	TermMonths       int         `json:"termMonths,omitempty"`
	DownPayment      int         `json:"downPayment,omitempty"`
	CustomerEmail    string      `json:"customerEmail,omitempty"`
}

// Flat add-on charges folded into the cart total.
const (
	maintenanceAddOnPrice = 499
	insuranceAddOnPrice   = 299
)

// CartTotal sums line items plus selected add-ons.
func (o OrderContext) CartTotal() int {
	total := 0
	for _, it := range o.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		total += it.Price * qty
	}
	if o.MaintenanceAddOn {
		total += maintenanceAddOnPrice
	}
	if o.InsuranceAddOn {
		total += insuranceAddOnPrice
	}
	return total
}

// ApplicationRecord is what gets persisted once a contract is signed.
type ApplicationRecord struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	CompanyName    string    `json:"companyName"`
	Representative string    `json:"representative"`
	OfferType      OfferType `json:"offerType"`
	Lender         string    `json:"lender"`
	TermMonths     int       `json:"termMonths"`
	MonthlyPayment float64   `json:"monthlyPayment"`
	TotalAmount    float64   `json:"totalAmount"`
	CreatedAt      string    `json:"createdAt"`
}
