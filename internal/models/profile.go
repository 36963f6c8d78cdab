// internal/models/profile.go
package models

// CustomerType distinguishes the two intake branches.
type CustomerType string

const (
	CustomerIndividual CustomerType = "individual"
	CustomerBusiness   CustomerType = "business"
)

// OfferType is the product the applicant ends up selecting.
type OfferType string

const (
	OfferFinancing OfferType = "financing"
	OfferLease     OfferType = "lease"
)

// ApplicantProfile is the cumulative record of everything collected during
// the conversation. Fields count as collected only when non-empty/non-zero;
// the prompt machine derives "next missing field" from this record alone.
type ApplicantProfile struct {
	CustomerType       CustomerType   `json:"customerType"`
	BusinessInfo       BusinessInfo   `json:"businessInfo"`
	RepresentativeName string         `json:"representativeName"`
	Income             int            `json:"income"`
	GuarantorInfo      *GuarantorInfo `json:"guarantorInfo,omitempty"`
	CreditScore        int            `json:"creditScore,omitempty"`
	SelectedOfferType  OfferType      `json:"selectedOfferType,omitempty"`
	SelectedTerm       int            `json:"selectedTerm,omitempty"` // months
}

type BusinessInfo struct {
	CompanyName          string `json:"companyName"`
	TaxID                string `json:"taxId"`
	BusinessType         string `json:"businessType"`
	StateOfIncorporation string `json:"stateOfIncorporation"`
	YearsInBusiness      int    `json:"yearsInBusiness"`
	OwnershipPercentage  int    `json:"ownershipPercentage"`
}

// GuarantorInfo is collected only for large carts (personal guarantee).
type GuarantorInfo struct {
	SSN                 string `json:"ssn"`
	PersonalIncome      int    `json:"personalIncome"`
	PersonalNetWorth    int    `json:"personalNetWorth"`
	Address             string `json:"address"`
	DriversLicenseState string `json:"driversLicenseState"`
}

// Guarantor returns the guarantor block, allocating it on first use so that
// parsers can patch fields without nil checks at every site.
func (p *ApplicantProfile) Guarantor() *GuarantorInfo {
	if p.GuarantorInfo == nil {
		p.GuarantorInfo = &GuarantorInfo{}
	}
	return p.GuarantorInfo
}

// Clone returns a deep copy. The prompt machine is pure over the profile, so
// turn handling patches a copy and swaps it in only when parsing succeeds.
func (p *ApplicantProfile) Clone() *ApplicantProfile {
	out := *p
	if p.GuarantorInfo != nil {
		g := *p.GuarantorInfo
		out.GuarantorInfo = &g
	}
	return &out
}
