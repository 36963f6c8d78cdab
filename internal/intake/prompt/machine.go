// internal/intake/prompt/machine.go
package prompt

import (
	"finance-intake/internal/models"
)

// Machine decides the single next question for a profile. Next is a pure,
// total function over the ordered required-field table for the applicant's
// customer type; replaying the same profile and cart total always yields the
// same step.
type Machine struct {
	cfg Config
}

func NewMachine(cfg Config) *Machine {
	return &Machine{cfg: cfg}
}

// steps builds the ordered table for the given branch. The guarantor block
// is appended only when the cart total exceeds the threshold; the table is
// rebuilt on every call so the conditional insertion is re-evaluated rather
// than cached.
func (m *Machine) steps(customerType models.CustomerType, cartTotal int) []Step {
	if customerType == models.CustomerIndividual {
		return individualSteps()
	}
	rows := businessSteps()
	if cartTotal > m.cfg.threshold() {
		rows = append(rows, guarantorSteps()...)
	}
	return rows
}

func businessSteps() []Step {
	return []Step{
		{
			Kind:     KindCompanyName,
			Missing:  func(p *models.ApplicantProfile) bool { return p.BusinessInfo.CompanyName == "" },
			Question: "What is your company's legal name?",
			Parse:    parseCompanyName,
			Enabled:  true,
		},
		{
			Kind:     KindTaxID,
			Missing:  func(p *models.ApplicantProfile) bool { return p.BusinessInfo.TaxID == "" },
			Question: "What is your federal tax ID (EIN)?",
			Guidance: "Format: 12-3456789.",
			Parse:    parseTaxID,
			Enabled:  true,
		},
		{
			Kind:        KindBusinessType,
			Missing:     func(p *models.ApplicantProfile) bool { return p.BusinessInfo.BusinessType == "" },
			Question:    "What type of business entity is it?",
			Suggestions: []string{"LLC", "Corporation", "Partnership", "Sole Proprietorship"},
			Parse:       parseBusinessType,
			Enabled:     true,
		},
		{
			Kind:     KindStateIncorporation,
			Missing:  func(p *models.ApplicantProfile) bool { return p.BusinessInfo.StateOfIncorporation == "" },
			Question: "In which state is the company incorporated?",
			Parse:    parseStateOfIncorporation,
			Enabled:  true,
		},
		{
			Kind:        KindYearsInBusiness,
			Missing:     func(p *models.ApplicantProfile) bool { return p.BusinessInfo.YearsInBusiness == 0 },
			Question:    "How many years has the company been in business?",
			Suggestions: []string{"1", "2", "5", "10+"},
			Parse:       parseYearsInBusiness,
			Enabled:     true,
		},
		{
			Kind:        KindOwnershipPct,
			Missing:     func(p *models.ApplicantProfile) bool { return p.BusinessInfo.OwnershipPercentage == 0 },
			Question:    "What percentage of the company do you own?",
			Suggestions: []string{"100%", "50%", "25%"},
			Parse:       parseOwnershipPct,
			Enabled:     true,
		},
		{
			Kind:     KindRepresentative,
			Missing:  func(p *models.ApplicantProfile) bool { return p.RepresentativeName == "" },
			Question: "Who is the authorized representative signing for the company?",
			Parse:    parseRepresentative,
			Enabled:  true,
		},
		{
			// Revenue is currently defaulted instead of asked. The row stays
			// in the table so the question can be re-enabled without
			// re-deriving its position.
			Kind:        KindAnnualRevenue,
			Missing:     func(p *models.ApplicantProfile) bool { return p.Income == 0 },
			Question:    "What is the company's annual revenue?",
			Suggestions: []string{"Under $75K", "$75K–$150K", "$150K–$250K", "Over $250K"},
			Parse:       parseIncomeBucket,
			Enabled:     false,
		},
	}
}

func guarantorSteps() []Step {
	return []Step{
		{
			Kind: KindGuarantorSSN,
			Missing: func(p *models.ApplicantProfile) bool {
				return p.GuarantorInfo == nil || p.GuarantorInfo.SSN == ""
			},
			Question: "This order size requires a personal guarantee. What is your Social Security number?",
			Guidance: "Format: 123-45-6789.",
			Parse:    parseGuarantorSSN,
			Enabled:  true,
		},
		{
			Kind: KindGuarantorIncome,
			Missing: func(p *models.ApplicantProfile) bool {
				return p.GuarantorInfo == nil || p.GuarantorInfo.PersonalIncome == 0
			},
			Question:    "What is your personal annual income?",
			Suggestions: []string{"Under $75K", "$75K–$150K", "$150K–$250K", "Over $250K"},
			Parse:       parseGuarantorIncome,
			Enabled:     true,
		},
		{
			Kind: KindGuarantorNetWorth,
			Missing: func(p *models.ApplicantProfile) bool {
				return p.GuarantorInfo == nil || p.GuarantorInfo.PersonalNetWorth == 0
			},
			Question:    "What is your personal net worth?",
			Suggestions: []string{"Under $250K", "$250K–$500K", "$500K–$1M", "Over $1M"},
			Parse:       parseGuarantorNetWorth,
			Enabled:     true,
		},
		{
			Kind: KindGuarantorAddress,
			Missing: func(p *models.ApplicantProfile) bool {
				return p.GuarantorInfo == nil || p.GuarantorInfo.Address == ""
			},
			Question: "What is your home address?",
			Parse:    parseGuarantorAddress,
			Enabled:  true,
		},
		{
			Kind: KindGuarantorLicense,
			Missing: func(p *models.ApplicantProfile) bool {
				return p.GuarantorInfo == nil || p.GuarantorInfo.DriversLicenseState == ""
			},
			Question: "Which state issued your driver's license?",
			Parse:    parseGuarantorLicense,
			Enabled:  true,
		},
	}
}

func individualSteps() []Step {
	return []Step{
		{
			Kind:     KindFullName,
			Missing:  func(p *models.ApplicantProfile) bool { return p.RepresentativeName == "" },
			Question: "What is your full name?",
			Parse:    parseFullName,
			Enabled:  true,
		},
		{
			Kind:        KindIncomeBucket,
			Missing:     func(p *models.ApplicantProfile) bool { return p.Income == 0 },
			Question:    "What is your annual income?",
			Suggestions: []string{"Under $75K", "$75K–$150K", "$150K–$250K", "Over $250K"},
			Parse:       parseIncomeBucket,
			Enabled:     true,
		},
	}
}

// Next returns the first enabled step whose field is still missing, or nil
// when qualification is complete for the branch.
func (m *Machine) Next(p *models.ApplicantProfile, cartTotal int) *Step {
	for _, s := range m.steps(p.CustomerType, cartTotal) {
		if s.Enabled && s.Missing(p) {
			step := s
			return &step
		}
	}
	return nil
}

// Apply interprets reply against the currently pending step. On success the
// returned profile carries the patch and the next pending step (nil when
// complete). On failure the original profile is returned untouched together
// with the same step, so the caller re-issues the identical prompt.
func (m *Machine) Apply(p *models.ApplicantProfile, cartTotal int, reply string) (*models.ApplicantProfile, *Step, error) {
	step := m.Next(p, cartTotal)
	if step == nil {
		return p, nil, nil
	}

	patched := p.Clone()
	if err := step.Parse(patched, reply); err != nil {
		// Parse failures are recoverable in place: the caller keeps the
		// original profile and re-issues the same prompt.
		return p, step, err
	}
	return patched, m.Next(patched, cartTotal), nil
}
