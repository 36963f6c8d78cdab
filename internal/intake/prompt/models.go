// internal/intake/prompt/models.go
package prompt

import "finance-intake/internal/models"

// Kind identifies one discrete question the machine can present.
type Kind string

const (
	KindCompanyName        Kind = "companyName"
	KindTaxID              Kind = "taxId"
	KindBusinessType       Kind = "businessType"
	KindStateIncorporation Kind = "stateOfIncorporation"
	KindYearsInBusiness    Kind = "yearsInBusiness"
	KindOwnershipPct       Kind = "ownershipPercentage"
	KindRepresentative     Kind = "representative"
	KindAnnualRevenue      Kind = "annualRevenue" // disabled: income is defaulted, never asked
	KindGuarantorSSN       Kind = "guarantorSsn"
	KindGuarantorIncome    Kind = "guarantorIncome"
	KindGuarantorNetWorth  Kind = "guarantorNetWorth"
	KindGuarantorAddress   Kind = "guarantorAddress"
	KindGuarantorLicense   Kind = "guarantorLicenseState"

	KindFullName     Kind = "fullName"
	KindIncomeBucket Kind = "incomeBucket"
)

// Parser maps a free-form or suggested-button reply to a profile patch.
// It mutates the given profile only on success and returns a StandardError
// (VALIDATION_FAILED / UNRECOGNIZED_REPLY) otherwise.
type Parser func(p *models.ApplicantProfile, reply string) error

// Step is one row of the declarative prompt table: the predicate decides
// whether the row's field is still missing, the question and suggestions are
// what the user sees, the parser interprets the next reply.
type Step struct {
	Kind        Kind
	Missing     func(p *models.ApplicantProfile) bool
	Question    string
	Guidance    string // appended when the previous reply was rejected
	Suggestions []string
	Parse       Parser
	Enabled     bool
}

// Config tunes the machine. Zero values fall back to production defaults.
type Config struct {
	GuarantorThreshold int // cart total above which the guarantor block is required
}

func (c Config) threshold() int {
	if c.GuarantorThreshold <= 0 {
		return 50000
	}
	return c.GuarantorThreshold
}
