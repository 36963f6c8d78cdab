// internal/intake/prompt/parsers.go
package prompt

import (
	"regexp"
	"strconv"
	"strings"

	stderrors "finance-intake/internal/common/errors"
	"finance-intake/internal/models"
)

var (
	digitRegex    = regexp.MustCompile(`\d`)
	nonDigitRegex = regexp.MustCompile(`\D`)
	numberRegex   = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// extractDigits strips everything but digits ("12-3456789" -> "123456789").
func extractDigits(s string) string {
	return nonDigitRegex.ReplaceAllString(s, "")
}

// parseExactDigits accepts a reply only when it resolves to exactly n digits.
func parseExactDigits(reply string, n int) (string, bool) {
	digits := extractDigits(reply)
	if len(digits) != n {
		return "", false
	}
	return digits, true
}

// parseMoney handles "$75,000", "75000", "75k", "1.5m". Returns whole
// dollars.
func parseMoney(reply string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(reply))
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "m"):
		mult = 1_000_000
		s = strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "k"):
		mult = 1_000
		s = strings.TrimSuffix(s, "k")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return int(v * mult), true
}

// rangeBucket maps suggested-button text to a representative midpoint.
type rangeBucket struct {
	keywords []string
	value    int
}

// incomeBuckets cover both the suggested buttons and common free-text forms.
// Normalization lowercases, strips "$", ",", spaces, and unifies dashes, so
// "$75K–$150K" matches "75k-150k".
var incomeBuckets = []rangeBucket{
	{keywords: []string{"under75k", "below75k", "lessthan75k", "<75k"}, value: 50_000},
	{keywords: []string{"75k-150k", "75-150"}, value: 112_500},
	{keywords: []string{"150k-250k", "150-250"}, value: 200_000},
	{keywords: []string{"over250k", "250k+", "morethan250k", ">250k"}, value: 300_000},
}

var netWorthBuckets = []rangeBucket{
	{keywords: []string{"under250k", "below250k", "<250k"}, value: 150_000},
	{keywords: []string{"250k-500k", "250-500"}, value: 375_000},
	{keywords: []string{"500k-1m", "500k-1000k"}, value: 750_000},
	{keywords: []string{"over1m", "1m+", ">1m"}, value: 1_500_000},
}

func normalizeRange(reply string) string {
	s := strings.ToLower(strings.TrimSpace(reply))
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "–", "-") // en dash
	s = strings.ReplaceAll(s, "—", "-") // em dash
	s = strings.ReplaceAll(s, "to", "-")
	return s
}

// parseAmount tries the given range buckets first, then an exact figure.
func parseAmount(reply string, buckets []rangeBucket) (int, bool) {
	norm := normalizeRange(reply)
	for _, b := range buckets {
		for _, kw := range b.keywords {
			if strings.Contains(norm, kw) {
				return b.value, true
			}
		}
	}
	return parseMoney(reply)
}

// parseSmallInt extracts a bounded integer ("5 years" -> 5, "100%" -> 100).
func parseSmallInt(reply string, min, max int) (int, bool) {
	m := numberRegex.FindString(reply)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	n := int(v)
	if n < min || n > max {
		return 0, false
	}
	return n, true
}

// entityTypes normalizes the business entity reply. First match wins.
var entityTypes = []struct {
	keywords []string
	label    string
}{
	{keywords: []string{"llc", "limited liability"}, label: "LLC"},
	{keywords: []string{"s-corp", "s corp", "scorp"}, label: "S-Corporation"},
	{keywords: []string{"c-corp", "c corp", "ccorp", "corporation", "corp", "inc"}, label: "Corporation"},
	{keywords: []string{"partnership", "llp"}, label: "Partnership"},
	{keywords: []string{"sole", "proprietor"}, label: "Sole Proprietorship"},
	{keywords: []string{"nonprofit", "non-profit"}, label: "Nonprofit"},
}

func parseEntityType(reply string) (string, bool) {
	s := strings.ToLower(reply)
	for _, e := range entityTypes {
		for _, kw := range e.keywords {
			if strings.Contains(s, kw) {
				return e.label, true
			}
		}
	}
	return "", false
}

// stateCodes maps lowercase state names to USPS codes; codes map to
// themselves via the lookup below.
var stateCodes = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM", "new york": "NY",
	"north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
	"vermont": "VT", "virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY", "district of columbia": "DC",
}

var validStateCode = func() map[string]bool {
	m := make(map[string]bool, len(stateCodes))
	for _, code := range stateCodes {
		m[code] = true
	}
	return m
}()

func parseState(reply string) (string, bool) {
	s := strings.TrimSpace(reply)
	if name, ok := stateCodes[strings.ToLower(s)]; ok {
		return name, true
	}
	code := strings.ToUpper(s)
	if len(code) == 2 && validStateCode[code] {
		return code, true
	}
	// Full names embedded in a sentence ("we incorporated in Delaware").
	lower := strings.ToLower(s)
	for name, code := range stateCodes {
		if strings.Contains(lower, name) {
			return code, true
		}
	}
	return "", false
}

// parseFreeText accepts any reply of at least minLen visible characters.
func parseFreeText(reply string, minLen int) (string, bool) {
	s := strings.TrimSpace(reply)
	if len(s) < minLen {
		return "", false
	}
	return s, true
}

// ==========================
// Field parsers
// ==========================

func parseCompanyName(p *models.ApplicantProfile, reply string) error {
	name, ok := parseFreeText(reply, 2)
	if !ok {
		return stderrors.NewValidationError("companyName", "Please provide your company's legal name.")
	}
	p.BusinessInfo.CompanyName = name
	return nil
}

func parseTaxID(p *models.ApplicantProfile, reply string) error {
	digits, ok := parseExactDigits(reply, 9)
	if !ok {
		return stderrors.NewValidationError("taxId", "A federal tax ID (EIN) has exactly 9 digits, like 12-3456789.")
	}
	p.BusinessInfo.TaxID = digits
	return nil
}

func parseBusinessType(p *models.ApplicantProfile, reply string) error {
	label, ok := parseEntityType(reply)
	if !ok {
		return stderrors.NewUnrecognizedReplyError(string(KindBusinessType))
	}
	p.BusinessInfo.BusinessType = label
	return nil
}

func parseStateOfIncorporation(p *models.ApplicantProfile, reply string) error {
	code, ok := parseState(reply)
	if !ok {
		return stderrors.NewValidationError("stateOfIncorporation", "Please give a US state, like Delaware or DE.")
	}
	p.BusinessInfo.StateOfIncorporation = code
	return nil
}

func parseYearsInBusiness(p *models.ApplicantProfile, reply string) error {
	years, ok := parseSmallInt(reply, 1, 150)
	if !ok {
		return stderrors.NewValidationError("yearsInBusiness", "How many full years has the company been operating? (at least 1)")
	}
	p.BusinessInfo.YearsInBusiness = years
	return nil
}

func parseOwnershipPct(p *models.ApplicantProfile, reply string) error {
	lower := strings.ToLower(reply)
	if strings.Contains(lower, "sole") || strings.Contains(lower, "all of it") {
		p.BusinessInfo.OwnershipPercentage = 100
		return nil
	}
	pct, ok := parseSmallInt(reply, 1, 100)
	if !ok {
		return stderrors.NewValidationError("ownershipPercentage", "Please give your ownership share as a percentage between 1 and 100.")
	}
	p.BusinessInfo.OwnershipPercentage = pct
	return nil
}

func parseRepresentative(p *models.ApplicantProfile, reply string) error {
	name, ok := parseFreeText(reply, 2)
	if !ok || !regexp.MustCompile(`[a-zA-Z]`).MatchString(name) {
		return stderrors.NewValidationError("representative", "Please give the full name of the authorized representative.")
	}
	p.RepresentativeName = name
	return nil
}

func parseGuarantorSSN(p *models.ApplicantProfile, reply string) error {
	digits, ok := parseExactDigits(reply, 9)
	if !ok {
		return stderrors.NewValidationError("ssn", "A Social Security number has exactly 9 digits, like 123-45-6789.")
	}
	p.Guarantor().SSN = digits
	return nil
}

func parseGuarantorIncome(p *models.ApplicantProfile, reply string) error {
	amount, ok := parseAmount(reply, incomeBuckets)
	if !ok || amount == 0 {
		return stderrors.NewUnrecognizedReplyError(string(KindGuarantorIncome))
	}
	p.Guarantor().PersonalIncome = amount
	return nil
}

func parseGuarantorNetWorth(p *models.ApplicantProfile, reply string) error {
	amount, ok := parseAmount(reply, netWorthBuckets)
	if !ok || amount == 0 {
		return stderrors.NewUnrecognizedReplyError(string(KindGuarantorNetWorth))
	}
	p.Guarantor().PersonalNetWorth = amount
	return nil
}

func parseGuarantorAddress(p *models.ApplicantProfile, reply string) error {
	addr, ok := parseFreeText(reply, 5)
	if !ok || !digitRegex.MatchString(addr) {
		return stderrors.NewValidationError("address", "Please give a street address including the number.")
	}
	p.Guarantor().Address = addr
	return nil
}

func parseGuarantorLicense(p *models.ApplicantProfile, reply string) error {
	code, ok := parseState(reply)
	if !ok {
		return stderrors.NewValidationError("driversLicenseState", "Which US state issued the driver's license?")
	}
	p.Guarantor().DriversLicenseState = code
	return nil
}

func parseFullName(p *models.ApplicantProfile, reply string) error {
	name, ok := parseFreeText(reply, 2)
	if !ok {
		return stderrors.NewValidationError("fullName", "Please give your full name.")
	}
	p.RepresentativeName = name
	return nil
}

func parseIncomeBucket(p *models.ApplicantProfile, reply string) error {
	amount, ok := parseAmount(reply, incomeBuckets)
	if !ok || amount == 0 {
		return stderrors.NewUnrecognizedReplyError(string(KindIncomeBucket))
	}
	p.Income = amount
	return nil
}
