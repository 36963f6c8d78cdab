// internal/intake/documents/rules.go
package documents

import (
	"fmt"
	"math/rand"
	"strings"
)

// TypeRule is the simulated inspection policy for one document type. The
// strict first-attempt check passes only when the filename contains one of
// the keywords; extracted-field names per type are stable, values are
// synthetic.
type TypeRule struct {
	DocID    string
	Label    string
	Keywords []string
	Extract  func(rng *rand.Rand) map[string]string
}

// DocumentTypes is the fixed registry of uploadable document slots.
var DocumentTypes = map[string]TypeRule{
	"businessLicense": {
		DocID:    "businessLicense",
		Label:    "Business license",
		Keywords: []string{"license", "permit", "registration"},
		Extract: func(rng *rand.Rand) map[string]string {
			return map[string]string{
				"licenseNumber":     fmt.Sprintf("BL-%07d", rng.Intn(10_000_000)),
				"issuingState":      pick(rng, "DE", "CA", "NY", "TX", "FL"),
				"incorporationDate": fmt.Sprintf("20%02d-%02d-%02d", 10+rng.Intn(14), 1+rng.Intn(12), 1+rng.Intn(28)),
			}
		},
	},
	"taxReturn": {
		DocID:    "taxReturn",
		Label:    "Business tax return",
		Keywords: []string{"tax", "return", "irs", "1120"},
		Extract: func(rng *rand.Rand) map[string]string {
			return map[string]string{
				"taxYear":         fmt.Sprintf("%d", 2022+rng.Intn(3)),
				"reportedRevenue": fmt.Sprintf("$%d", 100_000+rng.Intn(900_000)),
				"filingStatus":    "filed",
			}
		},
	},
	"bankStatement": {
		DocID:    "bankStatement",
		Label:    "Bank statement",
		Keywords: []string{"bank", "statement", "account"},
		Extract: func(rng *rand.Rand) map[string]string {
			return map[string]string{
				"accountNumberMasked": fmt.Sprintf("****%04d", rng.Intn(10_000)),
				"averageBalance":      fmt.Sprintf("$%d", 10_000+rng.Intn(200_000)),
				"institution":         pick(rng, "First National", "Coastal Trust", "Union Savings"),
			}
		},
	},
	"driversLicense": {
		DocID:    "driversLicense",
		Label:    "Driver's license",
		Keywords: []string{"license", "id", "dl"},
		Extract: func(rng *rand.Rand) map[string]string {
			return map[string]string{
				"licenseNumber":  fmt.Sprintf("D%08d", rng.Intn(100_000_000)),
				"expirationDate": fmt.Sprintf("20%02d-%02d-01", 26+rng.Intn(6), 1+rng.Intn(12)),
				"state":          pick(rng, "CA", "NY", "TX", "WA", "IL"),
			}
		},
	},
}

func pick(rng *rand.Rand, options ...string) string {
	return options[rng.Intn(len(options))]
}

// matchesKeywords reports whether the filename satisfies the strict check.
func (r TypeRule) matchesKeywords(filename string) bool {
	lower := strings.ToLower(filename)
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
