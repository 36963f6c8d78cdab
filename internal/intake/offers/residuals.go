// internal/intake/offers/residuals.go
package offers

import (
	"fmt"
	"math"
	"strings"

	"finance-intake/internal/models"
)

// residualRule maps an item-name keyword (case-insensitive) to a residual
// percentage and a normalized category label. First match wins.
type residualRule struct {
	keywords []string
	pct      float64
	label    string
}

var residualRules = []residualRule{
	{keywords: []string{"bike"}, pct: 0.15, label: "e-bike"},
	{keywords: []string{"macbook", "laptop"}, pct: 0.20, label: "laptop"},
	{keywords: []string{"robot"}, pct: 0.12, label: "robotics"},
}

const defaultResidualPct = 0.10

func residualFor(name string) (float64, string) {
	lower := strings.ToLower(name)
	for _, r := range residualRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.pct, r.label
			}
		}
	}
	return defaultResidualPct, "equipment"
}

// SimulateResiduals estimates the end-of-term value of every item. The
// function is idempotent and side-effect free: identical inputs yield
// identical reports.
func (e *Engine) SimulateResiduals(items []models.OrderItem, termMonths int) models.ResidualReport {
	report := models.ResidualReport{
		Residuals: make([]models.ResidualEstimate, 0, len(items)),
	}

	var summaryParts []string
	for _, it := range items {
		pct, label := residualFor(it.Name)
		value := int(math.Round(float64(it.Price) * pct))
		report.Residuals = append(report.Residuals, models.ResidualEstimate{
			ItemName:      it.Name,
			Price:         it.Price,
			ResidualPct:   pct,
			ResidualValue: value,
		})
		report.CombinedResidual += value

		// Summary names at most the first two items.
		if len(summaryParts) < 2 {
			summaryParts = append(summaryParts, fmt.Sprintf("%s %.0f%% ($%d)", label, pct*100, value))
		}
	}

	if len(summaryParts) > 0 {
		report.SummaryText = fmt.Sprintf(
			"Estimated value after %d months: %s",
			termMonths, strings.Join(summaryParts, ", "),
		)
	}
	return report
}
