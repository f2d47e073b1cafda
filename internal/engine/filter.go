package engine

import "github.com/xab-mack/devstatus/internal/model"

// filterBySeverity removes findings below the threshold
func filterBySeverity(findings []model.SecurityFinding, threshold model.Severity) []model.SecurityFinding {
	out := []model.SecurityFinding{}
	for _, f := range findings {
		if model.SeverityGTE(f.Impact, threshold) {
			out = append(out, f)
		}
	}
	return out
}
