package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Check verifies that Stats agrees with Findings. The engine owns the risk
// thresholds and the risk score formula, so only sums and signs are checked.
func (r Response) Check() error {
	var problems []string
	s := r.Stats

	if s.TotalFindings != len(r.Findings) {
		problems = append(problems, fmt.Sprintf("stats.total_findings=%d but %d findings", s.TotalFindings, len(r.Findings)))
	}
	if sum := lo.Sum(lo.Values(s.ByCategory)); sum != s.TotalFindings {
		problems = append(problems, fmt.Sprintf("stats.by_category sums to %d, want %d", sum, s.TotalFindings))
	}
	negative := lo.Keys(lo.PickBy(s.ByCategory, func(_ string, n int) bool { return n < 0 }))
	if len(negative) > 0 {
		sort.Strings(negative)
		problems = append(problems, fmt.Sprintf("stats.by_category has negative counts for %s", strings.Join(negative, ",")))
	}
	if sum := s.HighRiskCount + s.MediumRiskCount + s.LowRiskCount; sum != s.TotalFindings {
		problems = append(problems, fmt.Sprintf("risk buckets sum to %d, want %d", sum, s.TotalFindings))
	}
	if r.RiskScore < 0 {
		problems = append(problems, fmt.Sprintf("risk_score=%d is negative", r.RiskScore))
	}
	for i, f := range r.Findings {
		if f.Start < 0 || f.End < f.Start {
			problems = append(problems, fmt.Sprintf("findings[%d] has span [%d,%d)", i, f.Start, f.End))
		}
		if f.Confidence < 0 || f.Confidence > 1 {
			problems = append(problems, fmt.Sprintf("findings[%d].confidence=%g outside [0,1]", i, f.Confidence))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("inconsistent response: %s", strings.Join(problems, "; "))
	}
	return nil
}

// CheckSpans verifies every finding lies inside text. Offsets are compared
// against the byte length, which bounds both byte and rune offsets.
func (r Response) CheckSpans(text string) error {
	for i, f := range r.Findings {
		if f.Start < 0 || f.Start > f.End || f.End > len(text) {
			return fmt.Errorf("findings[%d] span [%d,%d) outside text of length %d", i, f.Start, f.End, len(text))
		}
	}
	return nil
}
