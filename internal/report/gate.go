package report

import (
	"fmt"

	"github.com/prompt-sanitizer/host/internal/types"
)

// FailOnLevels are the accepted --fail-on values.
var FailOnLevels = []string{"high", "medium", "low", "none"}

// ShouldFail reports whether the engine counted any finding at or above the
// failOn bucket. It reads the engine's own bucket counts and never re-derives
// them from the findings.
func ShouldFail(stats types.Stats, failOn string) (bool, error) {
	switch failOn {
	case "none":
		return false, nil
	case "low":
		return stats.HighRiskCount+stats.MediumRiskCount+stats.LowRiskCount > 0, nil
	case "medium", "":
		return stats.HighRiskCount+stats.MediumRiskCount > 0, nil
	case "high":
		return stats.HighRiskCount > 0, nil
	}
	return false, fmt.Errorf("invalid fail-on level %q (want one of %v)", failOn, FailOnLevels)
}
