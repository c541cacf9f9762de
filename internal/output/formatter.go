package output

import (
	"fmt"
	"strings"

	"github.com/planwell/retirement-engine/internal/domain"
)

// Report bundles whichever analysis results a command produced. Sections
// left nil are skipped by formatters.
type Report struct {
	Simulation  *domain.SimulationResult       `json:"simulation,omitempty"`
	Projection  *domain.Projection             `json:"projection,omitempty"`
	SSAnalyses  []domain.SSAnalysis            `json:"social_security,omitempty"`
	Roth        *domain.RothConversionAnalysis `json:"roth_conversion,omitempty"`
	Rebalancing *domain.RebalancingPlan        `json:"rebalancing,omitempty"`
}

// Formatter defines a pluggable output formatter that returns a byte
// slice. Implementations should be pure (no side effects besides
// deterministic formatting).
type Formatter interface {
	Format(report *Report) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
}

// GetFormatter resolves a format name to a formatter.
func GetFormatter(name string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "console":
		return ConsoleFormatter{}, nil
	case "json":
		return JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want console or json)", name)
	}
}
