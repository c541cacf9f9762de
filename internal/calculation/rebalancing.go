package calculation

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/planwell/retirement-engine/internal/domain"
)

// RebalancingService computes the trades needed to move a portfolio to a
// target allocation. It is stateless; one instance can serve any number of
// calls.
type RebalancingService struct {
	// DriftTolerance is the largest allocation gap considered "in
	// balance". Default 1%.
	DriftTolerance decimal.Decimal
}

// NewRebalancingService returns a service with the default 1% tolerance.
func NewRebalancingService() *RebalancingService {
	return &RebalancingService{DriftTolerance: decimal.NewFromFloat(0.01)}
}

// allocationTolerance bounds how far target weights may stray from
// summing to exactly 1 before the target is rejected.
var allocationTolerance = decimal.NewFromFloat(0.01)

// SuggestRebalancing compares current per-class values against a target
// allocation (fractions summing to 1) and returns the dollar move for each
// class. Positive deltas are buys, negative are sells; deltas sum to zero.
func (rs *RebalancingService) SuggestRebalancing(current map[string]decimal.Decimal, target map[string]decimal.Decimal) (*domain.RebalancingPlan, error) {
	if len(target) == 0 {
		return nil, fmt.Errorf("target allocation is empty")
	}

	targetSum := decimal.Zero
	for class, weight := range target {
		if weight.IsNegative() {
			return nil, fmt.Errorf("target weight for %s cannot be negative", class)
		}
		targetSum = targetSum.Add(weight)
	}
	if targetSum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(allocationTolerance) {
		return nil, fmt.Errorf("target allocation sums to %s, expected 1.0", targetSum.String())
	}

	total := decimal.Zero
	for _, value := range current {
		if value.IsNegative() {
			return nil, fmt.Errorf("current values cannot be negative")
		}
		total = total.Add(value)
	}

	// Union of classes, sorted for stable output.
	classSet := make(map[string]struct{}, len(current)+len(target))
	for class := range current {
		classSet[class] = struct{}{}
	}
	for class := range target {
		classSet[class] = struct{}{}
	}
	classes := make([]string, 0, len(classSet))
	for class := range classSet {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	plan := &domain.RebalancingPlan{TotalValue: total.Round(2)}
	maxDrift := decimal.Zero

	for _, class := range classes {
		currentValue := current[class]
		targetValue := total.Mul(target[class])
		delta := targetValue.Sub(currentValue)

		drift := decimal.Zero
		if total.IsPositive() {
			drift = delta.Abs().Div(total)
		}
		if drift.GreaterThan(maxDrift) {
			maxDrift = drift
		}

		plan.Moves = append(plan.Moves, domain.RebalancingMove{
			AssetClass: class,
			Current:    currentValue.Round(2),
			Target:     targetValue.Round(2),
			Delta:      delta.Round(2),
		})
	}

	plan.Drift = maxDrift.Round(4)
	plan.InBalance = maxDrift.LessThanOrEqual(rs.DriftTolerance)
	return plan, nil
}
