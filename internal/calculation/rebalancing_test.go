package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestRebalancing(t *testing.T) {
	rs := NewRebalancingService()

	current := map[string]decimal.Decimal{
		"stocks": decimal.NewFromInt(700000),
		"bonds":  decimal.NewFromInt(200000),
		"cash":   decimal.NewFromInt(100000),
	}
	target := map[string]decimal.Decimal{
		"stocks": decimal.NewFromFloat(0.6),
		"bonds":  decimal.NewFromFloat(0.3),
		"cash":   decimal.NewFromFloat(0.1),
	}

	plan, err := rs.SuggestRebalancing(current, target)
	require.NoError(t, err)

	assert.True(t, plan.TotalValue.Equal(decimal.NewFromInt(1000000)))
	require.Len(t, plan.Moves, 3)
	assert.False(t, plan.InBalance)

	byClass := make(map[string]decimal.Decimal)
	sum := decimal.Zero
	for _, mv := range plan.Moves {
		byClass[mv.AssetClass] = mv.Delta
		sum = sum.Add(mv.Delta)
	}
	assert.True(t, sum.IsZero(), "deltas must sum to zero, got %s", sum)
	assert.True(t, byClass["stocks"].Equal(decimal.NewFromInt(-100000)), "got %s", byClass["stocks"])
	assert.True(t, byClass["bonds"].Equal(decimal.NewFromInt(100000)), "got %s", byClass["bonds"])
	assert.True(t, byClass["cash"].IsZero())
}

func TestSuggestRebalancingInBalance(t *testing.T) {
	rs := NewRebalancingService()

	current := map[string]decimal.Decimal{
		"stocks": decimal.NewFromInt(600000),
		"bonds":  decimal.NewFromInt(400000),
	}
	target := map[string]decimal.Decimal{
		"stocks": decimal.NewFromFloat(0.6),
		"bonds":  decimal.NewFromFloat(0.4),
	}

	plan, err := rs.SuggestRebalancing(current, target)
	require.NoError(t, err)
	assert.True(t, plan.InBalance)
	assert.True(t, plan.Drift.IsZero())
}

func TestSuggestRebalancingMalformedTarget(t *testing.T) {
	rs := NewRebalancingService()
	current := map[string]decimal.Decimal{"stocks": decimal.NewFromInt(100000)}

	tests := []struct {
		name   string
		target map[string]decimal.Decimal
	}{
		{"empty target", map[string]decimal.Decimal{}},
		{"sums below one", map[string]decimal.Decimal{"stocks": decimal.NewFromFloat(0.5)}},
		{"sums above one", map[string]decimal.Decimal{
			"stocks": decimal.NewFromFloat(0.8),
			"bonds":  decimal.NewFromFloat(0.5),
		}},
		{"negative weight", map[string]decimal.Decimal{
			"stocks": decimal.NewFromFloat(1.5),
			"bonds":  decimal.NewFromFloat(-0.5),
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := rs.SuggestRebalancing(current, tc.target)
			assert.Error(t, err)
		})
	}
}

func TestSuggestRebalancingNewAssetClass(t *testing.T) {
	rs := NewRebalancingService()

	// Target includes a class the portfolio does not hold yet.
	current := map[string]decimal.Decimal{"stocks": decimal.NewFromInt(500000)}
	target := map[string]decimal.Decimal{
		"stocks": decimal.NewFromFloat(0.9),
		"bonds":  decimal.NewFromFloat(0.1),
	}

	plan, err := rs.SuggestRebalancing(current, target)
	require.NoError(t, err)
	require.Len(t, plan.Moves, 2)

	for _, mv := range plan.Moves {
		if mv.AssetClass == "bonds" {
			assert.True(t, mv.Delta.Equal(decimal.NewFromInt(50000)))
		}
	}
}
