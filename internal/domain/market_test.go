package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMarketAssumptions(t *testing.T) {
	ma := DefaultMarketAssumptions()
	require.NoError(t, ma.Validate())

	assert.InDelta(t, 0.10, ma.Stock.Mean, 1e-9)
	assert.InDelta(t, 0.18, ma.Stock.StdDev, 1e-9)
	assert.InDelta(t, 0.03, ma.Inflation.Mean, 1e-9)
	assert.InDelta(t, 0.50, ma.Allocation["stock"], 1e-9)

	// 0.5*10% + 0.4*4% + 0.1*1.5%
	assert.InDelta(t, 0.0675, ma.ExpectedReturn(), 1e-9)
}

func TestScenarioAssumptions(t *testing.T) {
	tests := []struct {
		scenario string
		stock    float64
	}{
		{"conservative", 0.30},
		{"moderate", 0.60},
		{"aggressive", 0.80},
		{"", 0.60},
	}
	for _, tc := range tests {
		ma, err := ScenarioAssumptions(tc.scenario)
		require.NoError(t, err, tc.scenario)
		assert.InDelta(t, tc.stock, ma.Allocation["stock"], 1e-9, tc.scenario)
		require.NoError(t, ma.Validate(), tc.scenario)
	}

	_, err := ScenarioAssumptions("yolo")
	assert.Error(t, err)
}

func TestMarketAssumptionsValidate(t *testing.T) {
	ma := DefaultMarketAssumptions()
	ma.Allocation = map[string]float64{"stock": 0.7}
	assert.Error(t, ma.Validate(), "weights must sum to 1")

	ma.Allocation = map[string]float64{"stock": 1.2, "bond": -0.2}
	assert.Error(t, ma.Validate(), "negative weight")

	ma.Allocation = map[string]float64{"plutonium": 1.0}
	assert.Error(t, ma.Validate(), "unknown asset class")
}

func TestAllocatedAssetsStableOrder(t *testing.T) {
	ma := DefaultMarketAssumptions()
	ma.Allocation = map[string]float64{"cash": 0.2, "stock": 0.5, "bond": 0.3}

	assets := ma.AllocatedAssets()
	require.Len(t, assets, 3)
	assert.Equal(t, "stock", assets[0].Name)
	assert.Equal(t, "bond", assets[1].Name)
	assert.Equal(t, "cash", assets[2].Name)
}

func TestMarketPeriodsTimeline(t *testing.T) {
	base := DefaultMarketAssumptions()
	bear := DefaultMarketAssumptions()
	bear.Stock.Mean = -0.05

	mp := &MarketPeriods{
		Type: PeriodTimeline,
		Periods: []MarketPeriod{
			{Name: "bear", StartYear: 2026, EndYear: 2028, Assumptions: bear},
		},
	}
	require.NoError(t, mp.Validate())

	assert.InDelta(t, base.Stock.Mean, mp.AssumptionsFor(0, 2024, base).Stock.Mean, 1e-9)
	assert.InDelta(t, -0.05, mp.AssumptionsFor(2, 2026, base).Stock.Mean, 1e-9)
	assert.InDelta(t, -0.05, mp.AssumptionsFor(4, 2028, base).Stock.Mean, 1e-9)
	assert.InDelta(t, base.Stock.Mean, mp.AssumptionsFor(5, 2029, base).Stock.Mean, 1e-9)
}

func TestMarketPeriodsCycle(t *testing.T) {
	base := DefaultMarketAssumptions()
	bull := DefaultMarketAssumptions()
	bull.Stock.Mean = 0.15
	bear := DefaultMarketAssumptions()
	bear.Stock.Mean = -0.10

	mp := &MarketPeriods{
		Type:   PeriodCycle,
		Repeat: true,
		Periods: []MarketPeriod{
			{Name: "bull", Duration: 3, Assumptions: bull},
			{Name: "bear", Duration: 2, Assumptions: bear},
		},
	}
	require.NoError(t, mp.Validate())

	expected := []float64{0.15, 0.15, 0.15, -0.10, -0.10, 0.15, 0.15, 0.15, -0.10, -0.10}
	for i, want := range expected {
		assert.InDelta(t, want, mp.AssumptionsFor(i, 2024+i, base).Stock.Mean, 1e-9, "year %d", i)
	}
}

func TestMarketPeriodsCycleNoRepeat(t *testing.T) {
	base := DefaultMarketAssumptions()
	bear := DefaultMarketAssumptions()
	bear.Stock.Mean = -0.10

	mp := &MarketPeriods{
		Type: PeriodCycle,
		Periods: []MarketPeriod{
			{Name: "bear", Duration: 2, Assumptions: bear},
		},
	}
	require.NoError(t, mp.Validate())

	assert.InDelta(t, -0.10, mp.AssumptionsFor(1, 2025, base).Stock.Mean, 1e-9)
	// past the pattern, fall back to base
	assert.InDelta(t, base.Stock.Mean, mp.AssumptionsFor(2, 2026, base).Stock.Mean, 1e-9)
}

func TestMarketPeriodsValidate(t *testing.T) {
	ma := DefaultMarketAssumptions()

	tests := []struct {
		name string
		mp   MarketPeriods
	}{
		{"no periods", MarketPeriods{Type: PeriodTimeline}},
		{"unknown type", MarketPeriods{Type: "sometimes", Periods: []MarketPeriod{{StartYear: 1, EndYear: 2, Assumptions: ma}}}},
		{"timeline missing years", MarketPeriods{Type: PeriodTimeline, Periods: []MarketPeriod{{Assumptions: ma}}}},
		{"timeline inverted", MarketPeriods{Type: PeriodTimeline, Periods: []MarketPeriod{{StartYear: 2030, EndYear: 2026, Assumptions: ma}}}},
		{"cycle zero duration", MarketPeriods{Type: PeriodCycle, Periods: []MarketPeriod{{Assumptions: ma}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.mp.Validate())
		})
	}

	// nil schedule resolves to base without error
	var nilMP *MarketPeriods
	assert.InDelta(t, ma.Stock.Mean, nilMP.AssumptionsFor(0, 2024, ma).Stock.Mean, 1e-9)
}
