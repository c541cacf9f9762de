package domain

import (
	"fmt"
	"math"
	"strings"
)

// AssetAssumption is the expected annual return and volatility for one
// asset class, as fractional rates.
type AssetAssumption struct {
	Mean   float64 `yaml:"mean" json:"mean"`
	StdDev float64 `yaml:"std_dev" json:"std_dev"`
}

// MarketAssumptions describes the return model for a simulation: per-asset
// return distributions, the portfolio allocation across them, and the
// inflation distribution. Rates are fractional (0.10 means 10%).
type MarketAssumptions struct {
	Stock  AssetAssumption `yaml:"stock" json:"stock"`
	Bond   AssetAssumption `yaml:"bond" json:"bond"`
	Cash   AssetAssumption `yaml:"cash" json:"cash"`
	REIT   AssetAssumption `yaml:"reit" json:"reit"`
	Gold   AssetAssumption `yaml:"gold" json:"gold"`
	Crypto AssetAssumption `yaml:"crypto" json:"crypto"`

	// Allocation maps asset class name to portfolio weight. Weights must
	// sum to 1.
	Allocation map[string]float64 `yaml:"allocation" json:"allocation"`

	Inflation AssetAssumption `yaml:"inflation" json:"inflation"`

	// SSDiscountRate discounts future Social Security benefits in
	// break-even comparisons.
	SSDiscountRate float64 `yaml:"ss_discount_rate" json:"ss_discount_rate"`
}

// DefaultMarketAssumptions returns the standard long-run assumptions: a
// 50/40/10 stock/bond/cash portfolio with 3% inflation.
func DefaultMarketAssumptions() MarketAssumptions {
	return MarketAssumptions{
		Stock:  AssetAssumption{Mean: 0.10, StdDev: 0.18},
		Bond:   AssetAssumption{Mean: 0.04, StdDev: 0.06},
		Cash:   AssetAssumption{Mean: 0.015, StdDev: 0.005},
		REIT:   AssetAssumption{Mean: 0.08, StdDev: 0.15},
		Gold:   AssetAssumption{Mean: 0.04, StdDev: 0.15},
		Crypto: AssetAssumption{Mean: 0.20, StdDev: 0.60},
		Allocation: map[string]float64{
			"stock": 0.50,
			"bond":  0.40,
			"cash":  0.10,
		},
		Inflation:      AssetAssumption{Mean: 0.03, StdDev: 0.01},
		SSDiscountRate: 0.03,
	}
}

// ScenarioAssumptions returns a named allocation preset layered over the
// default assumptions. Recognized scenarios are conservative (30% stock),
// moderate (60%) and aggressive (80%).
func ScenarioAssumptions(scenario string) (MarketAssumptions, error) {
	ma := DefaultMarketAssumptions()
	var stock float64
	switch strings.ToLower(strings.TrimSpace(scenario)) {
	case "conservative":
		stock = 0.30
	case "", "moderate":
		stock = 0.60
	case "aggressive":
		stock = 0.80
	default:
		return ma, fmt.Errorf("unknown scenario %q", scenario)
	}
	bond := (1 - stock) * 0.75
	cash := 1 - stock - bond
	ma.Allocation = map[string]float64{
		"stock": stock,
		"bond":  bond,
		"cash":  cash,
	}
	return ma, nil
}

// assetByName resolves an allocation key to its assumption.
func (ma *MarketAssumptions) assetByName(name string) (AssetAssumption, bool) {
	switch strings.ToLower(name) {
	case "stock", "stocks", "equity":
		return ma.Stock, true
	case "bond", "bonds", "fixed_income":
		return ma.Bond, true
	case "cash":
		return ma.Cash, true
	case "reit", "real_estate":
		return ma.REIT, true
	case "gold":
		return ma.Gold, true
	case "crypto":
		return ma.Crypto, true
	default:
		return AssetAssumption{}, false
	}
}

// AllocatedAsset pairs one allocation weight with its return assumption.
type AllocatedAsset struct {
	Name       string
	Weight     float64
	Assumption AssetAssumption
}

var allocationOrder = []string{"stock", "bond", "cash", "reit", "gold", "crypto"}

// AllocatedAssets resolves the allocation map into an ordered slice so the
// simulator draws returns for the same asset in the same order every run.
func (ma *MarketAssumptions) AllocatedAssets() []AllocatedAsset {
	var out []AllocatedAsset
	for _, name := range allocationOrder {
		weight, ok := ma.Allocation[name]
		if !ok || weight == 0 {
			continue
		}
		assumption, ok := ma.assetByName(name)
		if !ok {
			continue
		}
		out = append(out, AllocatedAsset{Name: name, Weight: weight, Assumption: assumption})
	}
	return out
}

// ExpectedReturn returns the allocation-weighted mean portfolio return.
func (ma *MarketAssumptions) ExpectedReturn() float64 {
	total := 0.0
	for _, a := range ma.AllocatedAssets() {
		total += a.Weight * a.Assumption.Mean
	}
	return total
}

// Validate checks the allocation sums to 1 within rounding tolerance and
// that no weight is negative.
func (ma *MarketAssumptions) Validate() error {
	sum := 0.0
	for name, weight := range ma.Allocation {
		if weight < 0 {
			return fmt.Errorf("allocation %s cannot be negative", name)
		}
		if _, ok := ma.assetByName(name); !ok {
			return fmt.Errorf("unknown asset class %q in allocation", name)
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("allocation weights sum to %.4f, expected 1.0", sum)
	}
	if ma.Inflation.StdDev < 0 {
		return fmt.Errorf("inflation volatility cannot be negative")
	}
	return nil
}

// MarketPeriodType selects how a period schedule maps to simulated years.
type MarketPeriodType string

const (
	// PeriodTimeline periods are anchored to calendar years.
	PeriodTimeline MarketPeriodType = "timeline"
	// PeriodCycle periods are a repeating pattern of durations.
	PeriodCycle MarketPeriodType = "cycle"
)

// MarketPeriod overrides the base assumptions for a span of the projection.
// Timeline periods use StartYear/EndYear (calendar years); cycle periods
// use Duration (years).
type MarketPeriod struct {
	Name        string            `yaml:"name,omitempty" json:"name,omitempty"`
	StartYear   int               `yaml:"start_year,omitempty" json:"start_year,omitempty"`
	EndYear     int               `yaml:"end_year,omitempty" json:"end_year,omitempty"`
	Duration    int               `yaml:"duration,omitempty" json:"duration,omitempty"`
	Assumptions MarketAssumptions `yaml:"assumptions" json:"assumptions"`
}

// MarketPeriods is an optional schedule of assumption overrides, used to
// model regimes like a decade of low returns followed by recovery.
type MarketPeriods struct {
	Type    MarketPeriodType `yaml:"type" json:"type"`
	Periods []MarketPeriod   `yaml:"periods" json:"periods"`

	// Repeat makes a cycle pattern wrap around past its total duration.
	Repeat bool `yaml:"repeat,omitempty" json:"repeat,omitempty"`
}

// Validate checks the schedule shape matches its type.
func (mp *MarketPeriods) Validate() error {
	if len(mp.Periods) == 0 {
		return fmt.Errorf("market periods schedule has no periods")
	}
	switch mp.Type {
	case PeriodTimeline:
		for i, p := range mp.Periods {
			if p.StartYear == 0 || p.EndYear == 0 {
				return fmt.Errorf("timeline period %d requires start_year and end_year", i)
			}
			if p.EndYear < p.StartYear {
				return fmt.Errorf("timeline period %d ends before it starts", i)
			}
		}
	case PeriodCycle:
		for i, p := range mp.Periods {
			if p.Duration <= 0 {
				return fmt.Errorf("cycle period %d requires a positive duration", i)
			}
		}
	default:
		return fmt.Errorf("unknown market periods type %q", mp.Type)
	}
	for i := range mp.Periods {
		if err := mp.Periods[i].Assumptions.Validate(); err != nil {
			return fmt.Errorf("period %d: %w", i, err)
		}
	}
	return nil
}

// AssumptionsFor resolves the assumptions for a simulated year. The year
// index is zero-based from the start of the projection; calendarYear is the
// corresponding calendar year for timeline schedules. Returns base when no
// period covers the year.
func (mp *MarketPeriods) AssumptionsFor(yearIndex, calendarYear int, base MarketAssumptions) MarketAssumptions {
	if mp == nil {
		return base
	}
	switch mp.Type {
	case PeriodTimeline:
		for i := range mp.Periods {
			p := &mp.Periods[i]
			if calendarYear >= p.StartYear && calendarYear <= p.EndYear {
				return p.Assumptions
			}
		}
	case PeriodCycle:
		total := 0
		for i := range mp.Periods {
			total += mp.Periods[i].Duration
		}
		if total == 0 {
			return base
		}
		offset := yearIndex
		if offset >= total {
			if !mp.Repeat {
				return base
			}
			offset %= total
		}
		for i := range mp.Periods {
			if offset < mp.Periods[i].Duration {
				return mp.Periods[i].Assumptions
			}
			offset -= mp.Periods[i].Duration
		}
	}
	return base
}
