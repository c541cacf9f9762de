package domain

import (
	"github.com/shopspring/decimal"
)

// Timeline holds per-year balance percentiles across all simulated paths,
// aligned by index with Years.
type Timeline struct {
	Years []int     `json:"years"`
	P10   []float64 `json:"p10"`
	P50   []float64 `json:"p50"`
	P90   []float64 `json:"p90"`
}

// SimulationResult is the outcome of a Monte Carlo run.
type SimulationResult struct {
	// SuccessRate is the fraction of paths whose portfolio covered
	// spending through the whole horizon.
	SuccessRate float64 `json:"success_rate"`

	StartingPortfolio  float64 `json:"starting_portfolio"`
	MedianFinalBalance float64 `json:"median_final_balance"`

	// Percentiles of the final balance, keyed p10/p25/p50/p75/p90.
	Percentiles map[string]float64 `json:"percentiles"`

	Timeline Timeline `json:"timeline"`

	Years       int   `json:"years"`
	Simulations int   `json:"simulations"`
	Seed        int64 `json:"seed"`
}

// ProjectionYear is one row of the deterministic cash-flow ledger.
type ProjectionYear struct {
	Year       int `json:"year"`
	PrimaryAge int `json:"primary_age"`
	SpouseAge  int `json:"spouse_age,omitempty"`

	EmploymentIncome decimal.Decimal `json:"employment_income"`
	SocialSecurity   decimal.Decimal `json:"social_security"`
	Pension          decimal.Decimal `json:"pension"`
	OtherIncome      decimal.Decimal `json:"other_income"`

	Spending      decimal.Decimal `json:"spending"`
	FederalTax    decimal.Decimal `json:"federal_tax"`
	CapGainsTax   decimal.Decimal `json:"cap_gains_tax"`
	EmploymentTax decimal.Decimal `json:"employment_tax"`
	IRMAA         decimal.Decimal `json:"irmaa"`

	RMD                decimal.Decimal `json:"rmd"`
	TaxableWithdrawal  decimal.Decimal `json:"taxable_withdrawal"`
	DeferredWithdrawal decimal.Decimal `json:"deferred_withdrawal"`
	RothWithdrawal     decimal.Decimal `json:"roth_withdrawal"`
	Contributions      decimal.Decimal `json:"contributions"`
	RealizedGains      decimal.Decimal `json:"realized_gains"`

	TaxableBalance  decimal.Decimal `json:"taxable_balance"`
	DeferredBalance decimal.Decimal `json:"deferred_balance"`
	RothBalance     decimal.Decimal `json:"roth_balance"`
	TotalBalance    decimal.Decimal `json:"total_balance"`
}

// Projection is the deterministic expected-return ledger.
type Projection struct {
	Years        []ProjectionYear `json:"years"`
	FinalBalance decimal.Decimal  `json:"final_balance"`
	Depleted     bool             `json:"depleted"`
	DepletedYear int              `json:"depleted_year,omitempty"`
}

// SSStrategy is the projected outcome of claiming Social Security at a
// given age.
type SSStrategy struct {
	ClaimingAge    int             `json:"claiming_age"`
	MonthlyBenefit decimal.Decimal `json:"monthly_benefit"`
	AnnualBenefit  decimal.Decimal `json:"annual_benefit"`

	// LifetimeBenefit is the present value of benefits through life
	// expectancy, discounted at the Social Security discount rate.
	LifetimeBenefit decimal.Decimal `json:"lifetime_benefit"`
}

// SSAnalysis compares claiming strategies for one person.
type SSAnalysis struct {
	PersonName string       `json:"person_name"`
	Strategies []SSStrategy `json:"strategies"`

	// Recommended is the claiming age with the highest discounted
	// lifetime benefit.
	Recommended int `json:"recommended_age"`

	// BreakEvenAges maps "62_vs_70" style keys to the age at which the
	// later-claiming strategy's cumulative benefits overtake the earlier.
	BreakEvenAges map[string]decimal.Decimal `json:"break_even_ages"`
}

// RothConversionAnalysis is the projected effect of converting part of a
// tax-deferred balance to Roth this year.
type RothConversionAnalysis struct {
	ConversionAmount decimal.Decimal `json:"conversion_amount"`

	// TaxCost is the additional federal tax due in the conversion year.
	TaxCost       decimal.Decimal `json:"tax_cost"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`

	// FutureValueConverted and FutureValueDeferred compare after-tax
	// wealth at the horizon with and without the conversion.
	FutureValueConverted decimal.Decimal `json:"future_value_converted"`
	FutureValueDeferred  decimal.Decimal `json:"future_value_deferred"`
	NetBenefit           decimal.Decimal `json:"net_benefit"`
	HorizonYears         int             `json:"horizon_years"`
	Recommended          bool            `json:"recommended"`
}

// RebalancingMove is one suggested trade to reach a target allocation.
type RebalancingMove struct {
	AssetClass string          `json:"asset_class"`
	Current    decimal.Decimal `json:"current"`
	Target     decimal.Decimal `json:"target"`
	Delta      decimal.Decimal `json:"delta"`
}

// RebalancingPlan is a full set of suggested trades. Deltas sum to zero.
type RebalancingPlan struct {
	TotalValue decimal.Decimal   `json:"total_value"`
	Moves      []RebalancingMove `json:"moves"`

	// Drift is the largest absolute allocation gap before rebalancing.
	Drift     decimal.Decimal `json:"drift"`
	InBalance bool            `json:"in_balance"`
}
