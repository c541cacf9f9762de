package calculation

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/planwell/retirement-engine/internal/domain"
)

// claimAges are the Social Security claiming strategies compared by the
// analyzer: earliest, full retirement age (for post-1960 births), and
// maximum delayed credit.
var claimAges = []int{62, 67, 70}

// AnalyzeSocialSecurityStrategies compares claiming ages for every
// household member with a benefit, reporting discounted lifetime benefits
// and pairwise break-even ages.
func (m *RetirementModel) AnalyzeSocialSecurityStrategies(assumptions domain.MarketAssumptions) []domain.SSAnalysis {
	discount := assumptions.SSDiscountRate

	var analyses []domain.SSAnalysis
	for _, p := range m.profile.People() {
		if !p.SSMonthlyBenefit.IsPositive() {
			continue
		}
		analysis := domain.SSAnalysis{
			PersonName:    p.Name,
			BreakEvenAges: make(map[string]decimal.Decimal),
		}

		currentAge := p.Age(m.start)
		lifeExpectancy := p.LifeExpectancy()
		best := decimal.NewFromInt(-1)

		annualByAge := make(map[int]float64, len(claimAges))
		for _, claimAge := range claimAges {
			annual := m.adjustedAnnualBenefit(p, claimAge)
			annualByAge[claimAge] = annual

			lifetime := 0.0
			for age := claimAge; age < lifeExpectancy; age++ {
				yearsOut := age - currentAge
				if yearsOut < 0 {
					yearsOut = 0
				}
				lifetime += annual / math.Pow(1+discount, float64(yearsOut))
			}

			lifetimeD := money(lifetime)
			analysis.Strategies = append(analysis.Strategies, domain.SSStrategy{
				ClaimingAge:     claimAge,
				MonthlyBenefit:  money(annual / 12),
				AnnualBenefit:   money(annual),
				LifetimeBenefit: lifetimeD,
			})
			if lifetimeD.GreaterThan(best) {
				best = lifetimeD
				analysis.Recommended = claimAge
			}
		}

		for i := 0; i < len(claimAges); i++ {
			for k := i + 1; k < len(claimAges); k++ {
				early, late := claimAges[i], claimAges[k]
				key := fmt.Sprintf("%d_vs_%d", early, late)
				if age, ok := breakEvenAge(early, late, annualByAge[early], annualByAge[late], lifeExpectancy); ok {
					analysis.BreakEvenAges[key] = decimal.NewFromFloat(age).Round(1)
				}
			}
		}

		analyses = append(analyses, analysis)
	}
	return analyses
}

// breakEvenAge finds the age at which cumulative benefits from claiming
// late overtake cumulative benefits from claiming early, interpolating
// within the crossover year. Returns false when no crossover occurs before
// the horizon.
func breakEvenAge(earlyAge, lateAge int, earlyAnnual, lateAnnual float64, horizonAge int) (float64, bool) {
	if lateAnnual <= earlyAnnual {
		return 0, false
	}
	cumEarly, cumLate := 0.0, 0.0
	prevDiff := 0.0
	for age := earlyAge; age <= horizonAge+20; age++ {
		cumEarly += earlyAnnual
		if age >= lateAge {
			cumLate += lateAnnual
		}
		diff := cumLate - cumEarly
		if diff >= 0 {
			// Interpolate within the year the gap closes.
			if diff == 0 || age == earlyAge {
				return float64(age), true
			}
			span := diff - prevDiff
			frac := 0.0
			if span > 0 {
				frac = -prevDiff / span
			}
			return float64(age-1) + frac, true
		}
		prevDiff = diff
	}
	return 0, false
}

// AnalyzeRothConversion prices converting part of the tax-deferred balance
// to Roth this year: the immediate tax cost, and projected after-tax
// wealth at the planning horizon with and without the conversion.
func (m *RetirementModel) AnalyzeRothConversion(amount decimal.Decimal, assumptions domain.MarketAssumptions) (*domain.RothConversionAnalysis, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("conversion amount must be positive")
	}
	_, _, deferredD, _ := m.profile.TotalsByTaxClass()
	if amount.GreaterThan(deferredD) {
		return nil, fmt.Errorf("conversion amount %s exceeds tax-deferred balance %s",
			amount.StringFixed(2), deferredD.StringFixed(2))
	}

	status := m.profile.FilingStatus
	deduction := m.tables.StandardDeduction(status)
	conv := amount.InexactFloat64()

	// The conversion stacks on top of this year's ordinary income.
	ctx := m.contextForYear(0, SpendingConstantReal)
	baseOrdinary := ctx.wages + ctx.pension + ctx.otherTaxableAt(1) +
		m.tables.taxableSocialSecurityScalar(ctx.pension+ctx.otherTaxableAt(1), ctx.ssBenefit, status)

	baseTaxable := math.Max(baseOrdinary-deduction, 0)
	withTaxable := math.Max(baseOrdinary+conv-deduction, 0)
	baseTax, _ := m.tables.federalTaxScalar(baseTaxable, status)
	withTax, _ := m.tables.federalTaxScalar(withTaxable, status)
	taxCost := withTax - baseTax
	effectiveRate := 0.0
	if conv > 0 {
		taxCost = math.Max(taxCost, 0)
		effectiveRate = taxCost / conv
	}

	horizon := m.DefaultHorizonYears()
	growth := math.Pow(1+assumptions.ExpectedReturn(), float64(horizon))

	// Without the conversion the dollars stay deferred and come out as
	// ordinary income, taxed at the projected retirement marginal rate.
	retirementMarginal := m.retirementMarginalRate(conv)
	futureDeferred := conv * growth * (1 - retirementMarginal)

	// With the conversion the dollars grow tax free, but the tax paid
	// today forfeits its own growth.
	futureConverted := conv*growth - taxCost*growth

	net := futureConverted - futureDeferred
	return &domain.RothConversionAnalysis{
		ConversionAmount:     amount.Round(2),
		TaxCost:              money(taxCost),
		EffectiveRate:        decimal.NewFromFloat(effectiveRate).Round(4),
		FutureValueConverted: money(futureConverted),
		FutureValueDeferred:  money(futureDeferred),
		NetBenefit:           money(net),
		HorizonYears:         horizon,
		Recommended:          net > 0,
	}, nil
}

// retirementMarginalRate estimates the marginal federal rate the household
// will face on tax-deferred withdrawals once fully retired, using the
// first year the primary person is retired plus an RMD-sized draw.
func (m *RetirementModel) retirementMarginalRate(extraDraw float64) float64 {
	yearsToRetirement := 0
	horizon := m.DefaultHorizonYears()
	for t := 0; t < horizon; t++ {
		ctx := m.contextForYear(t, SpendingConstantReal)
		if ctx.primaryRetired {
			yearsToRetirement = t
			break
		}
	}

	ctx := m.contextForYear(yearsToRetirement, SpendingConstantReal)
	status := m.profile.FilingStatus

	rmdAge := ctx.primaryAge
	if rmdAge < rmdStartAge {
		rmdAge = rmdStartAge
	}
	draw := extraDraw / RMDDivisor(rmdAge)

	ordinary := ctx.pension + ctx.otherTaxableAt(1) + draw +
		m.tables.taxableSocialSecurityScalar(ctx.pension+ctx.otherTaxableAt(1)+draw, ctx.ssBenefit, status)
	taxable := math.Max(ordinary-m.tables.StandardDeduction(status), 0)
	_, marginal := m.tables.federalTaxScalar(taxable, status)
	return marginal
}
