package calculation

import (
	"math"

	"github.com/planwell/retirement-engine/internal/domain"
)

// The functions in this file run inside the simulation hot path. Each takes
// same-length slices with one element per simulated path and returns slices
// of identical length. They are pure: no state, no writes to their inputs.

// FederalTax computes progressive federal income tax on ordinary taxable
// income, along with the marginal rate of the bracket holding the top
// dollar. Negative incomes floor at zero tax with the bottom bracket's
// marginal rate.
func (tt *TaxTables) FederalTax(ordinary []float64, status domain.FilingStatus) (tax, marginal []float64) {
	brackets := tt.brackets(status)
	tax = make([]float64, len(ordinary))
	marginal = make([]float64, len(ordinary))

	for i, income := range ordinary {
		if income <= 0 {
			marginal[i] = brackets[0].rate
			continue
		}
		total := 0.0
		rate := brackets[0].rate
		for _, b := range brackets {
			if income <= b.min {
				break
			}
			slice := math.Min(income, b.max) - b.min
			total += slice * b.rate
			rate = b.rate
		}
		tax[i] = total
		marginal[i] = rate
	}
	return tax, marginal
}

// TaxableSocialSecurity computes the portion of Social Security benefits
// included in taxable income under the provisional income rules.
// Provisional income is other income plus half the benefit. Below the
// first threshold nothing is taxable, between the thresholds up to 50%
// phases in, and above the second threshold up to 85% phases in. The
// result never exceeds 85% of the benefit.
func (tt *TaxTables) TaxableSocialSecurity(otherIncome, ssBenefit []float64, status domain.FilingStatus) []float64 {
	t1, t2 := tt.ssThresholds(status)
	out := make([]float64, len(otherIncome))

	for i := range otherIncome {
		benefit := ssBenefit[i]
		if benefit <= 0 {
			continue
		}
		provisional := otherIncome[i] + 0.5*benefit
		switch {
		case provisional <= t1:
			// fully excluded
		case provisional <= t2:
			out[i] = math.Min(0.5*(provisional-t1), 0.5*benefit)
		default:
			tier1 := math.Min(0.5*(t2-t1), 0.5*benefit)
			out[i] = math.Min(0.85*benefit, 0.85*(provisional-t2)+tier1)
		}
	}
	return out
}

// CapitalGainsTax computes long-term capital gains tax with ordinary-income
// stacking: gains fill the 0/15/20% brackets starting from the top of
// ordinary taxable income, so the same gain is taxed more heavily when it
// sits on top of more ordinary income.
func (tt *TaxTables) CapitalGainsTax(gains, ordinary []float64, status domain.FilingStatus) []float64 {
	brackets := tt.capGainsBrackets(status)
	out := make([]float64, len(gains))

	for i := range gains {
		gain := gains[i]
		if gain <= 0 {
			continue
		}
		base := math.Max(ordinary[i], 0)
		top := base + gain
		total := 0.0
		for _, b := range brackets {
			lo := math.Max(base, b.min)
			hi := math.Min(top, b.max)
			if hi > lo {
				total += (hi - lo) * b.rate
			}
		}
		out[i] = total
	}
	return out
}

// IRMAASurcharge computes the annual Medicare premium surcharge for each
// path's MAGI. The per-person tier amount is doubled when both spouses are
// enrolled in Medicare. MAGI below the lowest tier pays no surcharge.
func (tt *TaxTables) IRMAASurcharge(magi []float64, status domain.FilingStatus, bothOnMedicare bool) []float64 {
	out := make([]float64, len(magi))
	multiplier := 1.0
	if bothOnMedicare {
		multiplier = 2.0
	}

	for i, income := range magi {
		surcharge := 0.0
		for _, tier := range tt.irmaaTiers {
			threshold := tier.thresholdJoint
			if status == domain.FilingSingle {
				threshold = tier.thresholdSingle
			}
			if income < threshold {
				break
			}
			surcharge = tier.surcharge
		}
		out[i] = surcharge * multiplier
	}
	return out
}

// EmploymentTax computes total tax on wages: FICA (Social Security on
// wages up to the wage base plus uncapped Medicare), progressive federal
// tax after the standard deduction, and a flat state rate.
func (tt *TaxTables) EmploymentTax(wages []float64, status domain.FilingStatus, stateRate float64) []float64 {
	deduction := tt.StandardDeduction(status)
	taxableWages := make([]float64, len(wages))
	for i, w := range wages {
		taxableWages[i] = math.Max(w-deduction, 0)
	}
	federal, _ := tt.FederalTax(taxableWages, status)

	out := make([]float64, len(wages))
	for i, w := range wages {
		if w <= 0 {
			continue
		}
		ssWages := math.Min(w, tt.ssWageBase)
		fica := ssWages*tt.ssTaxRate + w*tt.medicareTaxRate
		out[i] = fica + federal[i] + w*stateRate
	}
	return out
}

// Scalar wrappers for the strategy analyzers, which price one household
// rather than an array of paths.

func (tt *TaxTables) federalTaxScalar(ordinary float64, status domain.FilingStatus) (float64, float64) {
	tax, marginal := tt.FederalTax([]float64{ordinary}, status)
	return tax[0], marginal[0]
}

func (tt *TaxTables) taxableSocialSecurityScalar(otherIncome, ssBenefit float64, status domain.FilingStatus) float64 {
	return tt.TaxableSocialSecurity([]float64{otherIncome}, []float64{ssBenefit}, status)[0]
}

func (tt *TaxTables) capitalGainsTaxScalar(gains, ordinary float64, status domain.FilingStatus) float64 {
	return tt.CapitalGainsTax([]float64{gains}, []float64{ordinary}, status)[0]
}
