package calculation

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/planwell/retirement-engine/internal/domain"
)

// ProjectionParams configures a deterministic cash-flow projection.
type ProjectionParams struct {
	Years         int
	Assumptions   domain.MarketAssumptions
	SpendingModel SpendingModel
	MarketPeriods *domain.MarketPeriods
}

// RunDetailedProjection produces a year-by-year ledger using mean returns
// and mean inflation, with no randomness. It is the human-readable
// counterpart of the Monte Carlo run: same income, withdrawal and tax
// logic, a single expected path.
func (m *RetirementModel) RunDetailedProjection(params ProjectionParams) (*domain.Projection, error) {
	if params.Years <= 0 {
		return nil, fmt.Errorf("years must be positive, got %d", params.Years)
	}
	if err := params.Assumptions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid market assumptions: %w", err)
	}

	taxableD, basisD, deferredD, rothD := m.profile.TotalsByTaxClass()
	taxable := taxableD.InexactFloat64()
	basis := basisD.InexactFloat64()
	deferred := deferredD.InexactFloat64()
	roth := rothD.InexactFloat64()

	status := m.profile.FilingStatus
	stateRate := m.profile.StateTaxRate.InexactFloat64()
	iraContrib := m.profile.AnnualIRAContribution.InexactFloat64()
	hasSpouse := m.profile.Spouse != nil
	deduction := m.tables.StandardDeduction(status)

	proj := &domain.Projection{Years: make([]domain.ProjectionYear, 0, params.Years)}
	infl := 1.0

	for t := 0; t < params.Years; t++ {
		ctx := m.contextForYear(t, params.SpendingModel)
		ma := params.MarketPeriods.AssumptionsFor(t, ctx.calendarYear, params.Assumptions)
		meanReturn := ma.ExpectedReturn()
		meanInflation := ma.Inflation.Mean

		wages := ctx.wages * infl
		empTax := m.tables.EmploymentTax([]float64{wages}, status, stateRate)[0]

		contrib := ctx.contributions * infl
		if !ctx.primaryRetired {
			contrib += iraContrib * infl
		}
		match := ctx.employerMatch * infl
		deferred += contrib + match

		ssN := ctx.ssBenefit * infl
		pensionN := ctx.pension
		otherTaxN := ctx.otherTaxableAt(infl)
		otherNonTaxN := ctx.otherNonTaxableAt(infl)
		spending := ctx.spendingAt(infl)

		rmd := HouseholdRMD(ctx.primaryAge, ctx.spouseAge, deferred, hasSpouse)
		deferred -= rmd

		cash := wages - empTax - contrib - match + ssN + pensionN + otherTaxN + otherNonTaxN + rmd

		gains := 0.0
		deferredTaken := rmd
		taxableTaken := 0.0
		rothTaken := 0.0
		depleted := false

		gap := spending - cash
		if gap > 0 {
			taken, g := withdrawTaxable(&taxable, &basis, gap)
			taxableTaken = taken
			gains += g
			gap -= taken
			if gap > 0 && deferred > 0 {
				dt := math.Min(gap, deferred)
				deferred -= dt
				deferredTaken += dt
				gap -= dt
			}
			if gap > 0 && roth > 0 {
				rt := math.Min(gap, roth)
				roth -= rt
				rothTaken = rt
				gap -= rt
			}
			if gap > 1e-9 {
				depleted = true
			}
		} else {
			taxable -= gap
			basis -= gap
		}

		ordinary := pensionN + otherTaxN + deferredTaken
		taxableSS := m.tables.taxableSocialSecurityScalar(ordinary, ssN, status)
		ordTaxable := math.Max(ordinary+taxableSS-deduction, 0)
		fedTax, _ := m.tables.federalTaxScalar(ordTaxable, status)
		cgTax := m.tables.capitalGainsTaxScalar(gains, ordTaxable, status)

		irmaa := 0.0
		if ctx.onMedicare {
			magi := ordinary + taxableSS + gains
			irmaa = m.tables.IRMAASurcharge([]float64{magi}, status, ctx.bothOnMedicare)[0]
		}

		tax := fedTax + cgTax + irmaa
		if tax > 0 {
			taken, g := withdrawTaxable(&taxable, &basis, tax)
			taxableTaken += taken
			gains += g
			remaining := tax - taken
			if remaining > 0 && deferred > 0 {
				dt := math.Min(remaining, deferred)
				deferred -= dt
				deferredTaken += dt
				remaining -= dt
			}
			if remaining > 0 && roth > 0 {
				rt := math.Min(remaining, roth)
				roth -= rt
				rothTaken += rt
				remaining -= rt
			}
			if remaining > 1e-9 {
				depleted = true
			}
		}

		growth := 1 + meanReturn
		taxable *= growth
		deferred *= growth
		roth *= growth

		total := taxable + deferred + roth
		row := domain.ProjectionYear{
			Year:               ctx.calendarYear,
			PrimaryAge:         ctx.primaryAge,
			SpouseAge:          ctx.spouseAge,
			EmploymentIncome:   money(wages),
			SocialSecurity:     money(ssN),
			Pension:            money(pensionN),
			OtherIncome:        money(otherTaxN + otherNonTaxN),
			Spending:           money(spending),
			FederalTax:         money(fedTax),
			CapGainsTax:        money(cgTax),
			EmploymentTax:      money(empTax),
			IRMAA:              money(irmaa),
			RMD:                money(rmd),
			TaxableWithdrawal:  money(taxableTaken),
			DeferredWithdrawal: money(deferredTaken),
			RothWithdrawal:     money(rothTaken),
			Contributions:      money(contrib + match),
			RealizedGains:      money(gains),
			TaxableBalance:     money(taxable),
			DeferredBalance:    money(deferred),
			RothBalance:        money(roth),
			TotalBalance:       money(total),
		}
		proj.Years = append(proj.Years, row)

		if depleted && !proj.Depleted {
			proj.Depleted = true
			proj.DepletedYear = ctx.calendarYear
		}
		infl *= 1 + meanInflation
	}

	proj.FinalBalance = proj.Years[len(proj.Years)-1].TotalBalance
	return proj, nil
}

// money converts an engine float back to ledger precision.
func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
