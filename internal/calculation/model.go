package calculation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planwell/retirement-engine/internal/domain"
	"github.com/planwell/retirement-engine/pkg/dateutil"
)

// SpendingModel selects how annual spending evolves over the projection.
type SpendingModel string

const (
	// SpendingConstantReal keeps spending flat in today's dollars,
	// growing nominally with each path's inflation draw.
	SpendingConstantReal SpendingModel = "constant_real"
	// SpendingBudget follows the profile's current/future budget
	// schedule, switching at the primary person's retirement.
	SpendingBudget SpendingModel = "budget"
)

// Simulation count bounds protect the caller from degenerate or runaway
// requests.
const (
	MinSimulations = 100
	MaxSimulations = 50000
)

// RetirementModel runs projections over a single household profile. It is
// cheap to construct and holds no state beyond the profile reference and
// the compiled tax tables, so callers build one per analysis and discard
// it.
type RetirementModel struct {
	profile *domain.FinancialProfile
	tables  *TaxTables
	logger  Logger

	// start anchors year zero of every projection.
	start time.Time
}

// NewRetirementModel builds a model over a validated profile using 2024
// tax law.
func NewRetirementModel(profile *domain.FinancialProfile) (*RetirementModel, error) {
	return NewRetirementModelWithConfig(profile, NewTaxConfig2024())
}

// NewRetirementModelWithConfig builds a model with a custom tax policy
// year.
func NewRetirementModelWithConfig(profile *domain.FinancialProfile, taxConfig *TaxConfig) (*RetirementModel, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return &RetirementModel{
		profile: profile,
		tables:  taxConfig.Compile(),
		logger:  NopLogger{},
		start:   dateutil.BeginningOfYear(nowFunc()),
	}, nil
}

// SetLogger installs a logger; the default discards everything.
func (m *RetirementModel) SetLogger(l Logger) {
	if l != nil {
		m.logger = l
	}
}

// Profile returns the household profile the model projects.
func (m *RetirementModel) Profile() *domain.FinancialProfile {
	return m.profile
}

// TaxTables exposes the compiled tables for callers that price individual
// tax questions outside a projection.
func (m *RetirementModel) TaxTables() *TaxTables {
	return m.tables
}

// LifeExpectancyYears returns the number of projection years from now
// until the person reaches their life expectancy age. Never negative.
func (m *RetirementModel) LifeExpectancyYears(p *domain.Person) int {
	years := p.LifeExpectancy() - p.Age(m.start)
	if years < 0 {
		return 0
	}
	return years
}

// DefaultHorizonYears returns the longest life-expectancy horizon in the
// household, used when the caller does not pick a horizon.
func (m *RetirementModel) DefaultHorizonYears() int {
	horizon := 0
	for _, p := range m.profile.People() {
		if y := m.LifeExpectancyYears(p); y > horizon {
			horizon = y
		}
	}
	return horizon
}

func (m *RetirementModel) validateRunParams(years, simulations int) error {
	if years < 0 {
		return fmt.Errorf("years must be non-negative, got %d", years)
	}
	if simulations < MinSimulations || simulations > MaxSimulations {
		return fmt.Errorf("simulations must be between %d and %d, got %d",
			MinSimulations, MaxSimulations, simulations)
	}
	return nil
}

// yearContext is the deterministic (path-independent) shape of one
// projection year, in today's dollars. The stochastic kernel scales the
// inflation-adjusted pieces by each path's cumulative inflation index.
type yearContext struct {
	index        int
	calendarYear int
	date         time.Time

	primaryAge int
	spouseAge  int

	primaryRetired bool
	spouseRetired  bool

	// wages is gross employment income for people still working.
	wages float64
	// contributions flow out of wages into tax-deferred accounts.
	contributions float64
	// employerMatch is added to tax-deferred balances on top of wages.
	employerMatch float64

	// ssBenefit is annual Social Security for people past claiming age,
	// in today's dollars.
	ssBenefit float64
	pension   float64

	// Income streams in today's dollars, split by tax treatment and by
	// whether they grow with inflation.
	otherTaxableFixed    float64
	otherTaxableAdj      float64
	otherNonTaxableFixed float64
	otherNonTaxableAdj   float64

	// Required household spending in today's dollars, split by whether it
	// grows with inflation.
	spendingFixed float64
	spendingAdj   float64

	onMedicare     bool
	bothOnMedicare bool
}

// otherTaxableAt returns taxable stream income at a cumulative inflation
// index.
func (c *yearContext) otherTaxableAt(infl float64) float64 {
	return c.otherTaxableFixed + c.otherTaxableAdj*infl
}

// otherNonTaxableAt returns non-taxable stream income at a cumulative
// inflation index.
func (c *yearContext) otherNonTaxableAt(infl float64) float64 {
	return c.otherNonTaxableFixed + c.otherNonTaxableAdj*infl
}

// spendingAt returns required spending at a cumulative inflation index.
func (c *yearContext) spendingAt(infl float64) float64 {
	return c.spendingFixed + c.spendingAdj*infl
}

// contextForYear computes the deterministic pieces of a projection year.
func (m *RetirementModel) contextForYear(yearIndex int, model SpendingModel) yearContext {
	date := dateutil.AddYears(m.start, yearIndex)
	ctx := yearContext{
		index:        yearIndex,
		calendarYear: date.Year(),
		date:         date,
	}

	primary := m.profile.Primary
	ctx.primaryAge = primary.Age(date)
	ctx.primaryRetired = primary.IsRetired(date)
	m.accumulatePerson(&ctx, primary, ctx.primaryRetired, ctx.primaryAge)

	medicareCount := 0
	if ctx.primaryAge >= medicareAge {
		medicareCount++
	}
	if spouse := m.profile.Spouse; spouse != nil {
		ctx.spouseAge = spouse.Age(date)
		ctx.spouseRetired = spouse.IsRetired(date)
		m.accumulatePerson(&ctx, spouse, ctx.spouseRetired, ctx.spouseAge)
		if ctx.spouseAge >= medicareAge {
			medicareCount++
		}
		ctx.bothOnMedicare = medicareCount == 2
	}
	ctx.onMedicare = medicareCount > 0

	for i := range m.profile.IncomeStreams {
		s := &m.profile.IncomeStreams[i]
		if !s.ActiveIn(ctx.calendarYear) {
			continue
		}
		amount := s.AnnualAmount.InexactFloat64()
		switch {
		case s.Taxable && s.InflationAdjusted:
			ctx.otherTaxableAdj += amount
		case s.Taxable:
			ctx.otherTaxableFixed += amount
		case s.InflationAdjusted:
			ctx.otherNonTaxableAdj += amount
		default:
			ctx.otherNonTaxableFixed += amount
		}
	}

	m.spendingForYear(&ctx, model)
	return ctx
}

func (m *RetirementModel) accumulatePerson(ctx *yearContext, p *domain.Person, retired bool, age int) {
	if !retired {
		salary := p.AnnualSalary.InexactFloat64()
		ctx.wages += salary
		ctx.contributions += salary * p.Contribution401kRate.InexactFloat64()
		ctx.employerMatch += salary * p.EmployerMatchRate.InexactFloat64()
	} else {
		ctx.pension += p.PensionAnnual.InexactFloat64()
	}
	if age >= p.ClaimingAge() {
		ctx.ssBenefit += m.adjustedAnnualBenefit(p, p.ClaimingAge())
	}
}

// spendingForYear resolves required spending in today's dollars, split into
// fixed-nominal and inflation-adjusted components. A budget schedule, when
// present, wins over the flat annual expense number under either spending
// model; budget lines without the inflation flag stay fixed in nominal
// terms.
func (m *RetirementModel) spendingForYear(ctx *yearContext, model SpendingModel) {
	fixed := decimal.Zero
	adjusted := m.profile.AnnualExpenses
	if b := m.profile.Budget; b != nil {
		if ctx.primaryRetired {
			fixed, adjusted = b.FutureTotals()
		} else {
			fixed, adjusted = b.CurrentTotals()
		}
	} else if model == SpendingBudget {
		m.logger.Debugf("budget spending model without a budget schedule; using annual expenses")
	}

	ctx.spendingFixed = fixed.InexactFloat64()
	ctx.spendingAdj = adjusted.InexactFloat64()
	for i := range m.profile.FutureExpenses {
		e := &m.profile.FutureExpenses[i]
		if e.ActiveIn(ctx.calendarYear) {
			ctx.spendingAdj += e.AnnualAmount.InexactFloat64()
		}
	}
}

// adjustedAnnualBenefit converts the full-retirement-age monthly benefit
// into the annual benefit at a claiming age, applying the standard early
// reduction (5/9% per month for the first 36 months, 5/12% beyond) and
// delayed credit (2/3% per month through age 70).
func (m *RetirementModel) adjustedAnnualBenefit(p *domain.Person, claimAge int) float64 {
	monthly := p.SSMonthlyBenefit.InexactFloat64()
	if monthly <= 0 {
		return 0
	}
	fra := p.FullRetirementAge()
	months := (claimAge - fra) * 12

	factor := 1.0
	switch {
	case months < 0:
		early := -months
		first := early
		if first > 36 {
			first = 36
		}
		factor = 1 - float64(first)*(5.0/900) - float64(early-first)*(5.0/1200)
	case months > 0:
		capped := months
		if claimAge > 70 {
			capped = (70 - fra) * 12
		}
		factor = 1 + float64(capped)*(2.0/300)
	}
	return monthly * 12 * factor
}
