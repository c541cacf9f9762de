package calculation

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"github.com/planwell/retirement-engine/internal/domain"
)

// MonteCarloParams configures one stochastic projection run.
type MonteCarloParams struct {
	Years       int
	Simulations int

	Assumptions   domain.MarketAssumptions
	SpendingModel SpendingModel

	// MarketPeriods optionally overrides Assumptions for spans of the
	// projection (regime modeling).
	MarketPeriods *domain.MarketPeriods

	// EffectiveTaxRate, when positive, replaces the detailed retirement
	// tax computation with a flat rate on ordinary income plus gains.
	EffectiveTaxRate float64

	// Seed fixes the random sequence for reproducible runs. Zero draws a
	// seed from the clock.
	Seed int64
}

// Paths are processed in fixed-size chunks, each with its own random
// source derived from the run seed. Chunk boundaries are independent of
// worker count, so results are reproducible on any machine.
const mcChunkSize = 2048

// mcChunk is the mutable state for one contiguous range of paths. All
// slices have one element per path in the chunk.
type mcChunk struct {
	lo  int
	rng *rand.Rand

	taxable  []float64
	basis    []float64
	deferred []float64
	roth     []float64
	infl     []float64
	failed   []bool

	// per-year scratch reused across years
	returns  []float64
	inflDraw []float64
	wages    []float64
	ordinary []float64
	gains    []float64
	ss       []float64
	magi     []float64
}

func newMCChunk(lo, size int, rng *rand.Rand, taxable, basis, deferred, roth float64) *mcChunk {
	c := &mcChunk{
		lo:       lo,
		rng:      rng,
		taxable:  make([]float64, size),
		basis:    make([]float64, size),
		deferred: make([]float64, size),
		roth:     make([]float64, size),
		infl:     make([]float64, size),
		failed:   make([]bool, size),
		returns:  make([]float64, size),
		inflDraw: make([]float64, size),
		wages:    make([]float64, size),
		ordinary: make([]float64, size),
		gains:    make([]float64, size),
		ss:       make([]float64, size),
		magi:     make([]float64, size),
	}
	for i := 0; i < size; i++ {
		c.taxable[i] = taxable
		c.basis[i] = basis
		c.deferred[i] = deferred
		c.roth[i] = roth
		c.infl[i] = 1.0
	}
	return c
}

// boxMuller draws one standard normal variate.
func boxMuller(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	u2 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// withdrawTaxable takes up to amount from a taxable balance, realizing a
// proportional share of the embedded gain against the tracked cost basis.
func withdrawTaxable(balance, basis *float64, amount float64) (taken, gain float64) {
	if *balance <= 0 || amount <= 0 {
		return 0, 0
	}
	taken = math.Min(amount, *balance)
	gainFraction := 0.0
	if *balance > *basis {
		gainFraction = (*balance - *basis) / *balance
	}
	gain = taken * gainFraction
	*basis -= taken * (1 - gainFraction)
	if *basis < 0 {
		*basis = 0
	}
	*balance -= taken
	return taken, gain
}

// drainAccounts covers an amount from taxable, then tax-deferred, then
// Roth. Returns the realized gain, the deferred amount withdrawn, and any
// uncovered remainder.
func drainAccounts(c *mcChunk, j int, amount float64) (gain, deferredTaken, shortfall float64) {
	taken, gain := withdrawTaxable(&c.taxable[j], &c.basis[j], amount)
	amount -= taken
	if amount > 0 && c.deferred[j] > 0 {
		deferredTaken = math.Min(amount, c.deferred[j])
		c.deferred[j] -= deferredTaken
		amount -= deferredTaken
	}
	if amount > 0 && c.roth[j] > 0 {
		rothTaken := math.Min(amount, c.roth[j])
		c.roth[j] -= rothTaken
		amount -= rothTaken
	}
	return gain, deferredTaken, amount
}

// MonteCarloSimulation runs the stochastic projection and summarizes path
// outcomes. A path succeeds when the portfolio covers required spending
// and taxes every year of the horizon.
func (m *RetirementModel) MonteCarloSimulation(params MonteCarloParams) (*domain.SimulationResult, error) {
	if err := m.validateRunParams(params.Years, params.Simulations); err != nil {
		return nil, err
	}
	if err := params.Assumptions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid market assumptions: %w", err)
	}
	if params.MarketPeriods != nil {
		if err := params.MarketPeriods.Validate(); err != nil {
			return nil, fmt.Errorf("invalid market periods: %w", err)
		}
	}

	taxableD, basisD, deferredD, rothD := m.profile.TotalsByTaxClass()
	starting := taxableD.Add(deferredD).Add(rothD).InexactFloat64()

	seed := params.Seed
	if seed == 0 {
		seed = seedFunc()
	}

	// A zero-year horizon is trivially successful with the portfolio
	// unchanged.
	if params.Years == 0 {
		return &domain.SimulationResult{
			SuccessRate:        1.0,
			StartingPortfolio:  starting,
			MedianFinalBalance: starting,
			Percentiles: map[string]float64{
				"p10": starting, "p25": starting, "p50": starting,
				"p75": starting, "p90": starting,
			},
			Timeline:    domain.Timeline{Years: []int{}, P10: []float64{}, P50: []float64{}, P90: []float64{}},
			Years:       0,
			Simulations: params.Simulations,
			Seed:        seed,
		}, nil
	}

	// Precompute the deterministic shape of each year once; every chunk
	// shares it read-only.
	ctxs := make([]yearContext, params.Years)
	yearAssets := make([][]domain.AllocatedAsset, params.Years)
	yearInflation := make([]domain.AssetAssumption, params.Years)
	for t := 0; t < params.Years; t++ {
		ctxs[t] = m.contextForYear(t, params.SpendingModel)
		ma := params.MarketPeriods.AssumptionsFor(t, ctxs[t].calendarYear, params.Assumptions)
		yearAssets[t] = ma.AllocatedAssets()
		yearInflation[t] = ma.Inflation
	}

	n := params.Simulations
	totals := make([][]float64, params.Years)
	for t := range totals {
		totals[t] = make([]float64, n)
	}
	finals := make([]float64, n)
	failed := make([]bool, n)

	taxable := taxableD.InexactFloat64()
	basis := basisD.InexactFloat64()
	deferred := deferredD.InexactFloat64()
	roth := rothD.InexactFloat64()

	numChunks := (n + mcChunkSize - 1) / mcChunkSize
	workers := runtime.NumCPU()
	if workers > numChunks {
		workers = numChunks
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for ci := 0; ci < numChunks; ci++ {
		lo := ci * mcChunkSize
		hi := lo + mcChunkSize
		if hi > n {
			hi = n
		}
		rng := rand.New(rand.NewSource(seed + int64(ci)))
		chunk := newMCChunk(lo, hi-lo, rng, taxable, basis, deferred, roth)

		wg.Add(1)
		sem <- struct{}{}
		go func(c *mcChunk) {
			defer wg.Done()
			defer func() { <-sem }()
			m.simulateChunk(c, &params, ctxs, yearAssets, yearInflation, totals)
			for j := range c.failed {
				finals[c.lo+j] = c.taxable[j] + c.deferred[j] + c.roth[j]
				failed[c.lo+j] = c.failed[j]
			}
		}(chunk)
	}
	wg.Wait()

	successes := 0
	for _, f := range failed {
		if !f {
			successes++
		}
	}
	successRate := float64(successes) / float64(n)

	timeline := domain.Timeline{
		Years: make([]int, params.Years),
		P10:   make([]float64, params.Years),
		P50:   make([]float64, params.Years),
		P90:   make([]float64, params.Years),
	}
	scratch := make([]float64, n)
	for t := 0; t < params.Years; t++ {
		copy(scratch, totals[t])
		sort.Float64s(scratch)
		timeline.Years[t] = ctxs[t].calendarYear
		timeline.P10[t] = percentileSorted(scratch, 10)
		timeline.P50[t] = percentileSorted(scratch, 50)
		timeline.P90[t] = percentileSorted(scratch, 90)
	}

	sort.Float64s(finals)
	result := &domain.SimulationResult{
		SuccessRate:        successRate,
		StartingPortfolio:  starting,
		MedianFinalBalance: percentileSorted(finals, 50),
		Percentiles: map[string]float64{
			"p10": percentileSorted(finals, 10),
			"p25": percentileSorted(finals, 25),
			"p50": percentileSorted(finals, 50),
			"p75": percentileSorted(finals, 75),
			"p90": percentileSorted(finals, 90),
		},
		Timeline:    timeline,
		Years:       params.Years,
		Simulations: params.Simulations,
		Seed:        seed,
	}

	m.logger.Infof("monte carlo: %d paths x %d years, success %.1f%%",
		params.Simulations, params.Years, successRate*100)
	return result, nil
}

// simulateChunk advances one chunk of paths through every projection year.
// Tax functions are applied once per year across the whole chunk.
func (m *RetirementModel) simulateChunk(c *mcChunk, params *MonteCarloParams,
	ctxs []yearContext, yearAssets [][]domain.AllocatedAsset,
	yearInflation []domain.AssetAssumption, totals [][]float64) {

	status := m.profile.FilingStatus
	stateRate := m.profile.StateTaxRate.InexactFloat64()
	iraContrib := m.profile.AnnualIRAContribution.InexactFloat64()
	hasSpouse := m.profile.Spouse != nil
	deduction := m.tables.StandardDeduction(status)
	size := len(c.failed)

	for t := range ctxs {
		ctx := &ctxs[t]
		assets := yearAssets[t]
		inflAssumption := yearInflation[t]

		// Draw this year's market return and inflation for every path.
		// Draw order is fixed (assets in allocation order, then
		// inflation), so a seed pins the whole sequence.
		for j := 0; j < size; j++ {
			r := 0.0
			for _, a := range assets {
				z := boxMuller(c.rng)
				r += a.Weight * (a.Assumption.Mean + z*a.Assumption.StdDev)
			}
			c.returns[j] = r
			c.inflDraw[j] = inflAssumption.Mean + boxMuller(c.rng)*inflAssumption.StdDev
			c.wages[j] = ctx.wages * c.infl[j]
		}

		empTax := m.tables.EmploymentTax(c.wages, status, stateRate)

		// Income, spending and withdrawals, per path.
		for j := 0; j < size; j++ {
			infl := c.infl[j]

			contrib := ctx.contributions * infl
			if !ctx.primaryRetired {
				contrib += iraContrib * infl
			}
			match := ctx.employerMatch * infl
			c.deferred[j] += contrib + match

			ssN := ctx.ssBenefit * infl
			pensionN := ctx.pension
			spendingN := ctx.spendingAt(infl)

			rmd := HouseholdRMD(ctx.primaryAge, ctx.spouseAge, c.deferred[j], hasSpouse)
			c.deferred[j] -= rmd

			cash := c.wages[j] - empTax[j] - contrib - match + ssN + pensionN +
				ctx.otherTaxableAt(infl) + ctx.otherNonTaxableAt(infl) + rmd

			gains := 0.0
			deferredTaken := rmd
			gap := spendingN - cash
			if gap > 0 {
				g, dt, short := drainAccounts(c, j, gap)
				gains += g
				deferredTaken += dt
				if short > 1e-9 {
					c.failed[j] = true
				}
			} else {
				// Surplus income is saved into the taxable account at
				// full basis.
				c.taxable[j] -= gap
				c.basis[j] -= gap
			}

			c.ordinary[j] = pensionN + ctx.otherTaxableAt(infl) + deferredTaken
			c.gains[j] = gains
			c.ss[j] = ssN
		}

		// Retirement taxes, vectorized across the chunk.
		var fedTax, cgTax, irmaa []float64
		taxableSS := m.tables.TaxableSocialSecurity(c.ordinary, c.ss, status)
		if params.EffectiveTaxRate > 0 {
			fedTax = make([]float64, size)
			cgTax = make([]float64, size)
			for j := 0; j < size; j++ {
				fedTax[j] = params.EffectiveTaxRate * (c.ordinary[j] + taxableSS[j] + c.gains[j])
			}
		} else {
			ordTaxable := make([]float64, size)
			for j := 0; j < size; j++ {
				ordTaxable[j] = math.Max(c.ordinary[j]+taxableSS[j]-deduction, 0)
				c.magi[j] = c.ordinary[j] + taxableSS[j] + c.gains[j]
			}
			fedTax, _ = m.tables.FederalTax(ordTaxable, status)
			cgTax = m.tables.CapitalGainsTax(c.gains, ordTaxable, status)
			if ctx.onMedicare {
				irmaa = m.tables.IRMAASurcharge(c.magi, status, ctx.bothOnMedicare)
			}
		}

		// Settle taxes, then grow what remains.
		for j := 0; j < size; j++ {
			tax := fedTax[j] + cgTax[j]
			if irmaa != nil {
				tax += irmaa[j]
			}
			if tax > 0 {
				_, _, short := drainAccounts(c, j, tax)
				if short > 1e-9 {
					c.failed[j] = true
				}
			}

			growth := 1 + c.returns[j]
			if growth < 0 {
				growth = 0
			}
			c.taxable[j] *= growth
			c.deferred[j] *= growth
			c.roth[j] *= growth
			c.infl[j] *= 1 + c.inflDraw[j]

			totals[t][c.lo+j] = c.taxable[j] + c.deferred[j] + c.roth[j]
		}
	}
}

// percentileSorted reads the q-th percentile from an ascending slice using
// linear interpolation between ranks.
func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
