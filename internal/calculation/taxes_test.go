package calculation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/planwell/retirement-engine/internal/domain"
)

func TestFederalTax(t *testing.T) {
	tables := NewTaxTables2024()

	tests := []struct {
		name             string
		income           float64
		status           domain.FilingStatus
		expectedTax      float64
		expectedMarginal float64
	}{
		{
			name:             "zero income",
			income:           0,
			status:           domain.FilingJointly,
			expectedTax:      0,
			expectedMarginal: 0.10,
		},
		{
			name:             "negative income floors at zero",
			income:           -5000,
			status:           domain.FilingJointly,
			expectedTax:      0,
			expectedMarginal: 0.10,
		},
		{
			name:             "income within lowest bracket mfj",
			income:           20000,
			status:           domain.FilingJointly,
			expectedTax:      2000,
			expectedMarginal: 0.10,
		},
		{
			name:             "middle bracket mfj",
			income:           100000,
			status:           domain.FilingJointly,
			expectedTax:      2320 + 8532 + (100000-94300)*0.22,
			expectedMarginal: 0.22,
		},
		{
			name:             "top bracket mfj",
			income:           800000,
			status:           domain.FilingJointly,
			expectedTax:      222125.50,
			expectedMarginal: 0.37,
		},
		{
			name:             "single filer second bracket",
			income:           40000,
			status:           domain.FilingSingle,
			expectedTax:      1160 + (40000-11600)*0.12,
			expectedMarginal: 0.12,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tax, marginal := tables.FederalTax([]float64{tc.income}, tc.status)
			assert.InDelta(t, tc.expectedTax, tax[0], 0.01)
			assert.InDelta(t, tc.expectedMarginal, marginal[0], 1e-9)
		})
	}
}

func TestFederalTaxLowestBracketRate(t *testing.T) {
	tables := NewTaxTables2024()

	// Every dollar inside the first bracket is taxed at exactly 10%.
	incomes := []float64{1, 5000, 11600, 23200}
	statuses := []domain.FilingStatus{domain.FilingSingle, domain.FilingSingle, domain.FilingSingle, domain.FilingJointly}
	for i, income := range incomes {
		tax, _ := tables.FederalTax([]float64{income}, statuses[i])
		assert.InDelta(t, income*0.10, tax[0], 0.01)
	}
}

func TestTaxableSocialSecurity(t *testing.T) {
	tables := NewTaxTables2024()

	tests := []struct {
		name     string
		other    float64
		benefit  float64
		status   domain.FilingStatus
		expected float64
	}{
		{
			name:     "below first threshold mfj",
			other:    10000,
			benefit:  20000,
			status:   domain.FilingJointly,
			expected: 0,
		},
		{
			name:    "between thresholds mfj",
			other:   25000,
			benefit: 20000,
			status:  domain.FilingJointly,
			// provisional 35,000; half the excess over 32,000
			expected: 1500,
		},
		{
			name:    "above second threshold mfj",
			other:   50000,
			benefit: 30000,
			status:  domain.FilingJointly,
			// provisional 65,000; 6,000 tier one + 85% of 21,000
			expected: 23850,
		},
		{
			name:    "capped at 85 percent of benefit",
			other:   500000,
			benefit: 40000,
			status:  domain.FilingJointly,
			expected: 34000,
		},
		{
			name:     "single thresholds",
			other:    20000,
			benefit:  12000,
			status:   domain.FilingSingle,
			expected: 500,
		},
		{
			name:     "no benefit",
			other:    100000,
			benefit:  0,
			status:   domain.FilingJointly,
			expected: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			taxable := tables.TaxableSocialSecurity([]float64{tc.other}, []float64{tc.benefit}, tc.status)
			assert.InDelta(t, tc.expected, taxable[0], 0.01)
		})
	}
}

func TestTaxableSocialSecurityBounds(t *testing.T) {
	tables := NewTaxTables2024()

	benefit := 36000.0
	prev := -1.0
	for other := 0.0; other <= 200000; other += 5000 {
		taxable := tables.TaxableSocialSecurity([]float64{other}, []float64{benefit}, domain.FilingJointly)[0]
		assert.LessOrEqual(t, taxable, 0.85*benefit+1e-9)
		assert.GreaterOrEqual(t, taxable, prev, "taxable SS must be non-decreasing in other income")
		prev = taxable
	}
}

func TestCapitalGainsTax(t *testing.T) {
	tables := NewTaxTables2024()

	tests := []struct {
		name     string
		gains    float64
		ordinary float64
		status   domain.FilingStatus
		expected float64
	}{
		{
			name:     "all gains in zero bracket",
			gains:    50000,
			ordinary: 20000,
			status:   domain.FilingJointly,
			expected: 0,
		},
		{
			name:     "gains straddle zero and fifteen",
			gains:    50000,
			ordinary: 50000,
			status:   domain.FilingJointly,
			// 44,050 at 0%, 5,950 at 15%
			expected: 892.50,
		},
		{
			name:     "all gains at fifteen",
			gains:    100000,
			ordinary: 200000,
			status:   domain.FilingJointly,
			expected: 15000,
		},
		{
			name:     "gains reach twenty percent",
			gains:    100000,
			ordinary: 550000,
			status:   domain.FilingJointly,
			// 33,750 at 15%, 66,250 at 20%
			expected: 5062.50 + 13250,
		},
		{
			name:     "zero gains",
			gains:    0,
			ordinary: 100000,
			status:   domain.FilingJointly,
			expected: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tax := tables.CapitalGainsTax([]float64{tc.gains}, []float64{tc.ordinary}, tc.status)
			assert.InDelta(t, tc.expected, tax[0], 0.01)
		})
	}
}

func TestCapitalGainsStackingMonotonic(t *testing.T) {
	tables := NewTaxTables2024()

	gains := 60000.0
	prev := -1.0
	for ordinary := 0.0; ordinary <= 700000; ordinary += 20000 {
		tax := tables.CapitalGainsTax([]float64{gains}, []float64{ordinary}, domain.FilingJointly)[0]
		assert.GreaterOrEqual(t, tax, prev,
			"LTCG tax must be non-decreasing in ordinary income for fixed gains")
		prev = tax
	}
}

func TestIRMAASurcharge(t *testing.T) {
	tables := NewTaxTables2024()

	t.Run("below lowest tier", func(t *testing.T) {
		surcharge := tables.IRMAASurcharge([]float64{205999}, domain.FilingJointly, true)
		assert.Zero(t, surcharge[0])
	})

	t.Run("first tier both on medicare", func(t *testing.T) {
		surcharge := tables.IRMAASurcharge([]float64{210000}, domain.FilingJointly, true)
		assert.InDelta(t, 839.40*2, surcharge[0], 0.01)
	})

	t.Run("top tier both on medicare", func(t *testing.T) {
		surcharge := tables.IRMAASurcharge([]float64{800000}, domain.FilingJointly, true)
		assert.InDelta(t, 5030.40*2, surcharge[0], 0.01)
	})

	t.Run("one person enrolled is not doubled", func(t *testing.T) {
		surcharge := tables.IRMAASurcharge([]float64{210000}, domain.FilingJointly, false)
		assert.InDelta(t, 839.40, surcharge[0], 0.01)
	})

	t.Run("doubling is exact at identical magi", func(t *testing.T) {
		magi := []float64{210000, 270000, 400000, 800000}
		single := tables.IRMAASurcharge(magi, domain.FilingJointly, false)
		double := tables.IRMAASurcharge(magi, domain.FilingJointly, true)
		for i := range magi {
			assert.InDelta(t, single[i]*2, double[i], 1e-9)
		}
	})

	t.Run("single filer thresholds", func(t *testing.T) {
		surcharge := tables.IRMAASurcharge([]float64{110000}, domain.FilingSingle, false)
		assert.InDelta(t, 839.40, surcharge[0], 0.01)
	})
}

func TestEmploymentTax(t *testing.T) {
	tables := NewTaxTables2024()

	t.Run("wages above the wage base cap social security", func(t *testing.T) {
		tax := tables.EmploymentTax([]float64{200000}, domain.FilingSingle, 0)
		// 168,600 * 6.2% + 200,000 * 1.45% + federal on 185,400
		assert.InDelta(t, 10453.20+2900+37538.50, tax[0], 0.01)
	})

	t.Run("zero wages", func(t *testing.T) {
		tax := tables.EmploymentTax([]float64{0}, domain.FilingSingle, 0.05)
		assert.Zero(t, tax[0])
	})

	t.Run("state rate applies to gross wages", func(t *testing.T) {
		base := tables.EmploymentTax([]float64{100000}, domain.FilingSingle, 0)
		withState := tables.EmploymentTax([]float64{100000}, domain.FilingSingle, 0.05)
		assert.InDelta(t, 5000, withState[0]-base[0], 0.01)
	})

	t.Run("wages below standard deduction owe only fica", func(t *testing.T) {
		tax := tables.EmploymentTax([]float64{10000}, domain.FilingSingle, 0)
		assert.InDelta(t, 10000*(0.062+0.0145), tax[0], 0.01)
	})
}

func TestVectorizedShapes(t *testing.T) {
	tables := NewTaxTables2024()

	incomes := []float64{0, 50000, 100000, 800000}
	tax, marginal := tables.FederalTax(incomes, domain.FilingJointly)
	assert.Len(t, tax, len(incomes))
	assert.Len(t, marginal, len(incomes))

	gains := []float64{0, 10000, 20000, 30000}
	assert.Len(t, tables.CapitalGainsTax(gains, incomes, domain.FilingJointly), len(incomes))
	assert.Len(t, tables.IRMAASurcharge(incomes, domain.FilingJointly, true), len(incomes))
}
