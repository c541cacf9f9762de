package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/planwell/retirement-engine/internal/domain"
)

// TaxBracket represents a single tax bracket with its rate and bounds.
type TaxBracket struct {
	Min  decimal.Decimal `yaml:"min" json:"min"`
	Max  decimal.Decimal `yaml:"max" json:"max"`
	Rate decimal.Decimal `yaml:"rate" json:"rate"`
}

// IRMAATier maps a MAGI threshold to a fixed annual per-person Medicare
// surcharge. Tiers apply to the highest threshold not exceeding MAGI.
type IRMAATier struct {
	ThresholdSingle decimal.Decimal `yaml:"threshold_single" json:"threshold_single"`
	ThresholdJoint  decimal.Decimal `yaml:"threshold_joint" json:"threshold_joint"`
	AnnualSurcharge decimal.Decimal `yaml:"annual_surcharge" json:"annual_surcharge"`
}

// TaxConfig is the full policy-year tax configuration. All amounts are
// annual dollars for the configured tax year.
type TaxConfig struct {
	Year int `yaml:"year" json:"year"`

	BracketsSingle []TaxBracket `yaml:"brackets_single" json:"brackets_single"`
	BracketsMFJ    []TaxBracket `yaml:"brackets_mfj" json:"brackets_mfj"`

	StandardDeductionSingle decimal.Decimal `yaml:"standard_deduction_single" json:"standard_deduction_single"`
	StandardDeductionMFJ    decimal.Decimal `yaml:"standard_deduction_mfj" json:"standard_deduction_mfj"`

	// Long-term capital gains thresholds are taxable-income breakpoints
	// for the 0/15/20% rates.
	CapGainsSingle []TaxBracket `yaml:"cap_gains_single" json:"cap_gains_single"`
	CapGainsMFJ    []TaxBracket `yaml:"cap_gains_mfj" json:"cap_gains_mfj"`

	// Social Security provisional income thresholds.
	SSThreshold1Single decimal.Decimal `yaml:"ss_threshold1_single" json:"ss_threshold1_single"`
	SSThreshold2Single decimal.Decimal `yaml:"ss_threshold2_single" json:"ss_threshold2_single"`
	SSThreshold1MFJ    decimal.Decimal `yaml:"ss_threshold1_mfj" json:"ss_threshold1_mfj"`
	SSThreshold2MFJ    decimal.Decimal `yaml:"ss_threshold2_mfj" json:"ss_threshold2_mfj"`

	IRMAATiers []IRMAATier `yaml:"irmaa_tiers" json:"irmaa_tiers"`

	SSTaxRate       decimal.Decimal `yaml:"ss_tax_rate" json:"ss_tax_rate"`
	SSWageBase      decimal.Decimal `yaml:"ss_wage_base" json:"ss_wage_base"`
	MedicareTaxRate decimal.Decimal `yaml:"medicare_tax_rate" json:"medicare_tax_rate"`
}

// NewTaxConfig2024 returns 2024 federal tax law values.
func NewTaxConfig2024() *TaxConfig {
	maxVal := decimal.NewFromInt(999999999)

	return &TaxConfig{
		Year: 2024,
		BracketsSingle: []TaxBracket{
			{Min: decimal.Zero, Max: decimal.NewFromInt(11600), Rate: decimal.NewFromFloat(0.10)},
			{Min: decimal.NewFromInt(11600), Max: decimal.NewFromInt(47150), Rate: decimal.NewFromFloat(0.12)},
			{Min: decimal.NewFromInt(47150), Max: decimal.NewFromInt(100525), Rate: decimal.NewFromFloat(0.22)},
			{Min: decimal.NewFromInt(100525), Max: decimal.NewFromInt(191950), Rate: decimal.NewFromFloat(0.24)},
			{Min: decimal.NewFromInt(191950), Max: decimal.NewFromInt(243725), Rate: decimal.NewFromFloat(0.32)},
			{Min: decimal.NewFromInt(243725), Max: decimal.NewFromInt(609350), Rate: decimal.NewFromFloat(0.35)},
			{Min: decimal.NewFromInt(609350), Max: maxVal, Rate: decimal.NewFromFloat(0.37)},
		},
		BracketsMFJ: []TaxBracket{
			{Min: decimal.Zero, Max: decimal.NewFromInt(23200), Rate: decimal.NewFromFloat(0.10)},
			{Min: decimal.NewFromInt(23200), Max: decimal.NewFromInt(94300), Rate: decimal.NewFromFloat(0.12)},
			{Min: decimal.NewFromInt(94300), Max: decimal.NewFromInt(201050), Rate: decimal.NewFromFloat(0.22)},
			{Min: decimal.NewFromInt(201050), Max: decimal.NewFromInt(383900), Rate: decimal.NewFromFloat(0.24)},
			{Min: decimal.NewFromInt(383900), Max: decimal.NewFromInt(487450), Rate: decimal.NewFromFloat(0.32)},
			{Min: decimal.NewFromInt(487450), Max: decimal.NewFromInt(731200), Rate: decimal.NewFromFloat(0.35)},
			{Min: decimal.NewFromInt(731200), Max: maxVal, Rate: decimal.NewFromFloat(0.37)},
		},
		StandardDeductionSingle: decimal.NewFromInt(14600),
		StandardDeductionMFJ:    decimal.NewFromInt(29200),
		CapGainsSingle: []TaxBracket{
			{Min: decimal.Zero, Max: decimal.NewFromInt(47025), Rate: decimal.Zero},
			{Min: decimal.NewFromInt(47025), Max: decimal.NewFromInt(518900), Rate: decimal.NewFromFloat(0.15)},
			{Min: decimal.NewFromInt(518900), Max: maxVal, Rate: decimal.NewFromFloat(0.20)},
		},
		CapGainsMFJ: []TaxBracket{
			{Min: decimal.Zero, Max: decimal.NewFromInt(94050), Rate: decimal.Zero},
			{Min: decimal.NewFromInt(94050), Max: decimal.NewFromInt(583750), Rate: decimal.NewFromFloat(0.15)},
			{Min: decimal.NewFromInt(583750), Max: maxVal, Rate: decimal.NewFromFloat(0.20)},
		},
		SSThreshold1Single: decimal.NewFromInt(25000),
		SSThreshold2Single: decimal.NewFromInt(34000),
		SSThreshold1MFJ:    decimal.NewFromInt(32000),
		SSThreshold2MFJ:    decimal.NewFromInt(44000),
		IRMAATiers: []IRMAATier{
			{ThresholdSingle: decimal.NewFromInt(103000), ThresholdJoint: decimal.NewFromInt(206000), AnnualSurcharge: decimal.NewFromFloat(839.40)},
			{ThresholdSingle: decimal.NewFromInt(129000), ThresholdJoint: decimal.NewFromInt(258000), AnnualSurcharge: decimal.NewFromFloat(2096.40)},
			{ThresholdSingle: decimal.NewFromInt(161000), ThresholdJoint: decimal.NewFromInt(322000), AnnualSurcharge: decimal.NewFromFloat(3354.00)},
			{ThresholdSingle: decimal.NewFromInt(193000), ThresholdJoint: decimal.NewFromInt(386000), AnnualSurcharge: decimal.NewFromFloat(4611.60)},
			{ThresholdSingle: decimal.NewFromInt(500000), ThresholdJoint: decimal.NewFromInt(750000), AnnualSurcharge: decimal.NewFromFloat(5030.40)},
		},
		SSTaxRate:       decimal.NewFromFloat(0.062),
		SSWageBase:      decimal.NewFromInt(168600),
		MedicareTaxRate: decimal.NewFromFloat(0.0145),
	}
}

// RMD Uniform Lifetime Table distribution periods by age. Ages past the
// last entry clamp to its divisor.
var rmdDivisors = map[int]float64{
	72: 27.4, 73: 26.5, 74: 25.5, 75: 24.6, 76: 23.7, 77: 22.9,
	78: 22.0, 79: 21.1, 80: 20.2, 81: 19.4, 82: 18.5, 83: 17.7,
	84: 16.8, 85: 16.0, 86: 15.2, 87: 14.4, 88: 13.7, 89: 12.9,
	90: 12.2, 91: 11.5, 92: 10.8, 93: 10.1, 94: 9.5, 95: 8.9,
	96: 8.4, 97: 7.8, 98: 7.3, 99: 6.8, 100: 6.4,
}

const (
	rmdStartAge = 73
	rmdMaxAge   = 100
	medicareAge = 65
)

// bracket is a compiled float64 tax bracket for the vectorized path.
type bracket struct {
	min, max, rate float64
}

// irmaaTier is a compiled float64 IRMAA tier.
type irmaaTier struct {
	thresholdSingle, thresholdJoint, surcharge float64
}

// TaxTables is the TaxConfig compiled to float64 for array math inside the
// simulation hot path. Build once per model with Compile.
type TaxTables struct {
	bracketsSingle []bracket
	bracketsMFJ    []bracket

	stdDeductionSingle float64
	stdDeductionMFJ    float64

	capGainsSingle []bracket
	capGainsMFJ    []bracket

	ssThreshold1Single float64
	ssThreshold2Single float64
	ssThreshold1MFJ    float64
	ssThreshold2MFJ    float64

	irmaaTiers []irmaaTier

	ssTaxRate       float64
	ssWageBase      float64
	medicareTaxRate float64
}

func compileBrackets(src []TaxBracket) []bracket {
	out := make([]bracket, len(src))
	for i, b := range src {
		out[i] = bracket{
			min:  b.Min.InexactFloat64(),
			max:  b.Max.InexactFloat64(),
			rate: b.Rate.InexactFloat64(),
		}
	}
	return out
}

// Compile converts the decimal configuration into float64 tables.
func (tc *TaxConfig) Compile() *TaxTables {
	tiers := make([]irmaaTier, len(tc.IRMAATiers))
	for i, t := range tc.IRMAATiers {
		tiers[i] = irmaaTier{
			thresholdSingle: t.ThresholdSingle.InexactFloat64(),
			thresholdJoint:  t.ThresholdJoint.InexactFloat64(),
			surcharge:       t.AnnualSurcharge.InexactFloat64(),
		}
	}
	return &TaxTables{
		bracketsSingle:     compileBrackets(tc.BracketsSingle),
		bracketsMFJ:        compileBrackets(tc.BracketsMFJ),
		stdDeductionSingle: tc.StandardDeductionSingle.InexactFloat64(),
		stdDeductionMFJ:    tc.StandardDeductionMFJ.InexactFloat64(),
		capGainsSingle:     compileBrackets(tc.CapGainsSingle),
		capGainsMFJ:        compileBrackets(tc.CapGainsMFJ),
		ssThreshold1Single: tc.SSThreshold1Single.InexactFloat64(),
		ssThreshold2Single: tc.SSThreshold2Single.InexactFloat64(),
		ssThreshold1MFJ:    tc.SSThreshold1MFJ.InexactFloat64(),
		ssThreshold2MFJ:    tc.SSThreshold2MFJ.InexactFloat64(),
		irmaaTiers:         tiers,
		ssTaxRate:          tc.SSTaxRate.InexactFloat64(),
		ssWageBase:         tc.SSWageBase.InexactFloat64(),
		medicareTaxRate:    tc.MedicareTaxRate.InexactFloat64(),
	}
}

// NewTaxTables2024 compiles the 2024 configuration.
func NewTaxTables2024() *TaxTables {
	return NewTaxConfig2024().Compile()
}

func (tt *TaxTables) brackets(status domain.FilingStatus) []bracket {
	if status == domain.FilingSingle {
		return tt.bracketsSingle
	}
	return tt.bracketsMFJ
}

func (tt *TaxTables) capGainsBrackets(status domain.FilingStatus) []bracket {
	if status == domain.FilingSingle {
		return tt.capGainsSingle
	}
	return tt.capGainsMFJ
}

// StandardDeduction returns the standard deduction for the filing status.
func (tt *TaxTables) StandardDeduction(status domain.FilingStatus) float64 {
	if status == domain.FilingSingle {
		return tt.stdDeductionSingle
	}
	return tt.stdDeductionMFJ
}

func (tt *TaxTables) ssThresholds(status domain.FilingStatus) (t1, t2 float64) {
	if status == domain.FilingSingle {
		return tt.ssThreshold1Single, tt.ssThreshold2Single
	}
	return tt.ssThreshold1MFJ, tt.ssThreshold2MFJ
}
