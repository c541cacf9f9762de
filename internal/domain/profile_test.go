package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year, month, dayOfMonth int) time.Time {
	return time.Date(year, time.Month(month), dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func TestParseFilingStatus(t *testing.T) {
	tests := []struct {
		in       string
		expected FilingStatus
	}{
		{"mfj", FilingJointly},
		{"MFJ", FilingJointly},
		{"married_filing_jointly", FilingJointly},
		{"", FilingJointly},
		{"single", FilingSingle},
		{" Single ", FilingSingle},
	}
	for _, tc := range tests {
		status, err := ParseFilingStatus(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.expected, status, tc.in)
	}

	_, err := ParseFilingStatus("head_of_household")
	assert.Error(t, err)
}

func TestClassifyAccountType(t *testing.T) {
	tests := []struct {
		accountType string
		expected    TaxClass
	}{
		{"Traditional IRA", TaxClassDeferred},
		{"401k", TaxClassDeferred},
		{"403b", TaxClassDeferred},
		{"457b", TaxClassDeferred},
		{"Roth IRA", TaxClassRoth},
		{"Taxable Brokerage", TaxClassTaxable},
		{"Savings", TaxClassTaxable},
		{"Checking", TaxClassTaxable},
		{"something else", TaxClassTaxable},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, ClassifyAccountType(tc.accountType), tc.accountType)
	}
}

func testProfile() *FinancialProfile {
	return &FinancialProfile{
		Primary: &Person{
			Name:           "Avery",
			BirthDate:      day(1960, 1, 15),
			RetirementDate: day(2025, 6, 1),
		},
		FilingStatus: FilingSingle,
		Accounts: []InvestmentAccount{
			{Name: "IRA", AccountType: "Traditional IRA", Balance: decimal.NewFromInt(400000)},
			{Name: "401k", AccountType: "401k", Balance: decimal.NewFromInt(200000)},
			{Name: "Roth", AccountType: "Roth IRA", Balance: decimal.NewFromInt(100000)},
			{Name: "Brokerage", AccountType: "Taxable Brokerage", Balance: decimal.NewFromInt(150000), CostBasis: decimal.NewFromInt(90000)},
			{Name: "Savings", AccountType: "Savings", Balance: decimal.NewFromInt(50000)},
		},
		AnnualExpenses: decimal.NewFromInt(70000),
	}
}

func TestTotalsByTaxClass(t *testing.T) {
	taxable, basis, deferred, roth := testProfile().TotalsByTaxClass()

	assert.True(t, taxable.Equal(decimal.NewFromInt(200000)), "taxable %s", taxable)
	// brokerage basis plus savings at full basis
	assert.True(t, basis.Equal(decimal.NewFromInt(140000)), "basis %s", basis)
	assert.True(t, deferred.Equal(decimal.NewFromInt(600000)), "deferred %s", deferred)
	assert.True(t, roth.Equal(decimal.NewFromInt(100000)), "roth %s", roth)
}

func TestTotalBalance(t *testing.T) {
	assert.True(t, testProfile().TotalBalance().Equal(decimal.NewFromInt(900000)))
}

func TestProfileValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, testProfile().Validate())
	})

	t.Run("missing primary", func(t *testing.T) {
		p := testProfile()
		p.Primary = nil
		assert.Error(t, p.Validate())
	})

	t.Run("joint without spouse", func(t *testing.T) {
		p := testProfile()
		p.FilingStatus = FilingJointly
		assert.Error(t, p.Validate())
	})

	t.Run("negative balance", func(t *testing.T) {
		p := testProfile()
		p.Accounts[0].Balance = decimal.NewFromInt(-1)
		assert.Error(t, p.Validate())
	})

	t.Run("claiming age out of range", func(t *testing.T) {
		p := testProfile()
		p.Primary.SSClaimingAge = 75
		assert.Error(t, p.Validate())
	})

	t.Run("retirement before birth", func(t *testing.T) {
		p := testProfile()
		p.Primary.RetirementDate = day(1950, 1, 1)
		assert.Error(t, p.Validate())
	})
}

func TestPersonAge(t *testing.T) {
	p := &Person{Name: "A", BirthDate: day(1960, 6, 15)}

	assert.Equal(t, 63, p.Age(day(2024, 6, 14)))
	assert.Equal(t, 64, p.Age(day(2024, 6, 15)))
	assert.Equal(t, 64, p.Age(day(2024, 12, 31)))
}

func TestPersonLifeExpectancyDefault(t *testing.T) {
	p := &Person{Name: "A"}
	assert.Equal(t, 95, p.LifeExpectancy())
	p.LifeExpectancyAge = 88
	assert.Equal(t, 88, p.LifeExpectancy())
}

func TestBudgetScheduleTotals(t *testing.T) {
	b := &BudgetSchedule{
		Current: map[string]BudgetItem{
			"housing": {Amount: decimal.NewFromInt(30000)},
			"living":  {Amount: decimal.NewFromInt(40000)},
		},
	}
	assert.True(t, b.CurrentTotal().Equal(decimal.NewFromInt(70000)))
	// no future schedule falls back to current
	assert.True(t, b.FutureTotal().Equal(decimal.NewFromInt(70000)))

	b.Future = map[string]BudgetItem{
		"living": {Amount: decimal.NewFromInt(50000)},
	}
	assert.True(t, b.FutureTotal().Equal(decimal.NewFromInt(50000)))
}

func TestBudgetItemAnnualized(t *testing.T) {
	tests := []struct {
		name     string
		item     BudgetItem
		expected int64
	}{
		{"annual by default", BudgetItem{Amount: decimal.NewFromInt(42000)}, 42000},
		{"explicit annual", BudgetItem{Amount: decimal.NewFromInt(42000), Frequency: FrequencyAnnual}, 42000},
		{"monthly scales by 12", BudgetItem{Amount: decimal.NewFromInt(3500), Frequency: FrequencyMonthly}, 42000},
		{"monthly case insensitive", BudgetItem{Amount: decimal.NewFromInt(1000), Frequency: "Monthly"}, 12000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.item.Annualized().Equal(decimal.NewFromInt(tc.expected)),
				"got %s", tc.item.Annualized())
		})
	}
}

func TestBudgetScheduleSplitsInflationComponents(t *testing.T) {
	b := &BudgetSchedule{
		Current: map[string]BudgetItem{
			"mortgage": {Amount: decimal.NewFromInt(2000), Frequency: FrequencyMonthly},
			"living":   {Amount: decimal.NewFromInt(40000), InflationAdjusted: true},
		},
	}

	fixed, adjusted := b.CurrentTotals()
	assert.True(t, fixed.Equal(decimal.NewFromInt(24000)), "fixed %s", fixed)
	assert.True(t, adjusted.Equal(decimal.NewFromInt(40000)), "adjusted %s", adjusted)
	assert.True(t, b.CurrentTotal().Equal(decimal.NewFromInt(64000)))
}

func TestIncomeStreamActiveIn(t *testing.T) {
	s := &IncomeStream{Name: "rental", StartYear: 2025, EndYear: 2030}
	assert.False(t, s.ActiveIn(2024))
	assert.True(t, s.ActiveIn(2025))
	assert.True(t, s.ActiveIn(2030))
	assert.False(t, s.ActiveIn(2031))

	open := &IncomeStream{Name: "annuity"}
	assert.True(t, open.ActiveIn(1990))
	assert.True(t, open.ActiveIn(2100))
}

func TestFutureExpenseActiveIn(t *testing.T) {
	oneOff := &FutureExpense{Name: "roof", StartYear: 2026}
	assert.False(t, oneOff.ActiveIn(2025))
	assert.True(t, oneOff.ActiveIn(2026))
	assert.False(t, oneOff.ActiveIn(2027))

	ranged := &FutureExpense{Name: "college", StartYear: 2026, EndYear: 2029}
	assert.True(t, ranged.ActiveIn(2029))
	assert.False(t, ranged.ActiveIn(2030))
}

func TestDefaultStateTaxRate(t *testing.T) {
	tests := []struct {
		state    string
		expected float64
	}{
		{"NY", 0.055},
		{"ny", 0.055},
		{"FL", 0},
		{"TX", 0},
		{"PA", 0.0307},
		{"OH", 0.05}, // unlisted states fall back to 5%
	}
	for _, tc := range tests {
		rate := DefaultStateTaxRate(tc.state)
		assert.True(t, rate.Equal(decimal.NewFromFloat(tc.expected)),
			"%s: got %s", tc.state, rate)
	}
}

func TestBalancesByAssetClass(t *testing.T) {
	p := testProfile()
	p.Accounts[0].AssetClass = "stocks"
	p.Accounts[1].AssetClass = "stocks"
	p.Accounts[2].AssetClass = "bonds"
	p.Accounts[3].AssetClass = "stocks"
	// savings left unclassified

	byClass := p.BalancesByAssetClass()
	assert.True(t, byClass["stocks"].Equal(decimal.NewFromInt(750000)))
	assert.True(t, byClass["bonds"].Equal(decimal.NewFromInt(100000)))
	assert.True(t, byClass["other"].Equal(decimal.NewFromInt(50000)))
}
