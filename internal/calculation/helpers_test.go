package calculation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/planwell/retirement-engine/internal/domain"
)

// pinNow fixes the projection start date so ages and calendar years are
// stable in assertions.
func pinNow(t *testing.T) {
	t.Helper()
	SetNowFunc(func() time.Time {
		return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	})
	t.Cleanup(func() { SetNowFunc(time.Now) })
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// retiredCoupleProfile is a married household already in retirement with a
// $1,000,000 portfolio across all three tax classes.
func retiredCoupleProfile() *domain.FinancialProfile {
	return &domain.FinancialProfile{
		Primary: &domain.Person{
			Name:             "Pat",
			BirthDate:        date(1958, 3, 1),
			RetirementDate:   date(2020, 7, 1),
			SSMonthlyBenefit: decimal.NewFromInt(2500),
			SSClaimingAge:    65,
		},
		Spouse: &domain.Person{
			Name:             "Sam",
			BirthDate:        date(1958, 9, 20),
			RetirementDate:   date(2020, 7, 1),
			SSMonthlyBenefit: decimal.NewFromInt(2000),
			SSClaimingAge:    65,
		},
		FilingStatus: domain.FilingJointly,
		State:        "NY",
		Accounts: []domain.InvestmentAccount{
			{Name: "IRA", AccountType: "Traditional IRA", Balance: decimal.NewFromInt(500000)},
			{Name: "Roth", AccountType: "Roth IRA", Balance: decimal.NewFromInt(150000)},
			{Name: "Brokerage", AccountType: "Taxable Brokerage", Balance: decimal.NewFromInt(300000), CostBasis: decimal.NewFromInt(200000)},
			{Name: "Savings", AccountType: "Savings", Balance: decimal.NewFromInt(50000)},
		},
		AnnualExpenses: decimal.NewFromInt(90000),
	}
}

// depletionProfile is a single retiree spending far beyond what a small
// zero-growth portfolio can support.
func depletionProfile() *domain.FinancialProfile {
	return &domain.FinancialProfile{
		Primary: &domain.Person{
			Name:           "Lee",
			BirthDate:      date(1950, 2, 1),
			RetirementDate: date(2012, 1, 1),
		},
		FilingStatus: domain.FilingSingle,
		Accounts: []domain.InvestmentAccount{
			{Name: "Savings", AccountType: "Savings", Balance: decimal.NewFromInt(100000)},
		},
		AnnualExpenses: decimal.NewFromInt(72000),
	}
}

// flatAssumptions is an all-cash portfolio with zero return, zero
// volatility and zero inflation, so every path is identical.
func flatAssumptions() domain.MarketAssumptions {
	ma := domain.DefaultMarketAssumptions()
	ma.Cash = domain.AssetAssumption{Mean: 0, StdDev: 0}
	ma.Allocation = map[string]float64{"cash": 1.0}
	ma.Inflation = domain.AssetAssumption{Mean: 0, StdDev: 0}
	return ma
}

func newTestModel(t *testing.T, profile *domain.FinancialProfile) *RetirementModel {
	t.Helper()
	model, err := NewRetirementModel(profile)
	require.NoError(t, err)
	return model
}
