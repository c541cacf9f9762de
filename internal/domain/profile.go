package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FilingStatus identifies the federal filing status used for tax tables.
type FilingStatus string

const (
	FilingSingle  FilingStatus = "single"
	FilingJointly FilingStatus = "mfj"
)

// ParseFilingStatus normalizes common spellings of the filing status.
func ParseFilingStatus(s string) (FilingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mfj", "married", "married_filing_jointly", "joint":
		return FilingJointly, nil
	case "single":
		return FilingSingle, nil
	default:
		return "", fmt.Errorf("unknown filing status %q", s)
	}
}

// TaxClass groups accounts by how withdrawals are taxed.
type TaxClass int

const (
	// TaxClassTaxable covers brokerage, savings and checking accounts.
	// Withdrawals realize capital gains on the appreciation only.
	TaxClassTaxable TaxClass = iota
	// TaxClassDeferred covers traditional IRA and workplace plans.
	// Withdrawals are ordinary income and subject to RMDs.
	TaxClassDeferred
	// TaxClassRoth covers Roth accounts. Qualified withdrawals are tax free.
	TaxClassRoth
)

func (tc TaxClass) String() string {
	switch tc {
	case TaxClassTaxable:
		return "taxable"
	case TaxClassDeferred:
		return "tax_deferred"
	case TaxClassRoth:
		return "roth"
	default:
		return "unknown"
	}
}

// accountTypeClasses maps the account type labels used in profiles to tax
// classes. Unrecognized types fall back to taxable.
var accountTypeClasses = map[string]TaxClass{
	"traditional ira":   TaxClassDeferred,
	"401k":              TaxClassDeferred,
	"403b":              TaxClassDeferred,
	"457b":              TaxClassDeferred,
	"roth ira":          TaxClassRoth,
	"roth 401k":         TaxClassRoth,
	"taxable brokerage": TaxClassTaxable,
	"brokerage":         TaxClassTaxable,
	"savings":           TaxClassTaxable,
	"checking":          TaxClassTaxable,
}

// ClassifyAccountType resolves an account type label to its tax class.
func ClassifyAccountType(accountType string) TaxClass {
	if tc, ok := accountTypeClasses[strings.ToLower(strings.TrimSpace(accountType))]; ok {
		return tc
	}
	return TaxClassTaxable
}

// InvestmentAccount is a single account in the household portfolio.
type InvestmentAccount struct {
	Name        string          `yaml:"name" json:"name"`
	AccountType string          `yaml:"account_type" json:"account_type"`
	Balance     decimal.Decimal `yaml:"balance" json:"balance"`

	// CostBasis applies to taxable accounts only. Zero means the balance
	// is all basis (no embedded gain).
	CostBasis decimal.Decimal `yaml:"cost_basis,omitempty" json:"cost_basis,omitempty"`

	// AssetClass is used by rebalancing suggestions (stocks, bonds, cash...).
	AssetClass string `yaml:"asset_class,omitempty" json:"asset_class,omitempty"`
}

// TaxClass returns the tax treatment of this account.
func (a *InvestmentAccount) TaxClass() TaxClass {
	return ClassifyAccountType(a.AccountType)
}

// IncomeStream is recurring non-employment income such as rental income.
type IncomeStream struct {
	Name              string          `yaml:"name" json:"name"`
	AnnualAmount      decimal.Decimal `yaml:"annual_amount" json:"annual_amount"`
	StartYear         int             `yaml:"start_year,omitempty" json:"start_year,omitempty"`
	EndYear           int             `yaml:"end_year,omitempty" json:"end_year,omitempty"`
	Taxable           bool            `yaml:"taxable" json:"taxable"`
	InflationAdjusted bool            `yaml:"inflation_adjusted" json:"inflation_adjusted"`
}

// ActiveIn reports whether the stream pays out in the given calendar year.
func (s *IncomeStream) ActiveIn(year int) bool {
	if s.StartYear > 0 && year < s.StartYear {
		return false
	}
	if s.EndYear > 0 && year > s.EndYear {
		return false
	}
	return true
}

// FutureExpense is a one-time or bounded expense such as college tuition.
type FutureExpense struct {
	Name         string          `yaml:"name" json:"name"`
	AnnualAmount decimal.Decimal `yaml:"annual_amount" json:"annual_amount"`
	StartYear    int             `yaml:"start_year" json:"start_year"`
	EndYear      int             `yaml:"end_year,omitempty" json:"end_year,omitempty"`
}

// ActiveIn reports whether the expense applies in the given calendar year.
func (e *FutureExpense) ActiveIn(year int) bool {
	if year < e.StartYear {
		return false
	}
	end := e.EndYear
	if end == 0 {
		end = e.StartYear
	}
	return year <= end
}

// Budget line frequencies. An empty frequency means annual.
const (
	FrequencyAnnual  = "annual"
	FrequencyMonthly = "monthly"
)

// BudgetItem is one line of a household budget, in today's dollars.
type BudgetItem struct {
	Amount            decimal.Decimal `yaml:"amount" json:"amount"`
	Frequency         string          `yaml:"frequency,omitempty" json:"frequency,omitempty"`
	InflationAdjusted bool            `yaml:"inflation_adjusted" json:"inflation_adjusted"`
}

// Annualized returns the line's annual amount; monthly lines scale by 12.
func (bi *BudgetItem) Annualized() decimal.Decimal {
	if strings.EqualFold(strings.TrimSpace(bi.Frequency), FrequencyMonthly) {
		return bi.Amount.Mul(decimal.NewFromInt(12))
	}
	return bi.Amount
}

// BudgetSchedule holds budget lines for the working years and for
// retirement. Spending switches from Current to Future when the primary
// person retires.
type BudgetSchedule struct {
	Current map[string]BudgetItem `yaml:"current" json:"current"`
	Future  map[string]BudgetItem `yaml:"future,omitempty" json:"future,omitempty"`
}

// sumBudget splits a budget phase into fixed-nominal and
// inflation-adjusted annual totals, in today's dollars.
func sumBudget(items map[string]BudgetItem) (fixed, adjusted decimal.Decimal) {
	for _, item := range items {
		if item.InflationAdjusted {
			adjusted = adjusted.Add(item.Annualized())
		} else {
			fixed = fixed.Add(item.Annualized())
		}
	}
	return fixed, adjusted
}

// CurrentTotals returns working-year spending split into fixed-nominal and
// inflation-adjusted components.
func (b *BudgetSchedule) CurrentTotals() (fixed, adjusted decimal.Decimal) {
	return sumBudget(b.Current)
}

// FutureTotals returns retirement spending split the same way, falling back
// to the current schedule when no future schedule is given.
func (b *BudgetSchedule) FutureTotals() (fixed, adjusted decimal.Decimal) {
	if len(b.Future) == 0 {
		return b.CurrentTotals()
	}
	return sumBudget(b.Future)
}

// CurrentTotal returns total annual spending during working years.
func (b *BudgetSchedule) CurrentTotal() decimal.Decimal {
	fixed, adjusted := b.CurrentTotals()
	return fixed.Add(adjusted)
}

// FutureTotal returns total annual spending in retirement.
func (b *BudgetSchedule) FutureTotal() decimal.Decimal {
	fixed, adjusted := b.FutureTotals()
	return fixed.Add(adjusted)
}

// Child is a dependent; used by callers that schedule education expenses.
type Child struct {
	Name      string `yaml:"name" json:"name"`
	BirthYear int    `yaml:"birth_year,omitempty" json:"birth_year,omitempty"`
}

// Liability is outstanding debt carried by the household.
type Liability struct {
	Name         string          `yaml:"name" json:"name"`
	Balance      decimal.Decimal `yaml:"balance" json:"balance"`
	InterestRate decimal.Decimal `yaml:"interest_rate,omitempty" json:"interest_rate,omitempty"`
}

// HomeProperty is real estate held outside the investment portfolio.
type HomeProperty struct {
	Name            string          `yaml:"name" json:"name"`
	Value           decimal.Decimal `yaml:"value" json:"value"`
	MortgageBalance decimal.Decimal `yaml:"mortgage_balance,omitempty" json:"mortgage_balance,omitempty"`
}

// FinancialProfile is the complete household input to a projection.
type FinancialProfile struct {
	Primary *Person `yaml:"primary" json:"primary"`
	Spouse  *Person `yaml:"spouse,omitempty" json:"spouse,omitempty"`

	FilingStatus FilingStatus `yaml:"filing_status" json:"filing_status"`
	State        string       `yaml:"state,omitempty" json:"state,omitempty"`

	Accounts       []InvestmentAccount `yaml:"accounts" json:"accounts"`
	IncomeStreams  []IncomeStream      `yaml:"income_streams,omitempty" json:"income_streams,omitempty"`
	FutureExpenses []FutureExpense     `yaml:"future_expenses,omitempty" json:"future_expenses,omitempty"`
	Children       []Child             `yaml:"children,omitempty" json:"children,omitempty"`
	Liabilities    []Liability         `yaml:"liabilities,omitempty" json:"liabilities,omitempty"`
	HomeProperties []HomeProperty      `yaml:"home_properties,omitempty" json:"home_properties,omitempty"`

	// AnnualExpenses drives constant-real spending when no budget is given.
	AnnualExpenses decimal.Decimal `yaml:"annual_expenses" json:"annual_expenses"`

	// Budget, when present, replaces AnnualExpenses with a working/retired
	// spending schedule.
	Budget *BudgetSchedule `yaml:"budget,omitempty" json:"budget,omitempty"`

	// TargetAnnualIncome and RiskTolerance are planning hints carried
	// through for reporting; the engine does not act on them.
	TargetAnnualIncome decimal.Decimal `yaml:"target_annual_income,omitempty" json:"target_annual_income,omitempty"`
	RiskTolerance      string          `yaml:"risk_tolerance,omitempty" json:"risk_tolerance,omitempty"`

	// AnnualIRAContribution is saved into tax-deferred accounts each
	// working year on top of 401k deferrals.
	AnnualIRAContribution decimal.Decimal `yaml:"annual_ira_contribution,omitempty" json:"annual_ira_contribution,omitempty"`

	// StateTaxRate is a flat state income tax rate applied to wages. When
	// unset, config loading derives it from State.
	StateTaxRate decimal.Decimal `yaml:"state_tax_rate,omitempty" json:"state_tax_rate,omitempty"`
}

// stateTaxRates are flat effective income tax rates assumed per state when
// a profile does not set an explicit rate. Listed no-income-tax states map
// to zero.
var stateTaxRates = map[string]float64{
	"NY": 0.055,
	"CA": 0.065,
	"NJ": 0.055,
	"CT": 0.055,
	"MA": 0.05,
	"PA": 0.0307,
	"IL": 0.0495,
	"NC": 0.045,
	"CO": 0.044,
	"AZ": 0.025,
	"FL": 0,
	"TX": 0,
	"WA": 0,
	"NV": 0,
	"TN": 0,
	"SD": 0,
	"WY": 0,
	"AK": 0,
	"NH": 0,
}

// DefaultStateTaxRate returns the flat rate assumed for a state code.
// Unlisted states fall back to 5%.
func DefaultStateTaxRate(state string) decimal.Decimal {
	if rate, ok := stateTaxRates[strings.ToUpper(strings.TrimSpace(state))]; ok {
		return decimal.NewFromFloat(rate)
	}
	return decimal.NewFromFloat(0.05)
}

// People returns the household members, skipping a nil spouse.
func (fp *FinancialProfile) People() []*Person {
	people := []*Person{fp.Primary}
	if fp.Spouse != nil {
		people = append(people, fp.Spouse)
	}
	return people
}

// TotalsByTaxClass sums account balances (and taxable cost basis) per tax
// class.
func (fp *FinancialProfile) TotalsByTaxClass() (taxable, basis, deferred, roth decimal.Decimal) {
	for i := range fp.Accounts {
		acct := &fp.Accounts[i]
		switch acct.TaxClass() {
		case TaxClassDeferred:
			deferred = deferred.Add(acct.Balance)
		case TaxClassRoth:
			roth = roth.Add(acct.Balance)
		default:
			taxable = taxable.Add(acct.Balance)
			if acct.CostBasis.IsPositive() {
				basis = basis.Add(decimal.Min(acct.CostBasis, acct.Balance))
			} else {
				basis = basis.Add(acct.Balance)
			}
		}
	}
	return taxable, basis, deferred, roth
}

// TotalBalance sums every account balance.
func (fp *FinancialProfile) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for i := range fp.Accounts {
		total = total.Add(fp.Accounts[i].Balance)
	}
	return total
}

// BalancesByAssetClass groups account balances by asset class for
// rebalancing. Accounts without an asset class are grouped under "other".
func (fp *FinancialProfile) BalancesByAssetClass() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for i := range fp.Accounts {
		class := strings.ToLower(strings.TrimSpace(fp.Accounts[i].AssetClass))
		if class == "" {
			class = "other"
		}
		out[class] = out[class].Add(fp.Accounts[i].Balance)
	}
	return out
}

// Validate checks the profile for internal consistency.
func (fp *FinancialProfile) Validate() error {
	if fp.Primary == nil {
		return fmt.Errorf("profile requires a primary person")
	}
	if err := fp.Primary.Validate(); err != nil {
		return fmt.Errorf("primary: %w", err)
	}
	if fp.Spouse != nil {
		if err := fp.Spouse.Validate(); err != nil {
			return fmt.Errorf("spouse: %w", err)
		}
	}
	if fp.FilingStatus != FilingSingle && fp.FilingStatus != FilingJointly {
		return fmt.Errorf("unknown filing status %q", fp.FilingStatus)
	}
	if fp.FilingStatus == FilingJointly && fp.Spouse == nil {
		return fmt.Errorf("married filing jointly requires a spouse")
	}
	for i := range fp.Accounts {
		acct := &fp.Accounts[i]
		if acct.Balance.IsNegative() {
			return fmt.Errorf("account %s: balance cannot be negative", acct.Name)
		}
		if acct.CostBasis.IsNegative() {
			return fmt.Errorf("account %s: cost basis cannot be negative", acct.Name)
		}
	}
	if fp.AnnualExpenses.IsNegative() {
		return fmt.Errorf("annual expenses cannot be negative")
	}
	return nil
}
