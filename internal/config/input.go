package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/planwell/retirement-engine/internal/calculation"
	"github.com/planwell/retirement-engine/internal/domain"
)

// Input is the top-level analysis configuration file: the household
// profile plus run settings and optional assumption overrides.
type Input struct {
	Profile    domain.FinancialProfile `yaml:"profile" json:"profile"`
	Simulation SimulationSettings      `yaml:"simulation" json:"simulation"`

	// Assumptions overrides the default market assumptions when present.
	Assumptions *domain.MarketAssumptions `yaml:"assumptions,omitempty" json:"assumptions,omitempty"`

	// MarketPeriods optionally schedules assumption regimes.
	MarketPeriods *domain.MarketPeriods `yaml:"market_periods,omitempty" json:"market_periods,omitempty"`
}

// SimulationSettings are the run parameters for a simulation.
type SimulationSettings struct {
	Years       int `yaml:"years" json:"years"`
	Simulations int `yaml:"simulations" json:"simulations"`

	// SpendingModel is constant_real or budget. Empty means constant_real.
	SpendingModel string `yaml:"spending_model,omitempty" json:"spending_model,omitempty"`

	// Scenario picks an allocation preset (conservative/moderate/
	// aggressive) when no explicit assumptions are given.
	Scenario string `yaml:"scenario,omitempty" json:"scenario,omitempty"`

	Seed             int64   `yaml:"seed,omitempty" json:"seed,omitempty"`
	EffectiveTaxRate float64 `yaml:"effective_tax_rate,omitempty" json:"effective_tax_rate,omitempty"`
}

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads configuration from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*Input, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var input Input
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ip.ApplyDefaults(&input)
	if err := ip.ValidateInput(&input); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &input, nil
}

// ApplyDefaults fills unset fields with standard values so downstream code
// never sees zero settings.
func (ip *InputParser) ApplyDefaults(input *Input) {
	if status, err := domain.ParseFilingStatus(string(input.Profile.FilingStatus)); err == nil {
		input.Profile.FilingStatus = status
	}
	if input.Profile.State == "" {
		input.Profile.State = "NY"
	}
	if input.Profile.StateTaxRate.IsZero() {
		input.Profile.StateTaxRate = domain.DefaultStateTaxRate(input.Profile.State)
	}
	if input.Simulation.Simulations == 0 {
		input.Simulation.Simulations = 1000
	}
	if input.Simulation.SpendingModel == "" {
		input.Simulation.SpendingModel = string(calculation.SpendingConstantReal)
	}
}

// ResolveAssumptions returns the market assumptions for a run: explicit
// assumptions win, then a named scenario preset, then the defaults.
func (ip *InputParser) ResolveAssumptions(input *Input) (domain.MarketAssumptions, error) {
	if input.Assumptions != nil {
		return *input.Assumptions, nil
	}
	if input.Simulation.Scenario != "" {
		return domain.ScenarioAssumptions(input.Simulation.Scenario)
	}
	return domain.DefaultMarketAssumptions(), nil
}

// ValidateInput validates the loaded configuration
func (ip *InputParser) ValidateInput(input *Input) error {
	if err := input.Profile.Validate(); err != nil {
		return fmt.Errorf("profile validation failed: %w", err)
	}

	if input.Simulation.Years < 0 {
		return fmt.Errorf("simulation years cannot be negative")
	}
	if input.Simulation.Simulations < calculation.MinSimulations ||
		input.Simulation.Simulations > calculation.MaxSimulations {
		return fmt.Errorf("simulations must be between %d and %d",
			calculation.MinSimulations, calculation.MaxSimulations)
	}
	switch calculation.SpendingModel(input.Simulation.SpendingModel) {
	case calculation.SpendingConstantReal, calculation.SpendingBudget:
	default:
		return fmt.Errorf("spending model must be %q or %q",
			calculation.SpendingConstantReal, calculation.SpendingBudget)
	}
	if input.Simulation.EffectiveTaxRate < 0 || input.Simulation.EffectiveTaxRate >= 1 {
		return fmt.Errorf("effective tax rate must be in [0, 1)")
	}

	if input.Assumptions != nil {
		if err := input.Assumptions.Validate(); err != nil {
			return fmt.Errorf("assumptions validation failed: %w", err)
		}
	}
	if input.MarketPeriods != nil {
		if err := input.MarketPeriods.Validate(); err != nil {
			return fmt.Errorf("market periods validation failed: %w", err)
		}
	}
	return nil
}

// CreateExampleInput creates an example configuration for the init command.
func (ip *InputParser) CreateExampleInput() *Input {
	primaryBirth, _ := time.Parse("2006-01-02", "1968-04-12")
	spouseBirth, _ := time.Parse("2006-01-02", "1970-09-03")
	primaryRetirement, _ := time.Parse("2006-01-02", "2033-06-30")
	spouseRetirement, _ := time.Parse("2006-01-02", "2035-01-31")

	return &Input{
		Profile: domain.FinancialProfile{
			Primary: &domain.Person{
				Name:                 "Alex",
				BirthDate:            primaryBirth,
				RetirementDate:       primaryRetirement,
				AnnualSalary:         decimal.NewFromInt(145000),
				Contribution401kRate: decimal.NewFromFloat(0.10),
				EmployerMatchRate:    decimal.NewFromFloat(0.04),
				SSMonthlyBenefit:     decimal.NewFromInt(2800),
				SSClaimingAge:        67,
			},
			Spouse: &domain.Person{
				Name:                 "Jordan",
				BirthDate:            spouseBirth,
				RetirementDate:       spouseRetirement,
				AnnualSalary:         decimal.NewFromInt(98000),
				Contribution401kRate: decimal.NewFromFloat(0.08),
				EmployerMatchRate:    decimal.NewFromFloat(0.03),
				SSMonthlyBenefit:     decimal.NewFromInt(2100),
				SSClaimingAge:        67,
			},
			FilingStatus: domain.FilingJointly,
			State:        "NY",
			StateTaxRate: decimal.NewFromFloat(0.055),
			Accounts: []domain.InvestmentAccount{
				{Name: "His 401k", AccountType: "401k", Balance: decimal.NewFromInt(620000), AssetClass: "stocks"},
				{Name: "Her Traditional IRA", AccountType: "Traditional IRA", Balance: decimal.NewFromInt(310000), AssetClass: "stocks"},
				{Name: "Roth IRA", AccountType: "Roth IRA", Balance: decimal.NewFromInt(140000), AssetClass: "stocks"},
				{Name: "Brokerage", AccountType: "Taxable Brokerage", Balance: decimal.NewFromInt(250000), CostBasis: decimal.NewFromInt(175000), AssetClass: "stocks"},
				{Name: "Savings", AccountType: "Savings", Balance: decimal.NewFromInt(60000), AssetClass: "cash"},
			},
			AnnualExpenses: decimal.NewFromInt(110000),
			Budget: &domain.BudgetSchedule{
				Current: map[string]domain.BudgetItem{
					"housing":    {Amount: decimal.NewFromInt(3500), Frequency: domain.FrequencyMonthly, InflationAdjusted: true},
					"living":     {Amount: decimal.NewFromInt(4000), Frequency: domain.FrequencyMonthly, InflationAdjusted: true},
					"travel":     {Amount: decimal.NewFromInt(12000), InflationAdjusted: true},
					"healthcare": {Amount: decimal.NewFromInt(8000), InflationAdjusted: true},
				},
				Future: map[string]domain.BudgetItem{
					"housing":    {Amount: decimal.NewFromInt(2500), Frequency: domain.FrequencyMonthly, InflationAdjusted: true},
					"living":     {Amount: decimal.NewFromInt(40000), InflationAdjusted: true},
					"travel":     {Amount: decimal.NewFromInt(18000), InflationAdjusted: true},
					"healthcare": {Amount: decimal.NewFromInt(14000), InflationAdjusted: true},
				},
			},
		},
		Simulation: SimulationSettings{
			Years:         35,
			Simulations:   5000,
			SpendingModel: string(calculation.SpendingConstantReal),
			Scenario:      "moderate",
		},
	}
}
