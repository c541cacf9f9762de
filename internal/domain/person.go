package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planwell/retirement-engine/pkg/dateutil"
)

// Person represents one member of the household being projected.
type Person struct {
	Name           string    `yaml:"name" json:"name"`
	BirthDate      time.Time `yaml:"birth_date" json:"birth_date"`
	RetirementDate time.Time `yaml:"retirement_date" json:"retirement_date"`

	// AnnualSalary is gross employment income while working.
	AnnualSalary decimal.Decimal `yaml:"annual_salary" json:"annual_salary"`

	// Contribution401kRate is the fraction of salary deferred into
	// tax-deferred accounts each working year.
	Contribution401kRate decimal.Decimal `yaml:"contribution_401k_rate" json:"contribution_401k_rate"`

	// EmployerMatchRate is the fraction of salary the employer adds on top
	// of the employee deferral.
	EmployerMatchRate decimal.Decimal `yaml:"employer_match_rate" json:"employer_match_rate"`

	// SSMonthlyBenefit is the estimated monthly Social Security benefit at
	// full retirement age, in today's dollars.
	SSMonthlyBenefit decimal.Decimal `yaml:"ss_monthly_benefit" json:"ss_monthly_benefit"`

	// SSClaimingAge is the age benefits begin. Zero means full retirement age.
	SSClaimingAge int `yaml:"ss_claiming_age" json:"ss_claiming_age"`

	// PensionAnnual is a fixed annual pension paid from retirement onward.
	PensionAnnual decimal.Decimal `yaml:"pension_annual" json:"pension_annual"`

	// LifeExpectancyAge bounds break-even analyses. Zero means 95.
	LifeExpectancyAge int `yaml:"life_expectancy_age" json:"life_expectancy_age"`
}

// NewPerson creates a Person with required fields set.
func NewPerson(name string, birthDate, retirementDate time.Time) *Person {
	return &Person{
		Name:           name,
		BirthDate:      birthDate,
		RetirementDate: retirementDate,
	}
}

// Age returns the person's age at the given date.
func (p *Person) Age(at time.Time) int {
	return dateutil.Age(p.BirthDate, at)
}

// FullRetirementAge returns the Social Security full retirement age.
func (p *Person) FullRetirementAge() int {
	return dateutil.FullRetirementAge(p.BirthDate)
}

// ClaimingAge returns the configured Social Security claiming age, falling
// back to full retirement age when unset.
func (p *Person) ClaimingAge() int {
	if p.SSClaimingAge > 0 {
		return p.SSClaimingAge
	}
	return p.FullRetirementAge()
}

// LifeExpectancy returns the planning horizon age, defaulting to 95.
func (p *Person) LifeExpectancy() int {
	if p.LifeExpectancyAge > 0 {
		return p.LifeExpectancyAge
	}
	return 95
}

// IsRetired reports whether the person has retired as of the given date.
func (p *Person) IsRetired(at time.Time) bool {
	return !at.Before(p.RetirementDate)
}

// Validate checks the person's fields for internal consistency.
func (p *Person) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("person name is required")
	}
	if p.BirthDate.IsZero() {
		return fmt.Errorf("person %s: birth date is required", p.Name)
	}
	if p.RetirementDate.IsZero() {
		return fmt.Errorf("person %s: retirement date is required", p.Name)
	}
	if p.RetirementDate.Before(p.BirthDate) {
		return fmt.Errorf("person %s: retirement date precedes birth date", p.Name)
	}
	if p.SSClaimingAge != 0 && (p.SSClaimingAge < 62 || p.SSClaimingAge > 70) {
		return fmt.Errorf("person %s: social security claiming age must be between 62 and 70", p.Name)
	}
	if p.AnnualSalary.IsNegative() {
		return fmt.Errorf("person %s: annual salary cannot be negative", p.Name)
	}
	if p.Contribution401kRate.IsNegative() || p.Contribution401kRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("person %s: 401k contribution rate must be between 0 and 1", p.Name)
	}
	return nil
}
