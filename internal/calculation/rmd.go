package calculation

import (
	"github.com/shopspring/decimal"
)

// RMDDivisor returns the Uniform Lifetime Table distribution period for an
// age. Ages below the table's first entry return the first entry's value;
// ages beyond the last entry clamp to the last entry.
func RMDDivisor(age int) float64 {
	if age < 72 {
		age = 72
	}
	if age > rmdMaxAge {
		age = rmdMaxAge
	}
	return rmdDivisors[age]
}

// CalculateRMD returns the required minimum distribution for one person's
// tax-deferred balance at the given age. Below the RMD start age (73) the
// requirement is zero.
//
// When two spouses share a combined traditional balance, each spouse's RMD
// must be computed from half of the ORIGINAL combined balance. Computing
// the second spouse's RMD from a balance already reduced by the first
// spouse's RMD understates the combined requirement.
func CalculateRMD(age int, balance float64) float64 {
	if age < rmdStartAge || balance <= 0 {
		return 0
	}
	return balance / RMDDivisor(age)
}

// CalculateRMDDecimal is the ledger-precision variant of CalculateRMD.
func CalculateRMDDecimal(age int, balance decimal.Decimal) decimal.Decimal {
	if age < rmdStartAge || !balance.IsPositive() {
		return decimal.Zero
	}
	divisor := decimal.NewFromFloat(RMDDivisor(age))
	return balance.Div(divisor)
}

// HouseholdRMD sums per-spouse RMDs over a combined tax-deferred balance,
// splitting the undiminished balance evenly between spouses. With a nil or
// absent second age the full balance belongs to the first person.
func HouseholdRMD(primaryAge int, spouseAge int, combinedBalance float64, hasSpouse bool) float64 {
	if !hasSpouse {
		return CalculateRMD(primaryAge, combinedBalance)
	}
	half := combinedBalance / 2
	return CalculateRMD(primaryAge, half) + CalculateRMD(spouseAge, half)
}
