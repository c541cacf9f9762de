package dateutil

import (
	"time"
)

// Age calculates the age at a given date
func Age(birthDate, atDate time.Time) int {
	age := atDate.Year() - birthDate.Year()
	if atDate.Month() < birthDate.Month() ||
		(atDate.Month() == birthDate.Month() && atDate.Day() < birthDate.Day()) {
		age--
	}
	return age
}

// FullRetirementAge calculates the Social Security Full Retirement Age based on birth year
func FullRetirementAge(birthDate time.Time) int {
	birthYear := birthDate.Year()

	switch {
	case birthYear <= 1942:
		return 65
	case birthYear >= 1943 && birthYear <= 1959:
		return 66
	default: // 1960 and later
		return 67
	}
}

// IsMedicareEligible checks if a person is eligible for Medicare (age 65+)
func IsMedicareEligible(birthDate, atDate time.Time) bool {
	return Age(birthDate, atDate) >= 65
}

// YearsUntilDate calculates the number of years between two dates
func YearsUntilDate(fromDate, toDate time.Time) float64 {
	duration := toDate.Sub(fromDate)
	return duration.Hours() / 24 / 365.25
}

// MonthsUntilDate calculates the number of months between two dates
func MonthsUntilDate(fromDate, toDate time.Time) int {
	years := YearsUntilDate(fromDate, toDate)
	return int(years * 12)
}

// AddYears adds a specified number of years to a date
func AddYears(date time.Time, years int) time.Time {
	return date.AddDate(years, 0, 0)
}

// BeginningOfYear returns the first day of the year for a given date
func BeginningOfYear(date time.Time) time.Time {
	return time.Date(date.Year(), 1, 1, 0, 0, 0, 0, date.Location())
}
