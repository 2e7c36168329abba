// Package sobriety formats the time since a member's clean date for the
// directory. Granularity descends: years (with a month remainder) once a
// full 365.25-day year has passed, months once 30 days have passed, days
// otherwise.
package sobriety

import (
	"fmt"
	"time"
)

const (
	daysPerYear  = 365.25
	daysPerMonth = 30
)

// Describe returns a human-readable sobriety duration, e.g. "29 days",
// "1 month", "12 months", "1 year, 3 months". Returns "" for a zero or
// future clean date.
func Describe(cleanDate, now time.Time) string {
	if cleanDate.IsZero() || cleanDate.After(now) {
		return ""
	}

	days := int(now.Sub(cleanDate).Hours() / 24)

	years := int(float64(days) / daysPerYear)
	if years >= 1 {
		remainder := float64(days) - float64(years)*daysPerYear
		months := int(remainder / daysPerMonth)
		if months >= 1 {
			return fmt.Sprintf("%s, %s", plural(years, "year"), plural(months, "month"))
		}
		return plural(years, "year")
	}

	if months := days / daysPerMonth; months >= 1 {
		return plural(months, "month")
	}

	return plural(days, "day")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
