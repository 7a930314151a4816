// Package entities declares the HR resources. Dates are YYYY-MM-DD strings,
// money is a decimal.
package entities

import "time"

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// before reports whether date a is strictly before date b. Unparsable dates
// are left to field validation.
func before(a, b string) bool {
	ta, errA := time.Parse(dateLayout, a)
	tb, errB := time.Parse(dateLayout, b)
	if errA != nil || errB != nil {
		return false
	}
	return ta.Before(tb)
}

func clockBefore(a, b string) bool {
	ta, errA := time.Parse(clockLayout, a)
	tb, errB := time.Parse(clockLayout, b)
	if errA != nil || errB != nil {
		return false
	}
	return ta.Before(tb)
}

// Check message ids.
const (
	msgEndBeforeStart    = "Validation.end_before_start"
	msgClockOutBeforeIn  = "Validation.clock_out_before_in"
	msgNetSalaryMismatch = "Validation.net_salary_mismatch"
)
