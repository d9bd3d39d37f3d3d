package domain

import "time"

// AgeAtDeath returns completed years between dob and dod. A death date
// before the birth date yields 0 rather than an error.
func AgeAtDeath(dob, dod time.Time) int {
	age := dod.Year() - dob.Year()
	if dod.Month() < dob.Month() || (dod.Month() == dob.Month() && dod.Day() < dob.Day()) {
		age--
	}
	return max(age, 0)
}
