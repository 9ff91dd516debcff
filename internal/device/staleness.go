package device

import "time"

// MonthsBetween counts calendar month boundaries from updated to now, ignoring
// the day of month.
func MonthsBetween(updated, now time.Time) int {
	return (now.Year()-updated.Year())*12 + int(now.Month()-updated.Month())
}

// IsStale reports whether updated falls in a calendar month before now's.
func IsStale(updated, now time.Time) bool {
	return MonthsBetween(updated, now) >= 1
}
