package leave

import "time"

// CalculateDays returns the number of balance days a request consumes.
// The range is inclusive on both ends and every Saturday or Sunday in
// it counts twice, so a full calendar week costs 9 days, not 7. A
// half-day request knocks 0.5 off the total.
func CalculateDays(start, end time.Time, halfDay bool) float64 {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return 0
	}

	// Count by calendar days rather than elapsed hours so DST
	// transitions in the inputs' location cannot skew the total.
	var days float64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days++
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			days++
		}
	}

	if halfDay {
		days -= 0.5
	}
	return days
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
