package dateutil

import "time"

const DayLayout = "2006-01-02"

// Day formats the calendar date of t as seen in loc.
func Day(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// DaysBetween returns the number of calendar days from a to b in loc. The result is negative if b
// is before a. Calendar arithmetic is used, so DST transitions never produce a partial day.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()

	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)

	return int(db.Sub(da).Hours() / 24)
}

func NextDayAt(t time.Time, hour int) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}
