package service

import "time"

// The exchange runs on US Eastern time. Offsets are applied manually
// so the oracle does not depend on the host tzdata.
const (
	standardOffset = -5 * time.Hour // EST
	daylightOffset = -4 * time.Hour // EDT

	sessionOpenMinute  = 9*60 + 30 // 09:30
	sessionCloseMinute = 16 * 60   // 16:00
)

// MarketOpen reports whether the exchange's regular session is active
// at t: Monday-Friday, [09:30, 16:00) local exchange time. Pure and
// total for any valid timestamp.
func MarketOpen(t time.Time) bool {
	local := t.UTC().Add(easternOffset(t.UTC()))

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	minute := local.Hour()*60 + local.Minute()
	return minute >= sessionOpenMinute && minute < sessionCloseMinute
}

// easternOffset selects EDT or EST using the US daylight-saving rule:
// second Sunday of March 02:00 local through first Sunday of November
// 02:00 local.
func easternOffset(utc time.Time) time.Duration {
	year := utc.Year()
	// 02:00 EST == 07:00 UTC at the spring switch, 02:00 EDT == 06:00 UTC in fall.
	dstStart := nthWeekday(year, time.March, time.Sunday, 2).Add(7 * time.Hour)
	dstEnd := nthWeekday(year, time.November, time.Sunday, 1).Add(6 * time.Hour)

	if !utc.Before(dstStart) && utc.Before(dstEnd) {
		return daylightOffset
	}
	return standardOffset
}

// nthWeekday returns midnight UTC of the n-th given weekday of the month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+(n-1)*7)
}
