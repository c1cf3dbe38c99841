package common

import (
	"time"
)

// marketTimezone is the US equity market timezone.
const marketTimezone = "America/New_York"

// marketOpenHour/Minute is the regular session open (9:30 ET).
const (
	marketOpenHour   = 9
	marketOpenMinute = 30
)

// IsTradingDay reports whether the given date falls on a weekday.
// Exchange holidays are deliberately not modeled.
func IsTradingDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}

// LastTradingDay returns the most recent weekday on or before the given time.
func LastTradingDay(t time.Time) time.Time {
	current := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	// Walk backwards up to 7 days to find a weekday
	for i := 0; i < 7; i++ {
		if IsTradingDay(current) {
			return current
		}
		current = current.AddDate(0, 0, -1)
	}

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MarketSnapshotDay returns the trading day whose data a market snapshot
// taken at the given instant should reflect. Before the market opens, the
// previous trading day's data is still the freshest available, so requests
// made pre-open reuse yesterday's snapshot.
func MarketSnapshotDay(now time.Time) time.Time {
	loc, err := time.LoadLocation(marketTimezone)
	if err != nil {
		return LastTradingDay(now.UTC())
	}

	local := now.In(loc)
	open := time.Date(local.Year(), local.Month(), local.Day(), marketOpenHour, marketOpenMinute, 0, 0, loc)

	if local.Before(open) {
		return LastTradingDay(local.AddDate(0, 0, -1))
	}
	return LastTradingDay(local)
}

// MarketSnapshotKey returns the portfolio snapshot cache key for the given
// instant, e.g. "movers_2025-01-08".
func MarketSnapshotKey(now time.Time) string {
	return "movers_" + MarketSnapshotDay(now).Format("2006-01-02")
}
