package service

import "time"

// NextStreak computes a user's streak after an approval on today, given the
// date of their previous approval (nil when none exists). It is a pure
// function of the two calendar dates, in UTC:
//
//   - no prior approval, or a gap of two or more days  -> streak resets to 1
//   - prior approval exactly one day before            -> streak + 1
//   - prior approval on the same calendar day          -> streak unchanged
func NextStreak(lastApproved *time.Time, today time.Time, currentStreak int) int {
	todayDate := truncateToDay(today)

	if lastApproved == nil {
		return 1
	}

	lastDate := truncateToDay(*lastApproved)
	switch {
	case lastDate.Equal(todayDate):
		return currentStreak
	case lastDate.Equal(todayDate.AddDate(0, 0, -1)):
		return currentStreak + 1
	default:
		return 1
	}
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
