package progression

import "time"

const msPerDay = 24 * 60 * 60 * 1000

// dayIndex buckets a timestamp into a UTC day number.
func dayIndex(t time.Time) int64 {
	return t.UnixMilli() / msPerDay
}

// NextStreak computes the streak after an activity at now. Same UTC day as
// the last activity leaves the streak unchanged; exactly the previous day
// extends it; any larger gap, or no prior activity, resets it to 1. The
// returned timestamp is always now. Pure; callers invoke it at most once
// per completion event so the streak cannot double-increment.
func NextStreak(lastActivity time.Time, current int, now time.Time) (int, time.Time) {
	if lastActivity.IsZero() {
		return 1, now
	}

	today := dayIndex(now)
	last := dayIndex(lastActivity)

	switch {
	case last == today:
		return current, now // already checked in today
	case last == today-1:
		return current + 1, now
	default:
		return 1, now
	}
}
