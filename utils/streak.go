package utils

import (
	"sort"
	"time"
)

// StreakDays counts consecutive calendar days (UTC) with at least one
// check-in, walking backward one day at a time. The chain only counts when
// the most recent check-in date is today or yesterday; today itself does not
// need a check-in for yesterday's unbroken chain to score.
func StreakDays(times []time.Time, now time.Time) int {
	if len(times) == 0 {
		return 0
	}

	seen := map[time.Time]bool{}
	days := make([]time.Time, 0, len(times))
	for _, t := range times {
		d := dateOnly(t.UTC())
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today := dateOnly(now.UTC())
	yesterday := today.AddDate(0, 0, -1)
	if !days[0].Equal(today) && !days[0].Equal(yesterday) {
		return 0
	}

	streak := 1
	prev := days[0]
	for _, d := range days[1:] {
		if !d.Equal(prev.AddDate(0, 0, -1)) {
			break
		}
		streak++
		prev = d
	}
	return streak
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
