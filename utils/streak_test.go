package utils

import (
	"testing"
	"time"
)

func day(now time.Time, offset int, hour int) time.Time {
	d := now.UTC().AddDate(0, 0, offset)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

func TestStreakDays(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	if got := StreakDays(nil, now); got != 0 {
		t.Fatalf("empty: got %d", got)
	}

	// Three consecutive days ending today.
	times := []time.Time{day(now, 0, 8), day(now, -1, 9), day(now, -2, 22)}
	if got := StreakDays(times, now); got != 3 {
		t.Fatalf("three day streak: got %d", got)
	}

	// Chain ending yesterday still counts.
	times = []time.Time{day(now, -1, 9), day(now, -2, 10)}
	if got := StreakDays(times, now); got != 2 {
		t.Fatalf("yesterday chain: got %d", got)
	}

	// Last check-in two days ago breaks the streak.
	times = []time.Time{day(now, -2, 9), day(now, -3, 10)}
	if got := StreakDays(times, now); got != 0 {
		t.Fatalf("stale chain: got %d", got)
	}

	// A gap stops counting.
	times = []time.Time{day(now, 0, 8), day(now, -1, 9), day(now, -3, 10), day(now, -4, 11)}
	if got := StreakDays(times, now); got != 2 {
		t.Fatalf("gapped chain: got %d", got)
	}

	// Multiple check-ins on the same day count once.
	times = []time.Time{day(now, 0, 8), day(now, 0, 20), day(now, -1, 9)}
	if got := StreakDays(times, now); got != 2 {
		t.Fatalf("same-day dedupe: got %d", got)
	}
}
