package service

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestNextStreak_FirstApproval(t *testing.T) {
	got := NextStreak(nil, day(2025, 3, 10), 0)
	if got != 1 {
		t.Fatalf("NextStreak(nil) = %d; want 1", got)
	}
}

func TestNextStreak_ConsecutiveDay(t *testing.T) {
	prev := day(2025, 3, 9)
	got := NextStreak(&prev, day(2025, 3, 10), 4)
	if got != 5 {
		t.Fatalf("NextStreak(+1 day) = %d; want 5", got)
	}
}

func TestNextStreak_SameDay(t *testing.T) {
	prev := day(2025, 3, 10)
	got := NextStreak(&prev, day(2025, 3, 10).Add(5*time.Hour), 4)
	if got != 4 {
		t.Fatalf("NextStreak(same day) = %d; want 4", got)
	}
}

func TestNextStreak_GapResets(t *testing.T) {
	prev := day(2025, 3, 7)
	got := NextStreak(&prev, day(2025, 3, 10), 9)
	if got != 1 {
		t.Fatalf("NextStreak(3 day gap) = %d; want 1", got)
	}
}

func TestNextStreak_MidnightBoundary(t *testing.T) {
	// 23:59 on the 9th to 00:01 on the 10th is still consecutive days.
	prev := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)
	now := time.Date(2025, 3, 10, 0, 1, 0, 0, time.UTC)
	got := NextStreak(&prev, now, 1)
	if got != 2 {
		t.Fatalf("NextStreak(midnight boundary) = %d; want 2", got)
	}
}

func TestNextStreak_NeverNegativeInput(t *testing.T) {
	// A corrupt stored streak still yields at least 1 on approval.
	got := NextStreak(nil, day(2025, 3, 10), -3)
	if got != 1 {
		t.Fatalf("NextStreak(nil, -3) = %d; want 1", got)
	}
}
