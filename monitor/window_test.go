package monitor

import (
	"math"
	"testing"
	"time"
)

func TestWindowAverages_SkipsMissingDays(t *testing.T) {
	today := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	days := map[string]DayRecord{
		"2026-08-25": {Earnings: 10, FramesCreated: 100, LandingRate: 80},
		"2026-08-23": {Earnings: 20, FramesCreated: 50, LandingRate: 60},
		// 2026-08-24 has no record and must not drag the averages down.
	}

	avgEarnings, avgLanding := WindowAverages(days, today, 7)
	if math.Abs(avgEarnings-15) > 1e-12 {
		t.Fatalf("expected avg earnings 15 over the two recorded days, got %v", avgEarnings)
	}
	if math.Abs(avgLanding-70) > 1e-12 {
		t.Fatalf("expected avg landing 70, got %v", avgLanding)
	}
}

func TestWindowAverages_LandingExcludesIdleDays(t *testing.T) {
	today := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	days := map[string]DayRecord{
		"2026-08-25": {Earnings: 10, FramesCreated: 100, LandingRate: 80},
		"2026-08-24": {Earnings: 0, FramesCreated: 0, LandingRate: 0},
	}

	avgEarnings, avgLanding := WindowAverages(days, today, 7)
	if math.Abs(avgEarnings-5) > 1e-12 {
		t.Fatalf("idle day still counts for earnings, got %v", avgEarnings)
	}
	if avgLanding != 80 {
		t.Fatalf("idle day must not count for landing rate, got %v", avgLanding)
	}
}

func TestWindowAverages_EmptyWindow(t *testing.T) {
	today := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	avgEarnings, avgLanding := WindowAverages(map[string]DayRecord{}, today, 30)
	if avgEarnings != 0 || avgLanding != 0 {
		t.Fatalf("expected zeros for empty window, got %v %v", avgEarnings, avgLanding)
	}

	// Records outside the window are ignored.
	days := map[string]DayRecord{"2026-07-01": {Earnings: 99, FramesCreated: 1, LandingRate: 99}}
	avgEarnings, avgLanding = WindowAverages(days, today, 7)
	if avgEarnings != 0 || avgLanding != 0 {
		t.Fatalf("expected out-of-window record ignored, got %v %v", avgEarnings, avgLanding)
	}
}
