package services

import (
	"testing"
	"time"
)

func TestWindowStart(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

	if got := WindowStart("7d", now); !got.Equal(now.AddDate(0, 0, -7)) {
		t.Fatalf("7d window start = %v", got)
	}
	if got := WindowStart("30d", now); !got.Equal(now.AddDate(0, 0, -30)) {
		t.Fatalf("30d window start = %v", got)
	}
	epoch := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	if got := WindowStart("all", now); !got.Equal(epoch) {
		t.Fatalf("all window start = %v, want %v", got, epoch)
	}
	if got := WindowStart("bogus", now); !got.Equal(epoch) {
		t.Fatalf("unknown window must fall back to all-time, got %v", got)
	}
}

func TestRoundingHalfAwayFromZero(t *testing.T) {
	t.Parallel()

	if got := Round1(66.66666); got != 66.7 {
		t.Fatalf("Round1(66.66666) = %v", got)
	}
	if got := Round1(0.05); got != 0.1 {
		t.Fatalf("Round1(0.05) = %v, halfway must round away from zero", got)
	}
	if got := Round1(-0.05); got != -0.1 {
		t.Fatalf("Round1(-0.05) = %v, halfway must round away from zero", got)
	}
	if got := Round2(79.999); got != 80.0 {
		t.Fatalf("Round2(79.999) = %v", got)
	}
	if got := Round2(0.125); got != 0.13 {
		t.Fatalf("Round2(0.125) = %v", got)
	}
}
