package models

import (
	"testing"
	"time"
)

func TestDeriveCampaignStatus(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		now      time.Time
		isActive bool
		want     CampaignStatus
	}{
		{"before window", start.AddDate(0, 0, -1), true, CampaignStatusDraft},
		{"inside window active", start.AddDate(0, 0, 10), true, CampaignStatusActive},
		{"inside window switched off", start.AddDate(0, 0, 10), false, CampaignStatusDraft},
		{"after window", end.AddDate(0, 0, 1), true, CampaignStatusEnded},
		{"after window inactive", end.AddDate(0, 0, 1), false, CampaignStatusEnded},
	}

	for _, tc := range cases {
		if got := DeriveCampaignStatus(tc.now, start, end, tc.isActive); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}
