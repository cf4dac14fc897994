package services

import "testing"

func strPtr(s string) *string { return &s }

func TestBuildLeaderboardTiesKeepSequentialRanks(t *testing.T) {
	t.Parallel()

	aggregates := []ReferrerAggregate{
		{UserID: "a", Username: strPtr("alice"), Referrals: 6, Conversions: 5},
		{UserID: "b", Username: strPtr("bob"), Referrals: 5, Conversions: 5},
		{UserID: "c", Username: strPtr("carol"), Referrals: 4, Conversions: 2},
	}

	entries := BuildLeaderboard(aggregates, LeaderboardGlobal, 50)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[2].UserID != "c" {
		t.Fatalf("the 2-conversion referrer must come last, got %+v", entries)
	}
	for i, entry := range entries {
		if entry.Rank != i+1 {
			t.Fatalf("expected sequential rank %d, got %d", i+1, entry.Rank)
		}
	}
}

func TestBuildLeaderboardGlobalRequiresConversion(t *testing.T) {
	t.Parallel()

	aggregates := []ReferrerAggregate{
		{UserID: "a", Referrals: 10, Conversions: 0},
		{UserID: "b", Referrals: 1, Conversions: 1},
	}

	entries := BuildLeaderboard(aggregates, LeaderboardGlobal, 50)
	if len(entries) != 1 || entries[0].UserID != "b" {
		t.Fatalf("global board must drop referrers without conversions, got %+v", entries)
	}
	if entries[0].Points != 1 {
		t.Fatalf("global points must equal conversions, got %d", entries[0].Points)
	}
}

func TestBuildLeaderboardCampaignPoints(t *testing.T) {
	t.Parallel()

	aggregates := []ReferrerAggregate{
		{UserID: "a", Referrals: 3, Conversions: 3},
		{UserID: "b", Referrals: 2, Conversions: 0},
	}

	entries := BuildLeaderboard(aggregates, LeaderboardCampaign, 50)
	if len(entries) != 2 {
		t.Fatalf("campaign board keeps zero-conversion referrers, got %+v", entries)
	}
	if entries[0].UserID != "a" || entries[0].Points != 30 {
		t.Fatalf("campaign points must be conversions*10, got %+v", entries[0])
	}
	if entries[1].Points != 0 {
		t.Fatalf("zero conversions must score zero points, got %+v", entries[1])
	}
}

func TestBuildLeaderboardTruncatesToLimit(t *testing.T) {
	t.Parallel()

	aggregates := []ReferrerAggregate{
		{UserID: "a", Conversions: 5},
		{UserID: "b", Conversions: 4},
		{UserID: "c", Conversions: 3},
	}

	entries := BuildLeaderboard(aggregates, LeaderboardGlobal, 2)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after truncation, got %d", len(entries))
	}
	if entries[0].UserID != "a" || entries[1].UserID != "b" {
		t.Fatalf("truncation must keep the top entries, got %+v", entries)
	}
}

func TestBuildLeaderboardUnknownUsername(t *testing.T) {
	t.Parallel()

	entries := BuildLeaderboard([]ReferrerAggregate{{UserID: "a", Conversions: 1}}, LeaderboardGlobal, 10)
	if entries[0].Username != "Unknown" {
		t.Fatalf("missing username must render as Unknown, got %q", entries[0].Username)
	}
}
