package services

import (
	"testing"
	"time"
)

func TestComputeOverviewRates(t *testing.T) {
	t.Parallel()

	// 3 referrals, 2 converted, 50 + 30 revenue on the converted ones.
	rate, revenue := ComputeOverviewRates(3, 2, 80)
	if rate != 66.7 {
		t.Fatalf("conversion rate = %v, want 66.7", rate)
	}
	if revenue != 80.00 {
		t.Fatalf("revenue = %v, want 80.00", revenue)
	}

	rate, revenue = ComputeOverviewRates(0, 0, 0)
	if rate != 0 || revenue != 0 {
		t.Fatalf("empty window must yield zeros, got %v / %v", rate, revenue)
	}
}

func referrerFixtures() []ReferrerRow {
	return []ReferrerRow{
		{UserID: "a", Username: "Alice", Email: "alice@example.com", Referrals: 10, Conversions: 4, ConversionRate: 40, RevenueAttributed: 120.5, RewardsEarned: 2},
		{UserID: "b", Username: "bob", Email: "bob@mail.test", Referrals: 7, Conversions: 7, ConversionRate: 100, RevenueAttributed: 80, RewardsEarned: 0},
		{UserID: "c", Username: "Carol", Email: "carol@example.com", Referrals: 3, Conversions: 0, ConversionRate: 0, RevenueAttributed: 0, RewardsEarned: 1},
	}
}

func TestFilterReferrersCaseInsensitive(t *testing.T) {
	t.Parallel()

	rows := referrerFixtures()

	got := FilterReferrers(rows, "ALICE")
	if len(got) != 1 || got[0].UserID != "a" {
		t.Fatalf("username filter failed: %+v", got)
	}

	got = FilterReferrers(rows, "example.com")
	if len(got) != 2 {
		t.Fatalf("email filter should match 2 rows, got %+v", got)
	}

	got = FilterReferrers(rows, "")
	if len(got) != 3 {
		t.Fatalf("empty filter must keep everything, got %d rows", len(got))
	}
}

func TestSortReferrersDescendingDefault(t *testing.T) {
	t.Parallel()

	rows := referrerFixtures()
	SortReferrers(rows, "referrals", false)
	if rows[0].UserID != "a" || rows[2].UserID != "c" {
		t.Fatalf("referrals desc sort failed: %+v", rows)
	}

	SortReferrers(rows, "conversions", false)
	if rows[0].UserID != "b" {
		t.Fatalf("conversions desc sort failed: %+v", rows)
	}

	SortReferrers(rows, "username", true)
	if rows[0].Username != "Alice" || rows[2].Username != "Carol" {
		t.Fatalf("username asc sort must be case-insensitive: %+v", rows)
	}

	SortReferrers(rows, "revenue_attributed", false)
	if rows[0].UserID != "a" {
		t.Fatalf("revenue desc sort failed: %+v", rows)
	}
}

func TestPaginateReferrers(t *testing.T) {
	t.Parallel()

	rows := referrerFixtures()

	page := PaginateReferrers(rows, 1, 2)
	if len(page) != 2 || page[0].UserID != "a" {
		t.Fatalf("page 1 wrong: %+v", page)
	}

	page = PaginateReferrers(rows, 2, 2)
	if len(page) != 1 || page[0].UserID != "c" {
		t.Fatalf("page 2 wrong: %+v", page)
	}

	page = PaginateReferrers(rows, 5, 2)
	if len(page) != 0 {
		t.Fatalf("out-of-range page must be empty, got %+v", page)
	}
}

func TestChartStartIsUTCMidnight(t *testing.T) {
	t.Parallel()

	// A server clock in a non-UTC zone must not shift the day buckets:
	// 2026-03-15 01:30 +13:00 is 2026-03-14 12:30 UTC, so the window
	// opens at UTC midnight six days before the 14th.
	zone := time.FixedZone("NZDT", 13*60*60)
	now := time.Date(2026, time.March, 15, 1, 30, 0, 0, zone)

	got := chartStart(now)
	want := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("chartStart = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Fatalf("chartStart must be in UTC, got %v", got.Location())
	}
	if h, m, s := got.Clock(); h != 0 || m != 0 || s != 0 {
		t.Fatalf("chartStart must be midnight, got %02d:%02d:%02d", h, m, s)
	}
}

func TestBuildReferrersCSV(t *testing.T) {
	t.Parallel()

	data, err := BuildReferrersCSV(referrerFixtures()[:1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "username,email,referrals,conversions,conversion_rate,revenue_attributed,rewards_earned\n" +
		"Alice,alice@example.com,10,4,40.0,120.50,2\n"
	if string(data) != want {
		t.Fatalf("csv mismatch:\n got %q\nwant %q", string(data), want)
	}
}
