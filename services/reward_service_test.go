package services

import (
	"testing"

	"referly-server/models"
)

func rewardFixtures() []models.Reward {
	return []models.Reward{
		{ID: "r3", Name: "Starter", Threshold: 3},
		{ID: "r5", Name: "Climber", Threshold: 5},
		{ID: "r10", Name: "Champion", Threshold: 10},
	}
}

func TestComputeEligibilityMilestone(t *testing.T) {
	t.Parallel()

	eligibility := ComputeEligibility(4, rewardFixtures(), map[string]bool{})

	if len(eligibility.EligibleRewards) != 1 || eligibility.EligibleRewards[0].ID != "r3" {
		t.Fatalf("expected only the threshold-3 reward eligible, got %+v", eligibility.EligibleRewards)
	}
	if eligibility.NextMilestone == nil {
		t.Fatalf("expected a next milestone")
	}
	if eligibility.NextMilestone.Reward.ID != "r5" {
		t.Fatalf("next milestone must be the first unmet threshold, got %+v", eligibility.NextMilestone)
	}
	if eligibility.NextMilestone.ReferralsNeeded != 1 {
		t.Fatalf("expected 1 referral needed, got %d", eligibility.NextMilestone.ReferralsNeeded)
	}
}

func TestComputeEligibilityRedeemedExcluded(t *testing.T) {
	t.Parallel()

	eligibility := ComputeEligibility(6, rewardFixtures(), map[string]bool{"r3": true})

	// r3 is met but redeemed: surfaced in neither bucket. r5 is met and
	// unredeemed. r10 is the milestone.
	if len(eligibility.EligibleRewards) != 1 || eligibility.EligibleRewards[0].ID != "r5" {
		t.Fatalf("redeemed rewards must disappear, got %+v", eligibility.EligibleRewards)
	}
	if eligibility.NextMilestone == nil || eligibility.NextMilestone.Reward.ID != "r10" {
		t.Fatalf("expected r10 milestone, got %+v", eligibility.NextMilestone)
	}
	if eligibility.NextMilestone.ReferralsNeeded != 4 {
		t.Fatalf("expected 4 referrals needed, got %d", eligibility.NextMilestone.ReferralsNeeded)
	}
}

func TestComputeEligibilityAllMet(t *testing.T) {
	t.Parallel()

	eligibility := ComputeEligibility(20, rewardFixtures(), map[string]bool{})

	if len(eligibility.EligibleRewards) != 3 {
		t.Fatalf("all thresholds met should all be eligible, got %+v", eligibility.EligibleRewards)
	}
	if eligibility.NextMilestone != nil {
		t.Fatalf("no milestone expected past the top threshold, got %+v", eligibility.NextMilestone)
	}
}

func TestComputeEligibilityNoConversions(t *testing.T) {
	t.Parallel()

	eligibility := ComputeEligibility(0, rewardFixtures(), map[string]bool{})

	if len(eligibility.EligibleRewards) != 0 {
		t.Fatalf("nothing should be eligible at zero conversions, got %+v", eligibility.EligibleRewards)
	}
	if eligibility.NextMilestone == nil || eligibility.NextMilestone.Reward.ID != "r3" {
		t.Fatalf("milestone must be the lowest threshold, got %+v", eligibility.NextMilestone)
	}
	if eligibility.NextMilestone.ReferralsNeeded != 3 {
		t.Fatalf("expected 3 referrals needed, got %d", eligibility.NextMilestone.ReferralsNeeded)
	}
}
