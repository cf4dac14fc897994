package services

import (
	"testing"

	"referly-server/models"
)

func TestPerformFraudCheckSelfReferral(t *testing.T) {
	t.Parallel()

	result := PerformFraudCheck(FraudCheckInput{
		IPAddress:  "203.0.113.7",
		ReferrerID: "user-1",
		ReferredID: "user-1",
	}, DefaultFraudCheckOptions)

	if !result.Flagged {
		t.Fatalf("expected self-referral to be flagged")
	}
	if result.FraudScore != 100 {
		t.Fatalf("expected fraud score 100, got %d", result.FraudScore)
	}

	var found bool
	for _, check := range result.Checks {
		if check.Type == models.FraudCheckEmailDuplicate {
			found = true
			if !check.Flagged {
				t.Fatalf("self-referral check itself must be flagged")
			}
		}
	}
	if !found {
		t.Fatalf("expected an %s check in %+v", models.FraudCheckEmailDuplicate, result.Checks)
	}
}

func TestPerformFraudCheckCleanConversion(t *testing.T) {
	t.Parallel()

	result := PerformFraudCheck(FraudCheckInput{
		IPAddress:  "203.0.113.7",
		UserAgent:  "Mozilla/5.0",
		ReferrerID: "user-1",
		ReferredID: "user-2",
	}, DefaultFraudCheckOptions)

	if result.Flagged {
		t.Fatalf("clean conversion must not be flagged: %+v", result)
	}
	if result.FraudScore != 0 {
		t.Fatalf("expected fraud score 0, got %d", result.FraudScore)
	}
	// IP and velocity checks record but never flag on their own.
	if len(result.Checks) != 2 {
		t.Fatalf("expected 2 audit checks, got %d", len(result.Checks))
	}
	for _, check := range result.Checks {
		if check.Flagged {
			t.Fatalf("check %s should not flag: %+v", check.Type, check)
		}
	}
}

func TestPerformFraudCheckDisabledChecks(t *testing.T) {
	t.Parallel()

	result := PerformFraudCheck(FraudCheckInput{
		IPAddress:  "203.0.113.7",
		ReferrerID: "user-1",
		ReferredID: "user-1",
	}, FraudCheckOptions{})

	if result.Flagged || result.FraudScore != 0 || len(result.Checks) != 0 {
		t.Fatalf("all checks disabled should yield an empty clean result, got %+v", result)
	}
}

func TestCalculateRiskScoreWeights(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		checks []FraudCheckEntry
		want   int
	}{
		{"none flagged", []FraudCheckEntry{
			{Type: models.FraudCheckIPDuplicate, Flagged: false},
			{Type: models.FraudCheckVelocityLimit, Flagged: false},
		}, 0},
		{"ip only", []FraudCheckEntry{
			{Type: models.FraudCheckIPDuplicate, Flagged: true},
		}, 30},
		{"velocity only", []FraudCheckEntry{
			{Type: models.FraudCheckVelocityLimit, Flagged: true},
		}, 20},
		{"self referral", []FraudCheckEntry{
			{Type: models.FraudCheckEmailDuplicate, Flagged: true},
		}, 50},
		{"device duplicate", []FraudCheckEntry{
			{Type: models.FraudCheckDeviceDuplicate, Flagged: true},
		}, 50},
		{"capped at 100", []FraudCheckEntry{
			{Type: models.FraudCheckEmailDuplicate, Flagged: true},
			{Type: models.FraudCheckDeviceDuplicate, Flagged: true},
			{Type: models.FraudCheckIPDuplicate, Flagged: true},
			{Type: models.FraudCheckVelocityLimit, Flagged: true},
		}, 100},
	}

	for _, tc := range cases {
		if got := CalculateRiskScore(tc.checks); got != tc.want {
			t.Fatalf("%s: expected score %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestMaskIP(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"192.168.1.1", "192.168.*.*"},
		{"10.0.0.254", "10.0.*.*"},
		{"2001:0db8:85a3:0000:0000:8a2e:0370:7334", "2001:0db8:..."},
		{"::1", "::1..."},
	}
	for _, tc := range cases {
		if got := MaskIP(tc.in); got != tc.want {
			t.Fatalf("MaskIP(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
