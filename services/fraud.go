package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"referly-server/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FraudCheckInput carries everything the checks can look at for one
// candidate referral.
type FraudCheckInput struct {
	IPAddress  string
	UserAgent  string
	ReferrerID string
	ReferredID string
}

// FraudCheckOptions toggles individual checks. VelocityLimit is referrals
// per hour and only matters when CheckVelocity is on.
type FraudCheckOptions struct {
	CheckIPDuplicates bool
	CheckSelfReferral bool
	CheckVelocity     bool
	VelocityLimit     int
}

// DefaultFraudCheckOptions is what the attribution pipeline runs with.
var DefaultFraudCheckOptions = FraudCheckOptions{
	CheckIPDuplicates: true,
	CheckSelfReferral: true,
	CheckVelocity:     true,
	VelocityLimit:     10,
}

type FraudCheckEntry struct {
	Type    models.FraudCheckType `json:"type"`
	Flagged bool                  `json:"flagged"`
	Details string                `json:"details"`
}

type FraudCheckResult struct {
	Flagged    bool              `json:"flagged"`
	FraudScore int               `json:"fraud_score"`
	Checks     []FraudCheckEntry `json:"checks"`
}

// PerformFraudCheck runs the enabled checks and accumulates the score.
// Self-referral contributes 100 on its own. The IP-duplicate and velocity
// checks are extension points: they record what they saw but never flag,
// since no historical lookup is wired in yet.
func PerformFraudCheck(input FraudCheckInput, options FraudCheckOptions) FraudCheckResult {
	var checks []FraudCheckEntry
	fraudScore := 0

	if options.CheckSelfReferral && input.ReferrerID != "" && input.ReferredID != "" {
		if input.ReferrerID == input.ReferredID {
			checks = append(checks, FraudCheckEntry{
				Type:    models.FraudCheckEmailDuplicate,
				Flagged: true,
				Details: "Self-referral detected: referrer and referred user are the same",
			})
			fraudScore += 100
		}
	}

	if options.CheckIPDuplicates && input.IPAddress != "" {
		checks = append(checks, FraudCheckEntry{
			Type:    models.FraudCheckIPDuplicate,
			Flagged: false,
			Details: fmt.Sprintf("IP address logged: %s", MaskIP(input.IPAddress)),
		})
	}

	if options.CheckVelocity {
		limit := options.VelocityLimit
		if limit <= 0 {
			limit = 10
		}
		checks = append(checks, FraudCheckEntry{
			Type:    models.FraudCheckVelocityLimit,
			Flagged: false,
			Details: fmt.Sprintf("Velocity check: within %d referrals/hour limit", limit),
		})
	}

	flagged := fraudScore >= 50
	for _, c := range checks {
		if c.Flagged {
			flagged = true
			break
		}
	}

	return FraudCheckResult{
		Flagged:    flagged,
		FraudScore: capScore(fraudScore),
		Checks:     checks,
	}
}

// CalculateRiskScore is the standalone weighted-sum scorer. It weights
// flagged checks differently from the accumulation in PerformFraudCheck
// (self/device 50, ip 30, velocity 20). Callers pick whichever policy they
// need, so the two must not be merged.
func CalculateRiskScore(checks []FraudCheckEntry) int {
	score := 0
	for _, check := range checks {
		if !check.Flagged {
			continue
		}
		switch check.Type {
		case models.FraudCheckEmailDuplicate, models.FraudCheckDeviceDuplicate:
			score += 50
		case models.FraudCheckIPDuplicate:
			score += 30
		case models.FraudCheckVelocityLimit:
			score += 20
		}
	}
	return capScore(score)
}

func capScore(score int) int {
	if score > 100 {
		return 100
	}
	return score
}

// MaskIP hides the host part of an IPv4 address for storage
// (192.168.1.1 -> 192.168.*.*). Anything else is truncated.
func MaskIP(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) == 4 {
		return fmt.Sprintf("%s.%s.*.*", parts[0], parts[1])
	}
	if len(ip) > 10 {
		return ip[:10] + "..."
	}
	return ip + "..."
}

type FraudService struct {
	DB *gorm.DB
}

func NewFraudService(db *gorm.DB) *FraudService {
	return &FraudService{DB: db}
}

// Evaluate runs the checks for a referral and persists one audit row per
// check. Audit persistence is best-effort: a failed insert is logged and
// never fails the evaluation or the conversion that triggered it.
func (s *FraudService) Evaluate(referralID string, input FraudCheckInput, options FraudCheckOptions) FraudCheckResult {
	result := PerformFraudCheck(input, options)

	for _, check := range result.Checks {
		details, err := json.Marshal(map[string]interface{}{
			"description": check.Details,
			"ip_address":  input.IPAddress,
			"user_agent":  input.UserAgent,
			"fraud_score": result.FraudScore,
		})
		if err != nil {
			log.Printf("⚠️ [FRAUD] Failed to encode check details: %v", err)
			continue
		}
		row := models.FraudCheck{
			ReferralID: referralID,
			CheckType:  check.Type,
			Flagged:    check.Flagged,
			Details:    datatypes.JSON(details),
		}
		if err := s.DB.Create(&row).Error; err != nil {
			log.Printf("⚠️ [FRAUD] Failed to persist %s check for referral %s: %v", check.Type, referralID, err)
		}
	}

	return result
}

// FlaggedReferral is one row of the security dashboard.
type FlaggedReferral struct {
	ID               string                `json:"id"`
	ReferrerUsername string                `json:"referrer_username"`
	ReferredUsername string                `json:"referred_username"`
	CheckType        models.FraudCheckType `json:"check_type"`
	FlaggedAt        time.Time             `json:"flagged_at"`
	Details          datatypes.JSON        `json:"details"`
	ReviewStatus     string                `json:"status"`
}

// ListFlagged returns flagged fraud checks for a tenant, newest first.
func (s *FraudService) ListFlagged(companyID string) ([]FlaggedReferral, error) {
	type flaggedRow struct {
		ID               string
		CheckType        models.FraudCheckType
		Details          datatypes.JSON
		CreatedAt        time.Time
		ReferrerUsername *string
		ReferredUsername *string
	}

	var rows []flaggedRow
	err := s.DB.Raw(`
		SELECT fc.id, fc.check_type, fc.details, fc.created_at,
		       referrer.username AS referrer_username,
		       referred.username AS referred_username
		FROM fraud_checks fc
		INNER JOIN referrals r ON r.id = fc.referral_id
		LEFT JOIN users referrer ON referrer.id = r.referrer_id
		LEFT JOIN users referred ON referred.id = r.referred_id
		WHERE fc.flagged = true AND referrer.whop_company_id = ?
		ORDER BY fc.created_at DESC
	`, companyID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	flagged := make([]FlaggedReferral, 0, len(rows))
	for _, row := range rows {
		flagged = append(flagged, FlaggedReferral{
			ID:               row.ID,
			ReferrerUsername: usernameOrUnknown(row.ReferrerUsername),
			ReferredUsername: usernameOrUnknown(row.ReferredUsername),
			CheckType:        row.CheckType,
			FlaggedAt:        row.CreatedAt,
			Details:          row.Details,
			ReviewStatus:     "pending",
		})
	}
	return flagged, nil
}

func usernameOrUnknown(name *string) string {
	if name == nil || *name == "" {
		return "Unknown"
	}
	return *name
}
