package services

import (
	"errors"
	"log"
	"math/rand"
	"strings"
	"time"

	"referly-server/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength      = 6
	maxCodeAttempts = 10
)

// GenerateCode draws a 6-character code uniformly from [A-Z0-9].
func GenerateCode(r *rand.Rand) string {
	var sb strings.Builder
	sb.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		sb.WriteByte(codeAlphabet[r.Intn(len(codeAlphabet))])
	}
	return sb.String()
}

// GenerateUniqueCode retries GenerateCode until exists reports a free code,
// giving up after 10 collisions.
func GenerateUniqueCode(r *rand.Rand, exists func(code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := GenerateCode(r)
		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationExhausted
}

type ReferralService struct {
	DB       *gorm.DB
	Identity *IdentityService
	Fraud    *FraudService

	rng *rand.Rand
}

func NewReferralService(db *gorm.DB, identity *IdentityService, fraud *FraudService) *ReferralService {
	return &ReferralService{
		DB:       db,
		Identity: identity,
		Fraud:    fraud,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetOrCreateCode returns the user's active referral code, creating both the
// user row and the code on first contact. Idempotent while the code stays
// active.
func (s *ReferralService) GetOrCreateCode(whopUserID, whopCompanyID string) (*models.ReferralCode, error) {
	user, err := s.Identity.FindOrCreateUser(whopUserID, whopCompanyID)
	if err != nil {
		return nil, err
	}

	var existing models.ReferralCode
	err = s.DB.Where("user_id = ? AND is_active = ?", user.ID, true).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	code, err := GenerateUniqueCode(s.rng, func(candidate string) (bool, error) {
		var count int64
		if err := s.DB.Model(&models.ReferralCode{}).Where("code = ?", candidate).Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	})
	if err != nil {
		return nil, err
	}

	referralCode := models.ReferralCode{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		Code:     code,
		IsActive: true,
	}
	if err := s.DB.Create(&referralCode).Error; err != nil {
		log.Printf("❌ [REFERRAL] Failed to create code for user %s: %v", user.ID, err)
		return nil, err
	}

	log.Printf("✅ [REFERRAL] Created code %s for user %s", code, whopUserID)
	return &referralCode, nil
}

// GetCode returns the user's active code without creating one.
func (s *ReferralService) GetCode(whopUserID, whopCompanyID string) (*models.ReferralCode, error) {
	user, err := s.Identity.GetUserByWhopID(whopUserID, whopCompanyID)
	if err != nil {
		return nil, err
	}

	var code models.ReferralCode
	if err := s.DB.Where("user_id = ? AND is_active = ?", user.ID, true).First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

// CodeValidation is the public answer to "is this code usable".
type CodeValidation struct {
	Valid             bool    `json:"valid"`
	Code              string  `json:"code,omitempty"`
	ReferrerUsername  *string `json:"referrer_username,omitempty"`
	ReferrerAvatarURL *string `json:"referrer_avatar_url,omitempty"`
}

// ValidateCode reports whether a code exists and is active. An unknown or
// deactivated code is not an error, just an invalid result.
func (s *ReferralService) ValidateCode(code string) (*CodeValidation, error) {
	if code == "" {
		return nil, ErrValidation
	}

	var referralCode models.ReferralCode
	err := s.DB.Where("code = ? AND is_active = ?", strings.ToUpper(code), true).First(&referralCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CodeValidation{Valid: false}, nil
		}
		return nil, err
	}

	validation := &CodeValidation{Valid: true, Code: referralCode.Code}
	var owner models.User
	if err := s.DB.Where("id = ?", referralCode.UserID).First(&owner).Error; err == nil {
		validation.ReferrerUsername = owner.Username
		validation.ReferrerAvatarURL = owner.AvatarURL
	}
	return validation, nil
}

// ClickMetadata is what the tracking endpoint captures about a visit.
type ClickMetadata struct {
	IPAddress         string
	UserAgent         string
	DeviceFingerprint *string
	ReferrerURL       *string
}

// RecordClick bumps the code's click counter and appends a click audit row.
// The counter bump is the primary write; the audit row is best-effort.
func (s *ReferralService) RecordClick(code string, meta ClickMetadata) error {
	if code == "" {
		return ErrValidation
	}

	var referralCode models.ReferralCode
	err := s.DB.Where("code = ? AND is_active = ?", strings.ToUpper(code), true).First(&referralCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCode
		}
		return err
	}

	if err := s.DB.Model(&models.ReferralCode{}).
		Where("id = ?", referralCode.ID).
		UpdateColumn("clicks", gorm.Expr("clicks + 1")).Error; err != nil {
		log.Printf("❌ [REFERRAL] Failed to increment clicks for code %s: %v", referralCode.Code, err)
		return err
	}

	click := models.ReferralClick{
		ID:                uuid.NewString(),
		ReferralCodeID:    referralCode.ID,
		IPAddress:         meta.IPAddress,
		UserAgent:         meta.UserAgent,
		DeviceFingerprint: meta.DeviceFingerprint,
		ReferrerURL:       meta.ReferrerURL,
	}
	if err := s.DB.Create(&click).Error; err != nil {
		log.Printf("⚠️ [REFERRAL] Failed to record click audit for code %s: %v", referralCode.Code, err)
	}

	return nil
}

// ConversionInput is everything the conversion endpoint hands to the
// attribution pipeline.
type ConversionInput struct {
	Code               string
	ReferredWhopUserID string
	WhopCompanyID      string
	CampaignID         *string
	IPAddress          string
	UserAgent          string
	DeviceFingerprint  *string
}

// ConversionResult is the public shape of an attributed conversion.
type ConversionResult struct {
	ReferralID string                `json:"referral_id"`
	ReferrerID string                `json:"referrer_id"`
	ReferredID string                `json:"referred_id"`
	Status     models.ReferralStatus `json:"status"`
	FraudScore int                   `json:"fraud_score"`
	Flagged    bool                  `json:"flagged"`
}

// AttributeConversion turns a conversion event into a fraud-scored referral.
// The steps run in a fixed order; each is a hard precondition except the
// click backfill and the campaign counter bump, which are best-effort.
// Flagged conversions are still created, review happens downstream.
func (s *ReferralService) AttributeConversion(input ConversionInput) (*ConversionResult, error) {
	if input.Code == "" || input.ReferredWhopUserID == "" {
		return nil, ErrValidation
	}

	var referralCode models.ReferralCode
	err := s.DB.Where("code = ? AND is_active = ?", strings.ToUpper(input.Code), true).First(&referralCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}

	referred, err := s.Identity.FindOrCreateUser(input.ReferredWhopUserID, input.WhopCompanyID)
	if err != nil {
		return nil, err
	}

	var duplicates int64
	if err := s.DB.Model(&models.Referral{}).
		Where("referral_code_id = ? AND referred_id = ?", referralCode.ID, referred.ID).
		Count(&duplicates).Error; err != nil {
		return nil, err
	}
	if duplicates > 0 {
		return nil, ErrDuplicateReferral
	}

	var referrer models.User
	if err := s.DB.Where("id = ?", referralCode.UserID).First(&referrer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferrerNotFound
		}
		return nil, err
	}

	referralID := uuid.NewString()
	fraud := s.Fraud.Evaluate(referralID, FraudCheckInput{
		IPAddress:  input.IPAddress,
		UserAgent:  input.UserAgent,
		ReferrerID: referrer.ID,
		ReferredID: referred.ID,
	}, DefaultFraudCheckOptions)

	now := time.Now()
	referral := models.Referral{
		ID:                referralID,
		ReferrerID:        &referrer.ID,
		ReferredID:        referred.ID,
		ReferralCodeID:    referralCode.ID,
		CampaignID:        input.CampaignID,
		Status:            models.ReferralStatusConverted,
		ConvertedAt:       &now,
		RevenueAttributed: 0,
		IPAddress:         optional(input.IPAddress),
		UserAgent:         optional(input.UserAgent),
		DeviceFingerprint: input.DeviceFingerprint,
		IsVerified:        false,
		FraudScore:        fraud.FraudScore,
	}
	if err := s.DB.Create(&referral).Error; err != nil {
		// The composite unique index backstops the duplicate pre-check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateReferral
		}
		log.Printf("❌ [REFERRAL] Failed to create referral for code %s: %v", referralCode.Code, err)
		return nil, err
	}

	if err := s.DB.Model(&models.ReferralCode{}).
		Where("id = ?", referralCode.ID).
		UpdateColumn("conversions", gorm.Expr("conversions + 1")).Error; err != nil {
		log.Printf("⚠️ [REFERRAL] Failed to increment conversions for code %s: %v", referralCode.Code, err)
	}

	if input.IPAddress != "" {
		if err := s.DB.Model(&models.ReferralClick{}).
			Where("referral_code_id = ? AND ip_address = ? AND converted = ?", referralCode.ID, input.IPAddress, false).
			UpdateColumn("converted", true).Error; err != nil {
			log.Printf("⚠️ [REFERRAL] Failed to backfill clicks for code %s: %v", referralCode.Code, err)
		}
	}

	if input.CampaignID != nil && *input.CampaignID != "" {
		if err := s.DB.Model(&models.Campaign{}).
			Where("id = ?", *input.CampaignID).
			UpdateColumn("total_referrals", gorm.Expr("total_referrals + 1")).Error; err != nil {
			log.Printf("⚠️ [REFERRAL] Failed to bump campaign %s total: %v", *input.CampaignID, err)
		}
	}

	if fraud.Flagged {
		log.Printf("🚫 [FRAUD] Referral %s flagged with score %d", referralID, fraud.FraudScore)
	} else {
		log.Printf("✅ [REFERRAL] Conversion attributed: code %s referred %s", referralCode.Code, input.ReferredWhopUserID)
	}

	return &ConversionResult{
		ReferralID: referral.ID,
		ReferrerID: referrer.ID,
		ReferredID: referred.ID,
		Status:     referral.Status,
		FraudScore: fraud.FraudScore,
		Flagged:    fraud.Flagged,
	}, nil
}

// ReferralStats is a referrer's own all-time view.
type ReferralStats struct {
	Code            string  `json:"code"`
	TotalClicks     int64   `json:"total_clicks"`
	TotalReferrals  int64   `json:"total_referrals"`
	Conversions     int64   `json:"conversions"`
	ConversionRate  float64 `json:"conversion_rate"`
	PendingRewards  int64   `json:"pending_rewards"`
	LeaderboardRank int64   `json:"leaderboard_rank"`
}

// GetStats assembles the referrer dashboard numbers. Rank is 1-based among
// users with at least one conversion; 0 means unranked.
func (s *ReferralService) GetStats(whopUserID, whopCompanyID string) (*ReferralStats, error) {
	user, err := s.Identity.GetUserByWhopID(whopUserID, whopCompanyID)
	if err != nil {
		return nil, err
	}

	var code models.ReferralCode
	if err := s.DB.Where("user_id = ? AND is_active = ?", user.ID, true).First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}

	var totalReferrals int64
	if err := s.DB.Model(&models.Referral{}).
		Where("referrer_id = ?", user.ID).
		Count(&totalReferrals).Error; err != nil {
		return nil, err
	}

	var conversions int64
	if err := s.DB.Model(&models.Referral{}).
		Where("referrer_id = ? AND status = ?", user.ID, models.ReferralStatusConverted).
		Count(&conversions).Error; err != nil {
		return nil, err
	}

	var pendingRewards int64
	if err := s.DB.Model(&models.RewardRedemption{}).
		Where("user_id = ? AND status = ?", user.ID, models.RedemptionStatusPending).
		Count(&pendingRewards).Error; err != nil {
		return nil, err
	}

	var rank int64
	if conversions > 0 {
		var ahead int64
		err := s.DB.Raw(`
			SELECT COUNT(*) FROM (
				SELECT referrer_id, COUNT(*) AS c
				FROM referrals
				WHERE status = ? AND referrer_id IS NOT NULL
				GROUP BY referrer_id
				HAVING COUNT(*) > ?
			) better
		`, models.ReferralStatusConverted, conversions).Scan(&ahead).Error
		if err != nil {
			return nil, err
		}
		rank = ahead + 1
	}

	rate := float64(0)
	if code.Clicks > 0 {
		rate = Round1(float64(conversions) / float64(code.Clicks) * 100)
	}

	return &ReferralStats{
		Code:            code.Code,
		TotalClicks:     code.Clicks,
		TotalReferrals:  totalReferrals,
		Conversions:     conversions,
		ConversionRate:  rate,
		PendingRewards:  pendingRewards,
		LeaderboardRank: rank,
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
