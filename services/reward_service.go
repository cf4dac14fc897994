package services

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"referly-server/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fulfillment is the external collaborator that actually delivers rewards.
type Fulfillment interface {
	UnlockProduct(whopUserID, whopCompanyID, productID string) error
	CreateDiscountCode(whopCompanyID string, percentage int, whopUserID string) (string, error)
}

type RewardService struct {
	DB          *gorm.DB
	Identity    *IdentityService
	Fulfillment Fulfillment
}

func NewRewardService(db *gorm.DB, identity *IdentityService, fulfillment Fulfillment) *RewardService {
	return &RewardService{DB: db, Identity: identity, Fulfillment: fulfillment}
}

// ListRewards returns a tenant's active rewards, lowest threshold first.
func (s *RewardService) ListRewards(companyID string) ([]models.Reward, error) {
	var rewards []models.Reward
	err := s.DB.Where("whop_company_id = ? AND is_active = ?", companyID, true).
		Order("threshold ASC").
		Find(&rewards).Error
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

// CreateRewardInput is the creator-facing reward definition.
type CreateRewardInput struct {
	Name        string
	Description *string
	Threshold   int
	RewardType  models.RewardType
	RewardData  models.RewardData
	AutoApply   bool
}

func (s *RewardService) CreateReward(companyID string, input CreateRewardInput) (*models.Reward, error) {
	if input.Name == "" || input.Threshold <= 0 {
		return nil, ErrValidation
	}
	switch input.RewardType {
	case models.RewardTypeProductUnlock, models.RewardTypeDiscount, models.RewardTypeCustom:
	default:
		return nil, ErrValidation
	}

	data, err := json.Marshal(input.RewardData)
	if err != nil {
		return nil, err
	}

	reward := models.Reward{
		ID:            uuid.NewString(),
		WhopCompanyID: companyID,
		Name:          input.Name,
		Description:   input.Description,
		Threshold:     input.Threshold,
		RewardType:    input.RewardType,
		RewardData:    data,
		AutoApply:     input.AutoApply,
		IsActive:      true,
	}
	if err := s.DB.Create(&reward).Error; err != nil {
		log.Printf("❌ [REWARD] Failed to create reward %s: %v", input.Name, err)
		return nil, err
	}
	log.Printf("✅ [REWARD] Created reward %s (threshold %d)", reward.Name, reward.Threshold)
	return &reward, nil
}

// DeactivateReward retires a reward without deleting its redemption history.
func (s *RewardService) DeactivateReward(companyID, rewardID string) error {
	result := s.DB.Model(&models.Reward{}).
		Where("id = ? AND whop_company_id = ?", rewardID, companyID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRewardNotFound
	}
	return nil
}

// NextMilestone is the first unmet threshold ahead of the user.
type NextMilestone struct {
	Reward          models.Reward `json:"reward"`
	ReferralsNeeded int           `json:"referrals_needed"`
}

// Eligibility is the answer to "what can this user claim right now".
type Eligibility struct {
	Conversions     int64           `json:"conversions"`
	EligibleRewards []models.Reward `json:"eligible_rewards"`
	NextMilestone   *NextMilestone  `json:"next_milestone,omitempty"`
}

// ComputeEligibility walks rewards in ascending threshold order. Met and
// unredeemed rewards are eligible; the first unmet threshold becomes the next
// milestone; rewards already redeemed are surfaced in neither bucket.
func ComputeEligibility(conversions int64, rewards []models.Reward, redeemed map[string]bool) Eligibility {
	eligibility := Eligibility{
		Conversions:     conversions,
		EligibleRewards: []models.Reward{},
	}
	for _, reward := range rewards {
		if conversions >= int64(reward.Threshold) {
			if !redeemed[reward.ID] {
				eligibility.EligibleRewards = append(eligibility.EligibleRewards, reward)
			}
			continue
		}
		if eligibility.NextMilestone == nil {
			eligibility.NextMilestone = &NextMilestone{
				Reward:          reward,
				ReferralsNeeded: reward.Threshold - int(conversions),
			}
		}
	}
	return eligibility
}

// CheckEligibility computes which rewards a user can claim and what the next
// milestone is, from their all-time converted referral count.
func (s *RewardService) CheckEligibility(whopUserID, companyID string) (*Eligibility, error) {
	user, err := s.Identity.GetUserByWhopID(whopUserID, companyID)
	if err != nil {
		return nil, err
	}

	var conversions int64
	if err := s.DB.Model(&models.Referral{}).
		Where("referrer_id = ? AND status = ?", user.ID, models.ReferralStatusConverted).
		Count(&conversions).Error; err != nil {
		return nil, err
	}

	rewards, err := s.ListRewards(companyID)
	if err != nil {
		return nil, err
	}

	var redemptions []models.RewardRedemption
	if err := s.DB.Where("user_id = ? AND status IN ?", user.ID,
		[]models.RewardRedemptionStatus{models.RedemptionStatusGranted, models.RedemptionStatusClaimed}).
		Find(&redemptions).Error; err != nil {
		return nil, err
	}
	redeemed := make(map[string]bool, len(redemptions))
	for _, r := range redemptions {
		redeemed[r.RewardID] = true
	}

	eligibility := ComputeEligibility(conversions, rewards, redeemed)
	return &eligibility, nil
}

// GrantResult reports the outcome of a redemption attempt.
type GrantResult struct {
	RedemptionID string                        `json:"redemption_id"`
	Status       models.RewardRedemptionStatus `json:"status"`
	DiscountCode *string                       `json:"discount_code,omitempty"`
}

// GrantReward redeems a reward for a user. Any existing redemption row for
// the pair, whatever its status, rejects the attempt. A pending row is
// inserted first, then fulfillment runs, then the row is finalized as
// granted or failed with the fulfillment error retained.
func (s *RewardService) GrantReward(whopUserID, rewardID, companyID string) (*GrantResult, error) {
	user, err := s.Identity.GetUserByWhopID(whopUserID, companyID)
	if err != nil {
		return nil, err
	}

	var reward models.Reward
	if err := s.DB.Where("id = ? AND whop_company_id = ?", rewardID, companyID).First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}

	var existing int64
	if err := s.DB.Model(&models.RewardRedemption{}).
		Where("user_id = ? AND reward_id = ?", user.ID, reward.ID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadyRedeemed
	}

	redemption := models.RewardRedemption{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		RewardID: reward.ID,
		Status:   models.RedemptionStatusPending,
	}
	if err := s.DB.Create(&redemption).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyRedeemed
		}
		return nil, err
	}

	discountCode, fulfillErr := s.fulfill(user, reward)

	now := time.Now()
	if fulfillErr != nil {
		message := fulfillErr.Error()
		if err := s.DB.Model(&models.RewardRedemption{}).
			Where("id = ?", redemption.ID).
			Updates(map[string]interface{}{
				"status":        models.RedemptionStatusFailed,
				"error_message": message,
			}).Error; err != nil {
			log.Printf("❌ [REWARD] Failed to mark redemption %s failed: %v", redemption.ID, err)
			return nil, err
		}
		log.Printf("🚫 [REWARD] Grant failed for user %s reward %s: %v", whopUserID, reward.Name, fulfillErr)
		return nil, ErrGrantFailed
	}

	if err := s.DB.Model(&models.RewardRedemption{}).
		Where("id = ?", redemption.ID).
		Updates(map[string]interface{}{
			"status":     models.RedemptionStatusGranted,
			"granted_at": now,
		}).Error; err != nil {
		log.Printf("❌ [REWARD] Failed to mark redemption %s granted: %v", redemption.ID, err)
		return nil, err
	}

	log.Printf("✅ [REWARD] Granted %s to user %s", reward.Name, whopUserID)
	return &GrantResult{
		RedemptionID: redemption.ID,
		Status:       models.RedemptionStatusGranted,
		DiscountCode: discountCode,
	}, nil
}

// fulfill dispatches on reward type. Custom rewards succeed immediately,
// somebody delivers those by hand.
func (s *RewardService) fulfill(user *models.User, reward models.Reward) (*string, error) {
	var data models.RewardData
	if len(reward.RewardData) > 0 {
		if err := json.Unmarshal(reward.RewardData, &data); err != nil {
			return nil, err
		}
	}

	switch reward.RewardType {
	case models.RewardTypeProductUnlock:
		if data.ProductID == "" {
			return nil, errors.New("reward has no product_id configured")
		}
		if err := s.Fulfillment.UnlockProduct(user.WhopUserID, user.WhopCompanyID, data.ProductID); err != nil {
			return nil, err
		}
		return nil, nil
	case models.RewardTypeDiscount:
		if data.DiscountPercentage <= 0 {
			return nil, errors.New("reward has no discount_percentage configured")
		}
		code, err := s.Fulfillment.CreateDiscountCode(user.WhopCompanyID, data.DiscountPercentage, user.WhopUserID)
		if err != nil {
			return nil, err
		}
		return &code, nil
	case models.RewardTypeCustom:
		return nil, nil
	default:
		return nil, errors.New("unknown reward type")
	}
}
