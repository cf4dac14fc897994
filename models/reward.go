package models

import (
	"time"

	"gorm.io/datatypes"
)

// RewardType selects the fulfillment path when a reward is granted.
type RewardType string

const (
	RewardTypeProductUnlock RewardType = "product_unlock"
	RewardTypeDiscount      RewardType = "discount"
	RewardTypeCustom        RewardType = "custom"
)

// Reward is a tenant-scoped conversion milestone. Threshold is the number of
// converted referrals required before the reward becomes claimable.
type Reward struct {
	ID            string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	WhopCompanyID string         `gorm:"index;not null" json:"whop_company_id"`
	Name          string         `gorm:"not null" json:"name"`
	Description   *string        `json:"description"`
	Threshold     int            `gorm:"not null" json:"threshold"`
	RewardType    RewardType     `gorm:"not null" json:"reward_type"`
	RewardData    datatypes.JSON `json:"reward_data,omitempty"`
	AutoApply     bool           `gorm:"default:true" json:"auto_apply"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// RewardData payload fields, stored as JSON on the reward.
type RewardData struct {
	ProductID          string `json:"product_id,omitempty"`
	DiscountCode       string `json:"discount_code,omitempty"`
	DiscountPercentage int    `json:"discount_percentage,omitempty"`
}

// RewardRedemptionStatus tracks a redemption through fulfillment.
type RewardRedemptionStatus string

const (
	RedemptionStatusPending RewardRedemptionStatus = "pending"
	RedemptionStatusGranted RewardRedemptionStatus = "granted"
	RedemptionStatusClaimed RewardRedemptionStatus = "claimed"
	RedemptionStatusFailed  RewardRedemptionStatus = "failed"
)

// RewardRedemption is one-per-(user, reward). The unique index makes a
// second claim attempt fail regardless of how the first one ended, so a
// failed grant is never silently retried.
type RewardRedemption struct {
	ID           string                 `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID       string                 `gorm:"uniqueIndex:uniq_redemptions_user_reward;index;not null" json:"user_id"`
	RewardID     string                 `gorm:"uniqueIndex:uniq_redemptions_user_reward;not null" json:"reward_id"`
	Status       RewardRedemptionStatus `gorm:"not null;default:'pending'" json:"status"`
	GrantedAt    *time.Time             `json:"granted_at"`
	ClaimedAt    *time.Time             `json:"claimed_at"`
	ErrorMessage *string                `json:"error_message"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
