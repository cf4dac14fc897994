package models

import "time"

// ReferralStatus is the lifecycle state of an attributed referral.
type ReferralStatus string

const (
	ReferralStatusPending   ReferralStatus = "pending"
	ReferralStatusConverted ReferralStatus = "converted"
	ReferralStatusCancelled ReferralStatus = "cancelled"
)

// ReferralCode is a user's shareable 6-character code. The partial unique
// index on user_id keeps at most one *active* code per user; deactivated
// codes stay around for history.
type ReferralCode struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID      string `gorm:"index;index:uniq_referral_codes_active_user,unique,where:is_active;not null" json:"user_id"`
	Code        string `gorm:"uniqueIndex;size:6;not null" json:"code"`
	Clicks      int64  `gorm:"default:0" json:"clicks"`
	Conversions int64  `gorm:"default:0" json:"conversions"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ReferralClick is an immutable click audit row. Converted flips to true
// exactly once when a conversion from the same IP is attributed to the code.
type ReferralClick struct {
	ID                string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ReferralCodeID    string  `gorm:"index;not null" json:"referral_code_id"`
	IPAddress         string  `json:"ip_address"`
	UserAgent         string  `json:"user_agent"`
	DeviceFingerprint *string `json:"device_fingerprint,omitempty"`
	ReferrerURL       *string `json:"referrer_url,omitempty"`
	Converted         bool    `gorm:"default:false" json:"converted"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Referral is the attributed conversion. At most one per
// (referral_code_id, referred_id); duplicates are rejected before insert and
// backstopped by the composite unique index. A referral is never deleted
// when its campaign is; the cross-reference is informational only.
type Referral struct {
	ID                string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ReferrerID        *string        `gorm:"index" json:"referrer_id"`
	ReferredID        string         `gorm:"index;uniqueIndex:uniq_referrals_code_referred;not null" json:"referred_id"`
	ReferralCodeID    string         `gorm:"index;uniqueIndex:uniq_referrals_code_referred;not null" json:"referral_code_id"`
	CampaignID        *string        `gorm:"index" json:"campaign_id"`
	Status            ReferralStatus `gorm:"not null;default:'pending'" json:"status"`
	ConvertedAt       *time.Time     `json:"converted_at"`
	RevenueAttributed float64        `gorm:"default:0" json:"revenue_attributed"`
	IPAddress         *string        `json:"ip_address,omitempty"`
	UserAgent         *string        `json:"user_agent,omitempty"`
	DeviceFingerprint *string        `json:"device_fingerprint,omitempty"`
	IsVerified        bool           `gorm:"default:false" json:"is_verified"`
	FraudScore        int            `gorm:"default:0" json:"fraud_score"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
