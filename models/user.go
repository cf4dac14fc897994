package models

import "time"

// User is a local mirror of a Whop member, created lazily the first time
// they touch the referral system. Exactly one row per (whop_user_id,
// whop_company_id), enforced by the composite unique index so concurrent
// find-or-create calls cannot race into duplicates.
type User struct {
	ID            string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	WhopUserID    string  `gorm:"uniqueIndex:uniq_users_whop_identity;not null" json:"whop_user_id"`
	WhopCompanyID string  `gorm:"uniqueIndex:uniq_users_whop_identity;index;not null" json:"whop_company_id"`
	Username      *string `gorm:"index" json:"username,omitempty"`
	Email         *string `json:"email,omitempty"`
	AvatarURL     *string `json:"avatar_url,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
