package models

import (
	"time"

	"gorm.io/datatypes"
)

// CampaignStatus is derived from the campaign dates and is_active flag,
// see DeriveCampaignStatus. The stored column is refreshed by the scheduler
// so listings stay correct without recomputing on every read.
type CampaignStatus string

const (
	CampaignStatusDraft    CampaignStatus = "draft"
	CampaignStatusActive   CampaignStatus = "active"
	CampaignStatusEnded    CampaignStatus = "ended"
	CampaignStatusArchived CampaignStatus = "archived"
)

// Campaign is a tenant-scoped referral contest window.
type Campaign struct {
	ID              string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	WhopCompanyID   string         `gorm:"index;not null" json:"whop_company_id"`
	Name            string         `gorm:"not null" json:"name"`
	Slug            string         `gorm:"index" json:"slug"`
	Description     *string        `json:"description"`
	StartDate       time.Time      `gorm:"not null" json:"start_date"`
	EndDate         time.Time      `gorm:"not null" json:"end_date"`
	Status          CampaignStatus `gorm:"not null;default:'draft'" json:"status"`
	PointMultiplier float64        `gorm:"default:1" json:"point_multiplier"`
	PrizePool       *string        `json:"prize_pool"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	Rules           datatypes.JSON `json:"rules,omitempty"`
	Prizes          datatypes.JSON `json:"prizes,omitempty"`
	TotalReferrals  int64          `gorm:"default:0" json:"total_referrals"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// DeriveCampaignStatus computes the status a campaign should carry at the
// given instant. A campaign inside its window still shows as draft while the
// owner keeps is_active off.
func DeriveCampaignStatus(now, start, end time.Time, isActive bool) CampaignStatus {
	if now.After(end) {
		return CampaignStatusEnded
	}
	if now.Before(start) {
		return CampaignStatusDraft
	}
	if isActive {
		return CampaignStatusActive
	}
	return CampaignStatusDraft
}
