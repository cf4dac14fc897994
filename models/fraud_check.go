package models

import (
	"time"

	"gorm.io/datatypes"
)

// FraudCheckType identifies an individual fraud heuristic.
type FraudCheckType string

const (
	FraudCheckIPDuplicate     FraudCheckType = "ip_duplicate"
	FraudCheckDeviceDuplicate FraudCheckType = "device_duplicate"
	FraudCheckEmailDuplicate  FraudCheckType = "email_duplicate"
	FraudCheckVelocityLimit   FraudCheckType = "velocity_limit"
)

// FraudCheck is an append-only audit row, one per check performed against a
// referral. Never updated after insert.
type FraudCheck struct {
	ID         string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ReferralID string         `gorm:"index;not null" json:"referral_id"`
	CheckType  FraudCheckType `gorm:"not null" json:"check_type"`
	Flagged    bool           `gorm:"default:false;index" json:"flagged"`
	Details    datatypes.JSON `json:"details,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
