package services

import "errors"

// Sentinel errors for the referral engine. Handlers map these onto the API
// error envelope; anything not listed here surfaces as DATABASE_ERROR or
// INTERNAL_ERROR.
var (
	ErrValidation              = errors.New("missing or malformed required input")
	ErrInvalidCode             = errors.New("invalid or inactive referral code")
	ErrCodeNotFound            = errors.New("no referral code found")
	ErrDuplicateReferral       = errors.New("referral already tracked for this code and user")
	ErrUserNotFound            = errors.New("user not found")
	ErrReferrerNotFound        = errors.New("referrer user not found")
	ErrRewardNotFound          = errors.New("reward not found")
	ErrCampaignNotFound        = errors.New("campaign not found")
	ErrCodeGenerationExhausted = errors.New("failed to generate unique referral code")
	ErrAlreadyRedeemed         = errors.New("reward already redeemed")
	ErrGrantFailed             = errors.New("failed to grant reward")
)
