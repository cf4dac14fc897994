package services

import (
	"errors"
	"log"

	"referly-server/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IdentityService struct {
	DB *gorm.DB
}

func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{DB: db}
}

// FindOrCreateUser resolves a Whop identity to the local user row, creating
// it on first contact (idempotent). If a concurrent request wins the insert
// race, the unique index on (whop_user_id, whop_company_id) rejects ours and
// we re-read the winner's row.
func (s *IdentityService) FindOrCreateUser(whopUserID, whopCompanyID string) (*models.User, error) {
	if whopUserID == "" || whopCompanyID == "" {
		return nil, ErrValidation
	}

	var user models.User
	err := s.DB.Where("whop_user_id = ? AND whop_company_id = ?", whopUserID, whopCompanyID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		ID:            uuid.NewString(),
		WhopUserID:    whopUserID,
		WhopCompanyID: whopCompanyID,
	}
	if createErr := s.DB.Create(&user).Error; createErr != nil {
		// Lost the insert race, fall back to reading the winner's row.
		var existing models.User
		if retryErr := s.DB.Where("whop_user_id = ? AND whop_company_id = ?", whopUserID, whopCompanyID).First(&existing).Error; retryErr == nil {
			return &existing, nil
		}
		log.Printf("❌ [IDENTITY] Failed to create user %s: %v", whopUserID, createErr)
		return nil, createErr
	}
	return &user, nil
}

// GetUserByWhopID resolves a Whop identity within one tenant without
// creating it. The same member mirrored for another company is a distinct
// row and must not be returned here.
func (s *IdentityService) GetUserByWhopID(whopUserID, whopCompanyID string) (*models.User, error) {
	if whopUserID == "" || whopCompanyID == "" {
		return nil, ErrValidation
	}

	var user models.User
	if err := s.DB.Where("whop_user_id = ? AND whop_company_id = ?", whopUserID, whopCompanyID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
