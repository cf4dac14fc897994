package services

import (
	"errors"
	"log"
	"time"

	"referly-server/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CampaignService struct {
	DB *gorm.DB
}

func NewCampaignService(db *gorm.DB) *CampaignService {
	return &CampaignService{DB: db}
}

// CreateCampaignInput is the creator-facing campaign definition.
type CreateCampaignInput struct {
	Name            string
	Description     *string
	StartDate       time.Time
	EndDate         time.Time
	PointMultiplier float64
	PrizePool       *string
	Rules           datatypes.JSON
	Prizes          datatypes.JSON
}

func (s *CampaignService) CreateCampaign(companyID string, input CreateCampaignInput) (*models.Campaign, error) {
	if input.Name == "" || input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, ErrValidation
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, ErrValidation
	}

	multiplier := input.PointMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	campaign := models.Campaign{
		ID:              uuid.NewString(),
		WhopCompanyID:   companyID,
		Name:            input.Name,
		Slug:            slug.Make(input.Name),
		Description:     input.Description,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Status:          models.DeriveCampaignStatus(time.Now(), input.StartDate, input.EndDate, true),
		PointMultiplier: multiplier,
		PrizePool:       input.PrizePool,
		IsActive:        true,
		Rules:           input.Rules,
		Prizes:          input.Prizes,
	}
	if err := s.DB.Create(&campaign).Error; err != nil {
		log.Printf("❌ [CAMPAIGN] Failed to create campaign %s: %v", input.Name, err)
		return nil, err
	}
	log.Printf("✅ [CAMPAIGN] Created campaign %s (%s)", campaign.Name, campaign.Slug)
	return &campaign, nil
}

// ListCampaigns returns a tenant's campaigns, newest first.
func (s *CampaignService) ListCampaigns(companyID string) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := s.DB.Where("whop_company_id = ?", companyID).
		Order("created_at DESC").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

// GetCampaign fetches one campaign scoped to its tenant.
func (s *CampaignService) GetCampaign(companyID, campaignID string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := s.DB.Where("id = ? AND whop_company_id = ?", campaignID, companyID).First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

// SetCampaignActive toggles the owner's on/off switch. Status catches up on
// the next scheduler pass.
func (s *CampaignService) SetCampaignActive(companyID, campaignID string, active bool) error {
	result := s.DB.Model(&models.Campaign{}).
		Where("id = ? AND whop_company_id = ?", campaignID, companyID).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

// RefreshStatuses recomputes and persists the derived status of every
// non-archived campaign. Called by the scheduler.
func (s *CampaignService) RefreshStatuses() error {
	var campaigns []models.Campaign
	if err := s.DB.Where("status <> ?", models.CampaignStatusArchived).Find(&campaigns).Error; err != nil {
		return err
	}

	now := time.Now()
	updated := 0
	for _, campaign := range campaigns {
		next := models.DeriveCampaignStatus(now, campaign.StartDate, campaign.EndDate, campaign.IsActive)
		if next == campaign.Status {
			continue
		}
		if err := s.DB.Model(&models.Campaign{}).
			Where("id = ?", campaign.ID).
			Update("status", next).Error; err != nil {
			log.Printf("❌ [CAMPAIGN] Failed to update status for %s: %v", campaign.ID, err)
			continue
		}
		updated++
	}
	if updated > 0 {
		log.Printf("✅ [CAMPAIGN] Refreshed %d campaign status(es)", updated)
	}
	return nil
}
