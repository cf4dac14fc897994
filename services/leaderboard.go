package services

import (
	"sort"
	"time"

	"referly-server/models"

	"gorm.io/gorm"
)

// LeaderboardScope selects the points formula. Global boards score one point
// per conversion; campaign boards score ten.
type LeaderboardScope string

const (
	LeaderboardGlobal   LeaderboardScope = "global"
	LeaderboardCampaign LeaderboardScope = "campaign"
)

type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Referrals   int64   `json:"referrals"`
	Conversions int64   `json:"conversions"`
	Points      int64   `json:"points"`
}

// ReferrerAggregate is one referrer's raw in-window totals before scoring.
type ReferrerAggregate struct {
	UserID      string
	Username    *string
	AvatarURL   *string
	Referrals   int64
	Conversions int64
}

// BuildLeaderboard scores, sorts, ranks, and truncates referrer aggregates.
// Global boards drop referrers without a conversion. Ranks are sequential
// 1-based positions after the sort; ties keep distinct ranks.
func BuildLeaderboard(aggregates []ReferrerAggregate, scope LeaderboardScope, limit int) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(aggregates))
	for _, agg := range aggregates {
		if scope == LeaderboardGlobal && agg.Conversions < 1 {
			continue
		}
		points := agg.Conversions
		if scope == LeaderboardCampaign {
			points = agg.Conversions * 10
		}
		entries = append(entries, LeaderboardEntry{
			UserID:      agg.UserID,
			Username:    usernameOrUnknown(agg.Username),
			AvatarURL:   agg.AvatarURL,
			Referrals:   agg.Referrals,
			Conversions: agg.Conversions,
			Points:      points,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// GetGlobal returns the tenant-wide leaderboard for a time window.
func (s *LeaderboardService) GetGlobal(companyID, window string, limit int) ([]LeaderboardEntry, error) {
	aggregates, err := s.fetchAggregates(companyID, nil, WindowStart(window, time.Now()))
	if err != nil {
		return nil, err
	}
	return BuildLeaderboard(aggregates, LeaderboardGlobal, limit), nil
}

// GetCampaign returns the leaderboard restricted to one campaign's referrals.
func (s *LeaderboardService) GetCampaign(companyID, campaignID, window string, limit int) ([]LeaderboardEntry, error) {
	aggregates, err := s.fetchAggregates(companyID, &campaignID, WindowStart(window, time.Now()))
	if err != nil {
		return nil, err
	}
	return BuildLeaderboard(aggregates, LeaderboardCampaign, limit), nil
}

func (s *LeaderboardService) fetchAggregates(companyID string, campaignID *string, since time.Time) ([]ReferrerAggregate, error) {
	query := s.DB.Model(&models.Referral{}).
		Select(`users.id AS user_id, users.username, users.avatar_url,
			COUNT(referrals.id) AS referrals,
			COUNT(CASE WHEN referrals.status = ? THEN 1 END) AS conversions`, models.ReferralStatusConverted).
		Joins("INNER JOIN users ON users.id = referrals.referrer_id").
		Where("users.whop_company_id = ?", companyID).
		Where("referrals.created_at >= ?", since).
		Group("users.id, users.username, users.avatar_url")

	if campaignID != nil && *campaignID != "" {
		query = query.Where("referrals.campaign_id = ?", *campaignID)
	}

	var aggregates []ReferrerAggregate
	if err := query.Scan(&aggregates).Error; err != nil {
		return nil, err
	}
	return aggregates, nil
}
