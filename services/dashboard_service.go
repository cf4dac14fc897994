package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"referly-server/models"

	"gorm.io/gorm"
)

// ArchiveStore is where dashboard exports get archived. Nil disables
// archival; upload failures never fail the export itself.
type ArchiveStore interface {
	Put(key string, data []byte, contentType string) error
}

type DashboardService struct {
	DB      *gorm.DB
	Archive ArchiveStore
}

func NewDashboardService(db *gorm.DB, archive ArchiveStore) *DashboardService {
	return &DashboardService{DB: db, Archive: archive}
}

// TopReferrer is one row of the overview's top-5 list.
type TopReferrer struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Referrals int64  `json:"referrals"`
}

// Overview is the creator dashboard headline block.
type Overview struct {
	TotalReferrals    int64         `json:"total_referrals"`
	TotalConversions  int64         `json:"total_conversions"`
	ConversionRate    float64       `json:"conversion_rate"`
	RevenueAttributed float64       `json:"revenue_attributed"`
	ActiveReferrers   int64         `json:"active_referrers"`
	TopReferrers      []TopReferrer `json:"top_referrers"`
}

// ComputeOverviewRates derives the two rounded overview figures from raw
// totals. Rate is 0 when there are no referrals at all.
func ComputeOverviewRates(totalReferrals, totalConversions int64, revenue float64) (rate, rounded float64) {
	if totalReferrals > 0 {
		rate = Round1(float64(totalConversions) / float64(totalReferrals) * 100)
	}
	return rate, Round2(revenue)
}

// GetOverview aggregates tenant-wide referral activity for a time window.
func (s *DashboardService) GetOverview(companyID, window string) (*Overview, error) {
	since := WindowStart(window, time.Now())
	base := s.DB.Model(&models.Referral{}).
		Joins("INNER JOIN users ON users.id = referrals.referrer_id").
		Where("users.whop_company_id = ?", companyID).
		Where("referrals.created_at >= ?", since)

	var totalReferrals int64
	if err := base.Session(&gorm.Session{}).Count(&totalReferrals).Error; err != nil {
		return nil, err
	}

	var totalConversions int64
	if err := base.Session(&gorm.Session{}).
		Where("referrals.status = ?", models.ReferralStatusConverted).
		Count(&totalConversions).Error; err != nil {
		return nil, err
	}

	var revenue float64
	if err := base.Session(&gorm.Session{}).
		Where("referrals.status = ?", models.ReferralStatusConverted).
		Select("COALESCE(SUM(referrals.revenue_attributed), 0)").
		Scan(&revenue).Error; err != nil {
		return nil, err
	}

	var activeReferrers int64
	if err := base.Session(&gorm.Session{}).
		Distinct("referrals.referrer_id").
		Count(&activeReferrers).Error; err != nil {
		return nil, err
	}

	var top []TopReferrer
	if err := base.Session(&gorm.Session{}).
		Select("users.id AS user_id, COALESCE(users.username, 'Unknown') AS username, COUNT(referrals.id) AS referrals").
		Group("users.id, users.username").
		Order("referrals DESC").
		Limit(5).
		Scan(&top).Error; err != nil {
		return nil, err
	}

	rate, rounded := ComputeOverviewRates(totalReferrals, totalConversions, revenue)
	return &Overview{
		TotalReferrals:    totalReferrals,
		TotalConversions:  totalConversions,
		ConversionRate:    rate,
		RevenueAttributed: rounded,
		ActiveReferrers:   activeReferrers,
		TopReferrers:      top,
	}, nil
}

// ReferrerRow is one referrer in the admin list and in exports.
type ReferrerRow struct {
	UserID            string  `json:"user_id"`
	Username          string  `json:"username"`
	Email             string  `json:"email"`
	Referrals         int64   `json:"referrals"`
	Conversions       int64   `json:"conversions"`
	ConversionRate    float64 `json:"conversion_rate"`
	RevenueAttributed float64 `json:"revenue_attributed"`
	RewardsEarned     int64   `json:"rewards_earned"`
}

// ReferrerListParams narrows and orders the referrer list.
type ReferrerListParams struct {
	Search    string
	SortBy    string
	Ascending bool
	Page      int
	PageSize  int
}

// ReferrerList is one page plus the totals the pagination is drawn from.
type ReferrerList struct {
	Referrers  []ReferrerRow `json:"referrers"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// FilterReferrers keeps rows whose username or email contains the query,
// case-insensitively. Empty query keeps everything.
func FilterReferrers(rows []ReferrerRow, search string) []ReferrerRow {
	if search == "" {
		return rows
	}
	needle := strings.ToLower(search)
	filtered := make([]ReferrerRow, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.Username), needle) ||
			strings.Contains(strings.ToLower(row.Email), needle) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// SortReferrers orders rows by the named field, descending unless ascending
// is set. Unknown fields sort by referral count.
func SortReferrers(rows []ReferrerRow, sortBy string, ascending bool) {
	less := func(a, b ReferrerRow) bool {
		switch sortBy {
		case "username":
			return strings.ToLower(a.Username) < strings.ToLower(b.Username)
		case "conversions":
			return a.Conversions < b.Conversions
		case "conversion_rate":
			return a.ConversionRate < b.ConversionRate
		case "revenue_attributed":
			return a.RevenueAttributed < b.RevenueAttributed
		case "rewards_earned":
			return a.RewardsEarned < b.RewardsEarned
		default:
			return a.Referrals < b.Referrals
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if ascending {
			return less(rows[i], rows[j])
		}
		return less(rows[j], rows[i])
	})
}

// PaginateReferrers slices one page out of the sorted rows. Pages are
// 1-based; out-of-range pages return an empty slice.
func PaginateReferrers(rows []ReferrerRow, page, pageSize int) []ReferrerRow {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return []ReferrerRow{}
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// GetReferrerList returns a filtered, sorted page of referrers that have at
// least one referral in the window.
func (s *DashboardService) GetReferrerList(companyID, window string, params ReferrerListParams) (*ReferrerList, error) {
	rows, err := s.fetchReferrerRows(companyID, window)
	if err != nil {
		return nil, err
	}

	rows = FilterReferrers(rows, params.Search)
	SortReferrers(rows, params.SortBy, params.Ascending)

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	return &ReferrerList{
		Referrers:  PaginateReferrers(rows, page, pageSize),
		Total:      len(rows),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (len(rows) + pageSize - 1) / pageSize,
	}, nil
}

func (s *DashboardService) fetchReferrerRows(companyID, window string) ([]ReferrerRow, error) {
	since := WindowStart(window, time.Now())

	var rows []ReferrerRow
	err := s.DB.Raw(`
		SELECT users.id AS user_id,
		       COALESCE(users.username, 'Unknown') AS username,
		       COALESCE(users.email, '') AS email,
		       COUNT(referrals.id) AS referrals,
		       COUNT(CASE WHEN referrals.status = ? THEN 1 END) AS conversions,
		       COALESCE(SUM(CASE WHEN referrals.status = ? THEN referrals.revenue_attributed ELSE 0 END), 0) AS revenue_attributed,
		       (SELECT COUNT(*) FROM reward_redemptions rr
		        WHERE rr.user_id = users.id AND rr.status IN (?, ?)) AS rewards_earned
		FROM referrals
		INNER JOIN users ON users.id = referrals.referrer_id
		WHERE users.whop_company_id = ? AND referrals.created_at >= ?
		GROUP BY users.id, users.username, users.email
		HAVING COUNT(referrals.id) > 0
	`, models.ReferralStatusConverted, models.ReferralStatusConverted,
		models.RedemptionStatusGranted, models.RedemptionStatusClaimed,
		companyID, since).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		if rows[i].Referrals > 0 {
			rows[i].ConversionRate = Round1(float64(rows[i].Conversions) / float64(rows[i].Referrals) * 100)
		}
		rows[i].RevenueAttributed = Round2(rows[i].RevenueAttributed)
	}
	return rows, nil
}

// ChartPoint is one day of referral activity.
type ChartPoint struct {
	Date        string `json:"date"`
	Referrals   int64  `json:"referrals"`
	Conversions int64  `json:"conversions"`
}

// chartStart is the UTC midnight six days before now, the left edge of the
// seven-day chart window. Days are bucketed in UTC regardless of the
// server's zone so the cutoff and the grouping agree.
func chartStart(now time.Time) time.Time {
	day := now.UTC()
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -6)
}

// GetChartData returns daily referral and conversion counts for the last
// seven days, oldest first, with zero-filled gaps.
func (s *DashboardService) GetChartData(companyID string) ([]ChartPoint, error) {
	since := chartStart(time.Now())

	type dayRow struct {
		Day         string
		Referrals   int64
		Conversions int64
	}
	var rows []dayRow
	err := s.DB.Raw(`
		SELECT TO_CHAR(referrals.created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
		       COUNT(referrals.id) AS referrals,
		       COUNT(CASE WHEN referrals.status = ? THEN 1 END) AS conversions
		FROM referrals
		INNER JOIN users ON users.id = referrals.referrer_id
		WHERE users.whop_company_id = ? AND referrals.created_at >= ?
		GROUP BY day
		ORDER BY day ASC
	`, models.ReferralStatusConverted, companyID, since).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]dayRow, len(rows))
	for _, row := range rows {
		byDay[row.Day] = row
	}

	points := make([]ChartPoint, 0, 7)
	for i := 0; i < 7; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		row := byDay[day]
		points = append(points, ChartPoint{Date: day, Referrals: row.Referrals, Conversions: row.Conversions})
	}
	return points, nil
}

// BuildReferrersCSV renders referrer rows as CSV with a header row.
func BuildReferrersCSV(rows []ReferrerRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"username", "email", "referrals", "conversions", "conversion_rate", "revenue_attributed", "rewards_earned"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			row.Username,
			row.Email,
			fmt.Sprintf("%d", row.Referrals),
			fmt.Sprintf("%d", row.Conversions),
			fmt.Sprintf("%.1f", row.ConversionRate),
			fmt.Sprintf("%.2f", row.RevenueAttributed),
			fmt.Sprintf("%d", row.RewardsEarned),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Export is a rendered referrer export ready to stream to the caller.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportReferrers renders the full in-window referrer list as CSV or JSON
// and archives a copy when an archive store is configured.
func (s *DashboardService) ExportReferrers(companyID, window, format string) (*Export, error) {
	rows, err := s.fetchReferrerRows(companyID, window)
	if err != nil {
		return nil, err
	}
	SortReferrers(rows, "referrals", false)

	stamp := time.Now().Format("2006-01-02")
	export := &Export{}
	switch format {
	case "json":
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return nil, err
		}
		export.Filename = fmt.Sprintf("referrers-%s.json", stamp)
		export.ContentType = "application/json"
		export.Data = data
	default:
		data, err := BuildReferrersCSV(rows)
		if err != nil {
			return nil, err
		}
		export.Filename = fmt.Sprintf("referrers-%s.csv", stamp)
		export.ContentType = "text/csv"
		export.Data = data
	}

	if s.Archive != nil {
		key := fmt.Sprintf("exports/%s/%s", companyID, export.Filename)
		if err := s.Archive.Put(key, export.Data, export.ContentType); err != nil {
			log.Printf("⚠️ [DASHBOARD] Failed to archive export %s: %v", key, err)
		}
	}
	return export, nil
}
