// workers/user_sync_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"referly-server/models"
	"referly-server/services"

	"gorm.io/gorm"
)

// UserSyncWorker periodically refreshes mirrored Whop profiles (username,
// email, avatar) so leaderboards and exports show current names. Profile
// data is cosmetic; any fetch failure is logged and skipped.
type UserSyncWorker struct {
	db       *gorm.DB
	whop     *services.WhopClient
	interval time.Duration
	maxAge   time.Duration
}

func NewUserSyncWorker(db *gorm.DB, whop *services.WhopClient) *UserSyncWorker {
	return &UserSyncWorker{
		db:       db,
		whop:     whop,
		interval: 5 * time.Minute,
		maxAge:   24 * time.Hour,
	}
}

func (w *UserSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting User Sync Worker (Whop profiles → users)…")
	go w.run(ctx)
}

func (w *UserSyncWorker) run(ctx context.Context) {
	if err := w.syncBatch(ctx); err != nil {
		log.Printf("⚠️ Initial profile sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx); err != nil {
				log.Printf("❌ Profile sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ User Sync Worker stopped")
			return
		}
	}
}

// syncBatch refreshes the stalest profiles first, a bounded batch per pass.
func (w *UserSyncWorker) syncBatch(ctx context.Context) error {
	cutoff := time.Now().Add(-w.maxAge)

	var users []models.User
	err := w.db.Where("updated_at < ? OR username IS NULL", cutoff).
		Order("updated_at ASC").
		Limit(50).
		Find(&users).Error
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	log.Printf("[SYNC] 📥 Refreshing %d user profile(s) from Whop…", len(users))

	var updated, failed int
	for _, user := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		profile, err := w.whop.GetUserProfile(user.WhopUserID)
		if err != nil {
			failed++
			log.Printf("[SYNC] ⚠️ Failed to fetch profile for %s: %v", user.WhopUserID, err)
			continue
		}

		updates := map[string]interface{}{
			"updated_at": time.Now(),
		}
		if profile.Username != "" {
			updates["username"] = profile.Username
		}
		if profile.Email != "" {
			updates["email"] = profile.Email
		}
		if profile.ProfilePicture != nil {
			updates["avatar_url"] = *profile.ProfilePicture
		}

		if err := w.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			failed++
			log.Printf("[SYNC] ⚠️ Failed to update user %s: %v", user.ID, err)
			continue
		}
		updated++
	}

	log.Printf("[SYNC] ✅ Refreshed %d profile(s) (%d failed)", updated, failed)
	return nil
}
