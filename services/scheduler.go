package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartStatusScheduler keeps stored campaign statuses in sync with their
// date windows.
func (s *CampaignService) StartStatusScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: roll campaigns through draft/active/ended
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			if err := s.RefreshStatuses(); err != nil {
				log.Printf("[Scheduler] Campaign status refresh failed: %v", err)
			}
		}),
	)
}
