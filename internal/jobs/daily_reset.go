package jobs

import (
	"log"
	"time"

	"marriage-bot/internal/services"
)

// DailyReset wipes all proposals and marriages at local midnight every day.
// Baby records are deliberately left in place.
type DailyReset struct {
	marriageService *services.MarriageService
	stopChan        chan struct{}
}

// NewDailyReset creates a new daily reset job
func NewDailyReset(marriageService *services.MarriageService) *DailyReset {
	return &DailyReset{
		marriageService: marriageService,
		stopChan:        make(chan struct{}),
	}
}

// Start begins the midnight reset loop
func (dr *DailyReset) Start() {
	log.Printf("[DailyReset] Starting daily reset job (next run: %v)", nextMidnight())

	for {
		timer := time.NewTimer(time.Until(nextMidnight()))

		select {
		case <-timer.C:
			dr.reset()
		case <-dr.stopChan:
			timer.Stop()
			log.Println("[DailyReset] Stopping daily reset job")
			return
		}
	}
}

// Stop stops the reset loop
func (dr *DailyReset) Stop() {
	close(dr.stopChan)
}

func (dr *DailyReset) reset() {
	if err := dr.marriageService.DailyResetAll(); err != nil {
		log.Printf("[DailyReset] Error running daily reset: %v", err)
		return
	}
	log.Println("[DailyReset] Daily reset completed")
}

// nextMidnight returns the upcoming local midnight.
func nextMidnight() time.Time {
	now := time.Now()
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
}
