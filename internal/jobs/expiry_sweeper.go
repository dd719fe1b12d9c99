package jobs

import (
	"log"
	"time"

	"marriage-bot/internal/services"
)

// ExpirySweeper periodically expires stale pending proposals. It is the only
// self-healing mechanism in the system: proposals missed by their one-shot
// expiry timer still reach a terminal state here.
type ExpirySweeper struct {
	marriageService *services.MarriageService
	interval        time.Duration
	stopChan        chan struct{}
}

// NewExpirySweeper creates a new proposal expiry sweep job
func NewExpirySweeper(marriageService *services.MarriageService, interval time.Duration) *ExpirySweeper {
	return &ExpirySweeper{
		marriageService: marriageService,
		interval:        interval,
		stopChan:        make(chan struct{}),
	}
}

// Start begins the sweep loop
func (es *ExpirySweeper) Start() {
	log.Printf("[ExpirySweeper] Starting proposal expiry job (interval: %v)", es.interval)

	ticker := time.NewTicker(es.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			es.sweep()
		case <-es.stopChan:
			log.Println("[ExpirySweeper] Stopping proposal expiry job")
			return
		}
	}
}

// Stop stops the sweep loop
func (es *ExpirySweeper) Stop() {
	close(es.stopChan)
}

func (es *ExpirySweeper) sweep() {
	count, err := es.marriageService.CleanupExpiredProposals()
	if err != nil {
		log.Printf("[ExpirySweeper] Error sweeping expired proposals: %v", err)
		return
	}

	if count > 0 {
		log.Printf("[ExpirySweeper] Expired %d stale proposals", count)
	}
}
