package services

import (
	"log"
	"math/rand"
	"sync"
	"time"
)

// BirthFunc materializes the outcome of a finished gestation. It is invoked
// off the timer goroutine; any error is logged and swallowed so a failing
// store or transport can never break the timer path.
type BirthFunc func(user1ID, user2ID, groupID string, babyCount int)

type babyProcess struct {
	user1ID   string
	user2ID   string
	groupID   string
	startTime time.Time
	duration  time.Duration
	timer     *time.Timer
	onBirth   BirthFunc
}

// BabyTracker keeps at most one active gestation process per unordered user
// pair. The registry is a single map behind one mutex; Start and the timer
// completion both hold it for their whole check-and-insert / pop section.
type BabyTracker struct {
	mu        sync.Mutex
	processes map[[2]string]*babyProcess

	// randFloat is swapped out in tests for a deterministic draw.
	randFloat func() float64
}

func NewBabyTracker() *BabyTracker {
	return &BabyTracker{
		processes: make(map[[2]string]*babyProcess),
		randFloat: rand.Float64,
	}
}

// processKey builds the order-independent registry key for a pair.
func processKey(user1ID, user2ID string) [2]string {
	if user1ID > user2ID {
		user1ID, user2ID = user2ID, user1ID
	}
	return [2]string{user1ID, user2ID}
}

// Start registers a gestation process for the pair and schedules its
// completion. Returns false if the pair already has an active process.
func (t *BabyTracker) Start(user1ID, user2ID, groupID string, duration time.Duration, onBirth BirthFunc) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := processKey(user1ID, user2ID)
	if _, exists := t.processes[key]; exists {
		return false
	}

	process := &babyProcess{
		user1ID:   user1ID,
		user2ID:   user2ID,
		groupID:   groupID,
		startTime: time.Now(),
		duration:  duration,
		onBirth:   onBirth,
	}
	process.timer = time.AfterFunc(duration, func() {
		t.complete(key)
	})
	t.processes[key] = process

	log.Printf("[BabyTracker] Gestation started: %s & %s (duration %v)", user1ID, user2ID, duration)
	return true
}

// complete pops the process and fires the birth callback. A missing entry is
// a silent no-op: the process was cancelled while the timer was in flight.
func (t *BabyTracker) complete(key [2]string) {
	t.mu.Lock()
	process, ok := t.processes[key]
	if ok {
		delete(t.processes, key)
	}
	randFloat := t.randFloat
	t.mu.Unlock()

	if !ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[BabyTracker] Birth callback panicked for %s & %s: %v", process.user1ID, process.user2ID, r)
		}
	}()

	babyCount := BabyCountFromProb(randFloat())
	process.onBirth(process.user1ID, process.user2ID, process.groupID, babyCount)

	log.Printf("[BabyTracker] Gestation completed: %s & %s, babies: %d", process.user1ID, process.user2ID, babyCount)
}

// IsActive reports whether the pair has an active process.
func (t *BabyTracker) IsActive(user1ID, user2ID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, exists := t.processes[processKey(user1ID, user2ID)]
	return exists
}

// RemainingSeconds returns the estimated seconds until the pair's process
// completes, floored at 0. Returns 0 when no process is active.
func (t *BabyTracker) RemainingSeconds(user1ID, user2ID string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	process, exists := t.processes[processKey(user1ID, user2ID)]
	if !exists {
		return 0
	}

	remaining := process.duration.Seconds() - time.Since(process.startTime).Seconds()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ActiveCount returns the number of registered processes.
func (t *BabyTracker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.processes)
}

// Cleanup cancels every active process and clears the registry. Timers that
// already fired find their entry gone and do nothing.
func (t *BabyTracker) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, process := range t.processes {
		process.timer.Stop()
		delete(t.processes, key)
	}

	log.Println("[BabyTracker] All gestation processes cancelled")
}

// BabyCountFromProb maps a uniform draw in [0,1) to a baby count:
// 50% none, 30% one, 10% twins, 5% triplets, 5% quadruplets.
func BabyCountFromProb(prob float64) int {
	switch {
	case prob < 0.5:
		return 0
	case prob < 0.8:
		return 1
	case prob < 0.9:
		return 2
	case prob < 0.95:
		return 3
	default:
		return 4
	}
}
