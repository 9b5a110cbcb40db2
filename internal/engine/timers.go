package engine

import (
	"sync"
	"time"
)

// timerKey identifies one armed timer: "negotiation" or "confirmation"
// paired with the asset or confirmation-key string the timer guards.
type timerKey struct {
	kind string
	id   string
}

// timerService is an explicit registry of timer handles keyed by (kind, id).
// Cancel-on-resolve is the caller's responsibility; a timer that fires after
// its key was cancelled is a no-op because Cancel removes it from the map
// before the underlying time.Timer can deliver, and any in-flight fire is
// dispatched onto the engine's single serialization goroutine, which
// re-checks state before acting.
type timerService struct {
	mu     sync.Mutex
	timers map[timerKey]*time.Timer
}

func newTimerService() *timerService {
	return &timerService{timers: make(map[timerKey]*time.Timer)}
}

// arm cancels any existing timer for key, then schedules fn to run after d.
func (t *timerService) arm(kind, id string, d time.Duration, fn func()) {
	key := timerKey{kind: kind, id: id}
	t.mu.Lock()
	if existing, ok := t.timers[key]; ok {
		existing.Stop()
	}
	t.timers[key] = time.AfterFunc(d, fn)
	t.mu.Unlock()
}

// cancel stops and removes the timer for key, if any.
func (t *timerService) cancel(kind, id string) {
	key := timerKey{kind: kind, id: id}
	t.mu.Lock()
	if existing, ok := t.timers[key]; ok {
		existing.Stop()
		delete(t.timers, key)
	}
	t.mu.Unlock()
}
