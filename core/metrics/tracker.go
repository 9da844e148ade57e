package metrics

import (
	"sync"
	"time"
)

// Tracker records hit timestamps and counts those within a trailing window.
type Tracker struct {
	mu     sync.Mutex
	window time.Duration
	hits   []time.Time
	now    func() time.Time
}

// NewTracker creates a tracker counting hits over window.
func NewTracker(window time.Duration) *Tracker {
	if window <= 0 {
		window = time.Hour
	}
	return &Tracker{window: window, now: time.Now}
}

// Record adds a hit at the current time.
func (t *Tracker) Record() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.prune(now)
	t.hits = append(t.hits, now)
}

// Count returns the number of hits within the window.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prune(t.now())
	return len(t.hits)
}

// Window returns the trailing period counted by the tracker.
func (t *Tracker) Window() time.Duration {
	return t.window
}

// prune drops hits older than the window. Hits are appended in order.
func (t *Tracker) prune(now time.Time) {
	cutoff := now.Add(-t.window)
	i := 0
	for i < len(t.hits) && !t.hits[i].After(cutoff) {
		i++
	}
	if i > 0 {
		t.hits = append(t.hits[:0], t.hits[i:]...)
	}
}
