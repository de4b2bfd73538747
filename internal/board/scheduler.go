package board

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yurufuwa/board/internal/clock"
	"github.com/yurufuwa/board/pkg/logging"
)

// Scheduler owns one deferred expiry per post. It never decides whether the
// post goes away: the expire callback re-checks pin state at fire time.
type Scheduler struct {
	clock  clock.Clock
	expire func(id int64)
	logger *zap.Logger

	mu      sync.Mutex
	pending map[int64]*pendingExpiry
	stopped bool
}

type pendingExpiry struct {
	deadline time.Time
	timer    clock.Timer
}

// NewScheduler creates a scheduler calling expire when a deadline passes
func NewScheduler(c clock.Clock, expire func(id int64)) *Scheduler {
	return &Scheduler{
		clock:   c,
		expire:  expire,
		logger:  logging.WithComponent("scheduler"),
		pending: make(map[int64]*pendingExpiry),
	}
}

// Schedule arranges expire(id) after delay. A post already holding a
// pending expiry keeps it; the bool reports whether a timer was armed.
func (s *Scheduler) Schedule(id int64, delay time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	if _, ok := s.pending[id]; ok {
		s.logger.Debug("Expiry already pending", zap.Int64("post_id", id))
		return false
	}
	if delay < 0 {
		delay = 0
	}

	entry := &pendingExpiry{deadline: s.clock.Now().Add(delay)}
	s.pending[id] = entry
	entry.timer = s.clock.AfterFunc(delay, func() { s.fire(id, entry) })

	s.logger.Debug("Expiry scheduled", zap.Int64("post_id", id), zap.Duration("delay", delay))
	return true
}

func (s *Scheduler) fire(id int64, entry *pendingExpiry) {
	s.mu.Lock()
	if s.stopped || s.pending[id] != entry {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	s.mu.Unlock()

	s.expire(id)
}

// Deadline returns the pending expiry instant for id
func (s *Scheduler) Deadline(id int64) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.pending[id]
	if !ok {
		return time.Time{}, false
	}
	return entry.deadline, true
}

// Pending reports how many expiries have not fired
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop drops every pending expiry, as closing the page would. Nothing fires
// afterwards and further Schedule calls are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	for id, entry := range s.pending {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		delete(s.pending, id)
	}
}
