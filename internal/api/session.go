package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yurufuwa/board/internal/app"
	"github.com/yurufuwa/board/pkg/logging"
)

// Opener starts a page load for a room
type Opener interface {
	Open(ctx context.Context, room string) (*app.Session, error)
}

// Sessions holds the single live board session of the server. Loading a
// room replaces it, the way navigating a tab replaces the page.
type Sessions struct {
	opener      Opener
	defaultRoom string
	drift       time.Duration
	logger      *zap.Logger

	mu      sync.Mutex
	current *app.Session
}

// NewSessions creates a holder. A positive drift starts the layout tick for
// each session opened.
func NewSessions(opener Opener, defaultRoom string, drift time.Duration) *Sessions {
	return &Sessions{
		opener:      opener,
		defaultRoom: defaultRoom,
		drift:       drift,
		logger:      logging.WithComponent("sessions"),
	}
}

// Load opens room and makes it the live session
func (s *Sessions) Load(ctx context.Context, room string) (*app.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, room)
}

// load must hold s.mu
func (s *Sessions) load(ctx context.Context, room string) (*app.Session, error) {
	if room == "" {
		room = s.defaultRoom
	}
	// The old page goes away before the new one reads the snapshot
	if s.current != nil {
		s.current.Close()
		s.current = nil
	}

	next, err := s.opener.Open(ctx, room)
	if err != nil {
		return nil, err
	}
	if s.drift > 0 {
		next.StartDrift(s.drift)
	}
	s.current = next
	s.logger.Info("Room loaded", zap.String("room", room))
	return next, nil
}

// Current returns the live session, loading the default room on first use
func (s *Sessions) Current(ctx context.Context) (*app.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return s.current, nil
	}
	return s.load(ctx, s.defaultRoom)
}

// Close ends the live session
func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Close()
		s.current = nil
	}
}
