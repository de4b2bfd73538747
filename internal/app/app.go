// Package app is the composition root: it turns a Config into a store, the
// telemetry instruments and board sessions.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yurufuwa/board/internal/board"
	"github.com/yurufuwa/board/internal/clock"
	"github.com/yurufuwa/board/internal/render"
	"github.com/yurufuwa/board/internal/store"
	"github.com/yurufuwa/board/pkg/config"
	"github.com/yurufuwa/board/pkg/logging"
	"github.com/yurufuwa/board/pkg/telemetry"
)

// App owns the process-wide pieces shared by every session
type App struct {
	cfg     *config.Config
	store   store.Store
	clock   clock.Clock
	metrics *telemetry.Metrics
	seed    uint64
	logger  *zap.Logger
}

// New opens the configured store
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	s, err := store.Open(ctx, &cfg.Store, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return NewWithStore(cfg, s, clock.Real()), nil
}

// NewWithStore builds an app over an already opened store
func NewWithStore(cfg *config.Config, s store.Store, c clock.Clock) *App {
	logger := logging.WithComponent("app")
	metrics, err := telemetry.GlobalMetrics()
	if err != nil {
		logger.Warn("Metrics unavailable, recording nothing", zap.Error(err))
		metrics = telemetry.NoopMetrics()
	}
	return &App{
		cfg:     cfg,
		store:   s,
		clock:   c,
		metrics: metrics,
		seed:    uint64(c.Now().UnixNano()),
		logger:  logger,
	}
}

// Config returns the configuration the app was built from
func (a *App) Config() *config.Config { return a.cfg }

// Store returns the shared store
func (a *App) Store() store.Store { return a.store }

// Clock returns the app clock
func (a *App) Clock() clock.Clock { return a.clock }

// Close releases the store
func (a *App) Close() error {
	return a.store.Close()
}

// Session is one page load: a board for one room plus its subscribers
type Session struct {
	Board  *board.Board
	Layout *render.Layout
	Toasts *render.Toasts

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Open performs a page load of room. A failed store read still yields a
// usable, empty session.
func (a *App) Open(ctx context.Context, room string) (*Session, error) {
	bc := &a.cfg.Board
	if room == "" {
		room = bc.Room
	}

	s := &Session{
		Layout: render.NewLayout(bc.CanvasWidth, bc.CanvasHeight, a.seed),
		Toasts: render.NewToasts(bc.ToastCap, a.clock.Now),
	}
	a.seed++

	logger := logging.WithRoom(room)
	b, err := board.New(board.Options{
		Store:           a.store,
		Clock:           a.clock,
		Keys:            board.KeysWithPrefix(a.cfg.Store.KeyPrefix),
		Defaults:        board.DefaultsFromConfig(bc),
		MaxVisible:      bc.MaxVisible,
		NotificationCap: bc.NotificationCap,
		Renderer:        board.Renderers{s.Layout, render.NewLogRenderer(logger)},
		Notifier:        board.Notifiers{s.Toasts, render.NewLogRenderer(logger)},
		Metrics:         a.metrics,
		Logger:          logging.WithComponent("board"),
	})
	if err != nil {
		return nil, err
	}
	if err := b.Load(ctx, room); err != nil {
		a.logger.Warn("Room opened without its snapshot", zap.String("room", room), zap.Error(err))
	}
	s.Board = b
	return s, nil
}

// StartDrift runs the layout's drift tick in the background until Close
func (s *Session) StartDrift(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		_ = s.Layout.Run(ctx, interval)
	}()
}

// Close stops the drift tick and drops the board's pending expiries
func (s *Session) Close() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	s.Board.Close()
}
