// Package board is the ephemeral post lifecycle core: posts with a lifetime
// scoped to a room, their expiry, reactions and pins, mirrored into a
// key/value store after every change.
package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/yurufuwa/board/internal/clock"
	"github.com/yurufuwa/board/internal/models"
	"github.com/yurufuwa/board/internal/store"
	"github.com/yurufuwa/board/pkg/logging"
	"github.com/yurufuwa/board/pkg/telemetry"
)

// Options wires a Board to its collaborators
type Options struct {
	Store           store.Store
	Clock           clock.Clock
	Keys            Keys
	Defaults        Defaults
	MaxVisible      int
	NotificationCap int
	Renderer        Renderer
	Notifier        Notifier
	Metrics         *telemetry.Metrics
	Logger          *zap.Logger
}

// Board is one session's view of one room. Every operation, including timer
// driven expiry, runs to completion under a single lock.
type Board struct {
	mu sync.Mutex

	clock      clock.Clock
	repo       *Repository
	sched      *Scheduler
	engine     *Engine
	notes      *NotificationLog
	prefs      *Preferences
	renderer   Renderer
	notifier   Notifier
	metrics    *telemetry.Metrics
	logger     *zap.Logger
	maxVisible int

	loaded bool
	closed bool
}

// New creates an unloaded board. Call Load before anything that mutates.
func New(opts Options) (*Board, error) {
	if opts.Store == nil {
		return nil, errors.New("board: store is required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Keys == (Keys{}) {
		opts.Keys = KeysWithPrefix("yurufuwa_")
	}
	if opts.MaxVisible <= 0 {
		opts.MaxVisible = 20
	}
	if opts.Renderer == nil {
		opts.Renderer = Renderers(nil)
	}
	if opts.Notifier == nil {
		opts.Notifier = Notifiers(nil)
	}
	if opts.Metrics == nil {
		opts.Metrics = telemetry.NoopMetrics()
	}
	if opts.Logger == nil {
		opts.Logger = logging.WithComponent("board")
	}

	b := &Board{
		clock:      opts.Clock,
		renderer:   opts.Renderer,
		notifier:   opts.Notifier,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		maxVisible: opts.MaxVisible,
	}
	b.repo = NewRepository(opts.Store, opts.Keys, opts.Defaults, opts.Clock.Now)
	b.repo.OnPersistError(b.persistFailed)
	b.notes = NewNotificationLog(opts.Store, opts.Keys.Notifications, opts.NotificationCap)
	b.prefs = NewPreferences(opts.Store, opts.Keys)
	b.engine = NewEngine(b.repo, b.notes, opts.Clock.Now)
	b.sched = NewScheduler(opts.Clock, b.expire)
	return b, nil
}

// Load reads the snapshot for room, renders the survivors and schedules
// their remaining lifetimes. A store read failure leaves the board empty
// but usable in memory, with snapshot writes suspended for its lifetime.
func (b *Board) Load(ctx context.Context, room string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if b.loaded {
		return ErrAlreadyLoaded
	}
	room = strings.TrimSpace(room)
	if room == "" {
		room = b.repo.defaults.Room
	}

	ctx, span := b.span(ctx, "board.load", attribute.String("room", room))
	defer span.End()

	b.loaded = true
	b.logger = b.logger.With(zap.String("room", room))

	survivors, err := b.repo.LoadForRoom(ctx, room, b.clock.Now())
	if err != nil {
		span.RecordError(err)
		b.logger.Warn("Load failed, starting empty with writes suspended", zap.Error(err))
		return fmt.Errorf("load room %s: %w", room, err)
	}

	for _, s := range survivors {
		b.renderer.Render(s.Post)
		b.sched.Schedule(s.Post.ID, s.Remaining)
	}
	return nil
}

// Create posts a new note into the active room
func (b *Board) Create(ctx context.Context, nickname, content, category string, lifetimeSeconds int) (models.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ready(); err != nil {
		return models.Post{}, err
	}

	ctx, span := b.span(ctx, "board.create")
	defer span.End()

	post, err := b.repo.Create(ctx, nickname, content, category, lifetimeSeconds)
	if err != nil {
		if errors.Is(err, ErrEmptyContent) {
			b.notifier.Notify(MsgEmptyContent, models.SeverityWarning)
		}
		return models.Post{}, err
	}
	span.SetAttributes(attribute.Int64("post_id", post.ID))

	if err := b.prefs.SaveNickname(ctx, nickname); err != nil {
		b.logger.Warn("Failed to save nickname", zap.Error(err))
	}

	b.renderer.Render(post)
	b.sched.Schedule(post.ID, post.Lifetime())
	telemetry.Add(ctx, b.metrics.PostsCreated, post.Room)
	b.notifier.Notify(MsgPosted, models.SeveritySuccess)

	b.logger.Info("Post created",
		zap.Int64("post_id", post.ID),
		zap.String("category", post.Category),
		zap.Duration("lifetime", post.Lifetime()))
	return post, nil
}

// Remove deletes an unpinned post. Absent and pinned ids are ignored.
func (b *Board) Remove(ctx context.Context, id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ready() != nil {
		return false
	}

	ctx, span := b.span(ctx, "board.remove", attribute.Int64("post_id", id))
	defer span.End()

	if !b.removeLocked(ctx, id) {
		return false
	}
	telemetry.Add(ctx, b.metrics.PostsRemoved, b.repo.Room())
	return true
}

// expire is the scheduler callback for an elapsed lifetime
func (b *Board) expire(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	ctx, span := b.span(context.Background(), "board.expire", attribute.Int64("post_id", id))
	defer span.End()

	if b.removeLocked(ctx, id) {
		telemetry.Add(ctx, b.metrics.PostsExpired, b.repo.Room())
		b.logger.Info("Post expired", zap.Int64("post_id", id))
	}
}

func (b *Board) removeLocked(ctx context.Context, id int64) bool {
	post, ok := b.repo.Remove(ctx, id)
	if !ok {
		return false
	}
	b.renderer.Remove(post)
	return true
}

// Find returns the post with id
func (b *Board) Find(id int64) (models.Post, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.repo.Find(id)
}

// Posts returns every post of the active room in creation order
func (b *Board) Posts() []models.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.repo.Posts()
}

// View returns what a viewer sees: posts matching the category filter ("" or
// "all" shows everything), then the oldest unpinned ones hidden until at
// most MaxVisible remain. Hidden posts stay on the board.
func (b *Board) View(filter string) []models.Post {
	b.mu.Lock()
	defer b.mu.Unlock()

	posts := b.repo.Posts()
	filter = strings.ReplaceAll(strings.TrimSpace(filter), " ", "")
	if filter != "" && filter != "all" {
		matched := posts[:0]
		for _, p := range posts {
			if strings.ReplaceAll(p.Category, " ", "") == filter {
				matched = append(matched, p)
			}
		}
		posts = matched
	}

	excess := len(posts) - b.maxVisible
	if excess <= 0 {
		return posts
	}
	visible := make([]models.Post, 0, b.maxVisible)
	for _, p := range posts {
		if excess > 0 && !p.IsPinned {
			excess--
			continue
		}
		visible = append(visible, p)
	}
	return visible
}

// ToggleReaction flips the local user's reaction of kind on post id
func (b *Board) ToggleReaction(ctx context.Context, id int64, kind models.ReactionKind) (ReactionResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ready(); err != nil {
		return ReactionResult{}, err
	}

	ctx, span := b.span(ctx, "board.toggle_reaction",
		attribute.Int64("post_id", id),
		attribute.String("kind", string(kind)))
	defer span.End()

	result, err := b.engine.ToggleReaction(ctx, id, kind)
	if err != nil {
		return ReactionResult{}, err
	}
	b.renderer.Update(result.Post)
	telemetry.Add(ctx, b.metrics.ReactionsToggled, b.repo.Room(), attribute.String("kind", string(kind)))
	return result, nil
}

// TogglePin pins or unpins post id
func (b *Board) TogglePin(ctx context.Context, id int64) (models.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ready(); err != nil {
		return models.Post{}, err
	}

	ctx, span := b.span(ctx, "board.toggle_pin", attribute.Int64("post_id", id))
	defer span.End()

	post, err := b.engine.TogglePin(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	b.renderer.Update(post)
	telemetry.Add(ctx, b.metrics.PinsToggled, b.repo.Room())

	if post.IsPinned {
		b.notifier.Notify(MsgPinned, models.SeveritySuccess)
	} else {
		b.notifier.Notify(MsgUnpinned, models.SeveritySuccess)
	}
	return post, nil
}

// Notifications returns up to limit reaction notifications, newest first
func (b *Board) Notifications(ctx context.Context, limit int) ([]models.Notification, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ready(); err != nil {
		return nil, err
	}
	return b.notes.List(ctx, limit)
}

// Preferences returns the local user's nickname and theme settings
func (b *Board) Preferences() *Preferences {
	return b.prefs
}

// Room returns the active room
func (b *Board) Room() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.repo.Room()
}

// RoomName returns the display name of the active room
func (b *Board) RoomName() string {
	return DisplayName(b.Room())
}

// Deadline returns when post id is due to expire, if an expiry is pending
func (b *Board) Deadline(id int64) (time.Time, bool) {
	return b.sched.Deadline(id)
}

// Now reads the board's clock
func (b *Board) Now() time.Time {
	return b.clock.Now()
}

// ShareText returns the share text for post id
func (b *Board) ShareText(id int64) (string, error) {
	post, ok := b.Find(id)
	if !ok {
		return "", ErrPostNotFound
	}
	return ShareText(post), nil
}

// Close drops pending expiries. Persisted posts are reconstructed by the
// next Load from their createdAt.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.sched.Stop()
}

func (b *Board) ready() error {
	if b.closed {
		return ErrClosed
	}
	if !b.loaded {
		return ErrNotLoaded
	}
	return nil
}

// persistFailed runs under b.mu, from inside a repository write
func (b *Board) persistFailed(err error) {
	telemetry.Add(context.Background(), b.metrics.PersistFailures, b.repo.Room())
	b.notifier.Notify(MsgPersistFailed, models.SeverityWarning)
	b.logger.Warn("Degraded persistence", zap.Error(err))
}

func (b *Board) span(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return telemetry.StartSpan(ctx, name, trace.WithAttributes(attrs...))
}
