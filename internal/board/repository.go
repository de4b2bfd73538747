package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yurufuwa/board/internal/models"
	"github.com/yurufuwa/board/internal/store"
	"github.com/yurufuwa/board/pkg/logging"
)

// Survivor is a persisted post that outlived a reload
type Survivor struct {
	Post models.Post
	// Remaining is lifetime - elapsed at load time, always positive
	Remaining time.Duration
}

// Repository holds the active room's posts in creation order and mirrors
// them, together with every other room's posts, into the store.
type Repository struct {
	store    store.Store
	keys     Keys
	defaults Defaults
	now      func() time.Time
	logger   *zap.Logger

	onPersistError func(error)

	room    string
	posts   []*models.Post
	foreign []models.Post
	counter int64

	// loadErr is set while the persisted snapshot could not be read. Writes
	// are suspended so an unread snapshot is never overwritten.
	loadErr error
}

// NewRepository creates an empty repository for defaults.Room
func NewRepository(s store.Store, keys Keys, defaults Defaults, now func() time.Time) *Repository {
	defaults = defaults.withFallbacks()
	return &Repository{
		store:    s,
		keys:     keys,
		defaults: defaults,
		now:      now,
		logger:   logging.WithComponent("repository"),
		room:     defaults.Room,
	}
}

// OnPersistError registers the handler for failed snapshot writes. Without
// one, failures are only logged.
func (r *Repository) OnPersistError(fn func(error)) {
	r.onPersistError = fn
}

// Room returns the active room
func (r *Repository) Room() string { return r.room }

// Counter returns the last assigned id
func (r *Repository) Counter() int64 { return r.counter }

// Degraded reports whether the last load failed to read the snapshot
func (r *Repository) Degraded() bool { return r.loadErr != nil }

// Create validates a submission, appends the new post and persists
func (r *Repository) Create(ctx context.Context, nickname, content, category string, lifetimeSeconds int) (models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Post{}, ErrEmptyContent
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = r.defaults.Nickname
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = r.defaults.Category
	}
	lifetime := time.Duration(lifetimeSeconds) * time.Second
	if lifetimeSeconds <= 0 {
		lifetime = r.defaults.Lifetime
	}

	r.counter++
	post := &models.Post{
		ID:         r.counter,
		Nickname:   nickname,
		Content:    content,
		Category:   category,
		LifetimeMs: lifetime.Milliseconds(),
		Room:       r.room,
		Reactions:  models.ZeroReactions(),
		Reacted:    models.ZeroReacted(),
		CreatedAt:  r.now().UTC().Truncate(time.Millisecond),
	}
	r.posts = append(r.posts, post)
	r.save(ctx)

	return post.Clone(), nil
}

// Remove deletes an unpinned post and persists. Absent or pinned ids are a
// no-op; the bool reports whether a post was removed.
func (r *Repository) Remove(ctx context.Context, id int64) (models.Post, bool) {
	i := r.index(id)
	if i < 0 {
		r.logger.Debug("Remove of absent post ignored", zap.Int64("post_id", id))
		return models.Post{}, false
	}
	post := r.posts[i]
	if post.IsPinned {
		r.logger.Info("Pinned post kept", zap.Int64("post_id", id))
		return models.Post{}, false
	}
	r.posts = append(r.posts[:i], r.posts[i+1:]...)
	r.save(ctx)
	return post.Clone(), true
}

// Find returns a copy of the post with id
func (r *Repository) Find(id int64) (models.Post, bool) {
	if p := r.find(id); p != nil {
		return p.Clone(), true
	}
	return models.Post{}, false
}

// Posts returns copies of the active room's posts in creation order
func (r *Repository) Posts() []models.Post {
	out := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, p.Clone())
	}
	return out
}

func (r *Repository) find(id int64) *models.Post {
	if i := r.index(id); i >= 0 {
		return r.posts[i]
	}
	return nil
}

func (r *Repository) index(id int64) int {
	for i, p := range r.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// LoadForRoom replaces the in-memory state with the persisted snapshot,
// keeping only room's posts that have not expired at now. An elapsed
// lifetime drops a post whether or not it is pinned. Every other room's live
// posts are kept aside and written back untouched by Persist.
func (r *Repository) LoadForRoom(ctx context.Context, room string, now time.Time) ([]Survivor, error) {
	r.room = room
	r.posts = nil
	r.foreign = nil
	r.counter = 0
	r.loadErr = nil

	logger := r.logger.With(zap.String("room", room))

	counterRaw, err := r.store.Get(ctx, r.keys.Counter)
	switch {
	case err == nil:
		if n, perr := strconv.ParseInt(strings.TrimSpace(counterRaw), 10, 64); perr == nil && n > 0 {
			r.counter = n
		} else {
			logger.Warn("Ignoring malformed counter", zap.String("key", r.keys.Counter), zap.String("value", counterRaw))
		}
	case errors.Is(err, store.ErrNotFound):
	default:
		return nil, r.failLoad(fmt.Errorf("read %s: %w", r.keys.Counter, err))
	}

	raw, err := r.store.Get(ctx, r.keys.Posts)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.failLoad(fmt.Errorf("read %s: %w", r.keys.Posts, err))
	}

	var stored []models.Post
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		logger.Warn("Discarding malformed snapshot", zap.String("key", r.keys.Posts), zap.Error(err))
		return nil, nil
	}

	var survivors []Survivor
	var maxID int64
	for i := range stored {
		p := stored[i]
		if p.ID > maxID {
			maxID = p.ID
		}
		if p.Repair(DefaultRoom, r.defaults.Nickname, r.defaults.LegacyLifetime) {
			logger.Debug("Repaired legacy post", zap.Int64("post_id", p.ID))
		}
		if p.CreatedAt.IsZero() {
			logger.Warn("Dropping post without createdAt", zap.Int64("post_id", p.ID))
			continue
		}

		if p.Expired(now) {
			continue
		}
		if p.Room != room {
			r.foreign = append(r.foreign, p)
			continue
		}

		r.posts = append(r.posts, &p)
		survivors = append(survivors, Survivor{
			Post:      p.Clone(),
			Remaining: p.Remaining(now),
		})
	}

	// The counter must never fall behind an id already handed out
	if maxID > r.counter {
		logger.Warn("Counter behind persisted ids, repairing", zap.Int64("counter", r.counter), zap.Int64("max_id", maxID))
		r.counter = maxID
	}

	logger.Info("Loaded room",
		zap.Int("posts", len(r.posts)),
		zap.Int("other_rooms", len(r.foreign)),
		zap.Int64("counter", r.counter))

	return survivors, nil
}

// failLoad drops what was read so far and suspends writes
func (r *Repository) failLoad(err error) error {
	r.posts = nil
	r.foreign = nil
	r.counter = 0
	r.loadErr = err
	return err
}

// Persist writes every room's posts in id order, then the counter
func (r *Repository) Persist(ctx context.Context) error {
	all := make([]models.Post, 0, len(r.foreign)+len(r.posts))
	all = append(all, r.foreign...)
	for _, p := range r.posts {
		all = append(all, *p)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	payload, err := models.MarshalPosts(all)
	if err != nil {
		return fmt.Errorf("encode posts: %w", err)
	}
	if err := r.store.Set(ctx, r.keys.Posts, string(payload)); err != nil {
		return fmt.Errorf("write %s: %w", r.keys.Posts, err)
	}
	if err := r.store.Set(ctx, r.keys.Counter, strconv.FormatInt(r.counter, 10)); err != nil {
		return fmt.Errorf("write %s: %w", r.keys.Counter, err)
	}
	return nil
}

// save is the write-through every mutation ends with. After a failed load
// it writes nothing and reports the suspended write instead.
func (r *Repository) save(ctx context.Context) {
	var err error
	if r.loadErr != nil {
		err = fmt.Errorf("%w: %v", ErrSnapshotUnavailable, r.loadErr)
	} else {
		err = r.Persist(ctx)
	}
	if err == nil {
		return
	}
	r.logger.Warn("Persist failed, keeping in-memory state", zap.String("room", r.room), zap.Error(err))
	if r.onPersistError != nil {
		r.onPersistError(err)
	}
}
