package board

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yurufuwa/board/internal/models"
	"github.com/yurufuwa/board/pkg/logging"
)

// ReactionResult describes the post after a reaction toggle
type ReactionResult struct {
	Post  models.Post
	Kind  models.ReactionKind
	Added bool
	Total int
	Tier  string
}

// Engine applies reaction and pin toggles to repository posts
type Engine struct {
	repo   *Repository
	log    *NotificationLog
	now    func() time.Time
	logger *zap.Logger
}

// NewEngine creates an engine writing reaction additions to log
func NewEngine(repo *Repository, log *NotificationLog, now func() time.Time) *Engine {
	return &Engine{
		repo:   repo,
		log:    log,
		now:    now,
		logger: logging.WithComponent("engine"),
	}
}

// ToggleReaction flips the local user's reaction of kind on post id
func (e *Engine) ToggleReaction(ctx context.Context, id int64, kind models.ReactionKind) (ReactionResult, error) {
	if _, err := models.ParseReactionKind(string(kind)); err != nil {
		return ReactionResult{}, ErrUnknownReaction
	}
	post := e.repo.find(id)
	if post == nil {
		return ReactionResult{}, ErrPostNotFound
	}

	added := !post.Reacted[kind]
	post.Reacted[kind] = added
	if added {
		post.Reactions[kind]++
	} else if post.Reactions[kind] > 0 {
		post.Reactions[kind]--
	}

	if added && e.log != nil {
		entry := models.Notification{
			PostID:       post.ID,
			Nickname:     post.Nickname,
			Content:      post.Content,
			Category:     post.Category,
			ReactionType: kind,
			CreatedAt:    e.now().UTC(),
		}
		if err := e.log.Append(ctx, entry); err != nil {
			e.logger.Warn("Failed to write notification", zap.Int64("post_id", id), zap.Error(err))
		}
	}

	e.repo.save(ctx)

	return ReactionResult{
		Post:  post.Clone(),
		Kind:  kind,
		Added: added,
		Total: post.TotalReactions(),
		Tier:  post.Tier(),
	}, nil
}

// TogglePin flips the pinned flag of post id. Pending expiry is untouched;
// the scheduler consults the flag when it fires.
func (e *Engine) TogglePin(ctx context.Context, id int64) (models.Post, error) {
	post := e.repo.find(id)
	if post == nil {
		return models.Post{}, ErrPostNotFound
	}
	post.IsPinned = !post.IsPinned
	e.repo.save(ctx)
	return post.Clone(), nil
}
