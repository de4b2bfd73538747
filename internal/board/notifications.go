package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yurufuwa/board/internal/models"
	"github.com/yurufuwa/board/internal/store"
	"github.com/yurufuwa/board/pkg/logging"
)

// DefaultNotificationCap bounds the log when no cap is configured
const DefaultNotificationCap = 100

// NotificationLog is the persisted most-recent-first list of reaction
// additions, trimmed to a fixed cap.
type NotificationLog struct {
	store    store.Store
	key      string
	capacity int
	logger   *zap.Logger
}

// NewNotificationLog creates a log stored under key
func NewNotificationLog(s store.Store, key string, limit int) *NotificationLog {
	if limit <= 0 {
		limit = DefaultNotificationCap
	}
	return &NotificationLog{
		store:    s,
		key:      key,
		capacity: limit,
		logger:   logging.WithComponent("notifications"),
	}
}

// Append puts n at the head of the log, dropping entries past the cap
func (l *NotificationLog) Append(ctx context.Context, n models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	list, err := l.read(ctx)
	if err != nil {
		return err
	}

	list = append([]models.Notification{n}, list...)
	if len(list) > l.capacity {
		list = list[:l.capacity]
	}

	payload, err := models.MarshalNotifications(list)
	if err != nil {
		return fmt.Errorf("encode notifications: %w", err)
	}
	if err := l.store.Set(ctx, l.key, string(payload)); err != nil {
		return fmt.Errorf("write %s: %w", l.key, err)
	}
	return nil
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (l *NotificationLog) List(ctx context.Context, limit int) ([]models.Notification, error) {
	list, err := l.read(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (l *NotificationLog) read(ctx context.Context) ([]models.Notification, error) {
	raw, err := l.store.Get(ctx, l.key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.key, err)
	}

	var list []models.Notification
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		l.logger.Warn("Discarding malformed notification log", zap.String("key", l.key), zap.Error(err))
		return nil, nil
	}
	return list, nil
}
