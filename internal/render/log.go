package render

import (
	"go.uber.org/zap"

	"github.com/yurufuwa/board/internal/models"
)

// LogRenderer writes renderer and notifier events as log lines
type LogRenderer struct {
	logger *zap.Logger
}

// NewLogRenderer creates a renderer logging to logger
func NewLogRenderer(logger *zap.Logger) *LogRenderer {
	return &LogRenderer{logger: logger}
}

func (r *LogRenderer) Render(post models.Post) {
	r.logger.Debug("Render",
		zap.Int64("post_id", post.ID),
		zap.String("room", post.Room),
		zap.String("nickname", post.Nickname),
		zap.String("tier", post.Tier()))
}

func (r *LogRenderer) Update(post models.Post) {
	r.logger.Debug("Update",
		zap.Int64("post_id", post.ID),
		zap.Int("reactions", post.TotalReactions()),
		zap.Bool("pinned", post.IsPinned))
}

func (r *LogRenderer) Remove(post models.Post) {
	r.logger.Debug("Remove", zap.Int64("post_id", post.ID))
}

func (r *LogRenderer) Notify(message string, severity models.Severity) {
	switch severity {
	case models.SeverityWarning:
		r.logger.Warn(message)
	default:
		r.logger.Info(message, zap.String("severity", string(severity)))
	}
}
