package render

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yurufuwa/board/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func post(id int64) models.Post {
	return models.Post{ID: id, Reactions: models.ZeroReactions(), Reacted: models.ZeroReacted()}
}

func TestLayoutPlacesInsideCanvas(t *testing.T) {
	l := NewLayout(960, 640, 1)
	for id := int64(1); id <= 50; id++ {
		l.Render(post(id))
	}

	placements := l.Placements()
	require.Len(t, placements, 50)
	for _, p := range placements {
		assert.GreaterOrEqual(t, p.Position.X, 0.0)
		assert.LessOrEqual(t, p.Position.X, 960.0-BubbleWidth)
		assert.GreaterOrEqual(t, p.Position.Y, 0.0)
		assert.LessOrEqual(t, p.Position.Y, 640.0-BubbleHeight)
	}
}

func TestLayoutRenderKeepsPosition(t *testing.T) {
	l := NewLayout(960, 640, 7)
	l.Render(post(1))
	first, ok := l.Lookup(1)
	require.True(t, ok)

	p := post(1)
	p.Reactions[models.ReactionLike] = 6
	l.Render(p)
	again, _ := l.Lookup(1)
	assert.Equal(t, first.Position, again.Position)
	assert.Equal(t, models.TierExtraLarge, again.Tier)

	l.Remove(p)
	_, ok = l.Lookup(1)
	assert.False(t, ok)
}

func TestLayoutSmallCanvas(t *testing.T) {
	l := NewLayout(100, 50, 3)
	l.Render(post(1))
	p, _ := l.Lookup(1)
	assert.Equal(t, Position{}, p.Position)
}

func TestLayoutDriftBounds(t *testing.T) {
	l := NewLayout(960, 640, 42)
	for id := int64(1); id <= 100; id++ {
		l.Render(post(id))
	}
	before := map[int64]Position{}
	for _, p := range l.Placements() {
		before[p.PostID] = p.Position
	}

	total := 0
	for i := 0; i < 20; i++ {
		total += l.Drift()
	}
	assert.Greater(t, total, 0)
	assert.Less(t, total, 100*20)

	for _, p := range l.Placements() {
		assert.GreaterOrEqual(t, p.Position.X, 0.0)
		assert.GreaterOrEqual(t, p.Position.Y, 0.0)
		assert.LessOrEqual(t, math.Abs(p.Position.X-before[p.PostID].X), 20*DriftMax)
	}
}

func TestLayoutDriftClampsAtZero(t *testing.T) {
	l := NewLayout(960, 640, 5)
	l.Render(post(1))
	l.placed[1].Position = Position{}

	for i := 0; i < 200; i++ {
		l.Drift()
		p, _ := l.Lookup(1)
		require.GreaterOrEqual(t, p.Position.X, 0.0)
		require.GreaterOrEqual(t, p.Position.Y, 0.0)
	}
}

func TestLayoutRunStops(t *testing.T) {
	l := NewLayout(960, 640, 9)
	l.Render(post(1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, time.Millisecond) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestToasts(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	toasts := NewToasts(3, func() time.Time { return now })

	for _, msg := range []string{"a", "b", "c", "d"} {
		toasts.Notify(msg, models.SeveritySuccess)
		now = now.Add(time.Second)
	}

	recent := toasts.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "d", recent[0].Message)
	assert.Equal(t, "b", recent[2].Message)
	assert.Len(t, toasts.Recent(1), 1)

	// now is 4s after "a": "d" at 3s and "c" at 2s are still on screen
	visible := toasts.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, "d", visible[0].Message)
	assert.Equal(t, "c", visible[1].Message)
}

func TestLogRenderer(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewLogRenderer(zap.New(core))

	p := post(3)
	r.Render(p)
	r.Update(p)
	r.Remove(p)
	r.Notify("Could not save", models.SeverityWarning)
	r.Notify("Posted!", models.SeveritySuccess)

	entries := logs.All()
	require.Len(t, entries, 5)
	assert.Equal(t, "Render", entries[0].Message)
	assert.Equal(t, int64(3), entries[0].ContextMap()["post_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[3].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[4].Level)
}
