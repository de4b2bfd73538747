// Package render holds the board's subscribers: positions on a canvas, the
// transient toast list and log lines. None of them touch domain state.
package render

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yurufuwa/board/internal/models"
	"github.com/yurufuwa/board/pkg/logging"
)

// Bubble footprint used to keep a post inside the canvas
const (
	BubbleWidth  = 200
	BubbleHeight = 120
)

// Drift parameters of the floating animation
const (
	DriftChance = 0.1
	DriftMax    = 10.0
)

// Position is a post's top-left corner in canvas pixels
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Placement is one rendered post with its position and bubble size
type Placement struct {
	PostID   int64    `json:"postId"`
	Position Position `json:"position"`
	Tier     string   `json:"tier"`
}

// Layout places rendered posts at random spots on a canvas and lets them
// drift. It implements board.Renderer.
type Layout struct {
	mu     sync.Mutex
	width  float64
	height float64
	rng    *rand.Rand
	placed map[int64]*Placement
	logger *zap.Logger
}

// NewLayout creates a layout for a width x height canvas. The seed fixes the
// random sequence.
func NewLayout(width, height int, seed uint64) *Layout {
	return &Layout{
		width:  float64(width),
		height: float64(height),
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		placed: make(map[int64]*Placement),
		logger: logging.WithComponent("layout"),
	}
}

// Render places a post the first time it is seen
func (l *Layout) Render(post models.Post) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.placed[post.ID]; ok {
		p.Tier = post.Tier()
		return
	}
	l.placed[post.ID] = &Placement{
		PostID: post.ID,
		Position: Position{
			X: l.rng.Float64() * math.Max(0, l.width-BubbleWidth),
			Y: l.rng.Float64() * math.Max(0, l.height-BubbleHeight),
		},
		Tier: post.Tier(),
	}
}

// Update refreshes the bubble size tier
func (l *Layout) Update(post models.Post) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.placed[post.ID]; ok {
		p.Tier = post.Tier()
	}
}

// Remove forgets a post
func (l *Layout) Remove(post models.Post) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.placed, post.ID)
}

// Placements returns every placed post ordered by id
func (l *Layout) Placements() []Placement {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Placement, 0, len(l.placed))
	for _, p := range l.placed {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostID < out[j].PostID })
	return out
}

// Lookup returns the placement of one post
func (l *Layout) Lookup(id int64) (Placement, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.placed[id]
	if !ok {
		return Placement{}, false
	}
	return *p, true
}

// Drift runs one tick: each post moves with probability DriftChance by up
// to DriftMax pixels per axis, never below zero. It returns how many moved.
func (l *Layout) Drift() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]int64, 0, len(l.placed))
	for id := range l.placed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	moved := 0
	for _, id := range ids {
		if l.rng.Float64() >= DriftChance {
			continue
		}
		p := l.placed[id]
		p.Position.X = math.Max(0, p.Position.X+(l.rng.Float64()-0.5)*2*DriftMax)
		p.Position.Y = math.Max(0, p.Position.Y+(l.rng.Float64()-0.5)*2*DriftMax)
		moved++
	}
	return moved
}

// Run drives Drift every interval until ctx is done
func (l *Layout) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.logger.Debug("Drift loop started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("Drift loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if moved := l.Drift(); moved > 0 {
				l.logger.Debug("Drifted", zap.Int("moved", moved))
			}
		}
	}
}
