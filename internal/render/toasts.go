package render

import (
	"sync"
	"time"

	"github.com/yurufuwa/board/internal/models"
)

// ToastDuration is how long a toast stays on screen
const ToastDuration = 3 * time.Second

// Toast is one transient message
type Toast struct {
	Message  string          `json:"message"`
	Severity models.Severity `json:"severity"`
	At       time.Time       `json:"at"`
}

// Toasts keeps the most recent notifier messages. It implements
// board.Notifier.
type Toasts struct {
	mu       sync.Mutex
	now      func() time.Time
	capacity int
	items    []Toast
}

// NewToasts keeps at most limit messages
func NewToasts(limit int, now func() time.Time) *Toasts {
	if limit <= 0 {
		limit = 50
	}
	if now == nil {
		now = time.Now
	}
	return &Toasts{now: now, capacity: limit}
}

func (t *Toasts) Notify(message string, severity models.Severity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.items = append(t.items, Toast{Message: message, Severity: severity, At: t.now()})
	if over := len(t.items) - t.capacity; over > 0 {
		t.items = append(t.items[:0], t.items[over:]...)
	}
}

// Recent returns up to limit messages, newest first. limit <= 0 returns all.
func (t *Toasts) Recent(limit int) []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.items)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Toast, 0, n)
	for i := len(t.items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, t.items[i])
	}
	return out
}

// Visible returns the messages still on screen, newest first
func (t *Toasts) Visible() []Toast {
	now := t.now()
	var out []Toast
	for _, toast := range t.Recent(0) {
		if now.Sub(toast.At) >= ToastDuration {
			break
		}
		out = append(out, toast)
	}
	return out
}
