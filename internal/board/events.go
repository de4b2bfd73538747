package board

import "github.com/yurufuwa/board/internal/models"

// Renderer draws posts. Implementations must not call back into the Board:
// they run inside the board's critical section.
type Renderer interface {
	Render(post models.Post)
	Update(post models.Post)
	Remove(post models.Post)
}

// Notifier shows transient user-visible messages
type Notifier interface {
	Notify(message string, severity models.Severity)
}

// Renderers fans every call out to each renderer in order
type Renderers []Renderer

func (rs Renderers) Render(post models.Post) {
	for _, r := range rs {
		r.Render(post)
	}
}

func (rs Renderers) Update(post models.Post) {
	for _, r := range rs {
		r.Update(post)
	}
}

func (rs Renderers) Remove(post models.Post) {
	for _, r := range rs {
		r.Remove(post)
	}
}

// Notifiers fans every message out to each notifier in order
type Notifiers []Notifier

func (ns Notifiers) Notify(message string, severity models.Severity) {
	for _, n := range ns {
		n.Notify(message, severity)
	}
}

// User-visible messages
const (
	MsgPosted        = "Posted!"
	MsgEmptyContent  = "Tell us what you'd like to do!"
	MsgPinned        = "Pinned!"
	MsgUnpinned      = "Unpinned!"
	MsgPersistFailed = "Could not save"
)
