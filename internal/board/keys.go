package board

import (
	"time"

	"github.com/yurufuwa/board/pkg/config"
)

// Keys names the store entries the board owns
type Keys struct {
	Posts         string
	Counter       string
	Notifications string
	Nickname      string
	Theme         string
}

// KeysWithPrefix derives every key from one prefix
func KeysWithPrefix(prefix string) Keys {
	return Keys{
		Posts:         prefix + "posts",
		Counter:       prefix + "counter",
		Notifications: prefix + "notifications",
		Nickname:      prefix + "nickname",
		Theme:         prefix + "theme",
	}
}

// Defaults fills blank submission fields and legacy snapshot fields
type Defaults struct {
	Room           string
	Nickname       string
	Category       string
	Lifetime       time.Duration
	LegacyLifetime time.Duration
}

// DefaultsFromConfig maps the board config section
func DefaultsFromConfig(cfg *config.BoardConfig) Defaults {
	return Defaults{
		Room:           cfg.Room,
		Nickname:       cfg.DefaultNickname,
		Category:       cfg.DefaultCategory,
		Lifetime:       cfg.DefaultLifetime,
		LegacyLifetime: cfg.LegacyLifetime,
	}
}

func (d Defaults) withFallbacks() Defaults {
	if d.Room == "" {
		d.Room = DefaultRoom
	}
	if d.Nickname == "" {
		d.Nickname = "Anonymous"
	}
	if d.Category == "" {
		d.Category = "learn"
	}
	if d.Lifetime <= 0 {
		d.Lifetime = 30 * time.Second
	}
	if d.LegacyLifetime <= 0 {
		d.LegacyLifetime = 15 * time.Second
	}
	return d
}
