package board

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yurufuwa/board/internal/store"
)

// Themes
const (
	ThemeAuto    = "auto"
	ThemeMorning = "morning"
	ThemeDay     = "day"
	ThemeNight   = "night"
)

var themes = map[string]bool{ThemeAuto: true, ThemeMorning: true, ThemeDay: true, ThemeNight: true}

// Preferences holds the local user's remembered nickname and theme
type Preferences struct {
	store store.Store
	keys  Keys
}

// NewPreferences creates preferences over s
func NewPreferences(s store.Store, keys Keys) *Preferences {
	return &Preferences{store: s, keys: keys}
}

// Nickname returns the saved nickname, or "" when none was saved
func (p *Preferences) Nickname(ctx context.Context) (string, error) {
	return p.get(ctx, p.keys.Nickname, "")
}

// SaveNickname remembers a non-blank nickname. Blank input is ignored.
func (p *Preferences) SaveNickname(ctx context.Context, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil
	}
	if err := p.store.Set(ctx, p.keys.Nickname, nickname); err != nil {
		return fmt.Errorf("write %s: %w", p.keys.Nickname, err)
	}
	return nil
}

// Theme returns the saved theme, auto by default
func (p *Preferences) Theme(ctx context.Context) (string, error) {
	theme, err := p.get(ctx, p.keys.Theme, ThemeAuto)
	if err != nil {
		return ThemeAuto, err
	}
	if !themes[theme] {
		return ThemeAuto, nil
	}
	return theme, nil
}

// SaveTheme remembers one of auto, morning, day, night
func (p *Preferences) SaveTheme(ctx context.Context, theme string) error {
	if !themes[theme] {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
	}
	if err := p.store.Set(ctx, p.keys.Theme, theme); err != nil {
		return fmt.Errorf("write %s: %w", p.keys.Theme, err)
	}
	return nil
}

func (p *Preferences) get(ctx context.Context, key, fallback string) (string, error) {
	v, err := p.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}
