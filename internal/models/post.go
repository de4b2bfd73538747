package models

import (
	"fmt"
	"time"
)

// ReactionKind names one of the fixed reactions a viewer can toggle
type ReactionKind string

// Reaction kinds
const (
	ReactionLike  ReactionKind = "like"
	ReactionCheer ReactionKind = "cheer"
	ReactionJoin  ReactionKind = "join"
)

var reactionKinds = []ReactionKind{ReactionLike, ReactionCheer, ReactionJoin}

// Kinds returns every reaction kind in display order
func Kinds() []ReactionKind {
	out := make([]ReactionKind, len(reactionKinds))
	copy(out, reactionKinds)
	return out
}

// ParseReactionKind validates s as a reaction kind
func ParseReactionKind(s string) (ReactionKind, error) {
	for _, k := range reactionKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown reaction kind %q", s)
}

// Bubble size tiers derived from the total reaction count
const (
	TierNormal     = "normal"
	TierLarge      = "large"
	TierExtraLarge = "extra-large"
)

// Post represents one sticky note. The JSON shape is the persisted snapshot
// format; lifetime is in milliseconds.
type Post struct {
	ID         int64                 `json:"id"`
	Nickname   string                `json:"nickname"`
	Content    string                `json:"content"`
	Category   string                `json:"category"`
	LifetimeMs int64                 `json:"lifetime"`
	Room       string                `json:"room"`
	Reactions  map[ReactionKind]int  `json:"reactions"`
	Reacted    map[ReactionKind]bool `json:"reacted"`
	CreatedAt  time.Time             `json:"createdAt"`
	IsPinned   bool                  `json:"isPinned"`
}

// ZeroReactions returns a count map with every kind at zero
func ZeroReactions() map[ReactionKind]int {
	m := make(map[ReactionKind]int, len(reactionKinds))
	for _, k := range reactionKinds {
		m[k] = 0
	}
	return m
}

// ZeroReacted returns a flag map with every kind off
func ZeroReacted() map[ReactionKind]bool {
	m := make(map[ReactionKind]bool, len(reactionKinds))
	for _, k := range reactionKinds {
		m[k] = false
	}
	return m
}

// Lifetime returns the post's lifetime as a duration
func (p *Post) Lifetime() time.Duration {
	return time.Duration(p.LifetimeMs) * time.Millisecond
}

// Deadline is the instant the post's lifetime elapses
func (p *Post) Deadline() time.Time {
	return p.CreatedAt.Add(p.Lifetime())
}

// Remaining returns max(0, lifetime - (now - createdAt))
func (p *Post) Remaining(now time.Time) time.Duration {
	left := p.Deadline().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Expired reports whether now - createdAt >= lifetime
func (p *Post) Expired(now time.Time) bool {
	return !now.Before(p.Deadline())
}

// TotalReactions sums the counts of all kinds
func (p *Post) TotalReactions() int {
	total := 0
	for _, k := range reactionKinds {
		total += p.Reactions[k]
	}
	return total
}

// Tier returns the display bubble size for the current reaction total
func (p *Post) Tier() string {
	switch total := p.TotalReactions(); {
	case total >= 6:
		return TierExtraLarge
	case total >= 3:
		return TierLarge
	default:
		return TierNormal
	}
}

// Clone returns a deep copy safe to hand to subscribers
func (p *Post) Clone() Post {
	c := *p
	c.Reactions = make(map[ReactionKind]int, len(p.Reactions))
	for k, v := range p.Reactions {
		c.Reactions[k] = v
	}
	c.Reacted = make(map[ReactionKind]bool, len(p.Reacted))
	for k, v := range p.Reacted {
		c.Reacted[k] = v
	}
	return c
}

// Repair fills fields missing from older snapshots and restores the reaction
// invariants. It reports whether anything changed.
func (p *Post) Repair(defaultRoom, defaultNickname string, defaultLifetime time.Duration) bool {
	changed := false
	if p.Room == "" {
		p.Room = defaultRoom
		changed = true
	}
	if p.Nickname == "" {
		p.Nickname = defaultNickname
		changed = true
	}
	if p.LifetimeMs <= 0 {
		p.LifetimeMs = defaultLifetime.Milliseconds()
		changed = true
	}
	if p.Reactions == nil {
		p.Reactions = ZeroReactions()
		changed = true
	}
	if p.Reacted == nil {
		p.Reacted = ZeroReacted()
		changed = true
	}
	for _, k := range reactionKinds {
		if p.Reactions[k] < 0 {
			p.Reactions[k] = 0
			changed = true
		}
		if _, ok := p.Reactions[k]; !ok {
			p.Reactions[k] = 0
			changed = true
		}
		if _, ok := p.Reacted[k]; !ok {
			p.Reacted[k] = false
			changed = true
		}
		if p.Reacted[k] && p.Reactions[k] < 1 {
			p.Reactions[k] = 1
			changed = true
		}
	}
	return changed
}
