package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestPostTier(t *testing.T) {
	tests := []struct {
		name      string
		reactions map[ReactionKind]int
		expected  string
	}{
		{"no reactions", ZeroReactions(), TierNormal},
		{"two", map[ReactionKind]int{ReactionLike: 2}, TierNormal},
		{"three across kinds", map[ReactionKind]int{ReactionLike: 1, ReactionCheer: 1, ReactionJoin: 1}, TierLarge},
		{"five", map[ReactionKind]int{ReactionJoin: 5}, TierLarge},
		{"six", map[ReactionKind]int{ReactionLike: 4, ReactionCheer: 2}, TierExtraLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Post{Reactions: tt.reactions}
			if got := p.Tier(); got != tt.expected {
				t.Errorf("Tier() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPostRemaining(t *testing.T) {
	created := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	p := Post{CreatedAt: created, LifetimeMs: 30000}

	tests := []struct {
		name      string
		now       time.Time
		remaining time.Duration
		expired   bool
	}{
		{"at creation", created, 30 * time.Second, false},
		{"one second before", created.Add(29 * time.Second), time.Second, false},
		{"exactly at deadline", created.Add(30 * time.Second), 0, true},
		{"long after", created.Add(time.Hour), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Remaining(tt.now); got != tt.remaining {
				t.Errorf("Remaining() = %v, want %v", got, tt.remaining)
			}
			if got := p.Expired(tt.now); got != tt.expired {
				t.Errorf("Expired() = %v, want %v", got, tt.expired)
			}
		})
	}
}

func TestPostRepairLegacyShape(t *testing.T) {
	raw := `{"id":4,"nickname":"","content":"walk","category":"play","createdAt":"2026-10-14T09:00:00.000Z"}`
	var p Post
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !p.Repair("default", "Anonymous", 15*time.Second) {
		t.Fatal("Repair() should report changes for a legacy post")
	}
	if p.Room != "default" || p.Nickname != "Anonymous" || p.LifetimeMs != 15000 {
		t.Errorf("defaults not applied: %+v", p)
	}
	for _, k := range Kinds() {
		if p.Reactions[k] != 0 || p.Reacted[k] {
			t.Errorf("kind %s not zeroed: %d %v", k, p.Reactions[k], p.Reacted[k])
		}
	}
	if p.Repair("default", "Anonymous", 15*time.Second) {
		t.Error("Repair() should be a no-op the second time")
	}
}

func TestPostRepairInvariants(t *testing.T) {
	p := Post{
		Room:       "food",
		Nickname:   "Aki",
		LifetimeMs: 1000,
		Reactions:  map[ReactionKind]int{ReactionLike: -2, ReactionCheer: 0},
		Reacted:    map[ReactionKind]bool{ReactionCheer: true},
	}
	p.Repair("default", "Anonymous", time.Second)

	if p.Reactions[ReactionLike] != 0 {
		t.Errorf("negative count not floored: %d", p.Reactions[ReactionLike])
	}
	if p.Reactions[ReactionCheer] != 1 {
		t.Errorf("reacted kind should have count >= 1, got %d", p.Reactions[ReactionCheer])
	}
	if _, ok := p.Reactions[ReactionJoin]; !ok {
		t.Error("missing kind not filled")
	}
}

func TestPostCloneIsDeep(t *testing.T) {
	p := Post{Reactions: ZeroReactions(), Reacted: ZeroReacted()}
	c := p.Clone()
	c.Reactions[ReactionLike] = 9
	c.Reacted[ReactionLike] = true

	if p.Reactions[ReactionLike] != 0 || p.Reacted[ReactionLike] {
		t.Error("Clone() shares maps with the original")
	}
}

func TestParseReactionKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseReactionKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseReactionKind(%q) = %v, %v", k, got, err)
		}
	}
	if _, err := ParseReactionKind("boo"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestMarshalPostsMillisecondTimestamps(t *testing.T) {
	tests := []struct {
		name     string
		created  time.Time
		expected string
	}{
		{"zero fraction", time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC), "2026-10-14T09:00:00.000Z"},
		{"fraction", time.Date(2026, 10, 14, 9, 0, 0, 120*int(time.Millisecond), time.UTC), "2026-10-14T09:00:00.120Z"},
		{"non-utc", time.Date(2026, 10, 14, 18, 0, 0, 0, time.FixedZone("JST", 9*3600)), "2026-10-14T09:00:00.000Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := MarshalPosts([]Post{{ID: 1, CreatedAt: tt.created, Reactions: ZeroReactions(), Reacted: ZeroReacted()}})
			if err != nil {
				t.Fatalf("MarshalPosts() error = %v", err)
			}
			var raw []map[string]interface{}
			if err := json.Unmarshal(payload, &raw); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := raw[0]["createdAt"]; got != tt.expected {
				t.Errorf("createdAt = %v, want %v", got, tt.expected)
			}
			if _, ok := raw[0]["id"]; !ok {
				t.Error("embedded fields missing from the record")
			}

			var back []Post
			if err := json.Unmarshal(payload, &back); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !back[0].CreatedAt.Equal(tt.created) {
				t.Errorf("decoded createdAt = %v, want %v", back[0].CreatedAt, tt.created)
			}
		})
	}
}

func TestMarshalNotificationsMillisecondTimestamps(t *testing.T) {
	payload, err := MarshalNotifications([]Notification{{ID: "n1", PostID: 2, CreatedAt: time.Date(2026, 10, 14, 9, 0, 5, 0, time.UTC)}})
	if err != nil {
		t.Fatalf("MarshalNotifications() error = %v", err)
	}
	if !strings.Contains(string(payload), `"createdAt":"2026-10-14T09:00:05.000Z"`) {
		t.Errorf("unexpected payload %s", payload)
	}
}
