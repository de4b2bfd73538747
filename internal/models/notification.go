package models

import "time"

// Notification is one entry of the reaction notification log
type Notification struct {
	ID           string       `json:"id"`
	PostID       int64        `json:"postId"`
	Nickname     string       `json:"nickname"`
	Content      string       `json:"content"`
	Category     string       `json:"category"`
	ReactionType ReactionKind `json:"reactionType"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Severity of a user-visible message
type Severity string

// Message severities
const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)
