package models

import (
	"encoding/json"
	"time"
)

// SnapshotTimeLayout always writes millisecond precision in UTC, so a zero
// fraction is stored as ".000Z"
const SnapshotTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatSnapshotTime formats t the way snapshots store instants
func FormatSnapshotTime(t time.Time) string {
	return t.UTC().Format(SnapshotTimeLayout)
}

type postRecord struct {
	Post
	CreatedAt string `json:"createdAt"`
}

type notificationRecord struct {
	Notification
	CreatedAt string `json:"createdAt"`
}

// MarshalPosts encodes posts in the persisted snapshot shape
func MarshalPosts(posts []Post) ([]byte, error) {
	records := make([]postRecord, len(posts))
	for i, p := range posts {
		records[i] = postRecord{Post: p, CreatedAt: FormatSnapshotTime(p.CreatedAt)}
	}
	return json.Marshal(records)
}

// MarshalNotifications encodes a notification log in the persisted shape
func MarshalNotifications(list []Notification) ([]byte, error) {
	records := make([]notificationRecord, len(list))
	for i, n := range list {
		records[i] = notificationRecord{Notification: n, CreatedAt: FormatSnapshotTime(n.CreatedAt)}
	}
	return json.Marshal(records)
}
