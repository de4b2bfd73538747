package board

import (
	"net/url"
	"strings"
)

// DefaultRoom is the room of posts persisted before rooms existed
const DefaultRoom = "default"

var roomNames = map[string]string{
	"default": "Main",
	"spring":  "Spring",
	"summer":  "Summer",
	"autumn":  "Autumn",
	"winter":  "Winter",
	"food":    "Want to eat",
	"play":    "Want to play",
	"learn":   "Want to learn",
	"travel":  "Want to travel",
}

// DisplayName returns the human name of room; unknown rooms show as-is
func DisplayName(room string) string {
	if name, ok := roomNames[room]; ok {
		return name
	}
	return room
}

// RoomFromQuery reads the room query parameter, falling back when absent
func RoomFromQuery(values url.Values, fallback string) string {
	if room := strings.TrimSpace(values.Get("room")); room != "" {
		return room
	}
	if fallback == "" {
		return DefaultRoom
	}
	return fallback
}

// Rooms returns the ids of the rooms with a display name
func Rooms() []string {
	out := make([]string, 0, len(roomNames))
	for room := range roomNames {
		out = append(out, room)
	}
	return out
}
