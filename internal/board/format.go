package board

import (
	"fmt"
	"time"

	"github.com/yurufuwa/board/internal/models"
)

// FormatAge renders how long ago created was, in the coarsest whole unit
func FormatAge(created, now time.Time) string {
	seconds := int64(now.Sub(created) / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds ago", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	default:
		return fmt.Sprintf("%dh ago", seconds/3600)
	}
}

// ShareText is the text handed to a share sheet or clipboard
func ShareText(p models.Post) string {
	return fmt.Sprintf("%s: %q #yurufuwa", p.Nickname, p.Content)
}
