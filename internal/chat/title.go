package chat

import (
	"strings"
	"time"
	"unicode/utf8"
)

const maxTitleLength = 40

// GenerateConversationTitle derives a short display title from a message.
// Questions keep up to five words before the first "?", short messages are
// used as they are, and long ones are cut to five words. Results are capped
// at 40 characters, with "..." added when the cap is hit exactly.
func GenerateConversationTitle(message string, now time.Time) string {
	var title string
	switch {
	case strings.Contains(message, "?"):
		question, _, _ := strings.Cut(message, "?")
		parts := strings.Split(question, " ")
		if len(parts) > 3 {
			title = strings.Join(parts[:min(5, len(parts))], " ") + "?"
		} else if utf8.RuneCountInString(message) < maxTitleLength {
			title = message
		}
	case utf8.RuneCountInString(message) < 60:
		title = message
	default:
		words := strings.Split(message, " ")
		title = strings.Join(words[:min(5, len(words))], " ") + "..."
	}

	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) >= maxTitleLength {
		title = string([]rune(title)[:maxTitleLength]) + "..."
	}

	if title == "" {
		return "Chat on " + now.Format("Jan 2")
	}
	return title
}
