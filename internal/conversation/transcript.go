package conversation

import (
	"strings"
	"time"
)

const (
	previewBudget      = 80
	PreviewPlaceholder = "No messages yet"
)

// Preview is the latest assistant reply cut to 80 characters, or the
// placeholder when the conversation has no exchange yet.
func Preview(msgs []Message) string {
	if len(msgs) > 1 {
		for i := len(msgs) - 1; i >= 0; i-- {
			if msgs[i].Role != RoleAssistant {
				continue
			}
			r := []rune(msgs[i].Content)
			if len(r) > previewBudget {
				return string(r[:previewBudget]) + "..."
			}
			return msgs[i].Content
		}
	}
	return PreviewPlaceholder
}

func speaker(r Role) string {
	if r == RoleUser {
		return "You"
	}
	return "Assistant"
}

// ExportText renders msgs as "[15:04] You: ..." blocks separated by a blank
// line.
func ExportText(msgs []Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ts := ""
		if !m.CreatedAt.IsZero() {
			ts = m.CreatedAt.Local().Format("15:04")
		}
		parts = append(parts, "["+ts+"] "+speaker(m.Role)+": "+m.Content)
	}
	return strings.Join(parts, "\n\n")
}

// ShareText renders msgs without timestamps.
func ShareText(msgs []Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, speaker(m.Role)+": "+m.Content)
	}
	return strings.Join(parts, "\n\n")
}

// ExportFilename is the file name an export made at t is written to.
func ExportFilename(t time.Time) string {
	return "conversation-" + t.Format("2006-01-02") + ".txt"
}
