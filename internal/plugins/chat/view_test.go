package chat

import (
	"regexp"
	"strings"
	"testing"

	"github.com/wilbur182/docchat/internal/api"
	"github.com/wilbur182/docchat/internal/conversation"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(str string) string {
	return ansiRE.ReplaceAllString(str, "")
}

func TestEmptyState(t *testing.T) {
	output := stripANSI(renderMessages(nil, nil, 80, false))
	if !strings.Contains(output, "Start a conversation") {
		t.Errorf("empty state = %q", output)
	}
	output = stripANSI(renderMessages(nil, nil, 80, true))
	if !strings.Contains(output, "Loading conversation") {
		t.Errorf("loading state = %q", output)
	}
}

func TestUserMessageRendering(t *testing.T) {
	msgs := []conversation.Message{{Role: conversation.RoleUser, Content: "Hello world"}}
	output := stripANSI(renderMessages(msgs, nil, 80, false))
	if !strings.Contains(output, "You") || !strings.Contains(output, "Hello world") {
		t.Errorf("user message = %q", output)
	}
}

func TestAssistantMessageWithSources(t *testing.T) {
	msgs := []conversation.Message{{
		Role:    conversation.RoleAssistant,
		Content: "The answer",
		Sources: []api.Source{
			{Filename: "report.pdf", Similarity: 0.87},
			{Filename: "Go blog", URL: "https://go.dev/blog", Type: "web"},
		},
	}}
	output := stripANSI(renderMessages(msgs, nil, 80, false))
	for _, want := range []string{"Assistant", "The answer", "Sources:", "report.pdf 87%", "Go blog (https://go.dev/blog)"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestSourceLabel(t *testing.T) {
	tests := []struct {
		filename, url string
		sim           float64
		want          string
	}{
		{"a.txt", "", 0, "a.txt"},
		{"a.txt", "", 0.5, "a.txt 50%"},
		{"", "https://x.dev", 0, "https://x.dev"},
	}
	for _, tt := range tests {
		if got := sourceLabel(tt.filename, tt.url, tt.sim); got != tt.want {
			t.Errorf("sourceLabel(%q, %q, %v) = %q, want %q", tt.filename, tt.url, tt.sim, got, tt.want)
		}
	}
}

func TestMessageViewportFollow(t *testing.T) {
	v := NewMessageViewport(40, 3)
	var msgs []conversation.Message
	for i := 0; i < 10; i++ {
		msgs = append(msgs, conversation.Message{Role: conversation.RoleUser, Content: "line"})
	}
	v.SetMessages(msgs, nil, false)
	if !v.viewport.AtBottom() {
		t.Fatal("viewport should start pinned to the bottom")
	}
	v.viewport.GotoTop()
	v.atBottom = false
	v.Follow()
	if !v.viewport.AtBottom() || !v.atBottom {
		t.Fatal("Follow should pin to the bottom")
	}
}
