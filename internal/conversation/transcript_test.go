package conversation

import (
	"strings"
	"testing"
	"time"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		msgs []Message
		want string
	}{
		{"empty", nil, PreviewPlaceholder},
		{"single message", []Message{{Role: RoleAssistant, Content: "hi"}}, PreviewPlaceholder},
		{"no assistant", []Message{{Role: RoleUser, Content: "a"}, {Role: RoleUser, Content: "b"}}, PreviewPlaceholder},
		{"latest assistant", []Message{
			{Role: RoleUser, Content: "q"},
			{Role: RoleAssistant, Content: "first"},
			{Role: RoleUser, Content: "q2"},
			{Role: RoleAssistant, Content: "second"},
		}, "second"},
		{"multibyte truncation", []Message{
			{Role: RoleUser, Content: "q"},
			{Role: RoleAssistant, Content: strings.Repeat("é", 81)},
		}, strings.Repeat("é", 80) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.msgs); got != tt.want {
				t.Errorf("Preview() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportAndShareText(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 0, 0, time.Local)
	msgs := []Message{
		{Role: RoleUser, Content: "q", CreatedAt: ts},
		{Role: RoleAssistant, Content: "a", CreatedAt: ts},
	}
	if got, want := ExportText(msgs), "[14:05] You: q\n\n[14:05] Assistant: a"; got != want {
		t.Fatalf("ExportText = %q, want %q", got, want)
	}
	if got, want := ShareText(msgs), "You: q\n\nAssistant: a"; got != want {
		t.Fatalf("ShareText = %q, want %q", got, want)
	}
	if got := ExportFilename(ts); got != "conversation-2024-03-09.txt" {
		t.Fatalf("ExportFilename = %q", got)
	}
}
