package preview

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

type fakeSource struct {
	content string
	err     error
	calls   int
}

func (f *fakeSource) FileContent(context.Context, string) (string, error) {
	f.calls++
	return f.content, f.err
}

func TestKindOf(t *testing.T) {
	tests := map[string]Kind{
		"txt": Text, ".MD": Markdown, "json": Code, "csv": Code,
		"docx": Office, "pptx": Office, "PDF": Paged, "exe": Unsupported, "": Unsupported,
	}
	for ext, want := range tests {
		if got := KindOf(ext); got != want {
			t.Errorf("KindOf(%q) = %v, want %v", ext, got, want)
		}
	}
}

func TestFormat_Messages(t *testing.T) {
	if got := Format("", "exe", Options{}).Lines; len(got) != 1 || got[0] != "Content for .exe files cannot be displayed." {
		t.Fatalf("unsupported = %q", got)
	}
	if got := Format("text", "docx", Options{}).Lines; got[0] != "Content for .docx files cannot be displayed directly." {
		t.Fatalf("office disabled = %q", got)
	}
	if got := Format("extracted body", "docx", Options{Office: true}).Lines; got[0] != "extracted body" {
		t.Fatalf("office enabled = %q", got)
	}
}

func TestFormat_CodeIsHighlighted(t *testing.T) {
	res := Format(`{"a": 1}`, "json", Options{Width: 80})
	if got := ansi.Strip(strings.Join(res.Lines, "\n")); !strings.Contains(got, `"a"`) {
		t.Fatalf("highlighted json lost content: %q", got)
	}
}

func TestFormat_TextWraps(t *testing.T) {
	res := Format("alpha beta gamma", "txt", Options{Width: 10})
	if len(res.Lines) != 2 {
		t.Fatalf("lines = %q", res.Lines)
	}
}

func TestLoad(t *testing.T) {
	src := &fakeSource{content: "hello"}
	msg := Load(src, "7", "txt", 3, Options{Width: 40})().(LoadedMsg)
	if msg.Err != nil || msg.Epoch != 3 || msg.Key != "7" || msg.Result.Lines[0] != "hello" {
		t.Fatalf("unexpected msg: %+v", msg)
	}

	msg = Load(src, "8", "docx", 3, Options{})().(LoadedMsg)
	if src.calls != 1 {
		t.Fatal("office preview disabled should not hit the backend")
	}

	src.err = errors.New("File not found")
	msg = Load(src, "9", "md", 4, Options{})().(LoadedMsg)
	if msg.Err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadLocal_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("line one\n\nline two"), 0o644); err != nil {
		t.Fatal(err)
	}
	msg := LoadLocal(path, 1, Options{Width: 40})().(LoadedMsg)
	if msg.Err != nil {
		t.Fatalf("LoadLocal: %v", msg.Err)
	}
	if len(msg.Result.Lines) != 3 || msg.Result.Lines[2] != "line two" {
		t.Fatalf("lines = %q", msg.Result.Lines)
	}
}

func TestLoadLocal_Missing(t *testing.T) {
	msg := LoadLocal(filepath.Join(t.TempDir(), "nope.md"), 1, Options{})().(LoadedMsg)
	if msg.Err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExtract_UnsupportedType(t *testing.T) {
	if _, err := Extract(strings.NewReader("x"), "txt"); err == nil {
		t.Fatal("expected error")
	}
}

func TestExpandTabs(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a\tb", "a   b"},
		{"\tx", "    x"},
		{"abcd\te", "abcd    e"},
		{"日本\tx", "日本    x"},
		{"a\tb\n\tc", "a   b\n    c"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := expandTabs(tt.in); got != tt.want {
			t.Errorf("expandTabs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
