package notify

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func fixedCenter(now time.Time) *Center {
	c := New()
	c.now = func() time.Time { return now }
	return c
}

func TestNotify_SetsToastAndDeadline(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := fixedCenter(now)

	cmd := c.Notify("saved", Success)
	if cmd == nil {
		t.Fatal("Notify() should return a dismiss timer")
	}
	toast, ok := c.Current()
	if !ok {
		t.Fatal("expected a visible toast")
	}
	if toast.Message != "saved" || toast.Severity != Success {
		t.Fatalf("unexpected toast: %+v", toast)
	}
	if !toast.Deadline.Equal(now.Add(ToastDuration)) {
		t.Fatalf("Deadline = %v, want %v", toast.Deadline, now.Add(ToastDuration))
	}
}

func TestNotify_NewToastPreemptsOldTimer(t *testing.T) {
	c := New()
	c.Notify("first", Info)
	firstSeq := c.seq
	c.Notify("second", Error)

	c.Update(ExpiredMsg{Seq: firstSeq})
	toast, ok := c.Current()
	if !ok || toast.Message != "second" {
		t.Fatalf("stale timer cleared the newer toast: %+v ok=%v", toast, ok)
	}

	c.Update(ExpiredMsg{Seq: c.seq})
	if _, ok := c.Current(); ok {
		t.Fatal("own timer should clear the toast")
	}
}

func TestConfirm_DismissNeverInvokes(t *testing.T) {
	c := New()
	calls := 0
	c.Confirm("Delete?", "...", Warning, func() tea.Cmd {
		calls++
		return nil
	})
	if !c.HasPrompt() {
		t.Fatal("expected open prompt")
	}
	c.Dismiss()
	if calls != 0 {
		t.Fatalf("continuation invoked %d times after dismiss", calls)
	}
	if c.HasPrompt() {
		t.Fatal("dismiss should clear the prompt")
	}
	if cmd := c.Accept(); cmd != nil || calls != 0 {
		t.Fatal("accept after dismiss must be a no-op")
	}
}

func TestConfirm_AcceptInvokesOnceAndClears(t *testing.T) {
	c := New()
	calls := 0
	c.Confirm("Delete?", "...", Warning, func() tea.Cmd {
		calls++
		return nil
	})
	c.Accept()
	c.Accept()
	if calls != 1 {
		t.Fatalf("continuation invoked %d times, want 1", calls)
	}
	if _, ok := c.Prompt(); ok {
		t.Fatal("accept should clear modal state")
	}
}

func TestConfirm_LastWriterWins(t *testing.T) {
	c := New()
	var got string
	c.Confirm("A", "", Info, func() tea.Cmd { got = "A"; return nil })
	c.Confirm("B", "", Info, func() tea.Cmd { got = "B"; return nil })

	p, _ := c.Prompt()
	if p.Title != "B" {
		t.Fatalf("Title = %q, want B", p.Title)
	}
	c.Accept()
	if got != "B" {
		t.Fatalf("accepted continuation = %q, want B", got)
	}
}

func TestAccept_ContinuationMayOpenNextPrompt(t *testing.T) {
	c := New()
	c.Confirm("first", "", Warning, func() tea.Cmd {
		c.Confirm("second", "", Warning, nil)
		return nil
	})
	c.Accept()
	p, ok := c.Prompt()
	if !ok || p.Title != "second" {
		t.Fatalf("prompt opened by continuation was cleared: %+v ok=%v", p, ok)
	}
}

func TestHandleKey(t *testing.T) {
	c := New()
	if handled, _ := c.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}); handled {
		t.Fatal("keys should pass through without a prompt")
	}

	accepted := false
	c.Confirm("t", "b", Warning, func() tea.Cmd { accepted = true; return nil })
	if handled, _ := c.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); !handled {
		t.Fatal("prompt should swallow unrelated keys")
	}
	if !c.HasPrompt() {
		t.Fatal("unrelated key closed the prompt")
	}
	c.HandleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if c.HasPrompt() || accepted {
		t.Fatal("esc should dismiss without accepting")
	}

	c.Confirm("t", "b", Warning, func() tea.Cmd { accepted = true; return nil })
	c.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if !accepted {
		t.Fatal("enter should accept")
	}
}

func TestRender(t *testing.T) {
	c := New()
	if c.RenderToast(80) != "" || c.RenderModal(80, 24) != "" {
		t.Fatal("nothing should render when empty")
	}
	c.Notify("Conversation deleted successfully", Success)
	if !strings.Contains(c.RenderToast(80), "Conversation deleted") {
		t.Fatal("toast text missing from render")
	}
	c.Confirm("Confirm Deletion", "Are you sure?", Warning, nil)
	if out := c.RenderModal(80, 24); !strings.Contains(out, "Confirm Deletion") {
		t.Fatalf("modal render missing title: %q", out)
	}
}
