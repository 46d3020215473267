package render

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wilbur182/docchat/internal/notify"
)

type fakeRenderer struct {
	pages  int
	failAt int
	calls  []string
}

func (f *fakeRenderer) Pages() int { return f.pages }

func (f *fakeRenderer) Layout(_ context.Context, n int) (Layout, error) {
	f.calls = append(f.calls, "layout")
	if n == f.failAt {
		return Layout{}, errors.New("corrupt xref")
	}
	return Layout{Page: n, Rows: []string{"row"}}, nil
}

func (f *fakeRenderer) Draw(_ context.Context, l Layout, _ int) ([]string, error) {
	f.calls = append(f.calls, "draw")
	return []string{"page", string(rune('0' + l.Page))}, nil
}

type fakeNotifier struct{ notices []string }

func (f *fakeNotifier) Notify(msg string, _ notify.Severity) tea.Cmd {
	f.notices = append(f.notices, msg)
	return nil
}
func (f *fakeNotifier) Confirm(string, string, notify.Severity, func() tea.Cmd) {}

func run(p *Pipeline, cmd tea.Cmd) {
	for cmd != nil {
		cmd = p.Update(cmd())
	}
}

func pageNumbers(p *Pipeline) []int {
	var out []int
	for _, pg := range p.Pages() {
		out = append(out, pg.Number)
	}
	return out
}

func TestPipeline_RendersInOrder(t *testing.T) {
	n := &fakeNotifier{}
	p := New(n)
	r := &fakeRenderer{pages: 3}
	run(p, p.Start(r, 80))

	if got := pageNumbers(p); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("pages = %v, want [1 2 3]", got)
	}
	want := []string{"layout", "draw", "layout", "draw", "layout", "draw"}
	if !reflect.DeepEqual(r.calls, want) {
		t.Fatalf("calls = %v, want %v", r.calls, want)
	}
	if p.Running() || len(n.notices) != 1 || n.notices[0] != "PDF rendered successfully" {
		t.Fatalf("running=%v notices=%v", p.Running(), n.notices)
	}
}

func TestPipeline_FailureKeepsEarlierPages(t *testing.T) {
	n := &fakeNotifier{}
	p := New(n)
	r := &fakeRenderer{pages: 3, failAt: 2}
	run(p, p.Start(r, 80))

	if got := pageNumbers(p); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("pages = %v, want [1]", got)
	}
	if len(r.calls) != 3 {
		t.Fatalf("page 3 should never be attempted, calls = %v", r.calls)
	}
	if len(n.notices) != 1 || !strings.HasPrefix(n.notices[0], "Failed to render PDF: ") ||
		!strings.Contains(n.notices[0], "corrupt xref") {
		t.Fatalf("notices = %v", n.notices)
	}
	if p.Err() == nil {
		t.Fatal("error should be recorded")
	}
}

func TestPipeline_StaleMessagesIgnored(t *testing.T) {
	p := New(&fakeNotifier{})
	first := p.Start(&fakeRenderer{pages: 2}, 80)
	msg := first()
	p.Reset()
	if cmd := p.Update(msg); cmd != nil || len(p.Pages()) != 0 {
		t.Fatal("message from an abandoned document was applied")
	}
}

func TestPipeline_LoadFetchError(t *testing.T) {
	n := &fakeNotifier{}
	p := New(n)
	fetch := func(context.Context) ([]byte, error) { return nil, errors.New("404") }
	open := func([]byte) (PageRenderer, error) { t.Fatal("open called after fetch error"); return nil, nil }
	run(p, p.Load(fetch, open, 80))
	if len(n.notices) != 1 || n.notices[0] != "Failed to render PDF: 404" {
		t.Fatalf("notices = %v", n.notices)
	}
}

func TestPipeline_LoadOpensAndRenders(t *testing.T) {
	p := New(&fakeNotifier{})
	r := &fakeRenderer{pages: 2}
	fetch := func(context.Context) ([]byte, error) { return []byte("%PDF"), nil }
	open := func([]byte) (PageRenderer, error) { return r, nil }
	run(p, p.Load(fetch, open, 80))
	if p.Total() != 2 || len(p.Pages()) != 2 {
		t.Fatalf("total=%d pages=%d", p.Total(), len(p.Pages()))
	}
}

func TestOpenPDF_RejectsGarbage(t *testing.T) {
	if _, err := OpenPDF(nil); err == nil {
		t.Fatal("empty input should fail")
	}
	if _, err := OpenPDF([]byte("not a pdf")); err == nil {
		t.Fatal("garbage input should fail")
	}
}

func TestPageHeader(t *testing.T) {
	h := pageHeader(2, 5, 30)
	if !strings.Contains(h, " Page 2 of 5 ") {
		t.Fatalf("header = %q", h)
	}
}
