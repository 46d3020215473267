// Package render turns paginated binary documents into terminal pages.
//
// Pages are rendered strictly one after another: each page's layout and
// drawing complete, and the result is committed on the Update loop, before
// the next page's command is issued. Renderers are not assumed reentrant.
package render

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wilbur182/docchat/internal/notify"
)

// Layout is the intermediate form of one page.
type Layout struct {
	Page   int
	Rows   []string
	Width  float64 // media box, points
	Height float64
}

// PageRenderer is a paginated document. Page numbers start at 1.
type PageRenderer interface {
	Pages() int
	Layout(ctx context.Context, page int) (Layout, error)
	Draw(ctx context.Context, layout Layout, width int) ([]string, error)
}

// Page is a rendered page.
type Page struct {
	Number int
	Lines  []string
}

// OpenedMsg carries a renderer ready to draw, or the error opening it.
type OpenedMsg struct {
	Gen      uint64
	Renderer PageRenderer
	Err      error
}

// PageMsg carries one rendered page.
type PageMsg struct {
	Gen  uint64
	Page Page
	Err  error
}

// Fetch loads the raw document.
type Fetch func(ctx context.Context) ([]byte, error)

// Open parses raw bytes into a renderer.
type Open func(data []byte) (PageRenderer, error)

// Pipeline renders one document at a time. Starting a new document
// abandons the previous one; its late messages are ignored.
type Pipeline struct {
	notifier notify.Notifier
	gen      uint64
	renderer PageRenderer
	width    int
	pages    []Page
	total    int
	running  bool
	err      error
}

// New creates an idle pipeline.
func New(n notify.Notifier) *Pipeline {
	return &Pipeline{notifier: n}
}

func (p *Pipeline) Pages() []Page { return p.pages }
func (p *Pipeline) Total() int    { return p.total }
func (p *Pipeline) Running() bool { return p.running }
func (p *Pipeline) Err() error    { return p.err }

// Reset abandons the current document.
func (p *Pipeline) Reset() {
	p.gen++
	p.renderer = nil
	p.pages = nil
	p.total = 0
	p.running = false
	p.err = nil
}

// Load fetches and opens a document, then renders it at width.
func (p *Pipeline) Load(fetch Fetch, open Open, width int) tea.Cmd {
	p.Reset()
	p.running = true
	p.width = width
	gen := p.gen
	return func() tea.Msg {
		data, err := fetch(context.Background())
		if err != nil {
			return OpenedMsg{Gen: gen, Err: err}
		}
		r, err := open(data)
		return OpenedMsg{Gen: gen, Renderer: r, Err: err}
	}
}

// Start renders an already opened document at width.
func (p *Pipeline) Start(r PageRenderer, width int) tea.Cmd {
	p.Reset()
	p.running = true
	p.width = width
	return p.begin(r)
}

func (p *Pipeline) begin(r PageRenderer) tea.Cmd {
	p.renderer = r
	p.total = r.Pages()
	if p.total <= 0 {
		return p.fail(errors.New("document has no pages"))
	}
	return p.renderPage(1)
}

func (p *Pipeline) renderPage(n int) tea.Cmd {
	r, gen, width := p.renderer, p.gen, p.width
	return func() tea.Msg {
		ctx := context.Background()
		layout, err := r.Layout(ctx, n)
		if err != nil {
			return PageMsg{Gen: gen, Page: Page{Number: n}, Err: err}
		}
		lines, err := r.Draw(ctx, layout, width)
		if err != nil {
			return PageMsg{Gen: gen, Page: Page{Number: n}, Err: err}
		}
		return PageMsg{Gen: gen, Page: Page{Number: n, Lines: lines}}
	}
}

func (p *Pipeline) fail(err error) tea.Cmd {
	p.running = false
	p.err = err
	slog.Debug("render failed", "page", len(p.pages)+1, "err", err)
	return p.notifier.Notify("Failed to render PDF: "+err.Error(), notify.Error)
}

// Update applies render messages.
func (p *Pipeline) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case OpenedMsg:
		if msg.Gen != p.gen {
			return nil
		}
		if msg.Err != nil {
			return p.fail(msg.Err)
		}
		return p.begin(msg.Renderer)

	case PageMsg:
		if msg.Gen != p.gen || !p.running {
			return nil
		}
		if msg.Err != nil {
			// Pages already committed stay visible.
			return p.fail(msg.Err)
		}
		p.pages = append(p.pages, msg.Page)
		if msg.Page.Number < p.total {
			return p.renderPage(msg.Page.Number + 1)
		}
		p.running = false
		return p.notifier.Notify("PDF rendered successfully", notify.Success)
	}
	return nil
}
