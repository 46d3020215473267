package docbrowser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wilbur182/docchat/internal/api"
	"github.com/wilbur182/docchat/internal/features"
	"github.com/wilbur182/docchat/internal/notify"
	"github.com/wilbur182/docchat/internal/preview"
	"github.com/wilbur182/docchat/internal/render"
)

// previewState is what the preview pane shows. key is a document id, or a
// path on disk when local is set.
type previewState struct {
	key       string
	name      string
	ext       string
	local     bool
	paged     bool
	loading   bool
	lines     []string
	truncated bool
	err       error
	scroll    int
	epoch     uint64
}

func (p *Plugin) previewOptions() preview.Options {
	return preview.Options{
		Width:    p.previewWidth() - 4,
		Office:   features.IsEnabled(features.OfficePreview.Name),
		Markdown: p.md,
	}
}

// openPreview shows a catalog document. PDFs go through the page pipeline;
// everything else is fetched as extracted text.
func (p *Plugin) openPreview(id, name, ext string) tea.Cmd {
	p.preview = previewState{
		key:     id,
		name:    name,
		ext:     ext,
		loading: true,
		epoch:   p.preview.epoch + 1,
	}
	p.browser.Select(id)

	if preview.KindOf(ext) == preview.Paged {
		p.preview.paged = true
		client := p.ctx.API
		fetch := func(ctx context.Context) ([]byte, error) { return client.FileBytes(ctx, id) }
		return p.pages.Load(fetch, render.OpenPDF, p.previewOptions().Width)
	}
	p.pages.Reset()
	return preview.Load(p.ctx.API, id, ext, p.preview.epoch, p.previewOptions())
}

// openLocalPreview shows a file queued for upload.
func (p *Plugin) openLocalPreview(path string) tea.Cmd {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	p.preview = previewState{
		key:     path,
		name:    filepath.Base(path),
		ext:     ext,
		local:   true,
		loading: true,
		epoch:   p.preview.epoch + 1,
	}

	if preview.KindOf(ext) == preview.Paged {
		p.preview.paged = true
		fetch := func(context.Context) ([]byte, error) { return os.ReadFile(path) }
		return p.pages.Load(fetch, render.OpenPDF, p.previewOptions().Width)
	}
	p.pages.Reset()
	return preview.LoadLocal(path, p.preview.epoch, p.previewOptions())
}

func (p *Plugin) reloadPreview() tea.Cmd {
	s := p.preview
	if s.local {
		return p.openLocalPreview(s.key)
	}
	return p.openPreview(s.key, s.name, s.ext)
}

func (p *Plugin) clearPreview() {
	p.pages.Reset()
	p.preview = previewState{epoch: p.preview.epoch + 1}
}

// updatePreview applies preview and render messages. ok is false for any
// other message.
func (p *Plugin) updatePreview(msg tea.Msg) (tea.Cmd, bool) {
	switch m := msg.(type) {
	case preview.LoadedMsg:
		if m.Epoch != p.preview.epoch || m.Key != p.preview.key {
			return nil, true
		}
		p.preview.loading = false
		p.preview.err = m.Err
		p.preview.lines = m.Result.Lines
		p.preview.truncated = m.Result.Truncated
		if m.Err != nil {
			return p.ctx.Notifier.Notify("Failed to preview "+p.preview.name+": "+api.Message(m.Err), notify.Error), true
		}
		return nil, true

	case render.OpenedMsg, render.PageMsg:
		cmd := p.pages.Update(msg)
		if p.preview.paged && !p.pages.Running() {
			p.preview.loading = false
			p.preview.err = p.pages.Err()
		}
		return cmd, true
	}
	return nil, false
}

// previewContent returns the lines the preview pane scrolls over.
func (p *Plugin) previewContent() []string {
	s := p.preview
	if !s.paged {
		lines := s.lines
		if s.truncated {
			lines = append(append([]string(nil), lines...), "", "… preview truncated")
		}
		return lines
	}

	var lines []string
	for _, page := range p.pages.Pages() {
		lines = append(lines, page.Lines...)
		lines = append(lines, "")
	}
	if p.pages.Running() {
		lines = append(lines, fmt.Sprintf("Rendering page %d of %d...", len(p.pages.Pages())+1, max(p.pages.Total(), 1)))
	}
	return lines
}

func (p *Plugin) scrollPreview(delta int) {
	n := len(p.previewContent())
	p.preview.scroll += delta
	if p.preview.scroll > n-1 {
		p.preview.scroll = n - 1
	}
	if p.preview.scroll < 0 {
		p.preview.scroll = 0
	}
}
