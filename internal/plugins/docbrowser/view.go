package docbrowser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/wilbur182/docchat/internal/catalog"
	"github.com/wilbur182/docchat/internal/documents"
	"github.com/wilbur182/docchat/internal/styles"
	"github.com/wilbur182/docchat/internal/upload"
)

const (
	minListWidth    = 30
	singlePaneBelow = 80
)

func (p *Plugin) listWidth() int {
	if p.width < singlePaneBelow {
		return p.width
	}
	return max(minListWidth, p.width*40/100)
}

func (p *Plugin) previewWidth() int {
	if p.width <= 0 {
		return 80
	}
	if p.width < singlePaneBelow {
		return p.width
	}
	return p.width - p.listWidth()
}

func (p *Plugin) View(width, height int) string {
	p.width = width
	p.height = height

	header := p.renderHeader(width)
	footer := ""
	if p.mode != inputNone {
		p.input.Width = max(10, width-lipgloss.Width(p.input.Prompt)-2)
		footer = p.input.View()
	}
	bodyHeight := max(3, height-lipgloss.Height(header)-lipgloss.Height(footer))

	var left string
	switch {
	case p.uploads.IsOpen():
		left = p.renderUpload(p.listWidth(), bodyHeight)
	case p.browser.ShowingResults():
		left = p.renderResults(p.listWidth(), bodyHeight)
	default:
		left = p.renderList(p.listWidth(), bodyHeight)
	}

	var body string
	switch {
	case width >= singlePaneBelow:
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, p.renderPreview(p.previewWidth(), bodyHeight))
	case p.pane == PanePreview:
		body = p.renderPreview(width, bodyHeight)
	default:
		body = left
	}

	parts := []string{header, body}
	if footer != "" {
		parts = append(parts, footer)
	}
	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (p *Plugin) renderHeader(width int) string {
	crumbs := p.browser.Breadcrumb()
	names := make([]string, len(crumbs))
	for i, f := range crumbs {
		names[i] = f.Name
	}
	left := " " + strings.Join(names, " › ")

	s := p.browser.Stats()
	right := fmt.Sprintf("%d files · %d folders · %d chunks ", s.Files, s.Folders, s.Chunks)
	gap := max(1, width-lipgloss.Width(left)-lipgloss.Width(right))
	return styles.StatusBar.Width(width).Render(ansi.Truncate(left+strings.Repeat(" ", gap)+right, width, ""))
}

func (p *Plugin) panelStyle(active bool) lipgloss.Style {
	if active && p.focused {
		return styles.PanelActive
	}
	return styles.PanelInactive
}

func (p *Plugin) renderList(width, height int) string {
	inner := max(1, width-4)
	rows := max(1, height-3)

	var b strings.Builder
	title := "Documents"
	if p.browser.Loading() {
		title += styles.Muted.Render("  loading…")
	}
	b.WriteString(styles.Title.Render(title) + "\n")

	items := p.browser.Items()
	if len(items) == 0 && !p.browser.Loading() {
		b.WriteString(styles.Muted.Render("This folder is empty. Press u to upload."))
	}

	cursor := p.browser.Cursor()
	if cursor < p.listTop {
		p.listTop = cursor
	}
	if cursor >= p.listTop+rows {
		p.listTop = cursor - rows + 1
	}
	end := min(len(items), p.listTop+rows)
	for i := p.listTop; i < end; i++ {
		b.WriteString(p.renderItem(items[i], i == cursor, inner))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return p.panelStyle(p.pane == PaneList).Width(width - 2).Height(height - 2).MaxHeight(height).Render(b.String())
}

func (p *Plugin) renderItem(it documents.Item, cursor bool, width int) string {
	icon := "📄"
	meta := ""
	if it.IsFolder {
		icon = "📁"
	} else {
		meta = catalog.FormatSize(it.Size) + " · " + catalog.FormatAge(it.CreatedAt, p.now())
		if it.ChunkCount > 0 {
			meta += fmt.Sprintf(" · %d chunks", it.ChunkCount)
		}
	}

	nameWidth := max(6, width-lipgloss.Width(meta)-4)
	name := ansi.Truncate(it.Name, nameWidth, "…")
	if it.ID == p.preview.key {
		name = styles.Accent.Render(name)
	}
	pad := max(1, width-3-lipgloss.Width(name)-lipgloss.Width(meta))
	line := icon + " " + name + strings.Repeat(" ", pad) + styles.Muted.Render(meta)
	if cursor {
		return styles.Selected.Width(width).Render(line)
	}
	return line
}

func (p *Plugin) renderResults(width, height int) string {
	inner := max(1, width-4)
	results := p.browser.SearchResults()

	var b strings.Builder
	b.WriteString(styles.Title.Render(fmt.Sprintf("Results for %q", p.browser.SearchQuery())) + "\n")
	if len(results) == 0 {
		b.WriteString(styles.Muted.Render("No matching passages"))
	}

	// Each result takes three lines.
	rows := max(1, (height-3)/3)
	start := 0
	if p.resultAt >= rows {
		start = p.resultAt - rows + 1
	}
	end := min(len(results), start+rows)
	for i := start; i < end; i++ {
		r := results[i]
		head := fmt.Sprintf("%s · chunk %d · %.0f%%", r.Filename, r.ChunkIndex, r.SimilarityScore*100)
		head = ansi.Truncate(head, inner, "…")
		if i == p.resultAt {
			head = styles.Selected.Width(inner).Render(head)
		} else {
			head = styles.Body.Render(head)
		}
		snippet := strings.Join(strings.Fields(r.Content), " ")
		b.WriteString(head + "\n")
		b.WriteString(styles.Muted.Render(ansi.Truncate("  "+snippet, inner, "…")) + "\n")
	}
	b.WriteString(styles.Subtle.Render("enter: open folder · esc: back"))

	return p.panelStyle(true).Width(width - 2).Height(height - 2).MaxHeight(height).Render(b.String())
}

func (p *Plugin) renderUpload(width, height int) string {
	inner := max(1, width-4)
	folder := p.browser.Breadcrumb()
	dest := "Root"
	if len(folder) > 0 {
		dest = folder[len(folder)-1].Name
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("Upload to "+dest) + "\n")
	b.WriteString(styles.Subtle.Render(ansi.Truncate(fmt.Sprintf("Up to %d files, %d MB each: .%s",
		upload.MaxFiles, upload.MaxFileSize/(1024*1024), strings.Join(upload.AllowedExtensions, " .")), inner, "…")) + "\n\n")

	p.uploadPath.Width = max(10, inner-2)
	b.WriteString(p.uploadPath.View() + "\n\n")

	tasks := p.uploads.Tasks()
	if len(tasks) == 0 {
		b.WriteString(styles.Muted.Render("No files queued"))
	}
	for i, t := range tasks {
		b.WriteString(p.renderTask(t, i == p.uploadCursor, inner) + "\n")
	}

	b.WriteString("\n")
	switch p.uploads.State() {
	case upload.Submitting:
		b.WriteString(styles.Accent.Render("Uploading…"))
	case upload.Completed:
		b.WriteString(styles.StatusOK.Render("Upload complete"))
	default:
		if p.uploads.CanSubmit() {
			b.WriteString(styles.KeyHint.Render("ctrl+s") + " upload " + fmt.Sprint(len(tasks)) + " files")
		}
	}

	return styles.PanelActive.Width(width - 2).Height(height - 2).MaxHeight(height).Render(b.String())
}

func (p *Plugin) renderTask(t *upload.Task, cursor bool, width int) string {
	var status string
	switch t.State {
	case upload.Uploading:
		status = styles.Accent.Render("uploading")
	case upload.Succeeded:
		status = styles.StatusOK.Render(fmt.Sprintf("✓ %d chunks", t.Chunks))
	case upload.Failed:
		status = styles.StatusError.Render("✗ " + t.Reason)
	default:
		status = styles.Muted.Render(catalog.FormatSize(t.File.Size()))
	}

	nameWidth := max(6, width-lipgloss.Width(status)-3)
	name := ansi.Truncate(t.File.Name(), nameWidth, "…")
	pad := max(1, width-lipgloss.Width(name)-lipgloss.Width(status))
	line := name + strings.Repeat(" ", pad) + status
	if cursor {
		return styles.Selected.Width(width).Render(ansi.Truncate(line, width, ""))
	}
	return ansi.Truncate(line, width, "")
}

func (p *Plugin) renderPreview(width, height int) string {
	inner := max(1, width-4)
	rows := max(1, height-3)
	s := p.preview

	var b strings.Builder
	switch {
	case s.key == "":
		b.WriteString(styles.Muted.Render("Select a file to preview"))
	default:
		title := s.name
		if s.local {
			title += styles.Muted.Render("  (queued)")
		}
		b.WriteString(styles.Title.Render(ansi.Truncate(title, inner, "…")) + "\n")

		lines := p.previewContent()
		switch {
		case s.loading && len(lines) == 0:
			b.WriteString(styles.Muted.Render("Loading preview..."))
		case s.err != nil && len(lines) == 0:
			b.WriteString(styles.StatusError.Render("Preview unavailable"))
		}
		end := min(len(lines), s.scroll+rows)
		for i := s.scroll; i < end; i++ {
			b.WriteString(ansi.Truncate(lines[i], inner, ""))
			if i < end-1 {
				b.WriteString("\n")
			}
		}
	}

	return p.panelStyle(p.pane == PanePreview).Width(width - 2).Height(height - 2).MaxHeight(height).Render(b.String())
}
