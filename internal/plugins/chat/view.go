package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/wilbur182/docchat/internal/conversation"
	"github.com/wilbur182/docchat/internal/markdown"
	"github.com/wilbur182/docchat/internal/settings"
	"github.com/wilbur182/docchat/internal/styles"
)

const (
	listMinWidth   = 24
	listHideBelow  = 70
	shortIDLength  = 8
	emptyPrompt    = "Start a conversation by asking a question about your documents"
	loadingMessage = "Loading conversation..."
)

func (p *Plugin) View(width, height int) string {
	p.width = width
	p.height = height

	if p.picker.open {
		return p.renderPicker(width, height)
	}

	listWidth := 0
	if width >= listHideBelow {
		listWidth = max(listMinWidth, width*30/100)
	}
	mainWidth := width - listWidth

	main := p.renderMain(mainWidth, height)
	if listWidth == 0 {
		return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(main)
	}
	list := p.renderList(listWidth, height)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, main)
}

func (p *Plugin) renderMain(width, height int) string {
	inputView := p.input.View(width)
	status := p.renderStatusBar(width)
	docs := p.renderSelectedDocs(width)

	vpHeight := max(1, height-lipgloss.Height(inputView)-lipgloss.Height(status)-lipgloss.Height(docs))
	p.view.SetSize(width, vpHeight)
	p.view.SetMessages(p.store.Messages(), p.md, p.store.Loading())

	content := lipgloss.JoinVertical(lipgloss.Left, status, p.view.View(), docs, inputView)
	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(content)
}

func (p *Plugin) renderStatusBar(width int) string {
	name := p.store.Provider()
	if prov, ok := settings.LookupProvider(name); ok {
		name = prov.Name
	}
	web := "off"
	if p.store.WebSearch() {
		web = "on"
	}
	left := fmt.Sprintf(" %s · web %s · %d docs", name, web, len(p.sel.SelectedIDs()))
	if id := p.store.ActiveID(); id != "" {
		if len(id) > shortIDLength {
			id = id[:shortIDLength]
		}
		left += " · " + id
	}

	right := "Ready "
	if p.store.Sending() {
		right = "⟳ Thinking... "
	} else if p.store.Loading() {
		right = "⟳ Loading... "
	}

	gap := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return styles.StatusBar.Width(width).Render(ansi.Truncate(left+strings.Repeat(" ", gap)+right, width, ""))
}

func (p *Plugin) renderSelectedDocs(width int) string {
	docs := p.sel.SelectedDocuments()
	if len(docs) == 0 {
		return styles.Subtle.Render(ansi.Truncate(" Searching all documents · ctrl+d to choose", width, "…"))
	}
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return styles.Muted.Render(ansi.Truncate(" 📄 "+strings.Join(names, ", "), width, "…"))
}

func (p *Plugin) renderList(width, height int) string {
	panel := styles.PanelInactive
	if p.listFocused {
		panel = styles.PanelActive
	}
	inner := max(1, width-4)

	var b strings.Builder
	b.WriteString(styles.Title.Render("Conversations") + "\n")

	convs := p.store.Conversations()
	if len(convs) == 0 {
		b.WriteString(styles.Muted.Render("No saved conversations"))
	}

	// Each entry takes three lines plus a separator.
	rows := max(1, (height-3)/4)
	start := 0
	if p.listCursor >= rows {
		start = p.listCursor - rows + 1
	}
	end := min(len(convs), start+rows)
	for i := start; i < end; i++ {
		c := convs[i]
		title := ansi.Truncate(c.Title, inner-2, "…")
		marker := "  "
		if c.ID == p.store.ActiveID() {
			marker = styles.Accent.Render("● ")
		}
		line := marker + title
		if p.listFocused && i == p.listCursor {
			line = styles.Selected.Width(inner).Render(line)
		}
		b.WriteString("\n" + line + "\n")
		b.WriteString("  " + styles.Muted.Render(ansi.Truncate(c.Preview, inner-2, "…")) + "\n")

		docs := "All documents"
		if resolved := p.sel.Resolve(c.SelectedDocuments); len(resolved) > 0 {
			names := make([]string, len(resolved))
			for j, d := range resolved {
				names[j] = d.Name
			}
			docs = strings.Join(names, ", ")
		}
		b.WriteString("  " + styles.Subtle.Render(ansi.Truncate(docs, inner-2, "…")))
	}

	return panel.Width(width - 2).Height(height - 2).MaxHeight(height).Render(b.String())
}

// MessageViewport renders and scrolls the transcript.
type MessageViewport struct {
	viewport viewport.Model
	width    int
	height   int
	atBottom bool
}

// NewMessageViewport creates a viewport pinned to the bottom.
func NewMessageViewport(width, height int) MessageViewport {
	return MessageViewport{
		viewport: viewport.New(width, height),
		width:    width,
		height:   height,
		atBottom: true,
	}
}

// SetMessages replaces the viewport content.
func (v *MessageViewport) SetMessages(msgs []conversation.Message, md *markdown.Renderer, loading bool) {
	v.viewport.SetContent(renderMessages(msgs, md, v.width, loading))
	if v.atBottom {
		v.viewport.GotoBottom()
	}
}

func (v *MessageViewport) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = height
}

// Follow pins the view to the newest message again.
func (v *MessageViewport) Follow() {
	v.atBottom = true
	v.viewport.GotoBottom()
}

// Update scrolls on page keys and mouse wheel.
func (v *MessageViewport) Update(msg tea.Msg) {
	v.viewport, _ = v.viewport.Update(msg)
	v.atBottom = v.viewport.AtBottom()
}

func (v *MessageViewport) View() string {
	return v.viewport.View()
}

func renderMessages(msgs []conversation.Message, md *markdown.Renderer, width int, loading bool) string {
	if len(msgs) == 0 {
		text := emptyPrompt
		if loading {
			text = loadingMessage
		}
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Inherit(styles.Muted).
			Render("\n\n" + text)
	}

	var sb strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if msg.Role == conversation.RoleUser {
			sb.WriteString(styles.UserLabel.Render("You") + "\n")
			sb.WriteString(styles.Body.Render(strings.Join(markdown.WrapText(msg.Content, width), "\n")))
			continue
		}

		sb.WriteString(styles.AssistantLbl.Render("Assistant") + "\n")
		if md != nil {
			sb.WriteString(strings.Join(md.Render(msg.Content, width), "\n"))
		} else {
			sb.WriteString(strings.Join(markdown.WrapText(msg.Content, width), "\n"))
		}
		if len(msg.Sources) > 0 {
			sb.WriteString("\n" + styles.Muted.Render("Sources:"))
			for _, s := range msg.Sources {
				sb.WriteString("\n" + styles.Subtle.Render(ansi.Truncate("  • "+sourceLabel(s.Filename, s.URL, s.Similarity), width, "…")))
			}
		}
	}
	return sb.String()
}

func sourceLabel(filename, url string, similarity float64) string {
	label := filename
	if url != "" {
		if label == "" {
			label = url
		} else {
			label += " (" + url + ")"
		}
	}
	if similarity > 0 {
		label += fmt.Sprintf(" %.0f%%", similarity*100)
	}
	return label
}
