package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/wilbur182/docchat/internal/catalog"
	"github.com/wilbur182/docchat/internal/selector"
	"github.com/wilbur182/docchat/internal/styles"
)

const pickerMaxRows = 12

// picker is the document selector overlay. Selection state lives in the
// selector; the picker only holds the cursor and the query field.
type picker struct {
	open   bool
	query  textinput.Model
	cursor int
	scroll int
}

func newPicker() picker {
	ti := textinput.New()
	ti.Placeholder = "Search documents..."
	ti.CharLimit = 100
	ti.Prompt = "/ "
	return picker{query: ti}
}

func (k *picker) show() tea.Cmd {
	k.open = true
	k.cursor = 0
	k.scroll = 0
	return k.query.Focus()
}

func (k *picker) hide() {
	k.open = false
	k.query.Blur()
}

func (k *picker) move(delta, n int) {
	k.cursor += delta
	if k.cursor >= n {
		k.cursor = n - 1
	}
	if k.cursor < 0 {
		k.cursor = 0
	}
	if k.cursor < k.scroll {
		k.scroll = k.cursor
	}
	if k.cursor >= k.scroll+pickerMaxRows {
		k.scroll = k.cursor - pickerMaxRows + 1
	}
}

// cycleFolder moves the selector to the next or previous folder.
func cycleFolder(sel *selector.Selector, delta int) {
	folders := sel.Folders()
	if len(folders) == 0 {
		return
	}
	idx := 0
	for i, f := range folders {
		if f.ID == sel.FolderID() {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(folders)) % len(folders)
	sel.SetFolder(folders[idx].ID)
}

// handlePickerKey routes a key while the overlay is open.
func (p *Plugin) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	k := &p.picker
	visible := p.sel.Visible()

	switch msg.String() {
	case "esc", "ctrl+d":
		k.hide()
		if !p.listFocused {
			p.input.Focus()
		}
		return nil
	case "up", "ctrl+p":
		k.move(-1, len(visible))
		return nil
	case "down", "ctrl+n":
		k.move(1, len(visible))
		return nil
	case "enter", "tab":
		if k.cursor < len(visible) {
			p.sel.Toggle(visible[k.cursor].ID)
		}
		return nil
	case "left", "right":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		cycleFolder(p.sel, delta)
		k.query.SetValue("")
		k.cursor, k.scroll = 0, 0
		return nil
	case "ctrl+x":
		p.sel.Clear()
		return nil
	}

	before := k.query.Value()
	var cmd tea.Cmd
	k.query, cmd = k.query.Update(msg)
	if q := k.query.Value(); q != before {
		p.sel.Search(strings.TrimSpace(q))
		k.cursor, k.scroll = 0, 0
	}
	return cmd
}

// renderPicker draws the overlay box.
func (p *Plugin) renderPicker(width, height int) string {
	k := &p.picker
	boxWidth := min(72, max(30, width-4))
	inner := boxWidth - 6

	var b strings.Builder
	b.WriteString(styles.ModalTitle.Render(fmt.Sprintf("Select documents (%d selected)", len(p.sel.SelectedIDs()))))
	b.WriteString("\n")

	folder := "Folder: " + styles.Body.Render("‹ "+p.sel.FolderName(p.sel.FolderID())+" ›")
	if p.sel.Searching() {
		folder = styles.Muted.Render("Searching all folders")
	}
	b.WriteString(folder + "\n")
	k.query.Width = inner - 2
	b.WriteString(k.query.View() + "\n\n")

	visible := p.sel.Visible()
	if len(visible) == 0 {
		msg := "No documents in this folder"
		if p.sel.Searching() {
			msg = "No documents match your search"
		}
		b.WriteString(styles.Muted.Render(msg) + "\n")
	}
	end := min(len(visible), k.scroll+pickerMaxRows)
	for i := k.scroll; i < end; i++ {
		b.WriteString(p.pickerRow(visible[i], i == k.cursor, inner) + "\n")
	}
	if len(visible) > end {
		b.WriteString(styles.Subtle.Render(fmt.Sprintf("  … %d more", len(visible)-end)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.KeyHint.Render("enter") + " toggle  " +
		styles.KeyHint.Render("←/→") + " folder  " +
		styles.KeyHint.Render("ctrl+x") + " clear  " +
		styles.KeyHint.Render("esc") + " close")

	box := styles.ModalBox.Width(boxWidth).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (p *Plugin) pickerRow(d catalog.Document, cursor bool, width int) string {
	mark := "[ ]"
	if p.sel.IsSelected(d.ID) {
		mark = styles.Checked.Render("[x]")
	}
	meta := catalog.FormatSize(d.Size)
	if p.sel.Searching() {
		meta = p.sel.FolderName(d.FolderID) + " · " + meta
	}
	nameWidth := max(8, width-lipgloss.Width(meta)-6)
	name := ansi.Truncate(d.Name, nameWidth, "…")
	pad := max(1, width-4-lipgloss.Width(name)-lipgloss.Width(meta))
	line := name + strings.Repeat(" ", pad) + styles.Muted.Render(meta)
	if cursor {
		return mark + " " + styles.Selected.Render(line)
	}
	return mark + " " + line
}
