package notify

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/wilbur182/docchat/internal/styles"
)

func toastStyle(s Severity) lipgloss.Style {
	switch s {
	case Success:
		return styles.ToastSuccess
	case Warning:
		return styles.ToastWarning
	case Error:
		return styles.ToastError
	default:
		return styles.ToastInfo
	}
}

// RenderToast renders the visible toast as a single line, or "" when none.
func (c *Center) RenderToast(width int) string {
	t, ok := c.Current()
	if !ok {
		return ""
	}
	text := t.Message
	if width > 6 {
		text = ansi.Truncate(strings.ReplaceAll(text, "\n", " "), width-6, "…")
	}
	return toastStyle(t.Severity).Render(text)
}

// RenderModal renders the confirm prompt centered in a width x height area.
func (c *Center) RenderModal(width, height int) string {
	p, ok := c.Prompt()
	if !ok {
		return ""
	}

	boxWidth := 56
	if width > 0 && boxWidth > width-4 {
		boxWidth = max(20, width-4)
	}

	var b strings.Builder
	title := styles.ModalTitle
	if p.Severity == Error || p.Severity == Warning {
		title = title.Foreground(toastStyle(p.Severity).GetBackground())
	}
	b.WriteString(title.Render(p.Title))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(boxWidth - 6).Render(p.Body))
	b.WriteString("\n\n")
	b.WriteString(styles.KeyHint.Render("y") + " confirm  " + styles.KeyHint.Render("n") + " cancel")

	box := styles.ModalBox.Width(boxWidth).Render(b.String())
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
