package settingsview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/wilbur182/docchat/internal/settings"
	"github.com/wilbur182/docchat/internal/styles"
)

const labelWidth = 18

// usedBy reports whether key is read by the active provider. The prompt and
// the provider itself always are.
func usedBy(prov settings.Provider, ok bool, key string) bool {
	if key == "llm_provider" || key == promptKey {
		return true
	}
	if !ok {
		return false
	}
	return key == prov.KeyField || key == prov.ModelField || key == prov.EndpointField
}

func mask(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return strings.Repeat("•", 8)
	}
	return strings.Repeat("•", 8) + v[len(v)-4:]
}

func (p *Plugin) View(width, height int) string {
	p.width = width
	p.height = height
	inner := max(20, width-4)

	d := p.store.Draft()
	prov, ok := settings.LookupProvider(d.LLMProvider)

	var b strings.Builder
	title := "Settings"
	switch {
	case p.store.Saving():
		title += styles.Muted.Render("  saving…")
	case !p.store.Loaded():
		title += styles.Muted.Render("  loading…")
	case p.store.Dirty():
		title += styles.Accent.Render("  ● unsaved changes")
	}
	b.WriteString(styles.Title.Render(title) + "\n")
	if p.ctx != nil && p.ctx.API != nil {
		b.WriteString(styles.Subtle.Render("Backend: "+p.ctx.API.BaseURL()) + "\n")
	}
	b.WriteString("\n")

	for i, f := range settings.Fields {
		b.WriteString(p.renderRow(i, f, d, usedBy(prov, ok, f.Key), inner) + "\n")
	}

	if p.editing {
		b.WriteString("\n")
		if p.field().Key == promptKey {
			p.prompt.SetWidth(inner)
			b.WriteString(p.prompt.View() + "\n")
			b.WriteString(styles.Subtle.Render("ctrl+s apply · esc cancel · use {{context}} and {{query}}"))
		} else {
			p.line.Width = inner - 2
			b.WriteString(styles.PanelActive.Width(inner).Render(p.line.View()))
		}
	} else if err := d.Validate(); err != nil {
		b.WriteString("\n" + styles.StatusError.Render(ansi.Truncate(err.Error(), inner, "…")))
	}

	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Padding(0, 1).Render(b.String())
}

func (p *Plugin) renderRow(i int, f settings.Field, d settings.Settings, used bool, width int) string {
	value := d.Get(f.Key)
	switch {
	case f.Key == "llm_provider":
		if prov, ok := settings.LookupProvider(value); ok {
			value = "‹ " + prov.Name + " ›"
		}
	case f.Secret:
		value = mask(value)
	case f.Key == promptKey:
		value = strings.Join(strings.Fields(value), " ")
	}
	if value == "" {
		value = styles.Subtle.Render("not set")
	}

	label := f.Label
	if lipgloss.Width(label) < labelWidth {
		label += strings.Repeat(" ", labelWidth-lipgloss.Width(label))
	}
	line := ansi.Truncate(label+" "+value, width, "…")

	switch {
	case i == p.cursor && p.focused:
		return styles.Selected.Width(width).Render(line)
	case i == p.cursor:
		return styles.Body.Bold(true).Render(line)
	case used:
		return styles.Body.Render(line)
	default:
		return styles.Muted.Render(line)
	}
}
