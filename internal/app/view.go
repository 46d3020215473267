package app

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/wilbur182/docchat/internal/keymap"
	"github.com/wilbur182/docchat/internal/plugin"
	"github.com/wilbur182/docchat/internal/styles"
)

// View renders the tab bar, the active plugin (or an overlay) and the footer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	height := m.contentHeight()
	var content string
	switch {
	case m.notify.HasPrompt():
		content = m.notify.RenderModal(m.width, height)
	case m.showHelp:
		content = m.renderHelp(m.width, height)
	default:
		if p := m.ActivePlugin(); p != nil {
			content = p.View(m.width, height)
		} else {
			content = styles.Muted.Render("No plugins available")
		}
	}
	content = lipgloss.NewStyle().Width(m.width).Height(height).MaxHeight(height).Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), content, m.renderFooter())
}

func (m Model) renderHeader() string {
	var tabs []string
	for i, p := range m.registry.Plugins() {
		label := p.Icon() + " " + p.Name()
		if ar, ok := p.(plugin.ActivityReporter); ok && ar.Busy() && m.spinner.IsActive() {
			label += " " + m.spinner.View()
		}
		if i == m.activePlugin {
			tabs = append(tabs, styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, styles.TabInactive.Render(label))
		}
	}
	left := strings.Join(tabs, " ")

	right := "docchat"
	if m.version != "" {
		right += " " + m.version
	}
	if m.showClock {
		right += "  " + m.now().Format("15:04")
	}
	right = styles.Muted.Render(right + " ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return ansi.Truncate(left, m.width, "")
	}
	return left + strings.Repeat(" ", gap) + right
}

// footerHints returns the active context's commands in priority order.
func (m Model) footerHints() []string {
	p := m.ActivePlugin()
	if p == nil {
		return nil
	}
	ctx := p.FocusContext()
	var cmds []plugin.Command
	for _, c := range p.Commands() {
		if c.Context == ctx {
			cmds = append(cmds, c)
		}
	}
	sort.SliceStable(cmds, func(i, j int) bool { return cmds[i].Priority < cmds[j].Priority })

	var hints []string
	for _, c := range cmds {
		keys := m.keymap.KeysFor(c.ID, ctx)
		if len(keys) == 0 {
			continue
		}
		hints = append(hints, styles.KeyHint.Render(keys[0])+" "+styles.Muted.Render(c.Name))
	}
	for _, id := range []string{"next-tab", "help"} {
		if keys := m.keymap.KeysFor(id, keymap.GlobalContext); len(keys) > 0 {
			cmd, _ := m.keymap.GetCommand(id)
			hints = append(hints, styles.KeyHint.Render(keys[0])+" "+styles.Muted.Render(cmd.Name))
		}
	}
	return hints
}

func (m Model) renderFooter() string {
	if toast := m.notify.RenderToast(m.width); toast != "" {
		return toast
	}
	if !m.showFooter {
		return ""
	}
	return ansi.Truncate(strings.Join(m.footerHints(), "  "), m.width, "")
}

// renderHelp lists the active plugin's commands by category, then the
// global ones.
func (m Model) renderHelp(width, height int) string {
	var b strings.Builder
	b.WriteString(styles.ModalTitle.Render("Keys"))
	b.WriteString("\n")

	if p := m.ActivePlugin(); p != nil {
		byCat := map[plugin.Category][]plugin.Command{}
		for _, c := range p.Commands() {
			byCat[c.Category] = append(byCat[c.Category], c)
		}
		for _, cat := range []plugin.Category{
			plugin.CategoryNavigation, plugin.CategoryActions, plugin.CategoryView,
			plugin.CategorySearch, plugin.CategorySystem,
		} {
			cmds := byCat[cat]
			if len(cmds) == 0 {
				continue
			}
			b.WriteString(styles.Title.Render(string(cat)) + "\n")
			seen := map[string]bool{}
			for _, c := range cmds {
				keys := m.keymap.KeysFor(c.ID, c.Context)
				if len(keys) == 0 || seen[c.ID+keys[0]] {
					continue
				}
				seen[c.ID+keys[0]] = true
				b.WriteString(helpLine(keys[0], c.Description) + "\n")
			}
		}
	}

	b.WriteString(styles.Title.Render("Global") + "\n")
	for _, bnd := range m.keymap.BindingsForContext(keymap.GlobalContext) {
		if strings.HasPrefix(bnd.Command, "tab-") && bnd.Command != "tab-1" {
			continue
		}
		cmd, ok := m.keymap.GetCommand(bnd.Command)
		if !ok {
			continue
		}
		key, name := bnd.Key, cmd.Name
		if bnd.Command == "tab-1" {
			key, name = "alt+1..9", "Jump to tab"
		}
		b.WriteString(helpLine(key, name) + "\n")
	}
	b.WriteString("\n" + styles.Subtle.Render("esc or ? to close"))

	box := styles.ModalBox.Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func helpLine(key, desc string) string {
	k := key
	if w := lipgloss.Width(k); w < 12 {
		k += strings.Repeat(" ", 12-w)
	}
	return "  " + styles.Accent.Render(k) + " " + styles.Body.Render(desc)
}
