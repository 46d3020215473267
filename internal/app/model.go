// Package app holds the root Bubble Tea model: the tab bar, key routing,
// the shared toast and confirm modal, and config hot reload.
package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wilbur182/docchat/internal/config"
	"github.com/wilbur182/docchat/internal/keymap"
	"github.com/wilbur182/docchat/internal/notify"
	"github.com/wilbur182/docchat/internal/plugin"
	"github.com/wilbur182/docchat/internal/ui"
)

// maxTabShortcuts is the number of alt+N bindings registered.
const maxTabShortcuts = 9

// Model is the root Bubble Tea model for docchat.
type Model struct {
	cfg *config.Config

	// Plugin management
	registry     *plugin.Registry
	activePlugin int

	// Keymap
	keymap        *keymap.Registry
	activeContext string

	notify *notify.Center
	watch  func() tea.Cmd

	// UI state
	width, height int
	ready         bool
	showHelp      bool
	showFooter    bool
	showClock     bool
	spinner       ui.Spinner

	version string
	now     func() time.Time
}

type (
	cycleTabMsg   struct{ delta int }
	switchTabMsg  struct{ idx int }
	toggleHelpMsg struct{}
	clockTickMsg  time.Time
)

// New creates the application model. initialPluginID optionally selects the
// tab focused on startup (empty = first tab).
func New(reg *plugin.Registry, km *keymap.Registry, center *notify.Center, cfg *config.Config, version, initialPluginID string) Model {
	if cfg == nil {
		cfg = config.Default()
	}
	m := Model{
		cfg:           cfg,
		registry:      reg,
		keymap:        km,
		activeContext: keymap.GlobalContext,
		notify:        center,
		showFooter:    cfg.UI.ShowFooter,
		showClock:     cfg.UI.ShowClock,
		version:       version,
		now:           time.Now,
	}
	registerGlobals(km)
	km.ApplyOverrides(cfg.Keymap.Overrides)

	for i, p := range reg.Plugins() {
		if p.ID() == initialPluginID {
			m.activePlugin = i
			break
		}
	}
	if p := m.ActivePlugin(); p != nil {
		p.SetFocused(true)
		m.activeContext = p.FocusContext()
	}
	return m
}

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// registerGlobals binds the commands available on every tab.
func registerGlobals(km *keymap.Registry) {
	global := func(id, name string, handler func() tea.Cmd, keys ...string) {
		km.RegisterCommand(keymap.Command{ID: id, Name: name, Handler: handler, Context: keymap.GlobalContext})
		for _, k := range keys {
			km.RegisterBinding(keymap.Binding{Key: k, Command: id, Context: keymap.GlobalContext})
		}
	}

	global("quit", "Quit", func() tea.Cmd { return tea.Quit }, "ctrl+c")
	global("next-tab", "Next tab", func() tea.Cmd { return msgCmd(cycleTabMsg{delta: 1}) }, "ctrl+t", "alt+right")
	global("prev-tab", "Previous tab", func() tea.Cmd { return msgCmd(cycleTabMsg{delta: -1}) }, "shift+tab", "alt+left")
	global("help", "Help", func() tea.Cmd { return msgCmd(toggleHelpMsg{}) }, "?")
	for i := 0; i < maxTabShortcuts; i++ {
		idx := i
		global(fmt.Sprintf("tab-%d", i+1), fmt.Sprintf("Tab %d", i+1),
			func() tea.Cmd { return msgCmd(switchTabMsg{idx: idx}) },
			fmt.Sprintf("alt+%d", i+1))
	}
}

// WatchConfig sets the source of config reloads. The model listens again
// after each reload.
func (m *Model) WatchConfig(listen func() tea.Cmd) {
	m.watch = listen
}

func (m Model) listen() tea.Cmd {
	if m.watch == nil {
		return nil
	}
	return m.watch()
}

// Init starts every plugin, loads the document catalog and begins listening
// for config changes.
func (m Model) Init() tea.Cmd {
	cmds := m.registry.Start()
	ctx := m.registry.Context()
	cmds = append(cmds, ctx.Stamp(ctx.RefreshCatalog()), m.listen())
	if m.showClock {
		cmds = append(cmds, clockTick(m.now()))
	}
	return tea.Batch(cmds...)
}

// clockTick fires at the start of the next minute.
func clockTick(now time.Time) tea.Cmd {
	next := now.Truncate(time.Minute).Add(time.Minute)
	return tea.Tick(next.Sub(now), func(t time.Time) tea.Msg { return clockTickMsg(t) })
}

// ActivePlugin returns the currently active plugin.
func (m Model) ActivePlugin() plugin.Plugin {
	plugins := m.registry.Plugins()
	if len(plugins) == 0 {
		return nil
	}
	if m.activePlugin >= len(plugins) {
		return plugins[0]
	}
	return plugins[m.activePlugin]
}

// SetActivePlugin sets the active plugin by index and returns a command
// to notify the plugin it has been focused.
func (m *Model) SetActivePlugin(idx int) tea.Cmd {
	plugins := m.registry.Plugins()
	if idx < 0 || idx >= len(plugins) {
		return nil
	}
	if current := m.ActivePlugin(); current != nil {
		current.SetFocused(false)
	}
	m.activePlugin = idx
	next := plugins[idx]
	next.SetFocused(true)
	m.activeContext = next.FocusContext()
	return PluginFocused()
}

// NextPlugin switches to the next plugin.
func (m *Model) NextPlugin() tea.Cmd {
	plugins := m.registry.Plugins()
	if len(plugins) == 0 {
		return nil
	}
	return m.SetActivePlugin((m.activePlugin + 1) % len(plugins))
}

// PrevPlugin switches to the previous plugin.
func (m *Model) PrevPlugin() tea.Cmd {
	plugins := m.registry.Plugins()
	if len(plugins) == 0 {
		return nil
	}
	idx := m.activePlugin - 1
	if idx < 0 {
		idx = len(plugins) - 1
	}
	return m.SetActivePlugin(idx)
}

// FocusPluginByID switches to a plugin by its ID.
func (m *Model) FocusPluginByID(id string) tea.Cmd {
	for i, p := range m.registry.Plugins() {
		if p.ID() == id {
			return m.SetActivePlugin(i)
		}
	}
	return nil
}

// PluginFocused tells the newly active plugin it has focus.
func PluginFocused() tea.Cmd {
	return msgCmd(plugin.PluginFocusedMsg{})
}

// contentHeight is the height left for the active plugin below the tab bar
// and above the footer.
func (m Model) contentHeight() int {
	return max(1, m.height-2)
}
