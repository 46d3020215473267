package app

import (
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wilbur182/docchat/internal/api"
	"github.com/wilbur182/docchat/internal/config"
	"github.com/wilbur182/docchat/internal/features"
	"github.com/wilbur182/docchat/internal/notify"
	"github.com/wilbur182/docchat/internal/plugin"
	"github.com/wilbur182/docchat/internal/styles"
	"github.com/wilbur182/docchat/internal/ui"
)

// Update handles every message for the application.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	return m, tea.Batch(cmd, m.syncActivity())
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	if em, ok := msg.(plugin.EpochMsg); ok {
		// Toast timers belong to the center, not to a backend.
		if exp, ok := em.Msg.(notify.ExpiredMsg); ok {
			m.notify.Update(exp)
			return nil
		}
		if current := m.registry.Context().Epoch; em.Epoch != current {
			slog.Debug("dropping stale message", "epoch", em.Epoch, "current", current)
			return nil
		}
		msg = em.Msg
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		return m.resize()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.notify.HasPrompt() || m.showHelp {
			return nil
		}
		// Shift the event into the plugin's coordinate space.
		msg.Y--
		return m.forward(m.ActivePlugin(), msg)

	case notify.ExpiredMsg:
		m.notify.Update(msg)
		return nil

	case ui.SpinnerTickMsg:
		return m.spinner.Update(msg)

	case clockTickMsg:
		if !m.showClock {
			return nil
		}
		return clockTick(m.now())

	case cycleTabMsg:
		if msg.delta < 0 {
			return m.PrevPlugin()
		}
		return m.NextPlugin()

	case switchTabMsg:
		return m.SetActivePlugin(msg.idx)

	case toggleHelpMsg:
		m.showHelp = !m.showHelp
		return nil

	case plugin.PluginFocusedMsg:
		return m.forward(m.ActivePlugin(), msg)

	case config.ReloadedMsg:
		return m.applyConfig(msg)
	}

	return m.broadcast(msg)
}

// handleKey routes a key: the confirm modal first, then the help overlay,
// then global bindings, then the active plugin. While the plugin owns a
// text field only ctrl and alt chords reach the global bindings.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	if handled, cmd := m.notify.HandleKey(msg); handled {
		return cmd
	}
	if m.showHelp {
		switch msg.String() {
		case "esc", "?", "q", "enter":
			m.showHelp = false
		}
		return nil
	}

	p := m.ActivePlugin()
	if p == nil {
		return nil
	}
	m.activeContext = p.FocusContext()
	if !consumesText(p) || isChord(msg) {
		if cmd := m.keymap.Handle(msg, m.activeContext); cmd != nil {
			return cmd
		}
	}

	cmd := m.forward(p, msg)
	m.activeContext = p.FocusContext()
	return cmd
}

func consumesText(p plugin.Plugin) bool {
	tc, ok := p.(plugin.TextInputConsumer)
	return ok && tc.ConsumesTextInput()
}

func isChord(msg tea.KeyMsg) bool {
	return msg.Alt || msg.Type == tea.KeyShiftTab || strings.HasPrefix(msg.String(), "ctrl+")
}

// forward delivers msg to one plugin.
func (m *Model) forward(p plugin.Plugin, msg tea.Msg) tea.Cmd {
	if p == nil {
		return nil
	}
	next, cmd := p.Update(msg)
	if next != nil {
		m.registry.Replace(next)
	}
	return cmd
}

// broadcast delivers msg to every plugin. Results of background work are
// meant for whichever plugin can use them.
func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range m.registry.Plugins() {
		if cmd := m.forward(p, msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) resize() tea.Cmd {
	if !m.ready {
		return nil
	}
	return m.broadcast(tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()})
}

// applyConfig installs a reloaded config. A new backend address restarts
// every plugin against a fresh client under a new epoch.
func (m *Model) applyConfig(msg config.ReloadedMsg) tea.Cmd {
	if msg.Err != nil || msg.Config == nil {
		reason := "empty config"
		if msg.Err != nil {
			reason = msg.Err.Error()
		}
		slog.Warn("config reload failed", "err", reason)
		return tea.Batch(m.notify.Notify("Config reload failed: "+reason, notify.Warning), m.listen())
	}

	cfg := msg.Config
	prev := m.cfg
	m.cfg = cfg
	m.showFooter = cfg.UI.ShowFooter
	m.showClock = cfg.UI.ShowClock
	features.Reload(cfg)
	styles.ApplyTheme(cfg.UI.Theme.Name)
	m.keymap.ApplyOverrides(cfg.Keymap.Overrides)

	cmds := []tea.Cmd{m.listen()}
	if prev == nil || prev.API.URL != cfg.API.URL || prev.API.Timeout != cfg.API.Timeout {
		slog.Info("backend changed", "url", cfg.API.URL)
		cmds = append(cmds, m.registry.Reinit(func(ctx *plugin.Context) {
			ctx.Config = cfg
			ctx.API = api.New(cfg.API.URL, cfg.API.Timeout)
		})...)
		ctx := m.registry.Context()
		cmds = append(cmds, ctx.Stamp(ctx.RefreshCatalog()), m.resize())
		if p := m.ActivePlugin(); p != nil {
			p.SetFocused(true)
			m.activeContext = p.FocusContext()
		}
	} else {
		m.registry.Context().Config = cfg
	}
	cmds = append(cmds, m.broadcast(msg))
	return tea.Batch(cmds...)
}

// syncActivity runs the tab bar spinner while any plugin is busy.
func (m *Model) syncActivity() tea.Cmd {
	busy := false
	for _, p := range m.registry.Plugins() {
		if ar, ok := p.(plugin.ActivityReporter); ok && ar.Busy() {
			busy = true
			break
		}
	}
	if busy {
		return m.spinner.Start()
	}
	m.spinner.Stop()
	return nil
}
