package plugin

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wilbur182/docchat/internal/api"
	"github.com/wilbur182/docchat/internal/catalog"
	"github.com/wilbur182/docchat/internal/config"
	"github.com/wilbur182/docchat/internal/markdown"
	"github.com/wilbur182/docchat/internal/notify"
)

// BindingRegistrar allows plugins to register key bindings dynamically.
// This is implemented by keymap.Registry.
type BindingRegistrar interface {
	RegisterPluginBinding(key, command, context string)
}

// Context provides shared resources to plugins during initialization.
type Context struct {
	Config   *config.Config
	API      *api.Client
	Notifier notify.Notifier
	Markdown *markdown.Renderer
	Logger   *slog.Logger
	Keymap   BindingRegistrar
	Epoch    uint64 // incremented when the backend changes to invalidate stale async messages
}

// RefreshCatalog reloads the document catalog and statistics. Every plugin
// receives the resulting messages.
func (c *Context) RefreshCatalog() tea.Cmd {
	return catalog.Refresh(c.API)
}

// EpochMsg tags an async result with the epoch it was issued in. The root
// model drops it when the epoch has moved on and otherwise handles Msg.
type EpochMsg struct {
	Epoch uint64
	Msg   tea.Msg
}

// Stamp tags the messages cmd produces with the current epoch.
func (c *Context) Stamp(cmd tea.Cmd) tea.Cmd {
	return stamp(c.Epoch, cmd)
}

func stamp(epoch uint64, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		switch msg := cmd().(type) {
		case nil:
			return nil
		case tea.BatchMsg:
			out := make(tea.BatchMsg, 0, len(msg))
			for _, c := range msg {
				if c != nil {
					out = append(out, stamp(epoch, c))
				}
			}
			return out
		default:
			return EpochMsg{Epoch: epoch, Msg: msg}
		}
	}
}
