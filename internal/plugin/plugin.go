// Package plugin defines the tab contract the root model hosts.
package plugin

import tea "github.com/charmbracelet/bubbletea"

// Plugin is one tab of the client.
type Plugin interface {
	ID() string
	Name() string
	Icon() string
	Init(ctx *Context) error
	Start() tea.Cmd
	Stop()
	Update(msg tea.Msg) (Plugin, tea.Cmd)
	View(width, height int) string
	IsFocused() bool
	SetFocused(bool)
	Commands() []Command
	FocusContext() string
}

// TextInputConsumer is implemented by plugins that sometimes own a text
// field. While it reports true, plain keys are delivered to the plugin
// instead of global bindings.
type TextInputConsumer interface {
	ConsumesTextInput() bool
}

// Category groups commands in the help overlay.
type Category string

const (
	CategoryNavigation Category = "Navigation"
	CategoryActions    Category = "Actions"
	CategoryView       Category = "View"
	CategorySearch     Category = "Search"
	CategorySystem     Category = "System"
)

// Command describes an action a plugin offers in a focus context.
type Command struct {
	ID          string
	Name        string
	Description string
	Category    Category
	Context     string
	Priority    int // lower shows first in the footer
}

// PluginFocusedMsg is delivered to a plugin when its tab becomes active.
type PluginFocusedMsg struct{}

// ActivityReporter is implemented by plugins with background work the tab
// bar should show a spinner for.
type ActivityReporter interface {
	Busy() bool
}
