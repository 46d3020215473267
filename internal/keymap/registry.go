// Package keymap maps keys to commands per focus context.
package keymap

import (
	"sort"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// GlobalContext holds bindings active in every context.
const GlobalContext = "global"

// Command represents a registered command handler.
type Command struct {
	ID      string
	Name    string
	Handler func() tea.Cmd
	Context string
}

// Binding maps a key to a command.
type Binding struct {
	Key     string // e.g., "tab", "ctrl+s", "alt+1"
	Command string // Command ID
	Context string // "global", plugin focus context, etc.
}

// Registry manages key bindings and command dispatch.
type Registry struct {
	commands      map[string]Command   // ID -> Command
	bindings      map[string][]Binding // context -> bindings
	userOverrides map[string]string    // key -> command ID
	mu            sync.RWMutex
}

// NewRegistry creates a new keymap registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:      make(map[string]Command),
		bindings:      make(map[string][]Binding),
		userOverrides: make(map[string]string),
	}
}

// RegisterCommand adds a command to the registry.
func (r *Registry) RegisterCommand(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd.ID] = cmd
}

// RegisterBinding adds a key binding. Re-registering the same key and
// command in a context is a no-op.
func (r *Registry) RegisterBinding(b Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bindings[b.Context] {
		if existing.Key == b.Key && existing.Command == b.Command {
			return
		}
	}
	r.bindings[b.Context] = append(r.bindings[b.Context], b)
}

// RegisterPluginBinding satisfies plugin.BindingRegistrar.
func (r *Registry) RegisterPluginBinding(key, command, context string) {
	r.RegisterBinding(Binding{Key: key, Command: command, Context: context})
}

// ApplyOverrides installs user key overrides (key -> command ID).
func (r *Registry) ApplyOverrides(overrides map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range overrides {
		r.userOverrides[k] = v
	}
}

// Handle dispatches a key event. It returns nil when no command with a
// handler is bound to the key.
func (r *Registry) Handle(key tea.KeyMsg, activeContext string) tea.Cmd {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k := KeyString(key)
	if cmdID, ok := r.userOverrides[k]; ok {
		if cmd, ok := r.commands[cmdID]; ok && cmd.Handler != nil {
			return cmd.Handler()
		}
	}
	if activeContext != "" && activeContext != GlobalContext {
		if cmd, found := r.findInContext(k, activeContext); found {
			return cmd
		}
	}
	cmd, _ := r.findInContext(k, GlobalContext)
	return cmd
}

func (r *Registry) findInContext(key, context string) (tea.Cmd, bool) {
	for _, b := range r.bindings[context] {
		if b.Key != key {
			continue
		}
		if cmd, ok := r.commands[b.Command]; ok && cmd.Handler != nil {
			return cmd.Handler(), true
		}
	}
	return nil, false
}

// KeysFor returns the keys bound to command in context, user overrides first.
func (r *Registry) KeysFor(command, context string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []string
	var overridden []string
	for k, id := range r.userOverrides {
		if id == command {
			overridden = append(overridden, k)
		}
	}
	sort.Strings(overridden)
	keys = append(keys, overridden...)
	for _, b := range r.bindings[context] {
		if b.Command == command {
			keys = append(keys, b.Key)
		}
	}
	return keys
}

// GetCommand retrieves a command by ID.
func (r *Registry) GetCommand(id string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

// BindingsForContext returns a copy of the bindings for a context.
func (r *Registry) BindingsForContext(context string) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Binding(nil), r.bindings[context]...)
}

// KeyString converts a key event to the binding notation.
func KeyString(key tea.KeyMsg) string {
	switch key.Type {
	case tea.KeySpace:
		return "space"
	case tea.KeyRunes:
		if key.Alt {
			return "alt+" + string(key.Runes)
		}
		return string(key.Runes)
	default:
		return key.String()
	}
}
