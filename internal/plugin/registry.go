package plugin

import (
	"fmt"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Registry owns the tabs in display order and drives their lifecycle. A
// panicking tab is logged and skipped rather than taking the client down.
type Registry struct {
	mu          sync.RWMutex
	ctx         *Context
	plugins     []Plugin
	unavailable map[string]string // id -> reason Init failed
}

// NewRegistry creates a registry sharing ctx with every plugin.
func NewRegistry(ctx *Context) *Registry {
	if ctx.Logger == nil {
		ctx.Logger = slog.Default()
	}
	return &Registry{ctx: ctx, unavailable: map[string]string{}}
}

// guard runs fn and turns a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn()
}

func (r *Registry) initPlugin(p Plugin) error {
	return guard(func() error { return p.Init(r.ctx) })
}

func (r *Registry) startPlugin(p Plugin) tea.Cmd {
	var cmd tea.Cmd
	err := guard(func() error {
		cmd = p.Start()
		return nil
	})
	if err != nil {
		r.ctx.Logger.Error("plugin start failed", "id", p.ID(), "err", err)
		return nil
	}
	return cmd
}

func (r *Registry) stopPlugin(p Plugin) {
	err := guard(func() error {
		p.Stop()
		return nil
	})
	if err != nil {
		r.ctx.Logger.Error("plugin stop failed", "id", p.ID(), "err", err)
	}
}

// Register initializes p and appends it as the next tab. A plugin whose
// Init fails is recorded as unavailable and left out.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.initPlugin(p); err != nil {
		r.unavailable[p.ID()] = err.Error()
		r.ctx.Logger.Warn("plugin unavailable", "id", p.ID(), "reason", err)
		return nil
	}
	r.plugins = append(r.plugins, p)
	return nil
}

// startAll collects the initial commands. Callers hold the lock.
func (r *Registry) startAll() []tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range r.plugins {
		if cmd := r.startPlugin(p); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// stopAll stops plugins last-registered first. Callers hold the lock.
func (r *Registry) stopAll() {
	for i := len(r.plugins) - 1; i >= 0; i-- {
		r.stopPlugin(r.plugins[i])
	}
}

// Start starts every plugin and returns their initial commands.
func (r *Registry) Start() []tea.Cmd {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.startAll()
}

// Stop stops every plugin in reverse order.
func (r *Registry) Stop() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.stopAll()
}

// Reinit stops every plugin, lets apply edit the shared context, bumps the
// epoch so results of the old backend are dropped, then initializes and
// starts the plugins again.
func (r *Registry) Reinit(apply func(*Context)) []tea.Cmd {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopAll()
	if apply != nil {
		apply(r.ctx)
	}
	r.ctx.Epoch++
	for _, p := range r.plugins {
		if err := r.initPlugin(p); err != nil {
			r.ctx.Logger.Error("plugin reinit failed", "id", p.ID(), "err", err)
		}
	}
	return r.startAll()
}

// Replace swaps in the value a plugin's Update returned.
func (r *Registry) Replace(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(p.ID()); i >= 0 {
		r.plugins[i] = p
	}
}

func (r *Registry) indexOf(id string) int {
	for i, p := range r.plugins {
		if p.ID() == id {
			return i
		}
	}
	return -1
}

// Plugins returns the registered plugins in tab order.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Plugin(nil), r.plugins...)
}

// Get returns the plugin with id, or nil.
func (r *Registry) Get(id string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.plugins[i]
	}
	return nil
}

// Unavailable maps the ids of plugins that failed Init to the reason.
func (r *Registry) Unavailable() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.unavailable))
	for k, v := range r.unavailable {
		out[k] = v
	}
	return out
}

// Context returns the shared plugin context.
func (r *Registry) Context() *Context {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ctx
}
