// Package settingsview is the Settings tab: a form over the backend's
// provider settings record.
package settingsview

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/wilbur182/docchat/internal/plugin"
	"github.com/wilbur182/docchat/internal/settings"
)

const (
	pluginID   = "settings"
	pluginName = "Settings"
	pluginIcon = "⚙"
)

const (
	contextForm = "settings-form"
	contextEdit = "settings-edit"
)

const promptKey = "custom_llm_prompt"

// Plugin edits the settings draft and saves it.
type Plugin struct {
	ctx     *plugin.Context
	focused bool
	width   int
	height  int

	store  *settings.Store
	cursor int

	editing bool
	line    textinput.Model
	prompt  textarea.Model
}

var _ plugin.Plugin = (*Plugin)(nil)
var _ plugin.TextInputConsumer = (*Plugin)(nil)

// New creates the settings plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) ID() string   { return pluginID }
func (p *Plugin) Name() string { return pluginName }
func (p *Plugin) Icon() string { return pluginIcon }

func (p *Plugin) Init(ctx *plugin.Context) error {
	p.ctx = ctx
	p.store = settings.NewStore(ctx.API, ctx.Notifier)
	p.cursor = 0
	p.editing = false

	p.line = textinput.New()
	p.line.Prompt = ""
	p.prompt = textarea.New()
	p.prompt.ShowLineNumbers = false
	p.prompt.CharLimit = 0
	p.prompt.SetHeight(6)

	if ctx.Keymap != nil {
		for _, b := range bindings {
			ctx.Keymap.RegisterPluginBinding(b.key, b.command, b.context)
		}
	}
	return nil
}

// Start fetches the stored record.
func (p *Plugin) Start() tea.Cmd {
	return p.ctx.Stamp(p.store.Load())
}

func (p *Plugin) Stop() {
	p.editing = false
}

func (p *Plugin) Update(msg tea.Msg) (plugin.Plugin, tea.Cmd) {
	var cmd tea.Cmd
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = m.Width, m.Height
	case tea.KeyMsg:
		cmd = p.handleKey(m)
	default:
		cmd = p.store.Update(msg)
	}
	return p, p.ctx.Stamp(cmd)
}

func (p *Plugin) field() settings.Field { return settings.Fields[p.cursor] }

func (p *Plugin) handleKey(msg tea.KeyMsg) tea.Cmd {
	if p.editing {
		return p.handleEditKey(msg)
	}

	switch msg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(settings.Fields)-1 {
			p.cursor++
		}
	case "enter", "e":
		if p.field().Key == "llm_provider" {
			p.cycleProvider(1)
			return nil
		}
		return p.beginEdit()
	case "left", "h":
		p.cycle(-1)
	case "right", "l", " ", "space":
		p.cycle(1)
	case "ctrl+s", "s":
		return p.store.Save()
	case "u":
		p.store.Revert()
	case "D":
		// Restore the default for the highlighted key.
		d := p.store.Draft()
		key := p.field().Key
		d.Set(key, settings.Defaults().Get(key))
		p.store.SetDraft(d)
	}
	return nil
}

// cycle steps the provider, or the model list of a model field.
func (p *Plugin) cycle(delta int) {
	key := p.field().Key
	if key == "llm_provider" {
		p.cycleProvider(delta)
		return
	}
	for _, prov := range settings.Providers() {
		if prov.ModelField != key || len(prov.Models) == 0 {
			continue
		}
		d := p.store.Draft()
		idx := -1
		for i, m := range prov.Models {
			if m == d.Get(key) {
				idx = i
			}
		}
		n := len(prov.Models)
		idx = ((idx+delta)%n + n) % n
		d.Set(key, prov.Models[idx])
		p.store.SetDraft(d)
		return
	}
}

func (p *Plugin) cycleProvider(delta int) {
	d := p.store.Draft()
	ids := settings.ProviderIDs()
	if delta > 0 {
		d.LLMProvider = settings.NextProvider(d.LLMProvider)
	} else {
		idx := 0
		for i, id := range ids {
			if id == d.LLMProvider {
				idx = i
			}
		}
		d.LLMProvider = ids[(idx-1+len(ids))%len(ids)]
	}
	p.store.SetDraft(d)
}

func (p *Plugin) beginEdit() tea.Cmd {
	f := p.field()
	value := p.store.Draft().Get(f.Key)
	p.editing = true
	if f.Key == promptKey {
		p.prompt.SetValue(value)
		return p.prompt.Focus()
	}
	p.line.SetValue(value)
	p.line.CursorEnd()
	p.line.EchoMode = textinput.EchoNormal
	if f.Secret {
		p.line.EchoMode = textinput.EchoPassword
	}
	return p.line.Focus()
}

func (p *Plugin) commitEdit() {
	d := p.store.Draft()
	key := p.field().Key
	if key == promptKey {
		d.Set(key, p.prompt.Value())
	} else {
		d.Set(key, p.line.Value())
	}
	p.store.SetDraft(d)
	p.endEdit()
}

func (p *Plugin) endEdit() {
	p.editing = false
	p.line.Blur()
	p.prompt.Blur()
}

func (p *Plugin) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	multiline := p.field().Key == promptKey
	switch msg.String() {
	case "esc":
		p.endEdit()
		return nil
	case "ctrl+s":
		p.commitEdit()
		return nil
	case "enter":
		if !multiline {
			p.commitEdit()
			return nil
		}
	}

	var cmd tea.Cmd
	if multiline {
		p.prompt, cmd = p.prompt.Update(msg)
	} else {
		p.line, cmd = p.line.Update(msg)
	}
	return cmd
}

func (p *Plugin) IsFocused() bool   { return p.focused }
func (p *Plugin) SetFocused(f bool) { p.focused = f }

// ConsumesTextInput reports whether a field is being edited.
func (p *Plugin) ConsumesTextInput() bool { return p.editing }

func (p *Plugin) FocusContext() string {
	if p.editing {
		return contextEdit
	}
	return contextForm
}

type binding struct {
	key, command, context string
}

var bindings = []binding{
	{"enter", "edit", contextForm},
	{"←/→", "cycle", contextForm},
	{"s", "save", contextForm},
	{"u", "revert", contextForm},
	{"D", "default", contextForm},
	{"enter", "apply", contextEdit},
	{"esc", "cancel", contextEdit},
}

func (p *Plugin) Commands() []plugin.Command {
	return []plugin.Command{
		{ID: "edit", Name: "Edit", Description: "Edit highlighted setting", Category: plugin.CategoryActions, Context: contextForm, Priority: 1},
		{ID: "cycle", Name: "Choose", Description: "Cycle provider or model", Category: plugin.CategoryActions, Context: contextForm, Priority: 2},
		{ID: "save", Name: "Save", Description: "Save settings", Category: plugin.CategoryActions, Context: contextForm, Priority: 3},
		{ID: "revert", Name: "Revert", Description: "Discard unsaved changes", Category: plugin.CategoryActions, Context: contextForm, Priority: 4},
		{ID: "default", Name: "Default", Description: "Restore default value", Category: plugin.CategoryActions, Context: contextForm, Priority: 5},
		{ID: "apply", Name: "Apply", Description: "Apply edit", Category: plugin.CategoryActions, Context: contextEdit, Priority: 1},
		{ID: "cancel", Name: "Cancel", Description: "Discard edit", Category: plugin.CategoryActions, Context: contextEdit, Priority: 2},
	}
}
