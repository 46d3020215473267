package chat

import (
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/wilbur182/docchat/internal/catalog"
	"github.com/wilbur182/docchat/internal/config"
	"github.com/wilbur182/docchat/internal/conversation"
	"github.com/wilbur182/docchat/internal/features"
	"github.com/wilbur182/docchat/internal/markdown"
	"github.com/wilbur182/docchat/internal/notify"
	"github.com/wilbur182/docchat/internal/plugin"
	"github.com/wilbur182/docchat/internal/selector"
	"github.com/wilbur182/docchat/internal/settings"
)

const (
	pluginID   = "chat"
	pluginName = "Chat"
	pluginIcon = "💬"
)

// Focus contexts.
const (
	contextInput  = "chat-input"
	contextList   = "chat-list"
	contextPicker = "chat-picker"
)

// Plugin is the chat tab: conversation list, transcript, input and the
// document selector overlay.
type Plugin struct {
	ctx     *plugin.Context
	focused bool
	width   int
	height  int

	store  *conversation.Store
	sel    *selector.Selector
	input  *Input
	view   MessageViewport
	picker picker
	md     *markdown.Renderer

	listFocused bool
	listCursor  int
	// providerTouched is set once the user picks a provider by hand, after
	// which loaded settings no longer replace it.
	providerTouched bool

	now       func() time.Time
	exportDir string
	writeFile func(path string, data []byte) error
	copyText  func(string) error
}

var _ plugin.Plugin = (*Plugin)(nil)
var _ plugin.TextInputConsumer = (*Plugin)(nil)
var _ plugin.ActivityReporter = (*Plugin)(nil)

// New creates a new Chat plugin.
func New() *Plugin {
	return &Plugin{
		now:       time.Now,
		exportDir: ".",
		writeFile: func(path string, data []byte) error { return os.WriteFile(path, data, 0644) },
		copyText:  clipboard.WriteAll,
	}
}

func (p *Plugin) ID() string   { return pluginID }
func (p *Plugin) Name() string { return pluginName }
func (p *Plugin) Icon() string { return pluginIcon }

// Init wires the stores to the backend in ctx.
func (p *Plugin) Init(ctx *plugin.Context) error {
	p.ctx = ctx
	p.sel = selector.New()
	p.store = conversation.NewStore(ctx.API, p.sel, ctx.Notifier)
	p.applyDefaults(ctx.Config)
	p.input = NewInput()
	p.input.Focus()
	p.listFocused = false
	p.listCursor = 0
	p.picker = newPicker()
	p.view = NewMessageViewport(80, 20)
	p.md = ctx.Markdown
	if p.md == nil {
		p.md = markdown.NewRenderer()
	}

	if ctx.Keymap != nil {
		for _, b := range bindings {
			ctx.Keymap.RegisterPluginBinding(b.key, b.command, b.context)
		}
	}
	return nil
}

func (p *Plugin) applyDefaults(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if !p.providerTouched {
		p.store.SetProvider(cfg.Chat.Provider)
	}
	p.store.SetWebSearch(cfg.Chat.WebSearch || features.IsEnabled(features.WebSearchDefault.Name))
}

// Start loads the conversation list.
func (p *Plugin) Start() tea.Cmd {
	return p.ctx.Stamp(p.store.LoadConversations())
}

// Stop drops transient UI state.
func (p *Plugin) Stop() {
	p.picker.hide()
}

// Update handles tea messages.
func (p *Plugin) Update(msg tea.Msg) (plugin.Plugin, tea.Cmd) {
	cmd := p.update(msg)
	p.syncDraft()
	p.input.SetSubmitting(p.store.Sending())
	return p, p.ctx.Stamp(cmd)
}

func (p *Plugin) update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = m.Width, m.Height
		return nil

	case plugin.PluginFocusedMsg:
		if !p.listFocused && !p.picker.open {
			p.input.Focus()
		}
		return nil

	case catalog.LoadedMsg:
		if m.Err == nil {
			p.sel.SetCatalog(m.Folders, m.Documents)
		}
		return nil

	case settings.LoadedMsg:
		if m.Err == nil && !p.providerTouched {
			p.store.SetProvider(m.Settings.LLMProvider)
		}
		return nil

	case settings.SavedMsg:
		if m.Err == nil {
			p.store.SetProvider(m.Settings.LLMProvider)
			p.providerTouched = false
		}
		return nil

	case config.ReloadedMsg:
		if m.Err == nil && len(p.store.Messages()) == 0 {
			p.applyDefaults(m.Config)
		}
		return nil

	case SendPromptMsg:
		p.view.Follow()
		return p.store.Send(m.Content)

	case ExportedMsg:
		if m.Err != nil {
			return p.ctx.Notifier.Notify("Failed to export conversation: "+m.Err.Error(), notify.Error)
		}
		return p.ctx.Notifier.Notify("Conversation exported successfully", notify.Success)

	case SharedMsg:
		if m.Err != nil {
			return p.ctx.Notifier.Notify("Failed to copy conversation: "+m.Err.Error(), notify.Error)
		}
		return p.ctx.Notifier.Notify("Conversation copied to clipboard", notify.Success)

	case conversation.LoadedMsg:
		cmd := p.store.Update(msg)
		if m.Err == nil && p.store.ActiveID() == m.ID {
			if saved := p.store.Active().SelectedDocuments; len(saved) > 0 {
				p.sel.Clear()
				for _, id := range saved {
					p.sel.Toggle(id)
				}
			}
			p.view.Follow()
			p.focusInput()
		}
		return cmd

	case conversation.ReplyMsg, conversation.ListMsg, conversation.DeletedMsg:
		cmd := p.store.Update(msg)
		p.clampListCursor()
		return cmd

	case tea.KeyMsg:
		return p.handleKey(m)

	case tea.MouseMsg:
		p.view.Update(msg)
		return nil
	}
	return nil
}

// syncDraft keeps the input box and the store's draft in step. The store
// wins when it cleared or replaced the draft.
func (p *Plugin) syncDraft() {
	if p.store.Draft() != p.input.Value() {
		p.input.SetValue(p.store.Draft())
	}
}

func (p *Plugin) handleKey(msg tea.KeyMsg) tea.Cmd {
	if p.picker.open {
		return p.handlePickerKey(msg)
	}

	switch msg.String() {
	case "ctrl+n":
		p.newConversation()
		return nil
	case "ctrl+k":
		p.focusInput()
		return nil
	case "ctrl+d":
		p.input.Blur()
		return p.picker.show()
	case "ctrl+s":
		return p.export()
	case "ctrl+y":
		return p.share()
	case "ctrl+l":
		p.store.ClearChat()
		return nil
	case "ctrl+o":
		p.cycleProvider()
		return nil
	case "ctrl+g":
		p.store.SetWebSearch(!p.store.WebSearch())
		return nil
	case "pgup", "pgdown":
		p.view.Update(msg)
		return nil
	}

	if p.listFocused {
		return p.handleListKey(msg)
	}

	switch msg.String() {
	case "esc":
		p.focusList()
		return nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.store.SetDraft(p.input.Value())
	return cmd
}

func (p *Plugin) handleListKey(msg tea.KeyMsg) tea.Cmd {
	convs := p.store.Conversations()
	switch msg.String() {
	case "up", "k":
		if p.listCursor > 0 {
			p.listCursor--
		}
	case "down", "j":
		if p.listCursor < len(convs)-1 {
			p.listCursor++
		}
	case "g":
		p.listCursor = 0
	case "G":
		p.listCursor = max(0, len(convs)-1)
	case "enter":
		if p.listCursor < len(convs) {
			return p.store.LoadConversation(convs[p.listCursor].ID)
		}
	case "d", "delete":
		if p.listCursor < len(convs) {
			p.store.DeleteConversation(convs[p.listCursor].ID)
		}
	case "n":
		p.newConversation()
	case "r":
		return p.store.LoadConversations()
	case "i", "tab", "esc":
		p.focusInput()
	}
	return nil
}

func (p *Plugin) clampListCursor() {
	n := len(p.store.Conversations())
	if p.listCursor >= n {
		p.listCursor = max(0, n-1)
	}
}

func (p *Plugin) focusInput() {
	p.listFocused = false
	p.input.Focus()
}

func (p *Plugin) focusList() {
	p.listFocused = true
	p.input.Blur()
}

func (p *Plugin) newConversation() {
	p.store.NewConversation()
	p.focusInput()
}

func (p *Plugin) cycleProvider() {
	p.store.SetProvider(settings.NextProvider(p.store.Provider()))
	p.providerTouched = true
}

// export writes the transcript to conversation-YYYY-MM-DD.txt. An empty
// transcript is a no-op.
func (p *Plugin) export() tea.Cmd {
	msgs := p.store.Messages()
	if len(msgs) == 0 {
		return nil
	}
	text := conversation.ExportText(msgs)
	path := filepath.Join(p.exportDir, conversation.ExportFilename(p.now()))
	write := p.writeFile
	return func() tea.Msg {
		return ExportedMsg{Path: path, Err: write(path, []byte(text))}
	}
}

// share copies the transcript to the clipboard. An empty transcript is a
// no-op.
func (p *Plugin) share() tea.Cmd {
	msgs := p.store.Messages()
	if len(msgs) == 0 {
		return nil
	}
	text := conversation.ShareText(msgs)
	copyText := p.copyText
	return func() tea.Msg {
		return SharedMsg{Err: copyText(text)}
	}
}

func (p *Plugin) IsFocused() bool   { return p.focused }
func (p *Plugin) SetFocused(f bool) { p.focused = f }

// Busy reports a request in flight.
func (p *Plugin) Busy() bool { return p.store.Sending() || p.store.Loading() }

// ConsumesTextInput reports whether plain keys belong to a text field.
func (p *Plugin) ConsumesTextInput() bool {
	return p.picker.open || (!p.listFocused && p.input.IsFocused())
}

// FocusContext returns the current focus context.
func (p *Plugin) FocusContext() string {
	switch {
	case p.picker.open:
		return contextPicker
	case p.listFocused:
		return contextList
	default:
		return contextInput
	}
}

type binding struct {
	key, command, context string
}

var bindings = []binding{
	{"enter", "send", contextInput},
	{"esc", "focus-list", contextInput},
	{"ctrl+d", "select-documents", contextInput},
	{"ctrl+n", "new-conversation", contextInput},
	{"ctrl+o", "cycle-provider", contextInput},
	{"ctrl+g", "toggle-web", contextInput},
	{"ctrl+s", "export", contextInput},
	{"ctrl+y", "share", contextInput},
	{"ctrl+l", "clear-chat", contextInput},

	{"enter", "open-conversation", contextList},
	{"d", "delete-conversation", contextList},
	{"n", "new-conversation", contextList},
	{"r", "refresh", contextList},
	{"i", "focus-input", contextList},
	{"ctrl+d", "select-documents", contextList},
	{"ctrl+s", "export", contextList},

	{"enter", "toggle-document", contextPicker},
	{"←/→", "change-folder", contextPicker},
	{"ctrl+x", "clear-selection", contextPicker},
	{"esc", "close", contextPicker},
}

// Commands returns the available plugin commands.
func (p *Plugin) Commands() []plugin.Command {
	return []plugin.Command{
		{ID: "send", Name: "Send", Description: "Send message", Category: plugin.CategoryActions, Context: contextInput, Priority: 1},
		{ID: "select-documents", Name: "Docs", Description: "Choose documents to ask about", Category: plugin.CategoryActions, Context: contextInput, Priority: 2},
		{ID: "new-conversation", Name: "New", Description: "Start a new conversation", Category: plugin.CategoryActions, Context: contextInput, Priority: 3},
		{ID: "cycle-provider", Name: "Provider", Description: "Switch answering provider", Category: plugin.CategoryView, Context: contextInput, Priority: 4},
		{ID: "toggle-web", Name: "Web", Description: "Toggle web search", Category: plugin.CategoryView, Context: contextInput, Priority: 4},
		{ID: "focus-list", Name: "History", Description: "Browse conversations", Category: plugin.CategoryNavigation, Context: contextInput, Priority: 5},
		{ID: "export", Name: "Export", Description: "Save transcript to a file", Category: plugin.CategoryActions, Context: contextInput, Priority: 6},
		{ID: "share", Name: "Copy", Description: "Copy transcript to clipboard", Category: plugin.CategoryActions, Context: contextInput, Priority: 6},
		{ID: "clear-chat", Name: "Clear", Description: "Clear chat history", Category: plugin.CategoryActions, Context: contextInput, Priority: 7},

		{ID: "open-conversation", Name: "Open", Description: "Open conversation", Category: plugin.CategoryNavigation, Context: contextList, Priority: 1},
		{ID: "delete-conversation", Name: "Delete", Description: "Delete conversation", Category: plugin.CategoryActions, Context: contextList, Priority: 2},
		{ID: "new-conversation", Name: "New", Description: "Start a new conversation", Category: plugin.CategoryActions, Context: contextList, Priority: 3},
		{ID: "refresh", Name: "Refresh", Description: "Reload conversations", Category: plugin.CategoryActions, Context: contextList, Priority: 4},
		{ID: "focus-input", Name: "Input", Description: "Back to the message box", Category: plugin.CategoryNavigation, Context: contextList, Priority: 5},
		{ID: "select-documents", Name: "Docs", Description: "Choose documents to ask about", Category: plugin.CategoryActions, Context: contextList, Priority: 6},
		{ID: "export", Name: "Export", Description: "Save transcript to a file", Category: plugin.CategoryActions, Context: contextList, Priority: 7},

		{ID: "toggle-document", Name: "Toggle", Description: "Select or unselect document", Category: plugin.CategoryActions, Context: contextPicker, Priority: 1},
		{ID: "change-folder", Name: "Folder", Description: "Change folder", Category: plugin.CategoryNavigation, Context: contextPicker, Priority: 2},
		{ID: "clear-selection", Name: "Clear", Description: "Unselect all documents", Category: plugin.CategoryActions, Context: contextPicker, Priority: 3},
		{ID: "close", Name: "Close", Description: "Close document selector", Category: plugin.CategoryNavigation, Context: contextPicker, Priority: 4},
	}
}
