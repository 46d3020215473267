// Package docbrowser is the Documents tab: the folder browser, semantic
// search, the upload surface and the document preview pane.
package docbrowser

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/wilbur182/docchat/internal/config"
	"github.com/wilbur182/docchat/internal/documents"
	"github.com/wilbur182/docchat/internal/markdown"
	"github.com/wilbur182/docchat/internal/plugin"
	"github.com/wilbur182/docchat/internal/render"
	"github.com/wilbur182/docchat/internal/upload"
)

const (
	pluginID   = "documents"
	pluginName = "Documents"
	pluginIcon = "📁"
)

// Focus contexts.
const (
	contextList    = "documents-list"
	contextPreview = "documents-preview"
	contextInput   = "documents-input"
	contextUpload  = "documents-upload"
)

// inputMode is the single-line prompt currently shown under the list.
type inputMode int

const (
	inputNone inputMode = iota
	inputCreateFolder
	inputSearch
)

// FocusPane is the pane that receives navigation keys.
type FocusPane int

const (
	PaneList FocusPane = iota
	PanePreview
)

// Plugin is the document browser tab.
type Plugin struct {
	ctx     *plugin.Context
	focused bool
	width   int
	height  int

	browser  *documents.Browser
	uploads  *upload.Pipeline
	pages    *render.Pipeline
	md       *markdown.Renderer
	pane     FocusPane
	listTop  int
	resultAt int

	mode  inputMode
	input textinput.Model

	uploadPath   textinput.Model
	uploadCursor int

	preview previewState

	now func() time.Time
}

var _ plugin.Plugin = (*Plugin)(nil)
var _ plugin.TextInputConsumer = (*Plugin)(nil)
var _ plugin.ActivityReporter = (*Plugin)(nil)

// New creates the documents plugin.
func New() *Plugin {
	return &Plugin{now: time.Now}
}

func (p *Plugin) ID() string   { return pluginID }
func (p *Plugin) Name() string { return pluginName }
func (p *Plugin) Icon() string { return pluginIcon }

// Init wires the browser, upload and render pipelines to ctx.
func (p *Plugin) Init(ctx *plugin.Context) error {
	p.ctx = ctx
	p.browser = documents.NewBrowser(ctx.API, ctx.Notifier, ctx.RefreshCatalog)

	concurrency := upload.DefaultConcurrency
	if ctx.Config != nil {
		concurrency = ctx.Config.Upload.Concurrency
	}
	p.uploads = upload.New(upload.Config{
		Sink:        ctx.API,
		Folder:      p.browser.FolderID,
		Refresh:     ctx.RefreshCatalog,
		Notifier:    ctx.Notifier,
		Concurrency: concurrency,
	})
	p.pages = render.New(ctx.Notifier)
	p.md = ctx.Markdown
	if p.md == nil {
		p.md = markdown.NewRenderer()
	}

	p.input = textinput.New()
	p.input.CharLimit = 255
	p.uploadPath = textinput.New()
	p.uploadPath.Placeholder = "Path to a file, ~ and globs allowed"
	p.uploadPath.Prompt = "› "

	p.pane = PaneList
	p.mode = inputNone
	p.preview = previewState{}

	if ctx.Keymap != nil {
		for _, b := range bindings {
			ctx.Keymap.RegisterPluginBinding(b.key, b.command, b.context)
		}
	}
	return nil
}

// Start loads the root folder.
func (p *Plugin) Start() tea.Cmd {
	return p.ctx.Stamp(p.browser.Reload())
}

// Stop abandons any PDF render in progress.
func (p *Plugin) Stop() {
	p.pages.Reset()
}

// Update handles tea messages.
func (p *Plugin) Update(msg tea.Msg) (plugin.Plugin, tea.Cmd) {
	return p, p.ctx.Stamp(p.update(msg))
}

func (p *Plugin) update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = m.Width, m.Height
		return nil

	case tea.KeyMsg:
		return p.handleKey(m)

	case documents.ContentsMsg:
		cmd := p.browser.Update(msg)
		p.clampListTop()
		return cmd

	case documents.ItemDeletedMsg:
		if m.Err == nil && p.preview.key == m.Item.ID {
			p.clearPreview()
		}
		return p.browser.Update(msg)

	case config.ReloadedMsg:
		if m.Err == nil && p.preview.key != "" {
			// Office previews depend on a feature flag that may have flipped.
			return p.reloadPreview()
		}
		return nil
	}

	if cmd, ok := p.updatePreview(msg); ok {
		return cmd
	}

	// Remaining messages belong to the aggregates; each ignores the rest.
	return tea.Batch(
		p.browser.Update(msg),
		p.uploads.Update(msg),
	)
}

func (p *Plugin) clampListTop() {
	if p.listTop > p.browser.Cursor() {
		p.listTop = p.browser.Cursor()
	}
}

func (p *Plugin) IsFocused() bool   { return p.focused }
func (p *Plugin) SetFocused(f bool) { p.focused = f }

// Busy reports loading, uploading or page rendering in progress.
func (p *Plugin) Busy() bool {
	return p.browser.Loading() || p.browser.Searching() || p.uploads.State() == upload.Submitting || p.pages.Running()
}

// ConsumesTextInput reports whether a text field owns plain keys.
func (p *Plugin) ConsumesTextInput() bool {
	return p.mode != inputNone || p.uploads.IsOpen()
}

// FocusContext returns the current focus context.
func (p *Plugin) FocusContext() string {
	switch {
	case p.uploads.IsOpen():
		return contextUpload
	case p.mode != inputNone:
		return contextInput
	case p.pane == PanePreview:
		return contextPreview
	default:
		return contextList
	}
}

type binding struct {
	key, command, context string
}

var bindings = []binding{
	{"enter", "open", contextList},
	{"backspace", "parent", contextList},
	{"/", "search", contextList},
	{"n", "new-folder", contextList},
	{"d", "delete", contextList},
	{"u", "upload", contextList},
	{"r", "refresh", contextList},
	{"tab", "focus-preview", contextList},

	{"j/k", "scroll", contextPreview},
	{"tab", "focus-list", contextPreview},

	{"enter", "confirm", contextInput},
	{"esc", "cancel", contextInput},

	{"enter", "add-file", contextUpload},
	{"ctrl+s", "submit-upload", contextUpload},
	{"ctrl+x", "remove-file", contextUpload},
	{"esc", "close-upload", contextUpload},
}

// Commands returns the available plugin commands.
func (p *Plugin) Commands() []plugin.Command {
	return []plugin.Command{
		{ID: "open", Name: "Open", Description: "Open folder or preview file", Category: plugin.CategoryNavigation, Context: contextList, Priority: 1},
		{ID: "parent", Name: "Up", Description: "Go to parent folder", Category: plugin.CategoryNavigation, Context: contextList, Priority: 2},
		{ID: "search", Name: "Search", Description: "Semantic search in this folder", Category: plugin.CategorySearch, Context: contextList, Priority: 2},
		{ID: "upload", Name: "Upload", Description: "Upload files to this folder", Category: plugin.CategoryActions, Context: contextList, Priority: 3},
		{ID: "new-folder", Name: "New folder", Description: "Create a folder here", Category: plugin.CategoryActions, Context: contextList, Priority: 4},
		{ID: "delete", Name: "Delete", Description: "Delete folder or file", Category: plugin.CategoryActions, Context: contextList, Priority: 5},
		{ID: "refresh", Name: "Refresh", Description: "Reload folder", Category: plugin.CategoryActions, Context: contextList, Priority: 6},
		{ID: "focus-preview", Name: "Preview", Description: "Focus preview pane", Category: plugin.CategoryNavigation, Context: contextList, Priority: 7},

		{ID: "scroll", Name: "Scroll", Description: "Scroll preview", Category: plugin.CategoryNavigation, Context: contextPreview, Priority: 1},
		{ID: "focus-list", Name: "List", Description: "Back to the folder list", Category: plugin.CategoryNavigation, Context: contextPreview, Priority: 2},

		{ID: "confirm", Name: "OK", Description: "Confirm", Category: plugin.CategoryActions, Context: contextInput, Priority: 1},
		{ID: "cancel", Name: "Cancel", Description: "Cancel", Category: plugin.CategoryActions, Context: contextInput, Priority: 2},

		{ID: "add-file", Name: "Add", Description: "Queue the file at this path", Category: plugin.CategoryActions, Context: contextUpload, Priority: 1},
		{ID: "submit-upload", Name: "Upload", Description: "Upload queued files", Category: plugin.CategoryActions, Context: contextUpload, Priority: 2},
		{ID: "remove-file", Name: "Remove", Description: "Remove highlighted file", Category: plugin.CategoryActions, Context: contextUpload, Priority: 3},
		{ID: "close-upload", Name: "Close", Description: "Close upload", Category: plugin.CategoryNavigation, Context: contextUpload, Priority: 4},
	}
}
