// Package documents is the folder browser over the knowledge base: folder
// listings, breadcrumb navigation, folder creation, deletion and semantic
// search.
package documents

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/wilbur182/docchat/internal/api"
	"github.com/wilbur182/docchat/internal/catalog"
	"github.com/wilbur182/docchat/internal/notify"
)

// Item is a folder or file in the current listing.
type Item struct {
	ID         string
	Name       string
	IsFolder   bool
	Extension  string
	Size       int64
	ChunkCount int
	CreatedAt  time.Time
}

// Backend is the subset of the API the browser uses.
type Backend interface {
	FolderContents(ctx context.Context, id string) (*api.FolderContentsResponse, error)
	CreateFolder(ctx context.Context, req api.CreateFolderRequest) error
	DeleteFolder(ctx context.Context, id string) (string, error)
	DeleteFile(ctx context.Context, id string) (string, error)
	Search(ctx context.Context, req api.SearchRequest) (*api.SearchResponse, error)
}

// ContentsMsg carries a folder listing.
type ContentsMsg struct {
	Seq    uint64
	Folder string
	Resp   *api.FolderContentsResponse
	Err    error
}

// FolderCreatedMsg reports a folder creation.
type FolderCreatedMsg struct {
	Name string
	Err  error
}

// ItemDeletedMsg reports a deletion with the server's confirmation text.
type ItemDeletedMsg struct {
	Item    Item
	Message string
	Err     error
}

// SearchMsg carries semantic search results.
type SearchMsg struct {
	Seq     uint64
	Query   string
	Results []api.SearchResult
	Err     error
}

var folderNamePattern = regexp.MustCompile(`^[^/\\]+$`)

// ValidateFolderName checks a folder name before any request is made.
func ValidateFolderName(name string) error {
	return validation.Validate(strings.TrimSpace(name),
		validation.Required.Error("Please enter a folder name"),
		validation.RuneLength(1, 255).Error("Folder name must be at most 255 characters"),
		validation.Match(folderNamePattern).Error("Folder name cannot contain slashes"),
	)
}

// Browser is the document browser aggregate.
type Browser struct {
	backend  Backend
	notifier notify.Notifier
	refresh  func() tea.Cmd

	folder     string
	items      []Item
	breadcrumb []catalog.Folder
	cursor     int
	selected   string
	loading    bool
	seq        uint64

	query     string
	results   []api.SearchResult
	searchSeq uint64
	searching bool

	stats catalog.Stats
}

// NewBrowser creates a browser at root. refresh reloads the shared catalog
// and stats after a mutation.
func NewBrowser(b Backend, n notify.Notifier, refresh func() tea.Cmd) *Browser {
	return &Browser{
		backend:    b,
		notifier:   n,
		refresh:    refresh,
		folder:     catalog.RootFolderID,
		breadcrumb: []catalog.Folder{{ID: catalog.RootFolderID, Name: "Root"}},
	}
}

func (b *Browser) FolderID() string                  { return b.folder }
func (b *Browser) Items() []Item                     { return b.items }
func (b *Browser) Breadcrumb() []catalog.Folder      { return b.breadcrumb }
func (b *Browser) Cursor() int                       { return b.cursor }
func (b *Browser) Loading() bool                     { return b.loading }
func (b *Browser) Stats() catalog.Stats              { return b.stats }
func (b *Browser) SetStats(s catalog.Stats)          { b.stats = s }
func (b *Browser) SearchQuery() string               { return b.query }
func (b *Browser) SearchResults() []api.SearchResult { return b.results }
func (b *Browser) ShowingResults() bool              { return b.query != "" }
func (b *Browser) Searching() bool                   { return b.searching }

// Current returns the item under the cursor.
func (b *Browser) Current() (Item, bool) {
	if b.cursor < 0 || b.cursor >= len(b.items) {
		return Item{}, false
	}
	return b.items[b.cursor], true
}

// Selected returns the item chosen for preview.
func (b *Browser) Selected() (Item, bool) {
	for _, it := range b.items {
		if it.ID == b.selected {
			return it, true
		}
	}
	return Item{}, false
}

// Select marks id as the previewed item.
func (b *Browser) Select(id string) { b.selected = id }

// MoveCursor moves the cursor by delta, clamped to the listing.
func (b *Browser) MoveCursor(delta int) {
	b.cursor += delta
	b.clampCursor()
}

func (b *Browser) clampCursor() {
	if b.cursor >= len(b.items) {
		b.cursor = len(b.items) - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
}

// Navigate opens folder id.
func (b *Browser) Navigate(id string) tea.Cmd {
	if id == "" {
		id = catalog.RootFolderID
	}
	b.folder = id
	b.selected = ""
	b.cursor = 0
	b.ClearSearch()
	return b.Reload()
}

// Up navigates to the parent folder from the breadcrumb.
func (b *Browser) Up() tea.Cmd {
	if len(b.breadcrumb) < 2 {
		return nil
	}
	return b.Navigate(b.breadcrumb[len(b.breadcrumb)-2].ID)
}

// Reload fetches the current folder's listing. Only the latest response is
// applied.
func (b *Browser) Reload() tea.Cmd {
	b.loading = true
	b.seq++
	seq, folder, backend := b.seq, b.folder, b.backend
	return func() tea.Msg {
		resp, err := backend.FolderContents(context.Background(), folder)
		return ContentsMsg{Seq: seq, Folder: folder, Resp: resp, Err: err}
	}
}

func (b *Browser) handleContents(msg ContentsMsg) tea.Cmd {
	if msg.Seq != b.seq {
		return nil
	}
	defer func() { b.loading = false }()
	if msg.Err != nil {
		return b.notifier.Notify("Failed to load files: "+api.Message(msg.Err), notify.Error)
	}

	b.items = itemsFromAPI(msg.Resp.Contents)
	b.breadcrumb = b.breadcrumb[:0]
	for _, f := range msg.Resp.Breadcrumb {
		b.breadcrumb = append(b.breadcrumb, catalog.Folder{ID: f.ID, Name: f.Name})
	}
	if len(b.breadcrumb) == 0 {
		b.breadcrumb = []catalog.Folder{{ID: catalog.RootFolderID, Name: "Root"}}
	}
	if _, ok := b.Selected(); !ok {
		b.selected = ""
	}
	b.clampCursor()
	return nil
}

func itemsFromAPI(in []api.FolderItem) []Item {
	out := make([]Item, 0, len(in))
	for _, it := range in {
		out = append(out, Item{
			ID:         it.ID,
			Name:       it.Name,
			IsFolder:   it.Type == "folder",
			Extension:  it.Extension,
			Size:       it.Size,
			ChunkCount: it.ChunkCount,
			CreatedAt:  catalog.ParseTime(it.CreatedAt),
		})
	}
	return out
}

// CreateFolder validates name and creates it under the current folder.
func (b *Browser) CreateFolder(name string) tea.Cmd {
	if err := ValidateFolderName(name); err != nil {
		return b.notifier.Notify(err.Error(), notify.Error)
	}
	req := api.CreateFolderRequest{Name: strings.TrimSpace(name), ParentID: b.folder}
	backend := b.backend
	return func() tea.Msg {
		return FolderCreatedMsg{Name: req.Name, Err: backend.CreateFolder(context.Background(), req)}
	}
}

// DeleteItem asks for confirmation, then deletes it.
func (b *Browser) DeleteItem(it Item) {
	backend := b.backend
	b.notifier.Confirm(
		"Confirm Deletion",
		fmt.Sprintf("Are you sure you want to delete \"%s\"? This action cannot be undone.", it.Name),
		notify.Warning,
		func() tea.Cmd {
			return func() tea.Msg {
				var (
					msg string
					err error
				)
				if it.IsFolder {
					msg, err = backend.DeleteFolder(context.Background(), it.ID)
				} else {
					msg, err = backend.DeleteFile(context.Background(), it.ID)
				}
				return ItemDeletedMsg{Item: it, Message: msg, Err: err}
			}
		},
	)
}

// Search runs a semantic search scoped to the current folder. An empty
// query clears the results.
func (b *Browser) Search(query string) tea.Cmd {
	query = strings.TrimSpace(query)
	if query == "" {
		b.ClearSearch()
		return nil
	}
	b.searching = true
	b.searchSeq++
	seq, backend := b.searchSeq, b.backend
	req := api.SearchRequest{Query: query, FolderID: b.folder, NResults: 10}
	return func() tea.Msg {
		resp, err := backend.Search(context.Background(), req)
		if err != nil {
			return SearchMsg{Seq: seq, Query: query, Err: err}
		}
		return SearchMsg{Seq: seq, Query: query, Results: resp.Results}
	}
}

// ClearSearch drops any search results.
func (b *Browser) ClearSearch() {
	b.searchSeq++
	b.searching = false
	b.query = ""
	b.results = nil
}

func (b *Browser) mutated() []tea.Cmd {
	cmds := []tea.Cmd{b.Reload()}
	if b.refresh != nil {
		cmds = append(cmds, b.refresh())
	}
	return cmds
}

// Update applies browser messages.
func (b *Browser) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ContentsMsg:
		return b.handleContents(msg)

	case FolderCreatedMsg:
		if msg.Err != nil {
			return b.notifier.Notify(api.Message(msg.Err), notify.Error)
		}
		cmds := b.mutated()
		cmds = append(cmds, b.notifier.Notify("Folder created successfully", notify.Success))
		return tea.Batch(cmds...)

	case ItemDeletedMsg:
		if msg.Err != nil {
			return b.notifier.Notify(api.Message(msg.Err), notify.Error)
		}
		if b.selected == msg.Item.ID {
			b.selected = ""
		}
		text := msg.Message
		if text == "" {
			text = "Deleted " + msg.Item.Name
		}
		cmds := b.mutated()
		cmds = append(cmds, b.notifier.Notify(text, notify.Success))
		return tea.Batch(cmds...)

	case SearchMsg:
		if msg.Seq != b.searchSeq {
			return nil
		}
		b.searching = false
		if msg.Err != nil {
			return b.notifier.Notify(api.Message(msg.Err), notify.Error)
		}
		b.query = msg.Query
		b.results = msg.Results
		return nil

	case catalog.StatsMsg:
		if msg.Err != nil {
			return b.notifier.Notify("Failed to load statistics", notify.Error)
		}
		b.stats = msg.Stats
	}
	return nil
}
