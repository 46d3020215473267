package documents

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wilbur182/docchat/internal/api"
	"github.com/wilbur182/docchat/internal/catalog"
	"github.com/wilbur182/docchat/internal/notify"
)

type fakeBackend struct {
	contents  map[string]*api.FolderContentsResponse
	created   []api.CreateFolderRequest
	createErr error
	deleted   []string
	searchReq *api.SearchRequest
	results   []api.SearchResult
}

func (f *fakeBackend) FolderContents(_ context.Context, id string) (*api.FolderContentsResponse, error) {
	if c, ok := f.contents[id]; ok {
		return c, nil
	}
	return nil, &api.Error{Op: "folder contents", Status: 404, Message: "Folder not found"}
}

func (f *fakeBackend) CreateFolder(_ context.Context, req api.CreateFolderRequest) error {
	f.created = append(f.created, req)
	return f.createErr
}

func (f *fakeBackend) DeleteFolder(_ context.Context, id string) (string, error) {
	f.deleted = append(f.deleted, "folder:"+id)
	return "Folder deleted successfully", nil
}

func (f *fakeBackend) DeleteFile(_ context.Context, id string) (string, error) {
	f.deleted = append(f.deleted, "file:"+id)
	return "File deleted successfully", nil
}

func (f *fakeBackend) Search(_ context.Context, req api.SearchRequest) (*api.SearchResponse, error) {
	f.searchReq = &req
	return &api.SearchResponse{Results: f.results}, nil
}

type fakeNotifier struct {
	notices []string
	body    string
	cont    func() tea.Cmd
}

func (f *fakeNotifier) Notify(msg string, _ notify.Severity) tea.Cmd {
	f.notices = append(f.notices, msg)
	return nil
}

func (f *fakeNotifier) Confirm(_, body string, _ notify.Severity, cont func() tea.Cmd) {
	f.body = body
	f.cont = cont
}

func newBrowser() (*Browser, *fakeBackend, *fakeNotifier, *int) {
	fb := &fakeBackend{contents: map[string]*api.FolderContentsResponse{
		"root": {
			Contents: []api.FolderItem{
				{ID: "F1", Name: "Reports", Type: "folder"},
				{ID: "1", Name: "a.pdf", Type: "file", Extension: "pdf", Size: 2048},
			},
			Breadcrumb: []api.FolderInfo{{ID: "root", Name: "Root"}},
		},
		"F1": {
			Contents:   []api.FolderItem{{ID: "2", Name: "b.txt", Type: "file", Extension: "txt"}},
			Breadcrumb: []api.FolderInfo{{ID: "root", Name: "Root"}, {ID: "F1", Name: "Reports"}},
		},
	}}
	n := &fakeNotifier{}
	refreshes := 0
	b := NewBrowser(fb, n, func() tea.Cmd { refreshes++; return nil })
	return b, fb, n, &refreshes
}

// apply runs cmd (unwrapping batches) and feeds each result to the browser.
func apply(b *Browser, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			apply(b, c)
		}
		return
	}
	apply(b, b.Update(msg))
}

func TestNavigate(t *testing.T) {
	b, _, _, _ := newBrowser()
	apply(b, b.Reload())
	if len(b.Items()) != 2 || !b.Items()[0].IsFolder {
		t.Fatalf("root items = %+v", b.Items())
	}
	apply(b, b.Navigate("F1"))
	if b.FolderID() != "F1" || len(b.Items()) != 1 || len(b.Breadcrumb()) != 2 {
		t.Fatalf("folder=%q items=%+v crumbs=%+v", b.FolderID(), b.Items(), b.Breadcrumb())
	}
	apply(b, b.Up())
	if b.FolderID() != "root" {
		t.Fatalf("Up() went to %q", b.FolderID())
	}
	if b.Loading() {
		t.Fatal("loading flag not cleared")
	}
}

func TestReload_StaleResponseIgnored(t *testing.T) {
	b, _, _, _ := newBrowser()
	stale := b.Reload()
	fresh := b.Navigate("F1")
	apply(b, fresh)
	apply(b, stale)
	if b.FolderID() != "F1" || b.Items()[0].ID != "2" {
		t.Fatalf("stale listing applied: %+v", b.Items())
	}
}

func TestReload_Error(t *testing.T) {
	b, _, n, _ := newBrowser()
	apply(b, b.Navigate("missing"))
	if len(n.notices) != 1 || !strings.Contains(n.notices[0], "Folder not found") {
		t.Fatalf("notices = %v", n.notices)
	}
	if b.Loading() {
		t.Fatal("loading flag not cleared after error")
	}
}

func TestValidateFolderName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "Please enter a folder name"},
		{"   ", "Please enter a folder name"},
		{"a/b", "Folder name cannot contain slashes"},
		{strings.Repeat("x", 256), "Folder name must be at most 255 characters"},
		{"Reports 2024", ""},
	}
	for _, tt := range tests {
		err := ValidateFolderName(tt.name)
		got := ""
		if err != nil {
			got = err.Error()
		}
		if got != tt.want {
			t.Errorf("ValidateFolderName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCreateFolder(t *testing.T) {
	b, fb, n, refreshes := newBrowser()
	if cmd := b.CreateFolder("  "); cmd != nil {
		cmd()
	}
	if len(fb.created) != 0 || n.notices[0] != "Please enter a folder name" {
		t.Fatalf("blank name reached the backend: %+v", fb.created)
	}

	apply(b, b.Navigate("F1"))
	apply(b, b.CreateFolder(" Q1 "))
	if len(fb.created) != 1 || fb.created[0] != (api.CreateFolderRequest{Name: "Q1", ParentID: "F1"}) {
		t.Fatalf("created = %+v", fb.created)
	}
	if *refreshes != 1 || n.notices[len(n.notices)-1] != "Folder created successfully" {
		t.Fatalf("refreshes=%d notices=%v", *refreshes, n.notices)
	}
}

func TestCreateFolder_ServerError(t *testing.T) {
	b, fb, n, refreshes := newBrowser()
	fb.createErr = &api.Error{Op: "create folder", Status: 400, Message: "Folder already exists"}
	apply(b, b.CreateFolder("Reports"))
	if *refreshes != 0 || n.notices[0] != "Folder already exists" {
		t.Fatalf("refreshes=%d notices=%v", *refreshes, n.notices)
	}
}

func TestDeleteItem_ConfirmGate(t *testing.T) {
	b, fb, n, refreshes := newBrowser()
	apply(b, b.Reload())
	it := b.Items()[1]
	b.Select(it.ID)

	b.DeleteItem(it)
	if len(fb.deleted) != 0 {
		t.Fatal("deleted before confirmation")
	}
	if n.body != `Are you sure you want to delete "a.pdf"? This action cannot be undone.` {
		t.Fatalf("body = %q", n.body)
	}
	apply(b, n.cont())
	if len(fb.deleted) != 1 || fb.deleted[0] != "file:1" {
		t.Fatalf("deleted = %v", fb.deleted)
	}
	if _, ok := b.Selected(); ok {
		t.Fatal("selection should be cleared")
	}
	if *refreshes != 1 || n.notices[len(n.notices)-1] != "File deleted successfully" {
		t.Fatalf("refreshes=%d notices=%v", *refreshes, n.notices)
	}

	b.DeleteItem(b.Items()[0])
	apply(b, n.cont())
	if fb.deleted[1] != "folder:F1" {
		t.Fatalf("folder delete used %q", fb.deleted[1])
	}
}

func TestSearch(t *testing.T) {
	b, fb, _, _ := newBrowser()
	fb.results = []api.SearchResult{{Filename: "a.pdf", Content: "chunk", SimilarityScore: 0.9}}
	apply(b, b.Navigate("F1"))
	apply(b, b.Search("revenue"))
	if fb.searchReq.Query != "revenue" || fb.searchReq.FolderID != "F1" || fb.searchReq.NResults != 10 {
		t.Fatalf("request = %+v", fb.searchReq)
	}
	if !b.ShowingResults() || len(b.SearchResults()) != 1 {
		t.Fatal("results not stored")
	}
	if b.Search("  ") != nil || b.ShowingResults() {
		t.Fatal("blank query should clear results")
	}
}

func TestStatsMsg(t *testing.T) {
	b, _, n, _ := newBrowser()
	b.Update(catalog.StatsMsg{Stats: catalog.Stats{Files: 2}})
	if b.Stats().Files != 2 {
		t.Fatal("stats not stored")
	}
	b.Update(catalog.StatsMsg{Err: errors.New("down")})
	if n.notices[0] != "Failed to load statistics" {
		t.Fatalf("notices = %v", n.notices)
	}
}

func TestMoveCursor(t *testing.T) {
	b, _, _, _ := newBrowser()
	apply(b, b.Reload())
	b.MoveCursor(5)
	if b.Cursor() != 1 {
		t.Fatalf("cursor = %d", b.Cursor())
	}
	b.MoveCursor(-5)
	if b.Cursor() != 0 {
		t.Fatalf("cursor = %d", b.Cursor())
	}
}
