package docbrowser

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wilbur182/docchat/internal/api"
	"github.com/wilbur182/docchat/internal/config"
	"github.com/wilbur182/docchat/internal/notify"
	"github.com/wilbur182/docchat/internal/plugin"
	"github.com/wilbur182/docchat/internal/preview"
	"github.com/wilbur182/docchat/internal/upload"
)

type fakeNotifier struct {
	notices []string
	cont    func() tea.Cmd
}

func (f *fakeNotifier) Notify(msg string, _ notify.Severity) tea.Cmd {
	f.notices = append(f.notices, msg)
	return nil
}

func (f *fakeNotifier) Confirm(_, _ string, _ notify.Severity, cont func() tea.Cmd) {
	f.cont = cont
}

func (f *fakeNotifier) has(msg string) bool {
	for _, n := range f.notices {
		if n == msg {
			return true
		}
	}
	return false
}

type fakeServer struct {
	mu       sync.Mutex
	created  []api.CreateFolderRequest
	deleted  []string
	searched []api.SearchRequest
	uploads  []string
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/folder/{id}", func(w http.ResponseWriter, r *http.Request) {
		resp := api.FolderContentsResponse{
			Contents: []api.FolderItem{
				{ID: "f1", Name: "Reports", Type: "folder"},
				{ID: "d1", Name: "notes.txt", Type: "file", Extension: "txt", Size: 2048, ChunkCount: 3},
			},
			Breadcrumb: []api.FolderInfo{{ID: "root", Name: "Root"}},
		}
		if r.PathValue("id") == "f1" {
			resp = api.FolderContentsResponse{
				Contents:   []api.FolderItem{{ID: "d2", Name: "q1.md", Type: "file", Extension: "md"}},
				Breadcrumb: []api.FolderInfo{{ID: "root", Name: "Root"}, {ID: "f1", Name: "Reports"}},
			}
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("POST /api/folder", func(w http.ResponseWriter, r *http.Request) {
		var req api.CreateFolderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.created = append(f.created, req)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(api.MessageResponse{Message: "Folder created"})
	})
	mux.HandleFunc("DELETE /api/file/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deleted = append(f.deleted, r.PathValue("id"))
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(api.MessageResponse{Message: "File deleted successfully"})
	})
	mux.HandleFunc("GET /api/file-content/{id}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.FileContentResponse{Content: "hello from " + r.PathValue("id")})
	})
	mux.HandleFunc("POST /api/search", func(w http.ResponseWriter, r *http.Request) {
		var req api.SearchRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.searched = append(f.searched, req)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(api.SearchResponse{Results: []api.SearchResult{
			{Content: "Revenue grew 12%", Filename: "q1.md", FolderID: "f1", SimilarityScore: 0.82},
		}})
	})
	mux.HandleFunc("POST /api/upload", func(w http.ResponseWriter, r *http.Request) {
		file, hdr, err := r.FormFile("file")
		if err == nil {
			file.Close()
			f.mu.Lock()
			f.uploads = append(f.uploads, hdr.Filename)
			f.mu.Unlock()
		}
		_ = json.NewEncoder(w).Encode(api.UploadResponse{TotalChunks: 4})
	})
	mux.HandleFunc("GET /api/all-documents-and-folders", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.CatalogResponse{})
	})
	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.StatsResponse{TotalFiles: 2, TotalFolders: 1, TotalChunks: 7})
	})
	return mux
}

func newTestPlugin(t *testing.T) (*Plugin, *fakeServer, *fakeNotifier) {
	t.Helper()
	fs := &fakeServer{}
	srv := httptest.NewServer(fs.handler())
	t.Cleanup(srv.Close)

	n := &fakeNotifier{}
	p := New()
	err := p.Init(&plugin.Context{
		Config:   config.Default(),
		API:      api.New(srv.URL, 5*time.Second),
		Notifier: n,
		Logger:   slog.Default(),
		Epoch:    1,
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	p.SetFocused(true)
	drive(p, p.Start())
	return p, fs, n
}

func drive(p *Plugin, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if em, ok := msg.(plugin.EpochMsg); ok {
			msg = em.Msg
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if msg == nil {
			continue
		}
		_, next := p.Update(msg)
		queue = append(queue, next)
	}
}

func press(p *Plugin, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := p.Update(msg)
		drive(p, cmd)
	}
}

func typeText(p *Plugin, s string) {
	for _, r := range s {
		p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func previewLoaded(key string, epoch uint64, text string) preview.LoadedMsg {
	return preview.LoadedMsg{Epoch: epoch, Key: key, Result: preview.Result{Lines: []string{text}}}
}

func TestStart_LoadsRoot(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	items := p.browser.Items()
	if len(items) != 2 || !items[0].IsFolder {
		t.Fatalf("items = %+v", items)
	}
	if p.FocusContext() != contextList || p.ConsumesTextInput() {
		t.Fatal("list should own focus after start")
	}
}

func TestNavigateIntoFolderAndBack(t *testing.T) {
	p, _, _ := newTestPlugin(t)

	press(p, "enter")
	if p.browser.FolderID() != "f1" {
		t.Fatalf("folder = %q", p.browser.FolderID())
	}
	if crumbs := p.browser.Breadcrumb(); len(crumbs) != 2 || crumbs[1].Name != "Reports" {
		t.Fatalf("breadcrumb = %+v", crumbs)
	}

	press(p, "backspace")
	if p.browser.FolderID() != "root" {
		t.Fatalf("folder after up = %q", p.browser.FolderID())
	}
}

func TestCreateFolder(t *testing.T) {
	p, fs, n := newTestPlugin(t)

	press(p, "n")
	if !p.ConsumesTextInput() || p.FocusContext() != contextInput {
		t.Fatal("n should open the folder name prompt")
	}
	typeText(p, "Invoices")
	press(p, "enter")

	fs.mu.Lock()
	created := fs.created
	fs.mu.Unlock()
	if len(created) != 1 || created[0].Name != "Invoices" || created[0].ParentID != "root" {
		t.Fatalf("created = %+v", created)
	}
	if !n.has("Folder created successfully") {
		t.Fatalf("notices = %v", n.notices)
	}
	if p.mode != inputNone {
		t.Fatal("prompt should close after submit")
	}
}

func TestCreateFolder_InvalidNameNeverSent(t *testing.T) {
	p, fs, n := newTestPlugin(t)
	press(p, "n")
	typeText(p, "a/b")
	press(p, "enter")

	if len(fs.created) != 0 {
		t.Fatal("invalid folder name reached the server")
	}
	if !n.has("Folder name cannot contain slashes") {
		t.Fatalf("notices = %v", n.notices)
	}
}

func TestSearchAndJumpToFolder(t *testing.T) {
	p, fs, _ := newTestPlugin(t)

	press(p, "/")
	typeText(p, "revenue")
	press(p, "enter")

	if !p.browser.ShowingResults() || len(p.browser.SearchResults()) != 1 {
		t.Fatal("search results not shown")
	}
	if fs.searched[0].Query != "revenue" || fs.searched[0].FolderID != "root" {
		t.Fatalf("search = %+v", fs.searched[0])
	}
	out := p.View(120, 30)
	if !strings.Contains(out, "Revenue grew 12%") {
		t.Error("result snippet not rendered")
	}

	press(p, "enter")
	if p.browser.FolderID() != "f1" || p.browser.ShowingResults() {
		t.Fatalf("enter should jump to the result's folder, at %q", p.browser.FolderID())
	}
}

func TestPreviewTextFile(t *testing.T) {
	p, _, _ := newTestPlugin(t)

	press(p, "j", "enter")
	if p.preview.key != "d1" || p.preview.loading {
		t.Fatalf("preview = %+v", p.preview)
	}
	if got := strings.Join(p.previewContent(), "\n"); !strings.Contains(got, "hello from d1") {
		t.Fatalf("preview content = %q", got)
	}
	if sel, ok := p.browser.Selected(); !ok || sel.ID != "d1" {
		t.Fatal("previewed file should be selected")
	}

	press(p, "tab")
	if p.FocusContext() != contextPreview {
		t.Fatal("tab should focus the preview")
	}
	press(p, "esc")
	if p.FocusContext() != contextList {
		t.Fatal("esc should return to the list")
	}
}

func TestStalePreviewIgnored(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	p.preview.key = "d2"
	p.preview.epoch = 5
	p.Update(previewLoaded("d1", 4, "old"))
	if len(p.preview.lines) != 0 {
		t.Fatal("stale preview applied")
	}
}

func TestDeleteAsksThenDeletes(t *testing.T) {
	p, fs, n := newTestPlugin(t)
	press(p, "j", "d")
	if n.cont == nil {
		t.Fatal("delete should ask for confirmation")
	}
	if len(fs.deleted) != 0 {
		t.Fatal("deleted before confirmation")
	}
	drive(p, n.cont())

	if len(fs.deleted) != 1 || fs.deleted[0] != "d1" {
		t.Fatalf("deleted = %v", fs.deleted)
	}
	if !n.has("File deleted successfully") {
		t.Fatalf("notices = %v", n.notices)
	}
}

func TestUploadQueueAndSubmit(t *testing.T) {
	p, fs, n := newTestPlugin(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.txt")
	if err := os.WriteFile(path, []byte("quarterly summary"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "image.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	press(p, "u")
	if p.FocusContext() != contextUpload || !p.ConsumesTextInput() {
		t.Fatal("u should open the upload surface")
	}

	typeText(p, filepath.Join(dir, "image.png"))
	press(p, "enter")
	if len(p.uploads.Tasks()) != 0 {
		t.Fatal("disallowed type was queued")
	}

	typeText(p, path)
	press(p, "enter")
	if len(p.uploads.Tasks()) != 1 {
		t.Fatalf("tasks = %d", len(p.uploads.Tasks()))
	}
	if !p.preview.local || !strings.Contains(strings.Join(p.previewContent(), "\n"), "quarterly summary") {
		t.Fatalf("queued file not previewed: %+v", p.preview)
	}

	press(p, "enter")
	if len(fs.uploads) != 1 || fs.uploads[0] != "summary.txt" {
		t.Fatalf("uploads = %v", fs.uploads)
	}
	if !n.has("Successfully uploaded 1 files! Created 4 chunks") {
		t.Fatalf("notices = %v", n.notices)
	}
	if p.uploads.IsOpen() {
		t.Fatal("upload surface should close after a successful batch")
	}
	if p.browser.Stats().Chunks != 7 {
		t.Fatal("stats should refresh after upload")
	}
}

func TestUploadCloseDiscardsQueue(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	path := filepath.Join(t.TempDir(), "a.md")
	if err := os.WriteFile(path, []byte("# A"), 0644); err != nil {
		t.Fatal(err)
	}
	press(p, "u")
	typeText(p, path)
	press(p, "enter", "esc")
	if p.uploads.IsOpen() || len(p.uploads.Tasks()) != 0 || p.uploads.State() != upload.Idle {
		t.Fatal("closing before submit should discard the batch")
	}
	if p.preview.key != "" {
		t.Fatal("local preview should be cleared on close")
	}
}

func TestView(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	drive(p, p.ctx.RefreshCatalog())

	out := p.View(120, 30)
	for _, want := range []string{"Root", "2 files · 1 folders · 7 chunks", "Reports", "notes.txt", "Select a file to preview"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	narrow := p.View(60, 20)
	if strings.Contains(narrow, "Select a file to preview") {
		t.Error("narrow view should show one pane")
	}
}
