// Package catalog holds the client-side snapshot of the document catalog:
// folders, document summaries and knowledge-base statistics.
package catalog

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wilbur182/docchat/internal/api"
)

// RootFolderID denotes "no folder scoping" and always exists.
const RootFolderID = api.RootFolderID

// RootFolderName is the display name used when the backend omits root.
const RootFolderName = "Root Folder"

// Document is an immutable summary of one catalog document.
type Document struct {
	ID         string
	Name       string
	Extension  string
	FolderID   string
	Size       int64
	ChunkCount int
	CreatedAt  time.Time
}

// Folder is a catalog folder.
type Folder struct {
	ID       string
	Name     string
	ParentID string
}

// Stats are the knowledge-base totals shown in headers.
type Stats struct {
	Files   int
	Folders int
	Chunks  int
}

// Source loads catalog data from the backend.
type Source interface {
	Catalog(ctx context.Context) (*api.CatalogResponse, error)
	Stats(ctx context.Context) (*api.StatsResponse, error)
}

// LoadedMsg carries a freshly fetched catalog.
type LoadedMsg struct {
	Folders   []Folder
	Documents []Document
	Err       error
}

// StatsMsg carries freshly fetched statistics.
type StatsMsg struct {
	Stats Stats
	Err   error
}

// Load fetches folders and documents.
func Load(src Source) tea.Cmd {
	return func() tea.Msg {
		resp, err := src.Catalog(context.Background())
		if err != nil {
			return LoadedMsg{Err: err}
		}
		return LoadedMsg{
			Folders:   FoldersFromAPI(resp.Folders),
			Documents: DocumentsFromAPI(resp.Files),
		}
	}
}

// LoadStats fetches knowledge-base statistics.
func LoadStats(src Source) tea.Cmd {
	return func() tea.Msg {
		resp, err := src.Stats(context.Background())
		if err != nil {
			return StatsMsg{Err: err}
		}
		return StatsMsg{Stats: Stats{
			Files:   resp.TotalFiles,
			Folders: resp.TotalFolders,
			Chunks:  resp.TotalChunks,
		}}
	}
}

// Refresh reloads both the catalog and the statistics.
func Refresh(src Source) tea.Cmd {
	return tea.Batch(Load(src), LoadStats(src))
}

// FoldersFromAPI converts wire folders, prepending root when it is missing.
func FoldersFromAPI(in []api.FolderInfo) []Folder {
	out := make([]Folder, 0, len(in)+1)
	hasRoot := false
	for _, f := range in {
		if f.ID == RootFolderID {
			hasRoot = true
		}
		out = append(out, Folder{ID: f.ID, Name: f.Name, ParentID: f.ParentID})
	}
	if !hasRoot {
		out = append([]Folder{{ID: RootFolderID, Name: RootFolderName}}, out...)
	}
	return out
}

// DocumentsFromAPI converts wire file summaries.
func DocumentsFromAPI(in []api.FileInfo) []Document {
	out := make([]Document, 0, len(in))
	for _, f := range in {
		folder := f.FolderID
		if folder == "" {
			folder = RootFolderID
		}
		out = append(out, Document{
			ID:         f.ID,
			Name:       f.Name,
			Extension:  f.Extension,
			FolderID:   folder,
			Size:       f.Size,
			ChunkCount: f.ChunkCount,
			CreatedAt:  ParseTime(f.CreatedAt),
		})
	}
	return out
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTime parses backend timestamps, which may lack a zone. Unparseable
// values yield the zero time.
func ParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
