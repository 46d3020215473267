package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wilbur182/docchat/internal/api"
)

type fakeSource struct {
	catalog *api.CatalogResponse
	stats   *api.StatsResponse
	err     error
}

func (f fakeSource) Catalog(context.Context) (*api.CatalogResponse, error) { return f.catalog, f.err }
func (f fakeSource) Stats(context.Context) (*api.StatsResponse, error)     { return f.stats, f.err }

func TestLoad_ConvertsAndAddsRoot(t *testing.T) {
	src := fakeSource{catalog: &api.CatalogResponse{
		Folders: []api.FolderInfo{{ID: "F1", Name: "Reports"}},
		Files: []api.FileInfo{
			{ID: "1", Name: "a.pdf", Extension: "pdf", Size: 10},
			{ID: "2", Name: "b.txt", Extension: "txt", FolderID: "F1", CreatedAt: "2024-03-01T10:00:00.123456"},
		},
	}}

	msg := Load(src)().(LoadedMsg)
	if msg.Err != nil {
		t.Fatalf("unexpected error: %v", msg.Err)
	}
	if len(msg.Folders) != 2 || msg.Folders[0].ID != RootFolderID {
		t.Fatalf("root folder not prepended: %+v", msg.Folders)
	}
	if msg.Documents[0].FolderID != RootFolderID {
		t.Fatalf("empty folder id should map to root, got %q", msg.Documents[0].FolderID)
	}
	if msg.Documents[1].CreatedAt.IsZero() {
		t.Fatal("zone-less timestamp should parse")
	}
}

func TestLoad_Error(t *testing.T) {
	msg := Load(fakeSource{err: errors.New("boom")})().(LoadedMsg)
	if msg.Err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadStats(t *testing.T) {
	msg := LoadStats(fakeSource{stats: &api.StatsResponse{TotalFiles: 3, TotalFolders: 2, TotalChunks: 40}})().(StatsMsg)
	if msg.Stats != (Stats{Files: 3, Folders: 2, Chunks: 40}) {
		t.Fatalf("unexpected stats: %+v", msg.Stats)
	}
}

func TestFoldersFromAPI_KeepsExistingRoot(t *testing.T) {
	got := FoldersFromAPI([]api.FolderInfo{{ID: "root", Name: "Root"}, {ID: "F1", Name: "x"}})
	if len(got) != 2 || got[0].Name != "Root" {
		t.Fatalf("unexpected folders: %+v", got)
	}
}

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		0:                "0 B",
		512:              "512 B",
		1536:             "1.5 KB",
		50 * 1024 * 1024: "50 MB",
	}
	for in, want := range tests {
		if got := FormatSize(in); got != want {
			t.Errorf("FormatSize(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.Local)
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "Unknown"},
		{now.Add(-time.Hour), "Today"},
		{now.AddDate(0, 0, -1), "Yesterday"},
		{now.AddDate(0, 0, -4), "4 days ago"},
		{now.AddDate(0, 0, -30), "Apr 10, 2024"},
	}
	for _, tt := range tests {
		if got := FormatAge(tt.t, now); got != tt.want {
			t.Errorf("FormatAge(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}
