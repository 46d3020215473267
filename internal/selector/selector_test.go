package selector

import (
	"reflect"
	"testing"

	"github.com/wilbur182/docchat/internal/catalog"
)

func newSelector() *Selector {
	s := New()
	s.SetCatalog(
		[]catalog.Folder{{ID: "root", Name: "Root Folder"}, {ID: "F1", Name: "Reports"}},
		[]catalog.Document{
			{ID: "1", Name: "a.pdf", Extension: "pdf", FolderID: "root"},
			{ID: "2", Name: "b.txt", Extension: "txt", FolderID: "F1"},
		},
	)
	return s
}

func visibleIDs(s *Selector) []string {
	var out []string
	for _, d := range s.Visible() {
		out = append(out, d.ID)
	}
	return out
}

func TestSetFolder_ScopesVisible(t *testing.T) {
	s := newSelector()
	if got := visibleIDs(s); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("root visible = %v, want full catalog", got)
	}
	s.SetFolder("F1")
	if got := visibleIDs(s); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("F1 visible = %v, want [2]", got)
	}
	s.SetFolder("root")
	if got := visibleIDs(s); len(got) != 2 {
		t.Fatalf("root visible = %v, want full catalog", got)
	}
}

func TestSearch_IgnoresFolderScope(t *testing.T) {
	s := newSelector()
	s.SetFolder("F1")
	s.Search("")
	if got := visibleIDs(s); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("Search(\"\") = %v, want [2]", got)
	}
	s.Search("a")
	if got := visibleIDs(s); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("Search(a) = %v, want [1]", got)
	}
}

func TestSetFolder_ClearsSearchKeepsSelection(t *testing.T) {
	s := newSelector()
	s.Toggle("1")
	s.Search("b")
	s.SetFolder("F1")
	if s.Searching() {
		t.Fatal("SetFolder should clear the query")
	}
	if !s.IsSelected("1") {
		t.Fatal("selection should survive folder changes")
	}
}

func TestToggle_RoundTrip(t *testing.T) {
	s := newSelector()
	s.Toggle("2")
	before := s.SelectedIDs()
	s.Toggle("1")
	s.Toggle("1")
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, before) {
		t.Fatalf("double toggle changed selection: %v, want %v", got, before)
	}
}

func TestToggle_UnknownIDIgnored(t *testing.T) {
	s := newSelector()
	s.Toggle("missing")
	if len(s.SelectedIDs()) != 0 {
		t.Fatal("unknown id should not be selectable")
	}
}

func TestSetCatalog_PrunesSelectionAndReappliesQuery(t *testing.T) {
	s := newSelector()
	s.Toggle("1")
	s.Toggle("2")
	s.Search("c")

	s.SetCatalog(nil, []catalog.Document{
		{ID: "2", Name: "b.txt", Extension: "txt", FolderID: "F1"},
		{ID: "3", Name: "c.md", Extension: "md", FolderID: "root"},
	})
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("selection = %v, want [2]", got)
	}
	if got := visibleIDs(s); !reflect.DeepEqual(got, []string{"3"}) {
		t.Fatalf("active query not re-applied: %v", got)
	}
	if s.FolderID() != "root" {
		t.Fatalf("folder missing from new catalog should reset to root, got %q", s.FolderID())
	}
}

func TestResolve_DropsUnknown(t *testing.T) {
	s := newSelector()
	got := s.Resolve([]string{"2", "gone", "1"})
	if len(got) != 2 || got[0].ID != "2" || got[1].ID != "1" {
		t.Fatalf("Resolve = %+v", got)
	}
}

func TestFolderName(t *testing.T) {
	s := newSelector()
	if got := s.FolderName("F1"); got != "Reports" {
		t.Fatalf("FolderName(F1) = %q", got)
	}
	if got := s.FolderName("zz"); got != "zz" {
		t.Fatalf("FolderName(zz) = %q", got)
	}
}

func TestSearch_BlankQueryRestoresFolderView(t *testing.T) {
	s := newSelector()
	s.SetFolder("F1")
	s.Search("   ")
	if s.Searching() || s.Query() != "" {
		t.Fatalf("blank query should not search, query = %q", s.Query())
	}
	if got := visibleIDs(s); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("visible = %v, want folder view [2]", got)
	}
}
