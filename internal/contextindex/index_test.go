package contextindex

import (
	"testing"

	"github.com/wilbur182/docchat/internal/catalog"
)

func docs() []catalog.Document {
	return []catalog.Document{
		{ID: "1", Name: "a.pdf", Extension: "pdf", FolderID: "root"},
		{ID: "2", Name: "b.txt", Extension: "txt", FolderID: "F1"},
		{ID: "3", Name: "report.docx", Extension: "docx", FolderID: "F1"},
		{ID: "4", Name: "p_d.md", Extension: "md", FolderID: "root"},
		{ID: "5", Name: "pd_notes.txt", Extension: "txt", FolderID: "root"},
	}
}

func ids(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Doc.ID
	}
	return out
}

func TestSearch_SingleLetter(t *testing.T) {
	idx := Build(docs()[:2])
	got := ids(idx.Search("a"))
	if len(got) != 1 || got[0] != "1" {
		t.Fatalf("Search(a) = %v, want [1]", got)
	}
}

func TestSearch_EmptyQueryYieldsNothing(t *testing.T) {
	if got := Build(docs()).Search("  "); got != nil {
		t.Fatalf("empty query should yield nil, got %v", ids(got))
	}
}

func TestSearch_ScatteredMatchBelowThreshold(t *testing.T) {
	idx := Build(docs())
	for _, r := range idx.Search("rpt") {
		if r.Doc.ID == "3" {
			t.Fatalf("scattered match should fall outside the threshold: %+v", r)
		}
	}
	got := ids(idx.Search("rep"))
	if len(got) != 1 || got[0] != "3" {
		t.Fatalf("Search(rep) = %v, want [3]", got)
	}
}

func TestSearch_TransposedLettersDoNotMatch(t *testing.T) {
	idx := Build(docs())
	if got := idx.Search("reprot"); len(got) != 0 {
		t.Fatalf("Search(reprot) = %v, want no matches", ids(got))
	}
	got := ids(idx.Search("report"))
	if len(got) != 1 || got[0] != "3" {
		t.Fatalf("Search(report) = %v, want [3]", got)
	}
}

func TestSearch_TighterMatchesRankFirst(t *testing.T) {
	got := Build(docs()).Search("pd")
	if len(got) < 2 {
		t.Fatalf("expected several matches, got %v", ids(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Relevance > got[i-1].Relevance {
			t.Fatalf("results not ordered by relevance: %v", got)
		}
	}
	if got[len(got)-1].Doc.ID != "4" {
		t.Fatalf("loosest match p_d.md should rank last, got %v", ids(got))
	}
}

func TestSearch_MatchesExtension(t *testing.T) {
	got := ids(Build(docs()).Search("docx"))
	if len(got) != 1 || got[0] != "3" {
		t.Fatalf("Search(docx) = %v, want [3]", got)
	}
}

func TestSearch_ResultsAreCatalogSubset(t *testing.T) {
	all := docs()
	known := make(map[string]bool)
	for _, d := range all {
		known[d.ID] = true
	}
	for _, q := range []string{"a", "t", "md", "notes", "zzz"} {
		for _, r := range Build(all).Search(q) {
			if !known[r.Doc.ID] {
				t.Fatalf("query %q returned unknown doc %q", q, r.Doc.ID)
			}
			if r.Relevance < 1-DefaultThreshold {
				t.Fatalf("query %q returned %q below threshold", q, r.Doc.ID)
			}
		}
	}
}

func TestBuildWithThreshold_Zero(t *testing.T) {
	idx := BuildWithThreshold(docs(), 0)
	for _, r := range idx.Search("pd") {
		if r.Relevance != 1 {
			t.Fatalf("zero threshold admitted inexact match %+v", r)
		}
	}
}
