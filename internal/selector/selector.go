// Package selector owns the folder scope and document multi-select used to
// ground a chat turn.
package selector

import (
	"strings"

	"github.com/wilbur182/docchat/internal/catalog"
	"github.com/wilbur182/docchat/internal/contextindex"
)

// Selector is the context selection aggregate. All methods are called from
// the Update loop.
type Selector struct {
	docs    []catalog.Document
	byID    map[string]catalog.Document
	folders []catalog.Folder
	index   *contextindex.Index

	folder   string
	query    string
	visible  []catalog.Document
	selected []string // display order
}

// New returns a selector scoped to root with an empty catalog.
func New() *Selector {
	s := &Selector{
		folder:  catalog.RootFolderID,
		byID:    map[string]catalog.Document{},
		folders: catalog.FoldersFromAPI(nil),
	}
	s.index = contextindex.Build(nil)
	return s
}

// SetCatalog replaces the catalog snapshot. The index is rebuilt, selected
// ids no longer present are pruned, and an active search is re-applied.
func (s *Selector) SetCatalog(folders []catalog.Folder, docs []catalog.Document) {
	s.docs = append([]catalog.Document(nil), docs...)
	s.byID = make(map[string]catalog.Document, len(docs))
	for _, d := range docs {
		s.byID[d.ID] = d
	}
	if len(folders) == 0 {
		folders = catalog.FoldersFromAPI(nil)
	}
	s.folders = append([]catalog.Folder(nil), folders...)
	s.index = contextindex.Build(s.docs)

	kept := s.selected[:0]
	for _, id := range s.selected {
		if _, ok := s.byID[id]; ok {
			kept = append(kept, id)
		}
	}
	s.selected = kept

	if !s.hasFolder(s.folder) {
		s.folder = catalog.RootFolderID
	}
	s.refresh()
}

func (s *Selector) hasFolder(id string) bool {
	if id == catalog.RootFolderID {
		return true
	}
	for _, f := range s.folders {
		if f.ID == id {
			return true
		}
	}
	return false
}

// SetFolder scopes the visible list to id and clears any search. The
// selection is left untouched.
func (s *Selector) SetFolder(id string) {
	if id == "" {
		id = catalog.RootFolderID
	}
	s.folder = id
	s.query = ""
	s.refresh()
}

// Search filters the visible list. A non-empty query spans the whole
// catalog regardless of folder; an empty or blank one restores the folder
// view.
func (s *Selector) Search(query string) {
	s.query = strings.TrimSpace(query)
	s.refresh()
}

func (s *Selector) refresh() {
	if s.query != "" {
		s.visible = s.index.Documents(s.query)
		return
	}
	s.visible = s.folderDocs()
}

func (s *Selector) folderDocs() []catalog.Document {
	if s.folder == catalog.RootFolderID {
		return append([]catalog.Document(nil), s.docs...)
	}
	var out []catalog.Document
	for _, d := range s.docs {
		if d.FolderID == s.folder {
			out = append(out, d)
		}
	}
	return out
}

// Toggle adds id to the selection, or removes it when already present.
// Unknown ids are ignored.
func (s *Selector) Toggle(id string) {
	if s.IsSelected(id) {
		s.Remove(id)
		return
	}
	if _, ok := s.byID[id]; !ok {
		return
	}
	s.selected = append(s.selected, id)
}

// Remove drops id from the selection.
func (s *Selector) Remove(id string) {
	for i, sel := range s.selected {
		if sel == id {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return
		}
	}
}

// Clear empties the selection.
func (s *Selector) Clear() { s.selected = nil }

// IsSelected reports whether id is in the selection.
func (s *Selector) IsSelected(id string) bool {
	for _, sel := range s.selected {
		if sel == id {
			return true
		}
	}
	return false
}

// SelectedIDs returns a copy of the selection in display order.
func (s *Selector) SelectedIDs() []string {
	return append([]string(nil), s.selected...)
}

// SelectedDocuments resolves the selection against the catalog.
func (s *Selector) SelectedDocuments() []catalog.Document {
	out := make([]catalog.Document, 0, len(s.selected))
	for _, id := range s.selected {
		out = append(out, s.byID[id])
	}
	return out
}

// Resolve returns catalog entries for ids, dropping unknown ones.
func (s *Selector) Resolve(ids []string) []catalog.Document {
	var out []catalog.Document
	for _, id := range ids {
		if d, ok := s.byID[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Document looks up a catalog entry.
func (s *Selector) Document(id string) (catalog.Document, bool) {
	d, ok := s.byID[id]
	return d, ok
}

func (s *Selector) FolderID() string              { return s.folder }
func (s *Selector) Query() string                 { return s.query }
func (s *Selector) Searching() bool               { return s.query != "" }
func (s *Selector) Visible() []catalog.Document   { return s.visible }
func (s *Selector) Folders() []catalog.Folder     { return s.folders }
func (s *Selector) Documents() []catalog.Document { return s.docs }

// FolderName returns the display name of id, falling back to the id.
func (s *Selector) FolderName(id string) string {
	for _, f := range s.folders {
		if f.ID == id {
			return f.Name
		}
	}
	if id == catalog.RootFolderID {
		return catalog.RootFolderName
	}
	return id
}
