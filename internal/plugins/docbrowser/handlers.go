package docbrowser

import (
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wilbur182/docchat/internal/config"
	"github.com/wilbur182/docchat/internal/notify"
	"github.com/wilbur182/docchat/internal/upload"
)

func (p *Plugin) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case p.uploads.IsOpen():
		return p.handleUploadKey(msg)
	case p.mode != inputNone:
		return p.handleInputKey(msg)
	case p.pane == PanePreview:
		return p.handlePreviewKey(msg)
	case p.browser.ShowingResults():
		return p.handleResultsKey(msg)
	default:
		return p.handleListKey(msg)
	}
}

func (p *Plugin) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		p.browser.MoveCursor(-1)
	case "down", "j":
		p.browser.MoveCursor(1)
	case "g", "home":
		p.browser.MoveCursor(-len(p.browser.Items()))
	case "G", "end":
		p.browser.MoveCursor(len(p.browser.Items()))

	case "enter", "l", "right":
		it, ok := p.browser.Current()
		if !ok {
			return nil
		}
		if it.IsFolder {
			p.listTop = 0
			return p.browser.Navigate(it.ID)
		}
		return p.openPreview(it.ID, it.Name, it.Extension)

	case "backspace", "h", "left":
		p.listTop = 0
		return p.browser.Up()

	case "/":
		return p.beginInput(inputSearch)
	case "n":
		return p.beginInput(inputCreateFolder)

	case "d", "delete":
		if it, ok := p.browser.Current(); ok {
			p.browser.DeleteItem(it)
		}

	case "u":
		p.uploads.Open()
		p.uploadCursor = 0
		return p.uploadPath.Focus()

	case "r":
		return tea.Batch(p.browser.Reload(), p.ctx.RefreshCatalog())

	case "tab":
		if p.preview.key != "" {
			p.pane = PanePreview
		}
	}
	return nil
}

func (p *Plugin) handleResultsKey(msg tea.KeyMsg) tea.Cmd {
	results := p.browser.SearchResults()
	switch msg.String() {
	case "up", "k":
		if p.resultAt > 0 {
			p.resultAt--
		}
	case "down", "j":
		if p.resultAt < len(results)-1 {
			p.resultAt++
		}
	case "enter":
		// Jump to the folder holding the matched chunk.
		if p.resultAt < len(results) {
			p.listTop = 0
			return p.browser.Navigate(results[p.resultAt].FolderID)
		}
	case "/":
		return p.beginInput(inputSearch)
	case "esc":
		p.browser.ClearSearch()
		p.resultAt = 0
	}
	return nil
}

func (p *Plugin) beginInput(mode inputMode) tea.Cmd {
	p.mode = mode
	p.input.Reset()
	switch mode {
	case inputSearch:
		p.input.Prompt = "Search: "
		p.input.Placeholder = "Ask about the documents in this folder..."
		p.input.SetValue(p.browser.SearchQuery())
	case inputCreateFolder:
		p.input.Prompt = "New folder: "
		p.input.Placeholder = "Folder name"
	}
	return p.input.Focus()
}

func (p *Plugin) endInput() {
	p.mode = inputNone
	p.input.Blur()
	p.input.Reset()
}

func (p *Plugin) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.endInput()
		return nil
	case "enter":
		value, mode := p.input.Value(), p.mode
		p.endInput()
		if mode == inputSearch {
			p.resultAt = 0
			return p.browser.Search(value)
		}
		return p.browser.CreateFolder(value)
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *Plugin) handlePreviewKey(msg tea.KeyMsg) tea.Cmd {
	page := max(1, p.height/2)
	switch msg.String() {
	case "down", "j":
		p.scrollPreview(1)
	case "up", "k":
		p.scrollPreview(-1)
	case "pgdown", " ", "space":
		p.scrollPreview(page)
	case "pgup":
		p.scrollPreview(-page)
	case "g", "home":
		p.preview.scroll = 0
	case "G", "end":
		p.scrollPreview(len(p.previewContent()))
	case "tab", "esc", "h", "left":
		p.pane = PaneList
	}
	return nil
}

func (p *Plugin) handleUploadKey(msg tea.KeyMsg) tea.Cmd {
	tasks := p.uploads.Tasks()
	switch msg.String() {
	case "esc":
		p.closeUpload()
		return nil
	case "ctrl+s":
		return p.uploads.Submit()
	case "enter":
		path := strings.TrimSpace(p.uploadPath.Value())
		if path == "" {
			return p.uploads.Submit()
		}
		p.uploadPath.Reset()
		return p.queuePaths(path)
	case "up", "ctrl+p":
		if p.uploadCursor > 0 {
			p.uploadCursor--
		}
		return nil
	case "down", "ctrl+n":
		if p.uploadCursor < len(tasks)-1 {
			p.uploadCursor++
		}
		return nil
	case "ctrl+x":
		if p.uploadCursor < len(tasks) {
			p.uploads.Remove(tasks[p.uploadCursor].ID)
			p.uploadCursor = max(0, min(p.uploadCursor, len(p.uploads.Tasks())-1))
		}
		return nil
	}
	var cmd tea.Cmd
	p.uploadPath, cmd = p.uploadPath.Update(msg)
	return cmd
}

func (p *Plugin) closeUpload() {
	p.uploads.Close()
	p.uploadPath.Reset()
	p.uploadPath.Blur()
	if p.preview.local {
		p.clearPreview()
	}
}

// queuePaths adds every file matching pattern to the batch and previews the
// last one accepted.
func (p *Plugin) queuePaths(pattern string) tea.Cmd {
	expanded := config.ExpandPath(pattern)
	matches, err := filepath.Glob(expanded)
	if err != nil || len(matches) == 0 {
		matches = []string{expanded}
	}

	var cmds []tea.Cmd
	last := ""
	for _, path := range matches {
		f, err := upload.NewLocalFile(path)
		if err != nil {
			p.ctx.Logger.Debug("upload candidate rejected", "path", path, "err", err)
			cmds = append(cmds, p.ctx.Notifier.Notify("Cannot read "+filepath.Base(path), notify.Error))
			continue
		}
		cmd, err := p.uploads.Add(f)
		cmds = append(cmds, cmd)
		if err == nil {
			last = path
		}
	}
	if last != "" {
		p.uploadCursor = len(p.uploads.Tasks()) - 1
		cmds = append(cmds, p.openLocalPreview(last))
	}
	return tea.Batch(cmds...)
}
