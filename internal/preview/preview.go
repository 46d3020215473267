// Package preview turns document content into terminal lines.
//
// Remote documents are fetched as extracted text from the backend. Local
// files queued for upload are read from disk; office formats are extracted
// with docconv. Paged formats (pdf) are not handled here; callers hand them
// to the render pipeline.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/alecthomas/chroma/v2/quick"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/docchat/internal/markdown"
	"github.com/wilbur182/docchat/internal/styles"
)

const (
	maxPreviewSize  = 2 * 1024 * 1024
	maxPreviewLines = 10000
)

// Kind classifies how a document is previewed.
type Kind int

const (
	Unsupported Kind = iota
	Text
	Markdown
	Code
	Office
	Paged
)

// KindOf maps a file extension (with or without the dot) to its Kind.
func KindOf(ext string) Kind {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "txt":
		return Text
	case "md":
		return Markdown
	case "json", "csv":
		return Code
	case "docx", "pptx":
		return Office
	case "pdf":
		return Paged
	default:
		return Unsupported
	}
}

var officeMIME = map[string]string{
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// Options control formatting.
type Options struct {
	Width    int
	Office   bool // office documents are shown as extracted text
	Markdown *markdown.Renderer
}

// Result is a formatted preview.
type Result struct {
	Lines     []string
	Truncated bool
}

// Source fetches extracted text for a catalog document.
type Source interface {
	FileContent(ctx context.Context, id string) (string, error)
}

// LoadedMsg carries a preview. Key is the document id or local path.
type LoadedMsg struct {
	Epoch  uint64
	Key    string
	Result Result
	Err    error
}

// Load fetches and formats a catalog document.
func Load(src Source, id, ext string, epoch uint64, opts Options) tea.Cmd {
	return func() tea.Msg {
		kind := KindOf(ext)
		if kind == Unsupported || (kind == Office && !opts.Office) {
			return LoadedMsg{Epoch: epoch, Key: id, Result: Format("", ext, opts)}
		}
		content, err := src.FileContent(context.Background(), id)
		if err != nil {
			return LoadedMsg{Epoch: epoch, Key: id, Err: err}
		}
		return LoadedMsg{Epoch: epoch, Key: id, Result: Format(content, ext, opts)}
	}
}

// LoadLocal reads and formats a file on disk.
func LoadLocal(path string, epoch uint64, opts Options) tea.Cmd {
	return func() tea.Msg {
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		f, err := os.Open(path)
		if err != nil {
			return LoadedMsg{Epoch: epoch, Key: path, Err: err}
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxPreviewSize+1))
		if err != nil {
			return LoadedMsg{Epoch: epoch, Key: path, Err: err}
		}
		truncated := len(data) > maxPreviewSize

		var content string
		switch KindOf(ext) {
		case Office:
			if truncated {
				return LoadedMsg{Epoch: epoch, Key: path, Result: Result{Lines: []string{"File too large to preview."}}}
			}
			content, err = Extract(bytes.NewReader(data), ext)
			if err != nil {
				return LoadedMsg{Epoch: epoch, Key: path, Err: err}
			}
			opts.Office = true
		default:
			if truncated {
				data = data[:maxPreviewSize]
			}
			content = string(data)
		}
		res := Format(content, ext, opts)
		res.Truncated = res.Truncated || truncated
		return LoadedMsg{Epoch: epoch, Key: path, Result: res}
	}
}

// Extract pulls plain text out of an office document.
func Extract(r io.Reader, ext string) (string, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	mime, ok := officeMIME[ext]
	if !ok {
		return "", fmt.Errorf("extract: unsupported type .%s", ext)
	}
	res, err := docconv.Convert(r, mime, false)
	if err != nil {
		return "", fmt.Errorf("extract .%s: %w", ext, err)
	}
	return res.Body, nil
}

// Format renders content according to its extension.
func Format(content, ext string, opts Options) Result {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	width := opts.Width
	if width <= 0 {
		width = 80
	}

	var lines []string
	kind := KindOf(ext)
	if kind == Code {
		content = expandTabs(content)
	}
	switch kind {
	case Markdown:
		if opts.Markdown != nil {
			lines = opts.Markdown.Render(content, width)
		} else {
			lines = markdown.WrapText(content, width)
		}
	case Code:
		if out, err := Highlight(content, ext, styles.GetSyntaxTheme()); err == nil {
			lines = strings.Split(strings.TrimRight(out, "\n"), "\n")
		} else {
			lines = strings.Split(content, "\n")
		}
	case Text:
		lines = markdown.WrapText(content, width)
	case Office:
		if !opts.Office {
			return Result{Lines: []string{fmt.Sprintf("Content for .%s files cannot be displayed directly.", ext)}}
		}
		lines = markdown.WrapText(strings.TrimSpace(content), width)
	case Paged:
		return Result{}
	default:
		return Result{Lines: []string{fmt.Sprintf("Content for .%s files cannot be displayed.", ext)}}
	}

	res := Result{Lines: lines}
	if len(res.Lines) > maxPreviewLines {
		res.Lines = res.Lines[:maxPreviewLines]
		res.Truncated = true
	}
	return res
}

// Highlight returns content highlighted for a 256-color terminal.
func Highlight(content, lexer, syntaxTheme string) (string, error) {
	buf := new(bytes.Buffer)
	if err := quick.Highlight(buf, content, lexer, "terminal256", syntaxTheme); err != nil {
		return "", fmt.Errorf("highlight: %w", err)
	}
	return buf.String(), nil
}
