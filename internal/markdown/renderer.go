// Package markdown renders assistant replies and markdown documents for the
// terminal through glamour, caching results per content and width.
package markdown

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/cellbuf"
	"github.com/wilbur182/docchat/internal/styles"
)

const (
	// MinWidthForMarkdown is the narrowest width glamour is used at; below it
	// content is word-wrapped as plain text.
	MinWidthForMarkdown = 30

	// MaxCacheEntries bounds the cache; it is dropped wholesale when full.
	MaxCacheEntries = 200
)

// Renderer wraps glamour with a render cache. Safe for concurrent use.
type Renderer struct {
	mu        sync.RWMutex
	renderer  *glamour.TermRenderer
	lastWidth int
	lastTheme string
	cache     map[uint64][]string
}

// NewRenderer creates a renderer. The glamour instance is built lazily.
func NewRenderer() *Renderer {
	return &Renderer{cache: make(map[uint64][]string)}
}

// Render returns content as styled lines at width.
func (r *Renderer) Render(content string, width int) []string {
	if content == "" {
		return nil
	}
	if width < MinWidthForMarkdown {
		return WrapText(content, width)
	}

	theme := styles.GetMarkdownTheme()
	key := cacheKey(content, width, theme)

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[key]; ok {
		return cached
	}

	tr, err := r.termRenderer(width, theme)
	if err != nil {
		slog.Warn("markdown: renderer init failed", "err", err)
		return WrapText(content, width)
	}
	out, err := tr.Render(content)
	if err != nil {
		slog.Warn("markdown: render failed", "err", err)
		return WrapText(content, width)
	}

	lines := strings.Split(strings.Trim(out, "\n\r\t "), "\n")
	if len(r.cache) >= MaxCacheEntries {
		r.cache = make(map[uint64][]string)
	}
	r.cache[key] = lines
	return lines
}

func cacheKey(content string, width int, theme string) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(theme)
	_, _ = h.Write([]byte{0, byte(width >> 8), byte(width)})
	_, _ = h.WriteString(content)
	return h.Sum64()
}

// termRenderer returns a glamour renderer for width and theme, rebuilding it
// when either changes. Callers hold the write lock.
func (r *Renderer) termRenderer(width int, theme string) (*glamour.TermRenderer, error) {
	if r.renderer != nil && r.lastWidth == width && r.lastTheme == theme {
		return r.renderer, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStylePath(theme),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.renderer = tr
	r.lastWidth = width
	r.lastTheme = theme
	r.cache = make(map[uint64][]string)
	return tr, nil
}

// WrapText word-wraps text to maxWidth cells, keeping paragraph breaks.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{text}
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if strings.TrimSpace(para) == "" {
			lines = append(lines, "")
			continue
		}
		wrapped := cellbuf.Wrap(strings.Join(strings.Fields(para), " "), maxWidth, "")
		for _, l := range strings.Split(wrapped, "\n") {
			lines = append(lines, strings.TrimRight(l, " "))
		}
	}
	return lines
}
