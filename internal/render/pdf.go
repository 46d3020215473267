package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/ledongthuc/pdf"
)

// PDF renders PDF pages as wrapped text rows.
type PDF struct {
	r *pdf.Reader
}

// OpenPDF parses data as a PDF document.
func OpenPDF(data []byte) (PageRenderer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &PDF{r: r}, nil
}

func (d *PDF) Pages() int { return d.r.NumPage() }

// Layout extracts the text rows of page n. The pdf library panics on some
// malformed streams; those panics are returned as errors.
func (d *PDF) Layout(ctx context.Context, n int) (layout Layout, err error) {
	if err := ctx.Err(); err != nil {
		return Layout{}, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", n, r)
		}
	}()

	p := d.r.Page(n)
	if p.V.IsNull() {
		return Layout{}, fmt.Errorf("page %d: not found", n)
	}
	rows, err := p.GetTextByRow()
	if err != nil {
		return Layout{}, fmt.Errorf("page %d: %w", n, err)
	}

	layout = Layout{Page: n}
	if box := p.V.Key("MediaBox"); box.Len() == 4 {
		layout.Width = box.Index(2).Float64() - box.Index(0).Float64()
		layout.Height = box.Index(3).Float64() - box.Index(1).Float64()
	}
	for _, row := range rows {
		layout.Rows = append(layout.Rows, joinRow(row.Content))
	}
	return layout, nil
}

// joinRow concatenates the text runs of one row, inserting a space where
// runs are visibly apart.
func joinRow(words pdf.TextHorizontal) string {
	var b strings.Builder
	var end float64
	for i, w := range words {
		if i > 0 && w.X-end > w.FontSize*0.2 && !strings.HasSuffix(b.String(), " ") {
			b.WriteByte(' ')
		}
		b.WriteString(w.S)
		end = w.X + w.W
	}
	return strings.TrimRight(b.String(), " ")
}

// Draw wraps the page's rows to width under a page header.
func (d *PDF) Draw(ctx context.Context, layout Layout, width int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if width < 20 {
		width = 20
	}
	lines := []string{pageHeader(layout.Page, d.Pages(), width)}
	for _, row := range layout.Rows {
		if row == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, strings.Split(ansi.Wordwrap(row, width, ""), "\n")...)
	}
	return lines, nil
}

func pageHeader(n, total, width int) string {
	label := fmt.Sprintf(" Page %d of %d ", n, total)
	pad := width - len(label)
	if pad < 2 {
		return label
	}
	return strings.Repeat("─", pad/2) + label + strings.Repeat("─", pad-pad/2)
}
