package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/wilbur182/docchat/internal/styles"
)

var inputStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

// Input is the message box backed by a bubbles textarea.
type Input struct {
	textarea   textarea.Model
	focused    bool
	submitting bool // a send is outstanding
}

// NewInput creates an unfocused input.
func NewInput() *Input {
	ta := textarea.New()
	ta.Placeholder = "Ask a question about your documents..."
	ta.MaxHeight = 5
	ta.SetHeight(2)
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.Blur()

	return &Input{textarea: ta}
}

// Update handles key input. Enter submits the trimmed text unless a send is
// outstanding or the text is blank.
func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter && !keyMsg.Alt {
		if i.submitting {
			return i, nil
		}
		val := strings.TrimSpace(i.textarea.Value())
		if val == "" {
			return i, nil
		}
		return i, func() tea.Msg { return SendPromptMsg{Content: val} }
	}

	var cmd tea.Cmd
	i.textarea, cmd = i.textarea.Update(msg)
	return i, cmd
}

// View renders the input constrained to width.
func (i *Input) View(width int) string {
	if width <= 0 {
		width = 80
	}
	// border + padding on both sides
	i.textarea.SetWidth(max(1, width-4))

	content := i.textarea.View()
	if i.submitting {
		content = styles.Subtle.Render(content) + "\n" + styles.Accent.Bold(true).Render("Thinking...")
	}
	style := inputStyle.Width(width - 2)
	if i.focused {
		style = style.BorderForeground(styles.PanelActive.GetBorderTopForeground())
	}
	return style.Render(content)
}

func (i *Input) Focus() {
	i.textarea.Focus()
	i.focused = true
}

func (i *Input) Blur() {
	i.textarea.Blur()
	i.focused = false
}

func (i *Input) SetSubmitting(v bool) { i.submitting = v }
func (i *Input) IsSubmitting() bool   { return i.submitting }
func (i *Input) Value() string        { return i.textarea.Value() }
func (i *Input) SetValue(v string)    { i.textarea.SetValue(v) }
func (i *Input) Reset()               { i.textarea.Reset() }
func (i *Input) IsFocused() bool      { return i.focused }
