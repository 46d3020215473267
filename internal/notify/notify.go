// Package notify provides the transient toast and the single confirm modal
// shared by every component of the client.
package notify

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ToastDuration is how long a notice stays visible.
const ToastDuration = 3 * time.Second

// Severity classifies a notice or confirm prompt.
type Severity string

const (
	Success Severity = "success"
	Warning Severity = "warning"
	Error   Severity = "error"
	Info    Severity = "info"
)

// Notifier is the capability components use to surface outcomes and gate
// destructive actions.
type Notifier interface {
	Notify(message string, severity Severity) tea.Cmd
	Confirm(title, body string, severity Severity, cont func() tea.Cmd)
}

// Toast is the visible notice.
type Toast struct {
	Message  string
	Severity Severity
	Deadline time.Time
	seq      uint64
}

// Prompt is the open confirm modal.
type Prompt struct {
	Title    string
	Body     string
	Severity Severity
	cont     func() tea.Cmd
}

// ExpiredMsg fires when a toast's timer runs out. Seq identifies the toast
// that armed the timer so a replaced toast's timer is ignored.
type ExpiredMsg struct {
	Seq uint64
}

// Center holds at most one toast and at most one confirm prompt.
type Center struct {
	toast  *Toast
	seq    uint64
	prompt *Prompt
	delay  time.Duration
	now    func() time.Time
}

var _ Notifier = (*Center)(nil)

// New creates an empty notification center.
func New() *Center {
	return &Center{delay: ToastDuration, now: time.Now}
}

// Notify replaces the visible toast and arms a fresh dismiss timer.
func (c *Center) Notify(message string, severity Severity) tea.Cmd {
	c.seq++
	seq := c.seq
	c.toast = &Toast{
		Message:  message,
		Severity: severity,
		Deadline: c.now().Add(c.delay),
		seq:      seq,
	}
	return tea.Tick(c.delay, func(time.Time) tea.Msg {
		return ExpiredMsg{Seq: seq}
	})
}

// Current returns the visible toast.
func (c *Center) Current() (Toast, bool) {
	if c.toast == nil {
		return Toast{}, false
	}
	return *c.toast, true
}

// Update clears the toast when its own timer fires.
func (c *Center) Update(msg tea.Msg) {
	if m, ok := msg.(ExpiredMsg); ok {
		if c.toast != nil && c.toast.seq == m.Seq {
			c.toast = nil
		}
	}
}

// Confirm opens the modal, replacing any open one. cont runs only on Accept.
func (c *Center) Confirm(title, body string, severity Severity, cont func() tea.Cmd) {
	c.prompt = &Prompt{
		Title:    title,
		Body:     body,
		Severity: severity,
		cont:     cont,
	}
}

// Prompt returns the open modal.
func (c *Center) Prompt() (Prompt, bool) {
	if c.prompt == nil {
		return Prompt{}, false
	}
	return *c.prompt, true
}

// HasPrompt reports whether a modal is open.
func (c *Center) HasPrompt() bool { return c.prompt != nil }

// Accept runs the continuation, then clears the modal. A modal opened by the
// continuation itself survives.
func (c *Center) Accept() tea.Cmd {
	p := c.prompt
	if p == nil {
		return nil
	}
	var cmd tea.Cmd
	if p.cont != nil {
		cmd = p.cont()
	}
	if c.prompt == p {
		c.prompt = nil
	}
	return cmd
}

// Dismiss closes the modal without running anything.
func (c *Center) Dismiss() {
	c.prompt = nil
}

// HandleKey routes keys to the open modal: y/enter accept, n/esc dismiss.
// Every key is swallowed while a modal is open.
func (c *Center) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if c.prompt == nil {
		return false, nil
	}
	switch msg.String() {
	case "y", "Y", "enter":
		return true, c.Accept()
	case "n", "N", "esc", "q":
		c.Dismiss()
	}
	return true, nil
}
