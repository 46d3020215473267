// Package ui holds small view widgets shared by the root model.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wilbur182/docchat/internal/styles"
)

// SpinnerInterval is the delay between frames.
const SpinnerInterval = 120 * time.Millisecond

var brailleFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SpinnerTickMsg advances a spinner. Gen ties the tick to one Start call.
type SpinnerTickMsg struct {
	Gen uint64
}

// Spinner is a braille activity indicator. It ticks only while active.
type Spinner struct {
	frame  int
	active bool
	gen    uint64
}

// Start activates the spinner and returns its first tick. It returns nil
// when the spinner is already running.
func (s *Spinner) Start() tea.Cmd {
	if s.active {
		return nil
	}
	s.active = true
	s.frame = 0
	s.gen++
	return s.tick()
}

// Stop halts the animation. A pending tick is ignored.
func (s *Spinner) Stop() {
	s.active = false
}

func (s Spinner) IsActive() bool { return s.active }

func (s Spinner) tick() tea.Cmd {
	gen := s.gen
	return tea.Tick(SpinnerInterval, func(time.Time) tea.Msg {
		return SpinnerTickMsg{Gen: gen}
	})
}

// Update advances the frame on a tick from the current run.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(SpinnerTickMsg)
	if !ok || !s.active || m.Gen != s.gen {
		return nil
	}
	s.frame++
	return s.tick()
}

// View renders the current frame, or "" when stopped.
func (s Spinner) View() string {
	if !s.active {
		return ""
	}
	return styles.Accent.Render(brailleFrames[s.frame%len(brailleFrames)])
}
