// Package tui shows collection progress: a Bubble Tea spinner on a
// terminal, plain lines otherwise.
package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"github.com/fakeyudi/recall/internal/gather"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// IsInteractive reports whether f is a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(f.Fd())
}

// Title is the line shown while collectors run.
func Title(date string) string {
	return fmt.Sprintf("🚀 Collecting activity for %s...", date)
}

type doneMsg struct{}

// Model is the spinner shown while collecting.
type Model struct {
	spinner  spinner.Model
	title    string
	quitting bool
}

// New returns a Model showing title next to the spinner.
func New(title string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return Model{spinner: s, title: title}
}

func (m Model) Init() tea.Cmd { return m.spinner.Tick }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.spinner.View() + " " + titleStyle.Render(m.title) + "\n"
}

// Progress runs the spinner program. It is a gather.Sink.
type Progress struct {
	program *tea.Program
	done    chan error
}

// StartProgress starts the spinner on out. Keyboard input is not read and
// interrupts are left to the caller.
func StartProgress(out io.Writer, title string) *Progress {
	p := &Progress{
		program: tea.NewProgram(New(title),
			tea.WithInput(nil),
			tea.WithOutput(out),
			tea.WithoutSignalHandler(),
		),
		done: make(chan error, 1),
	}
	go func() {
		_, err := p.program.Run()
		p.done <- err
	}()
	return p
}

// Notify implements gather.Sink. The line is queued ahead of any later
// Stop.
func (p *Progress) Notify(n gather.Notice) {
	p.program.Println(styleNotice(n))
}

func styleNotice(n gather.Notice) string {
	if n.OK() {
		return n.String()
	}
	return failStyle.Render(n.String())
}

// Stop removes the spinner after pending notices are printed.
func (p *Progress) Stop() error {
	p.program.Send(doneMsg{})
	return <-p.done
}

// Plain writes the title once and each notice on its own line.
type Plain struct {
	w io.Writer
}

// StartPlain prints title to w and returns a sink writing notices to w.
func StartPlain(w io.Writer, title string) *Plain {
	fmt.Fprintln(w, title)
	return &Plain{w: w}
}

// Notify implements gather.Sink.
func (p *Plain) Notify(n gather.Notice) {
	fmt.Fprintln(p.w, n.String())
}
