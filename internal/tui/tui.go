// Package tui implements the terminal chat interface for the graph demo:
// a viewport transcript, a one-line textarea and a spinner while a turn
// is in flight. Assistant markdown is rendered with glamour when stdout
// is a terminal.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Turn is what one conversation step produced.
type Turn struct {
	// Reply is the assistant's final text.
	Reply string

	// ToolLines describe the tool calls made during the step, one line
	// each, already formatted (e.g. `add({"a":2,"b":3}) = 5`).
	ToolLines []string
}

// StepFunc executes one conversation step on the user's input.
type StepFunc func(ctx context.Context, input string) (Turn, error)

// ---------- messages ----------

type turnDoneMsg struct {
	turn Turn
	err  error
}

// ---------- styles ----------

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	toolLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

var pulseSpinner = spinner.Spinner{
	Frames: []string{"·", "✢", "✳", "✶", "✻", "✽", "✻", "✶", "✳", "✢"},
	FPS:    spinner.Dot.FPS,
}

// ---------- transcript entries ----------

type entryKind int

const (
	entryUser entryKind = iota
	entryAssistant
	entryTool
	entryError
)

type entry struct {
	kind entryKind
	text string
}

const (
	titleHeight = 2
	inputHeight = 1
	helpHeight  = 1
)

// ---------- model ----------

type model struct {
	title    string
	step     StepFunc
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	entries  []entry
	waiting  bool
	quitting bool
	width    int
	height   int

	markdown        bool
	mdRenderer      *glamour.TermRenderer
	mdRendererWidth int
}

func newModel(title string, step StepFunc) model {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.Prompt = "❯ "
	ta.CharLimit = 4096
	ta.SetWidth(76)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	vp := viewport.New(80, 24)

	sp := spinner.New()
	sp.Spinner = pulseSpinner
	sp.Style = spinnerStyle

	return model{
		title:    title,
		step:     step,
		viewport: vp,
		textarea: ta,
		spinner:  sp,
		markdown: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - titleHeight - inputHeight - helpHeight
		if vpHeight < 1 {
			vpHeight = 1
		}
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
		m.textarea.SetWidth(m.width - 4)
		m.refreshViewport()

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" {
				return m, nil
			}
			m.textarea.Reset()
			m.entries = append(m.entries, entry{kind: entryUser, text: text})
			m.waiting = true
			m.refreshViewport()
			return m, tea.Batch(m.runStep(text), m.spinner.Tick)

		case tea.KeyUp:
			m.viewport.LineUp(1)
			return m, nil

		case tea.KeyDown:
			m.viewport.LineDown(1)
			return m, nil

		case tea.KeyPgUp:
			m.viewport.ViewUp()
			return m, nil

		case tea.KeyPgDown:
			m.viewport.ViewDown()
			return m, nil
		}

		if !m.waiting {
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}

	case turnDoneMsg:
		m.waiting = false
		if msg.err != nil {
			m.entries = append(m.entries, entry{kind: entryError, text: msg.err.Error()})
		} else {
			for _, line := range msg.turn.ToolLines {
				m.entries = append(m.entries, entry{kind: entryTool, text: line})
			}
			m.entries = append(m.entries, entry{kind: entryAssistant, text: msg.turn.Reply})
		}
		m.refreshViewport()
	}

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	title := titleStyle.Render(m.title)

	var input string
	if m.waiting {
		input = m.spinner.View() + hintStyle.Render(" Thinking…")
	} else {
		input = m.textarea.View()
	}

	help := hintStyle.Render("enter send • pgup/pgdn scroll • esc quit")

	return title + "\n\n" + m.viewport.View() + "\n" + input + "\n" + help
}

// runStep executes the step in a command goroutine so the UI stays live.
func (m model) runStep(input string) tea.Cmd {
	step := m.step
	return func() tea.Msg {
		turn, err := step(context.Background(), input)
		return turnDoneMsg{turn: turn, err: err}
	}
}

// refreshViewport re-renders the transcript at the current width.
func (m *model) refreshViewport() {
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoBottom()
}

func (m *model) renderContent() string {
	var b strings.Builder
	for _, e := range m.entries {
		switch e.kind {
		case entryUser:
			b.WriteString(userStyle.Render("You: ") + e.text)
		case entryTool:
			b.WriteString(toolLineStyle.Render("⏺ " + e.text))
		case entryAssistant:
			b.WriteString(m.renderMarkdown(e.text))
		case entryError:
			b.WriteString(errorStyle.Render("Error: " + e.text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ---------- markdown rendering ----------

func (m *model) getMarkdownRenderer() *glamour.TermRenderer {
	width := m.width
	if width <= 0 {
		width = 80
	}
	wrapWidth := width - 4
	if m.mdRenderer != nil && m.mdRendererWidth == wrapWidth {
		return m.mdRenderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return nil
	}
	m.mdRenderer = r
	m.mdRendererWidth = wrapWidth
	return r
}

func (m *model) renderMarkdown(text string) string {
	if !m.markdown {
		return text
	}
	r := m.getMarkdownRenderer()
	if r == nil {
		return text
	}
	rendered, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

// Run starts the chat TUI and blocks until the user quits.
func Run(title string, step StepFunc) error {
	p := tea.NewProgram(newModel(title, step), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
