// Package tui implements the interactive calculator prompt.
package tui

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pengelbrecht/calc/internal/calculator"
)

const maxHistory = 100

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// entry is one evaluated line.
type entry struct {
	input  string
	result float64
	err    error
}

// Model is the bubbletea model for the prompt. Each submitted line is an
// independent call; history is display only.
type Model struct {
	input    textinput.Model
	history  []entry
	width    int
	quitting bool
}

// New returns a focused prompt.
func New() Model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render("calc> ")
	ti.Placeholder = "add 2 3"
	ti.CharLimit = 256
	ti.Width = 50
	ti.Focus()
	return Model{input: ti}
}

// Run starts the prompt on the terminal and blocks until the user quits.
func Run() error {
	_, err := tea.NewProgram(New()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-10, 20)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			switch line {
			case "":
				return m, nil
			case "quit", "exit":
				m.quitting = true
				return m, tea.Quit
			}
			m.history = append(m.history, evaluate(line))
			if len(m.history) > maxHistory {
				m.history = m.history[len(m.history)-maxHistory:]
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	for _, e := range m.history {
		b.WriteString(m.fit(renderEntry(e)))
		b.WriteByte('\n')
	}
	if m.quitting {
		return b.String()
	}
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(m.fit(helpStyle.Render("ops: add sub mul div · enter to evaluate · esc to quit")))
	b.WriteByte('\n')
	return b.String()
}

func (m Model) fit(line string) string {
	if m.width <= 0 {
		return line
	}
	return ansi.Truncate(line, m.width, "…")
}

func renderEntry(e entry) string {
	in := inputStyle.Render(e.input)
	if e.err != nil {
		return in + errorStyle.Render(" ! "+e.err.Error())
	}
	return in + resultStyle.Render(" = "+strconv.FormatFloat(e.result, 'g', -1, 64))
}

// evaluate parses "op a b" and runs it through the calculator.
func evaluate(line string) entry {
	fields := strings.Fields(line)
	args := make([]any, 0, len(fields)-1)
	for _, f := range fields[1:] {
		args = append(args, json.Number(f))
	}
	result, err := calculator.Call(strings.ToLower(fields[0]), args...)
	return entry{input: line, result: result, err: err}
}
