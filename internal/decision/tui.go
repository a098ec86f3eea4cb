package decision

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/runger/dorg/internal/orchestrator"
	"github.com/runger/dorg/internal/recorder"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	nameStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	parentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	feedbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// TUI collects decisions interactively in the terminal. It implements
// orchestrator.DecisionSource.
type TUI struct {
	// program is swappable for tests; defaults to running bubbletea.
	program func(m promptModel) (promptModel, error)
}

// NewTUI returns an interactive decision source.
func NewTUI() *TUI {
	return &TUI{program: runProgram}
}

func runProgram(m promptModel) (promptModel, error) {
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return m, err
	}
	out, ok := final.(promptModel)
	if !ok {
		return m, fmt.Errorf("unexpected model type %T", final)
	}
	return out, nil
}

// Decide shows the candidate and waits for accept, retry or cancel.
// Retry opens a feedback input; its text travels back to the generator.
func (t *TUI) Decide(ctx context.Context, c orchestrator.Candidate) (orchestrator.Decision, error) {
	if err := ctx.Err(); err != nil {
		return orchestrator.Decision{}, err
	}

	m, err := t.program(newPromptModel(c))
	if err != nil {
		return orchestrator.Decision{}, err
	}
	if m.action == "" {
		// Window closed without a verdict.
		return orchestrator.Decision{Action: recorder.ActionCancel}, nil
	}
	return orchestrator.Decision{Action: m.action, Feedback: m.feedback}, nil
}

// promptModel is the bubbletea model for one candidate prompt.
type promptModel struct {
	candidate orchestrator.Candidate
	input     textinput.Model

	entering bool // feedback input visible
	action   recorder.Action
	feedback string
}

func newPromptModel(c orchestrator.Candidate) promptModel {
	ti := textinput.New()
	ti.Placeholder = "what should change about the name?"
	ti.CharLimit = 300
	ti.Width = 60
	return promptModel{candidate: c, input: ti}
}

func (m promptModel) Init() tea.Cmd { return nil }

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.entering {
		switch key.Type {
		case tea.KeyEnter:
			m.action = recorder.ActionRetry
			m.feedback = m.input.Value()
			return m, tea.Quit
		case tea.KeyEsc:
			m.entering = false
			m.input.Reset()
			return m, nil
		case tea.KeyCtrlC:
			m.action = recorder.ActionCancel
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "a", "y", "enter":
		m.action = recorder.ActionAccept
		return m, tea.Quit
	case "r":
		if m.candidate.AttemptNumber < m.candidate.MaxAttempts {
			m.entering = true
			m.input.Focus()
			return m, textinput.Blink
		}
	case "c", "q", "ctrl+c", "esc":
		m.action = recorder.ActionCancel
		return m, tea.Quit
	}
	return m, nil
}

func (m promptModel) View() string {
	s := titleStyle.Render(fmt.Sprintf("Naming attempt %d/%d",
		m.candidate.AttemptNumber, m.candidate.MaxAttempts)) + "\n\n"
	s += "  name:   " + nameStyle.Render(m.candidate.Name) + "\n"
	if m.candidate.OptimalParent != "" {
		s += "  parent: " + parentStyle.Render(m.candidate.OptimalParent) + "\n"
	}
	s += "\n"

	if m.entering {
		s += feedbackStyle.Render("Feedback for the next attempt:") + "\n"
		s += m.input.View() + "\n"
		s += helpStyle.Render("enter send · esc back") + "\n"
		return s
	}

	help := "a accept · c cancel"
	if m.candidate.AttemptNumber < m.candidate.MaxAttempts {
		help = "a accept · r retry · c cancel"
	}
	s += helpStyle.Render(help) + "\n"
	return s
}
