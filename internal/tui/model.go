package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/answer"
)

// QAPort is the TUI-facing subset of the QA service.
type QAPort interface {
	Query(ctx context.Context, queryText string) (answer.Response, error)
}

// Model is the Bubble Tea model for the interactive Q&A console.
type Model struct {
	service  QAPort
	input    textinput.Model
	viewport viewport.Model
	current  *answer.Response
	summary  string
	status   string
	ready    bool
}

// New creates a new TUI model instance.
func New(service QAPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "? "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, input: ti, viewport: vp, summary: summary, status: "Ready."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+summary, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				res, err := m.service.Query(context.Background(), q)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.current = nil
				} else {
					m.status = fmt.Sprintf("Answered %q", q)
					m.current = &res
					m.input.SetValue("")
				}
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Document Q&A")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	body := answerBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + summary + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.current == nil {
		return "No answer yet. Ask about the ingested documents."
	}
	r := m.current
	var b strings.Builder
	b.WriteString(decisionStyle(string(r.Decision)).Render(strings.ToUpper(string(r.Decision))))
	if r.Amount != nil {
		b.WriteString(fmt.Sprintf("  amount=%.0f", *r.Amount))
	}
	b.WriteString("\n\n")
	b.WriteString(r.Answer)
	if r.Reasoning != "" {
		b.WriteString("\n\nReasoning: ")
		b.WriteString(r.Reasoning)
	}
	for i, clause := range r.RelevantClauses {
		if i == 0 {
			b.WriteString("\n\nRelevant clauses:")
		}
		b.WriteString("\n  - ")
		b.WriteString(clause)
	}
	if r.Limitations != "" {
		b.WriteString("\n\nLimitations: ")
		b.WriteString(r.Limitations)
	}
	return b.String()
}

var (
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func decisionStyle(decision string) lipgloss.Style {
	switch decision {
	case "approved":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	case "rejected":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	}
}
