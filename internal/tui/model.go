package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragkb/internal/rag"
)

// QueryPort is the TUI-facing subset of the knowledge-base service.
type QueryPort interface {
	AnswerQuery(ctx context.Context, req rag.Request) (*rag.Result, error)
}

// Model is the Bubble Tea model for the query console.
type Model struct {
	service  QueryPort
	provider string
	input    textinput.Model
	viewport viewport.Model
	status   string
	ready    bool
}

// New creates a new console model. provider may be empty for the default.
func New(service QueryPort, provider string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask the knowledge base and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, provider: provider, input: ti, viewport: vp, status: "Ready."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, query box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				res, err := m.service.AnswerQuery(context.Background(), rag.Request{Query: q, Provider: m.provider})
				if err != nil {
					m.status = "Error: " + err.Error()
					m.viewport.SetContent("")
				} else {
					m.status = fmt.Sprintf("Answered %q", q)
					m.viewport.SetContent(renderResult(res))
					m.viewport.GotoTop()
				}
				return m, nil
			}
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the console layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Knowledge Base")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + results + "\n" + input + "\n" + status
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	aboveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func renderResult(res *rag.Result) string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render("Category") + "\n")
	b.WriteString(res.DetectedCategory + "\n\n")

	b.WriteString(sectionStyle.Render("Lexical matches") + "\n")
	if len(res.LexicalResults) == 0 {
		b.WriteString(dimStyle.Render("none") + "\n")
	}
	for _, r := range res.LexicalResults {
		fmt.Fprintf(&b, "%-6.2f %s\n", r.Score, r.Document.Title)
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Similar chunks") + "\n")
	if len(res.EmbeddingResults) == 0 {
		b.WriteString(dimStyle.Render("none") + "\n")
	}
	for _, r := range res.EmbeddingResults {
		marker := " "
		line := fmt.Sprintf("%s %.3f %s", marker, r.Score, r.ChunkText)
		if r.IsAbove {
			line = aboveStyle.Render(fmt.Sprintf("* %.3f %s", r.Score, r.ChunkText))
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Answer") + "\n")
	b.WriteString(res.FinalAnswer + "\n")
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
