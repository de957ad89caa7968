// Package prompt asks the user whether a detected variable rename should
// keep the old variable's configuration.
package prompt

import (
	"fmt"
	"io"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/tplvars/internal/theme"
	"github.com/mark3labs/tplvars/internal/workspace"
)

// Decision is the user's answer.
type Decision int

const (
	Undecided Decision = iota
	Accept
	Reject
	Cancelled
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	case Cancelled:
		return "cancelled"
	default:
		return "undecided"
	}
}

type keyMap struct {
	Accept key.Binding
	Reject key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Accept: key.NewBinding(key.WithKeys("y", "Y", "enter"), key.WithHelp("y/enter", "keep settings")),
	Reject: key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "start fresh")),
	Cancel: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "decide later")),
}

// fallbackWidth is used before the terminal reports its size.
const fallbackWidth = 60

// Model is the rename confirmation prompt.
type Model struct {
	rename   workspace.RenamePrompt
	decision Decision
	width    int
}

// New creates a prompt for rename.
func New(rename workspace.RenamePrompt) *Model {
	return &Model{rename: rename}
}

// Decision returns the answer, Undecided while the prompt is running.
func (m *Model) Decision() Decision {
	return m.decision
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, keys.Accept):
			m.decision = Accept
		case key.Matches(msg, keys.Reject):
			m.decision = Reject
		case key.Matches(msg, keys.Cancel):
			m.decision = Cancelled
		default:
			return m, nil
		}
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

func (m *Model) View() tea.View {
	var view tea.View

	content := m.render()
	width := m.width
	if width <= 0 {
		width = fallbackWidth
	}
	width = max(width, lipgloss.Width(content))
	height := lipgloss.Height(content)

	canvas := uv.NewScreenBuffer(width, height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: width, Y: height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// render builds the prompt text.
func (m *Model) render() string {
	s := theme.Current().S()

	var b strings.Builder
	b.WriteString(s.Title.Render("Variable renamed?"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s → %s\n\n", s.Name.Render(m.rename.From), s.Name.Render(m.rename.To))

	switch m.decision {
	case Accept:
		b.WriteString(s.Muted.Render("Keeping the settings of " + m.rename.From))
	case Reject:
		b.WriteString(s.Muted.Render(m.rename.To + " starts with default settings"))
	case Cancelled:
		b.WriteString(s.Muted.Render("Left pending"))
	default:
		help := make([]string, 0, 3)
		for _, k := range []key.Binding{keys.Accept, keys.Reject, keys.Cancel} {
			h := k.Help()
			help = append(help, h.Key+" "+h.Desc)
		}
		b.WriteString(s.Muted.Render(strings.Join(help, " • ")))
	}
	return b.String()
}

// Ask runs the prompt on in/out and returns the answer.
func Ask(rename workspace.RenamePrompt, in io.Reader, out io.Writer) (Decision, error) {
	m := New(rename)
	p := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out))

	final, err := p.Run()
	if err != nil {
		return Undecided, fmt.Errorf("rename prompt failed: %w", err)
	}
	fm, ok := final.(*Model)
	if !ok {
		return Undecided, fmt.Errorf("unexpected model type")
	}
	return fm.decision, nil
}
