package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/typedispatch/gen"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	previewStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(lipgloss.Color("#666666"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const listHeight = 10

type interactiveModel struct {
	plan     *gen.Plan
	lines    []string
	visible  []*gen.Branch
	filter   textinput.Model
	preview  viewport.Model
	selected int
	ready    bool
}

func newInteractiveModel(p *gen.Plan, src []byte) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "type, component or method"
	ti.Prompt = "/ "
	ti.Width = 40

	m := &interactiveModel{
		plan:    p,
		lines:   strings.Split(string(src), "\n"),
		visible: p.Branches,
		filter:  ti,
		preview: viewport.New(80, 20),
	}
	m.preview.SetContent(string(src))
	m.syncPreview()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.preview.Width = msg.Width
		m.preview.Height = max(msg.Height-listHeight-6, 3)
		m.ready = true
		m.syncPreview()
		return m, nil

	case tea.KeyMsg:
		if m.filter.Focused() {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc", "enter":
				m.filter.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.visible = filterBranches(m.plan.Branches, m.filter.Value())
			m.selected = 0
			m.syncPreview()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "/":
			return m, m.filter.Focus()

		case "esc":
			m.filter.SetValue("")
			m.visible = m.plan.Branches
			m.selected = 0
			m.syncPreview()

		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.syncPreview()
			}

		case "down", "j":
			if m.selected < len(m.visible)-1 {
				m.selected++
				m.syncPreview()
			}

		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// syncPreview scrolls the source to the case of the selected branch.
func (m *interactiveModel) syncPreview() {
	if m.selected >= len(m.visible) {
		return
	}
	m.preview.SetYOffset(caseLine(m.lines, m.visible[m.selected], m.plan.Config.PackagePath))
}

func (m *interactiveModel) View() string {
	if !m.ready {
		return "Loading plan..."
	}

	var b strings.Builder
	cfg := m.plan.Config

	b.WriteString(titleStyle.Render("Dispatch Table"))
	b.WriteString(fmt.Sprintf(" %s.%s -> %s\n", cfg.PackageName, cfg.TypeName, cfg.Path()))
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	start := 0
	if m.selected >= listHeight {
		start = m.selected - listHeight + 1
	}
	end := min(start+listHeight, len(m.visible))
	for i := start; i < end; i++ {
		line := describe(m.visible[i])
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(helpStyle.Render("  no handler matches"))
		b.WriteString("\n")
	}

	b.WriteString(previewStyle.Render(m.preview.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • / filter • esc clear • pgup/pgdown scroll • q quit"))

	return b.String()
}

// filterBranches keeps the branches whose handled type, component or method
// contains query, ignoring case.
func filterBranches(branches []*gen.Branch, query string) []*gen.Branch {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return branches
	}
	var out []*gen.Branch
	for _, b := range branches {
		text := strings.ToLower(b.Handled.String() + " " + b.Component.Type.String() + "." + b.Method)
		if strings.Contains(text, query) {
			out = append(out, b)
		}
	}
	return out
}

// caseLine finds the Dispatch case for b in the rendered source, or 0.
// Types of the generated package itself are unqualified.
func caseLine(lines []string, b *gen.Branch, localPath string) int {
	star := ""
	if b.Handled.Pointer {
		star = "*"
	}
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if b.Handled.Path == "" || b.Handled.Path == localPath {
			if line == "case "+star+b.Handled.Name+":" {
				return i
			}
			continue
		}
		rest, ok := strings.CutPrefix(line, "case "+star)
		if ok && !strings.HasPrefix(rest, "*") && strings.HasSuffix(rest, "."+b.Handled.Name+":") {
			return i
		}
	}
	return 0
}

func runInteractive(p *gen.Plan) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	src, err := gen.Render(p)
	if err != nil {
		return err
	}
	prog := tea.NewProgram(newInteractiveModel(p, src), tea.WithAltScreen())
	_, err = prog.Run()
	return err
}
