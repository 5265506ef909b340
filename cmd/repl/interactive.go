package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/react-runtime/pool"
	"github.com/wippyai/react-runtime/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))
)

type entry struct {
	input  string
	output string
	failed bool
}

type interactiveModel struct {
	pool   *pool.Pool
	cfg    runtime.Config
	env    *runtime.Environment
	label  string
	input  textinput.Model
	log    []entry
	err    error
	loaded bool
}

type sessionMsg struct {
	err   error
	env   *runtime.Environment
	label string
}

type evalMsg struct {
	input  string
	output string
	failed bool
}

func newInteractiveModel(p *pool.Pool, cfg runtime.Config) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "js> "
	ti.Placeholder = `1 + 1, :component App {"page":1}, :init, :quit`
	ti.Width = 72
	ti.Focus()
	return &interactiveModel{pool: p, cfg: cfg, input: ti}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.openSession
}

// openSession resolves the session's environment and engine up front so
// the header can show what the user is talking to.
func (m *interactiveModel) openSession() tea.Msg {
	env := runtime.NewEnvironment(m.pool, m.cfg)
	label, err := env.EngineVersionLabel()
	if err != nil {
		env.Dispose()
		return sessionMsg{err: err}
	}
	return sessionMsg{env: env, label: label}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, m.quit()

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" {
				return m, nil
			}
			if line == ":quit" || line == ":q" {
				return m, m.quit()
			}
			return m, m.evaluate(line)
		}

	case sessionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.env = msg.env
		m.label = msg.label
		m.loaded = true

	case evalMsg:
		m.log = append(m.log, entry{input: msg.input, output: msg.output, failed: msg.failed})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) quit() tea.Cmd {
	if m.env != nil {
		m.env.Dispose()
	}
	return tea.Quit
}

// evaluate runs one REPL line against the session environment. Lines
// starting with ':' are commands; anything else is a JS expression.
func (m *interactiveModel) evaluate(line string) tea.Cmd {
	return func() tea.Msg {
		if m.env == nil {
			return evalMsg{input: line, output: "session not ready", failed: true}
		}

		switch {
		case line == ":init":
			script, err := m.env.InitScript()
			if err != nil {
				return evalMsg{input: line, output: err.Error(), failed: true}
			}
			if script == "" {
				script = "(empty)"
			}
			return evalMsg{input: line, output: script}

		case strings.HasPrefix(line, ":component "):
			return m.createComponent(line)

		default:
			v, err := m.env.Evaluate(line)
			if err != nil {
				return evalMsg{input: line, output: err.Error(), failed: true}
			}
			return evalMsg{input: line, output: fmt.Sprintf("%v", v)}
		}
	}
}

// createComponent handles ":component Name [props-json] [container-id]".
func (m *interactiveModel) createComponent(line string) tea.Msg {
	rest := strings.TrimPrefix(line, ":component ")
	name, rest, _ := strings.Cut(strings.TrimSpace(rest), " ")

	var props any
	containerID := ""
	rest = strings.TrimSpace(rest)
	if rest != "" {
		if strings.HasPrefix(rest, "{") || strings.HasPrefix(rest, "[") {
			propsJSON, tail, _ := cutJSON(rest)
			props = rawProps(propsJSON)
			containerID = strings.TrimSpace(tail)
		} else {
			containerID = rest
		}
	}

	c, err := m.env.CreateComponent(name, props, containerID)
	if err != nil {
		return evalMsg{input: line, output: err.Error(), failed: true}
	}
	frag, err := c.RenderInitScript()
	if err != nil {
		return evalMsg{input: line, output: err.Error(), failed: true}
	}
	return evalMsg{input: line, output: fmt.Sprintf("%s -> %s", c.ContainerID, frag)}
}

// cutJSON splits a leading brace-balanced JSON value from its tail.
func cutJSON(s string) (string, string, bool) {
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			if i == 0 || s[i-1] != '\\' {
				inString = !inString
			}
		case '{', '[':
			if !inString {
				depth++
			}
		case '}', ']':
			if !inString {
				depth--
				if depth == 0 {
					return s[:i+1], s[i+1:], true
				}
			}
		}
	}
	return s, "", false
}

// rawProps keeps user-typed JSON verbatim through serialization.
type rawProps string

func (r rawProps) MarshalJSON() ([]byte, error) { return []byte(r), nil }

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress ctrl+c to quit.", m.err))
	}
	if !m.loaded {
		return "Starting session..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("React Runtime REPL"))
	b.WriteString(" ")
	b.WriteString(statusStyle.Render(m.label))
	idle, created := m.pool.Stats()
	b.WriteString(statusStyle.Render(fmt.Sprintf("  pool %d/%d", idle, created)))
	b.WriteString("\n\n")

	for _, e := range m.log {
		b.WriteString(inputStyle.Render("js> " + e.input))
		b.WriteString("\n")
		if e.failed {
			b.WriteString(errorStyle.Render(e.output))
		} else {
			b.WriteString(resultStyle.Render(e.output))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(":component Name {props} [id] • :init • :quit • ctrl+c quit"))

	return b.String()
}

func runInteractive(p *pool.Pool, cfg runtime.Config) error {
	prog := tea.NewProgram(newInteractiveModel(p, cfg), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
