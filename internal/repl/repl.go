// Package repl implements the interactive Read-Eval-Print Loop for
// this Lisp-to-Piet lowering compiler. It uses the Charm libraries
// (Bubbletea, Bubbles, Lipgloss) for a modern terminal interface with
// syntax highlighting, multiline entry, and a persistent top-level
// environment across commands.
package repl

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cjayross/pietc/internal/compiler"
	"github.com/cjayross/pietc/internal/env"
	"github.com/cjayross/pietc/internal/lexer"
	"github.com/cjayross/pietc/internal/painter"
	"github.com/cjayross/pietc/internal/sexpr"
	"github.com/cjayross/pietc/internal/sim"
	"github.com/cjayross/pietc/internal/token"
	"github.com/cjayross/pietc/internal/tracelog"
)

const (
	// Prompt is the default prompt for the REPL.
	Prompt = "pietc> "
	// ContPrompt is shown while a form's parentheses are unbalanced.
	ContPrompt = "  ...> "
)

// Options configures the REPL's behaviour.
type Options struct {
	NoColor bool
	Debug   bool
	// Paint toggles the supplemental terminal codel-strip visualizer
	// after every evaluated submission.
	Paint bool
	Log   *tracelog.Logger
}

// Start initializes and runs the REPL with the given options.
func Start(options Options) {
	p := tea.NewProgram(initialModel(options))
	if _, err := p.Run(); err != nil {
		fmt.Println("Error running program:", err)
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87"))

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	symbolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF79C6")).
			Bold(true)

	integerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	parenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BD93F9"))
)

type evalResultMsg struct {
	output  string
	isError bool
	elapsed time.Duration
}

type historyEntry struct {
	input          string
	output         string
	isError        bool
	evaluationTime time.Duration
}

type model struct {
	textInput       textinput.Model
	history         []historyEntry
	topEnv          *env.Environment
	evaluating      bool
	currentInput    string
	multilineBuffer string
	isMultiline     bool
	spinner         spinner.Model
	options         Options
}

func initialModel(options Options) model {
	ti := textinput.New()
	ti.Placeholder = "(+ 1 2)"
	ti.Focus()
	ti.Width = 80
	ti.Prompt = promptStyle.Render(Prompt)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return model{
		textInput: ti,
		topEnv:    compiler.NewTopLevel(),
		spinner:   s,
		options:   options,
	}
}

func (m model) applyStyle(style lipgloss.Style, text string) string {
	if m.options.NoColor {
		return text
	}
	return style.Render(text)
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// isBalanced reports whether every `(` in input is closed: this
// grammar has only one bracket kind, so the check is a plain depth
// counter rather than the teacher's multi-bracket stack.
func isBalanced(input string) bool {
	depth := 0
	for _, ch := range input {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

func evalCmd(input string, topEnv *env.Environment, options Options) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		l := lexer.New(input)
		p := sexpr.New(l)
		forms := p.ParseProgram()

		if errs := p.Errors(); len(errs) > 0 {
			return evalResultMsg{
				output:  "parse error: " + strings.Join(errs, "; "),
				isError: true,
				elapsed: time.Since(start),
			}
		}

		unit := compiler.NewCompilationUnit(options.Log)
		prog, err := unit.Run(forms, topEnv)
		if err != nil {
			return evalResultMsg{output: "compile error: " + err.Error(), isError: true, elapsed: time.Since(start)}
		}

		s := sim.New(unit)
		if err := s.Run(prog); err != nil {
			return evalResultMsg{output: "runtime error: " + err.Error(), isError: true, elapsed: time.Since(start)}
		}

		stack := s.Stack()
		output := fmt.Sprintf("%v", stack)
		if options.Paint {
			output += "\n" + painter.RenderSequence(prog)
		}

		return evalResultMsg{output: output, elapsed: time.Since(start)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.evaluating {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case evalResultMsg:
		m.evaluating = false
		m.history = append(m.history, historyEntry{
			input:          m.currentInput,
			output:         msg.output,
			isError:        msg.isError,
			evaluationTime: msg.elapsed,
		})
		m.currentInput = ""
		return m, nil

	case tea.KeyMsg:
		if m.evaluating && msg.Type != tea.KeyCtrlC {
			return m, m.spinner.Tick
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEnter:
			input := m.textInput.Value()
			if input == "" {
				if m.isMultiline && m.multilineBuffer != "" {
					m.evaluating = true
					m.currentInput = m.multilineBuffer
					m.textInput.SetValue("")
					m.isMultiline = false
					buffer := m.multilineBuffer
					m.multilineBuffer = ""
					return m, evalCmd(buffer, m.topEnv, m.options)
				}
				return m, nil
			}

			if m.isMultiline {
				m.multilineBuffer += "\n" + input
				m.textInput.SetValue("")
				if isBalanced(m.multilineBuffer) {
					m.evaluating = true
					m.currentInput = m.multilineBuffer
					m.isMultiline = false
					buffer := m.multilineBuffer
					m.multilineBuffer = ""
					return m, evalCmd(buffer, m.topEnv, m.options)
				}
				return m, nil
			}

			if !isBalanced(input) {
				m.isMultiline = true
				m.multilineBuffer = input
				m.textInput.SetValue("")
				return m, nil
			}

			m.evaluating = true
			m.currentInput = input
			m.textInput.SetValue("")
			return m, evalCmd(input, m.topEnv, m.options)
		}
	}

	if !m.evaluating {
		m.textInput, cmd = m.textInput.Update(msg)
	}
	if m.evaluating {
		return m, m.spinner.Tick
	}
	return m, cmd
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(m.applyStyle(titleStyle, " pietc REPL "))
	s.WriteString("\n\n")

	for _, entry := range m.history {
		lines := strings.Split(entry.input, "\n")
		for i, line := range lines {
			if i == 0 {
				s.WriteString(m.applyStyle(promptStyle, Prompt))
			} else {
				s.WriteString(m.applyStyle(promptStyle, ContPrompt))
			}
			s.WriteString(m.highlight(line))
			s.WriteString("\n")
		}

		if entry.isError {
			s.WriteString(m.applyStyle(errorStyle, entry.output))
		} else {
			s.WriteString(m.applyStyle(resultStyle, entry.output))
		}

		if entry.evaluationTime > 10*time.Millisecond {
			s.WriteString(m.applyStyle(historyStyle, fmt.Sprintf(" (%.2fs)", entry.evaluationTime.Seconds())))
		}
		s.WriteString("\n\n")
	}

	if m.evaluating {
		s.WriteString(m.applyStyle(promptStyle, Prompt))
		s.WriteString(m.highlight(m.currentInput))
		s.WriteString("\n")
		s.WriteString(m.spinner.View())
		s.WriteString(" evaluating...\n\n")
	}

	if m.isMultiline && !m.evaluating {
		s.WriteString(m.applyStyle(historyStyle, "current multiline input:\n"))
		s.WriteString(m.highlight(m.multilineBuffer))
		s.WriteString("\n")
	}

	if !m.evaluating {
		if m.isMultiline {
			m.textInput.Prompt = m.applyStyle(promptStyle, ContPrompt)
		} else {
			m.textInput.Prompt = m.applyStyle(promptStyle, Prompt)
		}
		s.WriteString(m.textInput.View())
		s.WriteString("\n")
	}

	s.WriteString(m.applyStyle(historyStyle, "\nEsc/Ctrl+C/Ctrl+D to exit · unbalanced parens enter multiline mode"))

	return s.String()
}

// highlight applies syntax highlighting to a line of source.
func (m model) highlight(line string) string {
	if m.options.NoColor {
		return line
	}
	l := lexer.New(line)
	var s strings.Builder
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		switch tok.Type {
		case token.LPAREN, token.RPAREN, token.QUOTE:
			s.WriteString(parenStyle.Render(tok.Literal))
		case token.SYMBOL:
			s.WriteString(symbolStyle.Render(tok.Literal))
		case token.INTEGER, token.BOOL, token.CHAR, token.NIL:
			s.WriteString(integerStyle.Render(tok.Literal))
		default:
			s.WriteString(tok.Literal)
		}
		s.WriteString(" ")
	}
	return strings.TrimRight(s.String(), " ")
}
