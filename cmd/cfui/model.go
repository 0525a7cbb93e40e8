package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode represents the shell state
type Mode int

const (
	ModeReady   Mode = iota // Accepting input
	ModeRunning             // Command executing, spinner visible
)

// shellState holds mutable state shared between model and program.
type shellState struct {
	nav     *Navigator
	history *History

	spinnerLabel string
	cancel       context.CancelFunc
}

// model is the bubbletea model for the inline shell
type model struct {
	state   *shellState
	input   textinput.Model
	spinner spinner.Model
	mode    Mode

	lastInput string

	completions   []string // full-line completions matching current input
	completionIdx int      // -1 = not cycling, 0+ = highlighted index
}

func newModel(state *shellState) model {
	ti := textinput.New()
	ti.Prompt = prompt(state.nav)
	ti.Focus()
	ti.CharLimit = 512
	ti.ShowSuggestions = true

	// Tab/Shift+Tab cycle the menu; Right accepts ghost text.
	ti.KeyMap.AcceptSuggestion = key.NewBinding(key.WithKeys("right"))
	ti.KeyMap.NextSuggestion.SetEnabled(false)
	ti.KeyMap.PrevSuggestion.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		state:         state,
		input:         ti,
		spinner:       sp,
		mode:          ModeReady,
		completionIdx: -1,
	}
	m.updateSuggestions()
	return m
}

func prompt(nav *Navigator) string {
	return promptPathStyle.Render(nav.location()) + "> "
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == ModeRunning {
			return m.handleRunningKey(msg)
		}
		return m.handleReadyKey(msg)

	case commandResultMsg:
		return m.handleCommandResult(msg)

	case progressMsg:
		m.state.spinnerLabel = msg.label
		return m, nil

	case reportMsg:
		return m, tea.Println(msg.line)

	case spinner.TickMsg:
		// View() only shows the spinner in ModeRunning.
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) handleReadyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab:
		return m.handleTab(), nil

	case tea.KeyShiftTab:
		return m.handleShiftTab(), nil

	case tea.KeyEscape:
		if m.completionIdx >= 0 {
			m.completionIdx = -1
			m.syncGhostText()
		}
		return m, nil

	case tea.KeyEnter:
		if m.completionIdx >= 0 && m.completionIdx < len(m.completions) {
			return m.acceptCompletion(), nil
		}

		line := strings.TrimSpace(m.input.Value())
		if line == "" {
			return m, tea.Println(m.input.Prompt)
		}

		echo := m.input.Prompt + line

		m.state.history.Add(line)
		m.input.SetValue("")
		m.lastInput = ""
		m.completionIdx = -1
		m.updateSuggestions()

		if line == "clear" {
			return m, tea.ClearScreen
		}

		parts := strings.Fields(line)
		ctx, cancel := context.WithCancel(context.Background())
		m.state.cancel = cancel
		m.mode = ModeRunning
		m.state.spinnerLabel = ""
		return m, tea.Batch(tea.Println(echo), executeCommandAsync(ctx, m.state.nav, parts[0], parts[1:]))

	case tea.KeyCtrlL:
		return m, tea.ClearScreen

	case tea.KeyCtrlC:
		if m.completionIdx >= 0 {
			m.completionIdx = -1
			m.syncGhostText()
			return m, nil
		}
		if m.input.Value() != "" {
			m.input.SetValue("")
			m.lastInput = ""
			m.updateSuggestions()
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.KeyUp:
		m.completionIdx = -1
		if entry, ok := m.state.history.Up(m.input.Value()); ok {
			m.setInput(entry)
		}
		return m, nil

	case tea.KeyDown:
		m.completionIdx = -1
		if entry, ok := m.state.history.Down(); ok {
			m.setInput(entry)
		}
		return m, nil

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if current := m.input.Value(); current != m.lastInput {
			m.lastInput = current
			m.updateSuggestions()
		}
		return m, cmd
	}
}

// handleRunningKey cancels the running command on Ctrl+C
func (m model) handleRunningKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC && m.state.cancel != nil {
		m.state.cancel()
		m.state.spinnerLabel = "Cancelling..."
	}
	return m, nil
}

func (m model) handleCommandResult(msg commandResultMsg) (tea.Model, tea.Cmd) {
	var output string
	if msg.err != nil {
		output = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
	} else {
		output = msg.output
	}

	if m.state.cancel != nil {
		m.state.cancel()
		m.state.cancel = nil
	}
	m.mode = ModeReady
	m.input.Prompt = prompt(m.state.nav)
	m.input.Focus()
	m.state.spinnerLabel = ""
	m.updateSuggestions()

	if output != "" {
		return m, tea.Println(output)
	}
	return m, nil
}

func (m *model) setInput(value string) {
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.lastInput = value
	m.updateSuggestions()
}

// handleTab cycles forward through completions
func (m model) handleTab() model {
	if len(m.completions) == 0 {
		return m
	}
	if len(m.completions) == 1 {
		m.setInput(m.completions[0])
		return m
	}
	m.completionIdx = (m.completionIdx + 1) % len(m.completions)
	m.syncGhostText()
	return m
}

// handleShiftTab cycles backward through completions
func (m model) handleShiftTab() model {
	if len(m.completions) <= 1 || m.completionIdx < 0 {
		return m
	}
	m.completionIdx--
	if m.completionIdx < 0 {
		m.completionIdx = len(m.completions) - 1
	}
	m.syncGhostText()
	return m
}

// acceptCompletion fills the selected completion into the input
func (m model) acceptCompletion() model {
	if m.completionIdx < 0 || m.completionIdx >= len(m.completions) {
		return m
	}
	m.setInput(m.completions[m.completionIdx])
	return m
}

// syncGhostText shows only the highlighted completion as ghost text
func (m *model) syncGhostText() {
	if m.completionIdx >= 0 && m.completionIdx < len(m.completions) {
		m.input.SetSuggestions([]string{m.completions[m.completionIdx]})
	} else if m.input.Value() == "" {
		m.input.SetSuggestions(nil)
	} else {
		m.input.SetSuggestions(m.completions)
	}
}

// updateSuggestions recomputes suggestions for the current input
func (m *model) updateSuggestions() {
	m.completions = computeSuggestions(m.state.nav, m.input.Value())
	m.completionIdx = -1
	if m.input.Value() == "" {
		m.input.SetSuggestions(nil)
	} else {
		m.input.SetSuggestions(m.completions)
	}
}

// completionMenuDisplay extracts the last argument of a full-line completion
func completionMenuDisplay(c string) string {
	words := strings.Fields(c)
	if len(words) > 1 {
		return words[len(words)-1]
	}
	return c
}

func (m model) renderCompletionMenu() string {
	labels := make([]string, len(m.completions))
	for i, c := range m.completions {
		labels[i] = completionMenuDisplay(c)
	}
	return formatCompletionColumns(labels, m.completionIdx)
}

// View renders only the prompt line (inline mode)
func (m model) View() string {
	if m.mode == ModeRunning {
		label := m.state.spinnerLabel
		if label == "" {
			label = "Running..."
		}
		return m.spinner.View() + " " + label
	}

	v := m.input.View()
	if len(m.completions) > 1 && (m.input.Value() != "" || m.completionIdx >= 0) {
		// Trailing space keeps the inline renderer from skipping this line.
		v += " \n" + m.renderCompletionMenu()
	}
	return v
}
