// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package deployui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/caravel-tools/caravel/lib/deploy"
)

// StepMsg wraps a completed deploy step for delivery through the
// bubbletea message loop.
type StepMsg deploy.StepEvent

// DoneMsg signals that the deploy sequence reached a terminal state.
type DoneMsg struct {
	State deploy.State
	Err   error
}

// stepNames is the fixed display order of the deploy sequence.
var stepNames = []string{"pull", "stop", "remove", "run"}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// stepOutcome is the display state of one step row.
type stepOutcome int

const (
	stepPending stepOutcome = iota
	stepActive
	stepDone
	stepAbsent
	stepFailed
)

// Model is the watch display for one deploy session.
type Model struct {
	instance string
	image    string

	spinner  spinner.Model
	outcomes map[string]stepOutcome

	finished bool
	final    deploy.State
	err      error
}

// New returns a watch model for the given instance and image.
func New(instance, image string) Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	outcomes := make(map[string]stepOutcome, len(stepNames))
	for _, name := range stepNames {
		outcomes[name] = stepPending
	}
	outcomes[stepNames[0]] = stepActive

	return Model{
		instance: instance,
		image:    image,
		spinner:  s,
		outcomes: outcomes,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update advances the display on step and completion messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StepMsg:
		name := normalizeStep(msg.Step)
		switch {
		case msg.Err != nil:
			m.outcomes[name] = stepFailed
		case msg.Absent:
			m.outcomes[name] = stepAbsent
		default:
			m.outcomes[name] = stepDone
		}
		if next := nextPending(m.outcomes); next != "" && msg.Err == nil {
			m.outcomes[next] = stepActive
		}
		return m, nil

	case DoneMsg:
		m.finished = true
		m.final = msg.State
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the step list and, once finished, the terminal verdict.
func (m Model) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("deploying %s (%s)", m.instance, m.image)))

	for _, name := range stepNames {
		switch m.outcomes[name] {
		case stepActive:
			fmt.Fprintf(&b, "  %s %s\n", m.spinner.View(), name)
		case stepDone:
			fmt.Fprintf(&b, "  %s %s\n", doneStyle.Render("✓"), name)
		case stepAbsent:
			fmt.Fprintf(&b, "  %s %s %s\n", skipStyle.Render("–"), name, pendingStyle.Render("(nothing to do)"))
		case stepFailed:
			fmt.Fprintf(&b, "  %s %s\n", failStyle.Render("✗"), name)
		default:
			fmt.Fprintf(&b, "  %s %s\n", pendingStyle.Render("·"), pendingStyle.Render(name))
		}
	}

	if m.finished {
		switch {
		case m.final == deploy.StateRunning:
			fmt.Fprintf(&b, "\n%s\n", doneStyle.Render(fmt.Sprintf("%s is running", m.instance)))
		case m.err != nil:
			fmt.Fprintf(&b, "\n%s\n", failStyle.Render(m.err.Error()))
		default:
			fmt.Fprintf(&b, "\n%s\n", failStyle.Render("deploy failed"))
		}
	}

	return b.String()
}

// Err returns the terminal error, if any, after the program exits.
func (m Model) Err() error {
	return m.err
}

// FinalState returns the terminal deploy state after the program exits.
func (m Model) FinalState() deploy.State {
	return m.final
}

// normalizeStep maps engine verb aliases onto display names.
func normalizeStep(step string) string {
	if step == "rm" {
		return "remove"
	}
	return step
}

// nextPending returns the first step still pending, in display order.
func nextPending(outcomes map[string]stepOutcome) string {
	for _, name := range stepNames {
		if outcomes[name] == stepPending {
			return name
		}
	}
	return ""
}
