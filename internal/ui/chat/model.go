// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/modelschat-tui/internal/app"
	"github.com/jeranaias/modelschat-tui/internal/model"
	"github.com/jeranaias/modelschat-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	app *app.App

	// UI components
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	// Dimensions
	width  int
	height int
	ready  bool

	// In-flight state; mirrors the dispatcher's busy gate for display
	waiting bool

	statusMsg string
}

// New creates the chat view.
func New(a *app.App) Model {
	input := textarea.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 0
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Cyan)

	return Model{
		app:     a,
		input:   input,
		spinner: sp,
	}
}

// Init starts the spinner and the startup fetches.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textarea.Blink, BootstrapCmd(m.app))
}

// =============================================================================
// UPDATE
// =============================================================================

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshTranscript()

	case BootstrapDoneMsg:
		if len(msg.Errors) > 0 {
			m.statusMsg = msg.Errors[0].Error()
		} else {
			m.statusMsg = ""
		}

	case ReplyMsg:
		m.waiting = false
		m.refreshTranscript()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if cmd := m.send(); cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		case "ctrl+r":
			m.app.State.SetUseRAG(!m.app.State.UseRAG())
		case "ctrl+p":
			cmds = append(cmds, m.switchProvider())
		case "ctrl+k":
			m.app.State.Reset()
			m.refreshTranscript()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// send validates and dispatches the current draft. While a turn is in
// flight the draft stays in the input untouched.
func (m *Model) send() tea.Cmd {
	if m.waiting || m.app.Dispatcher.Busy() {
		m.statusMsg = "waiting for the previous reply"
		return nil
	}
	draft := m.input.Value()
	if strings.TrimSpace(draft) == "" {
		return nil
	}
	m.input.Reset()
	m.waiting = true
	m.statusMsg = ""
	// Show the user turn immediately; SendDraft appends it again off
	// the UI loop, so render from the draft here instead.
	m.refreshTranscriptWithDraft(draft)
	return sendCmd(m.app, draft)
}

// DraftEmpty reports whether the input holds no text. The shell uses
// it to decide whether tab switches views or edits the draft.
func (m Model) DraftEmpty() bool {
	return strings.TrimSpace(m.input.Value()) == ""
}

// switchProvider flips between the two providers and refreshes the
// catalog for the newly active one.
func (m *Model) switchProvider() tea.Cmd {
	next := model.ProviderCustom
	if m.app.State.Provider() == model.ProviderCustom {
		next = model.ProviderGemini
	}
	m.app.State.SetProvider(next)
	return refreshModelsCmd(m.app, next)
}
