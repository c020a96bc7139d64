// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the top-level TUI shell: the chat view and the
// document manager, switched with tab.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/modelschat-tui/internal/app"
	"github.com/jeranaias/modelschat-tui/internal/ui/chat"
	"github.com/jeranaias/modelschat-tui/internal/ui/files"
)

// view identifies the active tab.
type view int

const (
	viewChat view = iota
	viewFiles
)

// Model is the root Bubble Tea model.
type Model struct {
	chat   chat.Model
	files  files.Model
	active view
}

// New creates the TUI shell over an assembled app.
func New(a *app.App) Model {
	return Model{
		chat:  chat.New(a),
		files: files.New(a),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.chat.Init(), m.files.Init())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			// The chat textarea wants tab while typing; only switch
			// tabs when the draft is empty or we are on files.
			if m.active == viewFiles || m.chatDraftEmpty() {
				if m.active == viewChat {
					m.active = viewFiles
				} else {
					m.active = viewChat
				}
				return m, nil
			}
		}
		// Other keys go to the active view only.
		var cmd tea.Cmd
		switch m.active {
		case viewChat:
			m.chat, cmd = m.chat.Update(msg)
		case viewFiles:
			m.files, cmd = m.files.Update(msg)
		}
		return m, cmd
	}

	// Everything else (window size, command results, progress events)
	// goes to both views; each ignores what it does not know.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	cmds = append(cmds, cmd)
	m.files, cmd = m.files.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) chatDraftEmpty() bool {
	return m.chat.DraftEmpty()
}

func (m Model) View() string {
	switch m.active {
	case viewFiles:
		return m.files.View()
	default:
		return m.chat.View()
	}
}

// Run starts the TUI.
func Run(a *app.App) error {
	program := tea.NewProgram(New(a), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
