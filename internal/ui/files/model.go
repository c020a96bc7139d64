// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package files provides the document manager view for the TUI.
package files

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/modelschat-tui/internal/app"
	"github.com/jeranaias/modelschat-tui/internal/assets"
	"github.com/jeranaias/modelschat-tui/internal/ui/styles"
	"github.com/jeranaias/modelschat-tui/internal/util"
)

// mode is the view's input mode.
type mode int

const (
	modeBrowse  mode = iota
	modeUpload       // entering a path to upload
	modeConfirm      // confirming a delete
)

// =============================================================================
// MESSAGES
// =============================================================================

// RefreshedMsg reports a list refresh finishing.
type RefreshedMsg struct{ Err error }

// uploadDoneMsg reports an upload finishing (the list is already
// refreshed by the manager on success).
type uploadDoneMsg struct{ Err error }

// deleteDoneMsg reports a delete finishing.
type deleteDoneMsg struct{ Err error }

// progressMsg carries one upload progress event into the UI loop.
type progressMsg assets.ProgressEvent

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the document manager.
type Model struct {
	app *app.App

	cursor int
	mode   mode

	pathInput textinput.Model
	bar       progress.Model

	// Upload progress; events arrive from the manager's sink.
	events     chan assets.ProgressEvent
	uploadPct  int
	uploadName string
	uploading  bool

	width     int
	height    int
	statusMsg string
}

// New creates the document manager view and hooks the manager's
// progress sink into the UI loop.
func New(a *app.App) Model {
	input := textinput.New()
	input.Placeholder = "path to upload"

	events := make(chan assets.ProgressEvent, 64)
	a.Assets.OnProgress(func(ev assets.ProgressEvent) {
		select {
		case events <- ev:
		default: // drop rather than block the upload
		}
	})

	return Model{
		app:       a,
		pathInput: input,
		bar:       progress.New(progress.WithDefaultGradient()),
		events:    events,
	}
}

// Init triggers the first list fetch and starts the progress listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(refreshCmd(m.app), m.waitForProgress())
}

// =============================================================================
// COMMANDS
// =============================================================================

func refreshCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		return RefreshedMsg{Err: a.Assets.Refresh(context.Background())}
	}
}

func uploadCmd(a *app.App, path string) tea.Cmd {
	return func() tea.Msg {
		_, err := a.Assets.Upload(context.Background(), path)
		return uploadDoneMsg{Err: err}
	}
}

func deleteCmd(a *app.App, id string) tea.Cmd {
	return func() tea.Msg {
		return deleteDoneMsg{Err: a.Assets.Delete(context.Background(), id)}
	}
}

// waitForProgress blocks on the next progress event.
func (m Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		return progressMsg(<-m.events)
	}
}

// =============================================================================
// UPDATE
// =============================================================================

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = m.width - 20
		m.pathInput.Width = m.width - 10

	case RefreshedMsg:
		if msg.Err != nil {
			m.statusMsg = msg.Err.Error()
		}
		m.clampCursor()

	case uploadDoneMsg:
		m.uploading = false
		if msg.Err != nil {
			m.statusMsg = "upload failed: " + msg.Err.Error()
			m.uploadPct = 0
		} else {
			m.statusMsg = "uploaded " + m.uploadName
		}
		m.clampCursor()

	case deleteDoneMsg:
		if msg.Err != nil {
			m.statusMsg = "delete failed: " + msg.Err.Error()
		} else {
			m.statusMsg = "deleted"
		}
		m.clampCursor()

	case progressMsg:
		m.uploadName = msg.Name
		m.uploadPct = msg.Percent
		return m, m.waitForProgress()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeUpload:
		switch msg.String() {
		case "enter":
			path := strings.TrimSpace(m.pathInput.Value())
			m.mode = modeBrowse
			m.pathInput.Reset()
			m.pathInput.Blur()
			if path == "" {
				return m, nil
			}
			m.uploading = true
			m.uploadPct = 0
			return m, uploadCmd(m.app, path)
		case "esc":
			m.mode = modeBrowse
			m.pathInput.Reset()
			m.pathInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd

	case modeConfirm:
		switch msg.String() {
		case "y", "Y":
			m.mode = modeBrowse
			if id := m.selectedID(); id != "" {
				return m, deleteCmd(m.app, id)
			}
		default:
			// Anything but an explicit yes keeps the document.
			m.mode = modeBrowse
			m.statusMsg = "delete cancelled"
		}
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.app.Assets.Assets())-1 {
			m.cursor++
		}
	case "r":
		return m, refreshCmd(m.app)
	case "u":
		m.mode = modeUpload
		m.pathInput.Focus()
		return m, textinput.Blink
	case "d", "delete":
		if m.selectedID() != "" {
			m.mode = modeConfirm
		}
	}
	return m, nil
}

func (m *Model) selectedID() string {
	list := m.app.Assets.Assets()
	if m.cursor < 0 || m.cursor >= len(list) {
		return ""
	}
	return list[m.cursor].ID
}

func (m *Model) clampCursor() {
	n := len(m.app.Assets.Assets())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// =============================================================================
// VIEW
// =============================================================================

var (
	titleStyle    = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(styles.TextMuted)
	dangerStyle   = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Documents") + "\n\n")

	list := m.app.Assets.Assets()
	if len(list) == 0 {
		b.WriteString(mutedStyle.Render("no documents · press u to upload") + "\n")
	}
	for i, f := range list {
		line := fmt.Sprintf("%-40s %10s  %s",
			util.TruncateRunes(f.OriginalName, 40),
			f.FormattedSize,
			f.UploadedAt.Format("2006-01-02"))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	if stats := m.app.Assets.Stats(); stats != nil {
		b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("%d files · %s", stats.TotalFiles, stats.TotalSize)) + "\n")
	}

	if m.uploading || m.uploadPct > 0 && m.uploadPct < 100 {
		b.WriteString("\n" + mutedStyle.Render(m.uploadName) + " " + m.bar.ViewAs(float64(m.uploadPct)/100) + "\n")
	}

	switch m.mode {
	case modeUpload:
		b.WriteString("\n" + m.pathInput.View() + "\n")
	case modeConfirm:
		name := ""
		if id := m.selectedID(); id != "" {
			name = list[m.cursor].OriginalName
		}
		b.WriteString("\n" + dangerStyle.Render("Delete "+name+"? (y/N)") + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n" + mutedStyle.Render(m.statusMsg) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("u upload · d delete · r refresh · tab chat · ctrl+c quit"))
	return b.String()
}
