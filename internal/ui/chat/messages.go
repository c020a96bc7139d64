// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the TUI.
package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/modelschat-tui/internal/app"
	"github.com/jeranaias/modelschat-tui/internal/model"
)

// =============================================================================
// MESSAGES
// =============================================================================

// BootstrapDoneMsg reports the startup fetches (catalog, provider
// config) finishing, with any soft failures to surface.
type BootstrapDoneMsg struct {
	Errors []error
}

// ReplyMsg reports one dispatched turn finishing. The transcript
// already holds the outcome; Err is set when the turn failed.
type ReplyMsg struct {
	Err error
}

// =============================================================================
// COMMANDS
// =============================================================================

// BootstrapCmd runs the startup fetches off the UI loop.
func BootstrapCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		return BootstrapDoneMsg{Errors: a.Bootstrap(context.Background())}
	}
}

// sendCmd dispatches one draft off the UI loop. The busy gate lives in
// the dispatcher; the view also tracks an in-flight flag so the input
// stays responsive but inert.
func sendCmd(a *app.App, draft string) tea.Cmd {
	return func() tea.Msg {
		_, err := a.SendDraft(context.Background(), draft)
		return ReplyMsg{Err: err}
	}
}

// refreshModelsCmd re-runs model discovery for the active provider.
func refreshModelsCmd(a *app.App, provider model.Provider) tea.Cmd {
	return func() tea.Msg {
		err := a.Registry.Refresh(context.Background(), provider)
		return BootstrapDoneMsg{Errors: errSlice(err)}
	}
}

func errSlice(err error) []error {
	if err == nil {
		return nil
	}
	return []error{err}
}
