// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/modelschat-tui/internal/model"
	"github.com/jeranaias/modelschat-tui/internal/ui/styles"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	userStyle   = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(styles.Rose)
	statStyle   = lipgloss.NewStyle().Foreground(styles.TextMuted)
	inputFrame  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.Surface)
)

// layout sizes the viewport and input to the window.
func (m *Model) layout() {
	inputHeight := 5 // textarea plus frame
	headerHeight := 2
	footerHeight := 1
	vpHeight := m.height - inputHeight - headerHeight - footerHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(m.width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}
	m.input.SetWidth(m.width - 4)
}

// refreshTranscript re-renders the full transcript into the viewport.
func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.renderTranscript(""))
	m.viewport.GotoBottom()
}

// refreshTranscriptWithDraft renders the transcript plus a user turn
// that is in flight but not yet appended to the session.
func (m *Model) refreshTranscriptWithDraft(draft string) {
	m.viewport.SetContent(m.renderTranscript(draft))
	m.viewport.GotoBottom()
}

func (m *Model) renderTranscript(pendingDraft string) string {
	width := m.width - 2
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	for _, msg := range m.app.State.Messages() {
		b.WriteString(m.renderMessage(msg, width))
		b.WriteString("\n")
	}
	if pendingDraft != "" {
		b.WriteString(userStyle.Render("you") + "\n" + strings.TrimSpace(pendingDraft) + "\n")
	}
	return b.String()
}

func (m *Model) renderMessage(msg model.Message, width int) string {
	switch msg.Role {
	case model.RoleUser:
		return userStyle.Render("you") + "\n" + msg.Content + "\n"
	case model.RoleError:
		return errorStyle.Render(msg.Content) + "\n"
	default:
		body := msg.Content
		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
		if err == nil {
			if rendered, err := renderer.Render(body); err == nil {
				body = strings.TrimRight(rendered, "\n") + "\n"
			}
		}
		out := headerStyle.Render("assistant") + "\n" + body
		if msg.Stats != nil {
			out += statStyle.Render(fmt.Sprintf("%s · %d tokens", msg.Stats.Model, msg.Stats.TotalTokens)) + "\n"
		}
		if len(msg.Sources) > 0 {
			lines := make([]string, 0, len(msg.Sources)+1)
			lines = append(lines, "sources:")
			for _, src := range msg.Sources {
				lines = append(lines, "  "+src.Label())
			}
			out += statStyle.Render(strings.Join(lines, "\n")) + "\n"
		}
		return out
	}
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	provider := m.app.State.Provider()
	activeModel := m.activeModelLabel()

	header := headerStyle.Render("modelschat") + statStyle.Render(
		fmt.Sprintf("  %s · %s%s", provider.DisplayName(), activeModel, m.toggleBadges()))

	footer := m.statusLine()

	return header + "\n\n" +
		m.viewport.View() + "\n" +
		inputFrame.Render(m.input.View()) + "\n" +
		footer
}

func (m Model) activeModelLabel() string {
	if m.app.State.Provider() == model.ProviderCustom {
		return "server default"
	}
	return m.app.Registry.ActiveModel(model.ProviderGemini)
}

func (m Model) toggleBadges() string {
	var badges []string
	if m.app.State.UseRAG() {
		badges = append(badges, "rag")
	}
	if m.app.State.UseSystemPrompt() && strings.TrimSpace(m.app.State.SystemPrompt()) != "" {
		badges = append(badges, "sys")
	}
	if len(badges) == 0 {
		return ""
	}
	return " [" + strings.Join(badges, " ") + "]"
}

func (m Model) statusLine() string {
	if m.waiting {
		return m.spinner.View() + statStyle.Render(" thinking...")
	}
	if m.statusMsg != "" {
		return errorStyle.Render(m.statusMsg)
	}
	return statStyle.Render("enter send · ctrl+r rag · ctrl+p provider · ctrl+k clear · tab files · ctrl+c quit")
}
