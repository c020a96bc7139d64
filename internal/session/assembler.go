// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"strings"

	"github.com/jeranaias/modelschat-tui/internal/model"
)

// defaultCustomModel is used for the custom provider when the backend
// did not report a default.
const defaultCustomModel = "qwen2:0.5b"

// ErrEmptyDraft indicates the draft was empty after trimming. Callers
// treat it as a no-op, not a failure to display.
var ErrEmptyDraft = errors.New("draft is empty")

// ValidateDraft trims the draft and rejects empty input. The returned
// string is what goes on the wire and into the transcript.
func ValidateDraft(draft string) (string, error) {
	trimmed := strings.TrimSpace(draft)
	if trimmed == "" {
		return "", ErrEmptyDraft
	}
	return trimmed, nil
}

// =============================================================================
// ASSEMBLER
// =============================================================================

// ModelSource resolves the active model for a provider. The registry
// implements it.
type ModelSource interface {
	ActiveModel(provider model.Provider) string
}

// Assembler turns session state into outgoing request payloads. Build
// windows the transcript as it stands and appends the new user turn
// itself; callers append to the transcript only after building, so the
// new turn never counts against the window.
type Assembler struct {
	models        ModelSource
	customDefault string
}

// NewAssembler creates an assembler. customDefault is the backend's
// reported default model for the custom provider; empty falls back to
// a built-in.
func NewAssembler(models ModelSource, customDefault string) *Assembler {
	return &Assembler{models: models, customDefault: customDefault}
}

// SetCustomDefault updates the custom provider's default model after a
// config reload.
func (a *Assembler) SetCustomDefault(name string) {
	a.customDefault = name
}

// Build assembles the payload for one outgoing turn: the trailing
// message window of the prior transcript with error entries removed,
// the new user turn appended last, the resolved model for the active
// provider, and the system prompt when the toggle is on and the text
// is non-blank. Toggled off, or blank, the field is omitted from the
// wire entirely; when sent, it is sent trimmed.
func (a *Assembler) Build(st *State, newText string) model.RequestPayload {
	provider := st.Provider()

	payload := model.RequestPayload{
		Provider: provider,
		Model:    a.resolveModel(provider),
		UseRAG:   st.UseRAG(),
	}

	window := st.Window()
	payload.Messages = make([]model.ChatTurn, 0, len(window)+1)
	for _, msg := range window {
		payload.Messages = append(payload.Messages, model.ChatTurn{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	payload.Messages = append(payload.Messages, model.ChatTurn{
		Role:    string(model.RoleUser),
		Content: newText,
	})

	if prompt := strings.TrimSpace(st.SystemPrompt()); st.UseSystemPrompt() && prompt != "" {
		payload.SystemPrompt = prompt
	}
	return payload
}

func (a *Assembler) resolveModel(provider model.Provider) string {
	if provider == model.ProviderCustom {
		if a.customDefault != "" {
			return a.customDefault
		}
		return defaultCustomModel
	}
	return a.models.ActiveModel(provider)
}
