// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the conversation state for one chat session and
// assembles outgoing request payloads from it.
package session

import (
	"sync"

	"github.com/jeranaias/modelschat-tui/internal/model"
)

// WindowSize is the number of trailing transcript entries considered
// when assembling a request. Older history is context the providers
// never see.
const WindowSize = 10

// =============================================================================
// STATE
// =============================================================================

// State is the mutable conversation state: the transcript plus the
// toggles that shape outgoing requests. Safe for concurrent use.
type State struct {
	mu sync.Mutex

	messages        []model.Message
	provider        model.Provider
	systemPrompt    string
	useSystemPrompt bool
	useRAG          bool
}

// NewState creates a session targeting the given provider.
func NewState(provider model.Provider) *State {
	return &State{provider: provider}
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Append adds one message to the transcript. Error entries belong here
// too; they are visible in the transcript but excluded from assembled
// requests.
func (s *State) Append(msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of the full transcript.
func (s *State) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the transcript length.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Reset clears the transcript. Toggles and provider survive.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// Window returns the request-eligible slice of the transcript: the last
// WindowSize entries with error entries removed. The cut happens before
// the filter, so errors inside the window shrink it rather than pull
// older history back in.
func (s *State) Window() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return windowOf(s.messages)
}

func windowOf(messages []model.Message) []model.Message {
	start := 0
	if len(messages) > WindowSize {
		start = len(messages) - WindowSize
	}
	out := make([]model.Message, 0, WindowSize)
	for _, msg := range messages[start:] {
		if msg.Role.Dialogue() {
			out = append(out, msg)
		}
	}
	return out
}

// =============================================================================
// TOGGLES
// =============================================================================

// Provider returns the session's current provider.
func (s *State) Provider() model.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provider
}

// SetProvider switches the session to another provider. The transcript
// is untouched; history carries across providers.
func (s *State) SetProvider(p model.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = p
}

// SystemPrompt returns the configured system prompt text.
func (s *State) SystemPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.systemPrompt
}

// SetSystemPrompt stores the system prompt text. Whether it is sent is
// governed separately by SetUseSystemPrompt.
func (s *State) SetSystemPrompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systemPrompt = text
}

// UseSystemPrompt reports whether the system prompt toggle is on.
func (s *State) UseSystemPrompt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.useSystemPrompt
}

// SetUseSystemPrompt flips the system prompt toggle.
func (s *State) SetUseSystemPrompt(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.useSystemPrompt = on
}

// UseRAG reports whether retrieval is requested on outgoing turns.
func (s *State) UseRAG() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.useRAG
}

// SetUseRAG flips the retrieval toggle.
func (s *State) SetUseRAG(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.useRAG = on
}
