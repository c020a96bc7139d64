// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// REQUEST PAYLOAD
// =============================================================================

// ChatTurn is one windowed message as it appears on the wire.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RequestPayload is the provider-agnostic request assembled for one user
// turn. It serializes directly as the backend /api/chat body; the direct
// Gemini sender translates it to the generateContent shape.
//
// SystemPrompt carries the iff-contract from the assembler: it is set
// only when the system-context toggle is on and the trimmed text is
// non-empty, and omitempty keeps an unset prompt off the wire entirely
// (omission, not an empty string).
type RequestPayload struct {
	Provider     Provider   `json:"provider"`
	Model        string     `json:"model"`
	Messages     []ChatTurn `json:"messages"`
	SystemPrompt string     `json:"systemPrompt,omitempty"`
	UseRAG       bool       `json:"useRag"`
}

// =============================================================================
// CANONICAL RESULT
// =============================================================================

// ChatResult is the canonical record produced for every successful turn,
// regardless of which provider dialect answered.
type ChatResult struct {
	Content        string
	Model          string
	PromptTokens   int
	ResponseTokens int
	TotalTokens    int
	Sources        []Source
}

// =============================================================================
// PROVIDER CONFIG
// =============================================================================

// ProviderConfig describes the backend's view of the custom server:
// whether it is configured at all and which model it serves by default.
// Loaded once at startup from GET /api/chat/config; read-only afterwards
// except for an explicit reload.
type ProviderConfig struct {
	CustomServerConfigured bool   `json:"customServerConfigured"`
	DefaultCustomModel     string `json:"defaultCustomModel"`
}
