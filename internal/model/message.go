// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// =============================================================================
// PROVIDER TYPE
// =============================================================================

// Provider identifies which backend serves a conversation turn.
type Provider string

const (
	// ProviderGemini is the managed Google Gemini provider.
	ProviderGemini Provider = "gemini"

	// ProviderCustom is the self-hosted model server, reached through
	// the backend proxy.
	ProviderCustom Provider = "custom"
)

// String returns the wire identifier of the provider.
func (p Provider) String() string {
	return string(p)
}

// DisplayName returns a human-readable name for the provider.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderGemini:
		return "Google Gemini"
	case ProviderCustom:
		return "My Server"
	default:
		return string(p)
	}
}

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"

	// RoleError marks a display-only entry recording a failed turn.
	// Error messages are never included in a request payload.
	RoleError Role = "error"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "AI"
	case RoleSystem:
		return "System"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// Dialogue reports whether the role is a genuine dialogue turn.
// Error entries are UI artifacts, not conversation content.
func (r Role) Dialogue() bool {
	return r != RoleError
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in the conversation log. Messages are
// immutable once created: the session appends them and never edits.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Stats carries token usage for assistant messages when the
	// backend reported it.
	Stats *TokenStats `json:"stats,omitempty"`

	// Sources lists grounding documents for assistant messages when
	// retrieval was used.
	Sources []Source `json:"sources,omitempty"`
}

// NewMessage creates a message with a generated ID and current timestamp.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an assistant message from a chat result,
// carrying the result's stats and sources for display.
func NewAssistantMessage(result *ChatResult) Message {
	msg := NewMessage(RoleAssistant, result.Content)
	msg.Stats = &TokenStats{
		Model:          result.Model,
		PromptTokens:   result.PromptTokens,
		ResponseTokens: result.ResponseTokens,
		TotalTokens:    result.TotalTokens,
	}
	msg.Sources = result.Sources
	return msg
}

// NewErrorMessage creates a display-only error entry.
func NewErrorMessage(detail string) Message {
	return NewMessage(RoleError, "Error: "+detail)
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// TOKEN STATISTICS
// =============================================================================

// TokenStats holds the usage numbers a backend reported for one turn.
// Counts default to zero when the backend does not report usage.
type TokenStats struct {
	Model          string `json:"model"`
	PromptTokens   int    `json:"promptTokens"`
	ResponseTokens int    `json:"responseTokens"`
	TotalTokens    int    `json:"totalTokens"`
}

// =============================================================================
// GROUNDING SOURCES
// =============================================================================

// Source names a document that grounded an assistant reply. Similarity
// is an optional 0-1 fraction; it is kept raw here, rounding to a
// percentage is a display concern.
type Source struct {
	Document   string   `json:"document"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// Label renders the source for display, the similarity fraction rounded
// to a whole percentage. The stored fraction stays raw.
func (s Source) Label() string {
	if s.Similarity == nil {
		return s.Document
	}
	return fmt.Sprintf("%s (%d%%)", s.Document, int(math.Round(*s.Similarity*100)))
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
