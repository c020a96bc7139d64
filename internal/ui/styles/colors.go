// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles defines the shared color palette and text styles for
// the TUI and the CLI output.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PALETTE
// =============================================================================

var (
	Purple  = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	Cyan    = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}
	Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
	Rose    = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}
	Amber   = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

	Surface       = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"}
	TextPrimary   = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#9CA3AF"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}
)

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// Title renders section headers.
	Title = lipgloss.NewStyle().Foreground(Purple).Bold(true)

	// Label renders field names in detail views.
	Label = lipgloss.NewStyle().Foreground(TextSecondary)

	// Value renders field values.
	Value = lipgloss.NewStyle().Foreground(TextPrimary)

	// Success renders confirmations.
	Success = lipgloss.NewStyle().Foreground(Emerald)

	// Warning renders cautions.
	Warning = lipgloss.NewStyle().Foreground(Amber)

	// Error renders failures.
	Error = lipgloss.NewStyle().Foreground(Rose)

	// Muted renders secondary detail.
	Muted = lipgloss.NewStyle().Foreground(TextMuted)
)
