// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "testing"

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		maxRunes int
		want     string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exact limit", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"tiny limit, no ellipsis", "hello", 2, "he"},
		{"zero limit", "hello", 0, ""},
		{"multibyte preserved", "héllo wörld", 8, "héllo..."},
		{"cjk preserved", "こんにちは世界", 5, "こん..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.in, tt.maxRunes); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.maxRunes, got, tt.want)
			}
		})
	}
}

func TestTruncateWidthCJK(t *testing.T) {
	// Each CJK rune is 2 columns wide.
	got := TruncateWidth("こんにちは", 7)
	if StringWidth(got) > 7 {
		t.Errorf("TruncateWidth result %q wider than 7 columns", got)
	}
	if got == "こんにちは" {
		t.Error("string was not truncated")
	}
}

func TestStringWidth(t *testing.T) {
	if w := StringWidth("abc"); w != 3 {
		t.Errorf("StringWidth(abc) = %d, want 3", w)
	}
	if w := StringWidth("日本"); w != 4 {
		t.Errorf("StringWidth(日本) = %d, want 4", w)
	}
}

func TestRuneLen(t *testing.T) {
	if n := RuneLen("héllo"); n != 5 {
		t.Errorf("RuneLen = %d, want 5", n)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
