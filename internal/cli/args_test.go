// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

func TestArgParserSubcommandAndPositional(t *testing.T) {
	p := NewArgParser([]string{"rm", "3f8a", "--confirm"})
	if p.Subcommand() != "rm" {
		t.Errorf("subcommand = %q", p.Subcommand())
	}
	pos := p.Positional()
	if len(pos) != 1 || pos[0] != "3f8a" {
		t.Errorf("positional = %v", pos)
	}
	if !p.BoolFlag("confirm") {
		t.Error("--confirm not parsed")
	}
}

func TestArgParserFlagFormats(t *testing.T) {
	p := NewArgParser([]string{"--model", "gemini-2.0-flash", "--provider=custom", "-n", "25"})
	if p.Flag("model", "m") != "gemini-2.0-flash" {
		t.Errorf("model = %q", p.Flag("model"))
	}
	if p.Flag("provider") != "custom" {
		t.Errorf("provider = %q", p.Flag("provider"))
	}
	if p.IntFlag(10, "recent", "n") != 25 {
		t.Errorf("n = %d", p.IntFlag(10, "n"))
	}
}

func TestArgParserBooleanEquals(t *testing.T) {
	p := NewArgParser([]string{"--rag=true", "--raw=false"})
	if !p.BoolFlag("rag") {
		t.Error("--rag=true not parsed")
	}
	if p.BoolFlag("raw") {
		t.Error("--raw=false parsed as true")
	}
}

func TestArgParserBoolOnlyFlagDoesNotEatValue(t *testing.T) {
	p := NewArgParser([]string{"rm", "--confirm", "3f8a"})
	if !p.BoolFlag("confirm") {
		t.Error("--confirm not parsed")
	}
	pos := p.Positional()
	if len(pos) != 1 || pos[0] != "3f8a" {
		t.Errorf("positional = %v, id swallowed by --confirm", pos)
	}
}

func TestArgParserIntFlagDefault(t *testing.T) {
	p := NewArgParser([]string{"--recent", "abc"})
	if p.IntFlag(10, "recent") != 10 {
		t.Errorf("invalid int should fall back to default")
	}
}
