// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Argument parsing shared by all modelschat CLI commands.

package cli

import (
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser provides uniform argument parsing for CLI commands:
//
//	--flag value     Long flag with space-separated value
//	--flag=value     Long flag with equals sign
//	-f value         Short flag with space-separated value
//	--flag           Boolean flag (no value)
//
// The first positional argument is the subcommand.
type ArgParser struct {
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// boolOnlyFlags never consume the next argument as a value.
var boolOnlyFlags = map[string]bool{
	"confirm": true,
	"help":    true,
	"h":       true,
	"raw":     true,
}

// NewArgParser parses raw arguments.
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			p.positional = append(p.positional, arg)
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")

		// --flag=value
		if idx := strings.Index(name, "="); idx >= 0 {
			value := name[idx+1:]
			name = name[:idx]
			if value == "true" || value == "false" {
				p.boolFlags[name] = value == "true"
			} else {
				p.flags[name] = value
			}
			i++
			continue
		}

		// --flag value, unless the flag is boolean or nothing follows
		if !boolOnlyFlags[name] && i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			p.flags[name] = raw[i+1]
			i += 2
			continue
		}

		p.boolFlags[name] = true
		i++
	}
	return p
}

// Subcommand returns the first positional argument, or "".
func (p *ArgParser) Subcommand() string {
	if len(p.positional) == 0 {
		return ""
	}
	return p.positional[0]
}

// Positional returns the positional arguments after the subcommand.
func (p *ArgParser) Positional() []string {
	if len(p.positional) <= 1 {
		return nil
	}
	return p.positional[1:]
}

// Flag returns a string flag value, checking each given name in order.
func (p *ArgParser) Flag(names ...string) string {
	for _, name := range names {
		if v, ok := p.flags[name]; ok {
			return v
		}
	}
	return ""
}

// BoolFlag reports whether any of the given flag names was set.
func (p *ArgParser) BoolFlag(names ...string) bool {
	for _, name := range names {
		if p.boolFlags[name] {
			return true
		}
	}
	return false
}

// IntFlag returns an integer flag value, or def when absent or invalid.
func (p *ArgParser) IntFlag(def int, names ...string) int {
	v := p.Flag(names...)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
