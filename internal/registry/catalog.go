// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry owns model discovery and selection: which models a
// provider can serve, and which one of them the session should use.
package registry

import "strings"

// =============================================================================
// CATALOG TYPE
// =============================================================================

// Catalog is the ordered set of model identifiers a provider reported.
// Entries are kept raw: discovery may return namespaced names
// ("models/gemini-2.5-flash") next to bare ones. Membership tests and
// selection always go through Normalize; the raw form exists only for
// the namespaced-suffix match in PickBest and for display.
type Catalog struct {
	raw []string
}

// NewCatalog builds a catalog preserving the provider's ordering.
func NewCatalog(models []string) Catalog {
	raw := make([]string, len(models))
	copy(raw, models)
	return Catalog{raw: raw}
}

// Raw returns the catalog entries as reported by the provider.
func (c Catalog) Raw() []string {
	out := make([]string, len(c.raw))
	copy(out, c.raw)
	return out
}

// Normalized returns every entry reduced to its bare trailing segment,
// in catalog order.
func (c Catalog) Normalized() []string {
	out := make([]string, len(c.raw))
	for i, name := range c.raw {
		out[i] = Normalize(name)
	}
	return out
}

// Contains reports whether the catalog can serve the given model,
// comparing normalized names only.
func (c Catalog) Contains(name string) bool {
	want := Normalize(name)
	for _, entry := range c.raw {
		if Normalize(entry) == want {
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (c Catalog) Len() int {
	return len(c.raw)
}

// IsEmpty reports whether the catalog has no entries.
func (c Catalog) IsEmpty() bool {
	return len(c.raw) == 0
}

// Normalize extracts the bare model name from a possibly namespaced
// identifier: "models/gemini-2.5-flash" -> "gemini-2.5-flash".
func Normalize(name string) string {
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// =============================================================================
// SELECTION
// =============================================================================

// PickBest selects a model from the catalog deterministically:
//
//  1. For each preference fragment, best-to-worst: accept it if any
//     entry normalizes to it exactly, or any raw entry ends with
//     "/"+fragment. First match wins.
//  2. No preference present: the normalized first catalog entry, in the
//     provider's insertion order.
//  3. Empty catalog: the fixed fallback identifier.
//
// A plain first-match scan, no scoring.
func PickBest(c Catalog, preferences []string, fallback string) string {
	for _, pref := range preferences {
		for _, entry := range c.raw {
			if Normalize(entry) == pref || strings.HasSuffix(entry, "/"+pref) {
				return pref
			}
		}
	}
	if len(c.raw) > 0 {
		return Normalize(c.raw[0])
	}
	return fallback
}
