// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"context"
	"sync"

	"github.com/jeranaias/modelschat-tui/internal/model"
)

// =============================================================================
// PROVIDER DEFAULTS
// =============================================================================

// DefaultGeminiModel is the fixed identifier returned when selection
// runs against an empty catalog.
const DefaultGeminiModel = "gemini-2.5-flash"

// geminiPreferences is the provider preference list, best-to-worst.
var geminiPreferences = []string{
	"gemini-2.5-flash",
	"gemini-2.0-flash",
}

// fallbackGeminiCatalog populates the model selector when discovery
// fails. Chat stays usable; the entries mirror geminiPreferences.
var fallbackGeminiCatalog = []string{
	"gemini-2.5-flash",
	"gemini-2.0-flash",
}

// =============================================================================
// DISCOVERER
// =============================================================================

// Discoverer lists the raw model identifiers a provider can serve.
// Both the backend proxy and the direct Gemini client implement it.
type Discoverer interface {
	ListModels(ctx context.Context) ([]string, error)
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry tracks, per provider, the last-known catalog and the active
// model selection, and keeps the two consistent: a selection the live
// catalog cannot serve is replaced automatically.
//
// Safe for concurrent use; last completed refresh wins.
type Registry struct {
	mu sync.Mutex

	discoverers map[model.Provider]Discoverer
	catalogs    map[model.Provider]Catalog
	active      map[model.Provider]string
	lastErr     map[model.Provider]error
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		discoverers: make(map[model.Provider]Discoverer),
		catalogs:    make(map[model.Provider]Catalog),
		active:      make(map[model.Provider]string),
		lastErr:     make(map[model.Provider]error),
	}
}

// Register attaches a discoverer for a provider.
func (r *Registry) Register(provider model.Provider, d Discoverer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discoverers[provider] = d
}

// =============================================================================
// DISCOVERY
// =============================================================================

// Refresh fetches the provider's catalog and re-validates the active
// selection against it. On failure the error is recorded and the
// documented fallback catalog is installed instead, so the selector is
// never empty and chat is never blocked; the error is also returned for
// the shell to display.
func (r *Registry) Refresh(ctx context.Context, provider model.Provider) error {
	r.mu.Lock()
	d, ok := r.discoverers[provider]
	r.mu.Unlock()
	if !ok {
		return nil // provider has no discovery (custom server)
	}

	models, err := d.ListModels(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.lastErr[provider] = err
		if _, have := r.catalogs[provider]; !have {
			r.catalogs[provider] = NewCatalog(fallbackCatalog(provider))
		}
	} else {
		r.lastErr[provider] = nil
		r.catalogs[provider] = NewCatalog(models)
	}
	r.ensureSelectionLocked(provider)
	return err
}

// Catalog returns the last-known catalog for the provider (possibly the
// fallback one).
func (r *Registry) Catalog(provider model.Provider) Catalog {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cat, ok := r.catalogs[provider]; ok {
		return cat
	}
	return NewCatalog(fallbackCatalog(provider))
}

// LastError returns the most recent discovery failure, or nil.
func (r *Registry) LastError(provider model.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr[provider]
}

// =============================================================================
// SELECTION
// =============================================================================

// ActiveModel returns the current selection for the provider, picking
// one first if none has been made yet.
func (r *Registry) ActiveModel(provider model.Provider) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active[provider] == "" {
		r.ensureSelectionLocked(provider)
	}
	return r.active[provider]
}

// SetActiveModel records a selection (user choice or server-side
// substitution). The name is normalized before storing.
func (r *Registry) SetActiveModel(provider model.Provider, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[provider] = Normalize(name)
}

// PickFallback re-runs selection against the last-known catalog. The
// dispatcher calls this when the active model came back unavailable.
func (r *Registry) PickFallback(provider model.Provider) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	cat, ok := r.catalogs[provider]
	if !ok {
		cat = NewCatalog(fallbackCatalog(provider))
	}
	return PickBest(cat, preferences(provider), defaultModel(provider))
}

// ensureSelectionLocked enforces the selection invariant: if the active
// model's normalized name is absent from the normalized catalog, re-run
// PickBest. Callers hold r.mu.
func (r *Registry) ensureSelectionLocked(provider model.Provider) {
	cat, ok := r.catalogs[provider]
	if !ok {
		cat = NewCatalog(fallbackCatalog(provider))
		r.catalogs[provider] = cat
	}
	current := r.active[provider]
	if current != "" && cat.Contains(current) {
		return
	}
	r.active[provider] = PickBest(cat, preferences(provider), defaultModel(provider))
}

// =============================================================================
// PER-PROVIDER TABLES
// =============================================================================

func preferences(provider model.Provider) []string {
	if provider == model.ProviderGemini {
		return geminiPreferences
	}
	return nil
}

func defaultModel(provider model.Provider) string {
	if provider == model.ProviderGemini {
		return DefaultGeminiModel
	}
	return ""
}

func fallbackCatalog(provider model.Provider) []string {
	if provider == model.ProviderGemini {
		return fallbackGeminiCatalog
	}
	return nil
}
