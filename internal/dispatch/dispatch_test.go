// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jeranaias/modelschat-tui/internal/backend"
	"github.com/jeranaias/modelschat-tui/internal/model"
	"github.com/jeranaias/modelschat-tui/internal/registry"
	"github.com/jeranaias/modelschat-tui/internal/transport"
)

// listDiscoverer returns a fixed catalog.
type listDiscoverer []string

func (l listDiscoverer) ListModels(_ context.Context) ([]string, error) {
	return []string(l), nil
}

func newTestRegistry(t *testing.T, catalog ...string) *registry.Registry {
	t.Helper()
	reg := registry.New()
	reg.Register(model.ProviderGemini, listDiscoverer(catalog))
	if err := reg.Refresh(context.Background(), model.ProviderGemini); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	return reg
}

// scriptedSender returns canned results in order, recording the model of
// each payload it saw.
type scriptedSender struct {
	mu      sync.Mutex
	results []*model.ChatResult
	errs    []error
	seen    []string
}

func (s *scriptedSender) Send(_ context.Context, payload model.RequestPayload) (*model.ChatResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.seen)
	s.seen = append(s.seen, payload.Model)
	if i >= len(s.results) {
		return nil, errors.New("scripted sender exhausted")
	}
	return s.results[i], s.errs[i]
}

func (s *scriptedSender) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.seen))
	copy(out, s.seen)
	return out
}

func userPayload(modelName string) model.RequestPayload {
	return model.RequestPayload{
		Provider: model.ProviderGemini,
		Model:    modelName,
		Messages: []model.ChatTurn{{Role: "user", Content: "hello"}},
	}
}

// =============================================================================
// BUSY GATE
// =============================================================================

// blockingSender holds the dispatch open until released.
type blockingSender struct {
	entered  chan struct{}
	released chan struct{}
}

func (b *blockingSender) Send(_ context.Context, _ model.RequestPayload) (*model.ChatResult, error) {
	close(b.entered)
	<-b.released
	return &model.ChatResult{Content: "done"}, nil
}

func TestDispatchBusyGate(t *testing.T) {
	sender := &blockingSender{
		entered:  make(chan struct{}),
		released: make(chan struct{}),
	}
	d := New(newTestRegistry(t, "gemini-2.5-flash"))
	d.Register(model.ProviderGemini, sender)

	done := make(chan error, 1)
	go func() {
		_, err := d.Dispatch(context.Background(), userPayload("gemini-2.5-flash"))
		done <- err
	}()
	<-sender.entered

	if !d.Busy() {
		t.Error("Busy() = false during in-flight dispatch")
	}
	if _, err := d.Dispatch(context.Background(), userPayload("gemini-2.5-flash")); !errors.Is(err, ErrBusy) {
		t.Errorf("second dispatch err = %v, want ErrBusy", err)
	}

	close(sender.released)
	if err := <-done; err != nil {
		t.Fatalf("first dispatch failed: %v", err)
	}
	if d.Busy() {
		t.Error("Busy() = true after dispatch returned")
	}
}

// =============================================================================
// FALLBACK RETRY
// =============================================================================

func TestDispatchRetriesOnceOnModelNotFound(t *testing.T) {
	reg := newTestRegistry(t, "models/gemini-2.5-flash", "models/gemini-2.0-flash")
	sender := &scriptedSender{
		results: []*model.ChatResult{nil, {Content: "hi", Model: "gemini-2.5-flash"}},
		errs:    []error{transport.HTTPError(http.StatusNotFound, "model not found"), nil},
	}
	d := New(reg)
	d.Register(model.ProviderGemini, sender)

	result, err := d.Dispatch(context.Background(), userPayload("gemini-x"))
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if result.Content != "hi" {
		t.Errorf("content = %q, want %q", result.Content, "hi")
	}

	calls := sender.calls()
	if len(calls) != 2 || calls[0] != "gemini-x" || calls[1] != "gemini-2.5-flash" {
		t.Errorf("sender saw %v, want [gemini-x gemini-2.5-flash]", calls)
	}
	if got := reg.ActiveModel(model.ProviderGemini); got != "gemini-2.5-flash" {
		t.Errorf("ActiveModel = %q, want fallback recorded", got)
	}
}

func TestDispatchNoRetryWhenFallbackIsSameModel(t *testing.T) {
	// The catalog's best pick is the model that just failed, so a retry
	// would repeat the identical request.
	reg := newTestRegistry(t, "models/gemini-2.5-flash")
	sender := &scriptedSender{
		results: []*model.ChatResult{nil, nil},
		errs: []error{
			transport.HTTPError(http.StatusNotFound, "model not found"),
			transport.HTTPError(http.StatusNotFound, "model not found"),
		},
	}
	d := New(reg)
	d.Register(model.ProviderGemini, sender)

	_, err := d.Dispatch(context.Background(), userPayload("gemini-2.5-flash"))
	if !transport.IsModelNotFound(err) {
		t.Fatalf("err = %v, want model-not-found", err)
	}
	if calls := sender.calls(); len(calls) != 1 {
		t.Errorf("sender called %d times, want 1", len(calls))
	}
}

func TestDispatchRetryFailureSurfaces(t *testing.T) {
	reg := newTestRegistry(t, "models/gemini-2.0-flash")
	sender := &scriptedSender{
		results: []*model.ChatResult{nil, nil},
		errs: []error{
			transport.HTTPError(http.StatusNotFound, "model not found"),
			transport.HTTPError(http.StatusNotFound, "model not found"),
		},
	}
	d := New(reg)
	d.Register(model.ProviderGemini, sender)

	_, err := d.Dispatch(context.Background(), userPayload("gemini-x"))
	if !transport.IsModelNotFound(err) {
		t.Fatalf("err = %v, want model-not-found from second attempt", err)
	}
	if calls := sender.calls(); len(calls) != 2 {
		t.Errorf("sender called %d times, want exactly 2", len(calls))
	}
}

func TestDispatchNoRetryOnOtherErrors(t *testing.T) {
	reg := newTestRegistry(t, "models/gemini-2.5-flash")
	sender := &scriptedSender{
		results: []*model.ChatResult{nil},
		errs:    []error{transport.NetworkError("backend unreachable", nil)},
	}
	d := New(reg)
	d.Register(model.ProviderGemini, sender)

	_, err := d.Dispatch(context.Background(), userPayload("gemini-x"))
	if !transport.IsNetwork(err) {
		t.Fatalf("err = %v, want network error unchanged", err)
	}
	if calls := sender.calls(); len(calls) != 1 {
		t.Errorf("sender called %d times, want 1", len(calls))
	}
}

// =============================================================================
// RESULT HANDLING
// =============================================================================

func TestDispatchRecordsServerSubstitution(t *testing.T) {
	reg := newTestRegistry(t, "models/gemini-2.5-flash", "models/gemini-2.0-flash")
	sender := &scriptedSender{
		results: []*model.ChatResult{{Content: "hi", Model: "gemini-2.0-flash"}},
		errs:    []error{nil},
	}
	d := New(reg)
	d.Register(model.ProviderGemini, sender)

	if _, err := d.Dispatch(context.Background(), userPayload("gemini-2.5-flash")); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if got := reg.ActiveModel(model.ProviderGemini); got != "gemini-2.0-flash" {
		t.Errorf("ActiveModel = %q, want server-substituted model", got)
	}
}

type capturingRecorder struct {
	provider model.Provider
	stats    model.TokenStats
	called   bool
}

func (c *capturingRecorder) RecordUsage(provider model.Provider, stats model.TokenStats) {
	c.provider = provider
	c.stats = stats
	c.called = true
}

func TestDispatchReportsUsage(t *testing.T) {
	reg := newTestRegistry(t, "models/gemini-2.5-flash")
	sender := &scriptedSender{
		results: []*model.ChatResult{{
			Content:        "hi",
			Model:          "gemini-2.5-flash",
			PromptTokens:   12,
			ResponseTokens: 34,
			TotalTokens:    46,
		}},
		errs: []error{nil},
	}
	rec := &capturingRecorder{}
	d := New(reg).WithRecorder(rec)
	d.Register(model.ProviderGemini, sender)

	if _, err := d.Dispatch(context.Background(), userPayload("gemini-2.5-flash")); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !rec.called {
		t.Fatal("recorder never called")
	}
	if rec.provider != model.ProviderGemini || rec.stats.TotalTokens != 46 {
		t.Errorf("recorded %q/%+v, want gemini usage", rec.provider, rec.stats)
	}
}

// =============================================================================
// END TO END THROUGH THE BACKEND CLIENT
// =============================================================================

func TestDispatchFallbackAgainstBackend(t *testing.T) {
	// A backend that only serves gemini-2.5-flash: the first request for
	// a stale model 404s, the automatic retry succeeds.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		var payload model.RequestPayload
		if err := decodeJSON(r, &payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if payload.Model != "gemini-2.5-flash" {
			http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":"hello there","stats":{"model":"gemini-2.5-flash","promptTokens":5,"responseTokens":7,"totalTokens":12}}`))
	}))
	defer server.Close()

	client := backend.NewClientWithConfig(&backend.ClientConfig{BaseURL: server.URL})
	reg := newTestRegistry(t, "models/gemini-2.5-flash")
	d := New(reg)
	d.Register(model.ProviderGemini, client)

	result, err := d.Dispatch(context.Background(), userPayload("gemini-x"))
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if result.Content != "hello there" {
		t.Errorf("content = %q, want %q", result.Content, "hello there")
	}
	if result.TotalTokens != 12 {
		t.Errorf("totalTokens = %d, want 12", result.TotalTokens)
	}
	if got := reg.ActiveModel(model.ProviderGemini); got != "gemini-2.5-flash" {
		t.Errorf("ActiveModel = %q, want fallback recorded", got)
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
