// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"path/filepath"
	"testing"

	"github.com/jeranaias/modelschat-tui/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndTotals(t *testing.T) {
	store := openTestStore(t)

	store.RecordUsage(model.ProviderGemini, model.TokenStats{
		Model: "gemini-2.5-flash", PromptTokens: 10, ResponseTokens: 20, TotalTokens: 30,
	})
	store.RecordUsage(model.ProviderCustom, model.TokenStats{
		Model: "qwen2:0.5b", PromptTokens: 5, ResponseTokens: 7, TotalTokens: 12,
	})

	totals, err := store.Totals()
	if err != nil {
		t.Fatalf("Totals failed: %v", err)
	}
	if totals.Turns != 2 {
		t.Errorf("turns = %d, want 2", totals.Turns)
	}
	if totals.TotalTokens != 42 {
		t.Errorf("total tokens = %d, want 42", totals.TotalTokens)
	}
	if totals.PromptTokens != 15 || totals.ResponseTokens != 27 {
		t.Errorf("prompt/response = %d/%d, want 15/27", totals.PromptTokens, totals.ResponseTokens)
	}
}

func TestTotalsEmptyLedger(t *testing.T) {
	store := openTestStore(t)
	totals, err := store.Totals()
	if err != nil {
		t.Fatalf("Totals failed: %v", err)
	}
	if totals != (Totals{}) {
		t.Errorf("totals = %+v, want zero", totals)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	store := openTestStore(t)
	for i, name := range []string{"first", "second", "third"} {
		store.RecordUsage(model.ProviderGemini, model.TokenStats{
			Model: name, TotalTokens: i + 1,
		})
	}

	recent, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent length = %d, want 2", len(recent))
	}
	if recent[0].Model != "third" || recent[1].Model != "second" {
		t.Errorf("recent order = [%s %s], want newest first", recent[0].Model, recent[1].Model)
	}
	if recent[0].Provider != "gemini" {
		t.Errorf("provider = %q", recent[0].Provider)
	}
}
