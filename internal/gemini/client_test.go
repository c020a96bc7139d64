// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeranaias/modelschat-tui/internal/model"
	"github.com/jeranaias/modelschat-tui/internal/transport"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return NewClient("test-key").WithBaseURL(server.URL), server
}

func TestNotConfigured(t *testing.T) {
	client := NewClient("")
	if client.Configured() {
		t.Error("Configured() = true with empty key")
	}
	if _, err := client.ListModels(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("ListModels err = %v, want ErrNotConfigured", err)
	}
	if _, err := client.Send(context.Background(), model.RequestPayload{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Send err = %v, want ErrNotConfigured", err)
	}
}

func TestListModelsFiltersAndPages(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("key") != "test-key" {
			http.Error(w, "missing key", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			w.Write([]byte(`{
				"models":[
					{"name":"models/gemini-2.5-flash","supportedGenerationMethods":["generateContent","countTokens"]},
					{"name":"models/text-embedding-004","supportedGenerationMethods":["embedContent"]}
				],
				"nextPageToken":"page2"
			}`))
			return
		}
		w.Write([]byte(`{
			"models":[{"name":"models/gemini-2.0-flash","supportedGenerationMethods":["generateContent"]}]
		}`))
	})
	defer server.Close()

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	want := []string{"models/gemini-2.5-flash", "models/gemini-2.0-flash"}
	if len(models) != 2 || models[0] != want[0] || models[1] != want[1] {
		t.Errorf("models = %v, want %v", models, want)
	}
}

func TestSendTranslatesDialect(t *testing.T) {
	var got generateRequest
	var gotPath string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates":[{"content":{"role":"model","parts":[{"text":"Hello"},{"text":" there"}]}}],
			"usageMetadata":{"promptTokenCount":9,"candidatesTokenCount":3,"totalTokenCount":12},
			"modelVersion":"gemini-2.5-flash-002"
		}`))
	})
	defer server.Close()

	result, err := client.Send(context.Background(), model.RequestPayload{
		Provider:     model.ProviderGemini,
		Model:        "gemini-2.5-flash",
		SystemPrompt: "be brief",
		Messages: []model.ChatTurn{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
			{Role: "user", Content: "again"},
		},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotPath != "/models/gemini-2.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if got.SystemInstruction == nil || got.SystemInstruction.Parts[0].Text != "be brief" {
		t.Errorf("systemInstruction = %+v", got.SystemInstruction)
	}
	roles := []string{got.Contents[0].Role, got.Contents[1].Role, got.Contents[2].Role}
	if roles[0] != "user" || roles[1] != "model" || roles[2] != "user" {
		t.Errorf("roles = %v, want assistant folded to model", roles)
	}

	if result.Content != "Hello there" {
		t.Errorf("content = %q, parts not concatenated", result.Content)
	}
	if result.Model != "gemini-2.5-flash-002" {
		t.Errorf("model = %q, want modelVersion", result.Model)
	}
	if result.TotalTokens != 12 || result.PromptTokens != 9 || result.ResponseTokens != 3 {
		t.Errorf("tokens = %+v", result)
	}
}

func TestSendOmitsSystemInstructionWhenEmpty(t *testing.T) {
	var raw map[string]any
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	})
	defer server.Close()

	result, err := client.Send(context.Background(), model.RequestPayload{
		Model:    "gemini-2.5-flash",
		Messages: []model.ChatTurn{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if _, present := raw["systemInstruction"]; present {
		t.Error("systemInstruction serialized despite being empty")
	}
	// Usage metadata missing from the reply stays zero, and the model
	// falls back to the requested one.
	if result.TotalTokens != 0 || result.Model != "gemini-2.5-flash" {
		t.Errorf("result = %+v", result)
	}
}

func TestSendClassifiesModelNotFound(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":404,"status":"NOT_FOUND","message":"model not found"}}`, http.StatusNotFound)
	})
	defer server.Close()

	_, err := client.Send(context.Background(), model.RequestPayload{
		Model:    "gemini-x",
		Messages: []model.ChatTurn{{Role: "user", Content: "hi"}},
	})
	if !transport.IsModelNotFound(err) {
		t.Errorf("err = %v, want model-not-found classification", err)
	}
}
