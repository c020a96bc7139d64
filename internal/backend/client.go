// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the modelschat backend,
// which proxies both providers and owns the document store.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jeranaias/modelschat-tui/internal/model"
	"github.com/jeranaias/modelschat-tui/internal/transport"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://127.0.0.1:3001)
	// Note: explicit IPv4 instead of localhost to avoid IPv6 resolution
	// issues on Windows.
	BaseURL string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://127.0.0.1:3001",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the modelschat backend API.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultConfig().BaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: transport.SharedClient,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// PROVIDER CONFIG
// =============================================================================

// ProviderConfig fetches the backend's custom-server configuration.
// Called once at startup; the caller keeps the snapshot and only calls
// again on an explicit reload.
func (c *Client) ProviderConfig(ctx context.Context) (*model.ProviderConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/chat/config", nil)
	if err != nil {
		return nil, transport.NetworkError("failed to create request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transport.NetworkError("backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, transport.HTTPError(resp.StatusCode, readErrorBody(resp.Body))
	}

	var cfg model.ProviderConfig
	if err := json.NewDecoder(io.LimitReader(resp.Body, transport.MaxResponseSize)).Decode(&cfg); err != nil {
		return nil, transport.DecodeError("failed to decode config response", err)
	}
	return &cfg, nil
}

// =============================================================================
// MODEL DISCOVERY
// =============================================================================

// modelsResponse is the wire shape of GET /api/chat/models.
type modelsResponse struct {
	Models []string `json:"models"`
}

// ListModels retrieves the raw model identifiers the backend can serve
// for the managed provider. Entries may be namespaced ("models/NAME").
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/chat/models", nil)
	if err != nil {
		return nil, transport.NetworkError("failed to create request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transport.NetworkError("backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, transport.HTTPError(resp.StatusCode, readErrorBody(resp.Body))
	}

	var result modelsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, transport.MaxResponseSize)).Decode(&result); err != nil {
		return nil, transport.DecodeError("failed to decode models response", err)
	}
	return result.Models, nil
}

// =============================================================================
// CHAT
// =============================================================================

// chatResponse is the backend-proxy dialect of a chat reply.
type chatResponse struct {
	Content string `json:"content"`
	Stats   struct {
		Model          string `json:"model"`
		PromptTokens   int    `json:"promptTokens"`
		ResponseTokens int    `json:"responseTokens"`
		TotalTokens    int    `json:"totalTokens"`
	} `json:"stats"`
	Sources []model.Source `json:"sources"`
}

// Send posts one assembled payload to POST /api/chat and normalizes the
// backend-proxy reply into the canonical result. Token counts missing
// from the reply stay zero. A non-2xx reply is classified at the
// transport edge, so a model-not-found comes back as a tagged kind.
func (c *Client) Send(ctx context.Context, payload model.RequestPayload) (*model.ChatResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, transport.DecodeError("failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, transport.NetworkError("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transport.NetworkError("backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, transport.HTTPError(resp.StatusCode, readErrorBody(resp.Body))
	}

	var result chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, transport.MaxResponseSize)).Decode(&result); err != nil {
		return nil, transport.DecodeError("failed to decode chat response", err)
	}

	out := &model.ChatResult{
		Content:        result.Content,
		Model:          result.Stats.Model,
		PromptTokens:   result.Stats.PromptTokens,
		ResponseTokens: result.Stats.ResponseTokens,
		TotalTokens:    result.Stats.TotalTokens,
		Sources:        result.Sources,
	}
	if out.Model == "" {
		out.Model = payload.Model
	}
	return out, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// readErrorBody reads a bounded error body for classification.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64*1024))
	if err != nil {
		return ""
	}
	return string(data)
}
