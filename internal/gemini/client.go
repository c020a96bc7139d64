// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the directly-called Google Gemini client, the
// alternate dispatcher backend used when an API key is configured and
// chat turns should not go through the backend proxy.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jeranaias/modelschat-tui/internal/model"
	"github.com/jeranaias/modelschat-tui/internal/transport"
)

// DefaultBaseURL is the base URL for the Gemini REST API.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// generateMethod is the capability a model must advertise to be usable
// for chat-style generation. Discovery filters on it.
const generateMethod = "generateContent"

// ErrNotConfigured indicates the API key is not set.
var ErrNotConfigured = errors.New("Gemini API key not configured")

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the Gemini REST API. It is safe for
// concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Gemini client with the given API key.
// If the key is empty the client is still created, but every call
// fails with ErrNotConfigured.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		httpClient: transport.SharedClient,
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimSuffix(base, "/")
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// =============================================================================
// MODEL DISCOVERY
// =============================================================================

// modelDescriptor is one entry of the ListModels response.
type modelDescriptor struct {
	Name                       string   `json:"name"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// listModelsResponse is the paged wire shape of GET /models.
type listModelsResponse struct {
	Models        []modelDescriptor `json:"models"`
	NextPageToken string            `json:"nextPageToken"`
}

// ListModels returns the raw identifiers of every model that supports
// chat-style generation. Names come back namespaced ("models/NAME");
// normalization is the registry's job, not the transport's.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	var names []string
	pageToken := ""
	for {
		page, next, err := c.listModelsPage(ctx, pageToken)
		if err != nil {
			return nil, err
		}
		for _, desc := range page {
			if supportsGeneration(desc) {
				names = append(names, desc.Name)
			}
		}
		if next == "" {
			return names, nil
		}
		pageToken = next
	}
}

func (c *Client) listModelsPage(ctx context.Context, pageToken string) ([]modelDescriptor, string, error) {
	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("pageSize", "200")
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models?"+query.Encode(), nil)
	if err != nil {
		return nil, "", transport.NetworkError("failed to create request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", transport.NetworkError("Gemini unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", transport.HTTPError(resp.StatusCode, readBody(resp.Body))
	}

	var result listModelsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, transport.MaxResponseSize)).Decode(&result); err != nil {
		return nil, "", transport.DecodeError("failed to decode models response", err)
	}
	return result.Models, result.NextPageToken, nil
}

func supportsGeneration(desc modelDescriptor) bool {
	for _, method := range desc.SupportedGenerationMethods {
		if method == generateMethod {
			return true
		}
	}
	return false
}

// =============================================================================
// GENERATION
// =============================================================================

// Wire types for generateContent.
type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

// Send translates one assembled payload into a generateContent call and
// normalizes the reply into the canonical result. Usage metadata the
// API omits stays zero. Grounding sources never appear on this path;
// retrieval lives behind the backend proxy.
func (c *Client) Send(ctx context.Context, payload model.RequestPayload) (*model.ChatResult, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	reqBody := generateRequest{
		Contents: make([]content, 0, len(payload.Messages)),
	}
	if payload.SystemPrompt != "" {
		reqBody.SystemInstruction = &content{Parts: []contentPart{{Text: payload.SystemPrompt}}}
	}
	for _, turn := range payload.Messages {
		reqBody.Contents = append(reqBody.Contents, content{
			Role:  geminiRole(turn.Role),
			Parts: []contentPart{{Text: turn.Content}},
		})
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, transport.DecodeError("failed to marshal request", err)
	}

	endpoint := c.baseURL + "/models/" + payload.Model + ":generateContent?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, transport.NetworkError("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transport.NetworkError("Gemini unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, transport.HTTPError(resp.StatusCode, readBody(resp.Body))
	}

	var result generateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, transport.MaxResponseSize)).Decode(&result); err != nil {
		return nil, transport.DecodeError("failed to decode generate response", err)
	}

	out := &model.ChatResult{
		Model:          result.ModelVersion,
		PromptTokens:   result.UsageMetadata.PromptTokenCount,
		ResponseTokens: result.UsageMetadata.CandidatesTokenCount,
		TotalTokens:    result.UsageMetadata.TotalTokenCount,
	}
	if out.Model == "" {
		out.Model = payload.Model
	}
	if len(result.Candidates) > 0 {
		var text strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
		out.Content = text.String()
	}
	return out, nil
}

// geminiRole maps wire roles to the generateContent dialect, which calls
// the assistant side "model". Anything else folds to "user"; the
// assembler hoists system text into SystemPrompt before dispatch.
func geminiRole(role string) string {
	if role == "assistant" {
		return "model"
	}
	return "user"
}

// readBody reads a bounded body for error classification.
func readBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64*1024))
	if err != nil {
		return ""
	}
	return string(data)
}
