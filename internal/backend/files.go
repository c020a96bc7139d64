// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jeranaias/modelschat-tui/internal/model"
	"github.com/jeranaias/modelschat-tui/internal/transport"
)

// =============================================================================
// FILE LISTING
// =============================================================================

// filesResponse is the wire shape of GET /api/files.
type filesResponse struct {
	Files []model.Asset     `json:"files"`
	Stats *model.AssetStats `json:"stats"`
}

// ListFiles retrieves the canonical asset set from the backend.
func (c *Client) ListFiles(ctx context.Context) ([]model.Asset, *model.AssetStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/files", nil)
	if err != nil {
		return nil, nil, transport.NetworkError("failed to create request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, transport.NetworkError("backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, transport.HTTPError(resp.StatusCode, readErrorBody(resp.Body))
	}

	var result filesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, transport.MaxResponseSize)).Decode(&result); err != nil {
		return nil, nil, transport.DecodeError("failed to decode files response", err)
	}
	return result.Files, result.Stats, nil
}

// =============================================================================
// UPLOAD
// =============================================================================

// ProgressFunc receives byte-level upload progress. total is the full
// request body size, so sent/total reaches exactly 1.0 when the body has
// been transmitted.
type ProgressFunc func(sent, total int64)

// uploadResponse is the wire shape of a 201 from POST /api/files.
type uploadResponse struct {
	File model.Asset `json:"file"`
}

// uploadErrorResponse is the wire shape of an upload rejection.
type uploadErrorResponse struct {
	Message string `json:"message"`
}

// UploadFile posts one file as the multipart "file" field and reports
// transmission progress through onProgress (which may be nil). The
// returned Asset is the server's record; callers should still refresh
// the list rather than append it locally.
func (c *Client) UploadFile(ctx context.Context, path string, onProgress ProgressFunc) (*model.Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, transport.UploadError("failed to read file", err)
	}

	// Assemble the full multipart body up front so the progress total
	// is exact and the reported sequence is monotonic.
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, transport.UploadError("failed to create form field", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, transport.UploadError("failed to buffer file", err)
	}
	if err := writer.Close(); err != nil {
		return nil, transport.UploadError("failed to finalize form", err)
	}

	total := int64(body.Len())
	reader := &progressReader{
		r:          bytes.NewReader(body.Bytes()),
		total:      total,
		onProgress: onProgress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files", reader)
	if err != nil {
		return nil, transport.UploadError("failed to create request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = total

	resp, err := transport.UploadClient.Do(req)
	if err != nil {
		return nil, transport.UploadError("upload failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		detail := readErrorBody(resp.Body)
		var rejection uploadErrorResponse
		if json.Unmarshal([]byte(detail), &rejection) == nil && rejection.Message != "" {
			detail = rejection.Message
		}
		return nil, transport.UploadError("upload rejected: "+detail, nil)
	}

	var result uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, transport.MaxResponseSize)).Decode(&result); err != nil {
		return nil, transport.DecodeError("failed to decode upload response", err)
	}
	return &result.File, nil
}

// progressReader counts bytes as the HTTP client drains the body.
type progressReader struct {
	r          io.Reader
	sent       int64
	total      int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.sent += int64(n)
		if p.onProgress != nil {
			p.onProgress(p.sent, p.total)
		}
	}
	return n, err
}

// =============================================================================
// DELETE / DOWNLOAD
// =============================================================================

// DeleteFile removes one asset by ID. The caller is responsible for
// having confirmed the action with the user first.
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/files/"+id, nil)
	if err != nil {
		return transport.NetworkError("failed to create request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transport.NetworkError("backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return transport.HTTPError(resp.StatusCode, readErrorBody(resp.Body))
	}
	return nil
}

// DownloadFile streams one asset's bytes to dest. This is a side
// channel: it never touches the cached asset set.
func (c *Client) DownloadFile(ctx context.Context, id, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/files/"+id+"/download", nil)
	if err != nil {
		return transport.NetworkError("failed to create request", err)
	}

	resp, err := transport.UploadClient.Do(req)
	if err != nil {
		return transport.NetworkError("backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return transport.HTTPError(resp.StatusCode, readErrorBody(resp.Body))
	}

	out, err := os.Create(dest)
	if err != nil {
		return transport.NetworkError("failed to create output file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return transport.NetworkError("download interrupted", err)
	}
	return nil
}
