// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assets manages the backend document store from the client
// side: the cached asset list, uploads with progress, deletion and
// download.
package assets

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/jeranaias/modelschat-tui/internal/backend"
	"github.com/jeranaias/modelschat-tui/internal/model"
)

// =============================================================================
// PROGRESS EVENTS
// =============================================================================

// ProgressEvent reports the state of one upload. Percent is monotonic
// within an upload and reaches 100 before the asset list refreshes; a
// failed upload emits a final event with Percent 0 and Err set.
type ProgressEvent struct {
	UploadID string
	Name     string
	Percent  int
	Done     bool
	Err      error
}

// ProgressSink receives upload progress events. Callbacks run on the
// uploading goroutine and must not block.
type ProgressSink func(ProgressEvent)

// =============================================================================
// BACKEND SURFACE
// =============================================================================

// Backend is the slice of the backend client the manager needs.
type Backend interface {
	ListFiles(ctx context.Context) ([]model.Asset, *model.AssetStats, error)
	UploadFile(ctx context.Context, path string, onProgress backend.ProgressFunc) (*model.Asset, error)
	DeleteFile(ctx context.Context, id string) error
	DownloadFile(ctx context.Context, id, dest string) error
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager caches the canonical asset set and funnels every mutation
// through the backend. The cache only ever changes by re-fetching the
// full list after a confirmed success, so a failed upload or delete
// leaves it exactly as it was. Safe for concurrent use.
type Manager struct {
	mu        sync.Mutex
	api       Backend
	assets    []model.Asset
	stats     *model.AssetStats
	uploading int
	sink      ProgressSink
}

// NewManager creates a manager over the given backend.
func NewManager(api Backend) *Manager {
	return &Manager{api: api}
}

// OnProgress registers the progress sink. One subscriber; the UI shell
// fans out from there.
func (m *Manager) OnProgress(sink ProgressSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sink = sink
}

func (m *Manager) emit(ev ProgressEvent) {
	m.mu.Lock()
	sink := m.sink
	m.mu.Unlock()
	if sink != nil {
		sink(ev)
	}
}

// =============================================================================
// LIST CACHE
// =============================================================================

// Refresh re-fetches the asset list and stats from the backend.
func (m *Manager) Refresh(ctx context.Context) error {
	files, stats, err := m.api.ListFiles(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.assets = files
	m.stats = stats
	m.mu.Unlock()
	return nil
}

// Assets returns a copy of the cached asset list.
func (m *Manager) Assets() []model.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Asset, len(m.assets))
	copy(out, m.assets)
	return out
}

// Stats returns the cached aggregate stats, or nil before the first
// refresh.
func (m *Manager) Stats() *model.AssetStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stats == nil {
		return nil
	}
	stats := *m.stats
	return &stats
}

// Uploading returns the number of uploads currently in flight.
func (m *Manager) Uploading() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploading
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Upload sends one file to the backend, emitting progress under a fresh
// upload ID. On success the final sequence is: Percent 100, list
// refresh, Done event. On failure the cache is untouched and the final
// event resets Percent to 0 with the error attached.
func (m *Manager) Upload(ctx context.Context, path string) (*model.Asset, error) {
	id := uuid.NewString()
	name := filepath.Base(path)

	m.mu.Lock()
	m.uploading++
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.uploading--
		m.mu.Unlock()
	}()

	m.emit(ProgressEvent{UploadID: id, Name: name, Percent: 0})

	last := 0
	asset, err := m.api.UploadFile(ctx, path, func(sent, total int64) {
		if total <= 0 {
			return
		}
		pct := int(sent * 100 / total)
		if pct > 100 {
			pct = 100
		}
		if pct > last {
			last = pct
			m.emit(ProgressEvent{UploadID: id, Name: name, Percent: pct})
		}
	})
	if err != nil {
		m.emit(ProgressEvent{UploadID: id, Name: name, Percent: 0, Done: true, Err: err})
		return nil, err
	}

	if last < 100 {
		m.emit(ProgressEvent{UploadID: id, Name: name, Percent: 100})
	}
	if err := m.Refresh(ctx); err != nil {
		// The upload itself succeeded; surface the stale cache, not a
		// failed upload.
		m.emit(ProgressEvent{UploadID: id, Name: name, Percent: 100, Done: true})
		return asset, err
	}
	m.emit(ProgressEvent{UploadID: id, Name: name, Percent: 100, Done: true})
	return asset, nil
}

// Delete removes one asset. The cache refreshes only after the backend
// confirms; on failure the entry stays listed. Confirmation with the
// user is the caller's job.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.api.DeleteFile(ctx, id); err != nil {
		return err
	}
	return m.Refresh(ctx)
}

// Download streams one asset to dest. A side channel; the cache is not
// involved.
func (m *Manager) Download(ctx context.Context, id, dest string) error {
	return m.api.DownloadFile(ctx, id, dest)
}
