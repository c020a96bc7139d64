// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/modelschat-tui/internal/backend"
	"github.com/jeranaias/modelschat-tui/internal/model"
)

// stubBackend scripts the backend surface and records call order.
type stubBackend struct {
	files     []model.Asset
	stats     *model.AssetStats
	listErr   error
	uploadErr error
	deleteErr error

	// progress points fed to the upload callback, as sent/total pairs.
	progress [][2]int64

	calls []string
}

func (s *stubBackend) ListFiles(_ context.Context) ([]model.Asset, *model.AssetStats, error) {
	s.calls = append(s.calls, "list")
	if s.listErr != nil {
		return nil, nil, s.listErr
	}
	return s.files, s.stats, nil
}

func (s *stubBackend) UploadFile(_ context.Context, path string, onProgress backend.ProgressFunc) (*model.Asset, error) {
	s.calls = append(s.calls, "upload")
	for _, p := range s.progress {
		if onProgress != nil {
			onProgress(p[0], p[1])
		}
	}
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	return &model.Asset{ID: "f1", OriginalName: path}, nil
}

func (s *stubBackend) DeleteFile(_ context.Context, id string) error {
	s.calls = append(s.calls, "delete "+id)
	return s.deleteErr
}

func (s *stubBackend) DownloadFile(_ context.Context, id, dest string) error {
	s.calls = append(s.calls, "download "+id)
	return nil
}

// =============================================================================
// UPLOAD
// =============================================================================

func TestUploadProgressIsMonotonic(t *testing.T) {
	stub := &stubBackend{
		// Includes a repeat and an overshoot; neither may surface.
		progress: [][2]int64{{10, 100}, {10, 100}, {50, 100}, {120, 100}},
	}
	m := NewManager(stub)

	var percents []int
	m.OnProgress(func(ev ProgressEvent) {
		percents = append(percents, ev.Percent)
	})

	_, err := m.Upload(context.Background(), "/tmp/report.pdf")
	require.NoError(t, err)

	last := -1
	for _, p := range percents {
		assert.GreaterOrEqual(t, p, last, "percent regressed: %v", percents)
		last = p
	}
	assert.Equal(t, 100, last, "upload never reached 100: %v", percents)
}

func TestUploadReachesFullBeforeListRefresh(t *testing.T) {
	stub := &stubBackend{progress: [][2]int64{{512, 1024}, {1024, 1024}}}
	m := NewManager(stub)

	var sequence []string
	m.OnProgress(func(ev ProgressEvent) {
		if ev.Percent == 100 && !ev.Done {
			sequence = append(sequence, "full")
		}
	})

	_, err := m.Upload(context.Background(), "/tmp/report.pdf")
	require.NoError(t, err)

	// Percent hit 100 during transmission (the 1024/1024 point), and the
	// list fetch happened after the upload call.
	require.Equal(t, []string{"upload", "list"}, stub.calls)
	assert.NotEmpty(t, sequence, "no full-progress event before refresh")
}

func TestUploadFailureResetsProgressAndKeepsCache(t *testing.T) {
	m := NewManager(&stubBackend{
		files: []model.Asset{{ID: "keep", OriginalName: "keep.txt"}},
		stats: &model.AssetStats{TotalFiles: 1, TotalSize: "1 KB"},
	})
	require.NoError(t, m.Refresh(context.Background()))

	failing := &stubBackend{
		progress:  [][2]int64{{512, 1024}},
		uploadErr: errors.New("disk full"),
	}
	m.api = failing

	var final ProgressEvent
	m.OnProgress(func(ev ProgressEvent) {
		if ev.Done {
			final = ev
		}
	})

	_, err := m.Upload(context.Background(), "/tmp/report.pdf")
	require.Error(t, err)

	assert.Equal(t, 0, final.Percent, "failed upload must reset the bar")
	assert.Error(t, final.Err)
	assert.Len(t, m.Assets(), 1, "cache changed on failed upload")
	assert.Equal(t, 0, m.Uploading())
	for _, call := range failing.calls {
		assert.NotEqual(t, "list", call, "list refreshed after failed upload")
	}
}

func TestUploadEventsShareOneID(t *testing.T) {
	stub := &stubBackend{progress: [][2]int64{{50, 100}, {100, 100}}}
	m := NewManager(stub)

	ids := map[string]bool{}
	m.OnProgress(func(ev ProgressEvent) {
		ids[ev.UploadID] = true
		assert.Equal(t, "report.pdf", ev.Name)
	})

	_, err := m.Upload(context.Background(), "/tmp/report.pdf")
	require.NoError(t, err)
	assert.Len(t, ids, 1, "events split across upload IDs")
}

// =============================================================================
// DELETE
// =============================================================================

func TestDeleteRefreshesOnSuccess(t *testing.T) {
	stub := &stubBackend{
		files: []model.Asset{{ID: "f2", OriginalName: "other.txt"}},
		stats: &model.AssetStats{TotalFiles: 1, TotalSize: "2 KB"},
	}
	m := NewManager(stub)

	require.NoError(t, m.Delete(context.Background(), "f1"))
	require.Equal(t, []string{"delete f1", "list"}, stub.calls)
	assert.Len(t, m.Assets(), 1)
}

func TestDeleteFailureLeavesCache(t *testing.T) {
	stub := &stubBackend{files: []model.Asset{{ID: "f1"}}}
	m := NewManager(stub)
	require.NoError(t, m.Refresh(context.Background()))

	stub.deleteErr = errors.New("backend unreachable")
	err := m.Delete(context.Background(), "f1")
	require.Error(t, err)

	assert.Len(t, m.Assets(), 1, "entry vanished without backend confirmation")
	assert.Equal(t, []string{"list", "delete f1"}, stub.calls)
}

// =============================================================================
// LIST / DOWNLOAD
// =============================================================================

func TestRefreshReplacesCache(t *testing.T) {
	stub := &stubBackend{
		files: []model.Asset{{ID: "a"}, {ID: "b"}},
		stats: &model.AssetStats{TotalFiles: 2, TotalSize: "3 KB"},
	}
	m := NewManager(stub)

	require.NoError(t, m.Refresh(context.Background()))
	assert.Len(t, m.Assets(), 2)
	require.NotNil(t, m.Stats())
	assert.Equal(t, 2, m.Stats().TotalFiles)

	stub.listErr = errors.New("backend unreachable")
	require.Error(t, m.Refresh(context.Background()))
	assert.Len(t, m.Assets(), 2, "failed refresh wiped the cache")
}

func TestDownloadDoesNotTouchCache(t *testing.T) {
	stub := &stubBackend{files: []model.Asset{{ID: "f1"}}}
	m := NewManager(stub)
	require.NoError(t, m.Refresh(context.Background()))

	require.NoError(t, m.Download(context.Background(), "f1", "/tmp/out.bin"))
	assert.Equal(t, []string{"list", "download f1"}, stub.calls)
}
