// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assets

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// settleDelay is how long a dropped file must be quiet before upload.
// Copies into the drop directory arrive as a Create followed by Writes.
const settleDelay = 500 * time.Millisecond

// DropWatcher watches a drop directory and uploads files that appear in
// it. Uploads are rate limited so dropping a whole folder does not
// hammer the backend.
type DropWatcher struct {
	manager *Manager
	dir     string
	watcher *fsnotify.Watcher
	limiter *rate.Limiter
}

// NewDropWatcher creates a watcher over dir, which must exist.
func NewDropWatcher(manager *Manager, dir string) (*DropWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}
	return &DropWatcher{
		manager: manager,
		dir:     dir,
		watcher: watcher,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}, nil
}

// Run processes events until the context is canceled. Blocking; callers
// run it on its own goroutine.
func (w *DropWatcher) Run(ctx context.Context) {
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(settleDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.uploadable(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("drop watcher: %v", err)
		case now := <-ticker.C:
			for path, seen := range pending {
				if now.Sub(seen) < settleDelay {
					continue
				}
				delete(pending, path)
				// Off the loop: a slow upload must not stall event
				// draining. The limiter still serializes the actual
				// transfers.
				go w.upload(ctx, path)
			}
		}
	}
}

// Close stops the underlying watcher.
func (w *DropWatcher) Close() error {
	return w.watcher.Close()
}

// uploadable rejects directories, hidden files and partial downloads.
func (w *DropWatcher) uploadable(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".part") {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func (w *DropWatcher) upload(ctx context.Context, path string) {
	if err := w.limiter.Wait(ctx); err != nil {
		return
	}
	if _, err := w.manager.Upload(ctx, path); err != nil {
		log.Printf("drop upload %s: %v", filepath.Base(path), err)
	}
}
