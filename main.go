// modelschat TUI - A terminal client for the modelschat backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/jeranaias/modelschat-tui/internal/app"
	"github.com/jeranaias/modelschat-tui/internal/assets"
	"github.com/jeranaias/modelschat-tui/internal/cli"
	"github.com/jeranaias/modelschat-tui/internal/config"
	"github.com/jeranaias/modelschat-tui/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	err = cli.Run(context.Background(), a, os.Args[1:])
	if errors.Is(err, cli.ErrLaunchTUI) {
		runTUI(a, cfg)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(a *app.App, cfg *config.Config) {
	setupTUILogging()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The drop directory uploads files dropped into it while the TUI
	// runs. Optional; skipped when unset or unwatchable.
	if cfg.Files.DropDir != "" {
		if watcher, err := assets.NewDropWatcher(a.Assets, cfg.Files.DropDir); err != nil {
			log.Printf("drop watcher disabled: %v", err)
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
		}
	}

	if err := ui.Run(a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupTUILogging keeps the standard logger off the alternate screen:
// a debug file when MODELSCHAT_DEBUG is set, discarded otherwise.
func setupTUILogging() {
	if os.Getenv("MODELSCHAT_DEBUG") == "" {
		log.SetOutput(io.Discard)
		return
	}
	dir, err := config.ConfigDir()
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	if err := config.EnsureConfigDir(); err != nil {
		log.SetOutput(io.Discard)
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(f)
}
