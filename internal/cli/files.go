// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// files.go - Document store commands.
//
// Command: files
// Examples:
//   modelschat files list
//   modelschat files upload report.pdf
//   modelschat files rm 3f8a --confirm
//   modelschat files get 3f8a ./report.pdf

package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jeranaias/modelschat-tui/internal/app"
	"github.com/jeranaias/modelschat-tui/internal/assets"
	"github.com/jeranaias/modelschat-tui/internal/ui/styles"
	"github.com/jeranaias/modelschat-tui/internal/util"
)

func runFiles(ctx context.Context, a *app.App, parser *ArgParser) error {
	switch parser.Subcommand() {
	case "", "list", "ls":
		return runFilesList(ctx, a)
	case "upload", "add":
		return runFilesUpload(ctx, a, parser)
	case "rm", "delete":
		return runFilesDelete(ctx, a, parser)
	case "get", "download":
		return runFilesDownload(ctx, a, parser)
	default:
		return fmt.Errorf("unknown files subcommand %q", parser.Subcommand())
	}
}

func runFilesList(ctx context.Context, a *app.App) error {
	if err := a.Assets.Refresh(ctx); err != nil {
		return err
	}

	files := a.Assets.Assets()
	if len(files) == 0 {
		fmt.Println(styles.Muted.Render("no documents uploaded"))
		return nil
	}

	fmt.Println(styles.Title.Render("Documents"))
	for _, f := range files {
		name := util.TruncateRunes(f.OriginalName, 48)
		fmt.Printf("  %s  %-48s  %8s  %s\n",
			styles.Value.Render(f.ID), name, f.FormattedSize,
			styles.Muted.Render(f.UploadedAt.Format("2006-01-02 15:04")))
	}
	if stats := a.Assets.Stats(); stats != nil {
		fmt.Println(styles.Muted.Render(fmt.Sprintf("%d files · %s", stats.TotalFiles, stats.TotalSize)))
	}
	return nil
}

func runFilesUpload(ctx context.Context, a *app.App, parser *ArgParser) error {
	positional := parser.Positional()
	if len(positional) == 0 {
		return fmt.Errorf("usage: modelschat files upload <path>")
	}
	path := positional[0]

	a.Assets.OnProgress(func(ev assets.ProgressEvent) {
		if ev.Err != nil {
			return
		}
		fmt.Printf("\r%s %3d%%", filepath.Base(path), ev.Percent)
	})

	asset, err := a.Assets.Upload(ctx, path)
	fmt.Println()
	if err != nil {
		return err
	}
	fmt.Println(styles.Success.Render("uploaded ") + asset.OriginalName + styles.Muted.Render(" ("+asset.ID+")"))
	return nil
}

func runFilesDelete(ctx context.Context, a *app.App, parser *ArgParser) error {
	positional := parser.Positional()
	if len(positional) == 0 {
		return fmt.Errorf("usage: modelschat files rm <id> [--confirm]")
	}
	id := positional[0]

	if err := Confirm("Delete document "+id+"? This cannot be undone.", parser.BoolFlag("confirm")); err != nil {
		return err
	}
	if err := a.Assets.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Println(styles.Success.Render("deleted " + id))
	return nil
}

func runFilesDownload(ctx context.Context, a *app.App, parser *ArgParser) error {
	positional := parser.Positional()
	if len(positional) < 2 {
		return fmt.Errorf("usage: modelschat files get <id> <dest>")
	}
	id, dest := positional[0], positional[1]

	if err := a.Assets.Download(ctx, id, dest); err != nil {
		return err
	}
	fmt.Println(styles.Success.Render("saved to " + dest))
	return nil
}
