// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// usage.go - Token usage ledger command.
//
// Command: usage
// Examples:
//   modelschat usage              Show totals and the last 10 turns
//   modelschat usage --recent 25  Show the last 25 turns

package cli

import (
	"fmt"

	"github.com/jeranaias/modelschat-tui/internal/app"
	"github.com/jeranaias/modelschat-tui/internal/ui/styles"
)

func runUsage(a *app.App, parser *ArgParser) error {
	if a.Usage == nil {
		fmt.Println(styles.Muted.Render("usage recording is disabled (telemetry.enabled = false)"))
		return nil
	}

	totals, err := a.Usage.Totals()
	if err != nil {
		return err
	}

	fmt.Println(styles.Title.Render("Token usage"))
	fmt.Printf("  %s %d turns · %d prompt + %d response = %d tokens\n",
		styles.Label.Render("total:"),
		totals.Turns, totals.PromptTokens, totals.ResponseTokens, totals.TotalTokens)

	n := parser.IntFlag(10, "recent", "n")
	recent, err := a.Usage.Recent(n)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		return nil
	}

	fmt.Println()
	for _, turn := range recent {
		fmt.Printf("  %s  %-8s %-24s %6d tokens\n",
			styles.Muted.Render(turn.Timestamp.Format("2006-01-02 15:04")),
			turn.Provider, turn.Model, turn.TotalTokens)
	}
	return nil
}
