// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the modelschat command line: one-shot
// questions, an interactive REPL, model and file management. Running
// with no command launches the TUI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/modelschat-tui/internal/app"
	"github.com/jeranaias/modelschat-tui/internal/ui/styles"
)

// Version is the client version string.
const Version = "1.0.0"

// ErrLaunchTUI tells main to start the TUI instead of a CLI command.
var ErrLaunchTUI = errors.New("launch TUI")

// Run dispatches one CLI invocation. args excludes the program name.
func Run(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		return ErrLaunchTUI
	}

	command := args[0]
	parser := NewArgParser(args[1:])

	switch command {
	case "tui":
		return ErrLaunchTUI
	case "ask":
		return runAsk(ctx, a, parser)
	case "chat":
		return runChat(ctx, a, parser)
	case "models":
		return runModels(ctx, a, parser)
	case "files":
		return runFiles(ctx, a, parser)
	case "config":
		return runConfig(a, parser)
	case "usage":
		return runUsage(a, parser)
	case "version", "--version", "-v":
		fmt.Println("modelschat " + Version)
		return nil
	case "help", "--help", "-h":
		printHelp()
		return nil
	default:
		fmt.Fprintln(os.Stderr, styles.Error.Render("unknown command: "+command))
		printHelp()
		return fmt.Errorf("unknown command %q", command)
	}
}

func printHelp() {
	fmt.Println(styles.Title.Render("modelschat") + " - chat client for the modelschat backend")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  modelschat [command]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  tui                  Launch the TUI (default)")
	fmt.Println("  ask <question>       Ask one question and print the answer")
	fmt.Println("  chat                 Interactive chat session")
	fmt.Println("  models               List available models")
	fmt.Println("  files <subcommand>   Manage uploaded documents")
	fmt.Println("  config               Show the effective configuration")
	fmt.Println("  usage                Show recorded token usage")
	fmt.Println("  version              Print the version")
	fmt.Println()
	fmt.Println("Flags for ask/chat:")
	fmt.Println("  -m, --model NAME     Use a specific model")
	fmt.Println("  --provider NAME      Provider: gemini or custom")
	fmt.Println("  --rag                Request document retrieval")
	fmt.Println()
	fmt.Println("Files subcommands:")
	fmt.Println("  files list                 List documents")
	fmt.Println("  files upload <path>        Upload a document")
	fmt.Println("  files rm <id> [--confirm]  Delete a document")
	fmt.Println("  files get <id> <dest>      Download a document")
}
