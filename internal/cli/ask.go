// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question handler.
//
// Command: ask
// Examples:
//   modelschat ask "what is a goroutine"
//   modelschat ask -m gemini-2.0-flash "summarize the uploaded docs" --rag

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/modelschat-tui/internal/app"
	"github.com/jeranaias/modelschat-tui/internal/model"
	"github.com/jeranaias/modelschat-tui/internal/ui/styles"
)

func runAsk(ctx context.Context, a *app.App, parser *ArgParser) error {
	question := strings.TrimSpace(strings.Join(append([]string{parser.Subcommand()}, parser.Positional()...), " "))
	if question == "" {
		return fmt.Errorf("usage: modelschat ask <question>")
	}

	applySessionFlags(a, parser)
	if errs := a.Bootstrap(ctx); len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, styles.Warning.Render("startup: "+err.Error()))
		}
	}
	if modelFlag := parser.Flag("model", "m"); modelFlag != "" {
		a.Registry.SetActiveModel(a.State.Provider(), modelFlag)
	}

	reply, err := a.SendDraft(ctx, question)
	if err != nil {
		return err
	}

	printAnswer(reply, parser.BoolFlag("raw"))
	return nil
}

// applySessionFlags maps shared chat flags onto the session.
func applySessionFlags(a *app.App, parser *ArgParser) {
	if provider := parser.Flag("provider"); provider != "" {
		a.State.SetProvider(model.Provider(provider))
	}
	if parser.BoolFlag("rag") {
		a.State.SetUseRAG(true)
	}
	if prompt := parser.Flag("system"); prompt != "" {
		a.State.SetSystemPrompt(prompt)
		a.State.SetUseSystemPrompt(true)
	}
}

// printAnswer renders one assistant message, markdown unless --raw.
func printAnswer(reply *model.Message, raw bool) {
	if !raw {
		if rendered, err := glamour.Render(reply.Content, "auto"); err == nil {
			fmt.Print(rendered)
			printStats(reply)
			printSources(reply)
			return
		}
	}
	fmt.Println(reply.Content)
	printStats(reply)
	printSources(reply)
}

func printStats(reply *model.Message) {
	if reply.Stats == nil {
		return
	}
	fmt.Println(styles.Muted.Render(fmt.Sprintf(
		"%s · %d prompt + %d response = %d tokens",
		reply.Stats.Model, reply.Stats.PromptTokens, reply.Stats.ResponseTokens, reply.Stats.TotalTokens,
	)))
}

func printSources(reply *model.Message) {
	if len(reply.Sources) == 0 {
		return
	}
	fmt.Println(styles.Muted.Render("sources:"))
	for _, src := range reply.Sources {
		fmt.Println(styles.Muted.Render("  " + src.Label()))
	}
}
