// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL.
//
// Command: chat
// Examples:
//   modelschat chat
//   modelschat chat --provider custom
//   modelschat chat -m gemini-2.0-flash --rag
//
// Interactive commands:
//   /help               Show available commands
//   /clear              Clear conversation history
//   /model [name]       Show or switch model
//   /provider [name]    Show or switch provider
//   /rag                Toggle document retrieval
//   /quit               Exit chat
//   Ctrl+D              Exit chat

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/modelschat-tui/internal/app"
	"github.com/jeranaias/modelschat-tui/internal/config"
	"github.com/jeranaias/modelschat-tui/internal/dispatch"
	"github.com/jeranaias/modelschat-tui/internal/model"
	"github.com/jeranaias/modelschat-tui/internal/session"
	"github.com/jeranaias/modelschat-tui/internal/ui/styles"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	welcomeStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(styles.TextSecondary)
)

func runChat(ctx context.Context, a *app.App, parser *ArgParser) error {
	applySessionFlags(a, parser)
	if errs := a.Bootstrap(ctx); len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, styles.Warning.Render("startup: "+err.Error()))
		}
	}
	if modelFlag := parser.Flag("model", "m"); modelFlag != "" {
		a.Registry.SetActiveModel(a.State.Provider(), modelFlag)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := chatHistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	defer saveChatHistory(line, historyPath)

	fmt.Println(welcomeStyle.Render("modelschat " + Version))
	fmt.Println(infoStyle.Render("provider: " + string(a.State.Provider()) + " · /help for commands, /quit to exit"))
	fmt.Println()

	for {
		input, err := line.Prompt(promptStyle.Render("you> "))
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println(infoStyle.Render("bye"))
				return nil
			}
			return err
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		line.AppendHistory(trimmed)

		if strings.HasPrefix(trimmed, "/") {
			if quit := handleChatCommand(ctx, a, trimmed); quit {
				return nil
			}
			continue
		}

		reply, err := a.SendDraft(ctx, trimmed)
		switch {
		case errors.Is(err, session.ErrEmptyDraft):
			continue
		case errors.Is(err, dispatch.ErrBusy):
			fmt.Println(styles.Warning.Render("still waiting on the previous reply"))
			continue
		case err != nil:
			fmt.Println(styles.Error.Render(reply.Content))
			continue
		}
		printAnswer(reply, false)
	}
}

// handleChatCommand processes a /command; true means exit.
func handleChatCommand(ctx context.Context, a *app.App, input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/q", "/exit":
		fmt.Println(infoStyle.Render("bye"))
		return true
	case "/help", "/h":
		fmt.Println(infoStyle.Render("/clear  /model [name]  /provider [gemini|custom]  /rag  /quit"))
	case "/clear", "/c":
		a.State.Reset()
		fmt.Println(infoStyle.Render("history cleared"))
	case "/model":
		if len(fields) > 1 {
			a.Registry.SetActiveModel(a.State.Provider(), fields[1])
		}
		fmt.Println(infoStyle.Render("model: " + a.Registry.ActiveModel(a.State.Provider())))
	case "/provider":
		if len(fields) > 1 {
			switch fields[1] {
			case "gemini", "custom":
				a.State.SetProvider(model.Provider(fields[1]))
			default:
				fmt.Println(styles.Error.Render("unknown provider: " + fields[1]))
			}
		}
		fmt.Println(infoStyle.Render("provider: " + string(a.State.Provider())))
	case "/rag":
		a.State.SetUseRAG(!a.State.UseRAG())
		fmt.Println(infoStyle.Render(fmt.Sprintf("retrieval: %v", a.State.UseRAG())))
	default:
		fmt.Println(styles.Error.Render("unknown command: " + fields[0]))
	}
	return false
}

func chatHistoryPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chat_history")
}

func saveChatHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	if f, err := os.Create(path); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}
