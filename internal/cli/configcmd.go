// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// configcmd.go - Configuration display command.
//
// Command: config
// Examples:
//   modelschat config            Show the effective configuration
//   modelschat config init       Write a config file with current values

package cli

import (
	"fmt"

	"github.com/jeranaias/modelschat-tui/internal/app"
	"github.com/jeranaias/modelschat-tui/internal/config"
	"github.com/jeranaias/modelschat-tui/internal/ui/styles"
)

func runConfig(a *app.App, parser *ArgParser) error {
	if parser.Subcommand() == "init" {
		if err := config.Save(a.Config); err != nil {
			return err
		}
		path, _ := config.ConfigPath()
		fmt.Println(styles.Success.Render("wrote " + path))
		return nil
	}

	cfg := a.Config
	field := func(label, value string) {
		fmt.Println("  " + styles.Label.Render(label+": ") + styles.Value.Render(value))
	}

	fmt.Println(styles.Title.Render("Configuration"))
	field("backend.url", cfg.Backend.URL)
	field("gemini.api_key", maskKey(cfg.Gemini.APIKey))
	field("gemini.direct", fmt.Sprintf("%v", cfg.Gemini.Direct))
	field("chat.provider", cfg.Chat.Provider)
	field("chat.use_system_prompt", fmt.Sprintf("%v", cfg.Chat.UseSystemPrompt))
	field("chat.use_rag", fmt.Sprintf("%v", cfg.Chat.UseRAG))
	field("files.drop_dir", orNone(cfg.Files.DropDir))
	field("telemetry.enabled", fmt.Sprintf("%v", cfg.Telemetry.Enabled))
	return nil
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
