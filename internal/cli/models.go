// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models.go - Model listing command.
//
// Command: models
// Examples:
//   modelschat models
//   modelschat models --raw    Show identifiers as the provider reports them

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jeranaias/modelschat-tui/internal/app"
	"github.com/jeranaias/modelschat-tui/internal/model"
	"github.com/jeranaias/modelschat-tui/internal/ui/styles"
)

func runModels(ctx context.Context, a *app.App, parser *ArgParser) error {
	err := a.Registry.Refresh(ctx, model.ProviderGemini)
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.Warning.Render("discovery failed, showing fallback models: "+err.Error()))
	}

	catalog := a.Registry.Catalog(model.ProviderGemini)
	active := a.Registry.ActiveModel(model.ProviderGemini)

	names := catalog.Normalized()
	if parser.BoolFlag("raw") {
		names = catalog.Raw()
	}

	fmt.Println(styles.Title.Render("Models"))
	for i, name := range names {
		marker := "  "
		if catalog.Normalized()[i] == active {
			marker = styles.Success.Render("* ")
		}
		fmt.Println(marker + name)
	}
	fmt.Println(styles.Muted.Render(fmt.Sprintf("%d models · active: %s", catalog.Len(), active)))
	return nil
}
