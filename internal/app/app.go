// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app wires the client stack together: configuration in,
// ready-to-use registry, session, dispatcher and asset manager out.
// The CLI commands and the TUI shell both run on top of it.
package app

import (
	"context"
	"errors"
	"log"

	"github.com/jeranaias/modelschat-tui/internal/assets"
	"github.com/jeranaias/modelschat-tui/internal/backend"
	"github.com/jeranaias/modelschat-tui/internal/config"
	"github.com/jeranaias/modelschat-tui/internal/dispatch"
	"github.com/jeranaias/modelschat-tui/internal/gemini"
	"github.com/jeranaias/modelschat-tui/internal/model"
	"github.com/jeranaias/modelschat-tui/internal/registry"
	"github.com/jeranaias/modelschat-tui/internal/session"
	"github.com/jeranaias/modelschat-tui/internal/telemetry"
)

// App is the assembled client stack.
type App struct {
	Config     *config.Config
	Backend    *backend.Client
	Gemini     *gemini.Client
	Registry   *registry.Registry
	State      *session.State
	Assembler  *session.Assembler
	Dispatcher *dispatch.Dispatcher
	Assets     *assets.Manager
	Usage      *telemetry.Store
}

// New wires the stack from configuration. No network traffic happens
// here; callers bootstrap catalogs and provider config when they are
// ready to block.
func New(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	a.Backend = backend.NewClientWithConfig(&backend.ClientConfig{BaseURL: cfg.Backend.URL})

	a.Gemini = gemini.NewClient(cfg.Gemini.APIKey)
	if cfg.Gemini.BaseURL != "" {
		a.Gemini.WithBaseURL(cfg.Gemini.BaseURL)
	}

	// Gemini traffic goes direct only when configured; the backend
	// proxies it otherwise. The custom provider always rides the proxy.
	a.Registry = registry.New()
	var geminiSender dispatch.Sender
	if cfg.Gemini.Direct && a.Gemini.Configured() {
		a.Registry.Register(model.ProviderGemini, a.Gemini)
		geminiSender = a.Gemini
	} else {
		a.Registry.Register(model.ProviderGemini, a.Backend)
		geminiSender = a.Backend
	}

	a.State = session.NewState(model.Provider(cfg.Chat.Provider))
	a.State.SetSystemPrompt(cfg.Chat.SystemPrompt)
	a.State.SetUseSystemPrompt(cfg.Chat.UseSystemPrompt)
	a.State.SetUseRAG(cfg.Chat.UseRAG)

	a.Assembler = session.NewAssembler(a.Registry, "")

	a.Dispatcher = dispatch.New(a.Registry)
	a.Dispatcher.Register(model.ProviderGemini, geminiSender)
	a.Dispatcher.Register(model.ProviderCustom, a.Backend)

	a.Assets = assets.NewManager(a.Backend)

	if cfg.Telemetry.Enabled {
		path, err := cfg.TelemetryPath()
		if err == nil {
			if err := config.EnsureConfigDir(); err == nil {
				if store, err := telemetry.Open(path); err == nil {
					a.Usage = store
					a.Dispatcher.WithRecorder(store)
				} else {
					log.Printf("usage ledger disabled: %v", err)
				}
			}
		}
	}

	return a, nil
}

// Bootstrap performs the startup fetches: the model catalog and the
// backend's provider config. Failures are returned for display but the
// app stays usable on fallbacks.
func (a *App) Bootstrap(ctx context.Context) []error {
	var errs []error
	if err := a.Registry.Refresh(ctx, model.ProviderGemini); err != nil {
		errs = append(errs, err)
	}
	if cfg, err := a.Backend.ProviderConfig(ctx); err != nil {
		errs = append(errs, err)
	} else {
		a.Assembler.SetCustomDefault(cfg.DefaultCustomModel)
	}
	return errs
}

// SendDraft validates one draft, appends it to the transcript and
// dispatches the assembled payload. The returned message is the
// transcript entry for the reply; failures are appended as error
// entries and also returned.
func (a *App) SendDraft(ctx context.Context, draft string) (*model.Message, error) {
	text, err := session.ValidateDraft(draft)
	if err != nil {
		return nil, err
	}
	if a.Dispatcher.Busy() {
		return nil, dispatch.ErrBusy
	}

	// Window first, then append: the new turn rides along on top of the
	// last ten prior entries instead of counting against them.
	payload := a.Assembler.Build(a.State, text)
	a.State.Append(model.NewUserMessage(text))

	result, err := a.Dispatcher.Dispatch(ctx, payload)
	if errors.Is(err, dispatch.ErrBusy) {
		return nil, err
	}
	if err != nil {
		errMsg := model.NewErrorMessage(err.Error())
		a.State.Append(errMsg)
		return &errMsg, err
	}

	reply := model.NewAssistantMessage(result)
	a.State.Append(reply)
	return &reply, nil
}

// Close releases held resources.
func (a *App) Close() {
	if a.Usage != nil {
		a.Usage.Close()
	}
}
