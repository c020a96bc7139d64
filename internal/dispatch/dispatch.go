// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch routes assembled payloads to provider senders and
// owns the in-flight policy: one request at a time, and one automatic
// fallback retry when the selected model is gone.
package dispatch

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/jeranaias/modelschat-tui/internal/model"
	"github.com/jeranaias/modelschat-tui/internal/registry"
	"github.com/jeranaias/modelschat-tui/internal/transport"
)

// ErrBusy indicates a dispatch was attempted while another was still in
// flight. The caller keeps the draft and tells the user to wait.
var ErrBusy = errors.New("a request is already in flight")

// =============================================================================
// SENDER
// =============================================================================

// Sender executes one assembled payload against a provider. The backend
// proxy and the direct Gemini client both implement it.
type Sender interface {
	Send(ctx context.Context, payload model.RequestPayload) (*model.ChatResult, error)
}

// Recorder receives per-turn usage after each successful dispatch.
type Recorder interface {
	RecordUsage(provider model.Provider, stats model.TokenStats)
}

// =============================================================================
// DISPATCHER
// =============================================================================

// Dispatcher holds one sender per provider plus the registry used for
// fallback selection. Safe for concurrent use; concurrent dispatches
// beyond the first fail fast with ErrBusy.
type Dispatcher struct {
	senders  map[model.Provider]Sender
	registry *registry.Registry
	recorder Recorder
	busy     atomic.Bool
}

// New creates a dispatcher backed by the given registry.
func New(reg *registry.Registry) *Dispatcher {
	return &Dispatcher{
		senders:  make(map[model.Provider]Sender),
		registry: reg,
	}
}

// Register attaches a sender for a provider.
func (d *Dispatcher) Register(provider model.Provider, s Sender) {
	d.senders[provider] = s
}

// WithRecorder attaches a usage recorder.
func (d *Dispatcher) WithRecorder(r Recorder) *Dispatcher {
	d.recorder = r
	return d
}

// Busy reports whether a dispatch is in flight.
func (d *Dispatcher) Busy() bool {
	return d.busy.Load()
}

// Dispatch sends one payload and returns the normalized result.
//
// If the provider rejects the payload's model as unavailable, the
// dispatcher re-picks from the last-known catalog, records the new
// selection, and retries exactly once. Any other failure, and a failure
// of the retry itself, surfaces to the caller unchanged.
//
// When the reply names a different model than the one requested, the
// registry selection is updated to match what actually answered.
func (d *Dispatcher) Dispatch(ctx context.Context, payload model.RequestPayload) (*model.ChatResult, error) {
	if !d.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer d.busy.Store(false)

	sender, ok := d.senders[payload.Provider]
	if !ok {
		return nil, errors.New("no sender for provider " + string(payload.Provider))
	}

	result, err := sender.Send(ctx, payload)
	if err != nil && transport.IsModelNotFound(err) {
		fallback := d.registry.PickFallback(payload.Provider)
		if fallback != "" && fallback != registry.Normalize(payload.Model) {
			d.registry.SetActiveModel(payload.Provider, fallback)
			payload.Model = fallback
			result, err = sender.Send(ctx, payload)
		}
	}
	if err != nil {
		return nil, err
	}

	if result.Model != "" && registry.Normalize(result.Model) != registry.Normalize(payload.Model) {
		d.registry.SetActiveModel(payload.Provider, result.Model)
	}

	if d.recorder != nil {
		d.recorder.RecordUsage(payload.Provider, model.TokenStats{
			Model:          result.Model,
			PromptTokens:   result.PromptTokens,
			ResponseTokens: result.ResponseTokens,
			TotalTokens:    result.TotalTokens,
		})
	}
	return result, nil
}
