// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport holds what the provider clients share: the typed
// error taxonomy the dispatcher matches on, and pooled HTTP clients.
//
// The dispatcher's one-shot fallback rule is a match on ErrTypeModelNotFound,
// never on error-message text. Each client is responsible for mapping its
// wire-level failure signatures (HTTP 404, "not found" bodies, NOT_FOUND
// statuses) into the tagged kind at the edge.
package transport

import (
	"errors"
	"strconv"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota

	// ErrTypeNetwork is a transport failure with no HTTP response.
	ErrTypeNetwork

	// ErrTypeHTTP is a non-2xx response that is not a model-not-found.
	ErrTypeHTTP

	// ErrTypeModelNotFound is the one failure class the dispatcher
	// recovers from, by substituting a fallback model exactly once.
	ErrTypeModelNotFound

	// ErrTypeUpload is a failure during asset ingest.
	ErrTypeUpload

	// ErrTypeInvalidResponse is a 2xx response that could not be decoded.
	ErrTypeInvalidResponse
)

// ClientError represents an error from a provider client.
type ClientError struct {
	Type    ErrorType
	Status  int // HTTP status, 0 for network failures
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// NetworkError wraps a transport failure that produced no response.
func NetworkError(msg string, cause error) *ClientError {
	return &ClientError{Type: ErrTypeNetwork, Message: msg, Cause: cause}
}

// HTTPError classifies a non-2xx response. A 404 status, or a body
// carrying a not-found signature, is tagged ErrTypeModelNotFound here so
// callers above the transport never inspect strings.
func HTTPError(status int, body string) *ClientError {
	if status == 404 || hasNotFoundSignature(body) {
		return &ClientError{Type: ErrTypeModelNotFound, Status: status, Message: "model not found: HTTP " + strconv.Itoa(status) + ": " + strings.TrimSpace(body)}
	}
	return &ClientError{Type: ErrTypeHTTP, Status: status, Message: "HTTP " + strconv.Itoa(status) + ": " + strings.TrimSpace(body)}
}

// UploadError wraps a failure during asset ingest.
func UploadError(msg string, cause error) *ClientError {
	return &ClientError{Type: ErrTypeUpload, Message: msg, Cause: cause}
}

// DecodeError wraps a malformed 2xx response body.
func DecodeError(msg string, cause error) *ClientError {
	return &ClientError{Type: ErrTypeInvalidResponse, Message: msg, Cause: cause}
}

// hasNotFoundSignature checks an error body for the provider phrasings
// that mean the selected model cannot be served. Kept here, at the wire
// edge, so the classification happens exactly once.
func hasNotFoundSignature(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "not found") || strings.Contains(lower, "not_found")
}

// =============================================================================
// PREDICATES
// =============================================================================

// IsModelNotFound checks if an error is a model-not-found error.
func IsModelNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeModelNotFound
	}
	return false
}

// IsNetwork checks if an error is a transport failure.
func IsNetwork(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNetwork
	}
	return false
}

// IsUpload checks if an error is an upload failure.
func IsUpload(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUpload
	}
	return false
}
