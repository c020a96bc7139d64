// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"crypto/tls"
	"net/http"
	"time"
)

// DefaultTimeout bounds every non-upload request. The core has no cancel
// path for an in-flight turn, so the transport timeout is what keeps a
// hung request from leaving the shell busy forever.
const DefaultTimeout = 60 * time.Second

// UploadTimeout bounds asset uploads, which legitimately take longer
// than chat turns for large documents.
const UploadTimeout = 5 * time.Minute

// MaxResponseSize caps response bodies read into memory.
const MaxResponseSize = 10 * 1024 * 1024 // 10MB

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// One shared client per timeout class for all provider requests.
var (
	SharedClient = &http.Client{
		Transport: pooledTransport(),
		Timeout:   DefaultTimeout,
	}

	UploadClient = &http.Client{
		Transport: pooledTransport(),
		Timeout:   UploadTimeout,
	}
)

func pooledTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}
