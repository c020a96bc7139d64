// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the shared data structures for modelschat:
// conversation messages, request payloads, canonical chat results, and
// document assets.
//
// Everything in this package is plain data. Behavior lives in the
// packages that own each concern (registry, session, dispatch, assets);
// keeping the types here avoids import cycles between them.
package model
