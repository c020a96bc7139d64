// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// ASSET TYPE
// =============================================================================

// Asset is one uploaded document available for retrieval grounding.
// The backend owns every field: the client never synthesizes an Asset
// locally, it always re-fetches the list after a mutation so that
// server-assigned values (id, formattedSize) cannot drift.
type Asset struct {
	ID            string    `json:"id"`
	OriginalName  string    `json:"originalName"`
	MimeType      string    `json:"mimetype"`
	SizeBytes     int64     `json:"sizeBytes"`
	FormattedSize string    `json:"formattedSize"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

// AssetStats summarizes the document set, as reported by the backend.
type AssetStats struct {
	TotalFiles int    `json:"totalFiles"`
	TotalSize  string `json:"totalSize"`
}
