// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"

	"github.com/jeranaias/modelschat-tui/internal/model"
)

func TestRenderMessageListsSources(t *testing.T) {
	sim := 0.92
	msg := model.Message{
		Role:    model.RoleAssistant,
		Content: "grounded answer",
		Stats:   &model.TokenStats{Model: "gemini-2.5-flash", TotalTokens: 12},
		Sources: []model.Source{
			{Document: "report.pdf", Similarity: &sim},
			{Document: "notes.md"},
		},
	}

	m := &Model{}
	out := m.renderMessage(msg, 60)

	if !strings.Contains(out, "sources:") {
		t.Fatalf("sources block missing:\n%s", out)
	}
	if !strings.Contains(out, "report.pdf (92%)") {
		t.Errorf("similarity source not rendered:\n%s", out)
	}
	if !strings.Contains(out, "notes.md") {
		t.Errorf("plain source not rendered:\n%s", out)
	}
}

func TestRenderMessageOmitsSourcesBlockWhenEmpty(t *testing.T) {
	msg := model.Message{Role: model.RoleAssistant, Content: "plain answer"}

	m := &Model{}
	if out := m.renderMessage(msg, 60); strings.Contains(out, "sources:") {
		t.Errorf("empty sources rendered a block:\n%s", out)
	}
}
