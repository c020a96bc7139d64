// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Confirmation handling for destructive CLI actions.
//
// One pattern for every destructive command:
//  1. --confirm present: proceed without prompting
//  2. stdin is not a TTY: refuse, --confirm is required
//  3. otherwise: interactive y/N prompt, default no

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotConfirmed indicates the user declined, or could not be asked.
var ErrNotConfirmed = errors.New("action not confirmed")

// Confirm asks the user to confirm a destructive action described by
// prompt. confirmFlag short-circuits the prompt.
func Confirm(prompt string, confirmFlag bool) error {
	if confirmFlag {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("%w: stdin is not a terminal, pass --confirm", ErrNotConfirmed)
	}

	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ErrNotConfirmed
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	}
	return ErrNotConfirmed
}
