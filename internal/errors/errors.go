// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errors provides categorized user-facing errors for the CLI.
//
// A UserError carries a short title, a longer explanation, and a hint that
// tells the user what to do next. FatalError renders the error (text or
// JSON) and terminates the process with a non-zero exit code.
package errors

import (
	"encoding/json"
	"fmt"
	"os"
)

// Kind classifies a UserError for exit handling and JSON output.
type Kind string

const (
	KindInput      Kind = "input"
	KindConfig     Kind = "config"
	KindNetwork    Kind = "network"
	KindAPI        Kind = "api"
	KindPermission Kind = "permission"
	KindInternal   Kind = "internal"
)

// UserError is an error with enough context to be shown directly to a user.
type UserError struct {
	Kind    Kind   `json:"kind"`
	Title   string `json:"title"`
	Details string `json:"details"`
	Hint    string `json:"hint,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Title, e.Details, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Details)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *UserError) Unwrap() error {
	return e.Cause
}

// NewInputError reports invalid arguments or preconditions the user controls.
func NewInputError(title, details, hint string) *UserError {
	return &UserError{Kind: KindInput, Title: title, Details: details, Hint: hint}
}

// NewConfigError reports problems loading, parsing, or validating configuration.
func NewConfigError(title, details, hint string, cause error) *UserError {
	return &UserError{Kind: KindConfig, Title: title, Details: details, Hint: hint, Cause: cause}
}

// NewNetworkError reports failures reaching the remote service.
func NewNetworkError(title, details, hint string, cause error) *UserError {
	return &UserError{Kind: KindNetwork, Title: title, Details: details, Hint: hint, Cause: cause}
}

// NewAPIError reports errors returned by the remote service itself.
func NewAPIError(title, details, hint string, cause error) *UserError {
	return &UserError{Kind: KindAPI, Title: title, Details: details, Hint: hint, Cause: cause}
}

// NewPermissionError reports filesystem permission or disk problems.
func NewPermissionError(title, details, hint string, cause error) *UserError {
	return &UserError{Kind: KindPermission, Title: title, Details: details, Hint: hint, Cause: cause}
}

// NewInternalError reports bugs and conditions the user cannot fix.
func NewInternalError(title, details, hint string, cause error) *UserError {
	return &UserError{Kind: KindInternal, Title: title, Details: details, Hint: hint, Cause: cause}
}

// FatalError prints err and exits with status 1.
//
// When jsonOut is true the error is emitted as a single JSON object on
// stdout so callers piping --json output still get machine-readable errors.
// Plain errors that are not UserError are wrapped as internal errors.
func FatalError(err error, jsonOut bool) {
	ue, ok := err.(*UserError)
	if !ok {
		ue = NewInternalError("Unexpected error", err.Error(), "", err)
	}

	if jsonOut {
		payload := struct {
			Error *UserError `json:"error"`
			Cause string     `json:"cause,omitempty"`
		}{Error: ue}
		if ue.Cause != nil {
			payload.Cause = ue.Cause.Error()
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(payload)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Error: %s\n", ue.Title)
	if ue.Details != "" {
		fmt.Fprintf(os.Stderr, "  %s\n", ue.Details)
	}
	if ue.Cause != nil {
		fmt.Fprintf(os.Stderr, "  cause: %v\n", ue.Cause)
	}
	if ue.Hint != "" {
		fmt.Fprintf(os.Stderr, "\n  Hint: %s\n", ue.Hint)
	}
	os.Exit(1)
}
