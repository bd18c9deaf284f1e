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

// Package state persists the remote resource identifiers created by init:
// the assistant, the vector store, and the uploaded files with their
// relative-path mapping. The state file is what later commands (ask, sync,
// cleanup) operate from.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotInitialized is returned by Load when no state file exists.
var ErrNotInitialized = errors.New("not initialized")

// State is the persisted record of the remote resources.
type State struct {
	AssistantID   string            `json:"assistant_id"`
	VectorStoreID string            `json:"vector_store_id"`
	FileIDs       []string          `json:"file_ids"`
	FileNames     []string          `json:"file_names"`
	FileIDMap     map[string]string `json:"file_id_map"`
	Folder        string            `json:"folder"`
}

// FileIDLookup inverts the relpath-to-fileID map for citation resolution.
func (s *State) FileIDLookup() map[string]string {
	lookup := make(map[string]string, len(s.FileIDMap))
	for relPath, fileID := range s.FileIDMap {
		lookup[fileID] = relPath
	}
	return lookup
}

// Load reads the state file at path.
//
// A missing file yields ErrNotInitialized (wrapped) so callers can
// distinguish "never ran init" from corruption.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path derives from the working directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNotInitialized, path)
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse state %s: %w", path, err)
	}
	return &st, nil
}

// Save writes the state file atomically-enough for a single-user CLI:
// indented JSON, directory created on demand, 0600 permissions.
func Save(st *State, path string) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Remove deletes the state file. Missing files are not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove state: %w", err)
	}
	return nil
}

// Exists reports whether a state file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
