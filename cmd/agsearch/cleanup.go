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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/agsearch/internal/errors"
	"github.com/kraklabs/agsearch/internal/ui"
	"github.com/kraklabs/agsearch/pkg/remote"
	"github.com/kraklabs/agsearch/pkg/state"
)

// runCleanup executes the 'cleanup' CLI command, deleting the assistant,
// the vector store, and every uploaded file, then removing the local state.
func runCleanup(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	yes := fs.BoolP("yes", "y", false, "Skip confirmation prompt")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: agsearch cleanup [options]

Description:
  WARNING: This deletes every remote resource this project created: the
  assistant, the vector store, and all uploaded files. Individual
  deletion failures are reported as warnings and do not stop the rest of
  the teardown. The local state file is removed afterwards.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  agsearch cleanup
  agsearch cleanup -y

Notes:
  Project settings (.agsearch/project.yaml) are kept so a later init can
  reuse them. Delete the .agsearch directory to remove everything.

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	stateFile, err := statePath(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	st, err := state.Load(stateFile)
	if err != nil {
		fmt.Println("Nothing to clean up.")
		return
	}

	cfg, cfgErr := LoadConfig(configPath)
	if cfgErr != nil {
		cfg = DefaultConfig()
		cfg.applyEnvOverrides()
	}

	api, err := newAPI(cfg)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	if !*yes {
		if !confirm("Delete all resources?") {
			fmt.Println("Cancelled.")
			return
		}
	}

	logger := newCommandLogger(false, globals)
	deleteRemoteResources(context.Background(), api, st, logger)

	if err := state.Remove(stateFile); err != nil {
		errors.FatalError(errors.NewPermissionError(
			"Cannot remove state file",
			fmt.Sprintf("Failed to delete %s", stateFile),
			"Remove the file manually",
			err,
		), globals.JSON)
	}

	ui.Success("Cleaned up.")
}

// deleteRemoteResources tears down the assistant, vector store, and files
// recorded in st. Failures are warnings: a half-deleted project should
// still end up with as little remote state as possible.
func deleteRemoteResources(ctx context.Context, api remote.API, st *state.State, logger *slog.Logger) {
	fmt.Println("Deleting assistant...")
	if st.AssistantID != "" {
		if err := api.DeleteAssistant(ctx, st.AssistantID); err != nil {
			ui.Warningf("%v", err)
		}
	}

	fmt.Println("Deleting vector store...")
	if st.VectorStoreID != "" {
		if err := api.DeleteVectorStore(ctx, st.VectorStoreID); err != nil {
			ui.Warningf("%v", err)
		}
	}

	fmt.Println("Deleting uploaded files...")
	for _, fileID := range st.FileIDs {
		if err := api.DeleteFile(ctx, fileID); err != nil {
			logger.Debug("cleanup.delete.failed", "file_id", fileID, "err", err)
		}
	}
}
