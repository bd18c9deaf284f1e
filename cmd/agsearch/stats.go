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
	"encoding/json"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/agsearch/internal/errors"
	"github.com/kraklabs/agsearch/internal/ui"
	"github.com/kraklabs/agsearch/pkg/remote"
)

// StatsResult represents the vector store statistics for JSON output.
type StatsResult struct {
	Documents   int                    `json:"documents"`
	VectorStore remote.VectorStoreInfo `json:"vector_store"`
	Folder      string                 `json:"folder,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// runStats executes the 'stats' CLI command, reporting remote vector store
// status and storage usage.
func runStats(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: agsearch stats

Description:
  Show statistics for the remote vector store: indexing status, storage
  usage, and per-file completion counts.

Examples:
  agsearch stats
  agsearch --json stats | jq '.vector_store.usage_bytes'

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	st, _ := mustLoadState(configPath, globals)

	api, err := newAPI(cfg)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	info, err := api.RetrieveVectorStore(context.Background(), st.VectorStoreID)
	if err != nil {
		errors.FatalError(errors.NewAPIError(
			"Cannot retrieve vector store",
			fmt.Sprintf("The service failed to return vector store %s", st.VectorStoreID),
			"The store may have been deleted remotely; run 'agsearch init <folder>' to recreate it",
			err,
		), globals.JSON)
	}

	result := &StatsResult{
		Documents:   len(st.FileNames),
		VectorStore: info,
		Folder:      st.Folder,
		Timestamp:   time.Now(),
	}

	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
		return
	}

	ui.Header("Document Index Status")
	fmt.Printf("%s      %s\n", ui.Label("Documents:"), ui.CountText(result.Documents))
	fmt.Printf("%s   %s\n", ui.Label("Vector Store:"), info.ID)
	fmt.Printf("%s         %s\n", ui.Label("Status:"), info.Status)
	fmt.Printf("%s        %s bytes\n", ui.Label("Storage:"), ui.CountText(int(info.UsageBytes)))
	fmt.Printf("%s          %d completed, %d failed, %d in progress\n",
		ui.Label("Files:"), info.FileCounts.Completed, info.FileCounts.Failed, info.FileCounts.InProgress)
	if st.Folder != "" {
		fmt.Printf("%s  %s\n", ui.Label("Source folder:"), ui.DimText(st.Folder))
	}
}
