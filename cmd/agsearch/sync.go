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
	"os"
	"os/signal"
	"sort"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/agsearch/internal/errors"
	"github.com/kraklabs/agsearch/internal/ui"
	"github.com/kraklabs/agsearch/pkg/ignore"
	"github.com/kraklabs/agsearch/pkg/state"
)

// syncDiff is the comparison between the folder's current contents and the
// recorded document list.
type syncDiff struct {
	ToAdd     []string
	ToRemove  []string
	Unchanged []string
}

// runSync executes the 'sync' CLI command.
//
// Sync is nuke-and-pave: the diff is computed only for display and the
// no-change short-circuit; when anything differs, every remote file is
// deleted and the full current folder contents are re-uploaded. This keeps
// the remote store trivially consistent at the cost of re-uploading
// unchanged files.
func runSync(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	yes := fs.BoolP("yes", "y", false, "Skip confirmation prompt")
	indexTimeout := fs.Int("index-timeout", defaultIndexTimeoutSeconds, "Max seconds to wait for remote indexing")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	debug := fs.Bool("debug", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: agsearch sync [options] <folder>

Description:
  Re-synchronize the remote vector store with the folder's current
  contents. The command shows which files were added or removed since the
  last init/sync, then deletes ALL remote files and re-uploads the full
  current set (nuke and pave), waits for indexing, and rewrites the local
  state.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Review and apply folder changes
  agsearch sync ./docs

  # Non-interactive (for scripts)
  agsearch sync -y ./docs

Notes:
  Re-uploading everything is deliberate: the hosted service has no
  content-hash diffing, so a full replace is the only way to guarantee
  the remote set matches the folder.

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		errors.FatalError(errors.NewInputError(
			"Missing folder argument",
			"sync requires exactly one folder",
			"Run 'agsearch sync <folder>'",
		), globals.JSON)
	}
	folder := fs.Arg(0)

	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		errors.FatalError(errors.NewInputError(
			"Folder does not exist",
			fmt.Sprintf("'%s' is not an existing directory", folder),
			"Check the path and try again",
		), globals.JSON)
	}
	absFolder, err := absPath(folder)
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot resolve folder path",
			fmt.Sprintf("Failed to make '%s' absolute", folder),
			"This is unexpected. Please report this issue if it persists",
			err,
		), globals.JSON)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	timeoutSeconds := resolveIndexTimeout(fs.Changed("index-timeout"), *indexTimeout, cfg)
	st, stateFile := mustLoadState(configPath, globals)

	api, err := newAPI(cfg)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	docs, err := ignore.ListDocuments(absFolder, cfg.Ignore)
	if err != nil {
		errors.FatalError(errors.NewPermissionError(
			"Cannot enumerate documents",
			fmt.Sprintf("Failed to walk %s", absFolder),
			"Check directory permissions and try again",
			err,
		), globals.JSON)
	}

	current := make([]string, 0, len(docs))
	for _, doc := range docs {
		current = append(current, doc.RelPath)
	}
	diff := diffDocuments(current, st.FileNames)

	fmt.Printf("Unchanged: %d file(s)\n", len(diff.Unchanged))
	if len(diff.ToAdd) > 0 {
		fmt.Printf("\nTo add (%d):\n", len(diff.ToAdd))
		for _, name := range diff.ToAdd {
			fmt.Printf("  + %s\n", name)
		}
	}
	if len(diff.ToRemove) > 0 {
		fmt.Printf("\nTo remove (%d):\n", len(diff.ToRemove))
		for _, name := range diff.ToRemove {
			fmt.Printf("  - %s\n", name)
		}
	}

	if len(diff.ToAdd) == 0 && len(diff.ToRemove) == 0 {
		fmt.Println("\nNo changes needed.")
		return
	}

	if !*yes {
		fmt.Println()
		if !confirm("Apply changes? (will re-upload all files)") {
			fmt.Println("Cancelled.")
			return
		}
	}

	logger := newCommandLogger(*debug, globals)
	startMetricsServer(*metricsAddr, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

	// Nuke: drop every recorded file from the store and the file storage.
	// Individual failures are tolerated; the re-upload below rebuilds the
	// store membership from scratch anyway.
	fmt.Println("\nRemoving all files from vector store...")
	for _, fileID := range st.FileIDs {
		if err := api.RemoveVectorStoreFile(ctx, st.VectorStoreID, fileID); err != nil {
			logger.Debug("sync.detach.failed", "file_id", fileID, "err", err)
		}
		if err := api.DeleteFile(ctx, fileID); err != nil {
			logger.Debug("sync.delete.failed", "file_id", fileID, "err", err)
		}
	}

	// Pave: upload the full current set and attach each file.
	fmt.Println("Uploading files...")
	uploaded, err := uploadDocuments(ctx, api, docs, st.VectorStoreID, NewProgressConfig(globals), logger)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	fmt.Println("Waiting for indexing...")
	counts, err := waitForIndexing(ctx, api, st.VectorStoreID, timeoutSeconds, globals)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if counts.Failed > 0 {
		ui.Warningf("%d file(s) failed remote indexing", counts.Failed)
	}

	st.FileIDs = uploaded.FileIDs
	st.FileNames = uploaded.FileNames
	st.FileIDMap = uploaded.FileIDMap
	st.Folder = absFolder
	if err := state.Save(st, stateFile); err != nil {
		errors.FatalError(errors.NewPermissionError(
			"Cannot save state file",
			fmt.Sprintf("Failed to write %s", stateFile),
			"The remote store was updated but the local record is stale; re-run 'agsearch sync'",
			err,
		), globals.JSON)
	}

	fmt.Println()
	ui.Successf("Done! Indexed %d document(s).", len(uploaded.FileNames))
}

// diffDocuments compares the folder's current relative paths against the
// recorded ones. All three result sets come back sorted.
func diffDocuments(current, indexed []string) syncDiff {
	currentSet := make(map[string]bool, len(current))
	for _, name := range current {
		currentSet[name] = true
	}
	indexedSet := make(map[string]bool, len(indexed))
	for _, name := range indexed {
		indexedSet[name] = true
	}

	var diff syncDiff
	for name := range currentSet {
		if indexedSet[name] {
			diff.Unchanged = append(diff.Unchanged, name)
		} else {
			diff.ToAdd = append(diff.ToAdd, name)
		}
	}
	for name := range indexedSet {
		if !currentSet[name] {
			diff.ToRemove = append(diff.ToRemove, name)
		}
	}

	sort.Strings(diff.ToAdd)
	sort.Strings(diff.ToRemove)
	sort.Strings(diff.Unchanged)
	return diff
}
