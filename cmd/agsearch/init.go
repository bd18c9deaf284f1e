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
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/agsearch/internal/errors"
	"github.com/kraklabs/agsearch/internal/ui"
	"github.com/kraklabs/agsearch/pkg/ignore"
	"github.com/kraklabs/agsearch/pkg/remote"
	"github.com/kraklabs/agsearch/pkg/state"
)

// initFlags holds parsed flags for the init command.
type initFlags struct {
	yes, force, debug   bool
	indexTimeoutSeconds int
	model               string
	metricsAddr         string
}

// runInit executes the 'init' CLI command: enumerate the folder's
// documents, upload them, create the vector store and assistant, and
// persist the resulting identifiers.
func runInit(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var f initFlags
	fs.BoolVarP(&f.yes, "yes", "y", false, "Skip confirmation prompts")
	fs.BoolVar(&f.force, "force", false, "Reinitialize without prompting, deleting existing remote resources")
	fs.IntVar(&f.indexTimeoutSeconds, "index-timeout", defaultIndexTimeoutSeconds, "Max seconds to wait for remote indexing")
	fs.StringVar(&f.model, "model", "", "Assistant model (default: gpt-4o)")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: agsearch init [options] <folder>

Description:
  Upload the documents under <folder> to the hosted service, create a
  vector store that indexes them, wait for indexing to finish, and create
  a retrieval assistant scoped to that store.

  Files matched by the repository .gitignore, a .agsearchignore file (at
  the repository root or inside the folder), or the built-in defaults are
  not uploaded.

  The resulting resource identifiers are written to .agsearch/state.json
  and the project settings to .agsearch/project.yaml.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Index a documentation folder
  agsearch init ./docs

  # Allow slow indexing up to 30 minutes
  agsearch init --index-timeout 1800 ./docs

  # Reinitialize, tearing down the previous resources first
  agsearch init --force ./docs

Notes:
  Requires OPENAI_API_KEY in the environment. Re-running init on an
  initialized project prompts before deleting the existing remote
  resources.

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		errors.FatalError(errors.NewInputError(
			"Missing folder argument",
			"init requires exactly one folder to index",
			"Run 'agsearch init <folder>'",
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

	// Settings: reuse an existing project.yaml when present, otherwise
	// start from defaults.
	cfg, cfgErr := LoadConfig(configPath)
	if cfgErr != nil {
		cfg = DefaultConfig()
		cfg.applyEnvOverrides()
	}
	if f.model != "" {
		cfg.Model = f.model
	}
	cfg.IndexTimeoutSeconds = resolveIndexTimeout(fs.Changed("index-timeout"), f.indexTimeoutSeconds, cfg)

	api, err := newAPI(cfg)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	stateFile, err := statePath(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	logger := newCommandLogger(f.debug, globals)
	startMetricsServer(f.metricsAddr, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

	// Reinitializing deletes the previous remote resources first.
	if state.Exists(stateFile) {
		if !f.yes && !f.force {
			if !confirm("Already initialized. Reinitialize? This will delete existing resources.") {
				fmt.Println("Cancelled.")
				return
			}
		}
		if prev, err := state.Load(stateFile); err == nil {
			deleteRemoteResources(ctx, api, prev, logger)
		}
		if err := state.Remove(stateFile); err != nil {
			ui.Warningf("cannot remove previous state: %v", err)
		}
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
	if len(docs) == 0 {
		errors.FatalError(errors.NewInputError(
			"No files found in folder",
			fmt.Sprintf("Every file under %s is excluded by the ignore rules, or the folder is empty", absFolder),
			"Check the folder contents and your .gitignore/.agsearchignore patterns",
		), globals.JSON)
	}

	logger.Info("init.starting", "folder", absFolder, "documents", len(docs), "model", cfg.Model)

	progressCfg := NewProgressConfig(globals)
	uploaded, err := uploadDocuments(ctx, api, docs, "", progressCfg, logger)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	if !globals.Quiet {
		fmt.Println("Creating vector store...")
	}
	vectorStoreID, err := api.CreateVectorStore(ctx, cfg.VectorStoreName, uploaded.FileIDs)
	if err != nil {
		errors.FatalError(errors.NewAPIError(
			"Cannot create vector store",
			"The service failed to create the vector store over the uploaded files",
			"The uploaded files may be orphaned; run 'agsearch cleanup' after investigating",
			err,
		), globals.JSON)
	}

	if !globals.Quiet {
		fmt.Println("Waiting for files to be indexed...")
	}
	counts, err := waitForIndexing(ctx, api, vectorStoreID, cfg.IndexTimeoutSeconds, globals)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if counts.Failed > 0 {
		ui.Warningf("%d file(s) failed remote indexing", counts.Failed)
	}

	if !globals.Quiet {
		fmt.Println("Creating assistant...")
	}
	assistantID, err := api.CreateAssistant(ctx, remote.AssistantSpec{
		Name:          cfg.AssistantName,
		Model:         cfg.Model,
		Instructions:  cfg.Instructions,
		VectorStoreID: vectorStoreID,
	})
	if err != nil {
		errors.FatalError(errors.NewAPIError(
			"Cannot create assistant",
			"The service failed to create the retrieval assistant",
			"Run 'agsearch cleanup' to remove the partial resources, then retry",
			err,
		), globals.JSON)
	}

	// Persist settings next to the state so later commands find both.
	targetConfig := configPath
	if targetConfig == "" {
		if resolved, err := resolvedConfigPath(""); err == nil {
			targetConfig = resolved
		} else {
			cwd, _ := os.Getwd()
			targetConfig = ConfigPath(cwd)
		}
	}
	if err := SaveConfig(cfg, targetConfig); err != nil {
		errors.FatalError(err, globals.JSON)
	}

	st := &state.State{
		AssistantID:   assistantID,
		VectorStoreID: vectorStoreID,
		FileIDs:       uploaded.FileIDs,
		FileNames:     uploaded.FileNames,
		FileIDMap:     uploaded.FileIDMap,
		Folder:        absFolder,
	}
	if err := state.Save(st, stateFile); err != nil {
		errors.FatalError(errors.NewPermissionError(
			"Cannot save state file",
			fmt.Sprintf("Failed to write %s", stateFile),
			"The remote resources exist but are untracked; note the IDs from --debug output",
			err,
		), globals.JSON)
	}

	fmt.Println()
	ui.Successf("Done! Indexed %d document(s).", len(uploaded.FileIDs))
	fmt.Println()
	ui.SubHeader("Next steps:")
	fmt.Printf("  1. Run '%s' to ask a question\n", ui.Cyan.Sprint("agsearch ask \"...\""))
	fmt.Printf("  2. Run '%s' after changing the folder\n", ui.Cyan.Sprint("agsearch sync "+folder))
}
