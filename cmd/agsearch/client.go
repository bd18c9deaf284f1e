// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	goerrors "errors"
	"fmt"
	"os"

	"github.com/kraklabs/agsearch/internal/errors"
	"github.com/kraklabs/agsearch/pkg/remote"
	"github.com/kraklabs/agsearch/pkg/state"
)

// mustLoadState loads the state file for commands that require prior
// initialization, exiting with a descriptive error when it is absent.
func mustLoadState(configPath string, globals GlobalFlags) (*state.State, string) {
	stateFile, err := statePath(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	st, err := state.Load(stateFile)
	if err != nil {
		if goerrors.Is(err, state.ErrNotInitialized) {
			errors.FatalError(errors.NewConfigError(
				"Not initialized",
				"No state file found for this project",
				"Run 'agsearch init <folder>' first",
				err,
			), globals.JSON)
		}
		errors.FatalError(errors.NewConfigError(
			"Cannot load state file",
			fmt.Sprintf("The state file %s exists but could not be read", stateFile),
			"Fix or delete the file, then re-run 'agsearch init <folder>'",
			err,
		), globals.JSON)
	}
	return st, stateFile
}

// newAPI builds the remote service client from the environment and config.
//
// The API key never touches the config file; OPENAI_API_KEY is the only
// source.
func newAPI(cfg *Config) (remote.API, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.NewConfigError(
			"Missing API key",
			"The OPENAI_API_KEY environment variable is not set",
			"Export OPENAI_API_KEY with a key for the hosted service and try again",
			nil,
		)
	}

	baseURL := ""
	if cfg != nil {
		baseURL = cfg.BaseURL
	}
	return remote.NewOpenAIBackend(apiKey, baseURL), nil
}
