// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// ProgressConfig controls whether progress bars are rendered.
type ProgressConfig struct {
	Enabled bool
}

// NewProgressConfig derives progress settings from the global flags:
// quiet and JSON output both suppress bars.
func NewProgressConfig(globals GlobalFlags) ProgressConfig {
	return ProgressConfig{Enabled: !globals.Quiet && !globals.JSON}
}

// NewProgressBar creates a progress bar for a phase, or nil when progress
// output is suppressed. Callers must nil-check.
func NewProgressBar(cfg ProgressConfig, total int64, description string) *progressbar.ProgressBar {
	if !cfg.Enabled {
		return nil
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(30),
	)
}
