// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/agsearch/internal/ui"
)

// runList executes the 'list' CLI command, printing the indexed documents.
func runList(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: agsearch list

Description:
  List the documents recorded at the last init/sync, in the order they
  were uploaded (sorted by relative path).

Examples:
  agsearch list
  agsearch --json list

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	st, _ := mustLoadState(configPath, globals)

	if globals.JSON {
		payload := struct {
			Documents []string `json:"documents"`
		}{Documents: st.FileNames}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(payload)
		return
	}

	if len(st.FileNames) == 0 {
		fmt.Println("No documents indexed.")
		return
	}

	ui.SubHeader("Indexed documents:")
	for i, name := range st.FileNames {
		fmt.Printf("  %d. %s\n", i+1, name)
	}
}
