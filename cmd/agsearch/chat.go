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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/agsearch/internal/errors"
	"github.com/kraklabs/agsearch/internal/ui"
)

// runChat executes the 'chat' CLI command: an interactive loop over one
// persistent thread, so follow-up questions keep their context.
func runChat(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	withSources := fs.Bool("with-sources", false, "Include cited excerpts in the Sources section")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: agsearch chat [options]

Description:
  Chat interactively about the indexed documents. All questions share one
  conversation thread, so the assistant sees earlier turns. Type 'exit'
  or 'quit' (or press Ctrl-D) to leave.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  agsearch chat
  agsearch chat --with-sources

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

	ui.Infof("Chatting with %d document(s). Type 'exit' to quit.", len(st.FileNames))

	ctx := context.Background()
	threadID, err := api.StartThread(ctx)
	if err != nil {
		errors.FatalError(wrapRemoteErr(err), globals.JSON)
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return
			}
			errors.FatalError(errors.NewInternalError(
				"Cannot read input",
				"Reading from stdin failed",
				"",
				err,
			), globals.JSON)
		}

		question := strings.TrimSpace(line)
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") || strings.EqualFold(question, "quit") {
			return
		}

		if err := api.AddMessage(ctx, threadID, question); err != nil {
			errors.FatalError(wrapRemoteErr(err), globals.JSON)
		}
		answer, err := runThread(ctx, api, st.AssistantID, threadID)
		if err != nil {
			errors.FatalError(err, globals.JSON)
		}

		printAnswer(answer, st, *withSources, globals)
	}
}
