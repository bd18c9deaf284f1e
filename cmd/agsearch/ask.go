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

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/agsearch/internal/errors"
	"github.com/kraklabs/agsearch/internal/ui"
	"github.com/kraklabs/agsearch/pkg/citation"
	"github.com/kraklabs/agsearch/pkg/remote"
	"github.com/kraklabs/agsearch/pkg/state"
)

// runAsk executes the 'ask' CLI command: one question, one answer, with
// normalized citations.
func runAsk(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	withSources := fs.Bool("with-sources", false, "Include cited excerpts in the Sources section")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: agsearch ask [options] <question>

Description:
  Ask a single question about the indexed documents. The question is run
  against the retrieval assistant created by 'agsearch init'; the answer
  is printed with inline [n] markers tied to a Sources list naming the
  documents the answer was drawn from.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Ask a question
  agsearch ask "How is authentication configured?"

  # Include the quoted excerpts behind each citation
  agsearch ask --with-sources "What are the deployment steps?"

  # Machine-readable output
  agsearch --json ask "Summarize the changelog"

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		errors.FatalError(errors.NewInputError(
			"Missing question",
			"ask requires exactly one question argument",
			"Run 'agsearch ask \"<question>\"' (quote the question)",
		), globals.JSON)
	}
	question := fs.Arg(0)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	st, _ := mustLoadState(configPath, globals)

	api, err := newAPI(cfg)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	if !globals.Quiet {
		ui.Infof("Searching %d document(s)...", len(st.FileNames))
	}

	ctx := context.Background()
	answer, err := askQuestion(ctx, api, st, question)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	printAnswer(answer, st, *withSources, globals)
}

// askQuestion runs one question through a fresh thread and returns the raw
// answer.
func askQuestion(ctx context.Context, api remote.API, st *state.State, question string) (remote.Answer, error) {
	threadID, err := api.StartThread(ctx)
	if err != nil {
		return remote.Answer{}, wrapRemoteErr(err)
	}
	if err := api.AddMessage(ctx, threadID, question); err != nil {
		return remote.Answer{}, wrapRemoteErr(err)
	}
	return runThread(ctx, api, st.AssistantID, threadID)
}

// runThread executes the assistant against a thread, waits for the run to
// finish, and fetches the newest answer.
func runThread(ctx context.Context, api remote.API, assistantID, threadID string) (remote.Answer, error) {
	runID, err := api.StartRun(ctx, threadID, assistantID)
	if err != nil {
		return remote.Answer{}, wrapRemoteErr(err)
	}

	if _, err := remote.WaitForRun(ctx, api, threadID, runID, remote.DefaultPollConfig(0)); err != nil {
		return remote.Answer{}, errors.NewAPIError(
			"Run failed",
			"The assistant did not complete the question",
			"Re-run the question; check the service status if this persists",
			err,
		)
	}

	answer, err := api.LatestAnswer(ctx, threadID)
	if err != nil {
		return remote.Answer{}, wrapRemoteErr(err)
	}
	return answer, nil
}

// printAnswer renders the normalized answer and its Sources block, or the
// JSON equivalent under --json.
func printAnswer(answer remote.Answer, st *state.State, withSources bool, globals GlobalFlags) {
	text, citations := citation.Normalize(answer.Text, answer.Annotations, st.FileIDLookup())

	if globals.JSON {
		payload := struct {
			Answer    string              `json:"answer"`
			Citations []citation.Citation `json:"citations"`
		}{Answer: text, Citations: citations}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(payload)
		return
	}

	fmt.Println(text)
	if lines := citation.RenderSources(citations, withSources); lines != nil {
		fmt.Println()
		for _, line := range lines {
			fmt.Println(line)
		}
	}
}

// wrapRemoteErr converts raw SDK errors into user-facing API errors.
func wrapRemoteErr(err error) error {
	return errors.NewAPIError(
		"Remote service error",
		"A call to the hosted service failed",
		"Check your API key, network connection, and service status",
		err,
	)
}
