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

// Package main implements the agsearch CLI for uploading a folder of
// documents to a hosted assistant/vector-store service and asking
// questions against the indexed corpus.
//
// Usage:
//
//	agsearch init <folder>        Upload documents and create remote resources
//	agsearch ask <question>       Ask a question about the documents
//	agsearch chat                 Ask questions interactively
//	agsearch list                 List indexed documents
//	agsearch stats                Show vector store statistics
//	agsearch sync <folder>        Re-sync folder contents with the remote store
//	agsearch cleanup              Delete all remote resources
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/agsearch/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// GlobalFlags holds the global CLI flags that apply to all commands.
type GlobalFlags struct {
	JSON    bool // Output in JSON format (for applicable commands)
	NoColor bool // Disable color output
	Verbose int  // Verbosity level: 0=normal, 1=-v (info), 2=-vv (debug)
	Quiet   bool // Suppress non-essential output (progress, info messages)
}

// main is the entry point for the agsearch CLI.
//
// It parses global flags and dispatches to command handlers. Subcommand
// flags are parsed by each handler's own flag set.
func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		configPath  = flag.StringP("config", "c", "", "Path to .agsearch/project.yaml (default: discovered upward from the working directory)")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format (for applicable commands)")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress non-essential output (progress, info messages)")
	)

	// Stop parsing at the first non-flag argument (the command name), so
	// subcommand flags like "sync --yes" reach the subcommand handlers.
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `agsearch - Ask questions about a folder of documents

agsearch uploads local documents to a hosted assistant/vector-store
service (OpenAI), waits for remote indexing, and answers natural-language
questions against the indexed corpus with citations pointing back at your
files. Retrieval and ranking happen entirely on the remote service.

Usage:
  agsearch <command> [options]

Commands:
  init      Upload documents from a folder and create remote resources
  ask       Ask a single question about the indexed documents
  chat      Ask questions interactively in one conversation
  list      List indexed documents
  stats     Show vector store statistics
  sync      Re-sync folder contents with the remote store (destructive!)
  cleanup   Delete the assistant, vector store, and uploaded files

Global Options:
  --json            Output in JSON format (for applicable commands)
  --no-color        Disable color output (respects NO_COLOR env var)
  -v, --verbose     Increase verbosity (-v for info, -vv for debug)
  -q, --quiet       Suppress non-essential output (progress, info messages)
  -c, --config      Path to .agsearch/project.yaml
  -V, --version     Show version and exit

Examples:
  agsearch init ./docs               Index the docs folder
  agsearch ask "How do I deploy?"    Ask a question
  agsearch ask --with-sources "..."  Include quoted excerpts in Sources
  agsearch sync ./docs               Pick up added/removed files
  agsearch cleanup -y                Tear down remote resources

Getting Started:
  1. export OPENAI_API_KEY=sk-...
  2. Index your documents:   agsearch init ./docs
  3. Ask a question:         agsearch ask "What is covered here?"

Ignore Rules:
  Files matched by the repository .gitignore, a .agsearchignore at the
  repository root or inside the folder, or the built-in defaults
  (.git/, .env, .agsearch/) are never uploaded.

Environment Variables:
  OPENAI_API_KEY     API key for the hosted service (required)
  AGSEARCH_BASE_URL  Override the service endpoint
  AGSEARCH_MODEL     Override the assistant model

For detailed command help: agsearch <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("agsearch version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	// Check NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}

	// Validate conflicting flags
	if *quiet && *verbose > 0 {
		fmt.Fprintf(os.Stderr, "Error: cannot use --quiet and --verbose together\n")
		os.Exit(1)
	}

	// JSON mode auto-enables quiet to prevent progress bars corrupting JSON output
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{
		JSON:    *jsonOutput,
		NoColor: *noColor,
		Verbose: *verbose,
		Quiet:   *quiet,
	}

	ui.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs, *configPath, globals)
	case "ask":
		runAsk(cmdArgs, *configPath, globals)
	case "chat":
		runChat(cmdArgs, *configPath, globals)
	case "list":
		runList(cmdArgs, *configPath, globals)
	case "stats":
		runStats(cmdArgs, *configPath, globals)
	case "sync":
		runSync(cmdArgs, *configPath, globals)
	case "cleanup":
		runCleanup(cmdArgs, *configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
