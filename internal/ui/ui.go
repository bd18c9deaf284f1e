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

// Package ui provides terminal color and formatting helpers for the CLI.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Shared color styles. Disabled globally by InitColors when color output
// is not wanted.
var (
	Cyan   = color.New(color.FgCyan)
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Red    = color.New(color.FgRed)
	Dim    = color.New(color.Faint)
	Bold   = color.New(color.Bold)
)

// InitColors enables or disables color output.
//
// Color is disabled when noColor is set, when NO_COLOR is present in the
// environment, or when stdout is not a terminal.
func InitColors(noColor bool) {
	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
		return
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// Header prints a bold section header followed by an underline.
func Header(text string) {
	_, _ = Bold.Println(text)
	_, _ = Bold.Println(underline(len(text)))
}

// SubHeader prints a cyan sub-section header.
func SubHeader(text string) {
	_, _ = Cyan.Println(text)
}

// Infof prints a formatted informational line to stderr.
func Infof(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Success prints a green checkmarked message.
func Success(text string) {
	_, _ = Green.Printf("✓ %s\n", text)
}

// Successf prints a formatted green checkmarked message.
func Successf(format string, args ...interface{}) {
	_, _ = Green.Printf("✓ "+format+"\n", args...)
}

// Warning prints a yellow warning to stderr.
func Warning(text string) {
	_, _ = Yellow.Fprintf(os.Stderr, "Warning: %s\n", text)
}

// Warningf prints a formatted yellow warning to stderr.
func Warningf(format string, args ...interface{}) {
	_, _ = Yellow.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// Label renders a bold field label for aligned key/value output.
func Label(text string) string {
	return Bold.Sprint(text)
}

// DimText renders text in the faint style.
func DimText(text string) string {
	return Dim.Sprint(text)
}

// CountText renders a count in cyan.
func CountText(n int) string {
	return Cyan.Sprintf("%d", n)
}

func underline(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = '='
	}
	return string(out)
}
