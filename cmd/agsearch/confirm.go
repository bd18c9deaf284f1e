// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// confirm asks a yes/no question on stdin, defaulting to no.
//
// Commands that mutate remote state call this before acting unless the
// user passed -y/--yes.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println()
		return false
	}
	return strings.EqualFold(strings.TrimSpace(input), "y")
}
