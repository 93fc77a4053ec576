// Catty - a terminal client for the Catty campus assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	"github.com/jeranaias/catty-tui/internal/cli"
)

// Version information (set at build time)
var Version = "0.3.0"

func main() {
	cli.Version = Version
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render("Error:")+" "+err.Error())
		os.Exit(1)
	}
}
