// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/catty-tui/internal/render"
)

var renderTrace bool

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Convert assistant Markdown to HTML",
	Long: `Convert assistant Markdown to the HTML used in exports. Input is read
from the file, or from stdin when no file is given.

With --trace every pipeline stage is printed with its output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().BoolVarP(&renderTrace, "trace", "t", false, "print the output of every stage")
}

func runRender(cmd *cobra.Command, args []string) error {
	var (
		raw []byte
		err error
	)
	if len(args) == 1 {
		raw, err = os.ReadFile(args[0])
	} else {
		raw, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	w := cmd.OutOrStdout()
	if !renderTrace {
		fmt.Fprintln(w, render.Render(string(raw)))
		return nil
	}
	for _, step := range render.Trace(string(raw)) {
		fmt.Fprintln(w, TitleStyle.Render("== "+step.Stage))
		fmt.Fprintln(w, step.Output)
	}
	return nil
}
