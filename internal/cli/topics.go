// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/catty-tui/internal/topics"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List suggested topics",
	RunE:  runTopics,
}

func runTopics(cmd *cobra.Command, args []string) error {
	a, err := openApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.topics().List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load suggested topics: %w", err)
	}

	w := cmd.OutOrStdout()
	texts := topics.Texts(list)
	if len(texts) == 0 {
		fmt.Fprintln(w, "No suggested topics.")
		return nil
	}
	for i, t := range texts {
		fmt.Fprintf(w, "%2d. %s\n", i+1, t)
	}
	return nil
}
