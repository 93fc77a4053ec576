// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.3.0"

	// Global flags
	configPath string
	ephemeral  bool
	verbose    bool
)

// rootCmd opens the full-screen chat when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "catty",
	Short: "Chat with the Catty campus assistant",
	Long: `Catty is a terminal client for the Catty campus assistant.

Run it without arguments for the full-screen chat. Chats are kept on disk
and reopen where you left off. Signed-in students can switch to student mode
for answers about their own studies.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute runs the command line.
func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.catty/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep chats in memory only")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(configCmd)
}
