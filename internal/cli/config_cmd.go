// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/catty-tui/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and manage configuration",
	Long: `Show and manage configuration.

Subcommands:
  show      print the effective configuration as TOML (default)
  init      write a configuration file with the defaults
  get       print one value by key, or list the keys

Configuration is read from ~/.catty/config.toml (or config.json). CATTY_HOME
moves the directory; CATTY_* environment variables override single values.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the defaults",
	RunE:  runConfigInit,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a value such as services.answer_url",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), cfg.String())
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.ConfigPathTOML(); err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.Default()
	var err error
	if strings.HasSuffix(path, ".json") {
		err = config.SaveJSON(cfg, path)
	} else {
		if err = config.EnsureConfigDir(); err == nil {
			err = config.SaveTOML(cfg, path)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("[OK]")+" Wrote "+path)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, key := range config.Keys() {
			fmt.Fprintln(w, key)
		}
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	value, err := cfg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(w, value)
	return nil
}
