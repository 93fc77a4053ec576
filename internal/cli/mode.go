// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeranaias/catty-tui/internal/access"
	"github.com/jeranaias/catty-tui/internal/config"
)

var modeCmd = &cobra.Command{
	Use:   "mode [general|student]",
	Short: "Show or set the starting mode",
	Long: `Show the mode new chats start in, or set it.

Setting a mode checks it against the stored sign-in: student mode needs a
student or admin account, and students always use student mode. The choice
is saved as ui.default_mode.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMode,
}

func runMode(cmd *cobra.Command, args []string) error {
	a, err := openApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	w := cmd.OutOrStdout()
	state := a.auth.State()
	if len(args) == 0 {
		current := a.startMode()
		if current == "" || !access.Decide(state, current).Allowed {
			current = access.DefaultMode(state)
		}
		fmt.Fprintln(w, current.Label())
		return nil
	}

	mode, err := access.ParseMode(args[0])
	if err != nil {
		return err
	}
	v := access.Decide(state, mode)
	if !v.Allowed {
		return errors.New(v.Reason)
	}

	a.cfg.UI.DefaultMode = mode.String()
	if err := saveConfig(a.cfg); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("[OK]"), v.Reason)
	return nil
}

// saveConfig writes cfg to --config when given, else to the default path.
func saveConfig(cfg *config.Config) error {
	if configPath == "" {
		return config.Save(cfg)
	}
	if filepath.Ext(configPath) == ".json" {
		return config.SaveJSON(cfg, configPath)
	}
	return config.SaveTOML(cfg, configPath)
}
