// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/catty-tui/internal/access"
	"github.com/jeranaias/catty-tui/internal/auth"
)

var loginUser string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the campus portal",
	Long: `Sign in with your portal username or email. The token and your user
record are stored locally; student accounts unlock student mode.

The password is prompted for on a terminal, or read from the first line of
stdin otherwise.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored sign-in",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and available modes",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "user", "u", "", "username or email")
}

func runLogin(cmd *cobra.Command, args []string) error {
	identifier, password, err := readCredentials(cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := openApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.authClient().Login(cmd.Context(), identifier, password)
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}
	if err := auth.Save(a.kv, snap.Token, snap.User); err != nil {
		return fmt.Errorf("failed to store sign-in: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Signed in as %s (%s)\n",
		SuccessStyle.Render("[OK]"), snap.DisplayName(), snap.User.RoleName())
	return nil
}

// readCredentials prompts on a terminal and reads stdin otherwise.
func readCredentials(stdin io.Reader) (string, string, error) {
	identifier := loginUser
	if !IsTTY() {
		if identifier == "" {
			return "", "", errors.New("--user is required when stdin is not a terminal")
		}
		password, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", "", err
		}
		password = strings.TrimRight(password, "\r\n")
		if password == "" {
			return "", "", errors.New("no password on stdin")
		}
		return identifier, password, nil
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	var err error
	if identifier == "" {
		if identifier, err = line.Prompt("Username or email: "); err != nil {
			return "", "", err
		}
	}
	password, err := line.PasswordPrompt("Password: ")
	if err != nil {
		return "", "", err
	}
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return "", "", errors.New("username and password are required")
	}
	return identifier, password, nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := openApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.auth.Authenticated() {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
		return nil
	}
	if err := auth.Clear(a.kv); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("[OK]")+" Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := openApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	w := cmd.OutOrStdout()
	state := a.auth.State()
	if !a.auth.Authenticated() {
		fmt.Fprintln(w, LabelStyle.Render("User")+ValueStyle.Render("not signed in"))
	} else {
		fmt.Fprintln(w, LabelStyle.Render("User")+ValueStyle.Render(a.auth.DisplayName()))
		fmt.Fprintln(w, LabelStyle.Render("Role")+ValueStyle.Render(a.auth.User.RoleName()))
	}

	labels := make([]string, 0, len(access.Modes))
	for _, m := range access.Allowed(state) {
		labels = append(labels, m.Label())
	}
	fmt.Fprintln(w, LabelStyle.Render("Modes")+ValueStyle.Render(strings.Join(labels, ", ")))
	fmt.Fprintln(w, LabelStyle.Render("Default mode")+ValueStyle.Render(access.DefaultMode(state).Label()))
	return nil
}
