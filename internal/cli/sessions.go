// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/catty-tui/internal/export"
	"github.com/jeranaias/catty-tui/internal/model"
	"github.com/jeranaias/catty-tui/internal/storage"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "List and manage stored chats",
	Long: `List and manage stored chats.

Subcommands:
  list      list chats, most recent first (default)
  show      print one chat
  new       create an empty chat
  delete    delete a chat

Chats are addressed by an ID prefix, as shown by 'catty sessions list'.`,
	RunE: runSessionsList,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chats",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one chat",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an empty chat",
	RunE:  runSessionsNew,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a chat",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var (
	exportFormat string
	exportOutput string
	exportOpen   bool
)

var exportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export a chat to a file",
	Long: `Export a chat as html, md or json. Without an ID the most recent chat
is exported.

Examples:
  catty export
  catty export 3f2a --format json -o ./backup
  catty export --open`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "html", "output format (html, md, json)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", ".", "output directory")
	exportCmd.Flags().BoolVar(&exportOpen, "open", false, "open the file after export")
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	a, err := openApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprint(cmd.OutOrStdout(), storage.FormatSessionList(a.store.List(), a.store.ActiveID(), time.Now()))
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.store.Resolve(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, TitleStyle.Render(session.Title))
	fmt.Fprintln(w, LabelStyle.Render("ID")+ValueStyle.Render(session.ID))
	fmt.Fprintln(w, LabelStyle.Render("Created")+ValueStyle.Render(session.CreatedAt.Local().Format(time.DateTime)))
	fmt.Fprintln(w, LabelStyle.Render("Updated")+ValueStyle.Render(session.UpdatedAt.Local().Format(time.DateTime)))
	fmt.Fprintln(w)
	for _, msg := range session.Messages {
		printTranscriptLine(cmd, msg)
	}
	return nil
}

func printTranscriptLine(cmd *cobra.Command, msg *model.Message) {
	w := cmd.OutOrStdout()
	stamp := DimStyle.Render(msg.Timestamp.Local().Format("15:04"))
	label := UserStyle.Render(msg.Sender.DisplayName())
	if msg.IsBot() {
		label = BotStyle.Render(msg.Sender.DisplayName())
	}
	fmt.Fprintf(w, "%s %s\n%s\n", stamp, label, msg.Text)
	if rt := msg.FormatResponseTime(); rt != "" {
		fmt.Fprintln(w, DimStyle.Render("Response time: "+rt))
	}
	fmt.Fprintln(w)
}

func runSessionsNew(cmd *cobra.Command, args []string) error {
	a, err := openApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.store.CreateSession()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), session.ID)
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.store.Resolve(args[0])
	if err != nil {
		return err
	}
	if err := a.store.DeleteSession(session.ID); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("[OK]")+" Deleted "+session.Title)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	session := a.store.Active()
	if len(args) == 1 {
		if session, err = a.store.Resolve(args[0]); err != nil {
			return err
		}
	}

	opts := export.DefaultOptions()
	opts.OutputDir = exportOutput
	opts.OpenAfterExport = exportOpen
	exporter, err := export.ForFormat(exportFormat, opts)
	if err != nil {
		return err
	}
	path, err := export.ExportToFile(session, exporter, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
