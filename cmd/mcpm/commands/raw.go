package commands

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/editor"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

var (
	rawShowTarget target
	rawEditTarget target
)

func init() {
	rawShowTarget.register(rawShowCmd, true)
	rawEditTarget.register(rawEditCmd, true)
	rawCmd.AddCommand(rawShowCmd, rawEditCmd)
	rootCmd.AddCommand(rawCmd)
}

var rawCmd = &cobra.Command{
	Use:   "raw",
	Short: "Show or edit an editor's server configuration as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var rawShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the servers of one scope in the editor's native format",
	Long: `Print the config file of one scope as it is stored.

For the VS Code user scope this is the whole settings.json. A file that
cannot be parsed is printed unchanged so it can be repaired with
"mcpm raw edit".`,
	Example: `  mcpm raw show -e cursor
  mcpm raw show -e vscode -s workspace`,
	Args: cobra.NoArgs,
	RunE: runRawShow,
}

var rawEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the servers of one scope in $EDITOR",
	Long: `Open the config file of one scope in $EDITOR and save it back.

The edited document is checked for structure, every server is validated,
and locked servers must still be present. When the file on disk cannot be
parsed, every server you locked for the editor must be present. Nothing is written if any
check fails. Saving an unchanged document writes nothing.`,
	Example: `  EDITOR="code --wait" mcpm raw edit -e vscode -s user`,
	Args:    cobra.NoArgs,
	RunE:    runRawEdit,
}

func runRawShow(cmd *cobra.Command, _ []string) error {
	a := newApp(cmd)
	editorID, scope, err := rawShowTarget.resolve(a.manager)
	if err != nil {
		return err
	}
	data, err := a.manager.RawConfig(editorID, scope)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runRawEdit(cmd *cobra.Command, _ []string) error {
	a := newApp(cmd)
	editorID, scope, err := rawEditTarget.resolve(a.manager)
	if err != nil {
		return err
	}
	original, err := a.manager.RawConfig(editorID, scope)
	if err != nil {
		return err
	}

	edited, err := editor.Edit(rawPattern(editorID, scope), original, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return errors.NewSystemError(err, "Set $EDITOR to an editor that waits for the file to close")
	}
	if bytes.Equal(bytes.TrimSpace(edited), bytes.TrimSpace(original)) {
		fmt.Fprintln(cmd.OutOrStdout(), "No changes")
		return nil
	}

	if err := a.manager.SaveRawConfig(editorID, scope, edited); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", editorID, scope)
	return nil
}

func rawPattern(e mcp.Editor, s mcp.Scope) string {
	return fmt.Sprintf("mcpm-%s-%s-*.json", e, s)
}
