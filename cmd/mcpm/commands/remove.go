package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeTarget target

func init() {
	removeTarget.register(removeCmd, true)
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove an MCP server",
	Long: `Remove an MCP server from one editor scope.

Locked servers cannot be removed. Unlock them first with 'mcpm unlock'.`,
	Example: `  mcpm remove github -e cursor
  mcpm remove context7 -e vscode -s user

  See Also:
    mcpm unlock   - Allow a protected server to be removed`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	a := newApp(cmd)
	editor, scope, err := removeTarget.resolve(a.manager)
	if err != nil {
		return err
	}
	if err := a.manager.DeleteServer(editor, scope, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from %s (%s)\n", args[0], editor, scope)
	return nil
}
