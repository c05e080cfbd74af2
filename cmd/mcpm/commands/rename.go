package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

var renameTarget target

func init() {
	renameTarget.register(renameCmd, true)
	rootCmd.AddCommand(renameCmd)
}

var renameCmd = &cobra.Command{
	Use:   "rename <name> <new-name>",
	Short: "Rename an MCP server",
	Long: `Rename an MCP server within one editor scope.

The new name must not already exist in the scope. A locked server keeps
its lock on the old name, so unlock it before renaming.`,
	Example: `  mcpm rename gh github -e cursor`,
	Args:    cobra.ExactArgs(2),
	RunE:    runRename,
}

func runRename(cmd *cobra.Command, args []string) error {
	a := newApp(cmd)
	editor, scope, err := renameTarget.resolve(a.manager)
	if err != nil {
		return err
	}

	servers, err := a.manager.ReadServers(editor, scope)
	if err != nil {
		return err
	}
	i := mcp.Find(servers, args[0])
	if i < 0 {
		return errors.Wrapf(errors.ErrServerNotFound, "%q in %s (%s)", args[0], editor, scope)
	}
	updated := servers[i].Server.Clone()
	updated.Name = args[1]

	if err := a.manager.UpdateServer(editor, scope, args[0], updated); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed %q to %q in %s (%s)\n", args[0], args[1], editor, scope)
	return nil
}
