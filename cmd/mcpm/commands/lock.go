package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/protect"
)

var (
	lockTarget   target
	unlockTarget target
)

func init() {
	lockTarget.register(lockCmd, true)
	unlockTarget.register(unlockCmd, true)
	rootCmd.AddCommand(lockCmd, unlockCmd)
}

var lockCmd = &cobra.Command{
	Use:   "lock <name>",
	Short: "Protect an MCP server from removal",
	Long: `Lock a server name in one editor. A locked server cannot be removed
or renamed, in any scope of that editor, until it is unlocked.

The servers listed under protection.defaults in the config are locked in
every editor until unlocked.`,
	Example: `  mcpm lock context7 -e vscode`,
	Args:    cobra.ExactArgs(1),
	RunE:    runLock,
}

var unlockCmd = &cobra.Command{
	Use:     "unlock <name>",
	Short:   "Allow a protected MCP server to be removed",
	Example: `  mcpm unlock github -e cursor`,
	Args:    cobra.ExactArgs(1),
	RunE:    runUnlock,
}

func runLock(cmd *cobra.Command, args []string) error {
	a := newApp(cmd)
	editor, _, err := lockTarget.filter()
	if err != nil {
		return err
	}
	if err := a.manager.Guard().LockServer(editor, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Locked %q in %s\n", args[0], editor)
	return nil
}

func runUnlock(cmd *cobra.Command, args []string) error {
	a := newApp(cmd)
	editor, _, err := unlockTarget.filter()
	if err != nil {
		return err
	}
	if err := a.manager.Guard().Unlock(editor, args[0]); err != nil {
		if errors.Is(err, protect.ErrNotDefaultProtected) {
			return errors.NewUserError(errors.Newf("%q is not locked in %s", args[0], editor), "")
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Unlocked %q in %s\n", args[0], editor)
	return nil
}
