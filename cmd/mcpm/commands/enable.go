package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	enableTarget  target
	disableTarget target
	toggleTarget  target
)

func init() {
	enableTarget.register(enableCmd, true)
	disableTarget.register(disableCmd, true)
	toggleTarget.register(toggleCmd, true)
	rootCmd.AddCommand(enableCmd, disableCmd, toggleCmd)
}

var enableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable an MCP server",
	Long: `Enable a disabled MCP server.

Cursor keeps enablement in its own settings UI rather than in mcp.json, so
this command is refused for Cursor.`,
	Example: `  mcpm enable github -e windsurf`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetDisabled(cmd, &enableTarget, args[0], false)
	},
}

var disableCmd = &cobra.Command{
	Use:     "disable <name>",
	Short:   "Disable an MCP server",
	Long:    `Disable an MCP server without removing its definition.`,
	Example: `  mcpm disable github -e vscode -s user`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetDisabled(cmd, &disableTarget, args[0], true)
	},
}

var toggleCmd = &cobra.Command{
	Use:     "toggle <name>",
	Short:   "Flip an MCP server between enabled and disabled",
	Example: `  mcpm toggle github -e windsurf`,
	Args:    cobra.ExactArgs(1),
	RunE:    runToggle,
}

func runSetDisabled(cmd *cobra.Command, t *target, name string, disabled bool) error {
	a := newApp(cmd)
	editor, scope, err := t.resolve(a.manager)
	if err != nil {
		return err
	}
	if err := a.manager.SetDisabled(editor, scope, name, disabled); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %q in %s (%s)\n", stateWord(disabled), name, editor, scope)
	return nil
}

func runToggle(cmd *cobra.Command, args []string) error {
	a := newApp(cmd)
	editor, scope, err := toggleTarget.resolve(a.manager)
	if err != nil {
		return err
	}
	disabled, err := a.manager.ToggleServer(editor, scope, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %q in %s (%s)\n", stateWord(disabled), args[0], editor, scope)
	return nil
}

func stateWord(disabled bool) string {
	if disabled {
		return "Disabled"
	}
	return "Enabled"
}
