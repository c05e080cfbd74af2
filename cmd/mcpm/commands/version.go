package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd"
	"github.com/thoreinstein/mcpm/internal/probe"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit, and build date of mcpm.`,
	Run: func(c *cobra.Command, _ []string) {
		w := c.OutOrStdout()
		fmt.Fprintf(w, "mcpm version %s\n", cmd.Version)
		fmt.Fprintf(w, "  commit:   %s\n", cmd.Commit)
		fmt.Fprintf(w, "  built:    %s\n", cmd.Date)
		fmt.Fprintf(w, "  protocol: %s\n", probe.ProtocolVersion())
	},
}
