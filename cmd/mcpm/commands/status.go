package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/backup"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/platform"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show editors, config files and protection state",
	Long: `Show which editors are installed, where each scope's config file lives,
which servers are locked, and how many backups are kept.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a := newApp(cmd)
	w := cmd.OutOrStdout()

	result, err := a.manager.ReadAllServers()
	if err != nil {
		return err
	}
	locked := lockedSet(a, result.Servers)

	for i, d := range platform.DetectAll(a.manager.Adapters()) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printDetection(w, d)

		if names := keys(locked[d.Editor]); len(names) > 0 {
			fmt.Fprintf(w, "  locked: %s\n", strings.Join(names, ", "))
		}
		if a.backups != nil {
			n := 0
			list, err := a.backups.List(d.Editor)
			switch {
			case err == nil:
				n = len(list)
			case !errors.Is(err, backup.ErrNoBackupsFound):
				a.logger.Warn("failed to list backups", "editor", d.Editor, "error", err)
			}
			fmt.Fprintf(w, "  backups: %d\n", n)
		}
	}
	return nil
}

func printDetection(w io.Writer, d *platform.DetectionResult) {
	mark := color.GreenString("✓")
	if d.Status != platform.StatusInstalled {
		mark = color.New(color.FgHiBlack).Sprint("✗")
	}
	fmt.Fprintf(w, "%s %s %s\n", mark, color.New(color.Bold).Sprint(d.DisplayName), color.New(color.FgHiBlack).Sprint(d.ConfigDir))
	for _, s := range d.Scopes {
		state := "missing"
		switch {
		case !s.Available:
			state = "unavailable"
		case s.Exists:
			state = "present"
		}
		fmt.Fprintf(w, "  %-9s %s (%s)\n", s.Scope, s.ConfigPath, state)
	}
}

// keys returns the set members in sorted order.
func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
