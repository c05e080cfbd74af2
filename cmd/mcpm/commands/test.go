package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thoreinstein/mcpm/internal/cli/prompt"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

var (
	testTarget      target
	testAll         bool
	testJSON        bool
	testConcurrency int
)

func init() {
	testTarget.register(testCmd, false)
	testCmd.Flags().BoolVarP(&testAll, "all", "a", false, "probe every selected server")
	testCmd.Flags().BoolVar(&testJSON, "json", false, "Output in JSON format")
	testCmd.Flags().IntVar(&testConcurrency, "concurrency", 0, "probes run at once (default: probe.concurrency from config)")
	rootCmd.AddCommand(testCmd)
}

var testCmd = &cobra.Command{
	Use:   "test [name]",
	Short: "Check that MCP servers start or answer",
	Long: `Probe MCP servers.

A stdio server passes when its process is still running after the startup
window; it is sent an initialize request and then stopped. An SSE server
passes when it answers with an event stream, and an HTTP server when it
answers at all (404 and 405 count as reachable).

Without a name or --all, pick a server interactively.`,
	Example: `  # Pick a server
  mcpm test

  # Probe one server wherever it is configured
  mcpm test github

  # Probe everything in Windsurf
  mcpm test --all -e windsurf`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTest,
}

// testResultJSON is one probe result in JSON output.
type testResultJSON struct {
	Name   string         `json:"name"`
	Editor string         `json:"editor"`
	Scope  string         `json:"scope"`
	Result mcp.TestResult `json:"result"`
}

func runTest(cmd *cobra.Command, args []string) error {
	a := newApp(cmd)
	editor, scope, err := testTarget.filter()
	if err != nil {
		return err
	}

	var targets []*mcp.ServerWithMetadata
	switch {
	case len(args) == 1:
		targets, err = findServers(a, &testTarget, args[0])
		if err != nil {
			return err
		}
	default:
		result, err := a.manager.ReadAllServers()
		if err != nil {
			return err
		}
		targets = selectServers(result.Servers, editor, scope)
		if len(targets) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No MCP servers configured")
			return nil
		}
		if !testAll {
			picked, err := pickServer(cmd, a, targets)
			if err != nil {
				if errors.Is(err, prompt.ErrSelectionCancelled) {
					return nil
				}
				return err
			}
			targets = []*mcp.ServerWithMetadata{picked}
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	servers := make([]*mcp.Server, len(targets))
	for i, t := range targets {
		servers[i] = t.Server
		t.Status = mcp.StatusTesting
	}
	concurrency := testConcurrency
	if concurrency <= 0 {
		concurrency = a.cfg.Probe.Concurrency
	}
	results := a.prober.TestAll(ctx, servers, concurrency)

	failed := 0
	for i, t := range targets {
		t.LastTest = &results[i]
		t.Status = mcp.StatusOK
		if !results[i].Success {
			t.Status = mcp.StatusFailed
			failed++
		}
	}

	if testJSON {
		out := make([]testResultJSON, len(targets))
		for i, t := range targets {
			out[i] = testResultJSON{Name: t.Name, Editor: string(t.Editor), Scope: string(t.Scope), Result: *t.LastTest}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		for _, t := range targets {
			printResult(cmd.OutOrStdout(), t)
		}
	}

	if failed > 0 {
		return errors.NewExitError(errors.Newf("%d of %d probes failed", failed, len(targets)), errors.ExitUser)
	}
	return nil
}

// pickServer asks the user for one server. The fuzzy finder needs a
// terminal; otherwise a numbered prompt is read from stdin.
func pickServer(cmd *cobra.Command, a *app, servers []*mcp.ServerWithMetadata) (*mcp.ServerWithMetadata, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return prompt.FuzzySelectServer(servers, describe(a))
	}
	return prompt.NewSelectorWithIO(cmd.InOrStdin(), cmd.OutOrStdout()).SelectServer(servers)
}

func printResult(w io.Writer, s *mcp.ServerWithMetadata) {
	r := s.LastTest
	mark := color.GreenString("✓")
	if s.Status == mcp.StatusFailed {
		mark = color.RedString("✗")
	}
	fmt.Fprintf(w, "%s %s %s %s %s\n",
		mark,
		color.New(color.Bold).Sprint(s.Name),
		color.New(color.FgHiBlack).Sprintf("(%s %s)", s.Editor, s.Scope),
		r.Message,
		color.New(color.FgHiBlack).Sprintf("[%s]", r.ResponseTime.Round(time.Millisecond)))
	if r.Error != "" {
		fmt.Fprintf(w, "    %s\n", r.Error)
	}
}
