package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

var (
	showTarget      target
	showFormat      string
	showShowSecrets bool
)

func init() {
	showTarget.register(showCmd, false)
	showCmd.Flags().StringVarP(&showFormat, "format", "o", "text", "output format: text, json, yaml")
	showCmd.Flags().BoolVar(&showShowSecrets, "show-secrets", false, "Reveal masked secrets in env values and headers")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show details of an MCP server",
	Long: `Show the full definition of an MCP server.

A name configured in several editors or scopes is shown once per location.
Use --editor and --scope to pick one.`,
	Example: `  # Show a server
  mcpm show github

  # As YAML, with secrets
  mcpm show github --format yaml --show-secrets

  See Also:
    mcpm list     - List configured servers`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	switch showFormat {
	case "text", "json", "yaml":
	default:
		return errors.NewUserError(errors.Newf("invalid --format %q", showFormat), "Use text, json or yaml")
	}

	a := newApp(cmd)
	matches, err := findServers(a, &showTarget, args[0])
	if err != nil {
		return err
	}
	locked := lockedSet(a, matches)

	views := make([]serverJSON, 0, len(matches))
	for _, s := range matches {
		views = append(views, toServerJSON(s, locked[s.Editor][s.Name], showShowSecrets))
	}

	w := cmd.OutOrStdout()
	switch showFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(views) == 1 {
			return enc.Encode(views[0])
		}
		return enc.Encode(views)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		if len(views) == 1 {
			return errors.Wrap(enc.Encode(views[0]), "encoding YAML")
		}
		return errors.Wrap(enc.Encode(views), "encoding YAML")
	}

	for i, s := range matches {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printServer(w, views[i], a.prober.GetTestDescription(s.Server))
	}
	return nil
}

// printServer writes the text form of one server.
func printServer(w io.Writer, v serverJSON, probe string) {
	label := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", label("Server:"), color.GreenString(v.Name))
	fmt.Fprintf(w, "%s %s (%s)\n", label("Location:"), v.Editor, v.Scope)
	fmt.Fprintf(w, "%s %s\n", label("File:"), v.Source)
	if v.Description != "" {
		fmt.Fprintf(w, "%s %s\n", label("Description:"), v.Description)
	}
	fmt.Fprintf(w, "%s %s\n", label("Transport:"), v.Transport)

	if v.Command != "" {
		fmt.Fprintf(w, "%s %s\n", label("Command:"), v.Command)
		if len(v.Args) > 0 {
			fmt.Fprintf(w, "%s %s\n", label("Args:"), strings.Join(v.Args, " "))
		}
		if v.EnvFile != "" {
			fmt.Fprintf(w, "%s %s\n", label("Env file:"), v.EnvFile)
		}
		printMap(w, label("Environment:"), v.Env)
	}
	if v.URL != "" {
		fmt.Fprintf(w, "%s %s\n", label("URL:"), v.URL)
		printMap(w, label("Headers:"), v.Headers)
	}
	if len(v.Roots) > 0 {
		fmt.Fprintf(w, "%s %s\n", label("Roots:"), strings.Join(v.Roots, ", "))
	}

	status := "enabled"
	if v.Disabled {
		status = "disabled"
	}
	if v.Locked {
		status += ", locked"
	}
	fmt.Fprintf(w, "%s %s\n", label("Status:"), status)
	fmt.Fprintf(w, "%s %s\n", label("Probe:"), probe)
}

func printMap(w io.Writer, title string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	fmt.Fprintln(w, title)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s=%s\n", k, m[k])
	}
}

// describe is the preview text for a server in the picker.
func describe(a *app) func(*mcp.ServerWithMetadata) string {
	return func(s *mcp.ServerWithMetadata) string {
		var sb strings.Builder
		printServer(&sb, toServerJSON(s, false, false), a.prober.GetTestDescription(s.Server))
		return sb.String()
	}
}
