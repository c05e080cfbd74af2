package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/logging"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

var (
	listTarget      target
	listJSON        bool
	listShowSecrets bool
)

func init() {
	listTarget.register(listCmd, false)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listShowSecrets, "show-secrets", false, "Reveal masked secrets in env values and headers")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List configured MCP servers",
	Long: `List MCP servers from every editor and scope, grouped by editor.

Use --editor and --scope to narrow the listing. Scopes that cannot be read
are reported as warnings and the rest of the listing is still shown.

Environment variables and headers whose names look like secrets (TOKEN, KEY,
SECRET, PASSWORD, AUTH, CREDENTIAL, PRIVATE) are masked by default.`,
	Example: `  # List everything
  mcpm list

  # Only the VS Code user settings
  mcpm list --editor vscode --scope user

  # Machine-readable output
  mcpm list --json

  See Also:
    mcpm show     - Show details of a specific server`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// serverJSON represents an MCP server in JSON and YAML output.
type serverJSON struct {
	Name        string            `json:"name" yaml:"name"`
	Editor      string            `json:"editor" yaml:"editor"`
	Scope       string            `json:"scope" yaml:"scope"`
	Transport   string            `json:"transport" yaml:"transport"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Command     string            `json:"command,omitempty" yaml:"command,omitempty"`
	Args        []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env         map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	EnvFile     string            `json:"envFile,omitempty" yaml:"envFile,omitempty"`
	URL         string            `json:"url,omitempty" yaml:"url,omitempty"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Roots       []string          `json:"roots,omitempty" yaml:"roots,omitempty"`
	Disabled    bool              `json:"disabled" yaml:"disabled"`
	Locked      bool              `json:"locked" yaml:"locked"`
	Source      string            `json:"source" yaml:"source"`
}

func toServerJSON(s *mcp.ServerWithMetadata, locked, showSecrets bool) serverJSON {
	out := serverJSON{
		Name:        s.Name,
		Editor:      string(s.Editor),
		Scope:       string(s.Scope),
		Transport:   string(s.Transport()),
		Description: s.Description,
		Roots:       s.Roots,
		Disabled:    s.Disabled,
		Locked:      locked,
		Source:      s.SourcePath,
	}
	if ep := s.Stdio(); ep != nil {
		out.Command = ep.Command
		out.Args = ep.Args
		out.Env = ep.Env
		out.EnvFile = ep.EnvFile
	}
	out.URL = s.RemoteURL()
	out.Headers = s.RemoteHeaders()
	if !showSecrets {
		out.Env = logging.MaskSecrets(out.Env)
		out.Headers = logging.MaskSecrets(out.Headers)
		if out.URL != "" {
			out.URL = logging.MaskURL(out.URL)
		}
	}
	return out
}

// lockedSet returns the names locked in each editor among servers.
func lockedSet(a *app, servers []*mcp.ServerWithMetadata) map[mcp.Editor]map[string]bool {
	byEditor := make(map[mcp.Editor][]string)
	for _, s := range servers {
		byEditor[s.Editor] = append(byEditor[s.Editor], s.Name)
	}
	out := make(map[mcp.Editor]map[string]bool, len(byEditor))
	for editor, names := range byEditor {
		locked, err := a.manager.Guard().LockedServers(editor, names)
		if err != nil {
			a.logger.Warn("failed to read protection state", "editor", editor, "error", err)
			continue
		}
		set := make(map[string]bool, len(locked))
		for _, n := range locked {
			set[n] = true
		}
		out[editor] = set
	}
	return out
}

func runList(cmd *cobra.Command, _ []string) error {
	editor, scope, err := listTarget.filter()
	if err != nil {
		return err
	}
	a := newApp(cmd)

	result, err := a.manager.ReadAllServers()
	if err != nil {
		return err
	}
	servers := selectServers(result.Servers, editor, scope)
	locked := lockedSet(a, servers)

	for _, w := range result.Warnings {
		if (editor == "" || w.Editor == editor) && (scope == "" || w.Scope == scope) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.YellowString("Warning:"), w.Error())
		}
	}

	if listJSON {
		return outputJSON(cmd.OutOrStdout(), servers, locked)
	}
	editors := a.manager.Adapters()
	if editor != "" {
		editors = nil
		if ad := a.manager.Adapter(editor); ad != nil {
			editors = append(editors, ad)
		}
	}
	var names []displayEditor
	for _, ad := range editors {
		names = append(names, displayEditor{id: ad.Editor(), name: ad.DisplayName()})
	}
	return outputTabular(cmd.OutOrStdout(), names, servers, locked)
}

// displayEditor pairs an editor with its display name.
type displayEditor struct {
	id   mcp.Editor
	name string
}

// outputJSON outputs servers as a JSON array.
func outputJSON(w io.Writer, servers []*mcp.ServerWithMetadata, locked map[mcp.Editor]map[string]bool) error {
	out := make([]serverJSON, 0, len(servers))
	for _, s := range servers {
		out = append(out, toServerJSON(s, locked[s.Editor][s.Name], listShowSecrets))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// outputTabular outputs servers grouped by editor.
func outputTabular(w io.Writer, editors []displayEditor, servers []*mcp.ServerWithMetadata, locked map[mcp.Editor]map[string]bool) error {
	header := color.New(color.FgCyan, color.Bold)
	bold := color.New(color.Bold)
	gray := color.New(color.FgHiBlack)

	for i, e := range editors {
		// Add blank line between editors (but not before first)
		if i > 0 {
			fmt.Fprintln(w)
		}
		header.Fprintf(w, "%s\n", e.name)

		group := selectServers(servers, e.id, "")
		if len(group) == 0 {
			fmt.Fprintf(w, "  %s\n", gray.Sprint("(no MCP servers configured)"))
			continue
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			bold.Sprint("NAME"), bold.Sprint("SCOPE"), bold.Sprint("TRANSPORT"),
			bold.Sprint("COMMAND/URL"), bold.Sprint("STATUS"))
		for _, s := range group {
			status := color.GreenString("enabled")
			if s.Disabled {
				status = gray.Sprint("disabled")
			}
			if locked[s.Editor][s.Name] {
				status += " " + color.YellowString("locked")
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
				color.GreenString(s.Name), s.Scope, s.Transport(),
				truncate(endpointSummary(s.Server), 50), status)
		}
		tw.Flush()
	}

	if len(servers) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "No MCP servers configured")
	}
	return nil
}

// endpointSummary returns the command line or masked URL of s.
func endpointSummary(s *mcp.Server) string {
	if ep := s.Stdio(); ep != nil {
		return commandLine(ep)
	}
	return logging.MaskURL(s.RemoteURL())
}

func commandLine(ep *mcp.StdioEndpoint) string {
	line := ep.Command
	for _, a := range ep.Args {
		line += " " + a
	}
	return line
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
