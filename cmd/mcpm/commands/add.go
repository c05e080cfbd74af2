package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/platform"
)

// Sentinel errors for add operations.
var (
	errAddMissingCommandOrURL = errors.New("either a command or --url is required")
	errAddBothCommandAndURL   = errors.New("cannot specify both a command and --url")
)

// Package-level flag variables for the add command.
var (
	addTarget      target
	addURL         string
	addTransport   string
	addEnv         []string
	addEnvFile     string
	addHeaders     []string
	addDescription string
	addRoots       []string
	addDisabled    bool
)

func init() {
	addTarget.register(addCmd, true)
	addCmd.Flags().StringVar(&addURL, "url", "",
		"remote server endpoint")
	addCmd.Flags().StringVar(&addTransport, "transport", "",
		"explicit transport: stdio, sse, sse-variant, http (default: stdio for a command, the editor's first remote transport for --url)")
	addCmd.Flags().StringArrayVar(&addEnv, "env", nil,
		"environment variable in KEY=VALUE format (repeatable)")
	addCmd.Flags().StringVar(&addEnvFile, "env-file", "",
		"file of environment variables loaded by the editor (VS Code)")
	addCmd.Flags().StringArrayVar(&addHeaders, "header", nil,
		"HTTP header in KEY=VALUE format (repeatable)")
	addCmd.Flags().StringVar(&addDescription, "description", "",
		"free-text description")
	addCmd.Flags().StringArrayVar(&addRoots, "root", nil,
		"filesystem root exposed to the server (VS Code, repeatable)")
	addCmd.Flags().BoolVar(&addDisabled, "disabled", false,
		"add the server disabled")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <name> [--] [command] [args...]",
	Short: "Add an MCP server",
	Long: `Add an MCP server to one editor scope.

For local stdio servers, provide a command and optional arguments after --:
  mcpm add github -e cursor -- npx -y @modelcontextprotocol/server-github

For remote servers, use --url:
  mcpm add context7 -e vscode -s user --url https://mcp.context7.com/mcp --transport http

The definition is validated against the editor before anything is written.
A server with the same name already in the scope is an error.`,
	Example: `  mcpm add github -e cursor -- npx -y @modelcontextprotocol/server-github --env GITHUB_TOKEN=ghp_xxx
  mcpm add api -e windsurf --url https://api.example.com/sse --header "Authorization=Bearer token"
  mcpm add db -e vscode -- ./db-mcp --env DB_HOST=localhost --env DB_PORT=5432

  See Also:
    mcpm remove   - Remove a server
    mcpm validate - Check every configuration`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	a := newApp(cmd)
	editor, scope, err := addTarget.resolve(a.manager)
	if err != nil {
		return err
	}

	var command string
	var cmdArgs []string
	if len(args) > 1 {
		command = args[1]
		cmdArgs = args[2:]
	}
	if command == "" && addURL == "" {
		return errors.NewUserError(errAddMissingCommandOrURL, "Run 'mcpm add --help' for examples")
	}
	if command != "" && addURL != "" {
		return errors.NewUserError(errAddBothCommandAndURL, "Run 'mcpm add --help' for examples")
	}

	env, err := parseKeyValues(addEnv, "--env")
	if err != nil {
		return err
	}
	headers, err := parseKeyValues(addHeaders, "--header")
	if err != nil {
		return err
	}

	transport, err := chooseTransport(a.manager.Adapter(editor), addTransport, addURL != "")
	if err != nil {
		return err
	}

	server := &mcp.Server{
		Name:        args[0],
		Description: addDescription,
		Disabled:    addDisabled,
		Roots:       addRoots,
	}
	switch transport {
	case mcp.TransportStdio:
		server.Endpoint = &mcp.StdioEndpoint{Command: command, Args: cmdArgs, Env: env, EnvFile: addEnvFile}
	case mcp.TransportSSE:
		server.Endpoint = &mcp.SSEEndpoint{URL: addURL, Headers: headers}
	case mcp.TransportSSEVariant:
		server.Endpoint = &mcp.SSEVariantEndpoint{ServerURL: addURL, Headers: headers}
	case mcp.TransportHTTP:
		server.Endpoint = &mcp.HTTPEndpoint{URL: addURL, Headers: headers}
	}

	if err := a.manager.AddServer(editor, scope, server); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s (%s)\n", server.Name, editor, scope)
	return nil
}

// chooseTransport returns the explicit transport, or infers one from
// whether a URL was given and what the editor can store.
func chooseTransport(a platform.Adapter, explicit string, remote bool) (mcp.Transport, error) {
	if explicit != "" {
		t, ok := mcp.ParseTransport(explicit)
		if !ok {
			return "", errors.NewUserError(errors.Newf("invalid --transport %q", explicit),
				"Use stdio, sse, sse-variant or http")
		}
		if remote != t.IsRemote() {
			return "", errors.NewUserError(errors.Newf("--transport %s does not match the given endpoint", t),
				"Use --url with remote transports and a command with stdio")
		}
		return t, nil
	}
	if !remote {
		return mcp.TransportStdio, nil
	}
	if a != nil {
		for _, t := range a.Capabilities().Transports {
			if t.IsRemote() {
				return t, nil
			}
		}
	}
	return mcp.TransportSSE, nil
}

// parseKeyValues parses KEY=VALUE pairs from a repeatable flag.
func parseKeyValues(pairs []string, flag string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, errors.NewUserError(errors.Newf("invalid %s value %q", flag, p), "Use KEY=VALUE")
		}
		out[k] = v
	}
	return out, nil
}
