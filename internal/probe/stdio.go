package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"al.essio.dev/pkg/shellescape"
	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// ClientVersion is reported in the initialize request. It is set at build
// time via ldflags.
var ClientVersion = "dev"

// waitDelay bounds how long Wait blocks on output pipes held open by
// grandchildren after the process group is killed.
const waitDelay = 500 * time.Millisecond

// stderrTail is how much trailing stderr a failed result keeps.
const stderrTail = 2048

// ProtocolVersion is the MCP protocol revision the probe announces.
func ProtocolVersion() string {
	return mcpgo.LATEST_PROTOCOL_VERSION
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// initializePayload returns the newline-terminated JSON-RPC initialize
// request written to a stdio server.
func initializePayload() ([]byte, error) {
	req := mcpgo.InitializeRequest{}
	req.Params.ProtocolVersion = ProtocolVersion()
	req.Params.Capabilities = mcpgo.ClientCapabilities{}
	req.Params.ClientInfo = mcpgo.Implementation{
		Name:    "mcpm",
		Version: ClientVersion,
	}

	data, err := json.Marshal(rpcRequest{
		JSONRPC: mcpgo.JSONRPC_VERSION,
		ID:      1,
		Method:  string(mcpgo.MethodInitialize),
		Params:  req.Params,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding initialize request")
	}
	return append(data, '\n'), nil
}

func (p *Prober) testStdio(ctx context.Context, ep *mcp.StdioEndpoint) mcp.TestResult {
	if strings.TrimSpace(ep.Command) == "" {
		return failure("command is empty", nil)
	}
	payload, err := initializePayload()
	if err != nil {
		return failure("could not build initialize request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.stdioTimeout)
	defer cancel()

	line := commandLine(ep.Command, ep.Args)
	args := append(slices.Clone(p.shell[1:]), line)
	cmd := exec.CommandContext(ctx, p.shell[0], args...)
	cmd.Env = mergeEnv(os.Environ(), ep.Env)
	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr
	setProcGroup(cmd)
	cmd.Cancel = func() error {
		return killProcessGroup(cmd.Process.Pid)
	}
	cmd.WaitDelay = waitDelay

	if ep.EnvFile != "" {
		p.logger.Debug("envFile is not loaded by the probe", "envFile", ep.EnvFile)
	}

	// The pipe stays open until the process is killed: servers commonly
	// exit as soon as stdin reaches EOF.
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return failure("could not open stdin", err)
	}
	defer stdin.Close()

	p.logger.Debug("starting stdio probe", "shell", p.shell[0], "command", line)
	if err := cmd.Start(); err != nil {
		return failure("failed to start process", err)
	}
	if _, err := stdin.Write(payload); err != nil {
		p.logger.Debug("writing initialize request failed", "error", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	window := time.NewTimer(p.startupWindow)
	defer window.Stop()

	select {
	case err := <-done:
		if ctx.Err() != nil {
			return p.stdioAborted(ctx)
		}
		return exited(err, stderr.String())
	case <-window.C:
		cancel()
		<-done
		return success(fmt.Sprintf("process started and kept running for %s", p.startupWindow))
	case <-ctx.Done():
		<-done
		return p.stdioAborted(ctx)
	}
}

func (p *Prober) stdioAborted(ctx context.Context) mcp.TestResult {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return failure(fmt.Sprintf("timed out after %s", p.stdioTimeout), ctx.Err())
	}
	return failure("probe cancelled", ctx.Err())
}

func exited(err error, stderr string) mcp.TestResult {
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		return failure("process failed during startup", err)
	}

	res := failure(fmt.Sprintf("process exited with code %d during startup", code), nil)
	if msg := strings.TrimSpace(stderr); msg != "" {
		res.Error = msg
	} else if err != nil {
		res.Error = err.Error()
	}
	return res
}

// commandLine joins command and args into one string for the shell's
// command flag. The command is passed to the shell as stored, so a stored
// "uvx my-server" or "$HOME/bin/server" expands the way the editor's own
// shell would. Only args are quoted.
func commandLine(command string, args []string) string {
	if len(args) == 0 {
		return command
	}
	if runtime.GOOS == "windows" {
		words := slices.Clone(args)
		for i, w := range words {
			if w == "" || strings.ContainsAny(w, " \t&|<>^") {
				words[i] = `"` + strings.ReplaceAll(w, `"`, `\"`) + `"`
			}
		}
		return command + " " + strings.Join(words, " ")
	}
	return command + " " + shellescape.QuoteCommand(args)
}

// mergeEnv appends extra to base in key order. Later entries win in
// os/exec, so extra overrides the inherited environment.
func mergeEnv(base []string, extra map[string]string) []string {
	env := slices.Clone(base)
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = slices.Delete(b.buf, 0, over)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
