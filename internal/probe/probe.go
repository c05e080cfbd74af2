package probe

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thoreinstein/mcpm/internal/mcp"
)

// Default timings.
const (
	DefaultStdioTimeout   = 8 * time.Second
	DefaultStartupWindow  = 1500 * time.Millisecond
	DefaultNetworkTimeout = 5 * time.Second

	// DefaultConcurrency bounds TestAll when the caller passes zero.
	DefaultConcurrency = 4
)

// Prober runs connection probes. It is safe for concurrent use.
type Prober struct {
	stdioTimeout   time.Duration
	startupWindow  time.Duration
	networkTimeout time.Duration
	client         *http.Client
	shell          []string
	logger         *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithStdioTimeout bounds a whole stdio probe, start to kill.
func WithStdioTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.stdioTimeout = d
		}
	}
}

// WithStartupWindow sets how long a stdio server must stay running.
func WithStartupWindow(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.startupWindow = d
		}
	}
}

// WithNetworkTimeout bounds a remote probe.
func WithNetworkTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.networkTimeout = d
		}
	}
}

// WithHTTPClient sets the client used for remote probes.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Prober) {
		if c != nil {
			p.client = c
		}
	}
}

// WithShell sets the shell and its command flag, e.g. {"bash", "-c"}.
func WithShell(shell ...string) Option {
	return func(p *Prober) {
		if len(shell) > 0 {
			p.shell = shell
		}
	}
}

// WithLogger sets the prober's logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Prober) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Prober.
func New(opts ...Option) *Prober {
	p := &Prober{
		stdioTimeout:   DefaultStdioTimeout,
		startupWindow:  DefaultStartupWindow,
		networkTimeout: DefaultNetworkTimeout,
		client:         http.DefaultClient,
		shell:          defaultShell(),
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func defaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C"}
	}
	return []string{"sh", "-c"}
}

// TestConnection probes s and reports the outcome.
func (p *Prober) TestConnection(ctx context.Context, s *mcp.Server) mcp.TestResult {
	start := time.Now()
	var res mcp.TestResult
	if s == nil {
		res = failure("no server given", nil)
	} else {
		switch ep := s.Endpoint.(type) {
		case *mcp.StdioEndpoint:
			res = p.testStdio(ctx, ep)
		case *mcp.SSEEndpoint:
			res = p.testSSE(ctx, ep.URL, ep.Headers)
		case *mcp.SSEVariantEndpoint:
			res = p.testSSE(ctx, ep.ServerURL, ep.Headers)
		case *mcp.HTTPEndpoint:
			res = p.testHTTP(ctx, ep.URL, ep.Headers)
		case nil:
			res = failure("server has no transport configured", nil)
		default:
			res = failure("unknown transport", nil)
		}
	}
	res.ResponseTime = time.Since(start)
	res.Timestamp = start

	name := ""
	if s != nil {
		name = s.Name
	}
	p.logger.Debug("probe finished", "server", name, "success", res.Success, "elapsed", res.ResponseTime)
	return res
}

// TestAll probes servers with at most concurrency probes in flight.
// Results are in input order.
func (p *Prober) TestAll(ctx context.Context, servers []*mcp.Server, concurrency int) []mcp.TestResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	results := make([]mcp.TestResult, len(servers))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, s := range servers {
		g.Go(func() error {
			results[i] = p.TestConnection(ctx, s)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func success(msg string) mcp.TestResult {
	return mcp.TestResult{Success: true, Message: msg}
}

func failure(msg string, err error) mcp.TestResult {
	res := mcp.TestResult{Message: msg}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
