package probe

import (
	"context"
	"fmt"
	"mime"
	"net/http"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

const eventStream = "text/event-stream"

func (p *Prober) get(ctx context.Context, url, accept string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return p.client.Do(req)
}

func (p *Prober) testSSE(ctx context.Context, url string, headers map[string]string) mcp.TestResult {
	ctx, cancel := context.WithTimeout(ctx, p.networkTimeout)
	defer cancel()

	resp, err := p.get(ctx, url, eventStream, headers)
	if err != nil {
		return p.requestFailure(ctx, err)
	}
	// The stream never ends; only the status line and headers matter.
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(fmt.Sprintf("server responded %s", resp.Status), nil)
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != eventStream {
		return failure(fmt.Sprintf("expected %s, got %q", eventStream, resp.Header.Get("Content-Type")), nil)
	}
	return success(fmt.Sprintf("event stream opened (%s)", resp.Status))
}

func (p *Prober) testHTTP(ctx context.Context, url string, headers map[string]string) mcp.TestResult {
	ctx, cancel := context.WithTimeout(ctx, p.networkTimeout)
	defer cancel()

	resp, err := p.get(ctx, url, "application/json, "+eventStream, headers)
	if err != nil {
		return p.requestFailure(ctx, err)
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return success(fmt.Sprintf("server responded %s", resp.Status))
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusMethodNotAllowed:
		// Streamable HTTP servers may only accept POST on the endpoint.
		return success(fmt.Sprintf("server reachable (%s)", resp.Status))
	default:
		return failure(fmt.Sprintf("server responded %s", resp.Status), nil)
	}
}

func (p *Prober) requestFailure(ctx context.Context, err error) mcp.TestResult {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return failure(fmt.Sprintf("timed out after %s", p.networkTimeout), err)
	}
	return failure("request failed", err)
}
