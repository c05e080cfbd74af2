package probe

import (
	"fmt"

	"github.com/thoreinstein/mcpm/internal/logging"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// GetTestDescription explains what TestConnection will do for s. URLs are
// shown with credentials masked.
func (p *Prober) GetTestDescription(s *mcp.Server) string {
	if s == nil {
		return "nothing to test"
	}
	switch ep := s.Endpoint.(type) {
	case *mcp.StdioEndpoint:
		return fmt.Sprintf("Start %q and check it is still running after %s (limit %s)",
			commandLine(ep.Command, ep.Args), p.startupWindow, p.stdioTimeout)
	case *mcp.SSEEndpoint:
		return fmt.Sprintf("GET %s and expect an event stream (limit %s)", logging.MaskURL(ep.URL), p.networkTimeout)
	case *mcp.SSEVariantEndpoint:
		return fmt.Sprintf("GET %s and expect an event stream (limit %s)", logging.MaskURL(ep.ServerURL), p.networkTimeout)
	case *mcp.HTTPEndpoint:
		return fmt.Sprintf("GET %s and expect a 2xx, 404 or 405 response (limit %s)", logging.MaskURL(ep.URL), p.networkTimeout)
	case nil:
		return "no transport configured"
	default:
		return "unknown transport"
	}
}
