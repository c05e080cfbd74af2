// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// Sentinel errors for server selection.
var (
	ErrNoServers          = errors.New("no servers to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Selector handles numbered server selection prompts. It is the fallback
// when stdin is not a terminal.
type Selector struct {
	reader io.Reader
	writer io.Writer
}

// NewSelector creates a new Selector using stdin and stdout.
func NewSelector() *Selector {
	return &Selector{
		reader: os.Stdin,
		writer: os.Stdout,
	}
}

// NewSelectorWithIO creates a Selector with custom reader and writer for testing.
func NewSelectorWithIO(r io.Reader, w io.Writer) *Selector {
	return &Selector{
		reader: r,
		writer: w,
	}
}

// Label is the one-line description of a server in a picker.
func Label(s *mcp.ServerWithMetadata) string {
	return fmt.Sprintf("%s (%s %s, %s)", s.Name, s.Editor, s.Scope, s.Transport())
}

// SelectServer prompts the user to choose from a list of servers.
//
// Returns:
//   - ErrNoServers if the list is empty
//   - The server if only one exists (auto-selects without prompting)
//   - The selected server based on user input
//   - ErrInvalidSelection if the selection is out of range
//   - ErrSelectionCancelled if input is EOF (e.g., Ctrl+D)
func (s *Selector) SelectServer(servers []*mcp.ServerWithMetadata) (*mcp.ServerWithMetadata, error) {
	if len(servers) == 0 {
		return nil, ErrNoServers
	}
	if len(servers) == 1 {
		return servers[0], nil
	}

	fmt.Fprintln(s.writer, "Select a server:")
	for i, srv := range servers {
		fmt.Fprintf(s.writer, "  [%d] %s\n", i+1, Label(srv))
	}
	fmt.Fprintf(s.writer, "Select [1]: ")

	reader := bufio.NewReader(s.reader)
	input, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrSelectionCancelled
		}
		return nil, errors.Wrap(err, "reading selection")
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return servers[0], nil
	}

	selection, err := strconv.Atoi(input)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}
	if selection < 1 || selection > len(servers) {
		return nil, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, len(servers))
	}

	return servers[selection-1], nil
}

// FuzzySelectServer opens a full-screen fuzzy finder over servers with a
// preview of the selected definition. describe renders the preview body.
func FuzzySelectServer(servers []*mcp.ServerWithMetadata, describe func(*mcp.ServerWithMetadata) string) (*mcp.ServerWithMetadata, error) {
	if len(servers) == 0 {
		return nil, ErrNoServers
	}

	idx, err := fuzzyfinder.Find(
		servers,
		func(i int) string {
			return Label(servers[i])
		},
		fuzzyfinder.WithPromptString("server> "),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return describe(servers[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, ErrSelectionCancelled
		}
		return nil, errors.Wrap(err, "interactive selection failed")
	}
	return servers[idx], nil
}
