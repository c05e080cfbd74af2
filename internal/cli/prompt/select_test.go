package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

func servers(names ...string) []*mcp.ServerWithMetadata {
	out := make([]*mcp.ServerWithMetadata, len(names))
	for i, n := range names {
		out[i] = mcp.WithMetadata(&mcp.Server{
			Name:     n,
			Endpoint: &mcp.StdioEndpoint{Command: "npx"},
		}, mcp.EditorCursor, mcp.ScopeGlobal, "/tmp/mcp.json")
	}
	return out
}

func TestSelectServer_EmptyList(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSelectorWithIO(strings.NewReader(""), &buf)

	if _, err := s.SelectServer(nil); !errors.Is(err, ErrNoServers) {
		t.Errorf("SelectServer(nil) error = %v, want ErrNoServers", err)
	}
}

func TestSelectServer_SingleItem(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSelectorWithIO(strings.NewReader(""), &buf)

	got, err := s.SelectServer(servers("github"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "github" {
		t.Errorf("expected 'github', got %q", got.Name)
	}
	if buf.Len() > 0 {
		t.Errorf("expected no output for single item, got: %s", buf.String())
	}
}

func TestSelectServer_ValidSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantName string
	}{
		{"explicit first", "1\n", "github"},
		{"second", "2\n", "memory"},
		{"default on empty", "\n", "github"},
		{"surrounding whitespace", "  3  \n", "context7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			s := NewSelectorWithIO(strings.NewReader(tt.input), &buf)

			got, err := s.SelectServer(servers("github", "memory", "context7"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Name != tt.wantName {
				t.Errorf("got %q, want %q", got.Name, tt.wantName)
			}
			if !strings.Contains(buf.String(), "[2] memory (cursor global, stdio)") {
				t.Errorf("prompt missing labelled entry:\n%s", buf.String())
			}
		})
	}
}

func TestSelectServer_InvalidSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"not a number", "abc\n", ErrInvalidSelection},
		{"zero", "0\n", ErrInvalidSelection},
		{"out of range", "9\n", ErrInvalidSelection},
		{"EOF", "", ErrSelectionCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			s := NewSelectorWithIO(strings.NewReader(tt.input), &buf)

			_, err := s.SelectServer(servers("a", "b"))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFuzzySelectServer_Empty(t *testing.T) {
	_, err := FuzzySelectServer(nil, func(*mcp.ServerWithMetadata) string { return "" })
	if !errors.Is(err, ErrNoServers) {
		t.Errorf("error = %v, want ErrNoServers", err)
	}
}
