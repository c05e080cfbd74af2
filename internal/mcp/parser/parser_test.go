package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thoreinstein/mcpm/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     []Option
		wantErr  error
		checkDoc func(t *testing.T, doc *Document)
	}{
		{
			name:  "empty input returns empty document",
			input: "  \n",
			checkDoc: func(t *testing.T, doc *Document) {
				t.Helper()
				if doc.Servers == nil || len(doc.Servers) != 0 {
					t.Errorf("Servers = %v, want empty map", doc.Servers)
				}
			},
		},
		{
			name:  "servers and extra keys",
			input: `{"mcpServers": {"github": {"command": "npx"}}, "maxTools": 40}`,
			checkDoc: func(t *testing.T, doc *Document) {
				t.Helper()
				if _, ok := doc.Servers["github"]; !ok {
					t.Error("expected server github")
				}
				if string(doc.Extra["maxTools"]) != "40" {
					t.Errorf("Extra[maxTools] = %s, want 40", doc.Extra["maxTools"])
				}
			},
		},
		{
			name:  "null servers is empty",
			input: `{"mcpServers": null}`,
			checkDoc: func(t *testing.T, doc *Document) {
				t.Helper()
				if len(doc.Servers) != 0 {
					t.Errorf("Servers len = %d, want 0", len(doc.Servers))
				}
				if _, ok := doc.Extra["mcpServers"]; ok {
					t.Error("servers key leaked into Extra")
				}
			},
		},
		{
			name:  "comments accepted with option",
			input: "{\n  // project servers\n  \"mcpServers\": {\"a\": {\"command\": \"x\"},},\n}",
			opts:  []Option{WithComments()},
			checkDoc: func(t *testing.T, doc *Document) {
				t.Helper()
				if len(doc.Servers) != 1 {
					t.Errorf("Servers len = %d, want 1", len(doc.Servers))
				}
			},
		},
		{
			name:    "comments rejected without option",
			input:   "{\n  // nope\n  \"mcpServers\": {}\n}",
			wantErr: ErrInvalidJSON,
		},
		{
			name:    "truncated JSON",
			input:   `{"mcpServers": {`,
			wantErr: ErrInvalidJSON,
		},
		{
			name:    "top level array",
			input:   `[1, 2]`,
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "top level null",
			input:   `null`,
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "servers is an array",
			input:   `{"mcpServers": []}`,
			wantErr: ErrInvalidDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input), "mcpServers", tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			if doc.ServersKey != "mcpServers" {
				t.Errorf("ServersKey = %q, want mcpServers", doc.ServersKey)
			}
			tt.checkDoc(t, doc)
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		doc, exists, err := ParseFile(filepath.Join(dir, "missing.json"), "servers")
		if err != nil {
			t.Fatalf("ParseFile() error = %v", err)
		}
		if exists {
			t.Error("exists = true, want false")
		}
		if len(doc.Servers) != 0 {
			t.Errorf("Servers len = %d, want 0", len(doc.Servers))
		}
	})

	t.Run("malformed file is a ParseError", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		_, exists, err := ParseFile(path, "servers")
		if !exists {
			t.Error("exists = false, want true")
		}
		var pe *errors.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("ParseFile() error = %v, want *ParseError", err)
		}
		if pe.Path != path {
			t.Errorf("ParseError.Path = %q, want %q", pe.Path, path)
		}
		if !errors.Is(err, ErrInvalidJSON) {
			t.Error("ParseError should wrap ErrInvalidJSON")
		}
	})
}

func TestDocument_Marshal(t *testing.T) {
	doc := New("mcpServers")
	doc.Servers["b"] = json.RawMessage(`{"command":"b"}`)
	doc.Servers["a"] = json.RawMessage(`{"url":"https://a.example"}`)
	doc.Extra = map[string]json.RawMessage{"maxTools": json.RawMessage(`50`)}

	data, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out := string(data)
	if !strings.HasSuffix(out, "}\n") {
		t.Error("output should end with a newline")
	}
	if strings.Index(out, `"a"`) > strings.Index(out, `"b"`) {
		t.Error("servers should be written in name order")
	}

	back, err := Parse(data, "mcpServers")
	if err != nil {
		t.Fatalf("Parse(Marshal()) error = %v", err)
	}
	if got := back.Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Names() = %v, want [a b]", got)
	}
	if string(back.Extra["maxTools"]) != "50" {
		t.Errorf("Extra[maxTools] = %s, want 50", back.Extra["maxTools"])
	}
}

func TestDocument_MarshalNilServers(t *testing.T) {
	doc := &Document{ServersKey: "servers"}
	data, err := doc.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{\n  \"servers\": {}\n}\n" {
		t.Errorf("Marshal() = %q", data)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cursor", "mcp.json")

	doc := New("mcpServers")
	doc.Servers["github"] = json.RawMessage(`{"command":"npx"}`)
	if err := WriteFile(path, doc); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	back, exists, err := ParseFile(path, "mcpServers")
	if err != nil || !exists {
		t.Fatalf("ParseFile() = %v, %v", exists, err)
	}
	if _, ok := back.Servers["github"]; !ok {
		t.Error("written server missing after reload")
	}
}
