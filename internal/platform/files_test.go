package platform

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// plainTranslator stores endpoints with the shared field names and no tag.
type plainTranslator struct{}

func (plainTranslator) Editor() mcp.Editor { return mcp.EditorCursor }

func (plainTranslator) Decode(name string, raw json.RawMessage) (*mcp.Server, error) {
	r, err := mcp.ParseRecord(raw)
	if err != nil {
		return nil, err
	}
	ep, err := mcp.DecodeEndpoint(r, "")
	if err != nil {
		return nil, err
	}
	return &mcp.Server{Name: name, Endpoint: ep, Extra: r.Extra()}, nil
}

func (plainTranslator) Encode(s *mcp.Server) (json.RawMessage, error) {
	b := mcp.NewBuilder(s.Extra)
	if err := b.Endpoint(s.Endpoint); err != nil {
		return nil, err
	}
	return b.Build()
}

func testServerFile(path string) *ServerFile {
	return &ServerFile{
		Editor:     mcp.EditorCursor,
		Scope:      mcp.ScopeGlobal,
		Path:       path,
		Key:        "mcpServers",
		Translator: plainTranslator{},
		Capabilities: Capabilities{
			Transports: []mcp.Transport{mcp.TransportStdio, mcp.TransportSSE},
			Scopes:     []mcp.Scope{mcp.ScopeGlobal},
		},
	}
}

func meta(s *mcp.Server, editor mcp.Editor, scope mcp.Scope) *mcp.ServerWithMetadata {
	return mcp.WithMetadata(s, editor, scope, "")
}

func TestServerFile_ReadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	f := testServerFile(path)
	f.Skeleton = map[string]json.RawMessage{"inputs": json.RawMessage("[]")}
	servers, err := f.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(servers) != 0 {
		t.Errorf("Read() = %v, want empty", servers)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("missing file not created: %v", err)
	}
	if want := "{\n  \"inputs\": [],\n  \"mcpServers\": {}\n}\n"; string(data) != want {
		t.Errorf("created %q, want %q", data, want)
	}
}

func TestServerFile_ReadMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "mcp.json")
	if _, err := testServerFile(path).Read(); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); !os.IsNotExist(err) {
		t.Error("Read() created the parent directory")
	}
}

func TestServerFile_Merge(t *testing.T) {
	f := testServerFile(filepath.Join(t.TempDir(), "mcp.json"))
	servers := []*mcp.ServerWithMetadata{
		meta(&mcp.Server{Name: "a", Endpoint: &mcp.StdioEndpoint{Command: "a"}}, "", ""),
	}

	data, err := f.Merge([]byte(`{"mcpServers": {"old": {"command": "old"}}, "telemetry": false}`), servers)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if want := "{\n  \"mcpServers\": {\n    \"a\": {\n      \"command\": \"a\"\n    }\n  },\n  \"telemetry\": false\n}\n"; string(data) != want {
		t.Errorf("Merge() = %s, want %s", data, want)
	}

	if _, err := f.Merge([]byte("{not json"), servers); err == nil {
		t.Error("Merge() onto malformed content should fail")
	}
}

func TestServerFile_WriteRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	if err := os.WriteFile(path, []byte(`{"mcpServers": {"a": `), 0o644); err != nil {
		t.Fatal(err)
	}
	f := testServerFile(path)

	raw := `{"mcpServers": {"b": {"command": "b"}}, "maxTools": 50}`
	if err := f.WriteRaw([]byte(raw)); err != nil {
		t.Fatalf("WriteRaw() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != raw {
		t.Errorf("content = %s, want %s", data, raw)
	}

	var pe *errors.ParseError
	if err := f.WriteRaw([]byte(`{"mcpServers": [`)); !errors.As(err, &pe) {
		t.Errorf("WriteRaw(malformed) error = %v, want *ParseError", err)
	}
}

func TestServerFile_WritePreservesExtraAndSorts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mcp.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"theme": "dark", "mcpServers": {}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	f := testServerFile(path)
	servers := []*mcp.ServerWithMetadata{
		meta(&mcp.Server{Name: "zeta", Endpoint: &mcp.StdioEndpoint{Command: "z"}}, mcp.EditorCursor, mcp.ScopeGlobal),
		meta(&mcp.Server{Name: "alpha", Endpoint: &mcp.SSEEndpoint{URL: "https://a.example/sse"}}, "", ""),
		meta(&mcp.Server{Name: "other", Endpoint: &mcp.StdioEndpoint{Command: "o"}}, mcp.EditorVSCode, mcp.ScopeUser),
	}
	if err := f.Write(servers); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"theme": "dark"`) {
		t.Errorf("unrelated key lost:\n%s", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := f.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if names := mcp.Names(got); len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("names = %v, want [alpha zeta]", names)
	}
	for _, s := range got {
		if s.Editor != mcp.EditorCursor || s.Scope != mcp.ScopeGlobal || s.SourcePath != path {
			t.Errorf("metadata = %s %s %s", s.Editor, s.Scope, s.SourcePath)
		}
	}
}

func TestServerFile_WriteRejectsUnsupportedTransport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	f := testServerFile(path)
	servers := []*mcp.ServerWithMetadata{
		meta(&mcp.Server{Name: "remote", Endpoint: &mcp.HTTPEndpoint{URL: "https://a.example"}}, "", ""),
	}

	err := f.Write(servers)
	if !errors.Is(err, errors.ErrTransportUnsupported) {
		t.Fatalf("Write() error = %v, want ErrTransportUnsupported", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("file was written despite the error")
	}
}

func TestServerFile_WriteRejectsDuplicateNames(t *testing.T) {
	f := testServerFile(filepath.Join(t.TempDir(), "mcp.json"))
	servers := []*mcp.ServerWithMetadata{
		meta(&mcp.Server{Name: "dup", Endpoint: &mcp.StdioEndpoint{Command: "a"}}, "", ""),
		meta(&mcp.Server{Name: "dup", Endpoint: &mcp.StdioEndpoint{Command: "b"}}, "", ""),
	}

	var conflict *errors.UniquenessConflict
	if err := f.Write(servers); !errors.As(err, &conflict) {
		t.Fatalf("Write() error = %v, want *UniquenessConflict", err)
	}
	if conflict.Name != "dup" {
		t.Errorf("conflict.Name = %q, want dup", conflict.Name)
	}
}

func TestServerFile_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed JSON", `{"mcpServers": `},
		{"mismatched fields", `{"mcpServers": {"x": {"command": "a", "url": "https://b"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testServerFile("/tmp/mcp.json")
			_, err := f.Parse([]byte(tt.raw))
			var pe *errors.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse() error = %v, want *ParseError", err)
			}
			if pe.Path != "/tmp/mcp.json" {
				t.Errorf("ParseError.Path = %q", pe.Path)
			}
		})
	}
}

func TestReadConfigFile(t *testing.T) {
	dir := t.TempDir()
	data, exists, err := ReadConfigFile(filepath.Join(dir, "absent.json"))
	if err != nil || exists || data != nil {
		t.Errorf("ReadConfigFile(absent) = %q, %v, %v", data, exists, err)
	}

	path := filepath.Join(dir, "present.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, exists, err = ReadConfigFile(path)
	if err != nil || !exists || string(data) != "{}" {
		t.Errorf("ReadConfigFile(present) = %q, %v, %v", data, exists, err)
	}
}
