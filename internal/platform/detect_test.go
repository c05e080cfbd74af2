package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/thoreinstein/mcpm/internal/mcp"
)

func TestWorkspacePolicy_Available(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
		want  bool
	}{
		{
			name:  "empty directory",
			setup: func(*testing.T, string) {},
			want:  false,
		},
		{
			name: "config dir exists",
			setup: func(t *testing.T, root string) {
				mkdir(t, filepath.Join(root, ".vscode"))
			},
			want: true,
		},
		{
			name: "go module",
			setup: func(t *testing.T, root string) {
				touch(t, filepath.Join(root, "go.mod"))
			},
			want: true,
		},
		{
			name: "git repository",
			setup: func(t *testing.T, root string) {
				mkdir(t, filepath.Join(root, ".git"))
			},
			want: true,
		},
		{
			name: "readme only",
			setup: func(t *testing.T, root string) {
				touch(t, filepath.Join(root, "README.md"))
			},
			want: true,
		},
		{
			name: "unrelated files",
			setup: func(t *testing.T, root string) {
				touch(t, filepath.Join(root, "notes.txt"))
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			tt.setup(t, root)

			p := DefaultWorkspacePolicy()
			p.Home = filepath.Join(root, "elsewhere")
			if got := p.Available(filepath.Join(root, ".vscode")); got != tt.want {
				t.Errorf("Available() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWorkspacePolicy_RejectsHome(t *testing.T) {
	home := t.TempDir()
	touch(t, filepath.Join(home, "package.json"))

	p := WorkspacePolicy{Markers: DefaultWorkspaceMarkers, Home: home}
	if p.Available(filepath.Join(home, ".vscode")) {
		t.Error("Available() = true for the home directory, want false")
	}

	// An existing directory under home is still usable.
	mkdir(t, filepath.Join(home, ".vscode"))
	if !p.Available(filepath.Join(home, ".vscode")) {
		t.Error("Available() = false for an existing config dir, want true")
	}
}

func TestWorkspacePolicy_RejectsRoot(t *testing.T) {
	p := WorkspacePolicy{Markers: []string{"."}, Home: t.TempDir()}
	root := string(filepath.Separator)
	if p.Available(filepath.Join(root, ".mcpm-does-not-exist")) {
		t.Error("Available() = true for the filesystem root, want false")
	}
	if p.Available("") {
		t.Error("Available(\"\") = true, want false")
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp.json")
	touch(t, path)

	a := newMockAdapter(mcp.EditorCursor)
	a.paths[mcp.ScopeGlobal] = path

	result := Detect(a)
	if result == nil {
		t.Fatal("Detect() returned nil")
	}
	if result.Editor != mcp.EditorCursor {
		t.Errorf("Editor = %q, want cursor", result.Editor)
	}
	if result.ConfigDir == "" {
		t.Error("ConfigDir is empty")
	}
	switch result.Status {
	case StatusInstalled, StatusNotInstalled:
	default:
		t.Errorf("Status = %q, want a valid InstallStatus", result.Status)
	}
	if len(result.Scopes) != 1 {
		t.Fatalf("Scopes = %v, want 1", result.Scopes)
	}
	got := result.Scopes[0]
	if got.ConfigPath != path || !got.Exists || !got.Available {
		t.Errorf("ScopeInfo = %+v", got)
	}

	if Detect(nil) != nil {
		t.Error("Detect(nil) should be nil")
	}
}

func TestDetectAll(t *testing.T) {
	adapters := []Adapter{newMockAdapter(mcp.EditorCursor), newMockAdapter(mcp.EditorWindsurf)}
	results := DetectAll(adapters)
	if len(results) != 2 {
		t.Fatalf("DetectAll() returned %d results, want 2", len(results))
	}
	if results[0].Editor != mcp.EditorCursor || results[1].Editor != mcp.EditorWindsurf {
		t.Errorf("DetectAll() order = %q, %q", results[0].Editor, results[1].Editor)
	}
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}
