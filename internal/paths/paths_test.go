package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

func TestHome(t *testing.T) {
	got := Home()
	want, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("os.UserHomeDir() failed: %v", err)
	}
	if got != want {
		t.Errorf("Home() = %q, want %q", got, want)
	}
}

func TestResolveHome(t *testing.T) {
	got, err := ResolveHome()
	want, _ := os.UserHomeDir()

	if err != nil {
		if !errors.Is(err, ErrHomeDirNotFound) {
			t.Errorf("unexpected error type: %v", err)
		}
	} else if got != want {
		t.Errorf("ResolveHome() = %q, want %q", got, want)
	}
}

func TestXDGDirs(t *testing.T) {
	tests := []struct {
		name string
		fn   func() string
	}{
		{"ConfigHome", ConfigHome},
		{"StateHome", StateHome},
		{"DataHome", DataHome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn()
			if got == "" {
				t.Fatalf("%s() returned empty string", tt.name)
			}
			if !filepath.IsAbs(got) {
				t.Errorf("%s() = %q, want absolute path", tt.name, got)
			}
		})
	}
}

func TestAppFiles(t *testing.T) {
	tests := []struct {
		name       string
		got        string
		wantSuffix string
	}{
		{"AppConfigFile", AppConfigFile(), filepath.Join("mcpm", "config.yaml")},
		{"ProtectionStateFile", ProtectionStateFile(), filepath.Join("mcpm", "protection.json")},
		{"BackupDir", BackupDir(), filepath.Join("mcpm", "backups")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasSuffix(tt.got, tt.wantSuffix) {
				t.Errorf("%s() = %q, want suffix %q", tt.name, tt.got, tt.wantSuffix)
			}
		})
	}
}

func TestEditorPaths(t *testing.T) {
	home := Home()
	if home == "" {
		t.Skip("home directory not available")
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"cursor", CursorConfigPath(), filepath.Join(home, ".cursor", "mcp.json")},
		{"windsurf", WindsurfConfigPath(), filepath.Join(home, ".codeium", "windsurf", "mcp_config.json")},
		{"vscode user", VSCodeUserSettingsPath(), filepath.Join(ConfigHome(), "Code", "User", "settings.json")},
		{"vscode workspace", VSCodeWorkspaceConfigPath("/proj"), filepath.Join("/proj", ".vscode", "mcp.json")},
		{"vscode workspace empty root", VSCodeWorkspaceConfigPath(""), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestEditorConfigDir(t *testing.T) {
	for _, e := range mcp.AllEditors() {
		if EditorConfigDir(e) == "" {
			t.Errorf("EditorConfigDir(%q) is empty", e)
		}
	}
	if got := EditorConfigDir("zed"); got != "" {
		t.Errorf("EditorConfigDir(zed) = %q, want empty", got)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir, 0); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Error("EnsureDir() did not create a directory")
	}
	if err := EnsureDir(dir, 0); err != nil {
		t.Errorf("EnsureDir() on existing dir error = %v", err)
	}
}
