package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/probe"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInit(t *testing.T) {
	Init()

	if viper.GetInt("version") != 1 {
		t.Errorf("expected version default 1, got %d", viper.GetInt("version"))
	}
	if got := viper.GetDuration("probe.stdio_timeout"); got != probe.DefaultStdioTimeout {
		t.Errorf("probe.stdio_timeout default = %s, want %s", got, probe.DefaultStdioTimeout)
	}
	if !viper.GetBool("backup.enabled") {
		t.Error("expected backups enabled by default")
	}
}

func TestInit_ClearsPreviousState(t *testing.T) {
	viper.Set("workspace", "/stale")
	Init()
	if got := viper.GetString("workspace"); got != "" {
		t.Errorf("workspace = %q after Init, want empty", got)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if diff := cmp.Diff([]string{"filesystem", "github", "memory"}, cfg.Protection.Defaults); diff != "" {
		t.Errorf("protection defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	path := writeConfig(t, `
editors:
  cursor:
    config_path: /tmp/cursor/mcp.json
vscode:
  user_settings: /tmp/Code/User/settings.json
probe:
  stdio_timeout: 20s
  startup_window: 3s
protection:
  defaults: []
backup:
  retention: 2
`)
	Init()

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got := cfg.ConfigPath(mcp.EditorCursor); got != "/tmp/cursor/mcp.json" {
		t.Errorf("cursor config path = %q", got)
	}
	if got := cfg.ConfigPath(mcp.EditorWindsurf); got != "" {
		t.Errorf("windsurf config path = %q, want empty", got)
	}
	if cfg.VSCode.UserSettings != "/tmp/Code/User/settings.json" {
		t.Errorf("user settings = %q", cfg.VSCode.UserSettings)
	}
	if cfg.Probe.StdioTimeout != 20*time.Second || cfg.Probe.StartupWindow != 3*time.Second {
		t.Errorf("probe timings = %s/%s", cfg.Probe.StdioTimeout, cfg.Probe.StartupWindow)
	}
	if cfg.Probe.NetworkTimeout != probe.DefaultNetworkTimeout {
		t.Errorf("network timeout = %s, want default", cfg.Probe.NetworkTimeout)
	}
	if cfg.Backup.Retention != 2 {
		t.Errorf("retention = %d, want 2", cfg.Backup.Retention)
	}
	if FileUsed() != path {
		t.Errorf("FileUsed() = %q, want %q", FileUsed(), path)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MCPM_PROBE_NETWORK_TIMEOUT", "250ms")
	t.Setenv("MCPM_WORKSPACE", "/srv/project")
	Init()

	cfg, err := Load(writeConfig(t, "version: 1\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Probe.NetworkTimeout != 250*time.Millisecond {
		t.Errorf("network timeout = %s, want 250ms", cfg.Probe.NetworkTimeout)
	}
	if cfg.Workspace != "/srv/project" {
		t.Errorf("workspace = %q", cfg.Workspace)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	Init()

	_, err := Load("/non/existent/path/config.yaml")
	if err == nil {
		t.Error("Load() with non-existent explicit path should error")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	Init()

	_, err := Load(writeConfig(t, "probe: [unclosed\n"))
	if err == nil {
		t.Error("Load() with malformed YAML should error")
	}
}

func TestLoad_ValidationError(t *testing.T) {
	Init()

	_, err := Load(writeConfig(t, "version: 0\n"))
	if err == nil {
		t.Fatal("Load() should fail validation")
	}
	if !errors.Is(err, ErrVersionTooLow) {
		t.Errorf("error = %v, want ErrVersionTooLow", err)
	}
	if got, want := err.Error(), "validating config: version must be >= 1"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func validConfig() *Config {
	return &Config{
		Version: 1,
		Probe: ProbeConfig{
			StdioTimeout:   probe.DefaultStdioTimeout,
			StartupWindow:  probe.DefaultStartupWindow,
			NetworkTimeout: probe.DefaultNetworkTimeout,
		},
		Backup: BackupConfig{Enabled: true, Retention: 10},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []error
	}{
		{"valid", func(*Config) {}, nil},
		{"version too low", func(c *Config) { c.Version = 0 }, []error{ErrVersionTooLow}},
		{"version too high", func(c *Config) { c.Version = 2 }, []error{ErrVersionUnsupported}},
		{
			"unknown editor",
			func(c *Config) { c.Editors = map[string]EditorOverride{"zed": {}} },
			[]error{ErrInvalidEditor},
		},
		{
			"vscode has no global override",
			func(c *Config) { c.Editors = map[string]EditorOverride{"vscode": {ConfigPath: "/x"}} },
			[]error{ErrInvalidEditor},
		},
		{
			"null byte in path",
			func(c *Config) { c.Protection.StateFile = "/tmp/a\x00b" },
			[]error{ErrInvalidPath},
		},
		{
			"zero timeout",
			func(c *Config) { c.Probe.NetworkTimeout = 0 },
			[]error{ErrInvalidTimeout},
		},
		{
			"window outlasts timeout",
			func(c *Config) { c.Probe.StartupWindow = c.Probe.StdioTimeout },
			[]error{ErrInvalidTimeout},
		},
		{
			"retention below one",
			func(c *Config) { c.Backup.Retention = 0 },
			[]error{ErrInvalidRetention},
		},
		{
			"retention ignored when disabled",
			func(c *Config) { c.Backup = BackupConfig{} },
			nil,
		},
		{
			"collects every error",
			func(c *Config) {
				c.Version = 0
				c.Workspace = "\x00"
			},
			[]error{ErrVersionTooLow, ErrInvalidPath},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			errs := Validate(cfg)
			if len(errs) != len(tt.wantErr) {
				t.Fatalf("Validate() = %v, want %d errors", errs, len(tt.wantErr))
			}
			for i, want := range tt.wantErr {
				if !errors.Is(errs[i], want) {
					t.Errorf("error %d = %v, want %v", i, errs[i], want)
				}
			}
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	if errs := Validate(nil); len(errs) != 1 {
		t.Errorf("Validate(nil) = %v, want one error", errs)
	}
}

func TestValidate_ErrorTypes(t *testing.T) {
	cfg := validConfig()
	cfg.Editors = map[string]EditorOverride{"atom": {}}
	cfg.VSCode.UserSettings = "\x00"

	errs := Validate(cfg)
	if len(errs) != 2 {
		t.Fatalf("Validate() = %v, want 2 errors", errs)
	}

	var editorErr *EditorError
	if !errors.As(errs[0], &editorErr) || editorErr.Editor != "atom" {
		t.Errorf("errs[0] = %v, want EditorError for atom", errs[0])
	}
	var pathErr *PathError
	if !errors.As(errs[1], &pathErr) || pathErr.Field != "vscode.user_settings" {
		t.Errorf("errs[1] = %v, want PathError for vscode.user_settings", errs[1])
	}
}
