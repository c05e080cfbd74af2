// Package config provides configuration management for mcpm using Viper.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpm/internal/backup"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/internal/probe"
	"github.com/thoreinstein/mcpm/internal/protect"
)

// AppName is the application name used for config file naming.
const AppName = paths.AppName

// CurrentVersion is the config format version this build writes.
const CurrentVersion = 1

// EnvPrefix prefixes environment overrides, e.g. MCPM_WORKSPACE.
const EnvPrefix = "MCPM"

// Config represents the top-level configuration structure.
type Config struct {
	Version    int                       `mapstructure:"version" yaml:"version"`
	Editors    map[string]EditorOverride `mapstructure:"editors" yaml:"editors"`
	VSCode     VSCodeConfig              `mapstructure:"vscode" yaml:"vscode"`
	Workspace  string                    `mapstructure:"workspace" yaml:"workspace"`
	Probe      ProbeConfig               `mapstructure:"probe" yaml:"probe"`
	Protection ProtectionConfig          `mapstructure:"protection" yaml:"protection"`
	Backup     BackupConfig              `mapstructure:"backup" yaml:"backup"`
}

// EditorOverride relocates an editor's global config file.
type EditorOverride struct {
	ConfigPath string `mapstructure:"config_path" yaml:"config_path"`
}

// VSCodeConfig holds VS Code specific settings.
type VSCodeConfig struct {
	UserSettings string `mapstructure:"user_settings" yaml:"user_settings"`
}

// ProbeConfig holds connection probe timings.
type ProbeConfig struct {
	StdioTimeout   time.Duration `mapstructure:"stdio_timeout" yaml:"stdio_timeout"`
	StartupWindow  time.Duration `mapstructure:"startup_window" yaml:"startup_window"`
	NetworkTimeout time.Duration `mapstructure:"network_timeout" yaml:"network_timeout"`
	Concurrency    int           `mapstructure:"concurrency" yaml:"concurrency"`
}

// ProtectionConfig holds the protected-server settings.
type ProtectionConfig struct {
	Defaults  []string `mapstructure:"defaults" yaml:"defaults"`
	StateFile string   `mapstructure:"state_file" yaml:"state_file"`
}

// BackupConfig controls snapshots taken before writes.
type BackupConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Retention int    `mapstructure:"retention" yaml:"retention"`
	Dir       string `mapstructure:"dir" yaml:"dir"`
}

// ConfigPath returns the override for editor, or "".
func (c *Config) ConfigPath(editor mcp.Editor) string {
	return c.Editors[string(editor)].ConfigPath
}

// Init resets Viper and installs the defaults, search paths and
// environment binding. Call it once at startup before Load.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(filepath.Join(paths.ConfigHome(), AppName))

	// MCPM_PROBE_STDIO_TIMEOUT overrides probe.stdio_timeout.
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("version", CurrentVersion)
	for _, e := range mcp.AllEditors() {
		if e != mcp.EditorVSCode {
			viper.SetDefault("editors."+string(e)+".config_path", "")
		}
	}
	viper.SetDefault("vscode.user_settings", "")
	viper.SetDefault("workspace", "")
	viper.SetDefault("probe.stdio_timeout", probe.DefaultStdioTimeout)
	viper.SetDefault("probe.startup_window", probe.DefaultStartupWindow)
	viper.SetDefault("probe.network_timeout", probe.DefaultNetworkTimeout)
	viper.SetDefault("probe.concurrency", probe.DefaultConcurrency)
	viper.SetDefault("protection.defaults", protect.DefaultProtected)
	viper.SetDefault("protection.state_file", paths.ProtectionStateFile())
	viper.SetDefault("backup.enabled", true)
	viper.SetDefault("backup.retention", backup.DefaultRetention)
	viper.SetDefault("backup.dir", paths.BackupDir())
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back
// to the defaults when no file exists.
// The result is validated before it is returned.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load without a file uses the defaults.
		case errors.As(err, &notFound):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		case path != "" && errors.Is(err, os.ErrNotExist):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), "validating config")
	}
	return &cfg, nil
}

// FileUsed returns the config file Load read, or "".
func FileUsed() string {
	return viper.ConfigFileUsed()
}
