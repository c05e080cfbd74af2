// Package config provides configuration management for mcpm.
//
// This is mcpm's own configuration. The editor files it manages are read
// and written by the platform adapters.
//
// # Configuration File
//
// Viper searches ./config.yaml and then <ConfigHome>/mcpm/config.yaml.
// The CLI passes the --config flag (or $MCPM_CONFIG) to [Load] to read a
// specific file instead. Every key is optional:
//
//	version: 1
//	editors:
//	  cursor:
//	    config_path: ~/work/.cursor/mcp.json
//	vscode:
//	  user_settings: ~/.config/Code/User/settings.json
//	workspace: ~/src/project
//	probe:
//	  stdio_timeout: 8s
//	  startup_window: 1.5s
//	  network_timeout: 5s
//	  concurrency: 4
//	protection:
//	  defaults: [filesystem, github, memory]
//	  state_file: ~/.local/state/mcpm/protection.json
//	backup:
//	  enabled: true
//	  retention: 10
//	  dir: ~/.local/share/mcpm/backups
//
// Environment variables override file values. The key is upper-cased,
// dots become underscores and MCPM_ is prepended, so MCPM_PROBE_STDIO_TIMEOUT
// sets probe.stdio_timeout.
//
// # Loading
//
//	config.Init()
//	cfg, err := config.Load(path)
//
// [Load] validates the result; see [Validate] for the checks.
package config
