package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"edaproxy/internal/logger"
)

const (
	// DefaultPath is where the config document lives next to the wrapper.
	DefaultPath = "/usr/local/bin/eda_config.toml"

	// EnvConfigPath overrides DefaultPath.
	EnvConfigPath = "EDA_PROXY_CONFIG"
	// EnvDebug turns on debug logging in proxy mode when set to "1".
	EnvDebug = "EDA_PROXY_DEBUG"
	// EnvCurrentProject selects the passthrough whitelist.
	EnvCurrentProject = "CURRENT_PROJECT"

	stateFileName = ".edaproxy_links.json"
)

// Default returns the hard-coded configuration used whenever the document is
// missing, malformed, or leaves a field unset.
func Default() Config {
	return Config{
		Paths: Paths{
			WrapperPath: "/usr/local/bin/edaproxy",
			BinDir:      "/usr/local/bin",
		},
		Connection: Connection{
			RemoteHost: "eda",
			RemoteUser: "aislab",
			SSHOptions: []string{
				"-o", "StrictHostKeyChecking=no",
				"-o", "UserKnownHostsFile=/dev/null",
				"-o", "LogLevel=QUIET",
			},
			SSHBinary:   "ssh",
			RemoteShell: "tcsh",
		},
		Tools: ToolRegistry{
			Modules:       map[string]string{},
			ModuleCommand: "ml",
		},
		Environment: EnvironmentPolicy{},
	}
}

// PathFromEnv returns the config path named by EDA_PROXY_CONFIG, or DefaultPath.
func PathFromEnv(lookup func(string) (string, bool)) string {
	if p, ok := lookup(EnvConfigPath); ok && strings.TrimSpace(p) != "" {
		return p
	}
	return DefaultPath
}

// Load reads the config document at path and never fails: a missing file yields the
// defaults silently, a read or parse failure yields the defaults and a debug line.
func Load(path string) Config {
	if _, err := os.Stat(path); err != nil {
		logger.Debug("[DEBUG] Config %s not found, using defaults\n", path)
		return normalize(Default())
	}

	cfg, err := Parse(path)
	if err != nil {
		logger.Debug("[DEBUG] Failed to load %s: %v\n", path, err)
		return normalize(Default())
	}

	logger.Debug("[DEBUG] Loaded config from %s\n", path)
	return cfg
}

// Parse decodes the document at path on top of the defaults. The format follows the
// file extension: .yaml/.yml use YAML, anything else is TOML.
func Parse(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}

	return normalize(cfg), nil
}

// normalize fills blank fields back in from the defaults so a partially populated
// document still produces a usable snapshot.
func normalize(cfg Config) Config {
	def := Default()

	if strings.TrimSpace(cfg.Paths.WrapperPath) == "" {
		cfg.Paths.WrapperPath = def.Paths.WrapperPath
	}
	if strings.TrimSpace(cfg.Paths.BinDir) == "" {
		cfg.Paths.BinDir = def.Paths.BinDir
	}
	if strings.TrimSpace(cfg.Paths.StateFile) == "" {
		cfg.Paths.StateFile = filepath.Join(cfg.Paths.BinDir, stateFileName)
	}

	if strings.TrimSpace(cfg.Connection.RemoteHost) == "" {
		cfg.Connection.RemoteHost = def.Connection.RemoteHost
	}
	if strings.TrimSpace(cfg.Connection.RemoteUser) == "" {
		cfg.Connection.RemoteUser = def.Connection.RemoteUser
	}
	if cfg.Connection.SSHOptions == nil {
		cfg.Connection.SSHOptions = def.Connection.SSHOptions
	}
	if strings.TrimSpace(cfg.Connection.SSHBinary) == "" {
		cfg.Connection.SSHBinary = def.Connection.SSHBinary
	}
	if strings.TrimSpace(cfg.Connection.RemoteShell) == "" {
		cfg.Connection.RemoteShell = def.Connection.RemoteShell
	}

	if cfg.Tools.Modules == nil {
		cfg.Tools.Modules = map[string]string{}
	}
	if strings.TrimSpace(cfg.Tools.ModuleCommand) == "" {
		cfg.Tools.ModuleCommand = def.Tools.ModuleCommand
	}
	if cfg.Environment == nil {
		cfg.Environment = EnvironmentPolicy{}
	}
	return cfg
}
