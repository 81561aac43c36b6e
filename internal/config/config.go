// Package config loads server settings.
//
// Settings are resolved in order, later sources winning:
//
//  1. built-in defaults
//  2. a YAML file (--config or PHOTOSHOP_MCP_CONFIG)
//  3. PHOTOSHOP_MCP_* environment variables
//  4. command-line flags, applied by the caller
//
// Example file:
//
//	backend: bridge
//	tool_prefix: photoshop_
//	log:
//	  level: debug
//	  format: json
//	photoshop:
//	  application: com.adobe.Photoshop
//	  script_timeout: 2m
//	  allow_scripts: false
//	env:
//	  TESSDATA_PREFIX: /usr/share/tesseract-ocr/5/tessdata
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backends.
const (
	BackendBridge  = "bridge"
	BackendOffline = "offline"
)

// Log formats.
const (
	FormatTerminal = "terminal"
	FormatJSON     = "json"
)

// Environment variable names.
const (
	EnvConfig        = "PHOTOSHOP_MCP_CONFIG"
	EnvBackend       = "PHOTOSHOP_MCP_BACKEND"
	EnvLogLevel      = "PHOTOSHOP_MCP_LOG_LEVEL"
	EnvLogFormat     = "PHOTOSHOP_MCP_LOG_FORMAT"
	EnvToolPrefix    = "PHOTOSHOP_MCP_TOOL_PREFIX"
	EnvApplication   = "PHOTOSHOP_MCP_APPLICATION"
	EnvScriptHost    = "PHOTOSHOP_MCP_SCRIPT_HOST"
	EnvScriptTimeout = "PHOTOSHOP_MCP_SCRIPT_TIMEOUT"
	EnvAllowScripts  = "PHOTOSHOP_MCP_ALLOW_SCRIPTS"
)

// DefaultToolPrefix is prepended to every tool name.
const DefaultToolPrefix = "photoshop_"

// Config holds the resolved server settings.
type Config struct {
	// Backend selects the Photoshop adapter: "bridge" drives a running
	// Photoshop, "offline" uses the in-process raster session.
	Backend string `yaml:"backend"`

	// ToolPrefix is prepended to every registered tool name.
	ToolPrefix *string `yaml:"tool_prefix"`

	Log       Log               `yaml:"log"`
	Photoshop Photoshop         `yaml:"photoshop"`
	Env       map[string]string `yaml:"env"`
}

// Log configures the clue logger.
type Log struct {
	Level  string `yaml:"level"`  // "info" or "debug"
	Format string `yaml:"format"` // "terminal" or "json"
}

// Photoshop configures the bridge backend.
type Photoshop struct {
	// Application is the macOS bundle id or Windows COM ProgID.
	Application string `yaml:"application"`

	// ScriptHost overrides the OS default ("osascript" or "cscript").
	ScriptHost string `yaml:"script_host"`

	// ScriptTimeout bounds every script run. Zero disables the limit.
	ScriptTimeout time.Duration `yaml:"script_timeout"`

	// AllowScripts registers the run_script tool.
	AllowScripts bool `yaml:"allow_scripts"`
}

// Default returns the built-in settings.
func Default() *Config {
	prefix := DefaultToolPrefix
	return &Config{
		Backend:    BackendBridge,
		ToolPrefix: &prefix,
		Log:        Log{Level: "info", Format: FormatTerminal},
	}
}

// Prefix returns the tool name prefix.
func (c *Config) Prefix() string {
	if c.ToolPrefix == nil {
		return DefaultToolPrefix
	}
	return *c.ToolPrefix
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.Log.Level, "debug")
}

// Load resolves defaults, the config file at path (or $PHOTOSHOP_MCP_CONFIG
// when path is empty) and the environment. A missing explicit file is an
// error; no file at all is fine.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	for k, v := range c.Env {
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("failed to export %s: %w", k, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvBackend); ok {
		c.Backend = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok {
		c.Log.Format = v
	}
	if v, ok := os.LookupEnv(EnvToolPrefix); ok {
		c.ToolPrefix = &v
	}
	if v, ok := os.LookupEnv(EnvApplication); ok {
		c.Photoshop.Application = v
	}
	if v, ok := os.LookupEnv(EnvScriptHost); ok {
		c.Photoshop.ScriptHost = v
	}
	if v, ok := os.LookupEnv(EnvScriptTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvScriptTimeout, err)
		}
		c.Photoshop.ScriptTimeout = d
	}
	if v, ok := os.LookupEnv(EnvAllowScripts); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAllowScripts, err)
		}
		c.Photoshop.AllowScripts = b
	}
	return nil
}

// Validate checks the resolved settings.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendBridge, BackendOffline:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendBridge, BackendOffline)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "info", "debug":
	default:
		return fmt.Errorf("unknown log level %q (want info or debug)", c.Log.Level)
	}
	switch c.Log.Format {
	case "", FormatTerminal, FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q (want %s or %s)", c.Log.Format, FormatTerminal, FormatJSON)
	}
	switch c.Photoshop.ScriptHost {
	case "", "osascript", "cscript":
	default:
		return fmt.Errorf("unknown script host %q (want osascript or cscript)", c.Photoshop.ScriptHost)
	}
	if c.Photoshop.ScriptTimeout < 0 {
		return fmt.Errorf("script timeout must not be negative")
	}
	return nil
}
