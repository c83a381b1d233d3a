// Package config resolves soapbridge settings from profile defaults, an
// optional YAML file and the environment, in that order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

const (
	TransportStdio = "stdio"
	TransportTCP   = "tcp"
)

// Config is the effective runtime configuration.
type Config struct {
	Profile       string       `yaml:"profile"`
	HostID        string       `yaml:"host_id,omitempty"`
	Transport     string       `yaml:"transport"`
	MCPListen     string       `yaml:"mcp_listen,omitempty"`
	HTTPListen    string       `yaml:"http_listen,omitempty"`
	LogLevel      string       `yaml:"log_level"`
	ToolAllowlist []string     `yaml:"tool_allowlist,omitempty"`
	JWTSecret     string       `yaml:"jwt_secret,omitempty"`
	DatabaseURL   string       `yaml:"database_url,omitempty"`
	Runner        RunnerConfig `yaml:"runner,omitempty"`

	// RedactPatterns are extra regular expressions masked in tool output,
	// logs and the audit trail. Set in the config file only.
	RedactPatterns []string `yaml:"redact_patterns,omitempty"`

	requireAuth bool
}

// RunnerConfig names the executables rendered into execute_test_suite output.
type RunnerConfig struct {
	TestRunnerPath string `yaml:"testrunner_path,omitempty"`
	GUIPath        string `yaml:"gui_path,omitempty"`
}

const (
	defaultMCPListen      = "127.0.0.1:8090"
	defaultTestRunnerPath = "testrunner.sh"
	defaultGUIPath        = "soapui.sh"
)

// Default returns the configuration of the named profile with no file or
// environment applied.
func Default(profile string) (*Config, error) {
	p, err := LoadProfile(profile)
	if err != nil {
		return nil, err
	}
	return &Config{
		Profile:    p.Name,
		Transport:  p.Transport,
		MCPListen:  defaultMCPListen,
		HTTPListen: p.HTTPListen,
		LogLevel:   p.LogLevel,
		Runner: RunnerConfig{
			TestRunnerPath: defaultTestRunnerPath,
			GUIPath:        defaultGUIPath,
		},
		requireAuth: p.RequireAuth,
	}, nil
}

// Validate checks that a Config has consistent values.
func Validate(cfg *Config) error {
	switch cfg.Transport {
	case TransportStdio:
	case TransportTCP:
		if strings.TrimSpace(cfg.MCPListen) == "" {
			return fmt.Errorf("transport %q requires mcp_listen", cfg.Transport)
		}
	default:
		return fmt.Errorf("transport must be %q or %q, got %q", TransportStdio, TransportTCP, cfg.Transport)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.requireAuth && cfg.HTTPListen != "" && cfg.JWTSecret == "" {
		return fmt.Errorf("profile %q requires SOAPBRIDGE_JWT_SECRET when the HTTP API is enabled", cfg.Profile)
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 16 {
		return fmt.Errorf("jwt secret must be at least 16 bytes")
	}
	if strings.TrimSpace(cfg.Runner.TestRunnerPath) == "" {
		return fmt.Errorf("missing required field: runner.testrunner_path")
	}
	if strings.TrimSpace(cfg.Runner.GUIPath) == "" {
		return fmt.Errorf("missing required field: runner.gui_path")
	}
	for i, p := range cfg.RedactPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("redact_patterns[%d]: %w", i, err)
		}
	}
	return nil
}

// ParseLevel maps a config log level onto slog.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", s)
	}
}

// ToolAllowlistCSV renders the allowlist in the env var format core.NewPolicy
// consumes.
func (c *Config) ToolAllowlistCSV() string {
	return strings.Join(c.ToolAllowlist, ",")
}

// LogValue keeps secrets out of the effective-config log line.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("profile", c.Profile),
		slog.String("host_id", c.HostID),
		slog.String("transport", c.Transport),
		slog.String("mcp_listen", c.MCPListen),
		slog.String("http_listen", c.HTTPListen),
		slog.String("log_level", c.LogLevel),
		slog.Any("tool_allowlist", c.ToolAllowlist),
		slog.Bool("jwt_auth", c.JWTSecret != ""),
		slog.Bool("audit", c.DatabaseURL != ""),
	)
}
