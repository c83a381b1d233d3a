package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load builds the effective config: profile defaults, then the YAML file
// at path (if any), then environment variables.
func Load(path string) (*Config, error) {
	var file Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	profile := file.Profile
	if v := strings.TrimSpace(os.Getenv("SOAPBRIDGE_PROFILE")); v != "" {
		profile = v
	}
	cfg, err := Default(profile)
	if err != nil {
		return nil, err
	}

	overlayFile(cfg, &file)
	overlayEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func overlayFile(cfg, file *Config) {
	setIf(&cfg.HostID, file.HostID)
	setIf(&cfg.Transport, file.Transport)
	setIf(&cfg.MCPListen, file.MCPListen)
	setIf(&cfg.HTTPListen, file.HTTPListen)
	setIf(&cfg.LogLevel, file.LogLevel)
	setIf(&cfg.JWTSecret, file.JWTSecret)
	setIf(&cfg.DatabaseURL, file.DatabaseURL)
	setIf(&cfg.Runner.TestRunnerPath, file.Runner.TestRunnerPath)
	setIf(&cfg.Runner.GUIPath, file.Runner.GUIPath)
	if len(file.ToolAllowlist) > 0 {
		cfg.ToolAllowlist = append([]string(nil), file.ToolAllowlist...)
	}
	cfg.RedactPatterns = append([]string(nil), file.RedactPatterns...)
}

func overlayEnv(cfg *Config) {
	setIf(&cfg.HostID, os.Getenv("SOAPBRIDGE_HOST_ID"))
	setIf(&cfg.Transport, strings.ToLower(os.Getenv("SOAPBRIDGE_TRANSPORT")))
	setIf(&cfg.MCPListen, os.Getenv("SOAPBRIDGE_MCP_LISTEN"))
	setIf(&cfg.LogLevel, os.Getenv("SOAPBRIDGE_LOG_LEVEL"))
	setIf(&cfg.JWTSecret, os.Getenv("SOAPBRIDGE_JWT_SECRET"))
	setIf(&cfg.DatabaseURL, os.Getenv("DATABASE_URL"))
	setIf(&cfg.Runner.TestRunnerPath, os.Getenv("SOAPBRIDGE_TESTRUNNER_PATH"))
	setIf(&cfg.Runner.GUIPath, os.Getenv("SOAPBRIDGE_GUI_PATH"))

	// "off" disables a listener a profile or file turned on.
	if v, ok := os.LookupEnv("SOAPBRIDGE_HTTP_LISTEN"); ok {
		v = strings.TrimSpace(v)
		if strings.EqualFold(v, "off") {
			cfg.HTTPListen = ""
		} else if v != "" {
			cfg.HTTPListen = v
		}
	}
	if raw := os.Getenv("SOAPBRIDGE_TOOL_ALLOWLIST"); strings.TrimSpace(raw) != "" {
		cfg.ToolAllowlist = splitCSV(raw)
	}
}

func setIf(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func splitCSV(raw string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
