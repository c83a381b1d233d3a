package config

import (
	"fmt"
	"strings"
)

// ProfileDefaults holds environment-specific default configuration values.
// Profiles provide defaults only; the config file and env vars override.
type ProfileDefaults struct {
	Name       string
	LogLevel   string
	Transport  string
	HTTPListen string

	// RequireAuth makes an empty JWT secret a validation error whenever the
	// HTTP API is enabled.
	RequireAuth bool
}

var profiles = map[string]*ProfileDefaults{
	"dev": {
		Name:       "dev",
		LogLevel:   "debug",
		Transport:  TransportStdio,
		HTTPListen: "127.0.0.1:8080",
	},
	"staging": {
		Name:       "staging",
		LogLevel:   "info",
		Transport:  TransportStdio,
		HTTPListen: "",
	},
	"prod": {
		Name:        "prod",
		LogLevel:    "warn",
		Transport:   TransportStdio,
		HTTPListen:  "",
		RequireAuth: true,
	},
}

// LoadProfile returns profile defaults for the given name.
// Empty name defaults to "dev". Unknown names return an error.
func LoadProfile(name string) (*ProfileDefaults, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		name = "dev"
	}
	p, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (valid: dev, staging, prod)", name)
	}
	copy := *p
	return &copy, nil
}
