package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Server validation
	if cfg.Server.URL == "" {
		issues = append(issues, ValidationIssue{
			Path:    "server.url",
			Message: "url is required",
		})
	} else if u, err := url.Parse(cfg.Server.URL); err != nil {
		issues = append(issues, ValidationIssue{
			Path:    "server.url",
			Message: fmt.Sprintf("invalid url: %v", err),
		})
	} else if u.Scheme != "ws" && u.Scheme != "wss" {
		issues = append(issues, ValidationIssue{
			Path:    "server.url",
			Message: fmt.Sprintf("scheme must be ws or wss, got %q", u.Scheme),
		})
	}

	// Network validation
	if cfg.Network.ProbeAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.Network.ProbeAddr); err != nil {
			issues = append(issues, ValidationIssue{
				Path:    "network.probeAddr",
				Message: fmt.Sprintf("must be host:port, got %q", cfg.Network.ProbeAddr),
			})
		}
	}
	if cfg.Network.ProbeIntervalMS < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "network.probeIntervalMs",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Network.ProbeIntervalMS),
		})
	}
	if cfg.Network.ProbeTimeoutMS < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "network.probeTimeoutMs",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Network.ProbeTimeoutMS),
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	return issues
}
