// Package config loads, validates, and resolves driftchat configuration.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			User: "anonymous",
		},
		Network: NetworkConfig{
			ProbeAddr:       "1.1.1.1:443",
			ProbeIntervalMS: 5000,
			ProbeTimeoutMS:  2000,
		},
		Storage: StorageConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
