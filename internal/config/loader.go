package config

import (
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// Load reads the config file at path, layered over Defaults. A missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)

	// credentials may be stored as ${ENV_VAR} references
	cfg.Server.APIKey = expandEnvVars(cfg.Server.APIKey)
	return cfg, nil
}

// Save writes cfg to a YAML config file.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Server.User == "" {
		cfg.Server.User = def.Server.User
	}
	if cfg.Network.ProbeAddr == "" {
		cfg.Network.ProbeAddr = def.Network.ProbeAddr
	}
	if cfg.Network.ProbeIntervalMS == 0 {
		cfg.Network.ProbeIntervalMS = def.Network.ProbeIntervalMS
	}
	if cfg.Network.ProbeTimeoutMS == 0 {
		cfg.Network.ProbeTimeoutMS = def.Network.ProbeTimeoutMS
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}
