package config

// Config is the root configuration for driftchat.
type Config struct {
	Server  ServerConfig  `yaml:"server,omitempty"`
	Network NetworkConfig `yaml:"network,omitempty"`
	Storage StorageConfig `yaml:"storage,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// ServerConfig points the client at a chat backend.
type ServerConfig struct {
	URL    string `yaml:"url"`              // ws:// or wss:// endpoint
	User   string `yaml:"user,omitempty"`   // user identity presented to the backend
	APIKey string `yaml:"apiKey,omitempty"` // supports ${ENV_VAR} references
}

// NetworkConfig controls the reachability prober.
type NetworkConfig struct {
	ProbeAddr       string `yaml:"probeAddr,omitempty"`       // host:port dialed to verify reachability
	ProbeIntervalMS int    `yaml:"probeIntervalMs,omitempty"` // time between background probes
	ProbeTimeoutMS  int    `yaml:"probeTimeoutMs,omitempty"`  // per-probe dial timeout
}

// StorageConfig controls the offline cache.
type StorageConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"` // default ~/.driftchat/data/cache.db
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
}
