package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".driftchat"

// Paths holds resolved filesystem paths for driftchat data.
type Paths struct {
	Base   string // ~/.driftchat
	Config string // ~/.driftchat/config.yaml
	Data   string // ~/.driftchat/data
	Logs   string // ~/.driftchat/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If DRIFTCHAT_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("DRIFTCHAT_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		Data:   filepath.Join(base, "data"),
		Logs:   filepath.Join(base, "logs"),
	}, nil
}

// EnsureBase creates the base and data directories if they do not exist.
func (p Paths) EnsureBase() error {
	for _, dir := range []string{p.Base, p.Data} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return nil
}
