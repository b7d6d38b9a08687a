package config

import (
	"fmt"

	"github.com/nspcc-dev/neo-mpt/pkg/core/storage/dbconfig"
	"go.uber.org/zap/zapcore"
)

// ApplicationConfiguration config specific to the tool.
type ApplicationConfiguration struct {
	LogLevel        string                   `yaml:"LogLevel"`
	LogPath         string                   `yaml:"LogPath"`
	DBConfiguration dbconfig.DBConfiguration `yaml:"DBConfiguration"`
	Prometheus      BasicService             `yaml:"Prometheus"`
	Pprof           BasicService             `yaml:"Pprof"`
	Trie            TrieConfiguration        `yaml:"Trie"`
}

// Validate checks ApplicationConfiguration for internal consistency and returns
// an error if any invalid settings are found.
func (a *ApplicationConfiguration) Validate() error {
	if a.LogLevel != "" {
		if _, err := zapcore.ParseLevel(a.LogLevel); err != nil {
			return fmt.Errorf("invalid LogLevel: %w", err)
		}
	}
	switch a.DBConfiguration.Type {
	case dbconfig.BoltDB, dbconfig.LevelDB, dbconfig.InMemoryDB:
	default:
		return fmt.Errorf("unknown DB type: %q", a.DBConfiguration.Type)
	}
	if a.Prometheus.Enabled && len(a.Prometheus.Addresses) == 0 {
		return fmt.Errorf("no addresses for enabled Prometheus service")
	}
	if a.Pprof.Enabled && len(a.Pprof.Addresses) == 0 {
		return fmt.Errorf("no addresses for enabled Pprof service")
	}
	return a.Trie.Validate()
}
