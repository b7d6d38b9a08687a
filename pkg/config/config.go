package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nspcc-dev/neo-mpt/pkg/core/storage/dbconfig"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the default path to the config file.
const DefaultConfigPath = "./config/mpt.yml"

// Version is the version of the tool. Release builds override it with
// -ldflags "-X github.com/nspcc-dev/neo-mpt/pkg/config.Version=...".
var Version = "dev"

// Config is the top level struct representing the config of the tool.
type Config struct {
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// Default returns the configuration used when there is no config file: an
// in-memory store and the default trie parameters.
func Default() Config {
	return Config{
		ApplicationConfiguration: ApplicationConfiguration{
			DBConfiguration: dbconfig.DBConfiguration{
				Type: dbconfig.InMemoryDB,
			},
			Trie: TrieConfiguration{
				CacheSize: DefaultCacheSize,
			},
		},
	}
}

// LoadFile loads config from the provided path. Unknown fields are not
// allowed.
func LoadFile(configPath string) (Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	return Load(configData)
}

// Load parses the config from YAML data applying defaults for the fields not
// set.
func Load(configData []byte) (Config, error) {
	config := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(configData))
	decoder.KnownFields(true)
	err := decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	err = config.ApplicationConfiguration.Validate()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}
