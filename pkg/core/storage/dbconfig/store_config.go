/*
Package dbconfig is a micropackage that contains storage DB configuration options.
*/
package dbconfig

// Supported DB types.
const (
	BoltDB     = "boltdb"
	InMemoryDB = "inmemory"
	LevelDB    = "leveldb"
)

// DefaultBloomFilterBits is the number of bloom filter bits per key used by
// LevelDB when nothing is configured.
const DefaultBloomFilterBits = 10

type (
	// DBConfiguration describes the node store. Supported types are
	// [LevelDB], [BoltDB] and [InMemoryDB], the last one loses everything
	// on exit.
	DBConfiguration struct {
		Type           string         `yaml:"Type"`
		LevelDBOptions LevelDBOptions `yaml:"LevelDBOptions"`
		BoltDBOptions  BoltDBOptions  `yaml:"BoltDBOptions"`
		// Compress enables lz4 compression of stored values.
		Compress bool `yaml:"Compress"`
	}
	// LevelDBOptions configuration for LevelDB.
	LevelDBOptions struct {
		DataDirectoryPath string `yaml:"DataDirectoryPath"`
		ReadOnly          bool   `yaml:"ReadOnly"`
		// BloomFilterBits is the number of bloom filter bits per key,
		// DefaultBloomFilterBits is used if zero, negative disables the
		// filter. Node lookups are point reads, so the filter saves disk
		// reads for missing nodes.
		BloomFilterBits int `yaml:"BloomFilterBits"`
		// Sync makes every change set write wait for fsync.
		Sync bool `yaml:"Sync"`
	}
	// BoltDBOptions configuration for BoltDB.
	BoltDBOptions struct {
		FilePath string `yaml:"FilePath"`
		ReadOnly bool   `yaml:"ReadOnly"`
	}
)
