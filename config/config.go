// Package config loads the TOML configuration of a range server and of the
// range downloader.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

const (
	DefaultDownloadConcurrency       = 48
	DefaultDownloadChunkSize   int64 = 64 * 1024
)

// A Config represents the on-disk configuration.
type Config struct {
	Server   Server   `toml:"server"`
	Download Download `toml:"download"`
}

// Server configures the range serving handler.
type Server struct {
	// Root is the directory files are served from.
	Root string `toml:"root"`

	// ChunkSize caps the length of a single partial response, 0 means no cap.
	ChunkSize int64 `toml:"chunk_size"`

	// DisableRanges makes the server ignore Range headers and stop advertising Accept-Ranges.
	DisableRanges bool `toml:"disable_ranges"`
}

// Download configures the concurrent range downloader.
type Download struct {
	Concurrency int   `toml:"concurrency"`
	ChunkSize   int64 `toml:"chunk_size"`
}

// Default returns the configuration used when nothing is configured.
func Default() Config {
	return Config{
		Server: Server{Root: "."},
		Download: Download{
			Concurrency: DefaultDownloadConcurrency,
			ChunkSize:   DefaultDownloadChunkSize,
		},
	}
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open configuration file")
	}
	defer file.Close()

	return Decode(file)
}

// Decode reads a TOML configuration, unset values take their defaults.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config
	if err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode TOML config")
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.Root == "" {
		c.Server.Root = def.Server.Root
	}
	if c.Download.Concurrency == 0 {
		c.Download.Concurrency = def.Download.Concurrency
	}
	if c.Download.ChunkSize == 0 {
		c.Download.ChunkSize = def.Download.ChunkSize
	}
}

// Validate returns an error describing the first invalid value.
func (c *Config) Validate() error {
	if c.Server.ChunkSize < 0 {
		return fmt.Errorf("server chunk_size must not be negative, got %d", c.Server.ChunkSize)
	}
	if c.Download.Concurrency < 1 || c.Download.Concurrency > 1024 {
		return fmt.Errorf("download concurrency must be between 1 and 1024, got %d", c.Download.Concurrency)
	}
	if c.Download.ChunkSize < 1 {
		return fmt.Errorf("download chunk_size must be at least 1, got %d", c.Download.ChunkSize)
	}
	return nil
}
