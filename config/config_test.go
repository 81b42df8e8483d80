package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	type test struct {
		name     string
		input    string
		expected Config
	}

	tests := []*test{
		{
			name:     "Empty",
			expected: Default(),
		},
		{
			name: "Server",
			input: `
[server]
root = "/srv/media"
chunk_size = 1048576
disable_ranges = true
`,
			expected: Config{
				Server: Server{Root: "/srv/media", ChunkSize: 1048576, DisableRanges: true},
				Download: Download{
					Concurrency: DefaultDownloadConcurrency,
					ChunkSize:   DefaultDownloadChunkSize,
				},
			},
		},
		{
			name: "Download",
			input: `
[download]
concurrency = 4
chunk_size = 4096
`,
			expected: Config{
				Server:   Server{Root: "."},
				Download: Download{Concurrency: 4, ChunkSize: 4096},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := Decode(strings.NewReader(test.input))
			require.NoError(t, err)
			require.Equal(t, test.expected, *cfg)
		})
	}
}

func TestDecodeInvalid(t *testing.T) {
	type test struct {
		name  string
		input string
	}

	tests := []*test{
		{name: "Syntax", input: "[server"},
		{name: "NegativeChunk", input: "[server]\nchunk_size = -1\n"},
		{name: "NegativeConcurrency", input: "[download]\nconcurrency = -4\n"},
		{name: "TooManyWorkers", input: "[download]\nconcurrency = 5000\n"},
		{name: "NegativeDownloadChunk", input: "[download]\nchunk_size = -1\n"},
		{name: "WrongType", input: "[server]\nchunk_size = \"big\"\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(test.input))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "byterange.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nroot = \"/data\"\nchunk_size = 512\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/data", cfg.Server.Root)
	require.Equal(t, int64(512), cfg.Server.ChunkSize)
	require.False(t, cfg.Server.DisableRanges)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}
