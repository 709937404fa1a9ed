package pacx

import (
	"log/slog"
	"strings"

	"github.com/meigma/pacx/internal/split"
)

const (
	// DefaultSplitThreshold is the payload size at which a split is closed.
	DefaultSplitThreshold = split.DefaultThreshold

	// DefaultCompressThreshold is the smallest sub-archive Deflate is
	// attempted on.
	DefaultCompressThreshold = 0x19000

	// DefaultCompression is used when no SaveWithCompression option is set.
	DefaultCompression = CompressionLz4

	defaultShortName = "archive"
)

// saveConfig holds configuration for Encode and Save.
type saveConfig struct {
	dependencies      []string
	dependenciesSet   bool
	compression       Compression
	splitThreshold    uint64
	compressThreshold uint64
	name              string
	bigEndian         bool
	ids               IDSource
	logger            *slog.Logger
	progress          ProgressFunc
	overwrite         bool
}

// SaveOption configures Encode and Save.
type SaveOption func(*saveConfig)

func newSaveConfig(opts []SaveOption) *saveConfig {
	cfg := &saveConfig{
		compression:       DefaultCompression,
		splitThreshold:    DefaultSplitThreshold,
		compressThreshold: DefaultCompressThreshold,
		ids:               globalRand{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *saveConfig) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// shortName is the companion-name stem: the configured name up to its first '.'.
func (c *saveConfig) shortName() string {
	name := c.name
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return defaultShortName
	}
	return name
}

// SaveWithDependencies sets the archive names recorded in the dependency
// table, replacing Archive.Dependencies.
func SaveWithDependencies(deps ...string) SaveOption {
	return func(cfg *saveConfig) {
		cfg.dependencies = deps
		cfg.dependenciesSet = true
	}
}

// SaveWithCompression sets the sub-archive compression (default: LZ4).
func SaveWithCompression(c Compression) SaveOption {
	return func(cfg *saveConfig) {
		cfg.compression = c
	}
}

// SaveWithSplitThreshold sets the payload size at which a split is closed.
// Zero disables splitting.
func SaveWithSplitThreshold(n uint64) SaveOption {
	return func(cfg *saveConfig) {
		cfg.splitThreshold = n
	}
}

// SaveWithCompressThreshold sets the smallest sub-archive length Deflate is
// attempted on. It has no effect on LZ4, which always compresses.
func SaveWithCompressThreshold(n uint64) SaveOption {
	return func(cfg *saveConfig) {
		cfg.compressThreshold = n
	}
}

// SaveWithName sets the file name split names are derived from. Save
// defaults to the destination's base name; Encode defaults to "archive".
func SaveWithName(name string) SaveOption {
	return func(cfg *saveConfig) {
		cfg.name = name
	}
}

// SaveWithBigEndian writes the archive in big-endian byte order.
func SaveWithBigEndian(enabled bool) SaveOption {
	return func(cfg *saveConfig) {
		cfg.bigEndian = enabled
	}
}

// SaveWithIDSource sets the source of container and sub-archive identifiers.
// A nil source restores the default.
func SaveWithIDSource(src IDSource) SaveOption {
	return func(cfg *saveConfig) {
		if src == nil {
			src = globalRand{}
		}
		cfg.ids = src
	}
}

// SaveWithLogger sets the logger for save operations.
func SaveWithLogger(logger *slog.Logger) SaveOption {
	return func(cfg *saveConfig) {
		cfg.logger = logger
	}
}

// SaveWithProgress sets a callback to receive progress updates.
func SaveWithProgress(fn ProgressFunc) SaveOption {
	return func(cfg *saveConfig) {
		cfg.progress = fn
	}
}

// SaveWithOverwrite allows Save to replace an existing file.
// When false (the default), Save returns ErrAlreadyExists before writing.
func SaveWithOverwrite(enabled bool) SaveOption {
	return func(cfg *saveConfig) {
		cfg.overwrite = enabled
	}
}
