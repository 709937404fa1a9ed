package pacx

import "log/slog"

type decodeConfig struct {
	logger   *slog.Logger
	progress ProgressFunc
}

// DecodeOption configures Decode, Load and Inspect.
type DecodeOption func(*decodeConfig)

func newDecodeConfig(opts []DecodeOption) *decodeConfig {
	cfg := &decodeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *decodeConfig) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// DecodeWithLogger sets the logger for decode operations.
func DecodeWithLogger(logger *slog.Logger) DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.logger = logger
	}
}

// DecodeWithProgress sets a callback to receive a StageReading event per
// sub-archive.
func DecodeWithProgress(fn ProgressFunc) DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.progress = fn
	}
}
