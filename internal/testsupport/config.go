package testsupport

import (
	"path/filepath"
	"testing"

	"scribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Summarizer.APIKey = "test"
	cfg.OutputDir = filepath.Join(base, "output")
	cfg.TempDir = filepath.Join(base, "temp")
	cfg.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithStyle sets the default summary style on the test config.
func WithStyle(style string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Summarizer.Style = style
	}
}
