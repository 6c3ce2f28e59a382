package testsupport

import (
	"path/filepath"
	"testing"

	"spritedeck/internal/config"
	"spritedeck/internal/settings"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The source root is <base>/sprites and is not created; tests add the
// fixtures they need.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceRoot = filepath.Join(base, "sprites")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:   t,
		cfg: &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSizes overrides the thumbnail sizes.
func WithSizes(sizes ...int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Thumbnails.Sizes = append([]int(nil), sizes...)
	}
}

// WithWorkers overrides the thumbnail batch worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Thumbnails.Workers = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// MustOpenSettings opens the settings store at the config's settings path and
// closes it when the test ends.
func MustOpenSettings(t testing.TB, cfg *config.Config) *settings.Store {
	t.Helper()
	store, err := settings.Open(cfg.SettingsPath())
	if err != nil {
		t.Fatalf("open settings: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
