package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"spritedeck/internal/config"
	"spritedeck/internal/document"
	"spritedeck/internal/faults"
	"spritedeck/internal/logging"
	"spritedeck/internal/settings"
	"spritedeck/internal/textutil"
	"spritedeck/internal/thumbnail"
)

type globalFlags struct {
	config   string
	document string
	root     string
	logLevel string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	settings *settings.Store
	metrics  *thumbnail.Metrics
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if level := strings.TrimSpace(c.flags.logLevel); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// log returns the process logger, falling back to a no-op logger when the
// configured sinks cannot be opened.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

// settingsStore opens the settings database on first use. close releases it.
func (c *commandContext) settingsStore() (*settings.Store, error) {
	if c.settings != nil {
		return c.settings, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := settings.Open(cfg.SettingsPath())
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "cli", "open settings", cfg.SettingsPath(), err)
	}
	c.settings = store
	return store, nil
}

func (c *commandContext) close() error {
	if c.settings == nil {
		return nil
	}
	err := c.settings.Close()
	c.settings = nil
	return err
}

// remembered reads a settings key, treating an unreadable store as unset.
func (c *commandContext) remembered(ctx context.Context, key string) string {
	store, err := c.settingsStore()
	if err != nil {
		c.log().Debug("settings unavailable", logging.Error(err))
		return ""
	}
	value, _, err := store.Get(ctx, key)
	if err != nil {
		c.log().Debug("settings read failed", logging.String("key", key), logging.Error(err))
		return ""
	}
	return value
}

func (c *commandContext) remember(ctx context.Context, key, value string) error {
	store, err := c.settingsStore()
	if err != nil {
		return err
	}
	return store.Set(ctx, key, value)
}

// documentPath resolves the catalog: --document, then paths.document, then the
// last opened file.
func (c *commandContext) documentPath(ctx context.Context) (string, error) {
	if path, err := expandFlag(c.flags.document); err != nil || path != "" {
		return path, err
	}
	if cfg := c.configValue(); cfg != nil && cfg.Paths.Document != "" {
		return cfg.Paths.Document, nil
	}
	if path := c.remembered(ctx, settings.KeyLastFile); path != "" {
		return path, nil
	}
	return "", faults.Wrap(faults.ErrConfiguration, "cli", "resolve document",
		"no catalog document; pass --document, set paths.document, or run 'spritedeck open <file>'", nil)
}

// sourceRoot resolves the image root: --root, then paths.source_root, then the
// remembered root. An empty result is allowed.
func (c *commandContext) sourceRoot(ctx context.Context) (string, error) {
	if root, err := expandFlag(c.flags.root); err != nil || root != "" {
		return root, err
	}
	if cfg := c.configValue(); cfg != nil && cfg.Paths.SourceRoot != "" {
		return cfg.Paths.SourceRoot, nil
	}
	return c.remembered(ctx, settings.KeySourceRoot), nil
}

func (c *commandContext) thumbnailMetrics() *thumbnail.Metrics {
	if c.metrics == nil {
		c.metrics = thumbnail.NewMetrics()
	}
	return c.metrics
}

func (c *commandContext) documentOptions(ctx context.Context) (document.Options, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return document.Options{}, err
	}
	root, err := c.sourceRoot(ctx)
	if err != nil {
		return document.Options{}, err
	}
	compression, err := thumbnail.ParseCompression(cfg.Thumbnails.Compression)
	if err != nil {
		return document.Options{}, faults.Wrap(faults.ErrConfiguration, "cli", "thumbnails", "compression", err)
	}
	return document.Options{
		SourceRoot:     root,
		ThumbnailRoot:  cfg.Paths.ThumbnailRoot,
		Sizes:          cfg.Thumbnails.Sizes,
		Compression:    compression,
		PreviewEntries: cfg.Preview.CacheEntries,
		Backup:         true,
		Logger:         c.log(),
		Metrics:        c.thumbnailMetrics(),
	}, nil
}

// openDocument loads the resolved catalog.
func (c *commandContext) openDocument(ctx context.Context) (*document.Document, error) {
	path, err := c.documentPath(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := c.documentOptions(ctx)
	if err != nil {
		return nil, err
	}
	return document.Open(path, opts)
}

func expandFlag(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	return config.ExpandPath(value)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// exitCode maps error classes onto process exit statuses.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, faults.ErrValidation):
		return 2
	case errors.Is(err, faults.ErrConfiguration):
		return 3
	default:
		return 1
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func yesNo(value bool) string {
	return textutil.Ternary(value, "yes", "no")
}

func describeError(err error) string {
	if kind := faults.Kind(err); kind != "" && kind != "unknown" {
		return fmt.Sprintf("%s (%s)", err, kind)
	}
	return err.Error()
}
