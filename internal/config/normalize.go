package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeThumbnails(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.SourceRoot) == "" {
		if value, ok := os.LookupEnv(EnvSourceRoot); ok {
			c.Paths.SourceRoot = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.Document) == "" {
		if value, ok := os.LookupEnv(EnvDocument); ok {
			c.Paths.Document = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}

	fields := []struct {
		key   string
		value *string
	}{
		{"paths.source_root", &c.Paths.SourceRoot},
		{"paths.document", &c.Paths.Document},
		{"paths.thumbnail_root", &c.Paths.ThumbnailRoot},
		{"paths.state_dir", &c.Paths.StateDir},
		{"paths.log_dir", &c.Paths.LogDir},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeThumbnails() error {
	if len(c.Thumbnails.Sizes) == 0 {
		c.Thumbnails.Sizes = append([]int(nil), DefaultThumbnailSizes...)
	}
	if c.Thumbnails.Workers == 0 {
		c.Thumbnails.Workers = defaultWorkers
	}
	c.Thumbnails.Compression = strings.ToLower(strings.TrimSpace(c.Thumbnails.Compression))
	if c.Thumbnails.Compression == "" {
		c.Thumbnails.Compression = defaultCompression
	}
	var err error
	if c.Thumbnails.MetricsTextfile, err = expandPath(strings.TrimSpace(c.Thumbnails.MetricsTextfile)); err != nil {
		return fmt.Errorf("thumbnails.metrics_textfile: %w", err)
	}
	if c.Preview.CacheEntries == 0 {
		c.Preview.CacheEntries = defaultCacheEntries
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
