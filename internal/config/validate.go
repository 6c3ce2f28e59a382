package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateThumbnails(); err != nil {
		return err
	}
	if c.Preview.CacheEntries < 1 {
		return errors.New("preview.cache_entries must be positive")
	}
	if c.Watch.DebounceMS < 0 {
		return errors.New("watch.debounce_ms must be >= 0")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q (want debug, info, warn or error)", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateThumbnails() error {
	seen := make(map[int]struct{}, len(c.Thumbnails.Sizes))
	for _, size := range c.Thumbnails.Sizes {
		if size <= 0 {
			return fmt.Errorf("thumbnails.sizes: %d must be positive", size)
		}
		if _, dup := seen[size]; dup {
			return fmt.Errorf("thumbnails.sizes: %d listed more than once", size)
		}
		seen[size] = struct{}{}
	}
	if c.Thumbnails.Workers < 1 {
		return errors.New("thumbnails.workers must be positive")
	}
	switch c.Thumbnails.Compression {
	case CompressionDefault, CompressionNone, CompressionSpeed, CompressionBest:
	default:
		return fmt.Errorf("thumbnails.compression: unsupported value %q", c.Thumbnails.Compression)
	}
	return nil
}
