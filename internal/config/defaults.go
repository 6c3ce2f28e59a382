package config

const (
	defaultConfigPath      = "~/.config/spritedeck/config.toml"
	projectConfigName      = "spritedeck.toml"
	defaultStateDir        = "~/.local/share/spritedeck"
	defaultLogDir          = "~/.local/share/spritedeck/logs"
	defaultThumbnailSubdir = "blocks"
	defaultWorkers         = 1
	defaultCompression     = CompressionDefault
	defaultCacheEntries    = 256
	defaultDebounceMS      = 500
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"

	// EnvSourceRoot overrides paths.source_root when the file leaves it blank.
	EnvSourceRoot = "SPRITEDECK_SOURCE_ROOT"
	// EnvDocument overrides paths.document when the file leaves it blank.
	EnvDocument = "SPRITEDECK_DOCUMENT"
)

// PNG compression levels accepted by thumbnails.compression.
const (
	CompressionDefault = "default"
	CompressionNone    = "none"
	CompressionSpeed   = "best-speed"
	CompressionBest    = "best-compression"
)

// DefaultThumbnailSizes are the pixel edge lengths generated for every record.
var DefaultThumbnailSizes = []int{32, 64, 128, 256}

// Default returns a Config populated with repository defaults.
func Default() Config {
	sizes := make([]int, len(DefaultThumbnailSizes))
	copy(sizes, DefaultThumbnailSizes)
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Thumbnails: Thumbnails{
			Sizes:       sizes,
			Workers:     defaultWorkers,
			Compression: defaultCompression,
		},
		Preview: Preview{
			CacheEntries: defaultCacheEntries,
		},
		Watch: Watch{
			DebounceMS: defaultDebounceMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
