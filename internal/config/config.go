package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	YouTube YouTubeConfig `yaml:"youtube" mapstructure:"youtube"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`
	Enrich  EnrichConfig  `yaml:"enrich" mapstructure:"enrich"`
	Labels  LabelsConfig  `yaml:"labels" mapstructure:"labels"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the cache database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// YouTubeConfig holds YouTube Data API settings.
type YouTubeConfig struct {
	APIKey        string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	CacheTTLHours int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	RateQPS       float64 `yaml:"rate_qps" mapstructure:"rate_qps"`
	RateBurst     int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// ServerConfig configures the proxy server.
type ServerConfig struct {
	Port          int    `yaml:"port" mapstructure:"port"`
	ImageCacheDir string `yaml:"image_cache_dir" mapstructure:"image_cache_dir"`
}

// DatasetConfig points at the survey export.
type DatasetConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// EnrichConfig configures subscriber-count enrichment.
type EnrichConfig struct {
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
	ProxyURL    string `yaml:"proxy_url" mapstructure:"proxy_url"`
}

// LabelsConfig points at an optional synonym overlay file.
type LabelsConfig struct {
	OverlayPath string `yaml:"overlay_path" mapstructure:"overlay_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CREATORDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "creatordex.db")
	v.SetDefault("youtube.base_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("youtube.cache_ttl_hours", 24)
	v.SetDefault("youtube.rate_qps", 5)
	v.SetDefault("youtube.rate_burst", 5)
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.image_cache_dir", "cache")
	v.SetDefault("dataset.path", "responses.csv")
	v.SetDefault("enrich.concurrency", 8)
	v.SetDefault("enrich.proxy_url", "http://localhost:3001")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command mode needs before it starts.
func (c *Config) Validate(mode string) error {
	var missing []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
		if c.YouTube.APIKey == "" {
			missing = append(missing, "youtube.api_key is required")
		}
		if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
			missing = append(missing, "store.driver must be sqlite or postgres")
		}
		if c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url is required")
		}
	case "enrich":
		if c.Enrich.ProxyURL == "" {
			missing = append(missing, "enrich.proxy_url is required")
		}
		if c.Enrich.Concurrency < 1 || c.Enrich.Concurrency > 64 {
			missing = append(missing, "enrich.concurrency must be between 1 and 64")
		}
	case "query", "validate":
		if c.Dataset.Path == "" {
			missing = append(missing, "dataset.path is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
