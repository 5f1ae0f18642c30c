// Package config handles application configuration using Viper.
// Viper supports YAML files, environment variables, and defaults — merged in priority order.
// Go convention: configuration is loaded into structs, not accessed as raw key-value pairs.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override: STICKER_SERVER_PORT=9090.
const EnvPrefix = "STICKER"

// ConfigPathEnv names a YAML file to load when no path is passed explicitly.
const ConfigPathEnv = "STICKER_CONFIG_PATH"

// Config is the root configuration struct. Nested structs organize related settings.
// `mapstructure` tags tell Viper how to map YAML/env keys to struct fields.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Auth         AuthConfig         `mapstructure:"auth"`
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Log          LogConfig          `mapstructure:"log"`
	Sticker      StickerConfig      `mapstructure:"sticker"`
	Transcoder   TranscoderConfig   `mapstructure:"transcoder"`
	Capabilities CapabilitiesConfig `mapstructure:"capabilities"`
	Quote        QuoteConfig        `mapstructure:"quote"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	ScratchDir   string `mapstructure:"scratch_dir"`
}

type AuthConfig struct {
	APIKeys   []string `mapstructure:"api_keys"`
	AdminKeys []string `mapstructure:"admin_keys"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// StickerConfig controls the static output and upload limits.
// MaxPixels caps width×height of decoded raster input.
type StickerConfig struct {
	CanvasSize  int   `mapstructure:"canvas_size"`
	Quality     int   `mapstructure:"quality"`
	MaxUploadMB int   `mapstructure:"max_upload_mb"`
	MaxPixels   int64 `mapstructure:"max_pixels"`
}

// MaxUploadBytes converts MaxUploadMB to bytes.
func (s StickerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// TranscoderConfig controls the ffmpeg-backed animated output.
// FFmpegBin may be empty: PATH is searched.
type TranscoderConfig struct {
	FFmpegBin  string        `mapstructure:"ffmpeg_bin"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxSeconds int           `mapstructure:"max_seconds"`
	MaxSide    int           `mapstructure:"max_side"`
	FPS        int           `mapstructure:"fps"`
	Bitrate    string        `mapstructure:"bitrate"`
	Workers    int           `mapstructure:"workers"`
}

// CapabilitiesConfig switches optional input kinds on or off.
type CapabilitiesConfig struct {
	Vector bool `mapstructure:"vector"`
	Video  bool `mapstructure:"video"`
}

type QuoteConfig struct {
	FontPath     string `mapstructure:"font_path"`
	BoldFontPath string `mapstructure:"bold_font_path"`
	Theme        string `mapstructure:"theme"`
}

// Load reads configuration from a YAML file and environment variables.
// An empty configPath falls back to $STICKER_CONFIG_PATH, then to
// ./config.yaml or ./config/config.yaml if present.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults — these apply when neither file nor env provides a value
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.database_path", "./storage/sticker-service.db")
	v.SetDefault("storage.scratch_dir", "./storage/scratch")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("rate_limit.requests_per_second", 5)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("sticker.canvas_size", 512)
	v.SetDefault("sticker.quality", 95)
	v.SetDefault("sticker.max_upload_mb", 20)
	v.SetDefault("sticker.max_pixels", 8192*8192)
	v.SetDefault("transcoder.ffmpeg_bin", "")
	v.SetDefault("transcoder.timeout", 60*time.Second)
	v.SetDefault("transcoder.max_seconds", 3)
	v.SetDefault("transcoder.max_side", 512)
	v.SetDefault("transcoder.fps", 30)
	v.SetDefault("transcoder.bitrate", "300k")
	v.SetDefault("transcoder.workers", 4)
	v.SetDefault("capabilities.vector", true)
	v.SetDefault("capabilities.video", true)
	v.SetDefault("quote.font_path", "")
	v.SetDefault("quote.bold_font_path", "")
	v.SetDefault("quote.theme", "dark")

	if configPath == "" {
		configPath = os.Getenv(ConfigPathEnv)
	}

	// Read from YAML config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Read config file (ignore "not found" — defaults + env are enough)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables override everything.
	// STICKER_ prefix + nested keys: STICKER_TRANSCODER_FPS=15 → transcoder.fps=15
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal into our Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values that would make the pipeline misbehave.
func (c *Config) Validate() error {
	switch {
	case c.Sticker.CanvasSize <= 0:
		return fmt.Errorf("sticker.canvas_size must be positive, got %d", c.Sticker.CanvasSize)
	case c.Sticker.Quality < 1 || c.Sticker.Quality > 100:
		return fmt.Errorf("sticker.quality must be within 1..100, got %d", c.Sticker.Quality)
	case c.Sticker.MaxUploadMB <= 0:
		return fmt.Errorf("sticker.max_upload_mb must be positive, got %d", c.Sticker.MaxUploadMB)
	case c.Sticker.MaxPixels <= 0:
		return fmt.Errorf("sticker.max_pixels must be positive, got %d", c.Sticker.MaxPixels)
	case c.Transcoder.Timeout <= 0:
		return fmt.Errorf("transcoder.timeout must be positive, got %s", c.Transcoder.Timeout)
	case c.Transcoder.Workers <= 0:
		return fmt.Errorf("transcoder.workers must be positive, got %d", c.Transcoder.Workers)
	}
	return nil
}

// Address returns the listen address string like "0.0.0.0:8080".
// This is a method on ServerConfig — Go attaches methods to types via receiver syntax.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
