package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/zlog"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Conversion ConversionConfig `mapstructure:"conversion"`
	Video      VideoConfig      `mapstructure:"video"`
	Scratch    ScratchConfig    `mapstructure:"scratch"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr               string `mapstructure:"addr"`
	GinMode            string `mapstructure:"gin_mode"`
	StaticDir          string `mapstructure:"static_dir"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec"`
	ReadTimeoutSec     int    `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec    int    `mapstructure:"write_timeout_sec"`
	MaxUploadSizeMB    int    `mapstructure:"max_upload_size_mb"`
}

type ConversionConfig struct {
	TimeoutSec    int `mapstructure:"timeout_sec"`
	MaxConcurrent int `mapstructure:"max_concurrent"`
	JPEGQuality   int `mapstructure:"jpeg_quality"`
}

type VideoConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	FFmpegPath string `mapstructure:"ffmpeg_path"`
}

type ScratchConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

type CORSConfig struct {
	// Comma separated, "*" allows any origin.
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func Load(path string) (*Config, error) {
	cfg := config.New()

	configPath := path
	if configPath == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			configPath = "config.yaml"
		} else if _, err := os.Stat("/app/config.yaml"); err == nil {
			configPath = "/app/config.yaml"
		} else {
			return nil, fmt.Errorf("config.yaml not found")
		}
	}

	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = ""
	}

	if err := cfg.Load(configPath, envPath, "APP"); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	appConfig := &Config{}
	if err := cfg.Unmarshal(appConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(appConfig)

	if err := validateConfig(appConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	zlog.Logger.Info().
		Str("addr", appConfig.Server.Addr).
		Int("max_upload_size_mb", appConfig.Server.MaxUploadSizeMB).
		Int("max_concurrent", appConfig.Conversion.MaxConcurrent).
		Int("timeout_sec", appConfig.Conversion.TimeoutSec).
		Bool("video_enabled", appConfig.Video.Enabled).
		Str("scratch_dir", appConfig.Scratch.BaseDir).
		Msg("Config loaded successfully via wbf")

	return appConfig, nil
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Video.Enabled = true
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5000"
	}
	if cfg.Server.GinMode == "" {
		cfg.Server.GinMode = "release"
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = "./static"
	}
	if cfg.Server.ShutdownTimeoutSec == 0 {
		cfg.Server.ShutdownTimeoutSec = 15
	}
	if cfg.Server.ReadTimeoutSec == 0 {
		cfg.Server.ReadTimeoutSec = 60
	}
	if cfg.Server.WriteTimeoutSec == 0 {
		cfg.Server.WriteTimeoutSec = 300
	}
	if cfg.Server.MaxUploadSizeMB == 0 {
		cfg.Server.MaxUploadSizeMB = 100
	}

	if cfg.Conversion.TimeoutSec == 0 {
		cfg.Conversion.TimeoutSec = 240
	}
	if cfg.Conversion.MaxConcurrent == 0 {
		cfg.Conversion.MaxConcurrent = 4
	}
	if cfg.Conversion.JPEGQuality == 0 {
		cfg.Conversion.JPEGQuality = 95
	}

	if cfg.Video.FFmpegPath == "" {
		cfg.Video.FFmpegPath = "ffmpeg"
	}

	if cfg.Scratch.BaseDir == "" {
		cfg.Scratch.BaseDir = filepath.Join(os.TempDir(), "fileconverter")
	}

	if cfg.CORS.AllowedOrigins == "" {
		cfg.CORS.AllowedOrigins = "*"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func validateConfig(cfg *Config) error {
	// Server
	switch cfg.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.gin_mode must be one of debug, release, test")
	}
	if cfg.Server.ShutdownTimeoutSec <= 0 {
		return fmt.Errorf("server.shutdown_timeout_sec must be positive")
	}
	if cfg.Server.ReadTimeoutSec <= 0 {
		return fmt.Errorf("server.read_timeout_sec must be positive")
	}
	if cfg.Server.WriteTimeoutSec <= 0 {
		return fmt.Errorf("server.write_timeout_sec must be positive")
	}
	if cfg.Server.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("server.max_upload_size_mb must be positive")
	}

	// Conversion
	if cfg.Conversion.TimeoutSec <= 0 {
		return fmt.Errorf("conversion.timeout_sec must be positive")
	}
	if cfg.Conversion.MaxConcurrent <= 0 {
		return fmt.Errorf("conversion.max_concurrent must be positive")
	}
	if cfg.Conversion.JPEGQuality < 1 || cfg.Conversion.JPEGQuality > 100 {
		return fmt.Errorf("conversion.jpeg_quality must be between 1 and 100")
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}

	return nil
}
