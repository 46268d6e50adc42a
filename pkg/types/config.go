// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// BotConfig holds settings for the chat front end.
type BotConfig struct {
	// Token is the chat platform access token. It is never read from source;
	// see the secrets package and the CONVERT_MASTER_BOT_TOKEN variable.
	Token string `mapstructure:"token" json:"-" yaml:"-"`

	// PollTimeout is the long-polling timeout in seconds (default 60).
	PollTimeout int `mapstructure:"poll_timeout" json:"poll_timeout" yaml:"poll_timeout"`

	// Debug enables verbose transport logging.
	Debug bool `mapstructure:"debug" json:"debug" yaml:"debug"`

	// DownloadDir is the directory uploads are downloaded to and converted in
	// (default "downloads").
	DownloadDir string `mapstructure:"download_dir" json:"download_dir" yaml:"download_dir"`

	// DownloadTimeout bounds one upload download (default 1m).
	DownloadTimeout time.Duration `mapstructure:"download_timeout" json:"download_timeout" yaml:"download_timeout"`
}

// ConversionConfig holds settings for the converters.
type ConversionConfig struct {
	// OfficeBinary overrides the office-suite binary used for document
	// conversion (default: first of soffice, libreoffice found on PATH).
	OfficeBinary string `mapstructure:"office_binary" json:"office_binary,omitempty" yaml:"office_binary,omitempty"`

	// OfficeImage is the container image used when no office binary is
	// installed locally.
	OfficeImage string `mapstructure:"office_image" json:"office_image" yaml:"office_image"`

	// Timeout bounds a single external conversion (default 2m).
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`

	// JPEGQuality is the encoder quality for jpg outputs, 1..100 (default 90).
	JPEGQuality int `mapstructure:"jpeg_quality" json:"jpeg_quality" yaml:"jpeg_quality"`
}

// LogConfig holds zerolog settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `mapstructure:"level" json:"level" yaml:"level"`

	// Format is "console" for human-readable output or "json".
	Format string `mapstructure:"format" json:"format" yaml:"format"`
}

// HealthConfig holds settings for the optional status endpoint.
type HealthConfig struct {
	// Addr is the listen address (e.g. ":8080"). Empty disables the endpoint.
	Addr string `mapstructure:"addr" json:"addr" yaml:"addr"`
}

// Config groups all configuration sections.
type Config struct {
	Bot        BotConfig        `mapstructure:"bot" json:"bot" yaml:"bot"`
	Conversion ConversionConfig `mapstructure:"conversion" json:"conversion" yaml:"conversion"`
	Log        LogConfig        `mapstructure:"log" json:"log" yaml:"log"`
	Health     HealthConfig     `mapstructure:"health" json:"health" yaml:"health"`
}

// Default values applied by ApplyDefaults.
const (
	DefaultPollTimeout     = 60
	DefaultDownloadDir     = "downloads"
	DefaultDownloadTimeout = time.Minute
	DefaultOfficeImage     = "convert-master/libreoffice:latest"
	DefaultTimeout         = 2 * time.Minute
	DefaultJPEGQuality     = 90
)

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Bot.PollTimeout <= 0 {
		c.Bot.PollTimeout = DefaultPollTimeout
	}
	if c.Bot.DownloadDir == "" {
		c.Bot.DownloadDir = DefaultDownloadDir
	}
	if c.Bot.DownloadTimeout <= 0 {
		c.Bot.DownloadTimeout = DefaultDownloadTimeout
	}
	if c.Conversion.OfficeImage == "" {
		c.Conversion.OfficeImage = DefaultOfficeImage
	}
	if c.Conversion.Timeout <= 0 {
		c.Conversion.Timeout = DefaultTimeout
	}
	if c.Conversion.JPEGQuality == 0 {
		c.Conversion.JPEGQuality = DefaultJPEGQuality
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate checks the settings needed to run the bot.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c.Bot,
		validation.Field(&c.Bot.Token, validation.Required.Error("bot token is required")),
		validation.Field(&c.Bot.PollTimeout, validation.Min(1)),
		validation.Field(&c.Bot.DownloadDir, validation.Required),
	); err != nil {
		return err
	}
	if err := c.ValidateConversion(); err != nil {
		return err
	}
	return validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Log.Format, validation.In("console", "json")),
	)
}

// ValidateConversion checks only the converter settings. The local convert
// command uses it since it needs no token.
func (c Config) ValidateConversion() error {
	return validation.ValidateStruct(&c.Conversion,
		validation.Field(&c.Conversion.JPEGQuality, validation.Min(1), validation.Max(100)),
		validation.Field(&c.Conversion.Timeout, validation.Min(time.Second)),
	)
}
