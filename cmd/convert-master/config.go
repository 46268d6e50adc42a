// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/convert-master/internal/secrets"
	"github.com/pdiddy/convert-master/pkg/types"
)

// configure points v at the config file, environment and defaults. A missing
// config file or .env is not an error.
func configure(v *viper.Viper, cfgFile string) {
	_ = godotenv.Load()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("convert-master")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "convert-master"))
		}
	}

	v.SetEnvPrefix("CONVERT_MASTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
}

// setDefaults registers every key so environment variables reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.poll_timeout", types.DefaultPollTimeout)
	v.SetDefault("bot.debug", false)
	v.SetDefault("bot.download_dir", types.DefaultDownloadDir)
	v.SetDefault("bot.download_timeout", types.DefaultDownloadTimeout)

	v.SetDefault("conversion.office_binary", "")
	v.SetDefault("conversion.office_image", types.DefaultOfficeImage)
	v.SetDefault("conversion.timeout", types.DefaultTimeout)
	v.SetDefault("conversion.jpeg_quality", types.DefaultJPEGQuality)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("health.addr", "")
}

// loadConfig reads the config file if present, unmarshals v and falls back to
// the secrets directory for the bot token.
func loadConfig(v *viper.Viper, secretsDir string) (*types.Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	c := &types.Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	c.ApplyDefaults()

	if c.Bot.Token == "" {
		s, err := secrets.Load(secretsDir)
		if err != nil {
			return nil, err
		}
		c.Bot.Token = s[secrets.TokenKey]
	}
	return c, nil
}
