// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the convert-master CLI: the chat bot
// (run) and a local front end to the same conversion dispatcher (convert,
// formats).
package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/convert-master/internal/logging"
	"github.com/pdiddy/convert-master/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// secretsDir holds one file per secret; see internal/secrets.
const secretsDir = ".secrets/"

// cfg is loaded before any subcommand runs.
var cfg *types.Config

// rootCmd is the base command for the convert-master CLI.
var rootCmd = &cobra.Command{
	Use:   "convert-master",
	Short: "Chat bot that converts documents, images and presentations",
	Long: `convert-master runs a Telegram bot that converts files between formats:
docx to pdf, pdf to docx, jpg/png/tiff between each other, and pptx/ppt to pdf.

The same conversions are available locally through the convert subcommand.
Settings come from flags, CONVERT_MASTER_* environment variables (a .env file
is honoured) and an optional convert-master.yaml. The bot token is read from
--token, CONVERT_MASTER_BOT_TOKEN or .secrets/telegram-bot-token.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(viper.GetViper(), secretsDir)
		if err != nil {
			return err
		}
		cfg = c
		logging.Init(cfg.Log)
		log.Debug().
			Str("config_file", viper.ConfigFileUsed()).
			Bool("token_set", cfg.Bot.Token != "").
			Msg("configuration loaded")
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./convert-master.yaml or ~/.config/convert-master/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	configure(viper.GetViper(), cfgFile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
