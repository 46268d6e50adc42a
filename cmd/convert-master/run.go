// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/convert-master/internal/bot"
	"github.com/pdiddy/convert-master/internal/health"
	"github.com/pdiddy/convert-master/internal/httputil"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the chat bot",
	Long: `Run connects to the Telegram Bot API with long polling and serves
conversations until interrupted. On shutdown every unfinished conversation is
discarded and its downloaded file removed.

When health.addr is set, GET /healthz and GET /status are served there.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		d, runtimeName := newDispatcher(cfg)

		api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
		if err != nil {
			return fmt.Errorf("connecting to bot API: %w", bot.ScrubToken(err, cfg.Bot.Token))
		}
		api.Debug = cfg.Bot.Debug
		log.Info().Str("username", api.Self.UserName).Msg("authorized")

		httputil.UserAgent = "convert-master/" + version
		client := &http.Client{Timeout: cfg.Bot.DownloadTimeout}
		b := bot.New(api, d, cfg.Bot.DownloadDir, client, bot.WithToken(cfg.Bot.Token))

		u := tgbotapi.NewUpdate(0)
		u.Timeout = cfg.Bot.PollTimeout
		updates := api.GetUpdatesChan(u)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer stop()
			defer api.StopReceivingUpdates()
			return b.Run(gctx, updates)
		})
		if cfg.Health.Addr != "" {
			info := health.Info{Version: version, OfficeRuntime: runtimeName}
			for _, p := range d.Pairs() {
				info.Conversions = append(info.Conversions, p.String())
			}
			g.Go(func() error {
				return health.Serve(gctx, cfg.Health.Addr, health.Handler(b, info))
			})
		}
		return g.Wait()
	},
}

func init() {
	runCmd.Flags().String("token", "", "bot access token (prefer CONVERT_MASTER_BOT_TOKEN or .secrets/telegram-bot-token)")
	runCmd.Flags().String("download-dir", "", "directory for uploaded files (default: downloads)")
	runCmd.Flags().String("health-addr", "", "listen address for /healthz and /status (default: disabled)")
	runCmd.Flags().Bool("debug", false, "log Bot API traffic")

	_ = viper.BindPFlag("bot.token", runCmd.Flags().Lookup("token"))
	_ = viper.BindPFlag("bot.download_dir", runCmd.Flags().Lookup("download-dir"))
	_ = viper.BindPFlag("health.addr", runCmd.Flags().Lookup("health-addr"))
	_ = viper.BindPFlag("bot.debug", runCmd.Flags().Lookup("debug"))

	rootCmd.AddCommand(runCmd)
}
