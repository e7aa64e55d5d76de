package main

import (
	"errors"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uqcs/haikubot/src/haikubot"
	"github.com/uqcs/haikubot/src/haikubot/db"
	"github.com/uqcs/haikubot/src/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to Discord and start finding haiku",
	Long: `Connect to Discord and start finding haiku.

Settings are read from config.yaml and from HAIKU_BOT_* environment variables.
Changes to the config file's reactions, channel lists and features are picked
up without a restart.

Examples:
  HAIKU_BOT_TOKEN=... haikubot serve
  haikubot serve --config ./dev.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		v, err := loadConfig(cfgFile)
		if err != nil {
			return err
		}
		conf := configFromViper(v)
		if conf.Token == "" {
			return errors.New("no Discord token configured; set HAIKU_BOT_TOKEN or token in config.yaml")
		}

		level := zap.NewAtomicLevelAt(logLevel(conf.Debug))
		zl, err := newLogger(level)
		if err != nil {
			return fmt.Errorf("error building logger: %w", err)
		}
		defer zl.Sync()
		logger := zl.Sugar()

		dbx, err := db.Open(conf.DBPath)
		if err != nil {
			return err
		}
		defer dbx.Close()

		go func() {
			if _, err := haikubot.UpdateHashes(ctx, dbx, logger); err != nil {
				logger.Errorw("could not update haiku hashes", "error", err)
			}
		}()

		if conf.MetricsAddr != "" {
			server := metrics.SetupServer(conf.MetricsAddr)
			go server.Run(logger)
			defer func() {
				if err := server.Stop(); err != nil {
					logger.Errorw("error stopping metrics server", "error", err)
				}
			}()
		}

		bot := haikubot.New(conf, dbx, logger)
		if err := bot.Open(); err != nil {
			return fmt.Errorf("error opening bot: %w", err)
		}

		if v.ConfigFileUsed() != "" {
			v.OnConfigChange(func(e fsnotify.Event) {
				logger.Infow("config file changed", "file", e.Name, "op", e.Op.String())
				reloaded := configFromViper(v)
				level.SetLevel(logLevel(reloaded.Debug))
				bot.UpdateConfig(reloaded)
			})
			v.WatchConfig()
		}

		logger.Info("Bot is now running. Press CTRL-C to exit.")
		<-ctx.Done()

		logger.Info("shutting down")
		if err := bot.Close(); err != nil {
			logger.Errorw("error closing session", "error", err)
		}
		return nil
	},
}
