package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/relaychat/relaychat-server/internal/app"
	"github.com/relaychat/relaychat-server/internal/config"
	"github.com/relaychat/relaychat-server/internal/log"
)

func main() {
	var (
		configPath string
		addr       string
		backend    string
		logLevel   string
	)

	root := &cobra.Command{
		Use:          "relaychat-server",
		Short:        "Real-time group chat relay server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := log.New(logLevel)

			cfg, path, err := config.Load(logger, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if backend != "" {
				cfg.HistoryBackend = backend
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			logger = log.New(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}

			logger.Info().
				Str("config", path).
				Str("addr", cfg.Addr).
				Str("backend", cfg.HistoryBackend).
				Msg("starting relaychat server")
			if err := application.Run(ctx); err != nil {
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	root.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	root.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
	root.Flags().StringVar(&backend, "backend", "", "history backend (file|mongo|sqlite)")
	root.Flags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
