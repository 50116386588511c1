package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/app"
	"github.com/Carveion/JUNKFU-V2/internal/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reminder daemon (Telegram bot and status API)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		// Ensure logger flush; ignore sync error (common on some platforms).
		defer func() { _ = log.Sync() }()

		application, err := app.New(cfg, log)
		if err != nil {
			log.Error("app init failed", zap.Error(err))
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := application.Run(ctx); err != nil {
			log.Error("app run failed", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
