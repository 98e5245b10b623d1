package cmd

import (
	"academy/config"
	"academy/logger"
	"academy/server"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	defer syncLogger()
	cfg := config.AppConfig
	log := logger.Log

	db, err := connect()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, db, log, server.Options{AccessLog: true})
	if err != nil {
		return err
	}

	sweeps, err := srv.Sweeper.Schedule(cfg.OrphanSweepSchedule)
	if err != nil {
		return err
	}
	defer sweeps.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server is running", zap.String("port", cfg.Port))
		errCh <- srv.App.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.App.ShutdownWithContext(shutdownCtx)
}
