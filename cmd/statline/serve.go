package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/statline/statline/internal/api"
	"github.com/statline/statline/internal/collector"
	"github.com/statline/statline/internal/scheduler"
	"github.com/statline/statline/internal/store"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the collection loop and the HTTP API",
	Long: `Serve starts the periodic collection scheduler and the HTTP API on the
configured listen address. The process runs until it receives SIGINT or
SIGTERM, then drains any in-flight collection cycle and shuts down.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "listen", "",
		"Listen address for the HTTP API (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	logger.Info("Starting statline",
		zap.String("version", version),
		zap.String("db", cfg.Database.Path),
		zap.Duration("interval", cfg.Monitor.Interval.Duration))

	st, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	col := collector.NewSystemCollector(collector.Options{
		Timeout:   cfg.Monitor.CollectTimeout.Duration,
		CPUSample: cfg.Monitor.CPUSample.Duration,
		DiskPath:  cfg.Monitor.DiskPath,
	}, logger)

	sched, err := scheduler.New(col, st, cfg.Monitor.Interval.Duration, logger)
	if err != nil {
		return err
	}
	sched.Start()

	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      api.NewServer(col, st, sched, cfg.Monitor.RetentionDays, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Handle OS signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", zap.Error(err))
		}
	}()

	logger.Info("HTTP API listening", zap.String("addr", cfg.Server.ListenAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	<-shutdownDone

	sched.Stop()
	logger.Info("Statline stopped")
	return nil
}
