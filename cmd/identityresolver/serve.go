package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	ingestkafka "identityresolver/internal/ingest/kafka"
	"identityresolver/internal/scheduler"
	"identityresolver/internal/server"
	"identityresolver/internal/stats/archive"
)

func newServeCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP resolution service",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			return runServe(logger, path)
		},
	}
	return cmd
}

func runServe(logger *slog.Logger, cfgPath string) error {
	ctx, cancel := signalContext()
	defer cancel()

	comps, err := openComponents(ctx, cfgPath, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	var arc *archive.Archive
	if comps.cfg.Stats.ArchiveDir != "" {
		arc, err = archive.New(comps.cfg.Stats.ArchiveDir, comps.cfg.Stats.ArchiveRetention)
		if err != nil {
			return fmt.Errorf("open stats archive: %w", err)
		}
	}

	sched, err := scheduler.New(comps.cfg.Stats.RefreshInterval, comps.store, comps.cache, arc, logger)
	if err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			logger.Error("scheduler stop error", "error", err)
		}
	}()

	if comps.cfg.Kafka != nil {
		ing := ingestkafka.New(ingestkafka.Config{
			Brokers: comps.cfg.Kafka.SeedBrokers,
			Topic:   comps.cfg.Kafka.Topic,
			Group:   comps.cfg.Kafka.ConsumerGroup,
			TLS:     comps.cfg.Kafka.TLS,
			Workers: comps.cfg.Kafka.Workers,
			Logger:  logger,
		}, comps.store)
		go func() {
			if err := ing.Run(ctx); err != nil {
				logger.Error("kafka ingester stopped with error", "error", err)
			}
		}()
	}

	srv := server.New(comps.store, comps.reg, comps.cache, comps.tokens, logger)
	httpServer := &http.Server{
		Addr:              comps.cfg.HTTP.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", comps.cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
