package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/likescenter/internal/api"
	"github.com/vytor/likescenter/internal/app"
	"github.com/vytor/likescenter/internal/config"
	"github.com/vytor/likescenter/internal/jobs"
	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
		logger.WithFile(cfg.LogFile, 10, 3),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("LikesCenter Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("remote_base_url=%q", cfg.RemoteBaseURL)
	log.Debug("page_size=%d", cfg.PageSize)
	log.Debug("unblur_duration=%v", cfg.UnblurDuration)
	log.Debug("kv_backend=%s", cfg.KVBackend)
	log.Debug("job_worker_count=%d", cfg.JobWorkerCount)
	log.Debug("job_queue_size=%d", cfg.JobQueueSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	core, err := app.New(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize: %v", err)
		os.Exit(1)
	}
	defer core.Close()

	// The pool outlives ctx so queued jobs drain on shutdown.
	pool := worker.NewPool(cfg.JobWorkerCount, cfg.JobQueueSize)
	pool.Start(context.Background())

	srv := &api.Server{
		Likes: core.Likes,
		Jobs:  jobs.NewWorkerQueue(pool, core.Engine),
		DB:    core.DB,
	}

	// Warm the local cache; the store already serves whatever was persisted.
	if err := srv.Jobs.EnqueueRefresh(func(err error) {
		if err != nil {
			log.Warn("initial refresh failed: %v", err)
		}
	}); err != nil {
		log.Warn("could not schedule initial refresh: %v", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown does not track hijacked websocket streams. They hang off the
	// base context, so cancelling it ends them.
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping job pool")
	pool.Stop()

	log.Info("===========================================")
	log.Info("LikesCenter Server Stopped")
	log.Info("===========================================")
}
