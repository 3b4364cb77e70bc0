package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/scrubd/scrubd/internal/config"
	"github.com/scrubd/scrubd/internal/server"
	"github.com/scrubd/scrubd/internal/supervisor"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides env)")
	host := flag.String("host", "", "Bind address (overrides env)")
	debug := flag.Bool("debug", false, "Debug mode")
	storage := flag.String("storage", "", "Storage directory (overrides env)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *debug {
		cfg.Server.Debug = true
		cfg.Logging.Development = true
	}
	if *storage != "" {
		cfg.Storage.Dir = *storage
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	logger := srv.Logger()

	sup := supervisor.New(logger)
	worker, err := sup.Launch("http-server", srv.Factory(), supervisor.Config{
		Host:  cfg.Server.Host,
		Port:  cfg.Server.Port,
		Debug: cfg.Server.Debug,
	})
	if err != nil {
		log.Fatalf("Failed to launch server: %v", err)
	}
	srv.Metrics().WorkerLaunches.Inc()
	srv.Metrics().WorkerActive.Set(1)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received")
		if sup.Kill() {
			srv.Metrics().WorkerKills.Inc()
			srv.Metrics().WorkerActive.Set(0)
			logger.Info("Server terminated")
		}
	case <-worker.Done():
		srv.Metrics().WorkerActive.Set(0)
		if err := worker.Err(); err != nil {
			logger.Error("Server exited with error", zap.Error(err))
			logger.Sync()
			os.Exit(1)
		}
		logger.Info("Server exited")
	}

	logger.Sync()
}
