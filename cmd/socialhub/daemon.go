package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/benaskins/socialhub/internal/api"
	"github.com/benaskins/socialhub/internal/config"
	"github.com/benaskins/socialhub/internal/hub"
	"github.com/benaskins/socialhub/internal/logbuf"
	"github.com/benaskins/socialhub/internal/metrics"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the socialhub daemon",
	Long:  "Serve the posting and credential API on a Unix socket, reloading platform endpoints when the config file changes.",
	RunE:  runDaemon,
}

var apiAddr string

// daemonLogLines is how many recent log lines "socialhub logs" can read back.
const daemonLogLines = 500

func init() {
	daemonCmd.Flags().StringVar(&apiAddr, "api-addr", "", "Optional TCP address for API (e.g. 127.0.0.1:9090); overrides api_addr in config")
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfgPath := resolvedConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	recent := logbuf.New(daemonLogLines)
	setupLogging(cfg, io.MultiWriter(os.Stderr, recent), slog.LevelInfo)

	if _, err := socialhubHome(); err != nil {
		return err
	}

	slog.Info("socialhub daemon starting", "config", cfgPath, "memory_store", memoryStore)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store, closeStore, err := openCredentials(cfg, "daemon")
	if err != nil {
		return err
	}
	defer closeStore()

	h := hub.New(store, hub.WithPosters(buildPosters(cfg)...), hub.WithMetrics(m))

	go func() {
		err := config.Watch(ctx, cfgPath, func() {
			next, err := config.Load(cfgPath)
			if err != nil {
				slog.Error("config reload failed, keeping current adapters", "error", err)
				return
			}
			h.SetPosters(buildPosters(next)...)
			slog.Info("config reloaded", "http_timeout", next.Timeout())
		})
		if err != nil {
			slog.Warn("config watcher not running", "error", err)
		}
	}()

	socketPath := cfg.Socket()
	if err := os.MkdirAll(filepath.Dir(socketPath), 0700); err != nil {
		return fmt.Errorf("creating socket dir: %w", err)
	}

	srv := api.NewServer(h, store, api.WithGatherer(reg), api.WithLogs(recent))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenUnix(socketPath)
	}()

	addr := apiAddr
	if addr == "" {
		addr = cfg.APIAddr
	}
	if addr != "" {
		go func() {
			if err := srv.ListenTCP(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("TCP API error", "error", err)
			}
		}()
	}

	slog.Info("socialhub daemon ready", "socket", socketPath)

	select {
	case sig := <-sigCh:
		slog.Info("received signal, shutting down", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("API server error", "error", err)
		}
	}

	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()
	srv.Shutdown(shutdownCtx)
	os.Remove(socketPath)

	slog.Info("socialhub daemon stopped")
	return nil
}
