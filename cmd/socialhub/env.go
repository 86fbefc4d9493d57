package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/benaskins/socialhub/internal/audit"
	"github.com/benaskins/socialhub/internal/config"
	"github.com/benaskins/socialhub/internal/credentials"
	"github.com/benaskins/socialhub/internal/keychain"
	"github.com/benaskins/socialhub/internal/platform"
	"github.com/benaskins/socialhub/internal/platform/bluesky"
	"github.com/benaskins/socialhub/internal/platform/threads"
	"github.com/benaskins/socialhub/internal/platform/x"
)

// devStore backs --memory-store for the lifetime of the process.
var devStore = keychain.NewMemoryStore()

// setupLogging installs the default slog handler. CLI commands pass a quieter
// floor than the daemon so results are not buried in log lines.
func setupLogging(cfg *config.Config, w io.Writer, floor slog.Level) {
	level := cfg.Level()
	if cfg.LogLevel == "" {
		level = floor
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openCredentials builds the credential store the commands share. The
// returned close func releases the audit log, if one is configured.
func openCredentials(cfg *config.Config, actor string) (*credentials.Store, func(), error) {
	var secrets keychain.Store = keychain.NewSystemStore(credentials.ServiceName)
	if memoryStore {
		secrets = devStore
	}

	closeFn := func() {}
	if cfg.AuditLog != "" {
		logger, err := audit.NewLogger(expandHome(cfg.AuditLog))
		if err != nil {
			return nil, nil, err
		}
		secrets = keychain.NewAuditedStore(secrets, logger, actor)
		closeFn = func() { logger.Close() }
	}
	return credentials.NewStore(secrets), closeFn, nil
}

// buildPosters constructs the three adapters from config.
func buildPosters(cfg *config.Config) []platform.Poster {
	hc := platform.NewHTTPClient(cfg.Timeout())
	ep := cfg.Endpoints

	bsOpts := []bluesky.Option{bluesky.WithHTTPClient(hc)}
	if ep.BlueskyHost != "" {
		bsOpts = append(bsOpts, bluesky.WithHost(ep.BlueskyHost))
	}
	if ep.BlueskyWeb != "" {
		bsOpts = append(bsOpts, bluesky.WithWebHost(ep.BlueskyWeb))
	}

	xOpts := []x.Option{x.WithHTTPClient(hc)}
	if ep.XAPIBase != "" {
		xOpts = append(xOpts, x.WithAPIBase(ep.XAPIBase))
	}
	if ep.XWeb != "" {
		xOpts = append(xOpts, x.WithWebBase(ep.XWeb))
	}

	thOpts := []threads.Option{threads.WithHTTPClient(hc)}
	if ep.ThreadsAPIBase != "" {
		thOpts = append(thOpts, threads.WithAPIBase(ep.ThreadsAPIBase))
	}

	return []platform.Poster{
		bluesky.New(bsOpts...),
		x.New(xOpts...),
		threads.New(thOpts...),
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(resolvedConfigPath())
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return home + string(os.PathSeparator) + rest
		}
	}
	return path
}
