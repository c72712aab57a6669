package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/correlator"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/feed"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/notify"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/ops"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pipeline"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/config"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/logging"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/perf"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/storage"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/quotes"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/registry"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/wager"
)

const defaultConfigPath = "configs/production.yaml"

func main() {
	if err := run(); err != nil {
		slog.Error("Betfeed service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath, "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logging.Setup(&cfg.Logging, "betfeed-service")
	slog.Info("Starting betfeed service...", "config", *configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	feedCfg, err := cfg.Feed.Connector()
	if err != nil {
		return err
	}
	wagerCfg, err := cfg.Wager.Orchestrator()
	if err != nil {
		return err
	}
	opsCfg, err := cfg.Ops.Server()
	if err != nil {
		return err
	}

	reg := registry.New(registry.GenerationEviction{MaxAge: cfg.Registry.MaxGenerationAge})
	store := quotes.NewStore()
	broker := quotes.NewBroker(0)
	defer broker.Close()
	resolver := correlator.NewResolver(reg)
	tracker := perf.NewTracker()
	pipe := pipeline.New(reg, resolver, store, broker, tracker)

	sessions, err := buildSessions(cfg, wagerCfg.SubmitTimeout)
	if err != nil {
		return err
	}
	slog.Info("Sessions configured", "count", len(sessions))

	var journal wager.Journal
	if cfg.Postgres.DSN != "" {
		j, err := storage.NewAttemptJournal(&cfg.Postgres)
		if err != nil {
			return fmt.Errorf("failed to open attempt journal: %w", err)
		}
		defer j.Close()
		journal = j
	} else {
		slog.Warn("No postgres DSN configured, wager attempts will not be journaled")
	}

	orch := wager.NewOrchestrator(wagerCfg, store, journal)
	orch.SetTracker(tracker)

	notifier := notify.NewTelegramNotifier(&cfg.Telegram)
	defer notifier.Close()

	connector := feed.NewConnector(feedCfg, pipe.Ingest)
	go func() {
		if err := connector.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Feed connector stopped", "error", err)
			cancel()
		}
	}()

	server := ops.NewServer(reg, store, sessions, orch, notifier, tracker)
	return server.Run(ctx, opsCfg)
}

func buildSessions(cfg *config.Config, submitTimeout time.Duration) ([]*wager.Session, error) {
	sessions := make([]*wager.Session, 0, len(cfg.Sessions))
	for _, sc := range cfg.Sessions {
		if sc.Name == "" {
			return nil, fmt.Errorf("session without a name in config")
		}
		sess := wager.NewSession(sc.Name, submitTimeout)
		if sc.AuthTokenEnv != "" {
			if token := os.Getenv(sc.AuthTokenEnv); token != "" {
				sess.SetAuth(token)
			} else {
				slog.Warn("Session token env is empty", "session", sc.Name, "env", sc.AuthTokenEnv)
			}
		}
		if sc.Endpoint != "" {
			sess.CaptureEndpoint(sc.Endpoint, nil)
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("Received shutdown signal", "signal", sig)
		cancel()
	}()
}
