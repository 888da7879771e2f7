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

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/greenstead/pantryd/internal/bring"
	"github.com/greenstead/pantryd/internal/compose"
	"github.com/greenstead/pantryd/internal/config"
	"github.com/greenstead/pantryd/internal/intent"
	"github.com/greenstead/pantryd/internal/logging"
	"github.com/greenstead/pantryd/internal/reconcile"
	"github.com/greenstead/pantryd/internal/server"
	"github.com/greenstead/pantryd/internal/templates"
)

// runServe starts the daemon and blocks until SIGINT/SIGTERM.
func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return run(ctx)
}

// run wires every component and blocks until ctx is cancelled:
//
//  1. config, logger, template set for the configured locale
//  2. Bring gateway and reconciliation service
//  3. NATS connection and intent dispatcher
//  4. health/metrics HTTP server (blocks here)
func run(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	set, err := templates.Load(cfg.Speech.Locale)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	logger.Info("templates loaded", zap.String("locale", set.Locale))

	gateway, err := bring.NewHTTPClient(bring.Config{
		BaseURL:  cfg.Bring.BaseURL,
		APIKey:   cfg.Bring.APIKey.Value(),
		UserUUID: cfg.Bring.UserUUID.Value(),
		ListUUID: cfg.Bring.ListUUID.Value(),
		Timeout:  cfg.Bring.Timeout.Duration(),
	}, logger.Named("bring"))
	if err != nil {
		return fmt.Errorf("create bring client: %w", err)
	}

	reconciler := reconcile.NewService(gateway, logger.Named("reconcile"))
	composer := compose.New(set.List, nil)
	handlers := intent.NewHandlers(reconciler, set, composer, logger.Named("intent"))

	nc, err := nats.Connect(cfg.NATS.URL,
		nats.Name(cfg.NATS.Name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer nc.Close()
	logger.Info("connected to NATS", zap.String("url", cfg.NATS.URL))

	dispatcher := intent.NewDispatcher(nc, handlers, intent.Names{
		Add:    cfg.Speech.Intents.Add,
		Remove: cfg.Speech.Intents.Remove,
		Check:  cfg.Speech.Intents.Check,
		Read:   cfg.Speech.Intents.Read,
	}, set, logger.Named("dispatch"))

	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("start dispatcher: %w", err)
	}
	defer func() {
		if err := dispatcher.Drain(); err != nil {
			logger.Warn("dispatcher drain failed", zap.Error(err))
		}
	}()

	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration(),
	})

	logger.Info("pantryd ready",
		zap.String("locale", set.Locale),
		zap.Int("http_port", cfg.Server.Port))

	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}
