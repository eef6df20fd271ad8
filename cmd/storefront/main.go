package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront-core/internal/adapter/analytics"
	"github.com/example/storefront-core/internal/adapter/httpapi"
	"github.com/example/storefront-core/internal/adapter/httpclient"
	"github.com/example/storefront-core/internal/adapter/natsstan"
	"github.com/example/storefront-core/internal/adapter/storage"
	"github.com/example/storefront-core/internal/config"
	"github.com/example/storefront-core/internal/store"
	"github.com/example/storefront-core/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "storefront:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := newLogger(cfg.LogLevel)

	st, closeStorage, err := storage.Open(ctx, cfg.StorageDriver, cfg.StorageTarget)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer closeStorage()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	sink := analytics.Multi{analytics.NewPrometheusSink(reg), analytics.LogSink{Logger: logger}}

	s := store.New(store.Options{
		API:             httpclient.New(cfg.APIBaseURL, cfg.RequestTimeout, logger),
		Storage:         st,
		Sink:            sink,
		Logger:          logger,
		NotificationTTL: cfg.NotificationTTL,
		FullLoadDelay:   cfg.FullLoadDelay,
		AuthToken:       cfg.AdminToken,
	})
	defer s.Close()
	s.Boot(ctx)
	logger.Info("store booted", "products", len(s.State().Products), "storage", cfg.StorageDriver)

	if cfg.NATS.Enabled() {
		sub := &natsstan.Subscriber{
			ClusterID: cfg.NATS.ClusterID,
			ClientID:  cfg.NATS.ClientID,
			URL:       cfg.NATS.URL,
			Subject:   cfg.NATS.Subject,
			Durable:   cfg.NATS.Durable,
			Queue:     cfg.NATS.Queue,
			Logger:    logger,
		}
		ingest := usecase.IngestOrder{Orders: s, Logger: logger}
		if err := sub.Subscribe(ctx, ingest.Execute); err != nil {
			// the store works without the feed; orders still arrive on refresh
			logger.Error("order feed unavailable", "err", err)
		}
	}

	api := httpapi.NewServer(s, reg, logger)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return httpapi.Serve(ctx, srv, logger)
}

func newLogger(level string) *slog.Logger {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
}
