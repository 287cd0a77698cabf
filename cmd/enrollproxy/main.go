package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"enrollment-insights/internal/airtable"
	"enrollment-insights/internal/config"
	"enrollment-insights/internal/logging"
	"enrollment-insights/internal/proxy"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var (
		addr    = flag.String("addr", cfg.ListenAddr, "listen address")
		retries = flag.Int("retries", cfg.HTTPRetryAttempts, "attempts per upstream page (1 = no retry)")
	)
	flag.Parse()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg.HTTPRetryAttempts = *retries
	if !cfg.HasAirtableCredentials() {
		// still serve: every table answers 500 until credentials are set
		logger.Warn("AIRTABLE_PAT / AIRTABLE_BASE_ID not set")
	}
	srv := proxy.NewAirtableServer(airtable.FromConfig(cfg, logger), logger)

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("proxy listening", zap.String("addr", *addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
