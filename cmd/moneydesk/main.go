package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"moneydesk/internal/api"
	"moneydesk/internal/api/memory"
	"moneydesk/internal/api/rest"
	"moneydesk/internal/cli"
	apphttp "moneydesk/internal/http"
	"moneydesk/internal/receipt"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	var (
		dir       api.ClientDirectory
		txs       api.TransactionLister
		ref       api.ReferenceData
		funder    api.WalletFunder
		analytics api.Analytics
	)

	switch cfg.DataBackend {
	case "memory":
		store := memory.NewSeeded()
		dir, txs, ref, funder, analytics = store, store, store, store, store
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	default:
		client := rest.New(cfg.APIBaseURL, cfg.APITimeout)
		dir, txs, ref, funder, analytics = client, client, client, client, client
		logger.Info("Initialized REST backend", "backend", cfg.DataBackend, "base_url", cfg.APIBaseURL)
	}

	fonts := receipt.Fonts{Regular: cfg.ReceiptFont, Bold: cfg.ReceiptFontBold}
	srv := apphttp.NewServer(":"+cfg.Port, dir, txs, ref, funder, analytics, fonts)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting moneydesk server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
