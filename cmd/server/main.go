package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/InvoiceFlow/internal/config"
	"github.com/JonMunkholm/InvoiceFlow/internal/extract"
	"github.com/JonMunkholm/InvoiceFlow/internal/ingest"
	"github.com/JonMunkholm/InvoiceFlow/internal/logging"
	"github.com/JonMunkholm/InvoiceFlow/internal/schema"
	"github.com/JonMunkholm/InvoiceFlow/internal/store"
	"github.com/JonMunkholm/InvoiceFlow/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store_path", cfg.Store.Path,
		"extract_model", cfg.Extract.Model,
	)

	// Verify the destination workbook opens and declares both tables
	// before accepting traffic.
	if err := verifyStore(cfg.Store.Path); err != nil {
		slog.Error("store verification failed", "error", err)
		os.Exit(1)
	}
	slog.Info("store verified", "path", cfg.Store.Path)

	// The service re-opens the workbook for each persist call.
	service := ingest.NewService(store.Opener(cfg.Store.Path))

	extractorOpts := []extract.Option{
		extract.WithModel(cfg.Extract.Model),
		extract.WithTimeout(cfg.Extract.Timeout),
	}
	if cfg.Extract.BaseURL != "" {
		extractorOpts = append(extractorOpts, extract.WithBaseURL(cfg.Extract.BaseURL))
	}
	extractor := extract.NewOpenAIClient(cfg.Extract.APIKey, extractorOpts...)

	server := web.NewServer(cfg, service, extractor)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// verifyStore opens the workbook once and checks both order tables
// exist, failing fast on a misconfigured destination.
func verifyStore(path string) error {
	wb, err := store.Open(path)
	if err != nil {
		return err
	}
	defer wb.Close()

	for _, name := range []string{schema.HeaderTable, schema.DetailTable} {
		if _, err := wb.Table(name); err != nil {
			return err
		}
	}
	return nil
}
