package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

func main() {
	if err := LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "token" {
		os.Exit(runToken(os.Args[2:], os.Stdout, os.Stderr))
	}

	cfg, err := LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	store, err := OpenStore(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	access := NewAccess(store, AccessConfig{
		Whitelist:    cfg.Whitelist,
		Credential:   cfg.APIKey,
		AcceptTokens: cfg.AcceptTokens,
	}, NewMetrics(registry), logger)

	handler := NewReasonHandler(access, logger)
	router := NewRouter(handler, cfg, registry, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	var bot *Bot
	if !cfg.BotDisabled {
		bot, err = NewBot(cfg.BotToken, cfg.BotPrefix, access, logger)
		if err == nil {
			err = bot.Open()
		}
		if err != nil {
			logger.Error("failed to start bot", "error", err)
			os.Exit(1)
		}
		logger.Info("bot connected", "prefix", cfg.BotPrefix)
	}

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", "signal", sig.String())

	if bot != nil {
		if err := bot.Close(); err != nil {
			logger.Error("bot close error", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	if err := store.Close(); err != nil {
		logger.Error("store close error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// runToken implements `reasonbot token`, printing an API token signed with
// the KEY credential.
func runToken(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("token", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	ttl := fs.Duration("ttl", 24*time.Hour, "how long the token stays valid")
	subject := fs.String("subject", "api", "subject recorded in the token")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	token, err := MintToken(os.Getenv("KEY"), *subject, *ttl, time.Now())
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	fmt.Fprintln(stdout, token)
	return 0
}
