// Command holidayd serves public holiday lookups over HTTP.
//
// Configuration is read from an env file (default .env, see -envfile), then
// from the environment, then from flags:
//
//	HOLIDAYD_ADDR       listen address (-addr), default :8080
//	HOLIDAYD_ORIGINS    comma-separated CORS origins (-origins)
//	HOLIDAYD_LOG_LEVEL  debug, info, warn or error (-log-level)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rabitt1ove/kr-holidays/api"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := defaultConfig()

	envPath := peekOption(args, []string{"-envfile", "--envfile"}, ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envPath, err)
	}
	if err := parseEnvs(&cfg); err != nil {
		return err
	}

	fs := flag.NewFlagSet("holidayd", flag.ContinueOnError)
	fs.StringVar(&cfg.addr, "addr", cfg.addr, "Address to listen on")
	origins := fs.String("origins", strings.Join(cfg.origins, ","), "Comma-separated CORS origins")
	fs.TextVar(&cfg.logLevel, "log-level", cfg.logLevel, "Log level")
	_ = fs.String("envfile", ".env", "Load ENVs from this file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	cfg.origins = splitList(*origins)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel}))

	server := &http.Server{
		Addr:         cfg.addr,
		Handler:      api.NewRouter(api.NewHandler(logger), cfg.origins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
