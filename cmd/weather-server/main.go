package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcp "github.com/nimbus-tools/weather-mcp"
	"github.com/nimbus-tools/weather-mcp/config"
	"github.com/nimbus-tools/weather-mcp/weather"
	"golang.org/x/exp/jsonrpc2"
)

func main() {
	transport := flag.String("transport", "", "transport to serve on: stdio or sse (overrides MCP_TRANSPORT)")
	addr := flag.String("addr", "", "listen address of the sse transport (overrides MCP_ADDR)")
	envFile := flag.String("env", ".env", "environment file to load if present")
	flag.Parse()

	if err := run(*envFile, *transport, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "weather-server: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile, transport, addr string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if transport != "" {
		cfg.Transport = transport
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// stdout carries the stdio protocol stream, so process logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	source := cfg.DataSource()
	if source.Mock() {
		logger.Warn("OPENWEATHER_API_KEY is not set, serving mock weather data")
	}
	handler := weather.NewServer(weather.NewFetcher(source, nil), logger).Handler()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting weather server", "transport", cfg.Transport, "mock", source.Mock())
	switch cfg.Transport {
	case config.TransportSSE:
		return serveSSE(ctx, logger, cfg, handler)
	default:
		return serveStdio(ctx, handler)
	}
}

func serveStdio(ctx context.Context, handler *mcp.Handler) error {
	ctx, listener, binder := mcp.NewStdioTransport(ctx, handler, nil)
	srv, err := jsonrpc2.Serve(ctx, listener, binder)
	if err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	// The server stops when the client closes stdin or ctx is done.
	if err := srv.Wait(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveSSE(ctx context.Context, logger *slog.Logger, cfg *config.Config, handler *mcp.Handler) error {
	transport := mcp.NewSSETransport(ctx, handler, &mcp.SSETransportOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		KeepAlive:      15 * time.Second,
		Logger:         logger,
	})
	defer transport.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           transport,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "sse", "http://"+cfg.Addr+"/sse")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	// Event streams never finish on their own.
	transport.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
