// Mentor MCP — ассистент как MCP-сервер для LLM-клиентов.
//
// Транспорт задаётся MCP_TRANSPORT: stdio (по умолчанию) или sse.
// В режиме stdio логи пишутся только в stderr.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/Mentor/internal/app"
	"github.com/shaiso/Mentor/internal/config"
	"github.com/shaiso/Mentor/internal/mcpserver"
	"github.com/shaiso/Mentor/internal/telemetry"
)

func main() {
	// stdout занят JSON-RPC
	logger := telemetry.NewLogger(os.Stderr, telemetry.LogLevel(), os.Getenv("LOG_FORMAT"))
	logger.Info("starting mentor-mcp")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	services, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build services", "error", err)
		os.Exit(1)
	}
	defer services.Close()

	serverCfg := mcpserver.Config{
		Pipeline: services.Pipeline,
		Logger:   logger,
	}
	if services.Performance != nil {
		serverCfg.Performance = services.Performance
	}
	srv := mcpserver.NewServer(serverCfg)

	switch cfg.MCP.Transport {
	case "stdio":
		logger.Info("serving stdio")
		if err := srv.ServeStdio(); err != nil {
			logger.Error("stdio server error", "error", err)
		}
	case "sse":
		serveSSE(ctx, cancel, cfg, srv, logger)
	default:
		logger.Error("unknown MCP transport", "transport", cfg.MCP.Transport)
	}

	logger.Info("stopped")
}

func serveSSE(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, srv *mcpserver.Server, logger *slog.Logger) {
	server := &http.Server{
		Addr:    cfg.MCP.Addr,
		Handler: srv.SSEHandler(cfg.MCP.BaseURL),
	}

	go func() {
		logger.Info("listening (SSE)", "addr", cfg.MCP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
