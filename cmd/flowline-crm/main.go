// Command flowline-crm serves the CRM MCP tools (create_contact,
// get_contact, create_deal) over stdio or streamable HTTP, backed by an
// embedded SQLite store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/flowline-ai/flowline/internal/config"
	"github.com/flowline-ai/flowline/internal/mcp"
	"github.com/flowline-ai/flowline/internal/service/crm"
	"github.com/flowline-ai/flowline/internal/storage"
	"github.com/flowline-ai/flowline/internal/telemetry"
	crmmigrations "github.com/flowline-ai/flowline/migrations/crm"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("FLOWLINE_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	// Logs go to stderr: in stdio mode stdout carries protocol frames.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("crm starting", "version", version, "transport", cfg.Transport,
		"db", cfg.CRMDBPath, "strict_refs", cfg.CRMStrictRefs)

	// Initialize OpenTelemetry (no-op when no endpoint is configured).
	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName+"-crm", version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	// Open the store, creating the data directory and schema as needed.
	if dir := filepath.Dir(cfg.CRMDBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := storage.Open(ctx, cfg.CRMDBPath, crmmigrations.FS, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	svc := crm.New(db, crm.Options{StrictRefs: cfg.CRMStrictRefs}, logger)
	srv := mcp.NewCRM(svc, logger, version)

	if cfg.Transport == config.TransportHTTP {
		return serveHTTP(ctx, cfg, srv.MCPServer(), db, logger)
	}
	return serveStdio(ctx, srv.MCPServer())
}

// serveStdio runs the MCP server over stdin/stdout until EOF or signal.
func serveStdio(ctx context.Context, srv *mcpserver.MCPServer) error {
	stdio := mcpserver.NewStdioServer(srv)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

// serveHTTP mounts the streamable HTTP transport at /mcp plus a health
// endpoint, and shuts down gracefully on signal.
func serveHTTP(ctx context.Context, cfg config.Config, srv *mcpserver.MCPServer, db *storage.DB, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(srv))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if err := db.Ping(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status, "version": version})
	})

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http transport listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	slog.Info("crm shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
