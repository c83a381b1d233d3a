package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soapbridge/soapbridge/internal/config"
	"github.com/soapbridge/soapbridge/internal/core"
	"github.com/soapbridge/soapbridge/internal/db"
	httpsvr "github.com/soapbridge/soapbridge/internal/http"
	mcpsvr "github.com/soapbridge/soapbridge/internal/mcp"
	"github.com/soapbridge/soapbridge/internal/testrunner"
	"github.com/soapbridge/soapbridge/internal/tools"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools on stdio or TCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := config.ParseLevel(cfg.LogLevel)
	// stdout carries the stdio protocol.
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newRedactor extends the default credential rules with the configured
// patterns.
func newRedactor(cfg *config.Config) (*core.Redactor, error) {
	r := core.NewRedactor()
	for _, p := range cfg.RedactPatterns {
		if err := r.AddPattern(p); err != nil {
			return nil, fmt.Errorf("redact pattern %q: %w", p, err)
		}
	}
	return r, nil
}

func newDispatcher(cfg *config.Config, policy *core.Policy, redactor *core.Redactor) *tools.Dispatcher {
	runner := testrunner.NewRunner(testrunner.Config{
		TestRunnerPath: cfg.Runner.TestRunnerPath,
		GUIPath:        cfg.Runner.GUIPath,
	})
	return tools.NewDispatcher(
		tools.WithPolicy(policy),
		tools.WithRunner(runner),
		tools.WithRedactor(redactor),
	)
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cfg)
	logger.Info("effective config", "config", cfg)

	if _, err := tools.CompileSchemas(); err != nil {
		return err
	}

	redactor, err := newRedactor(cfg)
	if err != nil {
		return err
	}
	policy := core.NewPolicy(cfg.ToolAllowlistCSV())
	if allowed := policy.Allowed(); allowed != nil {
		logger.Info("tool allowlist active", "tools", allowed)
	}

	var (
		audit  *core.AuditService
		reader httpsvr.ToolCallReader
	)
	if cfg.DatabaseURL != "" {
		database, err := db.New(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer database.Close()
		audit = core.NewAuditService(database, redactor, cfg.HostID)
		reader = database
		logger.Info("audit trail enabled")
	}

	invoker := tools.NewInvoker(newDispatcher(cfg, policy, redactor), audit, logger, cfg.HostID)
	mcpServer := mcpsvr.NewServer(cfg.MCPListen, invoker, mcpsvr.ServerInfo{
		Name:    "soapbridge",
		Version: displayVersion(),
		HostID:  cfg.HostID,
	}, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	var httpServer *httpsvr.Server
	if cfg.HTTPListen != "" {
		httpServer = httpsvr.NewServer(cfg.HTTPListen, invoker, reader, cfg.JWTSecret, logger, httpsvr.BuildInfo{
			Version:   version,
			GitCommit: gitCommit,
			BuildTime: buildTime,
		})
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server: %w", err)
			}
		}()
	}

	switch cfg.Transport {
	case config.TransportTCP:
		go func() { errCh <- mcpServer.ListenAndServe() }()
	default:
		logger.Info("mcp server starting", "transport", "stdio")
		go func() { errCh <- mcpServer.Serve(ctx, os.Stdin, os.Stdout) }()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down", "reason", "signal")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "err", err)
			runErr = err
		} else {
			logger.Info("shutting down", "reason", "input closed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "err", err)
		}
	}
	if err := mcpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("mcp shutdown failed", "err", err)
	}
	logger.Info("shutdown complete")
	return runErr
}
