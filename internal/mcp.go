package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/jera/internal/goalservice"
	"github.com/starford/jera/internal/mcpserver"
	"github.com/starford/jera/internal/store"
)

// RunMCP serves the MCP tools over stdio against the configured store.
// Stdout carries the protocol, so logs go to stderr.
func RunMCP(cfg *Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	user := localUser(cfg)
	if user == "" {
		return fmt.Errorf("mcp requires disabled auth mode with a local_user")
	}

	svc := goalservice.NewService(db, nil)
	logger.Info("MCP server starting", slog.String("sqlite_path", cfg.SQLite.Path))
	return mcpserver.New(svc, user).ServeStdio()
}
