// Package main is the entry point for the Script Shelf API server.
//
// main stays minimal: read configuration from the environment, build the
// logger, hand both to the server package. All actual logic lives in
// internal/.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sakif/script-shelf/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// DB_PATH overrides the default for production deployments,
	// e.g. DB_PATH=/var/lib/scriptshelf/prod.db
	dbPath := "data/scriptshelf.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// JWT_SECRET must be a long random string: JWT_SECRET=$(openssl rand -hex 32)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	githubCallbackURL := os.Getenv("GITHUB_CALLBACK_URL")
	if githubCallbackURL == "" {
		githubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", port)
	}

	cfg := server.Config{
		Port:               port,
		DBPath:             dbPath,
		JWTSecret:          jwtSecret,
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  githubCallbackURL,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
