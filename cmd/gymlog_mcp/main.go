// Package main runs the gymlog MCP server over stdio, reading the same store
// as the service.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/2beens/gymlog/internal"
	"github.com/2beens/gymlog/internal/config"
	"github.com/2beens/gymlog/internal/gymlog/labels"
	gymlogmcp "github.com/2beens/gymlog/internal/gymlog/mcp"
	"github.com/2beens/gymlog/internal/gymlog/stats"
	"github.com/2beens/gymlog/internal/logging"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
)

const version = "1.0.0"

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	// stdout carries the MCP protocol
	log.SetOutput(os.Stderr)

	_ = godotenv.Load()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	secrets, err := config.LoadSecrets(ctx)
	if err != nil {
		log.Fatalf("load secrets: %v", err)
	}

	closeLogs := logging.Setup(logging.LoggerSetupParams{
		Component:   "mcp",
		LogFileName: cfg.LogsPath,
		LogToStdout: cfg.LogToStdout,
		LogLevel:    cfg.LogLevel,
		Output:      os.Stderr,
	})
	defer closeLogs()

	store, err := internal.OpenStore(ctx, internal.OpenStoreParams{
		Config:           cfg,
		PostgresPassword: secrets.PostgresPassword,
	})
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Errorf("close store: %s", err)
		}
	}()

	library, err := labels.LoadDefault()
	if err != nil {
		log.Fatalf("load exercise library: %v", err)
	}

	statsService := stats.NewService(store.Repo, nil, time.Now)
	mcpServer := gymlogmcp.NewServer(version, statsService, library)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Errorf("serve stdio: %s", err)
	}
}
