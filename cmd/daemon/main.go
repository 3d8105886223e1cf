// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command daemon serves the jobjump pages, JSON API and health probes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ManuGH/jobjump/internal/config"
	"github.com/ManuGH/jobjump/internal/daemon"
	xglog "github.com/ManuGH/jobjump/internal/log"
	"github.com/ManuGH/jobjump/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config":
			os.Exit(runConfigCLI(os.Args[2:]))
		case "healthcheck":
			os.Exit(runHealthcheckCLI(os.Args[2:]))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the environment is read")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Configure logger with safe defaults until config is loaded
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "jobjump",
		Version: version.Version,
	})
	logger := xglog.WithComponent("daemon")

	if err := loadEnvFile(*envFile); err != nil {
		logger.Fatal().Err(err).Str(xglog.FieldEvent, "env.load_failed").Str(xglog.FieldPath, *envFile).Msg("failed to load env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	effectiveConfigPath := resolveConfigPath(*configPath)
	loader := config.NewLoader(effectiveConfigPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	daemon.ApplyLogLevel(cfg)
	logger = xglog.WithComponent("daemon")

	source := "env+defaults"
	if effectiveConfigPath != "" {
		source = "file"
	}
	logger.Info().
		Str(xglog.FieldEvent, "config.loaded").
		Str("source", source).
		Str(xglog.FieldPath, effectiveConfigPath).
		Msg("configuration loaded")

	logger.Info().
		Str(xglog.FieldEvent, "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", cfg.Server.ListenAddr).
		Str("backend", cfg.DataAPI.Backend).
		Str("sessions", cfg.Sessions.Backend).
		Str("public_url", cfg.PublicURL).
		Msg("starting jobjump")

	rt, err := daemon.Bootstrap(ctx, cfg)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "bootstrap.failed").
			Msg("failed to build runtime")
	}

	deps := daemon.Deps{
		Logger:         logger,
		Handler:        rt.Handler,
		MetricsHandler: rt.MetricsHandler,
	}
	if cfg.Metrics.Enabled {
		deps.MetricsAddr = strings.TrimSpace(cfg.Metrics.Addr)
	}

	mgr, err := daemon.NewManager(cfg.Server, deps)
	if err != nil {
		_ = rt.Close(context.Background())
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "manager.creation.failed").
			Msg("failed to create daemon manager")
	}
	rt.RegisterShutdownHooks(mgr)

	cfgHolder := config.NewConfigHolder(cfg, loader, effectiveConfigPath)
	app := daemon.NewApp(logger, mgr, cfgHolder)
	if err := app.Run(ctx); err != nil {
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "manager.failed").
			Msg("daemon app failed")
		os.Exit(1)
	}

	logger.Info().Msg("server exiting")
}

// resolveConfigPath prefers an explicit path and otherwise picks up
// config.yaml in the data directory when present.
func resolveConfigPath(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	dataDir := strings.TrimSpace(config.ParseString(config.EnvPrefix+"DATA_DIR", config.Defaults().DataDir))
	autoPath := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(autoPath); err == nil {
		return autoPath
	}
	return ""
}

// loadEnvFile applies a dotenv file without overriding variables already
// set. A missing file is not an error.
func loadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
