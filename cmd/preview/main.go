package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Amulyanrao7777/MorningGlow/internal/config"
	"github.com/Amulyanrao7777/MorningGlow/internal/logging"
	"github.com/Amulyanrao7777/MorningGlow/internal/previewserver"
	"github.com/Amulyanrao7777/MorningGlow/internal/state"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	if err := run(*addr); err != nil {
		slog.Error("preview server failed", "err", err)
		os.Exit(1)
	}
}

func run(addr string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	envCfg := config.LoadEnvOverrides()
	logger := logging.New(envCfg.LogLevel)
	slog.SetDefault(logger)
	if logging.ParseLevel(envCfg.LogLevel) != slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	path := config.DefaultPath
	if envCfg.ConfigPath != "" {
		path = envCfg.ConfigPath
	}
	rootCfg, err := config.Load(path, envCfg)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, closeStore, err := state.Open(rootCfg.History.Backend, rootCfg.History.Path, time.Now, logging.Component(logger, "history"))
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer closeStore()

	srv, err := previewserver.NewServer(rootCfg.Email.PreviewDir, store, rootCfg.Pipeline.DedupeWindow(), logging.Component(logger, "previewserver"))
	if err != nil {
		return err
	}
	return srv.Run(addr)
}
