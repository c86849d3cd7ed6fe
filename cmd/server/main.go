package main

import (
	"fmt"
	"log/slog"

	"github.com/amirasaad/bankaccount/pkg/app"
	"github.com/amirasaad/bankaccount/pkg/config"
	"github.com/amirasaad/bankaccount/webapi"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	logger := slog.Default()
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to wire application: %w", err)
	}
	defer a.Close() //nolint:errcheck

	fiberApp := webapi.NewApp(a.Service, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server",
		"env", cfg.Env,
		"address", addr,
	)

	return fiberApp.Listen(addr)
}
