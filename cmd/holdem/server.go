package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdemtable/internal/server"
)

// ServerCmd runs the WebSocket server with the rooms from the config file
type ServerCmd struct {
	Config string `short:"c" default:"holdem.hcl" help:"Path to HCL configuration file"`
	Addr   string `short:"a" help:"Server address to bind to (overrides config)"`
	Debug  bool   `help:"Enable debug logging (overrides config)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.Debug {
		cfg.Server.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	engineCfg, err := cfg.Engine()
	if err != nil {
		return err
	}

	level, _ := log.ParseLevel(cfg.Server.LogLevel)
	logger := newLogger(level)

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := quartz.NewReal()
	srv := server.NewServer(clock, logger)
	gameService := server.NewGameService(ctx, engineCfg, srv, clock, logger)
	srv.SetGameService(gameService)

	if err := gameService.CreateConfiguredRooms(ctx, cfg.Tables); err != nil {
		return err
	}

	logger.Info("Starting holdem server",
		"address", addr,
		"tables", len(cfg.Tables),
		"action_timeout", engineCfg.ActionTimeout,
		"phase_delay", engineCfg.PhaseDelay)

	err = srv.ListenAndServe(ctx, addr)
	if shutdownErr := gameService.Shutdown(); shutdownErr != nil {
		logger.Error("Table stopped with error", "error", shutdownErr)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
