package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokertable/internal/history"
	"github.com/lox/pokertable/internal/holdem"
	"github.com/lox/pokertable/internal/server"
	"github.com/lox/pokertable/internal/table"
	"github.com/lox/pokertable/internal/tableid"
)

type ServeCmd struct {
	Config     string `short:"c" default:"pokertable.hcl" help:"Path to HCL configuration file"`
	Addr       string `short:"a" help:"Listen address (overrides config)"`
	LogLevel   string `short:"l" help:"Log level: debug, info, warn, error (overrides config)"`
	HistoryDir string `help:"Directory for JSONL hand history (overrides config)"`
}

func (cmd *ServeCmd) Run() error {
	cfg, err := server.LoadServerConfig(cmd.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cmd.Addr != "" {
		cfg.Server.ListenAddr = cmd.Addr
	}
	if cmd.LogLevel != "" {
		cfg.Server.LogLevel = cmd.LogLevel
	}
	if cmd.HistoryDir != "" {
		cfg.Server.HistoryDir = cmd.HistoryDir
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	logger.Info("Starting pokertable server",
		"addr", cfg.Server.ListenAddr,
		"tables", len(cfg.Tables),
		"version", version)

	registry := table.NewRegistry(logger)
	srv := server.NewServer(cfg.Server.ListenAddr, registry, logger)

	for _, tc := range cfg.Tables {
		if _, err := createTable(registry, srv, cfg.Server.HistoryDir, tc, logger); err != nil {
			return fmt.Errorf("create table %s: %w", tc.Name, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")
		if err := srv.Stop(); err != nil {
			logger.Error("Failed to stop server", "err", err)
		}
		return registry.CloseAll()
	})

	return g.Wait()
}

// createTable builds one configured table: a Hold'em module with the
// table's stakes, an optional hand-history recorder, and the websocket
// server as its transport.
func createTable(registry *table.Registry, srv *server.Server, historyDir string, tc server.TableConfig, logger *log.Logger) (*table.Table, error) {
	seed := tc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	module := holdem.New(
		holdem.WithSeed(seed),
		holdem.WithBlinds(tc.SmallBlind, tc.BigBlind),
		holdem.WithInitialStack(tc.InitialStack),
	)

	id := tc.ID
	if id == "" {
		id = tableid.Generate()
	}

	var recorder *history.Recorder
	if historyDir != "" {
		var err error
		recorder, err = history.NewRecorder(history.Config{
			Dir:     historyDir,
			TableID: id,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("open hand history: %w", err)
		}
		logger.Info("Recording hand history", "table", id, "path", recorder.Path())
	}

	return registry.Create(table.Config{
		ID:          id,
		Name:        tc.Name,
		Module:      module,
		Players:     tc.Players,
		Transport:   srv,
		Recorder:    recorder,
		GameVersion: holdem.GameVersion,
		Logger:      logger,
	})
}
