package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokertable/internal/holdem"
)

// ServerConfig is the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	ListenAddr string `hcl:"listen_addr,optional"`
	LogLevel   string `hcl:"log_level,optional"`
	// HistoryDir enables JSONL hand history when set
	HistoryDir string `hcl:"history_dir,optional"`
}

// TableConfig defines one table to create at startup
type TableConfig struct {
	Name         string   `hcl:"name,label"`
	ID           string   `hcl:"id,optional"`
	SmallBlind   int      `hcl:"small_blind,optional"`
	BigBlind     int      `hcl:"big_blind,optional"`
	InitialStack int      `hcl:"initial_stack,optional"`
	// Seed fixes the deal sequence. Zero picks a time-based seed.
	Seed    int64    `hcl:"seed,optional"`
	Players []string `hcl:"players"`
}

// DefaultServerConfig returns a working development configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			ListenAddr: "localhost:8080",
			LogLevel:   "info",
		},
		Tables: []TableConfig{
			{
				Name:         "main",
				SmallBlind:   5,
				BigBlind:     10,
				InitialStack: 1000,
				Players:      []string{"alice", "bob"},
			},
		},
	}
}

// LoadServerConfig loads configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", filename, diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %s", filename, diags.Error())
	}

	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = "localhost:8080"
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}

	for i := range config.Tables {
		if config.Tables[i].SmallBlind == 0 {
			config.Tables[i].SmallBlind = 5
		}
		if config.Tables[i].BigBlind == 0 {
			config.Tables[i].BigBlind = config.Tables[i].SmallBlind * 2
		}
		if config.Tables[i].InitialStack == 0 {
			config.Tables[i].InitialStack = config.Tables[i].BigBlind * 100
		}
	}

	return &config, nil
}

// Validate checks the configuration for inconsistencies
func (c *ServerConfig) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("listen_addr must be set")
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.Server.LogLevel)
	}

	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	names := make(map[string]bool, len(c.Tables))
	ids := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if names[t.Name] {
			return fmt.Errorf("duplicate table name: %s", t.Name)
		}
		names[t.Name] = true

		if t.ID != "" {
			if ids[t.ID] {
				return fmt.Errorf("duplicate table id: %s", t.ID)
			}
			ids[t.ID] = true
		}

		if t.SmallBlind <= 0 {
			return fmt.Errorf("table %s: small blind must be positive", t.Name)
		}
		if t.BigBlind <= t.SmallBlind {
			return fmt.Errorf("table %s: big blind must be greater than small blind", t.Name)
		}
		if t.InitialStack < t.BigBlind {
			return fmt.Errorf("table %s: initial stack must cover the big blind", t.Name)
		}
		if len(t.Players) < holdem.MinPlayers || len(t.Players) > holdem.MaxPlayers {
			return fmt.Errorf("table %s: player count must be between %d and %d, got %d",
				t.Name, holdem.MinPlayers, holdem.MaxPlayers, len(t.Players))
		}
	}

	return nil
}
