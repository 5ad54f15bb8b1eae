package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tables.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadServerConfig(t *testing.T) {
	path := writeConfig(t, `
server {
  listen_addr = "127.0.0.1:9000"
  log_level   = "debug"
  history_dir = "/var/lib/pokertable/history"
}

table "main" {
  small_blind   = 5
  big_blind     = 10
  initial_stack = 2000
  seed          = 42
  players       = ["alice", "bob", "carol"]
}

table "turbo" {
  id          = "turbo-1"
  small_blind = 25
  big_blind   = 50
  players     = ["dave", "erin"]
}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.ListenAddr)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "/var/lib/pokertable/history", cfg.Server.HistoryDir)

	require.Len(t, cfg.Tables, 2)
	main := cfg.Tables[0]
	assert.Equal(t, "main", main.Name)
	assert.Equal(t, 5, main.SmallBlind)
	assert.Equal(t, 10, main.BigBlind)
	assert.Equal(t, 2000, main.InitialStack)
	assert.Equal(t, int64(42), main.Seed)
	assert.Equal(t, []string{"alice", "bob", "carol"}, main.Players)

	turbo := cfg.Tables[1]
	assert.Equal(t, "turbo-1", turbo.ID)
	assert.Equal(t, 5000, turbo.InitialStack, "defaults to 100 big blinds")
	assert.Zero(t, turbo.Seed)
}

func TestLoadServerConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "localhost:8080", cfg.Server.ListenAddr)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	require.Len(t, cfg.Tables, 1)
	assert.Equal(t, "main", cfg.Tables[0].Name)
}

func TestLoadServerConfigBadHCL(t *testing.T) {
	path := writeConfig(t, `table "broken" { small_blind = `)

	_, err := LoadServerConfig(path)
	require.Error(t, err)
}

func TestServerConfigValidate(t *testing.T) {
	base := func() *ServerConfig {
		return &ServerConfig{
			Server: ServerSettings{ListenAddr: "localhost:8080", LogLevel: "info"},
			Tables: []TableConfig{{
				Name:         "main",
				SmallBlind:   5,
				BigBlind:     10,
				InitialStack: 1000,
				Players:      []string{"p1", "p2"},
			}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *ServerConfig) {},
		},
		{
			name:    "bad log level",
			mutate:  func(c *ServerConfig) { c.Server.LogLevel = "verbose" },
			wantErr: "invalid log_level",
		},
		{
			name:    "no tables",
			mutate:  func(c *ServerConfig) { c.Tables = nil },
			wantErr: "at least one table",
		},
		{
			name: "duplicate table name",
			mutate: func(c *ServerConfig) {
				c.Tables = append(c.Tables, c.Tables[0])
			},
			wantErr: "duplicate table name",
		},
		{
			name:    "zero small blind",
			mutate:  func(c *ServerConfig) { c.Tables[0].SmallBlind = 0 },
			wantErr: "small blind must be positive",
		},
		{
			name:    "big blind not above small",
			mutate:  func(c *ServerConfig) { c.Tables[0].BigBlind = 5 },
			wantErr: "big blind must be greater",
		},
		{
			name:    "stack below big blind",
			mutate:  func(c *ServerConfig) { c.Tables[0].InitialStack = 5 },
			wantErr: "initial stack must cover",
		},
		{
			name:    "too few players",
			mutate:  func(c *ServerConfig) { c.Tables[0].Players = []string{"p1"} },
			wantErr: "player count must be between",
		},
		{
			name: "too many players",
			mutate: func(c *ServerConfig) {
				c.Tables[0].Players = []string{"a", "b", "c", "d", "e", "f", "g"}
			},
			wantErr: "player count must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
