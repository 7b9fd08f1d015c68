// Package config loads server.toml, the same way the teacher's own
// internal/config does: unmarshal onto a struct of sane defaults with
// BurntSushi/toml, so a partial file still boots with defaults for the
// keys it omits. A missing file is an error.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Network   NetworkConfig   `toml:"network"`
	Tick      TickConfig      `toml:"tick"`
	Rates     RatesConfig     `toml:"rates"`
	Assets    AssetsConfig    `toml:"assets"`
	Logging   LoggingConfig   `toml:"logging"`
	Scripting ScriptingConfig `toml:"scripting"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	StartTime int64  // set at boot, not from config
}

// DatabaseConfig configures the optional Postgres leaderboard sink
// (SPEC_FULL.md §4.J). An empty DSN disables it entirely — the primary
// JSON snapshot path never depends on Postgres being reachable.
type DatabaseConfig struct {
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	ConnectRetries  int           `toml:"connect_retries"`
}

type NetworkConfig struct {
	UDPBindAddress    string        `toml:"udp_bind_address"`
	TCPBindAddress    string        `toml:"tcp_bind_address"`
	InQueueSize       int           `toml:"in_queue_size"`
	OutQueueSize      int           `toml:"out_queue_size"`
	WriteTimeout      time.Duration `toml:"write_timeout"`
	ReadTimeout       time.Duration `toml:"read_timeout"`
	BulkChunkBytes    int           `toml:"bulk_chunk_bytes"`
}

// TickConfig carries the three independent clocks plus loop cadence and
// snapshot interval — SPEC_FULL.md §4.E. Never merge these into one timer.
type TickConfig struct {
	LoopTick      time.Duration `toml:"loop_tick"`
	ServerTick    time.Duration `toml:"server_tick"`
	BroadcastTick time.Duration `toml:"broadcast_tick"`
	RegenTick     time.Duration `toml:"regen_tick"`
	SnapshotTick  time.Duration `toml:"snapshot_tick"`
}

type RatesConfig struct {
	ExpRate           float64 `toml:"exp_rate"`
	DropRate          float64 `toml:"drop_rate"`
	TickSpawnChance   int     `toml:"tick_spawn_chance_percentage"`
}

type AssetsConfig struct {
	Dir string `toml:"dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type ScriptingConfig struct {
	Dir     string `toml:"dir"`
	Enabled bool   `toml:"enabled"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "rustyhack-server-go",
		},
		Database: DatabaseConfig{
			DSN:             "",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			ConnectRetries:  5,
		},
		Network: NetworkConfig{
			UDPBindAddress: "0.0.0.0:50201",
			TCPBindAddress: "0.0.0.0:50202",
			InQueueSize:    512,
			OutQueueSize:   512,
			WriteTimeout:   10 * time.Second,
			ReadTimeout:    60 * time.Second,
			BulkChunkBytes: 1450,
		},
		Tick: TickConfig{
			LoopTick:      10 * time.Millisecond,
			ServerTick:    2 * time.Second,
			BroadcastTick: 100 * time.Millisecond,
			RegenTick:     2 * time.Second,
			SnapshotTick:  60 * time.Second,
		},
		Rates: RatesConfig{
			ExpRate:         1.0,
			DropRate:        1.0,
			TickSpawnChance: 5,
		},
		Assets: AssetsConfig{
			Dir: "assets",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scripting: ScriptingConfig{
			Dir:     "scripts",
			Enabled: true,
		},
	}
}
