package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("HOST", "127.0.0.1")
}

func TestLoadConfig(t *testing.T) {
	t.Run("LoadDefaultWhenMissing", func(t *testing.T) {
		setRequiredEnv(t)

		config, err := LoadConfig("nonexistent.yaml")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Game.NightSeconds != 300 {
			t.Errorf("expected NightSeconds 300, got %d", config.Game.NightSeconds)
		}
		if config.Game.VoteSeconds != 120 {
			t.Errorf("expected VoteSeconds 120, got %d", config.Game.VoteSeconds)
		}
		if config.Game.TickInterval != time.Second {
			t.Errorf("expected TickInterval 1s, got %v", config.Game.TickInterval)
		}
		if config.Storage.Backend != BackendMemory {
			t.Errorf("expected memory backend, got %q", config.Storage.Backend)
		}
		if config.Server.Port != "8080" {
			t.Errorf("expected port from env, got %q", config.Server.Port)
		}
	})

	t.Run("LoadFromYAML", func(t *testing.T) {
		setRequiredEnv(t)
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "server.yaml")

		yamlContent := `
server:
  rateLimit: 5
game:
  nightSeconds: 90
  daySeconds: 60
  voteSeconds: 30
  botSkipChance: 0.25
  tickInterval: 500ms
  randomSeed: 42
storage:
  backend: redis
  redisAddr: localhost:6379
  roomTTL: 12h
`
		if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Game.NightSeconds != 90 {
			t.Errorf("expected NightSeconds 90, got %d", config.Game.NightSeconds)
		}
		if config.Game.BotSkipChance != 0.25 {
			t.Errorf("expected BotSkipChance 0.25, got %v", config.Game.BotSkipChance)
		}
		if config.Game.TickInterval != 500*time.Millisecond {
			t.Errorf("expected TickInterval 500ms, got %v", config.Game.TickInterval)
		}
		if config.Game.RandomSeed != 42 {
			t.Errorf("expected RandomSeed 42, got %d", config.Game.RandomSeed)
		}
		if config.Storage.RoomTTL != 12*time.Hour {
			t.Errorf("expected RoomTTL 12h, got %v", config.Storage.RoomTTL)
		}
		if config.Server.RateLimit != 5 {
			t.Errorf("expected RateLimit 5, got %v", config.Server.RateLimit)
		}
		if config.Game.MaxParticipants != 20 {
			t.Errorf("expected default MaxParticipants 20, got %d", config.Game.MaxParticipants)
		}
	})

	t.Run("EnvironmentOverridesFile", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("STORE_BACKEND", "postgres")
		t.Setenv("DATABASE_URL", "postgres://nightfall@localhost/nightfall")
		t.Setenv("NIGHTFALL_GAME_VOTESECONDS", "45")

		config, err := LoadConfig("nonexistent.yaml")
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.Storage.Backend != BackendPostgres {
			t.Errorf("expected postgres backend, got %q", config.Storage.Backend)
		}
		if config.Storage.PostgresDSN == "" {
			t.Error("expected DSN from DATABASE_URL")
		}
		if config.Game.VoteSeconds != 45 {
			t.Errorf("expected VoteSeconds 45, got %d", config.Game.VoteSeconds)
		}
	})

	t.Run("MissingPort", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("HOST", "127.0.0.1")

		if _, err := LoadConfig("nonexistent.yaml"); err == nil {
			t.Fatal("expected an error without PORT")
		}
	})
}

func validConfig() *ServerConfig {
	c := DefaultConfig()
	c.Server.Port = "8080"
	c.Server.Host = "0.0.0.0"
	return c
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*ServerConfig)
		errorMsg string
	}{
		{"ValidConfig", func(c *ServerConfig) {}, ""},
		{"MissingHost", func(c *ServerConfig) { c.Server.Host = "" }, "HOST"},
		{"ZeroNight", func(c *ServerConfig) { c.Game.NightSeconds = 0 }, "phase lengths"},
		{"NegativeVote", func(c *ServerConfig) { c.Game.VoteSeconds = -1 }, "phase lengths"},
		{"SkipChanceAboveOne", func(c *ServerConfig) { c.Game.BotSkipChance = 1.5 }, "botSkipChance"},
		{"ZeroTick", func(c *ServerConfig) { c.Game.TickInterval = 0 }, "tickInterval"},
		{"TinyRoom", func(c *ServerConfig) { c.Game.MaxParticipants = 1 }, "maxParticipants"},
		{"ShortRoomCode", func(c *ServerConfig) { c.Game.RoomCodeLength = 3 }, "roomCodeLength"},
		{"UnknownBackend", func(c *ServerConfig) { c.Storage.Backend = "etcd" }, "unknown storage backend"},
		{"RedisWithoutAddr", func(c *ServerConfig) { c.Storage.Backend = BackendRedis }, "REDIS_ADDR"},
		{"PostgresWithoutDSN", func(c *ServerConfig) { c.Storage.Backend = BackendPostgres }, "DATABASE_URL"},
		{"RedisWithAddr", func(c *ServerConfig) {
			c.Storage.Backend = BackendRedis
			c.Storage.RedisAddr = "localhost:6379"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.errorMsg == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Errorf("expected error containing '%s', got nil", tt.errorMsg)
			} else if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("expected error containing '%s', got '%s'", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestSessionSettings(t *testing.T) {
	c := validConfig()
	c.Game.RandomSeed = 9

	s := c.SessionSettings()
	if s.Timings.NightSeconds != 300 || s.Timings.VoteSeconds != 120 {
		t.Errorf("unexpected timings %+v", s.Timings)
	}
	if s.Timings.BotSkipChance != 0.05 {
		t.Errorf("expected BotSkipChance 0.05, got %v", s.Timings.BotSkipChance)
	}
	if s.TickInterval != time.Second || s.PersistTimeout != 5*time.Second {
		t.Errorf("unexpected intervals %v / %v", s.TickInterval, s.PersistTimeout)
	}
	if s.Seed != 9 || s.RoomCodeLength != 6 {
		t.Errorf("unexpected seed %d or code length %d", s.Seed, s.RoomCodeLength)
	}
}
