package config

import (
	"fmt"
	"time"

	"nightfall/internal/game"
	"nightfall/internal/session"
)

// This file defines the configuration structures used by viper_config.go
// The actual loading is handled by viper in viper_config.go

// Storage backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// ServerConfig represents the service configuration
type ServerConfig struct {
	Server  ServerSettings  `yaml:"server"`
	Game    GameSettings    `yaml:"game"`
	Storage StorageSettings `yaml:"storage"`
}

// ServerSettings contains HTTP server settings
type ServerSettings struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	PublicURL       string        `yaml:"publicURL"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"` // 0 for SSE support
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`

	// Rate limiting (using golang.org/x/time/rate)
	RateLimit      float64 `yaml:"rateLimit"` // requests per second
	RateLimitBurst int     `yaml:"rateLimitBurst"`

	MaxRequestSize int64 `yaml:"maxRequestSize"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

// GameSettings tunes the phase clock and rooms
type GameSettings struct {
	NightSeconds    int           `yaml:"nightSeconds"`
	DaySeconds      int           `yaml:"daySeconds"`
	VoteSeconds     int           `yaml:"voteSeconds"`
	BotSkipChance   float64       `yaml:"botSkipChance"`
	TickInterval    time.Duration `yaml:"tickInterval"`
	MaxParticipants int           `yaml:"maxParticipants"`
	RandomSeed      int64         `yaml:"randomSeed"` // 0 = time based
	RoomCodeLength  int           `yaml:"roomCodeLength"`
}

// StorageSettings selects and configures the room repository
type StorageSettings struct {
	Backend        string        `yaml:"backend"`
	RedisAddr      string        `yaml:"redisAddr"`
	RedisPassword  string        `yaml:"redisPassword"`
	RedisDB        int           `yaml:"redisDB"`
	RoomTTL        time.Duration `yaml:"roomTTL"`
	PostgresDSN    string        `yaml:"postgresDSN"`
	PersistTimeout time.Duration `yaml:"persistTimeout"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Port:            "", // Must be set via env
			Host:            "", // Must be set via env
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // SSE streams stay open
			IdleTimeout:     0,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
			RateLimit:       10,
			RateLimitBurst:  20,
			MaxRequestSize:  1048576, // 1MB
			LogLevel:        "info",
			LogFormat:       "text",
		},
		Game: GameSettings{
			NightSeconds:    300,
			DaySeconds:      300,
			VoteSeconds:     120,
			BotSkipChance:   0.05,
			TickInterval:    time.Second,
			MaxParticipants: 20,
			RoomCodeLength:  6,
		},
		Storage: StorageSettings{
			Backend:        BackendMemory,
			RoomTTL:        48 * time.Hour,
			PersistTimeout: 5 * time.Second,
		},
	}
}

// Validate checks if the configuration is valid
func (c *ServerConfig) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT environment variable must be set")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HOST environment variable must be set")
	}
	if c.Server.RateLimit <= 0 || c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("rateLimit and rateLimitBurst must be positive")
	}

	g := c.Game
	if g.NightSeconds < 1 || g.DaySeconds < 1 || g.VoteSeconds < 1 {
		return fmt.Errorf("phase lengths must be at least one second")
	}
	if g.BotSkipChance < 0 || g.BotSkipChance > 1 {
		return fmt.Errorf("botSkipChance must be between 0 and 1, got %v", g.BotSkipChance)
	}
	if g.TickInterval <= 0 {
		return fmt.Errorf("tickInterval must be positive")
	}
	if g.MaxParticipants < 2 {
		return fmt.Errorf("maxParticipants must be at least 2")
	}
	if g.RoomCodeLength < 4 {
		return fmt.Errorf("roomCodeLength must be at least 4")
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR must be set for the redis backend")
		}
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("DATABASE_URL must be set for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.PersistTimeout <= 0 {
		return fmt.Errorf("persistTimeout must be positive")
	}

	return nil
}

// Timings converts the game settings for the engine
func (c *ServerConfig) Timings() game.Timings {
	return game.Timings{
		NightSeconds:    c.Game.NightSeconds,
		DaySeconds:      c.Game.DaySeconds,
		VoteSeconds:     c.Game.VoteSeconds,
		BotSkipChance:   c.Game.BotSkipChance,
		MaxParticipants: c.Game.MaxParticipants,
	}
}

// SessionSettings converts the game and storage settings for the room manager
func (c *ServerConfig) SessionSettings() session.Settings {
	return session.Settings{
		Timings:        c.Timings(),
		TickInterval:   c.Game.TickInterval,
		PersistTimeout: c.Storage.PersistTimeout,
		Seed:           c.Game.RandomSeed,
		RoomCodeLength: c.Game.RoomCodeLength,
	}
}
