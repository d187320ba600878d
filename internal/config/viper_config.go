package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration using Viper
// Priority order: Environment variables > Config file > Defaults
func LoadConfig(configPath string) (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("server")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/nightfall")
	}

	// NIGHTFALL_GAME_NIGHTSECONDS and friends work for every key
	v.SetEnvPrefix("nightfall")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Short names for the settings deployments set most
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.publicurl", "PUBLIC_URL")
	v.BindEnv("server.loglevel", "LOG_LEVEL")
	v.BindEnv("server.logformat", "LOG_FORMAT")
	v.BindEnv("server.ratelimit", "RATE_LIMIT")
	v.BindEnv("server.ratelimitburst", "RATE_LIMIT_BURST")
	v.BindEnv("server.maxrequestsize", "MAX_REQUEST_SIZE")
	v.BindEnv("game.randomseed", "RANDOM_SEED")
	v.BindEnv("storage.backend", "STORE_BACKEND")
	v.BindEnv("storage.redisaddr", "REDIS_ADDR")
	v.BindEnv("storage.redispassword", "REDIS_PASSWORD")
	v.BindEnv("storage.postgresdsn", "DATABASE_URL")

	d := DefaultConfig()
	v.SetDefault("server.readtimeout", d.Server.ReadTimeout)
	v.SetDefault("server.writetimeout", d.Server.WriteTimeout)
	v.SetDefault("server.idletimeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdowntimeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.requesttimeout", d.Server.RequestTimeout)
	v.SetDefault("server.ratelimit", d.Server.RateLimit)
	v.SetDefault("server.ratelimitburst", d.Server.RateLimitBurst)
	v.SetDefault("server.maxrequestsize", d.Server.MaxRequestSize)
	v.SetDefault("server.loglevel", d.Server.LogLevel)
	v.SetDefault("server.logformat", d.Server.LogFormat)

	v.SetDefault("game.nightseconds", d.Game.NightSeconds)
	v.SetDefault("game.dayseconds", d.Game.DaySeconds)
	v.SetDefault("game.voteseconds", d.Game.VoteSeconds)
	v.SetDefault("game.botskipchance", d.Game.BotSkipChance)
	v.SetDefault("game.tickinterval", d.Game.TickInterval)
	v.SetDefault("game.maxparticipants", d.Game.MaxParticipants)
	v.SetDefault("game.randomseed", d.Game.RandomSeed)
	v.SetDefault("game.roomcodelength", d.Game.RoomCodeLength)

	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.redisdb", d.Storage.RedisDB)
	v.SetDefault("storage.roomttl", d.Storage.RoomTTL)
	v.SetDefault("storage.persisttimeout", d.Storage.PersistTimeout)

	// The config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &ServerConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
