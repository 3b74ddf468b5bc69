// Package config provides a reusable loader for the swarm consensus
// engine's configuration files and environment variables. It is versioned
// so that applications can depend on a stable API contract.
//
// Version: v0.1.0
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"swarmconsensus/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the unified configuration for the consensus engine, its job
// queue, event bus, and fan-out gateway (SPEC_FULL.md §1 ambient stack).
type Config struct {
	Engine struct {
		Workers          int    `mapstructure:"workers" json:"workers"`
		EmbedTimeoutMS   int    `mapstructure:"embed_timeout_ms" json:"embed_timeout_ms"`
		JobTimeoutMS     int    `mapstructure:"job_timeout_ms" json:"job_timeout_ms"`
		BackoffBaseMS    int    `mapstructure:"backoff_base_ms" json:"backoff_base_ms"`
		MaxAttempts      int    `mapstructure:"max_attempts" json:"max_attempts"`
	} `mapstructure:"engine" json:"engine"`

	Store struct {
		DSN      string `mapstructure:"dsn" json:"dsn"`
		MaxConns int    `mapstructure:"max_conns" json:"max_conns"`
	} `mapstructure:"store" json:"store"`

	Embedding struct {
		Endpoint       string  `mapstructure:"endpoint" json:"endpoint"`
		MaxOutstanding int     `mapstructure:"max_outstanding" json:"max_outstanding"`
		RatePerSecond  float64 `mapstructure:"rate_per_second" json:"rate_per_second"`
		RateBurst      int     `mapstructure:"rate_burst" json:"rate_burst"`
		CacheSize      int     `mapstructure:"cache_size" json:"cache_size"`
	} `mapstructure:"embedding" json:"embedding"`

	EventBus struct {
		Mode       string `mapstructure:"mode" json:"mode"` // "channel" or "pubsub"
		ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`
	} `mapstructure:"event_bus" json:"event_bus"`

	Gateway struct {
		ListenAddr      string `mapstructure:"listen_addr" json:"listen_addr"`
		HandshakeAddr   string `mapstructure:"handshake_addr" json:"handshake_addr"`
		PingIntervalS   int    `mapstructure:"ping_interval_s" json:"ping_interval_s"`
		StaleTTLS       int    `mapstructure:"stale_ttl_s" json:"stale_ttl_s"`
	} `mapstructure:"gateway" json:"gateway"`

	HTTPAPI struct {
		ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`
	} `mapstructure:"http_api" json:"http_api"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and
// returned. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up from .env via godotenv at process startup

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the SWARM_ENV environment
// variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("SWARM_ENV", ""))
}
