package config

import (
	"time"
)

type Config struct {
	Server   ServerConfig
	Broker   BrokerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Flood    FloodConfig
}

type ServerConfig struct {
	Port                int           `mapstructure:"port"`
	ReadTimeoutSeconds  time.Duration `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds time.Duration `mapstructure:"write_timeout_seconds"`
}

type BrokerConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	ClientID         string        `mapstructure:"client_id"`
	Username         string        `mapstructure:"username"`
	Password         string        `mapstructure:"password"`
	TLS              bool          `mapstructure:"tls"`
	KeepAliveSeconds time.Duration `mapstructure:"keep_alive_seconds"`
	QueueSize        int           `mapstructure:"queue_size"`
	Reconnect        ReconnectConfig
}

type ReconnectConfig struct {
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
}

type DatabaseConfig struct {
	Path              string `mapstructure:"path"`
	RunMigrations     bool   `mapstructure:"run_migrations"`
	BusyTimeoutMillis int    `mapstructure:"busy_timeout_millis"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type FloodConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	WindowSec   time.Duration `mapstructure:"window_seconds"`
	Threshold   int           `mapstructure:"threshold"`
	CooldownSec time.Duration `mapstructure:"cooldown_seconds"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
