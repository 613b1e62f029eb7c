package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"mqttlog/internal/constants"
)

func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout_seconds", 10)
	viper.SetDefault("server.write_timeout_seconds", 10)

	viper.SetDefault("broker.host", "localhost")
	viper.SetDefault("broker.port", 1883)
	viper.SetDefault("broker.client_id", "mqtt-logger")
	viper.SetDefault("broker.keep_alive_seconds", 60)
	viper.SetDefault("broker.queue_size", 256)
	viper.SetDefault("broker.reconnect.initial_interval", "1s")
	viper.SetDefault("broker.reconnect.max_interval", "30s")
	viper.SetDefault("broker.reconnect.multiplier", 2.0)

	viper.SetDefault("database.path", "mqtt_events.db")
	viper.SetDefault("database.run_migrations", true)
	viper.SetDefault("database.busy_timeout_millis", 5000)

	viper.SetDefault("logging.level", "info")

	viper.SetDefault("flood.enabled", true)
	viper.SetDefault("flood.window_seconds", int(constants.DefaultFloodWindow.Seconds()))
	viper.SetDefault("flood.threshold", constants.DefaultFloodThreshold)
	viper.SetDefault("flood.cooldown_seconds", int(constants.DefaultFloodCooldown.Seconds()))
}

func bindEnvVariables() {
	viper.BindEnv("broker.host", "BROKER_HOST")
	viper.BindEnv("broker.port", "BROKER_PORT")
	viper.BindEnv("broker.client_id", "BROKER_CLIENT_ID")
	viper.BindEnv("broker.username", "BROKER_USERNAME")
	viper.BindEnv("broker.password", "BROKER_PASSWORD")
	viper.BindEnv("broker.tls", "BROKER_TLS")

	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("database.run_migrations", "DATABASE_RUN_MIGRATIONS")

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout_seconds", "SERVER_READ_TIMEOUT_SECONDS")
	viper.BindEnv("server.write_timeout_seconds", "SERVER_WRITE_TIMEOUT_SECONDS")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
}
